package model

import (
	"fmt"
)

// SchemaVersion is stamped onto every record produced by this build.
const SchemaVersion = "v1.0"

// Quote represents one manufacturing price quotation for an aluminum profile.
// Optional fields are pointers so absent and zero stay distinguishable.
type Quote struct {
	// Tenant
	UserID string `json:"user_id"`

	// Core metadata
	QuoteID    string `json:"quote_id"`
	QuoteDate  string `json:"quote_date"` // YYYY-MM-DD
	SourceFile string `json:"source_file,omitempty"`

	// Customer (anonymized, never raw personal data)
	CustomerID      *string `json:"customer_id,omitempty"`
	CustomerSegment *string `json:"customer_segment,omitempty"`

	// Product spec
	ProfileRef string  `json:"profile_ref"`
	WeightKgM  float64 `json:"weight_kg_m"`
	LengthM    float64 `json:"length_m"`

	// Manufacturing
	Quantity         int     `json:"quantity"`
	SurfaceTreatment *string `json:"surface_treatment,omitempty"`

	// Material & standards
	Alloy    string  `json:"alloy"`
	Finish   *string `json:"finish,omitempty"`
	Standard *string `json:"standard,omitempty"`

	// Commercial context
	LeadTimeWeeks         *string  `json:"lead_time_weeks,omitempty"`
	ValidityDate          *string  `json:"validity_date,omitempty"`
	RawMaterialPriceEURKg *float64 `json:"raw_material_price_eur_kg,omitempty"`

	// Pricing
	QuotedPriceSEK float64  `json:"quoted_price_sek"`
	Currency       string   `json:"currency"`
	ToolCostSEK    *float64 `json:"tool_cost_sek,omitempty"`

	// Bookkeeping
	IsOutlier     *bool  `json:"is_outlier,omitempty"`
	SchemaVersion string `json:"schema_version"`
	IsValid       bool   `json:"is_valid"`
}

// ValidationError reports the first field of a Quote that fails the schema
// invariants.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("model: invalid quote: %s %s", e.Field, e.Reason)
}

// Validate checks the schema invariants: required fields present, the four
// required numeric fields strictly positive, tool_cost_sek non-negative when
// set. A violation rejects the record; nothing is coerced.
func (q *Quote) Validate() error {
	required := []struct {
		field string
		ok    bool
	}{
		{"user_id", q.UserID != ""},
		{"quote_id", q.QuoteID != ""},
		{"quote_date", q.QuoteDate != ""},
		{"profile_ref", q.ProfileRef != ""},
		{"alloy", q.Alloy != ""},
	}
	for _, r := range required {
		if !r.ok {
			return &ValidationError{Field: r.field, Reason: "is required"}
		}
	}

	positive := []struct {
		field string
		ok    bool
	}{
		{"quoted_price_sek", q.QuotedPriceSEK > 0},
		{"weight_kg_m", q.WeightKgM > 0},
		{"length_m", q.LengthM > 0},
		{"quantity", q.Quantity > 0},
	}
	for _, p := range positive {
		if !p.ok {
			return &ValidationError{Field: p.field, Reason: "must be greater than zero"}
		}
	}

	if q.ToolCostSEK != nil && *q.ToolCostSEK < 0 {
		return &ValidationError{Field: "tool_cost_sek", Reason: "must be non-negative"}
	}

	return nil
}

// Normalize fills defaulted bookkeeping fields on a freshly built record.
func (q *Quote) Normalize() {
	if q.Currency == "" {
		q.Currency = "SEK"
	}
	if q.SchemaVersion == "" {
		q.SchemaVersion = SchemaVersion
	}
	q.IsValid = true
}

// FeatureRow is the projection of a Quote onto the seven predictive fields
// plus the regression target.
type FeatureRow struct {
	WeightKgM             float64 `json:"weight_kg_m"`
	LengthM               float64 `json:"length_m"`
	Quantity              int     `json:"quantity"`
	RawMaterialPriceEURKg float64 `json:"raw_material_price_eur_kg"`
	SurfaceTreatment      string  `json:"surface_treatment"`
	Alloy                 string  `json:"alloy"`
	ProfileRef            string  `json:"profile_ref"`
	QuotedPriceSEK        float64 `json:"quoted_price_sek"`
}

// FeatureRowFromQuote projects a Quote onto its FeatureRow. The second return
// is false when any of the seven predictive fields is absent; such rows are
// dropped before encoding rather than imputed.
func FeatureRowFromQuote(q *Quote) (FeatureRow, bool) {
	if q.SurfaceTreatment == nil || *q.SurfaceTreatment == "" {
		return FeatureRow{}, false
	}
	if q.RawMaterialPriceEURKg == nil {
		return FeatureRow{}, false
	}
	if q.ProfileRef == "" || q.Alloy == "" || q.WeightKgM == 0 || q.LengthM == 0 || q.Quantity == 0 {
		return FeatureRow{}, false
	}
	return FeatureRow{
		WeightKgM:             q.WeightKgM,
		LengthM:               q.LengthM,
		Quantity:              q.Quantity,
		RawMaterialPriceEURKg: *q.RawMaterialPriceEURKg,
		SurfaceTreatment:      *q.SurfaceTreatment,
		Alloy:                 q.Alloy,
		ProfileRef:            q.ProfileRef,
		QuotedPriceSEK:        q.QuotedPriceSEK,
	}, true
}

// Ptr returns a pointer to v. Convenience for optional Quote fields.
func Ptr[T any](v T) *T { return &v }
