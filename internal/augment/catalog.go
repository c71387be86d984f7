package augment

// DefaultBasePrices maps profile reference to its base unit price in SEK,
// derived from per-profile statistics over the historical quote set.
var DefaultBasePrices = map[string]float64{
	"Glaskil":         2.44,
	"Hörnvinkel":      2.82,
	"Fönsterbåge":     3.49,
	"Sidoprofil":      3.52,
	"Spröjsprofil":    2.26,
	"Tätningslist":    2.64,
	"Ytterram":        3.02,
	"F-profil":        2.74,
	"H-profil":        3.05,
	"T-profil":        2.97,
	"U-profil":        2.72,
	"L-profil":        2.60,
	"Z-profil":        2.81,
	"J-profil":        2.95,
	"Karmprofil":      3.14,
	"Stödprofil":      3.08,
	"Täckprofil":      3.19,
	"Anslagslist":     2.98,
	"Baslister":       2.52,
	"Bottenlist":      2.66,
	"Glashållare":     3.09,
	"Karmlist":        2.97,
	"Ramlist":         2.80,
	"Kopplingsprofil": 2.61,
	"Droppnäsa":       2.50,
}

// Alloys maps alloy name to its price multiplier.
var Alloys = map[string]float64{
	"Rå":         1.0,
	"EN-AW-6060": 1.02,
	"EN-AW-6063": 1.05,
	"EN-AW-6082": 1.08,
}

// SurfaceTreatments maps surface treatment to its price multiplier.
var SurfaceTreatments = map[string]float64{
	"EN-AW-6063-T5":  1.0,
	"Anodized":       1.03,
	"Powder Coated":  1.06,
	"Brushed Finish": 1.02,
	"None":           0.98,
}

// Reference commodity conversion for the raw material price draw:
// LME aluminum in USD/short ton converted to EUR/kg.
const (
	lmeBaseUSDTon = 2500.0
	usdToEUR      = 0.88
	lbsPerTon     = 907.185

	// EURPerKgBase is the mean of the raw material price distribution (~2.43).
	EURPerKgBase = lmeBaseUSDTon / lbsPerTon * usdToEUR
)

// VolumeDiscount applies the quantity tier step function to a base price.
func VolumeDiscount(basePrice float64, quantity int) float64 {
	switch {
	case quantity <= 50000:
		return basePrice * 1.08
	case quantity <= 100000:
		return basePrice * 1.03
	case quantity <= 200000:
		return basePrice * 0.98
	default:
		return basePrice * 0.95
	}
}
