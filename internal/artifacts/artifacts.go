// Package artifacts owns the tenant-scoped on-disk layout for quote data,
// trained models and their metadata.
package artifacts

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/odens-ab/pricing-cli/internal/boost"
	"github.com/odens-ab/pricing-cli/internal/model"
)

// ErrModelNotFound is returned when a tenant has no persisted model; the HTTP
// layer maps it to a 404.
var ErrModelNotFound = eris.New("artifacts: no model found for tenant")

// File names within a tenant directory.
const (
	ExtractedFile = "quotes_extracted.json"
	AugmentedFile = "quotes_augmented.json"
	FeaturesFile  = "quotes_features.csv"
	SubmittedFile = "quotes_submitted.csv"
	ModelFile     = "model.json"
	MetadataFile  = "model_metadata.json"
)

// Store resolves and persists tenant artifacts under two roots.
type Store struct {
	dataRoot  string
	modelRoot string
}

// NewStore creates a Store over the configured artifact roots.
func NewStore(dataRoot, modelRoot string) *Store {
	return &Store{dataRoot: dataRoot, modelRoot: modelRoot}
}

// TenantDir derives the directory name for a tenant identifier by replacing
// "@" with "_" and stripping a ".com" suffix. The transformation is lossy:
// distinct identifiers can collide after it. Kept for compatibility with
// existing on-disk layouts.
func TenantDir(tenant string) string {
	return strings.ReplaceAll(strings.ReplaceAll(tenant, "@", "_"), ".com", "")
}

// DataPath returns the path of a data file in the tenant's data directory.
func (s *Store) DataPath(tenant, file string) string {
	return filepath.Join(s.dataRoot, TenantDir(tenant), file)
}

// ModelPath returns the path of a file in the tenant's model directory.
func (s *Store) ModelPath(tenant, file string) string {
	return filepath.Join(s.modelRoot, TenantDir(tenant), file)
}

// SaveQuotes writes a quote set as pretty-printed JSON.
func (s *Store) SaveQuotes(tenant, file string, quotes []model.Quote) error {
	data, err := json.MarshalIndent(quotes, "", "  ")
	if err != nil {
		return eris.Wrap(err, "artifacts: marshal quotes")
	}
	return writeFile(s.DataPath(tenant, file), data)
}

// LoadQuotes reads a quote set written by SaveQuotes.
func (s *Store) LoadQuotes(tenant, file string) ([]model.Quote, error) {
	data, err := os.ReadFile(s.DataPath(tenant, file))
	if err != nil {
		return nil, eris.Wrapf(err, "artifacts: read %s", file)
	}
	var quotes []model.Quote
	if err := json.Unmarshal(data, &quotes); err != nil {
		return nil, eris.Wrapf(err, "artifacts: parse %s", file)
	}
	return quotes, nil
}

// SaveModel persists a fitted model and its metadata together. Write failures
// are fatal and propagate to the caller.
func (s *Store) SaveModel(tenant string, r *boost.Regressor, md model.Metadata) error {
	modelData, err := r.Marshal()
	if err != nil {
		return err
	}
	if err := writeFile(s.ModelPath(tenant, ModelFile), modelData); err != nil {
		return err
	}

	mdData, err := json.MarshalIndent(md, "", "  ")
	if err != nil {
		return eris.Wrap(err, "artifacts: marshal metadata")
	}
	return writeFile(s.ModelPath(tenant, MetadataFile), mdData)
}

// LoadModel reloads a tenant's model and metadata. Returns ErrModelNotFound
// when either artifact is missing.
func (s *Store) LoadModel(tenant string) (*boost.Regressor, model.Metadata, error) {
	modelData, err := os.ReadFile(s.ModelPath(tenant, ModelFile))
	if os.IsNotExist(err) {
		return nil, model.Metadata{}, ErrModelNotFound
	}
	if err != nil {
		return nil, model.Metadata{}, eris.Wrap(err, "artifacts: read model")
	}

	mdData, err := os.ReadFile(s.ModelPath(tenant, MetadataFile))
	if os.IsNotExist(err) {
		return nil, model.Metadata{}, ErrModelNotFound
	}
	if err != nil {
		return nil, model.Metadata{}, eris.Wrap(err, "artifacts: read metadata")
	}

	r, err := boost.Unmarshal(modelData)
	if err != nil {
		return nil, model.Metadata{}, err
	}
	var md model.Metadata
	if err := json.Unmarshal(mdData, &md); err != nil {
		return nil, model.Metadata{}, eris.Wrap(err, "artifacts: parse metadata")
	}
	return r, md, nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "artifacts: create dir for %s", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "artifacts: write %s", path)
	}
	return nil
}
