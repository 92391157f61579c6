package training

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/progressio/prediction-engine/internal/domain"
	"github.com/progressio/prediction-engine/internal/modules/training/algorithms"
)

// Artifact is the serialized form of one fitted model.
type Artifact struct {
	ModelID   int64            `json:"model_id"`
	ModelKind domain.ModelKind `json:"model_kind"`
	Algorithm string           `json:"algorithm"`
	Features  []string         `json:"features"`
	TrainedAt time.Time        `json:"trained_at"`
	Params    json.RawMessage  `json:"params"`
}

// Model reconstructs the fitted algorithm from the artifact parameters.
func (a *Artifact) Model() (algorithms.Model, error) {
	return algorithms.Unmarshal(a.ModelKind, a.Algorithm, a.Params)
}

// ArtifactStore persists fitted model artifacts as JSON files under a
// fixed directory. Each save writes a fresh file (unique per training
// run) so a losing concurrent training can never clobber the committed
// artifact; the registry row points at the authoritative path.
type ArtifactStore struct {
	dir string
}

// NewArtifactStore creates the artifacts directory if needed
func NewArtifactStore(dir string) (*ArtifactStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifacts directory: %w", err)
	}
	return &ArtifactStore{dir: dir}, nil
}

// Save writes the artifact and returns its path
func (s *ArtifactStore) Save(a *Artifact) (string, error) {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal artifact: %w", err)
	}

	name := fmt.Sprintf("model_%d_%d.json", a.ModelID, a.TrainedAt.UnixNano())
	path := filepath.Join(s.dir, name)

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("failed to finalize artifact: %w", err)
	}

	return path, nil
}

// Load reads an artifact from the given path.
// A missing file surfaces as domain.ErrModelUnavailable.
func (s *ArtifactStore) Load(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: artifact %s missing", domain.ErrModelUnavailable, path)
		}
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal artifact %s: %w", path, err)
	}
	return &a, nil
}
