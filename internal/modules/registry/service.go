package registry

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/progressio/prediction-engine/internal/domain"
	"github.com/progressio/prediction-engine/internal/events"
	"github.com/progressio/prediction-engine/internal/modules/training/algorithms"
)

// Service implements model registry operations
type Service struct {
	repo   *Repository
	events *events.Manager
	log    zerolog.Logger
}

// NewService creates a new model registry service
func NewService(repo *Repository, eventManager *events.Manager, log zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		events: eventManager,
		log:    log.With().Str("service", "registry").Logger(),
	}
}

// RegisterRequest is an operator request to register a new model
type RegisterRequest struct {
	Name            string             `json:"name"`
	ModelKind       domain.ModelKind   `json:"model_kind"`
	TargetVariable  string             `json:"target_variable"`
	Algorithm       string             `json:"algorithm"`
	Hyperparameters map[string]float64 `json:"hyperparameters,omitempty"`
	Features        []string           `json:"features"`
}

// Register validates the request and stores a new model with default
// lifecycle flags: active, version "1.0". The algorithm must belong to
// the closed catalog for the declared kind.
func (s *Service) Register(req RegisterRequest) (*PredictionModel, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidSpec)
	}
	if !req.ModelKind.Valid() {
		return nil, fmt.Errorf("%w: model_kind must be regression or classification", domain.ErrInvalidSpec)
	}
	if req.TargetVariable == "" {
		return nil, fmt.Errorf("%w: target_variable is required", domain.ErrInvalidSpec)
	}
	if req.Algorithm == "" {
		return nil, fmt.Errorf("%w: algorithm is required", domain.ErrInvalidSpec)
	}
	if !algorithms.Supported(req.ModelKind, req.Algorithm) {
		return nil, fmt.Errorf("%w: %q for kind %q", domain.ErrUnknownAlgorithm, req.Algorithm, req.ModelKind)
	}
	if len(req.Features) == 0 {
		return nil, fmt.Errorf("%w: at least one feature is required", domain.ErrInvalidSpec)
	}

	model := &PredictionModel{
		Name:            req.Name,
		ModelKind:       req.ModelKind,
		TargetVariable:  req.TargetVariable,
		Algorithm:       req.Algorithm,
		Hyperparameters: req.Hyperparameters,
		Features:        req.Features,
		IsActive:        true,
		Version:         "1.0",
	}

	created, err := s.repo.Create(model)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("model_id", created.ID).
		Str("name", created.Name).
		Str("algorithm", created.Algorithm).
		Msg("Model registered")

	s.events.Emit(events.ModelRegistered, "registry", map[string]interface{}{
		"model_id":  created.ID,
		"name":      created.Name,
		"kind":      string(created.ModelKind),
		"algorithm": created.Algorithm,
	})

	return created, nil
}

// Get retrieves one model by id
func (s *Service) Get(id int64) (*PredictionModel, error) {
	return s.repo.GetByID(id)
}

// List retrieves all registered models
func (s *Service) List(activeOnly bool) ([]PredictionModel, error) {
	return s.repo.GetAll(activeOnly)
}

// Deactivate flips a model's active flag; historical predictions keep
// referencing the model
func (s *Service) Deactivate(id int64) error {
	if err := s.repo.Deactivate(id); err != nil {
		return err
	}

	s.events.Emit(events.ModelDeactivated, "registry", map[string]interface{}{
		"model_id": id,
	})
	return nil
}
