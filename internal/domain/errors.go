package domain

import "errors"

// Error taxonomy surfaced to callers. Handlers map these to HTTP status
// codes with errors.Is; services wrap them with context via fmt.Errorf.
var (
	// ErrInvalidSpec indicates a missing or malformed required field in an
	// operator request (model registration, prediction request, etc).
	ErrInvalidSpec = errors.New("invalid spec")

	// ErrNotFound indicates an unknown model, prediction or feature id.
	ErrNotFound = errors.New("not found")

	// ErrModelUnavailable indicates an inactive model or a model whose
	// trained artifact cannot be located.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrInvalidHorizon indicates a target date that is not strictly after
	// the prediction date. Horizons are never clamped.
	ErrInvalidHorizon = errors.New("time horizon must be positive")

	// ErrUnknownAlgorithm indicates an algorithm identifier outside the
	// closed catalog for the model kind. Training never substitutes a
	// default algorithm.
	ErrUnknownAlgorithm = errors.New("unknown algorithm")

	// ErrNoTrainingData indicates that no dataset was supplied and no
	// feature source could assemble one. Training never substitutes
	// synthetic data.
	ErrNoTrainingData = errors.New("no training data")

	// ErrFeaturesUnavailable indicates an entity missing one or more of the
	// feature values a model requires for inference.
	ErrFeaturesUnavailable = errors.New("feature values unavailable")

	// ErrMalformedDataset indicates a dataset whose dimensions do not match
	// the model's declared feature list, or with misaligned labels.
	ErrMalformedDataset = errors.New("malformed dataset")

	// ErrAlreadyValidated indicates a second validation attempt against a
	// prediction that is already verified.
	ErrAlreadyValidated = errors.New("prediction already validated")

	// ErrConcurrentTraining indicates a training commit that lost an
	// optimistic concurrency check against a concurrent training run.
	ErrConcurrentTraining = errors.New("concurrent training detected")

	// ErrInvalidTransition indicates an alert lifecycle transition that is
	// not permitted from the alert's current state.
	ErrInvalidTransition = errors.New("invalid state transition")
)
