package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records prediction lifecycle counters and timings.
type Metrics struct {
	predictions      *prometheus.CounterVec
	alerts           *prometheus.CounterVec
	trainings        *prometheus.CounterVec
	validations      *prometheus.CounterVec
	trainingDuration *prometheus.HistogramVec
}

// New registers lifecycle metrics on the default Prometheus registerer.
func New() (*Metrics, error) {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewWithRegistry(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	predictions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "predictions_created_total",
		Help: "Total number of predictions generated",
	}, []string{"model_id", "category"})
	alerts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "alerts_triggered_total",
		Help: "Total number of alerts triggered by the rule engine",
	}, []string{"type", "severity"})
	trainings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "model_trainings_total",
		Help: "Total number of training runs",
	}, []string{"algorithm", "outcome"})
	validations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "prediction_validations_total",
		Help: "Total number of prediction validations",
	}, []string{"accurate"})
	trainingDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "model_training_duration_seconds",
		Help:    "Wall-clock duration of training runs",
		Buckets: prometheus.DefBuckets,
	}, []string{"algorithm"})

	m := &Metrics{
		predictions:      predictions,
		alerts:           alerts,
		trainings:        trainings,
		validations:      validations,
		trainingDuration: trainingDuration,
	}

	for _, c := range []prometheus.Collector{predictions, alerts, trainings, validations, trainingDuration} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}

	return m, nil
}

// PredictionCreated counts one generated prediction.
func (m *Metrics) PredictionCreated(modelID, category string) {
	m.predictions.WithLabelValues(modelID, category).Inc()
}

// AlertTriggered counts one triggered alert.
func (m *Metrics) AlertTriggered(alertType, severity string) {
	m.alerts.WithLabelValues(alertType, severity).Inc()
}

// TrainingCompleted counts one training run and records its duration.
func (m *Metrics) TrainingCompleted(algorithm, outcome string, seconds float64) {
	m.trainings.WithLabelValues(algorithm, outcome).Inc()
	if outcome == "success" {
		m.trainingDuration.WithLabelValues(algorithm).Observe(seconds)
	}
}

// ValidationRecorded counts one validation by accuracy outcome.
func (m *Metrics) ValidationRecorded(accurate bool) {
	label := "false"
	if accurate {
		label = "true"
	}
	m.validations.WithLabelValues(label).Inc()
}
