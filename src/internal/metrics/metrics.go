// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package metrics records validation outcomes on a private Prometheus
// registry and reads them back as a [Stats] snapshot.
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"

	x509certs "github.com/H0llyW00dzZ/x509-chain-validator/src/internal/x509/certs"
	x509chain "github.com/H0llyW00dzZ/x509-chain-validator/src/internal/x509/chain"
)

const namespace = "x509_validator"

const (
	validationsName = namespace + "_validations_total"
	rejectionsName  = namespace + "_rejected_branches_total"
	durationName    = namespace + "_validation_duration_seconds"
	pathLengthName  = namespace + "_path_length"
)

// Outcome labels.
const (
	OutcomeValidated      = "validated"
	OutcomeChainNotFound  = "chain_not_found"
	OutcomeExpired        = "expired"
	OutcomeNotYetValid    = "not_yet_valid"
	OutcomeSignature      = "signature"
	OutcomeNotCA          = "not_ca"
	OutcomePathLength     = "path_length"
	OutcomeTargetMismatch = "target_mismatch"
	OutcomeNameMismatch   = "name_mismatch"
	OutcomeParseError     = "parse_error"
	OutcomeInvalidAnchor  = "invalid_anchor"
	OutcomeCanceled       = "canceled"
	OutcomeOther          = "other"
)

// Classify maps a validation error to an outcome label.
func Classify(err error) string {
	var pe *x509certs.ParseError
	switch {
	case err == nil:
		return OutcomeValidated
	case errors.Is(err, x509chain.ErrChainNotFound):
		return OutcomeChainNotFound
	case errors.Is(err, x509chain.ErrExpiredCertificate):
		return OutcomeExpired
	case errors.Is(err, x509chain.ErrNotYetValid):
		return OutcomeNotYetValid
	case errors.Is(err, x509chain.ErrSignatureVerification):
		return OutcomeSignature
	case errors.Is(err, x509chain.ErrNotCertificateAuthority):
		return OutcomeNotCA
	case errors.Is(err, x509chain.ErrPathLengthExceeded):
		return OutcomePathLength
	case errors.Is(err, x509chain.ErrTargetMismatch):
		return OutcomeTargetMismatch
	case errors.Is(err, x509chain.ErrNameMismatch):
		return OutcomeNameMismatch
	case errors.As(err, &pe):
		return OutcomeParseError
	case errors.Is(err, x509chain.ErrInvalidAnchor), errors.Is(err, x509chain.ErrNoAnchors):
		return OutcomeInvalidAnchor
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	default:
		return OutcomeOther
	}
}

// Recorder collects validation metrics. It is safe for concurrent use.
type Recorder struct {
	reg         *prometheus.Registry
	validations *prometheus.CounterVec
	rejections  prometheus.Counter
	duration    prometheus.Histogram
	pathLength  prometheus.Histogram
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		reg: reg,
		validations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: validationsName,
			Help: "Validation runs by outcome",
		}, []string{"outcome"}),
		rejections: factory.NewCounter(prometheus.CounterOpts{
			Name: rejectionsName,
			Help: "Branches rejected during chain building and validation",
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    durationName,
			Help:    "Time spent building and validating a chain",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		pathLength: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    pathLengthName,
			Help:    "Number of certificates in validated paths, anchor included",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		}),
	}
}

// Registry returns the registry the metrics are registered with.
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

// Observe records one validation run.
func (r *Recorder) Observe(result *x509chain.ValidateResult, tree *x509chain.VerifyTree, err error, elapsed time.Duration) {
	r.validations.WithLabelValues(Classify(err)).Inc()
	r.rejections.Add(float64(len(tree.Rejections())))
	r.duration.Observe(elapsed.Seconds())
	if result != nil {
		r.pathLength.Observe(float64(len(result.Path)))
	}
}

// ObserveLoadError records a run that failed before validation started.
func (r *Recorder) ObserveLoadError(err error) {
	r.validations.WithLabelValues(Classify(err)).Inc()
}

// Stats is a point-in-time view of the recorded metrics.
type Stats struct {
	Validations      map[string]float64 `json:"validations"`
	Total            float64            `json:"total"`
	RejectedBranches float64            `json:"rejectedBranches"`
	DurationCount    uint64             `json:"durationCount"`
	DurationSum      float64            `json:"durationSumSeconds"`
	PathLengthCount  uint64             `json:"pathLengthCount"`
	PathLengthSum    float64            `json:"pathLengthSum"`
}

// Snapshot gathers the registry into Stats.
func (r *Recorder) Snapshot() (Stats, error) {
	stats := Stats{Validations: make(map[string]float64)}

	families, err := r.reg.Gather()
	if err != nil {
		return stats, err
	}

	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch mf.GetName() {
			case validationsName:
				v := m.GetCounter().GetValue()
				stats.Validations[label(m, "outcome")] = v
				stats.Total += v
			case rejectionsName:
				stats.RejectedBranches = m.GetCounter().GetValue()
			case durationName:
				stats.DurationCount = m.GetHistogram().GetSampleCount()
				stats.DurationSum = m.GetHistogram().GetSampleSum()
			case pathLengthName:
				stats.PathLengthCount = m.GetHistogram().GetSampleCount()
				stats.PathLengthSum = m.GetHistogram().GetSampleSum()
			}
		}
	}
	return stats, nil
}

func label(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}
