// Package metrics holds the application counters exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "kaashub"

// Result label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics groups the counters the handlers record.
type Metrics struct {
	SignIns       *prometheus.CounterVec
	SignUps       *prometheus.CounterVec
	SignOuts      *prometheus.CounterVec
	ProfileSaves  *prometheus.CounterVec
	AvatarUploads *prometheus.CounterVec
}

// New creates the counters and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SignIns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "sign_ins_total",
			Help:      "Sign-in attempts by method and result.",
		}, []string{"method", "result"}),
		SignUps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "sign_ups_total",
			Help:      "Email sign-ups by result.",
		}, []string{"result"}),
		SignOuts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "sign_outs_total",
			Help:      "Sign-outs by result.",
		}, []string{"result"}),
		ProfileSaves: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "profile",
			Name:      "saves_total",
			Help:      "Profile saves by result.",
		}, []string{"result"}),
		AvatarUploads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "profile",
			Name:      "avatar_uploads_total",
			Help:      "Avatar uploads by result.",
		}, []string{"result"}),
	}
}

// NewNop returns counters registered nowhere, for tests.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

// Result maps an error to a result label.
func Result(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}
