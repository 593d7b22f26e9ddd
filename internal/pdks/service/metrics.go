package service

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/store"
)

// Metrics are the sync pass counters. A nil *Metrics records nothing.
type Metrics struct {
	passesTotal      *prometheus.CounterVec
	passDuration     prometheus.Histogram
	punchesTotal     *prometheus.CounterVec
	upsertsTotal     *prometheus.CounterVec
	parseErrorsTotal prometheus.Counter
	lastPassSuccess  prometheus.Gauge
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	passesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pdks",
			Subsystem: "sync",
			Name:      "passes_total",
		},
		[]string{"result"},
	)
	registerer.MustRegister(passesTotal)

	passDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "pdks", Subsystem: "sync", Name: "pass_duration_seconds",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	})
	registerer.MustRegister(passDuration)

	punchesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pdks",
			Subsystem: "ingest",
			Name:      "punches_total",
		},
		[]string{"outcome"},
	)
	registerer.MustRegister(punchesTotal)

	upsertsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pdks",
			Subsystem: "reconcile",
			Name:      "upserts_total",
		},
		[]string{"outcome"},
	)
	registerer.MustRegister(upsertsTotal)

	parseErrorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pdks", Subsystem: "reconcile", Name: "parse_errors_total",
	})
	registerer.MustRegister(parseErrorsTotal)

	lastPassSuccess := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "pdks", Subsystem: "sync", Name: "last_pass_success",
		Help: "1 if the most recent pass finished without a pass-level error.",
	})
	registerer.MustRegister(lastPassSuccess)

	return &Metrics{
		passesTotal:      passesTotal,
		passDuration:     passDuration,
		punchesTotal:     punchesTotal,
		upsertsTotal:     upsertsTotal,
		parseErrorsTotal: parseErrorsTotal,
		lastPassSuccess:  lastPassSuccess,
	}
}

func (m *Metrics) observePass(res PassResult) {
	if m == nil {
		return
	}
	result := "ok"
	if res.Err != nil {
		result = "aborted"
	}
	m.passesTotal.WithLabelValues(result).Inc()
	m.passDuration.Observe(res.FinishedAt.Sub(res.StartedAt).Seconds())
	if res.Err != nil {
		m.lastPassSuccess.Set(0)
	} else {
		m.lastPassSuccess.Set(1)
	}
}

func (m *Metrics) observeIngest(s IngestSummary) {
	if m == nil {
		return
	}
	m.punchesTotal.WithLabelValues("inserted").Add(float64(s.Inserted))
	m.punchesTotal.WithLabelValues("skipped").Add(float64(s.Skipped))
	m.punchesTotal.WithLabelValues("failed").Add(float64(s.Failed))
}

func (m *Metrics) observeUpsert(outcome store.UpsertOutcome) {
	if m == nil {
		return
	}
	m.upsertsTotal.WithLabelValues(string(outcome)).Inc()
}

func (m *Metrics) observeParseErrors(n int) {
	if m == nil || n == 0 {
		return
	}
	m.parseErrorsTotal.Add(float64(n))
}
