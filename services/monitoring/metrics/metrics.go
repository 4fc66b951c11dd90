package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so every service (and every test) gets an
// isolated set of collectors.
type Metrics struct {
	registry             *prometheus.Registry
	RecordsCreated       *prometheus.CounterVec
	SettlementsCompleted prometheus.Counter
	SettlementsMissed    prometheus.Counter
	AuthFailures         *prometheus.CounterVec
}

func New(service string) *Metrics {
	reg := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"service": service}

	m := &Metrics{
		registry: reg,
		RecordsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "finternet",
			Name:        "records_created_total",
			Help:        "Records appended to an in-memory store.",
			ConstLabels: constLabels,
		}, []string{"kind"}),
		SettlementsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "finternet",
			Name:        "settlements_completed_total",
			Help:        "Payments moved from pending to completed.",
			ConstLabels: constLabels,
		}),
		SettlementsMissed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "finternet",
			Name:        "settlements_missed_total",
			Help:        "Settlement tasks that could not find their payment.",
			ConstLabels: constLabels,
		}),
		AuthFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "finternet",
			Name:        "auth_failures_total",
			Help:        "Rejected bearer credentials by reason.",
			ConstLabels: constLabels,
		}, []string{"reason"}),
	}

	reg.MustRegister(
		m.RecordsCreated,
		m.SettlementsCompleted,
		m.SettlementsMissed,
		m.AuthFailures,
		collectors.NewGoCollector(),
	)

	return m
}

// TrackStoreSize exposes the size of a record collection as a gauge.
func (m *Metrics) TrackStoreSize(kind string, size func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "finternet",
		Name:      kind + "_store_size",
		Help:      "Number of " + kind + " records held in memory.",
	}, func() float64 { return float64(size()) }))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
