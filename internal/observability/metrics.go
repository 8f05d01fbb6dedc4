package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"connector-finder/internal/finder/model"
)

// Metrics is registered on its own registry so tests can build as many as
// they like.
type Metrics struct {
	reg *prometheus.Registry

	Searches     *prometheus.CounterVec
	VendorResult *prometheus.CounterVec
	Records      *prometheus.GaugeVec
	HTTPDuration *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		Searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "finder_searches_total",
			Help: "Searches by input mode and outcome.",
		}, []string{"mode", "outcome"}),
		VendorResult: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "finder_vendor_results_total",
			Help: "Per-vendor result statuses (ok, empty, no_mapping, not_found).",
		}, []string{"vendor", "status"}),
		Records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "finder_dataset_records",
			Help: "Records loaded per vendor at startup.",
		}, []string{"vendor"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "finder_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	m.reg.MustRegister(m.Searches, m.VendorResult, m.Records, m.HTTPDuration,
		collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveDataset(stats map[model.Vendor]model.LoadStats) {
	for v, s := range stats {
		m.Records.WithLabelValues(string(v)).Set(float64(s.Loaded))
	}
}

func (m *Metrics) ObserveAlternatives(a model.Alternatives) {
	m.VendorResult.WithLabelValues(string(model.Schoeck), string(a.Schoeck.Status)).Inc()
	m.VendorResult.WithLabelValues(string(model.Leviat), string(a.Leviat.Status)).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	m.HTTPDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// ObserveSearch counts one search; mode is "model", "specs" or "product".
func (m *Metrics) ObserveSearch(mode, outcome string) {
	m.Searches.WithLabelValues(mode, outcome).Inc()
}
