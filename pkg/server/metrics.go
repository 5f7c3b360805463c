package server

import (
	"net/http"
	"runtime"
	"time"

	"github.com/crystal-mush/gosoul/pkg/soul"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus metric descriptors for the soul engine. Each
// Metrics owns its registry so several engines can live in one process.
type Metrics struct {
	registry  *prometheus.Registry
	startTime time.Time

	commandsTotal    *prometheus.CounterVec
	parseSeconds     prometheus.Histogram
	assumptionsTotal prometheus.Counter
	degradedTotal    prometheus.Counter
	reloadsTotal     *prometheus.CounterVec
	vocabVerbs       prometheus.Gauge
	vocabWords       prometheus.Gauge
	uptimeSeconds    prometheus.Gauge
	memoryHeapBytes  prometheus.Gauge
	goroutines       prometheus.Gauge
}

// NewMetrics creates and registers the engine metrics.
func NewMetrics(startTime time.Time) *Metrics {
	m := &Metrics{
		registry:  prometheus.NewRegistry(),
		startTime: startTime,
		commandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gosoul_commands_total",
			Help: "Commands dispatched, by outcome (ok, external or the error kind).",
		}, []string{"outcome"}),
		parseSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gosoul_parse_seconds",
			Help:    "Time spent parsing and rendering one command.",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
		}),
		assumptionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gosoul_pronoun_assumptions_total",
			Help: "Pronouns expanded to a remembered referent.",
		}),
		degradedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gosoul_degraded_renders_total",
			Help: "Renders where a target had left and was shown as someone.",
		}),
		reloadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gosoul_vocabulary_reloads_total",
			Help: "Vocabulary reloads, by result.",
		}, []string{"result"}),
		vocabVerbs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gosoul_vocabulary_verbs",
			Help: "Verbs in the active table.",
		}),
		vocabWords: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gosoul_vocabulary_words",
			Help: "Distinct words in the active lexicon.",
		}),
		uptimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gosoul_uptime_seconds",
			Help: "Engine uptime in seconds.",
		}),
		memoryHeapBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gosoul_memory_heap_bytes",
			Help: "Go heap memory allocated in bytes.",
		}),
		goroutines: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gosoul_goroutines",
			Help: "Number of active goroutines.",
		}),
	}

	m.registry.MustRegister(
		m.commandsTotal,
		m.parseSeconds,
		m.assumptionsTotal,
		m.degradedTotal,
		m.reloadsTotal,
		m.vocabVerbs,
		m.vocabWords,
		m.uptimeSeconds,
		m.memoryHeapBytes,
		m.goroutines,
	)

	return m
}

// ObserveCommand records one dispatched command.
func (m *Metrics) ObserveCommand(outcome string, took time.Duration) {
	m.commandsTotal.WithLabelValues(outcome).Inc()
	m.parseSeconds.Observe(took.Seconds())
}

// ObserveRender records the side facts of a rendered action.
func (m *Metrics) ObserveRender(res *soul.RenderResult) {
	m.assumptionsTotal.Add(float64(len(res.Action.Assumptions)))
	if res.Degraded {
		m.degradedTotal.Inc()
	}
}

// ObserveReload records a vocabulary reload attempt.
func (m *Metrics) ObserveReload(err error) {
	if err != nil {
		m.reloadsTotal.WithLabelValues("error").Inc()
		return
	}
	m.reloadsTotal.WithLabelValues("ok").Inc()
}

// SetVocabulary publishes the size of the active table.
func (m *Metrics) SetVocabulary(t *soul.Table) {
	m.vocabVerbs.Set(float64(len(t.Verbs())))
	m.vocabWords.Set(float64(t.Lexicon().Len()))
}

// Update refreshes the runtime gauges.
func (m *Metrics) Update() {
	m.uptimeSeconds.Set(time.Since(m.startTime).Seconds())

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	m.memoryHeapBytes.Set(float64(mem.HeapAlloc))
	m.goroutines.Set(float64(runtime.NumGoroutine()))
}

// Handler returns an http.Handler that updates metrics before serving them.
func (m *Metrics) Handler() http.Handler {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.Update()
		h.ServeHTTP(w, r)
	})
}
