// Package metrics records what a reminder run did, in Prometheus form.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultNamespace = "practicebot"

// Recorder owns a private registry so runs and tests never share state.
type Recorder struct {
	namespace string
	registry  *prometheus.Registry

	practicesParsed prometheus.Counter
	parseFailures   prometheus.Counter
	messagesPlanned *prometheus.CounterVec
	messagesSent    prometheus.Counter
	sendFailures    prometheus.Counter
	runDuration     prometheus.Histogram
	lastRunUnix     prometheus.Gauge
	lastSuccessUnix prometheus.Gauge
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithNamespace overrides the metric namespace.
func WithNamespace(ns string) Option {
	return func(r *Recorder) {
		if ns != "" {
			r.namespace = ns
		}
	}
}

// New creates a Recorder with its own registry.
func New(opts ...Option) *Recorder {
	r := &Recorder{
		namespace: defaultNamespace,
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(r)
	}

	f := promauto.With(r.registry)
	r.practicesParsed = f.NewCounter(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      "practices_parsed_total",
		Help:      "Practices read from the workbook.",
	})
	r.parseFailures = f.NewCounter(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      "parse_failures_total",
		Help:      "Workbook loads or parses that aborted a run.",
	})
	r.messagesPlanned = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      "messages_planned_total",
		Help:      "Reminder messages rendered, by kind.",
	}, []string{"kind"})
	r.messagesSent = f.NewCounter(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      "messages_sent_total",
		Help:      "Reminder messages accepted by the dispatcher.",
	})
	r.sendFailures = f.NewCounter(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      "send_failures_total",
		Help:      "Reminder messages the dispatcher rejected.",
	})
	r.runDuration = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: r.namespace,
		Name:      "run_duration_seconds",
		Help:      "Wall time of a reminder run.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
	})
	r.lastRunUnix = f.NewGauge(prometheus.GaugeOpts{
		Namespace: r.namespace,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time the last run finished.",
	})
	r.lastSuccessUnix = f.NewGauge(prometheus.GaugeOpts{
		Namespace: r.namespace,
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix time the last run finished without errors.",
	})
	return r
}

func (r *Recorder) PracticesParsed(n int) { r.practicesParsed.Add(float64(n)) }
func (r *Recorder) ParseFailed()          { r.parseFailures.Inc() }
func (r *Recorder) MessageSent()          { r.messagesSent.Inc() }
func (r *Recorder) SendFailed()           { r.sendFailures.Inc() }

// MessagesPlanned counts rendered messages of one kind ("today", "tomorrow").
func (r *Recorder) MessagesPlanned(kind string, n int) {
	r.messagesPlanned.WithLabelValues(kind).Add(float64(n))
}

// RunFinished records the duration and completion time of a run.
func (r *Recorder) RunFinished(started time.Time, err error) {
	now := time.Now()
	r.runDuration.Observe(now.Sub(started).Seconds())
	r.lastRunUnix.Set(float64(now.Unix()))
	if err == nil {
		r.lastSuccessUnix.Set(float64(now.Unix()))
	}
}

// Registry exposes the underlying registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// WriteTextfile writes the registry atomically for the node_exporter
// textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
