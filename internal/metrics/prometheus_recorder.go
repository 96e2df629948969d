package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "sheetwatch"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reads         *prom.CounterVec
	seeds         prom.Counter
	changes       prom.Counter
	notifications *prom.CounterVec
	stateSaves    *prom.CounterVec
	cycleFailures prom.Counter
	cycleDuration prom.Histogram
	backoff       prom.Gauge
}

// NewPrometheusRecorder constructs and registers the metrics on reg. A nil
// reg gets a private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reads: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "cell_reads_total",
			Help:      "Cell reads by result",
		}, []string{"result"}),
		seeds: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "seeds_total",
			Help:      "Targets recorded for the first time without notifying",
		}),
		changes: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "changes_total",
			Help:      "Detected value changes",
		}),
		notifications: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification deliveries by result",
		}, []string{"result"}),
		stateSaves: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "state_saves_total",
			Help:      "State persistence attempts by result",
		}, []string{"result"}),
		cycleFailures: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "cycle_failures_total",
			Help:      "Poll cycles abandoned by a cycle-level failure",
		}),
		cycleDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Duration of a full pass over all targets",
			Buckets:   prom.DefBuckets,
		}),
		backoff: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "backoff_units",
			Help:      "Current backoff multiplier (1 means no backoff)",
		}),
	}
	reg.MustRegister(pr.reads, pr.seeds, pr.changes, pr.notifications, pr.stateSaves,
		pr.cycleFailures, pr.cycleDuration, pr.backoff)
	pr.backoff.Set(1)
	return pr
}

func (p *PrometheusRecorder) IncRead(result ResultLabel) {
	p.reads.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) IncSeed() { p.seeds.Inc() }

func (p *PrometheusRecorder) IncChange() { p.changes.Inc() }

func (p *PrometheusRecorder) IncNotification(result ResultLabel) {
	p.notifications.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) IncStateSave(result ResultLabel) {
	p.stateSaves.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) IncCycleFailure() { p.cycleFailures.Inc() }

func (p *PrometheusRecorder) ObserveCycleDuration(d time.Duration) {
	p.cycleDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) SetBackoff(units int) { p.backoff.Set(float64(units)) }
