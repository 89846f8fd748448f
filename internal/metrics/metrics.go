package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "customer_dashboard"

// Collectors holds the dashboard's Prometheus metrics. It satisfies both
// dataset.Recorder and services.RecomputeRecorder.
type Collectors struct {
	registry *prometheus.Registry

	LoadsTotal        *prometheus.CounterVec
	LoadDuration      prometheus.Histogram
	RowsLoaded        prometheus.Gauge
	CacheHits         prometheus.Counter
	RecomputesTotal   *prometheus.CounterVec
	RecomputeDuration prometheus.Histogram
	UnknownGenders    prometheus.Counter
}

func New() *Collectors {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collectors{
		registry: reg,
		LoadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_loads_total",
			Help:      "Dataset reads from source, by result.",
		}, []string{"result"}),
		LoadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dataset_load_duration_seconds",
			Help:      "Time spent reading and parsing a dataset.",
			Buckets:   prometheus.DefBuckets,
		}),
		RowsLoaded: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_rows",
			Help:      "Rows in the most recently loaded dataset.",
		}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_cache_hits_total",
			Help:      "Loads served from the dataset cache.",
		}),
		RecomputesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recomputes_total",
			Help:      "Dashboard recomputations, by result.",
		}, []string{"result"}),
		RecomputeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recompute_duration_seconds",
			Help:      "Time spent filtering and aggregating one selection.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		}),
		UnknownGenders: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unknown_gender_labels_total",
			Help:      "Distinct unrecognized gender labels seen. The labels themselves are logged, not exported.",
		}),
	}
}

func (c *Collectors) LoadCompleted(_ string, rows int, duration time.Duration, err error) {
	c.LoadDuration.Observe(duration.Seconds())
	if err != nil {
		c.LoadsTotal.WithLabelValues("error").Inc()
		return
	}
	c.LoadsTotal.WithLabelValues("ok").Inc()
	c.RowsLoaded.Set(float64(rows))
}

func (c *Collectors) CacheHit(string) {
	c.CacheHits.Inc()
}

func (c *Collectors) RecomputeCompleted(_ int, duration time.Duration, err error) {
	c.RecomputeDuration.Observe(duration.Seconds())
	if err != nil {
		c.RecomputesTotal.WithLabelValues("error").Inc()
		return
	}
	c.RecomputesTotal.WithLabelValues("ok").Inc()
}

// UnknownGender counts a newly seen label. The label comes from the data, so
// it is not used as a metric label.
func (c *Collectors) UnknownGender(string) {
	c.UnknownGenders.Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
