// Package metrics exposes Prometheus instrumentation for the frame
// transformation pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "terraframe"

// Cache lookup results.
const (
	ResultHit  = "hit"
	ResultMiss = "miss"
)

var (
	matrixCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matrix_cache_lookups_total",
			Help:      "Transformation matrix cache lookups by result.",
		},
		[]string{"result"},
	)

	eopClamps = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "eop_clamped_lookups_total",
			Help:      "EOP lookups outside the table range that were clamped to an endpoint.",
		},
	)

	computeSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "matrix_compute_seconds",
			Help:      "Time spent building the full GCRS/ITRS matrix chain.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		},
	)

	datasetSamples = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_samples",
			Help:      "Number of samples or terms loaded per dataset.",
		},
		[]string{"dataset"},
	)
)

func init() {
	prometheus.MustRegister(matrixCacheLookups)
	prometheus.MustRegister(eopClamps)
	prometheus.MustRegister(computeSeconds)
	prometheus.MustRegister(datasetSamples)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveCacheHit records a matrix cache hit.
func ObserveCacheHit() {
	matrixCacheLookups.WithLabelValues(ResultHit).Inc()
}

// ObserveCacheMiss records a matrix cache miss.
func ObserveCacheMiss() {
	matrixCacheLookups.WithLabelValues(ResultMiss).Inc()
}

// ObserveClamp records a clamped EOP lookup.
func ObserveClamp() {
	eopClamps.Inc()
}

// ObserveCompute records the duration of one full matrix computation.
func ObserveCompute(d time.Duration) {
	computeSeconds.Observe(d.Seconds())
}

// SetDatasetSize records the size of a loaded dataset such as "eop" or a
// series name.
func SetDatasetSize(dataset string, n int) {
	datasetSamples.WithLabelValues(dataset).Set(float64(n))
}

// Snapshot summarises the current values of the pipeline metrics.
type Snapshot struct {
	CacheHits    float64
	CacheMisses  float64
	Clamps       float64
	Computations uint64
	Datasets     map[string]float64
}

// Collect gathers the registered pipeline metrics from the default
// registry.
func Collect() (Snapshot, error) {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{Datasets: make(map[string]float64)}
	for _, mf := range families {
		switch mf.GetName() {
		case namespace + "_matrix_cache_lookups_total":
			for _, m := range mf.GetMetric() {
				for _, lp := range m.GetLabel() {
					if lp.GetName() != "result" {
						continue
					}
					switch lp.GetValue() {
					case ResultHit:
						snap.CacheHits = m.GetCounter().GetValue()
					case ResultMiss:
						snap.CacheMisses = m.GetCounter().GetValue()
					}
				}
			}
		case namespace + "_eop_clamped_lookups_total":
			for _, m := range mf.GetMetric() {
				snap.Clamps = m.GetCounter().GetValue()
			}
		case namespace + "_matrix_compute_seconds":
			for _, m := range mf.GetMetric() {
				snap.Computations = m.GetHistogram().GetSampleCount()
			}
		case namespace + "_dataset_samples":
			for _, m := range mf.GetMetric() {
				for _, lp := range m.GetLabel() {
					if lp.GetName() == "dataset" {
						snap.Datasets[lp.GetValue()] = m.GetGauge().GetValue()
					}
				}
			}
		}
	}
	return snap, nil
}
