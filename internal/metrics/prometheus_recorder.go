package metrics

import (
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "tagbuilder"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	generateDuration prom.Histogram
	postsScanned     prom.Gauge
	tagsFound        prom.Gauge
	pagesWritten     prom.Counter
	postsSkipped     *prom.CounterVec
	outcomes         *prom.CounterVec
	lastRun          prom.Gauge
}

// NewPrometheusRecorder constructs the collectors and registers them on reg.
// A nil registry gets a fresh one.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		generateDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "generate_duration_seconds",
			Help:      "Duration of a full tag page generation",
			Buckets:   prom.DefBuckets,
		}),
		postsScanned: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "posts_scanned",
			Help:      "Posts scanned by the last run",
		}),
		tagsFound: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "tags_found",
			Help:      "Unique tags found by the last run",
		}),
		pagesWritten: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "pages_written_total",
			Help:      "Tag pages written",
		}),
		postsSkipped: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "posts_skipped_total",
			Help:      "Posts or tags skipped, by reason",
		}, []string{"reason"}),
		outcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "run_outcomes_total",
			Help:      "Runs by final status",
		}, []string{"outcome"}),
		lastRun: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last completed run",
		}),
	}
	reg.MustRegister(pr.generateDuration, pr.postsScanned, pr.tagsFound, pr.pagesWritten, pr.postsSkipped, pr.outcomes, pr.lastRun)
	return pr
}

func (p *PrometheusRecorder) ObserveGenerateDuration(d time.Duration) {
	p.generateDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) SetPostsScanned(n int) { p.postsScanned.Set(float64(n)) }

func (p *PrometheusRecorder) SetTagsFound(n int) { p.tagsFound.Set(float64(n)) }

func (p *PrometheusRecorder) AddPagesWritten(n int) { p.pagesWritten.Add(float64(n)) }

func (p *PrometheusRecorder) AddPostsSkipped(reason string, n int) {
	if n <= 0 {
		return
	}
	p.postsSkipped.WithLabelValues(reason).Add(float64(n))
}

func (p *PrometheusRecorder) IncOutcome(outcome Outcome) {
	p.outcomes.WithLabelValues(string(outcome)).Inc()
	p.lastRun.SetToCurrentTime()
}

// WriteTextfile writes every metric gathered from g to path in the text
// exposition format, atomically, for the node-exporter textfile collector.
func WriteTextfile(path string, g prom.Gatherer) error {
	if path == "" {
		return nil
	}
	if err := prom.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}
