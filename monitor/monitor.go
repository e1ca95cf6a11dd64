package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/rs/zerolog/log"
)

const job = "expire"

// Recorder counts what a single run did to a bucket.
type Recorder struct {
	registry *prometheus.Registry
	bucket   string
	scanned  prometheus.Counter
	expired  prometheus.Counter
	deleted  prometheus.Counter
	lastRun  prometheus.Gauge
}

func NewRecorder(bucket string) *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		bucket:   bucket,
		scanned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "expire_objects_scanned_total",
			Help: "Objects examined by the expiry pass.",
		}),
		expired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "expire_objects_expired_total",
			Help: "Objects older than the retention window.",
		}),
		deleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "expire_objects_deleted_total",
			Help: "Objects deleted from the bucket.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "expire_last_run_timestamp_seconds",
			Help: "Unix time the last expiry pass finished.",
		}),
	}
	r.registry.MustRegister(r.scanned, r.expired, r.deleted, r.lastRun)
	return r
}

func (r *Recorder) ObjectScanned() { r.scanned.Inc() }
func (r *Recorder) ObjectExpired() { r.expired.Inc() }
func (r *Recorder) ObjectDeleted() { r.deleted.Inc() }

func (r *Recorder) Finish(at time.Time) {
	r.lastRun.Set(float64(at.Unix()))
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Push replaces the metrics of this job and bucket on the pushgateway at url.
func (r *Recorder) Push(ctx context.Context, url string) error {
	log.Debug().Msgf("pushing run metrics to %s", url)
	err := push.New(url, job).
		Grouping("bucket", r.bucket).
		Gatherer(r.registry).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}
	return nil
}
