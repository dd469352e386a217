package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rescueconnect"

var (
	AlertsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alerts_created_total",
		Help:      "Alerts persisted, by severity.",
	}, []string{"severity"})

	DistributionRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "distribution_runs_total",
		Help:      "Fan-out attempts, by result.",
	}, []string{"result"})

	DistributionRecipients = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "distribution_recipients",
		Help:      "Agencies an alert was fanned out to.",
		Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
	})

	DispatchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dispatch_failures_total",
		Help:      "Alerts created whose distribution could not be completed or queued.",
	})

	ReadAcks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alert_read_acks_total",
		Help:      "Mark-as-read requests accepted.",
	})

	AlertsPurged = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alerts_purged_total",
		Help:      "Expired alerts removed by the reaper.",
	})

	DistributionQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "distribution_queue_depth",
		Help:      "Jobs waiting in the distribution queue.",
	})

	DistributionDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "distribution_jobs_dropped_total",
		Help:      "Jobs abandoned after all retries failed.",
	})
)

const (
	ResultOK     = "ok"
	ResultFailed = "failed"
)

func Handler() http.Handler {
	return promhttp.Handler()
}
