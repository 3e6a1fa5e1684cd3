package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	WatchesChecked    prometheus.Counter
	PriceDrops        prometheus.Counter
	NotificationsSent prometheus.Counter
	CycleDuration     prometheus.Histogram
	ErrorsCount       *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		WatchesChecked: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "watches_checked_total",
			Help:      "The total number of watched flights re-priced",
		}),
		PriceDrops: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_drops_total",
			Help:      "The total number of price drops detected",
		}),
		NotificationsSent: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_sent_total",
			Help:      "The total number of notification emails sent",
		}),
		CycleDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "price_check_cycle_duration_seconds",
			Help:      "Time taken by one price check cycle",
			Buckets:   prometheus.DefBuckets,
		}),
		ErrorsCount: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
