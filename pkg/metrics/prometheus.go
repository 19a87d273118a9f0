package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	ScansProcessed       prometheus.Counter
	RecordsAggregated    prometheus.Counter
	ComparisonsRecorded  prometheus.Counter
	ReservationsCreated  prometheus.Counter
	ReservationsRejected *prometheus.CounterVec
	RetrainsTriggered    prometheus.Counter
	AggregationTime      prometheus.Histogram
	RankingTime          prometheus.Histogram
	ErrorsCount          *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ScansProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_processed_total",
			Help:      "The total number of raw QR scan events processed",
		}),
		RecordsAggregated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "occupancy_records_total",
			Help:      "The total number of hourly occupancy records appended",
		}),
		ComparisonsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prediction_comparisons_total",
			Help:      "The total number of predicted-vs-actual comparisons recorded",
		}),
		ReservationsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservations_created_total",
			Help:      "The total number of reservations admitted",
		}),
		ReservationsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservations_rejected_total",
			Help:      "The total number of reservation requests rejected",
		}, []string{"reason"}),
		RetrainsTriggered: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrains_triggered_total",
			Help:      "The total number of model retraining runs triggered",
		}),
		AggregationTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "aggregation_time_seconds",
			Help:      "Time taken to aggregate a raw scan batch",
			Buckets:   prometheus.DefBuckets,
		}),
		RankingTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ranking_time_seconds",
			Help:      "Time taken to rank facilities for a request",
			Buckets:   prometheus.DefBuckets,
		}),
		ErrorsCount: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
