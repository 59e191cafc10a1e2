package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      MetricNameHTTPRequestsTotal,
			Help:      HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      MetricNameHTTPRequestDuration,
			Help:      HelpTextHTTPRequestDuration,
			Buckets:   HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      MetricNameHTTPRequestsInFlight,
			Help:      HelpTextHTTPRequestsInFlight,
		},
	)
)

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      MetricNameEventsPublished,
			Help:      HelpTextEventsPublished,
		},
		[]string{LabelTopic, LabelType},
	)

	EventPublishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      MetricNameEventPublishErrors,
			Help:      HelpTextEventPublishErrors,
		},
		[]string{LabelTopic, LabelType},
	)
)

// Business Metrics
var (
	SweetCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      MetricNameSweetCacheLookups,
			Help:      HelpTextSweetCacheLookups,
		},
		[]string{LabelResult},
	)

	SearchesPerformed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      MetricNameSearchesPerformed,
			Help:      HelpTextSearchesPerformed,
		},
		[]string{LabelBackend},
	)

	ItemsPurchased = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      MetricNameItemsPurchased,
			Help:      HelpTextItemsPurchased,
		},
		[]string{LabelCategory},
	)

	ItemsRestocked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      MetricNameItemsRestocked,
			Help:      HelpTextItemsRestocked,
		},
		[]string{LabelCategory},
	)

	PurchasesRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      MetricNamePurchasesRejected,
			Help:      HelpTextPurchasesRejected,
		},
	)

	Revenue = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      MetricNameRevenue,
			Help:      HelpTextRevenue,
		},
	)
)
