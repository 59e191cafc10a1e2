package metrics

const namespace = "sweetshop"

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Event metric names
const (
	MetricNameEventsPublished    = "events_published_total"
	MetricNameEventPublishErrors = "event_publish_errors_total"
	MetricNameSweetCacheLookups  = "sweet_cache_lookups_total"
	MetricNameSearchesPerformed  = "searches_performed_total"
	MetricNameItemsPurchased     = "items_purchased_total"
	MetricNameItemsRestocked     = "items_restocked_total"
	MetricNamePurchasesRejected  = "purchases_rejected_total"
	MetricNameRevenue            = "revenue_total"
)

const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
	HelpTextEventsPublished      = "Total number of events published to the broker"
	HelpTextEventPublishErrors   = "Total number of events that failed to publish"
	HelpTextSweetCacheLookups    = "Sweet cache lookups by result"
	HelpTextSearchesPerformed    = "Catalog searches by backend"
	HelpTextItemsPurchased       = "Units sold per category"
	HelpTextItemsRestocked       = "Units restocked per category"
	HelpTextPurchasesRejected    = "Purchases rejected for insufficient stock"
	HelpTextRevenue              = "Revenue from completed purchases"
)

const (
	LabelMethod   = "method"
	LabelPath     = "path"
	LabelStatus   = "status"
	LabelTopic    = "topic"
	LabelType     = "type"
	LabelResult   = "result"
	LabelBackend  = "backend"
	LabelCategory = "category"
)

// HTTPLatencyBuckets covers fast lookups up to slow transactional writes.
var HTTPLatencyBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}
