package metrics

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal   = "http_requests_total"
	MetricNameHTTPRequestDuration = "http_request_duration_seconds"
)

// Calculation metric names
const (
	MetricNameCalculationsTotal   = "quid_calculations_total"
	MetricNameCalculationDuration = "quid_calculation_duration_seconds"
	MetricNameWarningsTotal       = "quid_warnings_total"
	MetricNameCacheLookupsTotal   = "quid_cache_lookups_total"
	MetricNameNutritionLookups    = "quid_nutrition_lookups_total"
)

// Help text
const (
	HelpTextHTTPRequestsTotal   = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration = "HTTP request latency in seconds"
	HelpTextCalculationsTotal   = "Total number of QUID calculations"
	HelpTextCalculationDuration = "QUID calculation latency in seconds"
	HelpTextWarningsTotal       = "Total number of regulatory warnings emitted"
	HelpTextCacheLookupsTotal   = "Result cache lookups by outcome"
	HelpTextNutritionLookups    = "Open Food Facts lookups by outcome"
)

// Label names
const (
	LabelMethod   = "method"
	LabelPath     = "path"
	LabelStatus   = "status"
	LabelLossType = "loss_type"
	LabelKind     = "kind"
	LabelResult   = "result"
)

// Label values
const (
	ResultHit      = "hit"
	ResultMiss     = "miss"
	ResultError    = "error"
	ResultNotFound = "not_found"
	ResultFound    = "found"

	WarningFat              = "fat"
	WarningConnectiveTissue = "connective_tissue"
	WarningNesting          = "nesting"
)

// Latency buckets (seconds). Calculations are CPU-bound and fast.
var (
	HTTPLatencyBuckets        = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}
	CalculationLatencyBuckets = []float64{.0001, .0005, .001, .0025, .005, .01, .025, .05, .1}
)
