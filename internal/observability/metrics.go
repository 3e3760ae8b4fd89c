package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	httpRequestsTotal     *prometheus.CounterVec
	httpLatencySeconds    *prometheus.HistogramVec
	httpErrorsTotal       *prometheus.CounterVec
	replansTotal          *prometheus.CounterVec
	matchRefreshSeconds   prometheus.Histogram
	matchBucketTotal      *prometheus.CounterVec
	matchCacheTotal       *prometheus.CounterVec
	notificationsTotal    *prometheus.CounterVec
	sseClientsActive      prometheus.Gauge
	assessmentResultTotal *prometheus.CounterVec
	companyInvitesTotal   *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roadmap_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "roadmap_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roadmap_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		replansTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roadmap_replans_total",
			Help: "Replanner evaluations by outcome reason.",
		}, []string{"reason"})

		matchRefreshSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "roadmap_match_refresh_seconds",
			Help:    "Duration of opportunity classification refreshes.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		})

		matchBucketTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roadmap_match_bucket_total",
			Help: "Opportunities classified per eligibility bucket.",
		}, []string{"bucket"})

		matchCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roadmap_match_cache_requests_total",
			Help: "Bucketed match reads by cache result.",
		}, []string{"result"})

		notificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roadmap_notifications_published_total",
			Help: "Notifications published by type.",
		}, []string{"type"})

		sseClientsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "roadmap_sse_clients_active",
			Help: "Currently connected notification stream clients.",
		})

		assessmentResultTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roadmap_assessment_results_total",
			Help: "Graded skill tests by outcome.",
		}, []string{"outcome"})

		companyInvitesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roadmap_company_invites_total",
			Help: "Company job invitations by lifecycle event.",
		}, []string{"event"})

		prometheus.MustRegister(
			httpRequestsTotal, httpLatencySeconds, httpErrorsTotal,
			replansTotal, matchRefreshSeconds, matchBucketTotal, matchCacheTotal,
			notificationsTotal, sseClientsActive, assessmentResultTotal,
			companyInvitesTotal,
		)
	})
}

// HTTPRequests exposes the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the request latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the error response counter.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// Replans counts replanner outcomes.
func Replans() *prometheus.CounterVec {
	RegisterMetrics()
	return replansTotal
}

// MatchRefreshDuration observes classifier refresh time.
func MatchRefreshDuration() prometheus.Histogram {
	RegisterMetrics()
	return matchRefreshSeconds
}

// MatchBuckets counts classified opportunities per bucket.
func MatchBuckets() *prometheus.CounterVec {
	RegisterMetrics()
	return matchBucketTotal
}

// MatchCacheRequests counts bucketed match reads by hit, miss or error.
func MatchCacheRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return matchCacheTotal
}

// NotificationsPublishedTotal counts published notifications.
func NotificationsPublishedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsTotal
}

// SSEClientsActive tracks open notification streams.
func SSEClientsActive() prometheus.Gauge {
	RegisterMetrics()
	return sseClientsActive
}

// AssessmentResults counts recorded assessment outcomes.
func AssessmentResults() *prometheus.CounterVec {
	RegisterMetrics()
	return assessmentResultTotal
}

// CompanyInvites counts invited, applied, declined and shortlisted students.
func CompanyInvites() *prometheus.CounterVec {
	RegisterMetrics()
	return companyInvitesTotal
}
