package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "petlove"

var (
	QuotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "quotes_total", Help: "Fare quotes computed"},
		[]string{"vehicle_type", "result"},
	)

	RoleResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "role_resolutions_total", Help: "Role decisions committed, by source"},
		[]string{"source"},
	)
	ProfileLookupAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "profile_lookup_attempts_total", Help: "Profile store lookup attempts, by result"},
		[]string{"result"},
	)
	RoleCacheHitsTotal    = promauto.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "role_cache_hits_total", Help: "Role decisions served from cache"})
	RoleCacheExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "role_cache_expired_total", Help: "Cached role decisions dropped after their TTL"})
	StaleResolutionsTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "role_stale_resolutions_total", Help: "Lookups discarded because their generation was superseded"})

	BookingsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "bookings_created_total", Help: "Bookings created"},
		[]string{"vehicle_type"},
	)
	DistanceCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "distance_cache_total", Help: "Driving distance cache lookups"},
		[]string{"result"},
	)
	EventRegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "event_registrations_total", Help: "Event sign-ups, by result"},
		[]string{"result"},
	)
	ChatRepliesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "chat_replies_total", Help: "Chat replies, by provider"},
		[]string{"provider"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
