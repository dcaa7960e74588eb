package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RecentsSaves = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "folioview", Name: "recents_saves_total", Help: "Successful saves into the recents store by backend."},
		[]string{"backend"},
	)
	RecentsReplacements = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "folioview", Name: "recents_replacements_total", Help: "Saves that replaced an existing record with the same name."},
		[]string{"backend"},
	)
	RecentsEvictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "folioview", Name: "recents_evictions_total", Help: "Records evicted to hold the recents capacity bound."},
		[]string{"backend"},
	)
	RecentsListErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "folioview", Name: "recents_list_errors_total", Help: "Failed listings of the recents store."},
		[]string{"backend"},
	)
	PagesRendered = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "folioview", Name: "pages_rendered_total", Help: "Rendered pages served, by source (cache or fresh)."},
		[]string{"source"},
	)
	AssetCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "folioview", Name: "asset_cache_hits_total", Help: "Shell asset requests served from cache."},
	)
	AssetCacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "folioview", Name: "asset_cache_misses_total", Help: "Shell asset requests that fell back to the origin."},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "folioview", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "folioview", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RecentsSaves)
	reg.MustRegister(RecentsReplacements)
	reg.MustRegister(RecentsEvictions)
	reg.MustRegister(RecentsListErrors)
	reg.MustRegister(PagesRendered)
	reg.MustRegister(AssetCacheHits)
	reg.MustRegister(AssetCacheMisses)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
