package pillar

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// storeMetrics holds the Prometheus instruments for store actions. A nil
// *storeMetrics is valid and records nothing, so call sites never need a
// guard.
type storeMetrics struct {
	requestsTotal *prometheus.CounterVec
	cacheHits     *prometheus.CounterVec
}

// newStoreMetrics registers the store's collectors on reg. Returns nil
// when reg is nil, which disables metrics.
func newStoreMetrics(reg prometheus.Registerer) *storeMetrics {
	if reg == nil {
		return nil
	}

	factory := promauto.With(reg)
	return &storeMetrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pillar",
			Subsystem: "store",
			Name:      "requests_total",
			Help:      "API requests issued by store actions, by action and outcome",
		}, []string{"action", "status"}),

		cacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pillar",
			Subsystem: "store",
			Name:      "cache_hits_total",
			Help:      "Action dispatches satisfied from the cache without a network call",
		}, []string{"action"}),
	}
}

// recordRequest counts one network call made by an action.
func (m *storeMetrics) recordRequest(action string, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.requestsTotal.WithLabelValues(action, status).Inc()
}

// recordCacheHit counts one memoized dispatch.
func (m *storeMetrics) recordCacheHit(action string) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(action).Inc()
}
