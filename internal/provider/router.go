package provider

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/gridstake/gridstake/internal/domain"
	"github.com/gridstake/gridstake/internal/logger"
	"github.com/gridstake/gridstake/internal/metrics"
)

const healthCacheSize = 8

// Router fronts the primary and fallback providers. Each fetch goes to the
// healthiest provider and fails over transparently; the returned name tells
// the caller which provider actually served the data.
type Router struct {
	primary     DataProvider
	fallback    DataProvider
	healthCache *expirable.LRU[string, bool]
}

// NewRouter creates a router over the two providers. Health probe results
// are cached for healthTTL so every fetch does not cost an extra round trip.
func NewRouter(primary, fallback DataProvider, healthTTL time.Duration) *Router {
	return &Router{
		primary:     primary,
		fallback:    fallback,
		healthCache: expirable.NewLRU[string, bool](healthCacheSize, nil, healthTTL),
	}
}

// ActiveProvider returns the primary when it is healthy, the fallback
// otherwise.
func (r *Router) ActiveProvider(ctx context.Context) DataProvider {
	if r.isHealthy(ctx, r.primary) {
		return r.primary
	}
	return r.fallback
}

// CheckHealth probes both providers, bypassing the cache, and refreshes the
// cached results. The provider-health job runs this on its own interval.
func (r *Router) CheckHealth(ctx context.Context) map[string]bool {
	status := make(map[string]bool, 2)
	for _, p := range []DataProvider{r.primary, r.fallback} {
		healthy := p.HealthCheck(ctx)
		r.healthCache.Add(p.Name(), healthy)
		status[p.Name()] = healthy
	}
	return status
}

// FetchEvents fetches the season calendar, failing over to the fallback when
// the active provider errors.
func (r *Router) FetchEvents(ctx context.Context, seasonYear int) (string, []domain.ProviderEvent, error) {
	active := r.ActiveProvider(ctx)
	events, err := active.FetchEvents(ctx, seasonYear)
	if err == nil {
		metrics.ProviderRequests.WithLabelValues(active.Name(), metrics.OutcomeSuccess).Inc()
		return active.Name(), events, nil
	}
	metrics.ProviderRequests.WithLabelValues(active.Name(), metrics.OutcomeFailure).Inc()
	if active == r.fallback {
		return active.Name(), nil, err
	}

	logger.FromContext(ctx).Warn("Primary provider failed, using fallback",
		"provider", active.Name(), "error", err)
	metrics.ProviderFailovers.Inc()

	events, err = r.fallback.FetchEvents(ctx, seasonYear)
	if err != nil {
		metrics.ProviderRequests.WithLabelValues(r.fallback.Name(), metrics.OutcomeFailure).Inc()
		return r.fallback.Name(), nil, err
	}
	metrics.ProviderRequests.WithLabelValues(r.fallback.Name(), metrics.OutcomeSuccess).Inc()
	return r.fallback.Name(), events, nil
}

// FetchSessionFacts fetches normalized facts for a finished session, failing
// over to the fallback when the active provider errors.
func (r *Router) FetchSessionFacts(ctx context.Context, sessionExternalID string) (string, *domain.SessionFacts, error) {
	active := r.ActiveProvider(ctx)
	facts, err := active.FetchSessionFacts(ctx, sessionExternalID)
	if err == nil {
		metrics.ProviderRequests.WithLabelValues(active.Name(), metrics.OutcomeSuccess).Inc()
		return active.Name(), facts, nil
	}
	metrics.ProviderRequests.WithLabelValues(active.Name(), metrics.OutcomeFailure).Inc()
	if active == r.fallback {
		return active.Name(), nil, err
	}

	logger.FromContext(ctx).Warn("Primary provider failed, using fallback",
		"provider", active.Name(), "error", err)
	metrics.ProviderFailovers.Inc()

	facts, err = r.fallback.FetchSessionFacts(ctx, sessionExternalID)
	if err != nil {
		metrics.ProviderRequests.WithLabelValues(r.fallback.Name(), metrics.OutcomeFailure).Inc()
		return r.fallback.Name(), nil, err
	}
	metrics.ProviderRequests.WithLabelValues(r.fallback.Name(), metrics.OutcomeSuccess).Inc()
	return r.fallback.Name(), facts, nil
}

func (r *Router) isHealthy(ctx context.Context, p DataProvider) bool {
	if healthy, ok := r.healthCache.Get(p.Name()); ok {
		return healthy
	}
	healthy := p.HealthCheck(ctx)
	r.healthCache.Add(p.Name(), healthy)
	return healthy
}
