package insights

import (
	"context"
	"time"

	"masareef/internal/cache"
	"masareef/internal/log"
)

// Client abstracts the remote generation call so tests can inject failures.
type Client interface {
	Generate(ctx context.Context, sum Summary) ([]Insight, error)
}

// Generator is the advisory entry point used by the report service. It tries
// the remote gateway first and falls back to the deterministic local entries
// on any failure, so callers always receive exactly three insights.
type Generator struct {
	client Client // nil when no gateway is configured
	cache  *cache.LRU[[]Insight]
	logger *log.Logger
}

// NewGenerator wires the gateway client (may be nil) with a per-owner result
// cache. Cached advisories keep repeated dashboard loads from re-invoking the
// gateway; aggregates themselves are always recomputed fresh.
func NewGenerator(client Client, cacheSize int, cacheTTL time.Duration, logger *log.Logger) *Generator {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Generator{
		client: client,
		cache:  cache.NewLRU[[]Insight](cacheSize, cacheTTL),
		logger: logger.WithComponent(log.ComponentInsights),
	}
}

// Cache exposes the result cache for expiry management.
func (g *Generator) Cache() cache.Cleaner {
	return g.cache
}

// Generate returns exactly three advisory entries for the owner. It never
// returns an error: generation failures are recovered via the fallback and
// only logged.
func (g *Generator) Generate(ctx context.Context, ownerID string, sum Summary) []Insight {
	if cached, ok := g.cache.Get(ownerID); ok {
		return cached
	}

	if g.client != nil {
		generated, err := g.client.Generate(ctx, sum)
		if err == nil {
			g.cache.Set(ownerID, generated)
			return generated
		}
		g.logger.WarnContext(ctx, "Insight generation failed, using fallback",
			log.FieldOwnerID, ownerID,
			log.FieldError, err)
	}

	fallback := Fallback(sum)
	g.cache.Set(ownerID, fallback)
	return fallback
}

// Invalidate drops the cached advisories for an owner. Called after record
// writes so the next dashboard load reflects the new data.
func (g *Generator) Invalidate(ownerID string) {
	g.cache.Delete(ownerID)
}
