package provider

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"

	"syllabus-content-service/internal/telemetry"
)

// Info describes a registered provider for listings.
type Info struct {
	ID      string   `json:"id"`
	Models  []string `json:"models"`
	Primary bool     `json:"primary"`
	Healthy bool     `json:"healthy"`
}

// Registry holds the configured providers and picks one per request.
// At most one provider is primary; the others are fallbacks in registration order.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	order     []string
	primary   string
	fallbacks []string
	log       *zap.SugaredLogger
}

func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.L()
	}
	return &Registry{
		providers: make(map[string]Provider),
		log:       log.Named("provider").Sugar(),
	}
}

// Configure builds and registers a backend for every spec.
func (r *Registry) Configure(specs []Spec) {
	for _, s := range specs {
		r.Register(s.ID, NewBackend(s), s.Primary)
	}
}

// Register adds or replaces a provider. The last primary registration wins.
// Registering the current primary as a fallback demotes it.
func (r *Registry) Register(id string, p Provider, primary bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[id]; !ok {
		r.order = append(r.order, id)
	}
	r.providers[id] = p

	if primary {
		r.fallbacks = slices.DeleteFunc(r.fallbacks, func(f string) bool { return f == id })
		r.primary = id
		return
	}
	if r.primary == id {
		r.primary = ""
	}
	// A fallback registered again keeps its slot in the chain.
	if !slices.Contains(r.fallbacks, id) {
		r.fallbacks = append(r.fallbacks, id)
	}
}

// Dispatch generates text. A registered explicit provider is called alone and
// its error is returned. Otherwise the primary and then each fallback are tried
// in order; when nothing is registered or everything fails DemoText is returned.
func (r *Registry) Dispatch(ctx context.Context, prompt, explicit string, opts GenerateOptions) (string, error) {
	r.mu.RLock()
	if p, ok := r.providers[explicit]; ok && explicit != "" {
		r.mu.RUnlock()
		return p.Generate(ctx, prompt, opts)
	}
	chain := make([]string, 0, len(r.fallbacks)+1)
	hasPrimary := r.primary != ""
	if hasPrimary {
		chain = append(chain, r.primary)
	}
	chain = append(chain, r.fallbacks...)
	backends := make([]Provider, len(chain))
	for i, id := range chain {
		backends[i] = r.providers[id]
	}
	r.mu.RUnlock()

	for i, p := range backends {
		text, err := p.Generate(ctx, prompt, opts)
		if err == nil {
			return text, nil
		}
		telemetry.ProviderFailures.WithLabelValues(chain[i]).Inc()
		if i == 0 && hasPrimary {
			r.log.Warnw("primary provider failed", "provider", chain[i], "error", err)
		} else {
			r.log.Warnw("fallback provider failed", "provider", chain[i], "error", err)
		}
	}

	telemetry.ProviderDemo.Inc()
	r.log.Infow("no provider produced content; returning demo text", "attempted", len(chain))
	return DemoText, nil
}

// Health probes every registered provider.
func (r *Registry) Health(ctx context.Context) map[string]bool {
	r.mu.RLock()
	snapshot := make(map[string]Provider, len(r.providers))
	for id, p := range r.providers {
		snapshot[id] = p
	}
	r.mu.RUnlock()

	out := make(map[string]bool, len(snapshot))
	for id, p := range snapshot {
		out[id] = p.Probe(ctx)
	}
	return out
}

// List returns providers in registration order with their probe result.
func (r *Registry) List(ctx context.Context) []Info {
	health := r.Health(ctx)

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Info, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, Info{
			ID:      id,
			Models:  r.providers[id].Models(),
			Primary: id == r.primary,
			Healthy: health[id],
		})
	}
	return out
}

// Primary returns the current primary provider id, or "" when none is set.
func (r *Registry) Primary() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.primary
}
