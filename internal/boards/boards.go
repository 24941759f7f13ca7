package boards

import (
	"context"
	"fmt"
	"sort"

	"github.com/jobpilot/jobpilot/internal/jobs"
)

// Source is one job board the batch runner can drive. Login is a no-op for
// boards with token auth; dry-run batches never call it.
type Source interface {
	Name() string
	Login(ctx context.Context) error
	Search(ctx context.Context, query, location string) ([]*jobs.Posting, error)
	Apply(ctx context.Context, posting *jobs.Posting) (*jobs.Application, error)
}

// Factory builds a source from runtime configuration.
type Factory func() (Source, error)

// Registry maps platform names to source factories.
type Registry struct {
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a platform. Later registrations win.
func (r *Registry) Register(name string, factory Factory) {
	r.factories[name] = factory
}

// Open builds the source for the platform.
func (r *Registry) Open(name string) (Source, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unsupported platform %q (known: %v)", name, r.Platforms())
	}
	return factory()
}

// Platforms lists the registered platform names, sorted.
func (r *Registry) Platforms() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
