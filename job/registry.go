package job

import (
	"context"
	"fmt"
	"sync"

	"github.com/staggerhq/stagger"
)

// HandlerFunc is the body of one job category. It receives the job ID
// and the executing worker's name, may take arbitrary wall-clock time,
// and reports ordinary failures through the error return.
type HandlerFunc func(ctx context.Context, jobID int64, worker string) (string, error)

// Registry maps category names to handler functions. It implements
// stagger.Facade, so a populated Registry can be passed directly to
// stagger.WithFacade. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

// NewRegistry creates an empty category handler registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]HandlerFunc),
	}
}

// Register binds a handler to a category name, replacing any previous
// binding.
func (r *Registry) Register(category string, fn HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[category] = fn
}

// Get returns the handler for the given category.
// Returns false if no handler is registered.
func (r *Registry) Get(category string) (HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[category]
	return h, ok
}

// Categories returns all registered category names.
func (r *Registry) Categories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	return names
}

// Execute implements stagger.Facade by invoking the registered handler
// for the category. Lanes validate categories against the rate-limiter
// registry before admission, so a miss here means the two configurations
// disagree; it is reported as an unknown-category error either way.
func (r *Registry) Execute(ctx context.Context, category string, jobID int64, worker string) (string, error) {
	h, ok := r.Get(category)
	if !ok {
		return "", fmt.Errorf("%w: %q", stagger.ErrUnknownCategory, category)
	}
	return h(ctx, jobID, worker)
}
