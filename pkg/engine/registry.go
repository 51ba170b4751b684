// Server-side registry of live view sessions. This is the engine the bridge
// drives: Create validates the configuration and records the session, the
// returned instance removes it again on Destroy. The actual drawing happens
// in the embedded browser page, which reads the recorded snapshot back over
// the config endpoint.

package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/yumyai/ggview/logger"
	"github.com/yumyai/ggview/pkg/bridge"
	"github.com/yumyai/ggview/pkg/model"
	"go.uber.org/zap"
)

var ErrContainerBusy = errors.New("container already holds a live view")

// View is one live session: the container it occupies and the snapshot it
// was mounted with.
type View struct {
	Container bridge.Container
	Config    *model.Config
	CreatedAt time.Time
}

// Registry keeps live views keyed by container. Guarded by a mutex because
// the HTTP mux calls in concurrently, even though each container itself sees
// the single mount / single teardown cadence.
type Registry struct {
	mu    sync.RWMutex
	views map[bridge.Container]*View
}

func NewRegistry() *Registry {
	return &Registry{views: make(map[bridge.Container]*View)}
}

// Create implements bridge.Engine. Configuration errors (missing genome,
// malformed locus, sourceless track) surface here, at instance construction.
func (r *Registry) Create(ctx context.Context, cfg *model.Config, container bridge.Container) (bridge.Instance, error) {

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("view construction: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.views[container]; ok {
		return nil, fmt.Errorf("%w: %s", ErrContainerBusy, container)
	}

	r.views[container] = &View{
		Container: container,
		Config:    cfg,
		CreatedAt: time.Now(),
	}

	logger.Info("View created",
		zap.String("container", string(container)),
		zap.String("genome", cfg.Genome.ID),
		zap.Int("tracks", len(cfg.Tracks)))

	return &viewInstance{registry: r, container: container}, nil
}

// Get returns the live view in a container, if any.
func (r *Registry) Get(container bridge.Container) (*View, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.views[container]
	return v, ok
}

// List returns live views, oldest first.
func (r *Registry) List() []*View {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*View, 0, len(r.views))
	for _, v := range r.views {
		out = append(out, v)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out
}

// viewInstance is the handle the bridge holds. Destroy drops the session, so
// the page and config endpoints stop resolving it.
type viewInstance struct {
	registry  *Registry
	container bridge.Container
}

func (i *viewInstance) Destroy() error {

	i.registry.mu.Lock()
	defer i.registry.mu.Unlock()

	if _, ok := i.registry.views[i.container]; !ok {
		return fmt.Errorf("view in container %s is already gone", i.container)
	}

	delete(i.registry.views, i.container)

	logger.Debug("View destroyed", zap.String("container", string(i.container)))
	return nil
}
