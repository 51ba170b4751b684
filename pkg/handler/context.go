package handler

// DI for all handlers and models alike.

import (
	"sync"

	"github.com/yumyai/ggview/pkg/bridge"
	"github.com/yumyai/ggview/pkg/db"
	"github.com/yumyai/ggview/pkg/engine"
	"github.com/yumyai/ggview/pkg/files"
)

type ViewContext struct {
	Engine *engine.Registry
	Store  *db.ViewStore
	Files  *files.Provider

	// Teardown handles for the views this server mounted, keyed by
	// container id. One handle per live view, invoked exactly once.
	mu     sync.Mutex
	mounts map[string]bridge.Teardown
}

func NewViewContext(eng *engine.Registry, store *db.ViewStore, provider *files.Provider) *ViewContext {
	return &ViewContext{
		Engine: eng,
		Store:  store,
		Files:  provider,
		mounts: make(map[string]bridge.Teardown),
	}
}

func (vc *ViewContext) putTeardown(id string, td bridge.Teardown) {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	vc.mounts[id] = td
}

// popTeardown removes and returns the handle, so it can only be invoked
// once through this path.
func (vc *ViewContext) popTeardown(id string) (bridge.Teardown, bool) {
	vc.mu.Lock()
	defer vc.mu.Unlock()

	td, ok := vc.mounts[id]
	if ok {
		delete(vc.mounts, id)
	}
	return td, ok
}
