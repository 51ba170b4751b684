// The widget bridge: one viewer instance per container, created from one
// model snapshot, released through the returned teardown handle. There is no
// patch operation on purpose; a changed model means teardown plus a fresh
// mount.

package bridge

import (
	"context"

	"github.com/yumyai/ggview/pkg/model"
)

// Container is an opaque handle to the display region a view is mounted
// into. The bridge never looks inside it.
type Container string

// Instance is a live viewer created by an Engine. Destroy releases whatever
// the engine allocated for it.
type Instance interface {
	Destroy() error
}

// Engine is the call surface into the external visualization library:
// create an instance into a container from a config, nothing else.
type Engine interface {
	Create(ctx context.Context, cfg *model.Config, container Container) (Instance, error)
}

// Teardown releases the instance a Mount created. Must be invoked exactly
// once, before the container is reused.
type Teardown func() error

// Mount reads the model snapshot and constructs one viewer instance inside
// the container. Construction errors come back unchanged; the bridge holds
// no resources of its own before the instance exists, so there is nothing to
// clean up on failure.
func Mount(ctx context.Context, eng Engine, cfg *model.Config, container Container) (Teardown, error) {

	inst, err := eng.Create(ctx, cfg.Snapshot(), container)
	if err != nil {
		return nil, err
	}

	return inst.Destroy, nil
}
