package syncer

import (
	"errors"
	"fmt"

	"github.com/clustermesh/statesync/common/types"
)

// ErrAlreadyRegistered is returned when a component id is bound twice.
var ErrAlreadyRegistered = errors.New("component already registered")

type registration struct {
	reporter Reporter
	receiver Receiver
}

// Registry maps a component id to its local reporter/receiver pair.
// Bindings happen once at startup and are never removed; after the engine
// starts the registry is read-only.
type Registry struct {
	order      []types.ComponentID
	components map[types.ComponentID]registration
}

func NewRegistry() *Registry {
	return &Registry{
		components: make(map[types.ComponentID]registration),
	}
}

// Register binds both roles for a component id. Either role may be nil
// for components that only produce or only consume snapshots.
func (r *Registry) Register(component types.ComponentID, reporter Reporter, receiver Receiver) error {
	if reporter == nil && receiver == nil {
		return fmt.Errorf("component %s: reporter and receiver are both nil", component)
	}
	if _, exists := r.components[component]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, component)
	}
	r.components[component] = registration{reporter: reporter, receiver: receiver}
	r.order = append(r.order, component)
	return nil
}

// Lookup returns the bound pair for a component id.
func (r *Registry) Lookup(component types.ComponentID) (Reporter, Receiver, bool) {
	reg, ok := r.components[component]
	return reg.reporter, reg.receiver, ok
}

// Components returns registered component ids in registration order.
func (r *Registry) Components() []types.ComponentID {
	return r.order
}
