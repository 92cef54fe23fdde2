package types

// ComponentID identifies a logical subsystem participating in state
// synchronization. The set is closed and known at compile time; the
// registry is keyed by it.
type ComponentID uint8

const (
	// ResourceManager tracks per-node resource capacity and usage.
	ResourceManager ComponentID = iota
	// Scheduler tracks per-node scheduling state.
	Scheduler

	// NumComponents is the number of known components.
	NumComponents
)

func (c ComponentID) String() string {
	switch c {
	case ResourceManager:
		return "resource_manager"
	case Scheduler:
		return "scheduler"
	default:
		return "unknown"
	}
}
