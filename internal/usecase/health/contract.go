package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// CapacityChecker reports whether new sessions can still be admitted.
type CapacityChecker interface {
	CheckCapacity() error
}
