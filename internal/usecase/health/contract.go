package health

import "context"

// DBPinger checks index store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// Checker checks an optional downstream provider (NLU, recognition).
type Checker interface {
	HealthCheck(ctx context.Context) error
}
