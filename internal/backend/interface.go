package backend

import (
	"context"

	"cashflow/internal/amqp"
	"cashflow/internal/ledger"
)

// Backend is the ledger store the services run against.
type Backend interface {
	ledger.Store
}

// Pinger is implemented by backends with an external dependency worth probing.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function
type BackendResult struct {
	Backend Backend
	// AMQP is nil when no broker is configured or it could not be reached.
	AMQP    *amqp.Client
	Cleanup CleanupFunc
}

// Ping probes the store and the broker. Backends without external
// dependencies are always ready.
func (r *BackendResult) Ping(ctx context.Context) error {
	if p, ok := r.Backend.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return err
		}
	}
	if r.AMQP != nil && !r.AMQP.Healthy() {
		return errBrokerDown
	}
	return nil
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// AMQP, optional for every backend
	AMQPURL        string
	AMQPExchange   string
	AMQPQueue      string
	AMQPAlertQueue string

	// Memory backend specific
	DataDirectory string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
