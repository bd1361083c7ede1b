package backend

import (
	"context"
	"errors"
	"fmt"

	"cashflow/internal/amqp"
	"cashflow/internal/ledger/memory"
	"cashflow/internal/log"
	"cashflow/internal/storage"
)

var errBrokerDown = errors.New("AMQP connection is closed")

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		result *BackendResult
		err    error
	)
	switch config.Type {
	case SQLiteBackend:
		result, err = f.createSQLiteBackend(config)
	case MemoryBackend:
		result, err = f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	result.AMQP = f.connectAMQP(ctx, config)
	if result.AMQP != nil {
		storeCleanup := result.Cleanup
		client := result.AMQP
		result.Cleanup = func() error {
			err := client.Close()
			if storeCleanup != nil {
				err = errors.Join(err, storeCleanup())
			}
			return err
		}
	}

	return result, nil
}

// connectAMQP dials the broker. A broker that cannot be reached is logged and
// the backend runs with inline alert evaluation instead.
func (f *DefaultFactory) connectAMQP(ctx context.Context, config Config) *amqp.Client {
	if config.AMQPURL == "" {
		return nil
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, config.AMQPAlertQueue)
	if err != nil {
		f.logger.WarnContext(ctx, "Failed to initialize AMQP client, evaluating alerts inline",
			log.FieldError, err.Error())
		return nil
	}
	f.logger.InfoContext(ctx, "Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue,
		"alert_queue", config.AMQPAlertQueue)
	return client
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Backend: repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data" // Default directory
	}

	store := memory.NewFromFiles(dataDir)

	f.logger.Info("Initialized memory backend", "data_directory", dataDir)

	return &BackendResult{
		Backend: store,
	}, nil
}
