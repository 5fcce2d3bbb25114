// Package container provides dependency injection and lifecycle management
// for the billed server and CLI.
package container

import (
	"fmt"
	"os"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/config"
	"github.com/garyjia/billed/internal/infrastructure/external/api"
	"github.com/garyjia/billed/internal/infrastructure/gateway"
	"github.com/garyjia/billed/internal/infrastructure/persistence/bolt"
	"github.com/garyjia/billed/internal/infrastructure/persistence/repository"
	"github.com/garyjia/billed/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/billed/internal/infrastructure/storage"
	"github.com/garyjia/billed/migrations"
	"github.com/garyjia/billed/pkg/database"
	"go.uber.org/zap"
)

// StoreBundle holds the persistence components of the selected driver.
type StoreBundle struct {
	Driver      string
	Bills       port.BillRepository
	Attachments port.AttachmentRepository
	Tx          port.TransactionManager

	ping  func() error
	close func() error
}

// Ping checks the underlying database.
func (b *StoreBundle) Ping() error {
	return b.ping()
}

// Close releases the underlying database.
func (b *StoreBundle) Close() error {
	return b.close()
}

// ProvideStore opens the database selected by cfg.Driver.
// The sqlite driver also applies any pending embedded migration.
func ProvideStore(cfg *config.DatabaseConfig, logger *zap.Logger) (*StoreBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	switch cfg.Driver {
	case config.DriverSQLite:
		return provideSQLite(cfg, logger)
	case config.DriverBolt:
		return provideBolt(cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func provideSQLite(cfg *config.DatabaseConfig, logger *zap.Logger) (*StoreBundle, error) {
	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	if err := database.NewMigrator(db, logger).Run(migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &StoreBundle{
		Driver:      config.DriverSQLite,
		Bills:       repository.NewBillRepository(db.DB, logger),
		Attachments: repository.NewAttachmentRepository(db.DB, logger),
		Tx:          sqlite.NewDB(db.DB, logger),
		ping:        db.Ping,
		close:       db.Close,
	}, nil
}

func provideBolt(cfg *config.DatabaseConfig, logger *zap.Logger) (*StoreBundle, error) {
	store, err := bolt.Open(cfg.Path, logger)
	if err != nil {
		return nil, err
	}

	return &StoreBundle{
		Driver:      config.DriverBolt,
		Bills:       store.Bills(),
		Attachments: store.Attachments(),
		Tx:          store,
		ping:        store.Ping,
		close:       store.Close,
	}, nil
}

// ProvideStorage creates the proof file storage, creating its directory.
func ProvideStorage(cfg *config.StorageConfig, logger *zap.Logger) (*storage.LocalFileStorage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("storage config is required")
	}
	if err := os.MkdirAll(cfg.AttachmentDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create attachment directory: %w", err)
	}
	return storage.NewLocalFileStorage(cfg.AttachmentDir, logger), nil
}

// ProvideLocalGateway wires the bill store over the database and file storage.
func ProvideLocalGateway(store *StoreBundle, files port.FileStorage, cfg *config.StorageConfig, logger *zap.Logger) *gateway.Local {
	return gateway.NewLocal(gateway.Deps{
		Bills:       store.Bills,
		Attachments: store.Attachments,
		Tx:          store.Tx,
		Files:       files,
	}, cfg.PublicBaseURL, logger)
}

// ProvideClientGateway returns the gateway the client commands use: the
// remote API when one is configured, the local gateway otherwise.
func ProvideClientGateway(cfg *config.ClientConfig, local *gateway.Local, logger *zap.Logger) (port.StorageGateway, error) {
	if cfg.APIBaseURL == "" {
		return local, nil
	}

	client, err := api.NewClient(api.Config{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.Timeout,
	}, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Using remote bill store", zap.String("api_base_url", cfg.APIBaseURL))
	return client, nil
}
