package container

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/garyjia/billed/internal/application/bills"
	"github.com/garyjia/billed/internal/application/newbill"
	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/application/session"
	"github.com/garyjia/billed/internal/config"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/export"
	"github.com/garyjia/billed/internal/infrastructure/gateway"
	"github.com/garyjia/billed/internal/infrastructure/preview"
	"github.com/garyjia/billed/internal/infrastructure/storage"
	httpapi "github.com/garyjia/billed/internal/interfaces/http"
	"go.uber.org/zap"
)

// Container manages all application dependencies and lifecycle.
// Components are initialized in dependency order and torn down in reverse.
type Container struct {
	config *config.Config
	logger *zap.Logger

	// Infrastructure
	store *StoreBundle
	files *storage.LocalFileStorage
	local *gateway.Local

	// Application
	gateway   port.StorageGateway
	retriever *bills.Retriever
	renderer  *preview.Renderer
	exporter  *export.XLSXWriter

	// Interfaces
	server *httpapi.Server

	// Lifecycle
	mu     sync.RWMutex
	ready  atomic.Bool
	closed atomic.Bool
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes all components:
// 1. Database and repositories
// 2. Proof file storage
// 3. Gateways
// 4. Application services
// 5. HTTP server (not listening until Server().Start)
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.logger.Info("Starting container initialization", zap.String("driver", c.config.Database.Driver))

	store, err := ProvideStore(&c.config.Database, c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.store = store

	files, err := ProvideStorage(&c.config.Storage, c.logger)
	if err != nil {
		c.closeStore()
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	c.files = files

	c.local = ProvideLocalGateway(c.store, c.files, &c.config.Storage, c.logger)
	gw, err := ProvideClientGateway(&c.config.Client, c.local, c.logger)
	if err != nil {
		c.closeStore()
		return fmt.Errorf("failed to initialize gateway: %w", err)
	}
	c.gateway = gw

	c.retriever = bills.NewRetriever(c.gateway, c.logger)
	c.renderer = preview.NewRenderer(c.config.Preview.DPI, c.logger)
	c.exporter = export.NewXLSXWriter(c.logger)

	// The server always answers from the local store, never from a remote one
	handlers := httpapi.NewHandlers(httpapi.HandlerDeps{
		Store:     c.local,
		Proofs:    c.local,
		Files:     c.files,
		Retriever: bills.NewRetriever(c.local, c.logger),
		Renderer:  c.renderer,
		Exporter:  c.exporter,
		Health:    c.componentStates,
	}, c.logger)
	c.server = httpapi.NewServer(httpapi.ServerConfig{
		Host:           c.config.Server.Host,
		Port:           c.config.Server.Port,
		ReadTimeout:    c.config.Server.ReadTimeout,
		WriteTimeout:   c.config.Server.WriteTimeout,
		MaxUploadBytes: c.config.Server.MaxUploadBytes,
	}, handlers, c.logger)

	c.ready.Store(true)
	c.logger.Info("Container started successfully")
	return nil
}

// Close shuts down all components in reverse order.
func (c *Container) Close() error {
	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")

	var errs []error

	// In-flight /health requests take the read lock, so drain them first
	c.mu.RLock()
	server := c.server
	c.mu.RUnlock()
	if server != nil {
		if err := server.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop server: %w", err))
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.closeStore(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}

	c.closed.Store(true)
	c.ready.Store(false)

	if len(errs) > 0 {
		c.logger.Error("Container closed with errors", zap.Int("error_count", len(errs)))
		return fmt.Errorf("container closed with %d errors", len(errs))
	}

	c.logger.Info("Container closed successfully")
	return nil
}

func (c *Container) closeStore() error {
	if c.store == nil {
		return nil
	}
	err := c.store.Close()
	if err != nil {
		c.logger.Error("Failed to close database", zap.Error(err))
	} else {
		c.logger.Info("Database closed")
	}
	c.store = nil
	return err
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health returns health status of all components.
func (c *Container) Health() *HealthStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}

	if c.store != nil {
		if err := c.store.Ping(); err != nil {
			status.Components["database"] = ComponentHealth{Message: fmt.Sprintf("ping failed: %v", err)}
		} else {
			status.Components["database"] = ComponentHealth{Healthy: true, Message: c.store.Driver}
		}
	} else {
		status.Components["database"] = ComponentHealth{Message: "not initialized"}
	}

	if c.files != nil {
		if info, err := os.Stat(c.files.BaseDir()); err != nil {
			status.Components["storage"] = ComponentHealth{Message: fmt.Sprintf("stat failed: %v", err)}
		} else if !info.IsDir() {
			status.Components["storage"] = ComponentHealth{Message: "not a directory"}
		} else {
			status.Components["storage"] = ComponentHealth{Healthy: true}
		}
	} else {
		status.Components["storage"] = ComponentHealth{Message: "not initialized"}
	}

	for _, component := range status.Components {
		if !component.Healthy {
			status.Overall = false
		}
	}
	return status
}

// componentStates flattens Health for the /health endpoint
func (c *Container) componentStates(context.Context) map[string]string {
	states := make(map[string]string)
	for name, component := range c.Health().Components {
		if component.Healthy {
			states[name] = "healthy"
		} else {
			states[name] = component.Message
		}
	}
	return states
}

// Session returns a session holding the configured user, or an empty
// session when no user email is configured.
func (c *Container) Session() port.SessionStore {
	if c.config.Session.Email == "" {
		return session.NewMemoryStore()
	}
	return session.NewUserSession(entity.User{
		Type:  c.config.Session.Type,
		Email: c.config.Session.Email,
	})
}

// NavigationPolicy returns the configured submission navigation policy.
func (c *Container) NavigationPolicy() newbill.NavigationPolicy {
	if c.config.Client.NavigationPolicy == "after_persist" {
		return newbill.NavigateAfterPersist
	}
	return newbill.NavigateOptimistic
}

// Store returns the persistence components.
func (c *Container) Store() *StoreBundle {
	return c.store
}

// Gateway returns the gateway the client operations use.
func (c *Container) Gateway() port.StorageGateway {
	return c.gateway
}

// LocalGateway returns the gateway over the local database.
func (c *Container) LocalGateway() *gateway.Local {
	return c.local
}

// Retriever returns the bills retriever over Gateway().
func (c *Container) Retriever() *bills.Retriever {
	return c.retriever
}

// Exporter returns the spreadsheet writer.
func (c *Container) Exporter() *export.XLSXWriter {
	return c.exporter
}

// Server returns the HTTP server.
func (c *Container) Server() *httpapi.Server {
	return c.server
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Config returns the container's configuration.
func (c *Container) Config() *config.Config {
	return c.config
}
