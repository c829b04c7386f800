// Package monolith wires bounded context modules into one process.
package monolith

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fd1az/trader-sentinel/internal/asset"
	"github.com/fd1az/trader-sentinel/internal/config"
	"github.com/fd1az/trader-sentinel/internal/di"
	"github.com/fd1az/trader-sentinel/internal/logger"
)

// Monolith is what a module sees of the process during Startup.
type Monolith interface {
	Config() *config.Config
	Logger() logger.LoggerInterface
	AssetRegistry() *asset.Registry
	Services() di.ServiceRegistry
	// OnClose registers fn to run, in reverse order, when the app closes.
	OnClose(fn func() error)
}

// Module is a bounded context. RegisterServices only declares factories;
// Startup may resolve them and start background work.
type Module interface {
	RegisterServices(di.Container) error
	Startup(context.Context, Monolith) error
}

// App owns the shared container and the lifecycle of its modules.
type App struct {
	config        *config.Config
	logger        logger.LoggerInterface
	assetRegistry *asset.Registry
	container     di.Container
	modules       []Module

	mu      sync.Mutex
	started bool
	closers []func() error
}

var _ Monolith = (*App)(nil)

// New registers the shared services ("config", "logger", "assetRegistry")
// and then each module's services, in the order given. Modules must be
// listed after the modules they depend on.
func New(cfg *config.Config, log logger.LoggerInterface, modules ...Module) (*App, error) {
	a := &App{
		config:        cfg,
		logger:        log,
		assetRegistry: asset.DefaultRegistry(),
		container:     di.NewContainer(),
		modules:       modules,
	}

	a.container.Register("config", cfg)
	a.container.Register("logger", log)
	a.container.Register("assetRegistry", a.assetRegistry)

	for _, m := range modules {
		if err := m.RegisterServices(a.container); err != nil {
			return nil, fmt.Errorf("register %T: %w", m, err)
		}
	}
	return a, nil
}

func (a *App) Config() *config.Config { return a.config }
func (a *App) Logger() logger.LoggerInterface { return a.logger }
func (a *App) AssetRegistry() *asset.Registry { return a.assetRegistry }
func (a *App) Services() di.ServiceRegistry { return a.container }

func (a *App) OnClose(fn func() error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closers = append(a.closers, fn)
}

// Start runs each module's Startup in registration order, stopping at the
// first failure. It may only be called once.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.started {
		a.mu.Unlock()
		return errors.New("monolith already started")
	}
	a.started = true
	a.mu.Unlock()

	for _, m := range a.modules {
		if err := m.Startup(ctx, a); err != nil {
			return fmt.Errorf("start %T: %w", m, err)
		}
	}
	return nil
}

// Close runs the registered closers, last registered first. Closers run
// only once.
func (a *App) Close() error {
	a.mu.Lock()
	closers := a.closers
	a.closers = nil
	a.mu.Unlock()

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
