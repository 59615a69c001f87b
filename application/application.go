// Package application composes the session guard service: configuration,
// the component injector, the gin engine and the server lifecycle.
package application

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/KOMKZ/yogan-sessionguard/di"
	"github.com/KOMKZ/yogan-sessionguard/logger"
	"github.com/gin-gonic/gin"
	"github.com/samber/do/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Application owns every component and the HTTP server.
type Application struct {
	config    *Config
	injector  *do.RootScope
	container *di.Container
	engine    *gin.Engine
	server    *http.Server
	logger    *logger.CtxZapLogger

	ownsRedis bool
	closeOnce sync.Once
	closeErr  error
}

type options struct {
	di         di.Options
	skipLogger bool
}

type Option func(*options)

// WithDIOptions passes provider options such as telemetry readers or a
// preconfigured Redis client.
func WithDIOptions(o di.Options) Option {
	return func(opts *options) {
		opts.di = o
	}
}

// WithoutLoggerSetup keeps the current global logger manager.
func WithoutLoggerSetup() Option {
	return func(opts *options) {
		opts.skipLogger = true
	}
}

// New resolves every component and builds the engine. cfg must already have
// defaults applied; LoadConfig does that.
func New(cfg *Config, opts ...Option) (*Application, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if !o.skipLogger {
		if err := logger.Setup(cfg.Logger); err != nil {
			return nil, err
		}
	}

	injector := do.New()
	di.RegisterProviders(injector, cfg.Components, o.di)

	container, err := di.Resolve(injector)
	if err != nil {
		_ = injector.Shutdown()
		return nil, fmt.Errorf("resolve components: %w", err)
	}

	a := &Application{
		config:    cfg,
		injector:  injector,
		container: container,
		logger:    logger.GetLogger("sessionguard"),
		ownsRedis: container.Redis != nil && o.di.RedisClient == nil,
	}
	a.engine = a.newEngine()
	a.server = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      a.engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return a, nil
}

// Engine exposes the handler, mainly for httptest.
func (a *Application) Engine() *gin.Engine {
	return a.engine
}

func (a *Application) Container() *di.Container {
	return a.container
}

func (a *Application) Config() *Config {
	return a.config
}

// Run listens on the configured address and serves until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		_ = a.Close()
		return fmt.Errorf("listen %s: %w", a.server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve runs the HTTP server and the revocation sweeper until ctx is
// cancelled or either fails, then shuts both down and releases components.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.InfoCtx(gctx, "HTTP server listening", zap.String("addr", ln.Addr().String()))
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := a.container.Sweeper.Start(); err != nil {
			return err
		}
		<-gctx.Done()
		return a.container.Sweeper.Stop()
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
		defer cancel()

		a.logger.InfoCtx(shutdownCtx, "Shutting down HTTP server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	err := g.Wait()
	return errors.Join(err, a.Close())
}

// Close releases the registry, the Redis client it created and the
// telemetry providers. It is safe to call more than once.
func (a *Application) Close() error {
	a.closeOnce.Do(func() {
		var errs []error
		errs = append(errs, a.container.Sweeper.Stop())
		errs = append(errs, a.container.Revocation.Close())
		if a.ownsRedis {
			errs = append(errs, a.container.Redis.Close())
		}
		if err := a.container.Telemetry.Shutdown(context.Background()); err != nil {
			errs = append(errs, err)
		}
		_ = a.injector.Shutdown()
		a.closeErr = errors.Join(errs...)
		a.logger.Info("application closed")
	})
	return a.closeErr
}
