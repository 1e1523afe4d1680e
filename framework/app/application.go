package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/km-arc/slim-bootstrap/framework/config"
	"github.com/km-arc/slim-bootstrap/framework/container"
	"github.com/km-arc/slim-bootstrap/framework/providers"
	"github.com/km-arc/slim-bootstrap/framework/routing"
)

const shutdownTimeout = 10 * time.Second

// Application is the HTTP application built around a container. It embeds
// the container and its provider registry so callers can use app.Set,
// app.Get and app.Register directly.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry

	logger   *zap.Logger
	envFiles []string
}

// Option configures an Application.
type Option func(*Application)

// WithLogger sets the application logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Application) { a.logger = l }
}

// WithEnvFiles sets the .env files read for "env".
func WithEnvFiles(files ...string) Option {
	return func(a *Application) { a.envFiles = files }
}

// New creates the application around c and registers the framework
// providers ("env", "settings", "router").
func New(c *container.Container, opts ...Option) *Application {
	a := &Application{
		Container: c,
		Providers: container.NewProviderRegistry(c),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.Register(&providers.EnvServiceProvider{EnvFiles: a.envFiles})
	a.Register(&providers.SettingsServiceProvider{})
	a.Register(&providers.RoutingServiceProvider{})
	return a
}

// Register adds a registration unit to the application.
func (a *Application) Register(unit container.Registrar) {
	a.Providers.Register(unit)
}

// Boot runs the Boot phase on all providers.
func (a *Application) Boot() {
	a.Providers.Boot()
}

// Logger returns the application logger.
func (a *Application) Logger() *zap.Logger { return a.logger }

// Env resolves the environment configuration.
func (a *Application) Env() (*config.Config, error) {
	return container.Resolve[*config.Config](a.Container, "env")
}

// Settings resolves the application settings.
func (a *Application) Settings() (config.Tree, error) {
	return container.Resolve[config.Tree](a.Container, "settings")
}

// Router resolves the HTTP router. The first resolution runs the append
// hooks that providers queued for "router".
func (a *Application) Router() (*routing.Router, error) {
	return container.Resolve[*routing.Router](a.Container, "router")
}

// Handler returns the router as an http.Handler.
func (a *Application) Handler() (http.Handler, error) {
	router, err := a.Router()
	if err != nil {
		return nil, err
	}
	return router, nil
}

// Run boots the application if needed and serves HTTP on the "addr"
// setting until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if !a.Providers.Booted() {
		a.Boot()
	}

	settings, err := a.Settings()
	if err != nil {
		return fmt.Errorf("app: %w", err)
	}
	router, err := a.Router()
	if err != nil {
		return fmt.Errorf("app: %w", err)
	}

	srv := &http.Server{
		Addr:              settings.GetString("addr", ":8000"),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	a.logger.Info("listening",
		zap.String("name", settings.GetString("name", "")),
		zap.String("addr", srv.Addr),
		zap.Strings("routes", router.Routes()),
	)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("app: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// Environment returns APP_ENV, or "" when "env" cannot be resolved.
func (a *Application) Environment() string {
	env, err := a.Env()
	if err != nil {
		return ""
	}
	return env.App.Env
}

func (a *Application) IsLocal() bool      { return a.Environment() == "local" }
func (a *Application) IsProduction() bool { return a.Environment() == "production" }
func (a *Application) IsTesting() bool    { return a.Environment() == "testing" }
