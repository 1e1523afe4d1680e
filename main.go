package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/km-arc/slim-bootstrap/framework/bootstrap"
	"github.com/km-arc/slim-bootstrap/framework/config"
	"github.com/km-arc/slim-bootstrap/framework/container"
	"github.com/km-arc/slim-bootstrap/framework/routing"
)

func main() {
	appPath := flag.String("app", "./example", "application directory")
	autowire := flag.Bool("autowire", false, "enable container autowiring")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	// ── Provider classes ─────────────────────────────────────────────────────

	types := container.NewTypes()
	types.MustDefine(`App\Dependencies\HealthProvider`, NewHealthProvider,
		container.Inject("settings", "settings"))

	// ── Bootstrap ────────────────────────────────────────────────────────────

	b := bootstrap.New(*appPath,
		bootstrap.WithLogger(logger),
		bootstrap.WithTypes(types),
	)
	if *autowire {
		b.EnableContainerAutowiring()
	}
	if err := b.Run(); err != nil {
		logger.Fatal("bootstrap failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := b.Application().Run(ctx); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// HealthProvider serves GET /health with the application name.
type HealthProvider struct {
	container.BaseProvider
	name string
}

func NewHealthProvider(settings config.Tree) *HealthProvider {
	return &HealthProvider{name: settings.GetString("name", "")}
}

func (p *HealthProvider) Register(c *container.Container) {
	c.Append("router", func(s any, _ *container.Container) {
		s.(*routing.Router).Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			routing.JSON(w, http.StatusOK, map[string]any{"status": "ok", "name": p.name})
		})
	})
}
