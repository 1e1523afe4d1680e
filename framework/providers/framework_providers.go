package providers

import (
	"github.com/km-arc/slim-bootstrap/framework/config"
	"github.com/km-arc/slim-bootstrap/framework/container"
	"github.com/km-arc/slim-bootstrap/framework/routing"
)

// ── EnvServiceProvider ────────────────────────────────────────────────────────

// EnvServiceProvider loads the environment configuration from .env files.
//
// Bound identifiers:
//   - "env" → *config.Config
type EnvServiceProvider struct {
	container.BaseProvider
	EnvFiles []string
}

func (p *EnvServiceProvider) Register(c *container.Container) {
	envFiles := p.EnvFiles
	c.Set("env", container.Factory(func(*container.Container) (any, error) {
		return config.Load(envFiles...), nil
	}))
}

// ── SettingsServiceProvider ───────────────────────────────────────────────────

// SettingsServiceProvider registers the default application settings. The
// bootstrap layer later overlays the "settings" section of the config files.
//
// Bound identifiers:
//   - "settings" → config.Tree
//
// Default keys:
//   - addr                (":" + APP_PORT)
//   - displayErrorDetails (APP_DEBUG)
//   - httpVersion         ("1.1")
//   - name                (APP_NAME)
type SettingsServiceProvider struct {
	container.BaseProvider
}

func (p *SettingsServiceProvider) Register(c *container.Container) {
	c.Set("settings", container.Factory(func(c *container.Container) (any, error) {
		env, err := container.Resolve[*config.Config](c, "env")
		if err != nil {
			return nil, err
		}
		return config.Tree{
			"addr":                env.Addr(),
			"displayErrorDetails": env.App.Debug,
			"httpVersion":         "1.1",
			"name":                env.App.Name,
		}, nil
	}))
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the HTTP router. Unmatched routes and
// panics are answered with JSON; the "displayErrorDetails" setting adds the
// panic value to the body.
//
// Bound identifiers:
//   - "router" → *routing.Router
//
// Providers add routes with an append hook so they run once the router is
// first resolved:
//
//	c.Append("router", func(s any, c *container.Container) {
//	    s.(*routing.Router).Get("/health", health)
//	})
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) Register(c *container.Container) {
	c.Set("router", container.Factory(func(c *container.Container) (any, error) {
		settings, err := container.Resolve[config.Tree](c, "settings")
		if err != nil {
			return nil, err
		}
		r := routing.New()
		routing.ErrorHandler{DisplayDetails: settings.GetBool("displayErrorDetails", false)}.Use(r)
		return r, nil
	}))
}
