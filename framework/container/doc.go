// Package container provides the service container used by the bootstrap
// layer: an identifier-keyed registry of values and lazily built shared
// services, with deferred decoration, one-shot resolution hooks and
// autowiring.
//
// # Registering
//
//	c := container.New()
//
//	// Plain value
//	c.Set("settings", config.Tree{"addr": ":8000"})
//
//	// Shared service, built on first Get and cached
//	c.Set("router", container.Factory(func(c *container.Container) (any, error) {
//	    return routing.New(), nil
//	}))
//
// # Resolving
//
//	raw, err := c.Get("router")
//	router, err := container.Resolve[*routing.Router](c, "router")
//
// # Extend / Decorate
//
// Extend may be called before the service exists. The decorator is queued
// and wrapped around the value the moment the identifier is set:
//
//	ext := c.Extend("logger", func(s any, c *container.Container) (any, error) {
//	    return &TimestampLogger{Inner: s.(Logger)}, nil
//	})
//	ext.Deferred() // true when "logger" was not registered yet
//
// # Append hooks
//
// A hook runs once, right after the next resolution of its identifier:
//
//	c.Append("router", func(s any, c *container.Container) {
//	    s.(*routing.Router).Get("/health", health)
//	})
//
// # Autowiring
//
// Go cannot reflect on parameter names or defaults, so autowirable types are
// described once in a type table:
//
//	c.Define("App\\Mailer", NewMailer,
//	    container.Inject("transport", "App\\Transport"),
//	    container.Arg("retries", "int").WithDefault(3),
//	)
//	c.EnableAutowiring()
//	mailer, err := c.Get("App\\Mailer") // App\Transport is resolved recursively
//
// Dependency cycles are configuration errors; they are reported as a
// *CycleError naming the resolution path.
//
// # Service Providers
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(c *container.Container) {
//	    c.Set("mailer", container.Factory(newMailer))
//	}
//
//	registry := container.NewProviderRegistry(c)
//	registry.Register(&AppServiceProvider{})
//	registry.Boot()
package container
