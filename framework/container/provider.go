package container

import "reflect"

// ── Registration units ────────────────────────────────────────────────────────

// Registrar is the minimal registration unit: anything that can put its
// services into a container.
type Registrar interface {
	Register(c *Container)
}

// RegistrarFunc adapts a plain function to Registrar.
type RegistrarFunc func(c *Container)

func (f RegistrarFunc) Register(c *Container) { f(c) }

// ServiceProvider is a Registrar with a boot phase and optional deferral.
//
// Boot is called after every provider has been registered, making it safe to
// resolve other services there.
//
//	type MailProvider struct{ container.BaseProvider }
//
//	func (p *MailProvider) Register(c *container.Container) {
//	    c.Set("mailer", container.Factory(func(c *container.Container) (any, error) {
//	        return c.Autowire("App\\Mailer", nil)
//	    }))
//	}
type ServiceProvider interface {
	Registrar

	// Boot is called after all providers are registered.
	Boot(c *Container)

	// Provides returns the identifiers registered by a deferred provider.
	Provides() []string

	// IsDeferred returns true if Register should wait until one of the
	// Provides() identifiers is first resolved.
	IsDeferred() bool
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct with no-op Boot, Provides and
// IsDeferred.
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container)  {}
func (p *BaseProvider) Provides() []string { return nil }
func (p *BaseProvider) IsDeferred() bool   { return false }

// plainProvider lifts a bare Registrar into the provider lifecycle.
type plainProvider struct {
	Registrar
	BaseProvider
}

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry registers and boots providers against one container,
// including deferred providers.
type ProviderRegistry struct {
	app        *Container
	eager      []ServiceProvider
	deferred   map[string]ServiceProvider // id → provider
	loaded     map[ServiceProvider]bool
	registered map[Registrar]bool
	booted     bool
}

// NewProviderRegistry creates a registry bound to app.
func NewProviderRegistry(app *Container) *ProviderRegistry {
	return &ProviderRegistry{
		app:        app,
		deferred:   make(map[string]ServiceProvider),
		loaded:     make(map[ServiceProvider]bool),
		registered: make(map[Registrar]bool),
	}
}

// Register adds a unit and calls its Register method, unless it is a
// deferred ServiceProvider. Registering the same unit twice is a no-op.
func (r *ProviderRegistry) Register(unit Registrar) {
	if r.seen(unit) {
		return
	}

	provider, ok := unit.(ServiceProvider)
	if !ok {
		provider = &plainProvider{Registrar: unit}
	}

	if provider.IsDeferred() {
		for _, id := range provider.Provides() {
			r.deferred[id] = provider
		}
		r.interceptDeferred(provider)
		return
	}

	provider.Register(r.app)
	r.eager = append(r.eager, provider)

	if r.booted {
		provider.Boot(r.app)
	}
}

// seen records unit and reports whether it was registered before. Units of
// non-comparable types, such as RegistrarFunc, are never deduplicated.
func (r *ProviderRegistry) seen(unit Registrar) bool {
	if !reflect.TypeOf(unit).Comparable() {
		return false
	}
	if r.registered[unit] {
		return true
	}
	r.registered[unit] = true
	return false
}

// interceptDeferred defers each provided id to the provider. The first Get
// of any of them registers the provider, and boots it when the registry is
// already booted. Decorators added with Extend in the meantime are queued by
// the container and wrap the provider's own definitions.
func (r *ProviderRegistry) interceptDeferred(provider ServiceProvider) {
	for _, id := range provider.Provides() {
		r.app.deferTo(id, func(c *Container) { r.load(provider, c) })
	}
}

func (r *ProviderRegistry) load(provider ServiceProvider, c *Container) {
	if r.loaded[provider] {
		return
	}
	r.loaded[provider] = true
	for _, provided := range provider.Provides() {
		delete(r.deferred, provided)
	}
	provider.Register(c)
	if r.booted {
		provider.Boot(c)
	}
}

// Boot calls Boot on all eager providers. Later calls are no-ops.
func (r *ProviderRegistry) Boot() {
	if r.booted {
		return
	}
	r.booted = true
	for _, provider := range r.eager {
		provider.Boot(r.app)
	}
}

// Booted returns true if Boot has been called.
func (r *ProviderRegistry) Booted() bool { return r.booted }

// Providers returns the registered eager providers.
func (r *ProviderRegistry) Providers() []ServiceProvider { return r.eager }

// Deferred returns the ids whose provider has not been loaded yet.
func (r *ProviderRegistry) Deferred() []string {
	out := make([]string, 0, len(r.deferred))
	for id := range r.deferred {
		out = append(out, id)
	}
	return out
}
