package container

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// ── Definition types ──────────────────────────────────────────────────────────

// Factory builds a shared service. A Factory stored with Set is invoked on the
// first Get of its identifier and the result is cached for the container's
// lifetime.
type Factory func(c *Container) (any, error)

// Decorator wraps the resolved service of an identifier and returns its
// replacement.
type Decorator func(service any, c *Container) (any, error)

// Hook is a one-shot callback run right after the next resolution of an
// identifier.
type Hook func(service any, c *Container)

// entry is one registered identifier.
type entry struct {
	raw       any
	factory   Factory
	value     any
	resolved  bool
	resolving bool
}

func define(value any) *entry {
	if f, ok := asFactory(value); ok {
		return &entry{raw: value, factory: f}
	}
	return &entry{raw: value, value: value, resolved: true}
}

func asFactory(value any) (Factory, bool) {
	switch f := value.(type) {
	case Factory:
		return f, f != nil
	case func(*Container) (any, error):
		return f, f != nil
	}
	return nil, false
}

// definition returns a factory producing the entry's current service. A
// resolved entry yields its cached instance, so decorating it never rebuilds
// the service.
func (e *entry) definition() Factory {
	if e.resolved {
		v := e.value
		return func(*Container) (any, error) { return v, nil }
	}
	return e.factory
}

// decorate returns a new unresolved entry whose service is d applied to the
// service of e.
func (e *entry) decorate(d Decorator) *entry {
	inner := e.definition()
	f := Factory(func(c *Container) (any, error) {
		service, err := inner(c)
		if err != nil {
			return nil, err
		}
		return d(service, c)
	})
	return &entry{raw: f, factory: f}
}

// ── Extension ─────────────────────────────────────────────────────────────────

// Extension is the result of Extend. It is either applied, carrying the new
// definition stored for the identifier, or deferred until the identifier is
// first set.
type Extension struct {
	value   any
	applied bool
}

// Deferred reports whether the decorator was queued for a future Set.
func (e Extension) Deferred() bool { return !e.applied }

// Value returns the decorated definition now stored in the container, or nil
// for a deferred extension.
func (e Extension) Value() any { return e.value }

// ── Container ─────────────────────────────────────────────────────────────────

// Container is an identifier-keyed service registry with lazy shared
// services, deferred decoration, one-shot resolution hooks and autowiring.
//
// The internal maps are guarded by a mutex that is never held while user
// factories, decorators or hooks run. At-most-once construction of a
// service is guaranteed for use from a single goroutine; callers sharing a
// container across goroutines must synchronise resolution themselves.
type Container struct {
	mu sync.Mutex

	// id → registered entry
	entries map[string]*entry

	// id → decorators queued before the id was registered
	pendingDecorators map[string][]Decorator

	// id → hooks waiting for the next resolution
	pendingHooks map[string][]Hook

	// id → registration run on the first Get of an id not yet set
	loaders map[string]func(*Container)

	types      *Types
	autowiring bool

	// stack of identifiers currently being resolved (for cycle reports)
	buildStack []string
}

// Option configures a Container.
type Option func(*Container)

// WithTypes makes the container autowire from t instead of a private table.
func WithTypes(t *Types) Option {
	return func(c *Container) { c.types = t }
}

// WithAutowiring enables autowiring from construction.
func WithAutowiring() Option {
	return func(c *Container) { c.autowiring = true }
}

// New creates an empty container. The container registers itself as
// "container".
func New(opts ...Option) *Container {
	c := &Container{
		entries:           make(map[string]*entry),
		pendingDecorators: make(map[string][]Decorator),
		pendingHooks:      make(map[string][]Hook),
		loaders:           make(map[string]func(*Container)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.types == nil {
		c.types = NewTypes()
	}
	c.Set("container", c)
	return c
}

// ── Autowiring flag ───────────────────────────────────────────────────────────

// EnableAutowiring lets Get and Exists treat unregistered identifiers that
// name a type in the type table as resolvable.
func (c *Container) EnableAutowiring() { c.SetAutowiring(true) }

// SetAutowiring toggles autowiring.
func (c *Container) SetAutowiring(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autowiring = enabled
}

// AutowiringEnabled reports the autowiring flag.
func (c *Container) AutowiringEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.autowiring
}

// Types returns the type table used for autowiring.
func (c *Container) Types() *Types { return c.types }

// Define is shorthand for c.Types().Define.
func (c *Container) Define(name string, constructor any, params ...Param) error {
	return c.types.Define(name, constructor, params...)
}

// ── Registration ──────────────────────────────────────────────────────────────

// Set registers value under id, replacing any previous entry.
//
// A Factory (or a plain func(*Container) (any, error)) becomes a shared
// service built on first Get; anything else is stored as is. Decorators
// queued by Extend before id existed are wrapped around value in queue order
// and the queue is emptied before the entry is stored. A deferred Extension
// is discarded; an applied one stores its definition.
//
//	c.Set("mailer", container.Factory(func(c *container.Container) (any, error) {
//	    return mail.NewSMTP(), nil
//	}))
func (c *Container) Set(id string, value any) {
	if ext, ok := value.(Extension); ok {
		if ext.Deferred() {
			return
		}
		value = ext.value
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	decorators := c.pendingDecorators[id]
	delete(c.pendingDecorators, id)

	e := define(value)
	for _, d := range decorators {
		e = e.decorate(d)
	}
	c.entries[id] = e
	delete(c.loaders, id)
}

// Extend decorates the service registered under id.
//
// For a registered id the decorator is wrapped around the current
// definition and runs once, on the next resolution; an already built
// service is decorated in place rather than rebuilt. For an id that is not
// set yet, including one whose provider is deferred, the decorator is queued
// until the id is set and a deferred Extension is returned.
//
//	c.Extend("logger", func(s any, c *container.Container) (any, error) {
//	    return &TimestampLogger{Inner: s.(Logger)}, nil
//	})
func (c *Container) Extend(id string, d Decorator) Extension {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[id]
	if !ok {
		c.pendingDecorators[id] = append(c.pendingDecorators[id], d)
		return Extension{}
	}

	decorated := e.decorate(d)
	c.entries[id] = decorated
	return Extension{value: decorated.raw, applied: true}
}

// Append queues h to run after the next resolution of id. The id does not
// need to exist yet.
func (c *Container) Append(id string, h Hook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingHooks[id] = append(c.pendingHooks[id], h)
}

// Unset removes the entry for id, and its deferred registration if any.
// Queued decorators and hooks are kept.
func (c *Container) Unset(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	delete(c.loaders, id)
}

// deferTo makes the first Get of id run load, which is expected to set id.
// Any entry for id is dropped until then.
func (c *Container) deferTo(id string, load func(*Container)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	c.loaders[id] = load
}

// load runs and forgets the deferred registration of id.
func (c *Container) load(id string) {
	c.mu.Lock()
	load, ok := c.loaders[id]
	delete(c.loaders, id)
	c.mu.Unlock()

	if ok {
		load(c)
	}
}

// ── Lookup ────────────────────────────────────────────────────────────────────

// Has reports whether id is registered, or deferred to a provider, ignoring
// autowiring.
func (c *Container) Has(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[id]; ok {
		return true
	}
	_, ok := c.loaders[id]
	return ok
}

// Exists reports whether Get(id) can succeed without forcing resolution:
// id is registered, or autowiring is enabled and id names a type in the
// type table.
func (c *Container) Exists(id string) bool {
	if c.Has(id) {
		return true
	}
	return c.AutowiringEnabled() && c.types.Has(id)
}

// Resolved reports whether the service under id has been built.
func (c *Container) Resolved(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	return ok && e.resolved
}

// Raw returns the definition registered under id without resolving it.
func (c *Container) Raw(id string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok {
		return nil, false
	}
	return e.raw, true
}

// Keys returns the registered and deferred identifiers, sorted.
func (c *Container) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.entries)+len(c.loaders))
	for k := range c.entries {
		out = append(out, k)
	}
	for k := range c.loaders {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Get resolves id.
//
// With autowiring enabled, an unregistered id naming a known type is first
// registered as a shared service that autowires the type, so later calls
// return the same instance. Hooks queued with Append run after the service
// is resolved, in queue order, and are then forgotten. An id deferred to a
// provider is registered by that provider first.
func (c *Container) Get(id string) (any, error) {
	c.load(id)
	if c.canBeAutowired(id) {
		c.Set(id, Factory(func(c *Container) (any, error) {
			return c.Autowire(id, nil)
		}))
	}

	c.mu.Lock()
	e, ok := c.entries[id]
	c.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: [%s]", ErrUnknownIdentifier, id)
	}

	service, err := c.resolve(id, e)
	if err != nil {
		return nil, err
	}

	c.runHooks(id, service)
	return service, nil
}

// MustGet is like Get but panics on error.
func (c *Container) MustGet(id string) any {
	service, err := c.Get(id)
	if err != nil {
		panic(err)
	}
	return service
}

func (c *Container) canBeAutowired(id string) bool {
	return c.AutowiringEnabled() && !c.Has(id) && c.types.Has(id)
}

// resolve builds e once and caches the result on the entry itself, so an
// entry replaced while its factory runs does not overwrite its successor.
func (c *Container) resolve(id string, e *entry) (any, error) {
	c.mu.Lock()
	if e.resolved {
		v := e.value
		c.mu.Unlock()
		return v, nil
	}
	if e.resolving {
		err := &CycleError{Path: c.cyclePath(id)}
		c.mu.Unlock()
		return nil, err
	}
	e.resolving = true
	c.buildStack = append(c.buildStack, id)
	f := e.factory
	c.mu.Unlock()

	service, err := f(c)

	c.mu.Lock()
	defer c.mu.Unlock()
	e.resolving = false
	c.buildStack = c.buildStack[:len(c.buildStack)-1]
	if err != nil {
		return nil, fmt.Errorf("container: resolving [%s]: %w", id, err)
	}
	e.value, e.resolved, e.factory = service, true, nil
	return service, nil
}

// cyclePath must hold mu.
func (c *Container) cyclePath(id string) []string {
	start := 0
	for i := len(c.buildStack) - 1; i >= 0; i-- {
		if c.buildStack[i] == id {
			start = i
			break
		}
	}
	path := append([]string(nil), c.buildStack[start:]...)
	return append(path, id)
}

// runHooks clears the queue before running it so a hook that resolves id
// again does not re-trigger itself.
func (c *Container) runHooks(id string, service any) {
	c.mu.Lock()
	hooks := c.pendingHooks[id]
	delete(c.pendingHooks, id)
	c.mu.Unlock()

	for _, h := range hooks {
		h(service, c)
	}
}

// ── Reflect helpers ───────────────────────────────────────────────────────────

// TypeKey returns the package-qualified type name of v, useful as a stable
// identifier and type-table name for Go types.
//
//	key := container.TypeKey((*UserRepository)(nil))  // "example.com/app.UserRepository"
func TypeKey(v any) string {
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.PkgPath() + "." + t.Name()
}

// ── Generics helper ───────────────────────────────────────────────────────────

// Resolve calls Get and type-asserts the result.
//
//	router, err := container.Resolve[*routing.Router](c, "router")
func Resolve[T any](c *Container, id string) (T, error) {
	var zero T
	service, err := c.Get(id)
	if err != nil {
		return zero, err
	}
	typed, ok := service.(T)
	if !ok {
		return zero, fmt.Errorf("container: Resolve[%T]: [%s] resolved to %T", zero, id, service)
	}
	return typed, nil
}

// MustResolve is like Resolve but panics on error.
func MustResolve[T any](c *Container, id string) T {
	typed, err := Resolve[T](c, id)
	if err != nil {
		panic(err)
	}
	return typed
}
