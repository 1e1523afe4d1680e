package container_test

import (
	"testing"

	"github.com/km-arc/slim-bootstrap/framework/container"
)

// ── stub providers ────────────────────────────────────────────────────────────

type eagerProvider struct {
	container.BaseProvider
	registerCalled bool
	bootCalled     bool
}

func (p *eagerProvider) Register(app *container.Container) {
	p.registerCalled = true
	app.Set("eager-svc", "eager")
}

func (p *eagerProvider) Boot(app *container.Container) {
	p.bootCalled = true
}

// deferredProvider is lazy: it is only registered when "deferred-svc" is first resolved.
type deferredProvider struct {
	container.BaseProvider
	registerCalled bool
	bootCalled     bool
}

func (p *deferredProvider) Register(app *container.Container) {
	p.registerCalled = true
	app.Set("deferred-svc", container.Factory(func(c *container.Container) (any, error) {
		return "deferred-value", nil
	}))
}

func (p *deferredProvider) Boot(app *container.Container) {
	p.bootCalled = true
}

func (p *deferredProvider) IsDeferred() bool   { return true }
func (p *deferredProvider) Provides() []string { return []string{"deferred-svc"} }

// multiProvider registers multiple abstracts.
type multiProvider struct {
	container.BaseProvider
}

func (p *multiProvider) Register(app *container.Container) {
	app.Set("alpha", "α")
	app.Set("beta", container.Factory(func(c *container.Container) (any, error) { return "β", nil }))
}

// ── ProviderRegistry ──────────────────────────────────────────────────────────

func TestRegistry_EagerProvider_RegisterCalled(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)

	p := &eagerProvider{}
	reg.Register(p)

	if !p.registerCalled {
		t.Error("Register() should be called immediately for eager providers")
	}
}

func TestRegistry_EagerProvider_BootCalledAfterBoot(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)

	p := &eagerProvider{}
	reg.Register(p)

	if p.bootCalled {
		t.Error("Boot() should NOT be called before registry.Boot()")
	}

	reg.Boot()

	if !p.bootCalled {
		t.Error("Boot() should be called after registry.Boot()")
	}
}

func TestRegistry_EagerProvider_ServiceResolvable(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)
	reg.Register(&eagerProvider{})
	reg.Boot()

	got := c.MustGet("eager-svc").(string)
	if got != "eager" {
		t.Errorf("eager-svc: got %q, want 'eager'", got)
	}
}

func TestRegistry_Boot_IdempotentCallsAreIgnored(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)

	p := &eagerProvider{}
	reg.Register(p)

	reg.Boot()
	reg.Boot() // second call should be no-op

	if !reg.Booted() {
		t.Error("Booted() should be true after Boot()")
	}
}

func TestRegistry_Booted_FalseBeforeBoot(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)
	if reg.Booted() {
		t.Error("Booted() should be false before Boot()")
	}
}

func TestRegistry_DuplicateRegister_Ignored(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)

	p := &eagerProvider{}
	reg.Register(p)
	reg.Register(p) // second register of same instance

	// registerCalled should still only reflect one real registration
	if !p.registerCalled {
		t.Error("provider should have been registered once")
	}
}

// ── Deferred providers ────────────────────────────────────────────────────────

func TestRegistry_DeferredProvider_NotRegisteredEagerly(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)

	p := &deferredProvider{}
	reg.Register(p)
	reg.Boot()

	// Provider.Register should NOT have been called yet
	if p.registerCalled {
		t.Error("deferred provider Register() should not be called until Get()")
	}
}

func TestRegistry_DeferredProvider_RegisteredOnFirstGet(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)

	p := &deferredProvider{}
	reg.Register(p)
	reg.Boot()

	// Trigger lazy load
	got := c.MustGet("deferred-svc").(string)
	if got != "deferred-value" {
		t.Errorf("deferred-svc: got %q, want 'deferred-value'", got)
	}
}

// ── Multiple providers ────────────────────────────────────────────────────────

func TestRegistry_MultipleProviders_AllServicesResolvable(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)
	reg.Register(&multiProvider{})
	reg.Register(&eagerProvider{})
	reg.Boot()

	if got := c.MustGet("alpha").(string); got != "α" {
		t.Errorf("alpha: got %q, want 'α'", got)
	}
	if got := c.MustGet("beta").(string); got != "β" {
		t.Errorf("beta: got %q, want 'β'", got)
	}
	if got := c.MustGet("eager-svc").(string); got != "eager" {
		t.Errorf("eager-svc: got %q, want 'eager'", got)
	}
}

// ── Providers list ────────────────────────────────────────────────────────────

func TestRegistry_Providers_ReturnsEagerOnes(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)
	reg.Register(&eagerProvider{})
	reg.Register(&deferredProvider{}) // deferred, not in Providers()

	if len(reg.Providers()) != 1 {
		t.Errorf("Providers(): got %d, want 1 (eager only)", len(reg.Providers()))
	}
}

// ── BaseProvider defaults ─────────────────────────────────────────────────────

func TestBaseProvider_Defaults(t *testing.T) {
	var p container.BaseProvider
	c := container.New()

	p.Boot(c) // should not panic

	if p.IsDeferred() {
		t.Error("BaseProvider.IsDeferred() should be false")
	}
	if len(p.Provides()) != 0 {
		t.Error("BaseProvider.Provides() should return empty slice")
	}
}

// ── Boot after registration (late provider) ───────────────────────────────────

func TestRegistry_RegisterAfterBoot_BootsImmediately(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)
	reg.Boot() // boot before registering

	p := &eagerProvider{}
	reg.Register(p) // register after boot

	if !p.bootCalled {
		t.Error("provider registered after Boot() should be booted immediately")
	}
}

// ── Plain registrars ──────────────────────────────────────────────────────────

func TestRegistry_RegistrarFunc_Registered(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)

	calls := 0
	unit := container.RegistrarFunc(func(app *container.Container) {
		calls++
		app.Set("func-svc", 7)
	})
	reg.Register(unit)
	reg.Boot()

	if calls != 1 {
		t.Errorf("Register calls: got %d, want 1", calls)
	}
	if got := c.MustGet("func-svc").(int); got != 7 {
		t.Errorf("func-svc: got %d, want 7", got)
	}
	if len(reg.Providers()) != 1 {
		t.Errorf("Providers(): got %d, want 1", len(reg.Providers()))
	}
}

type registerOnly struct{ calls int }

func (r *registerOnly) Register(app *container.Container) {
	r.calls++
	app.Set("plain-svc", "plain")
}

func TestRegistry_RegisterOnlyUnit_DeduplicatedByPointer(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)

	unit := &registerOnly{}
	reg.Register(unit)
	reg.Register(unit)

	if unit.calls != 1 {
		t.Errorf("Register calls: got %d, want 1", unit.calls)
	}
}

// ── Deferred provider boot ────────────────────────────────────────────────────

func TestRegistry_DeferredProvider_BootedOnLoadAfterBoot(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)

	p := &deferredProvider{}
	reg.Register(p)
	reg.Boot()

	if len(reg.Deferred()) != 1 {
		t.Fatalf("Deferred(): got %v, want [deferred-svc]", reg.Deferred())
	}

	c.MustGet("deferred-svc")
	c.MustGet("deferred-svc")

	if !p.registerCalled || !p.bootCalled {
		t.Error("deferred provider should be registered and booted on first Get")
	}
	if len(reg.Deferred()) != 0 {
		t.Errorf("Deferred(): got %v, want none", reg.Deferred())
	}
}

// ── Extending deferred services ───────────────────────────────────────────────

func TestRegistry_DeferredProvider_ExtendSurvivesLoad(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)

	p := &deferredProvider{}
	reg.Register(p)

	calls := 0
	c.Extend("deferred-svc", func(s any, _ *container.Container) (any, error) {
		calls++
		return "decorated(" + s.(string) + ")", nil
	})

	if p.registerCalled {
		t.Fatal("Extend should not load a deferred provider")
	}
	if !c.Has("deferred-svc") || !c.Exists("deferred-svc") {
		t.Error("deferred id should be reported as registered")
	}

	first := c.MustGet("deferred-svc").(string)
	second := c.MustGet("deferred-svc").(string)

	if first != "decorated(deferred-value)" {
		t.Errorf("first Get: got %q, want 'decorated(deferred-value)'", first)
	}
	if second != first {
		t.Errorf("second Get: got %q, want %q", second, first)
	}
	if calls != 1 {
		t.Errorf("decorator calls: got %d, want 1", calls)
	}
}

func TestRegistry_DeferredProvider_KeysAndUnset(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)
	p := &deferredProvider{}
	reg.Register(p)

	keys := c.Keys()
	if len(keys) != 2 || keys[0] != "container" || keys[1] != "deferred-svc" {
		t.Errorf("Keys(): got %v, want [container deferred-svc]", keys)
	}

	c.Unset("deferred-svc")
	if c.Has("deferred-svc") {
		t.Error("Unset should drop the deferred id")
	}
	if _, err := c.Get("deferred-svc"); err == nil {
		t.Error("Get after Unset should fail")
	}
	if p.registerCalled {
		t.Error("provider should not be loaded after Unset")
	}
}
