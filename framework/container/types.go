package container

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// ── Parameter descriptors ─────────────────────────────────────────────────────

// Param describes one constructor parameter of an autowirable type. Go has
// no runtime access to parameter names or default values, so each
// constructor declares its parameters once, in signature order.
type Param struct {
	// Name is the parameter name without the "$" override prefix.
	Name string

	// Type is the declared type. When Class is set it is also the
	// identifier resolved from the container.
	Type string

	// Class marks Type as a resolvable service or type name.
	Class bool

	Default    any
	HasDefault bool
}

// Inject declares a parameter resolved from the container under class.
//
//	container.Inject("db", "App\\Database")
func Inject(name, class string) Param {
	return Param{Name: name, Type: class, Class: true}
}

// Arg declares a parameter with a non-class type. It can only be satisfied
// by a name override or a default value.
//
//	container.Arg("limit", "int").WithDefault(5)
func Arg(name, typ string) Param {
	return Param{Name: name, Type: typ}
}

// WithDefault returns p with a default value.
func (p Param) WithDefault(v any) Param {
	p.Default = v
	p.HasDefault = true
	return p
}

// ArgKey returns the override key that targets a parameter by name.
//
//	c.Autowire("App\\Mailer", map[string]any{container.ArgKey("from"): "ops@example.com"})
func ArgKey(name string) string { return "$" + name }

// ── Type table ────────────────────────────────────────────────────────────────

var errorType = reflect.TypeOf((*error)(nil)).Elem()

type constructor struct {
	fn     reflect.Value
	params []Param
}

// Types is the table of autowirable types: type name → constructor and
// parameter descriptors. It is built once at startup.
type Types struct {
	mu    sync.RWMutex
	ctors map[string]*constructor
}

// NewTypes creates an empty type table.
func NewTypes() *Types {
	return &Types{ctors: make(map[string]*constructor)}
}

// Define registers a constructor for name. fn must be a non-variadic func
// taking exactly one argument per param and returning the instance, or the
// instance and an error.
//
//	types.Define("App\\Mailer", NewMailer,
//	    container.Inject("transport", "App\\Transport"),
//	    container.Arg("retries", "int").WithDefault(3),
//	)
func (t *Types) Define(name string, fn any, params ...Param) error {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return fmt.Errorf("container: constructor for [%s] is %T, not a func", name, fn)
	}
	ft := v.Type()
	if ft.IsVariadic() {
		return fmt.Errorf("container: constructor for [%s] is variadic", name)
	}
	if ft.NumIn() != len(params) {
		return fmt.Errorf("container: constructor for [%s] takes %d arguments, %d params declared",
			name, ft.NumIn(), len(params))
	}
	switch {
	case ft.NumOut() == 1:
	case ft.NumOut() == 2 && ft.Out(1) == errorType:
	default:
		return fmt.Errorf("container: constructor for [%s] must return (T) or (T, error)", name)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.ctors[name] = &constructor{fn: v, params: append([]Param(nil), params...)}
	return nil
}

// MustDefine is like Define but panics on error.
func (t *Types) MustDefine(name string, fn any, params ...Param) {
	if err := t.Define(name, fn, params...); err != nil {
		panic(err)
	}
}

// Has reports whether name is autowirable.
func (t *Types) Has(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.ctors[name]
	return ok
}

// Names returns every defined type name, sorted.
func (t *Types) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.ctors))
	for name := range t.ctors {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Params returns a copy of the parameter descriptors of name.
func (t *Types) Params(name string) ([]Param, bool) {
	k, ok := t.lookup(name)
	if !ok {
		return nil, false
	}
	return append([]Param(nil), k.params...), true
}

func (t *Types) lookup(name string) (*constructor, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	k, ok := t.ctors[name]
	return k, ok
}

// ── Autowire ──────────────────────────────────────────────────────────────────

// Autowire builds a new instance of typeName, resolving each constructor
// parameter in declaration order:
//
//  1. overrides[ArgKey(name)], used verbatim;
//  2. for class parameters, overrides[type], else Get(type) on this container;
//  3. the declared default;
//  4. otherwise a *MissingArgumentError.
//
// Autowire always constructs; caching happens only when it is reached
// through Get.
func (c *Container) Autowire(typeName string, overrides map[string]any) (any, error) {
	k, ok := c.types.lookup(typeName)
	if !ok {
		return nil, fmt.Errorf("%w: [%s]", ErrUnknownType, typeName)
	}

	args := make([]any, len(k.params))
	for i, p := range k.params {
		if v, ok := overrides[ArgKey(p.Name)]; ok {
			args[i] = v
			continue
		}

		if p.Class {
			if v, ok := overrides[p.Type]; ok {
				args[i] = v
				continue
			}
			v, err := c.Get(p.Type)
			if err != nil {
				return nil, fmt.Errorf("container: autowiring argument %s(%d) for type %q: %w",
					ArgKey(p.Name), i, typeName, err)
			}
			args[i] = v
			continue
		}

		if p.HasDefault {
			args[i] = p.Default
			continue
		}

		return nil, &MissingArgumentError{
			Position: i,
			Name:     ArgKey(p.Name),
			Type:     p.Type,
			Target:   typeName,
		}
	}

	return k.call(typeName, args)
}

func (k *constructor) call(typeName string, args []any) (any, error) {
	ft := k.fn.Type()
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		v, ok := argValue(arg, ft.In(i))
		if !ok {
			return nil, &ArgumentTypeError{
				Position: i,
				Name:     ArgKey(k.params[i].Name),
				Target:   typeName,
				Got:      fmt.Sprintf("%T", arg),
				Want:     ft.In(i).String(),
			}
		}
		in[i] = v
	}

	out := k.fn.Call(in)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	return out[0].Interface(), nil
}

// argValue adapts arg to want. nil becomes the zero value of nillable
// types; numeric values convert between numeric kinds so untyped defaults
// such as 5 fit int64 or float64 parameters.
func argValue(arg any, want reflect.Type) (reflect.Value, bool) {
	if arg == nil {
		switch want.Kind() {
		case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
			return reflect.Zero(want), true
		}
		return reflect.Value{}, false
	}

	v := reflect.ValueOf(arg)
	if v.Type().AssignableTo(want) {
		return v, true
	}
	if isNumeric(v.Kind()) && isNumeric(want.Kind()) {
		return v.Convert(want), true
	}
	return reflect.Value{}, false
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
