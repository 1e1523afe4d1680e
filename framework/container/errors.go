package container

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownIdentifier is returned by Get for an identifier that is
	// neither registered nor autowirable.
	ErrUnknownIdentifier = errors.New("container: identifier is not registered")

	// ErrUnknownType is returned by Autowire for a type with no constructor
	// in the type table.
	ErrUnknownType = errors.New("container: type is not autowirable")

	// ErrMissingArgument matches every *MissingArgumentError.
	ErrMissingArgument = errors.New("container: missing argument")

	// ErrCircularDependency matches every *CycleError.
	ErrCircularDependency = errors.New("container: circular dependency")
)

// MissingArgumentError reports a constructor parameter that has no name
// override, no class hint and no default value.
type MissingArgumentError struct {
	Position int    // zero-based position in the constructor signature
	Name     string // override key of the parameter, e.g. "$limit"
	Type     string // declared type, empty when untyped
	Target   string // type being autowired
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("container: could not autowire argument %s(%d) of type %q for type %q",
		e.Name, e.Position, e.Type, e.Target)
}

func (e *MissingArgumentError) Is(target error) bool { return target == ErrMissingArgument }

// CycleError is returned when resolving an identifier requires that same
// identifier again. Path lists the identifiers in resolution order and ends
// with the repeated one.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return "container: circular dependency: " + strings.Join(e.Path, " -> ")
}

func (e *CycleError) Is(target error) bool { return target == ErrCircularDependency }

// ArgumentTypeError reports a resolved argument that cannot be passed to the
// Go constructor of the target type.
type ArgumentTypeError struct {
	Position int
	Name     string
	Target   string
	Got      string
	Want     string
}

func (e *ArgumentTypeError) Error() string {
	return fmt.Sprintf("container: argument %s(%d) for type %q: cannot use %s as %s",
		e.Name, e.Position, e.Target, e.Got, e.Want)
}
