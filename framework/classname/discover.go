package classname

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
)

const (
	// DefaultChunkSize is the number of bytes read per step by the
	// source scanner.
	DefaultChunkSize = 512

	// BlockStart opens a class or namespace body.
	BlockStart = '{'
)

// ErrNotFound matches every *NotFoundError.
var ErrNotFound = errors.New("classname: no class declaration found")

// NotFoundError reports a file in which no class declaration was found.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("classname: could not find any class in file %q", e.Path)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// Discoverer finds the fully-qualified name of the class a file declares.
type Discoverer struct {
	runtime   Runtime
	chunkSize int
	logger    *zap.Logger
}

// Option configures a Discoverer.
type Option func(*Discoverer)

// WithRuntime enables the load-and-diff strategy against r.
func WithRuntime(r Runtime) Option {
	return func(d *Discoverer) { d.runtime = r }
}

// WithChunkSize sets how many bytes the source scanner reads per step.
func WithChunkSize(n int) Option {
	return func(d *Discoverer) {
		if n > 0 {
			d.chunkSize = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(d *Discoverer) { d.logger = l }
}

// New creates a Discoverer. Without a runtime every file is scanned.
func New(opts ...Option) *Discoverer {
	d := &Discoverer{
		chunkSize: DefaultChunkSize,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Discover returns the fully-qualified class name declared by path.
//
// It first loads the file through the runtime and looks for exactly one
// newly declared class. A file that was loaded before declares nothing new;
// the source is then scanned instead.
func (d *Discoverer) Discover(path string) (string, error) {
	name, ok, err := d.fromRuntime(path)
	if err != nil {
		return "", err
	}
	if ok {
		d.logger.Debug("class declared on load", zap.String("file", path), zap.String("class", name))
		return name, nil
	}

	name, err = d.fromSource(path)
	if err != nil {
		return "", err
	}
	d.logger.Debug("class found in source", zap.String("file", path), zap.String("class", name))
	return name, nil
}

func (d *Discoverer) fromRuntime(path string) (string, bool, error) {
	if d.runtime == nil {
		return "", false, nil
	}

	before := make(map[string]bool)
	for _, name := range d.runtime.Declared() {
		before[name] = true
	}

	if err := d.runtime.Require(path); err != nil {
		return "", false, fmt.Errorf("classname: loading %s: %w", path, err)
	}

	var added []string
	for _, name := range d.runtime.Declared() {
		if !before[name] {
			added = append(added, name)
		}
	}
	if len(added) != 1 {
		return "", false, nil
	}
	return added[0], true, nil
}

// fromSource reads path chunk by chunk. Tokenizing waits until the buffer
// holds a block start; after that the whole buffer is re-tokenized on every
// chunk and the scanner resumes where it stopped.
func (d *Discoverer) fromSource(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("classname: %w", err)
	}
	defer f.Close()

	var (
		buf     []byte
		chunk   = make([]byte, d.chunkSize)
		scanner Scanner
		gated   bool
	)
	for {
		n, err := f.Read(chunk)
		buf = append(buf, chunk[:n]...)

		eof := errors.Is(err, io.EOF)
		if err != nil && !eof {
			return "", fmt.Errorf("classname: reading %s: %w", path, err)
		}

		if !gated {
			gated = bytes.IndexByte(buf, BlockStart) >= 0
		}
		if gated {
			if name, ok := scanner.Scan(Tokenize(buf), eof); ok {
				return name, nil
			}
		}

		if eof {
			return "", &NotFoundError{Path: path}
		}
	}
}
