package classname

import (
	"os"
	"path/filepath"
	"sync"
)

// Runtime is the set of classes known to the running program and the means
// to load more of them from a file.
type Runtime interface {
	// Declared returns every class name declared so far.
	Declared() []string

	// Require loads path once. Requiring an already loaded path succeeds
	// and declares nothing.
	Require(path string) error
}

// Catalog is a Runtime for compiled-in classes. Each class is staged under
// the source file that defines it and becomes declared the first time that
// file is required.
//
//	catalog := classname.NewCatalog()
//	catalog.Stage("app/src/Dependencies/MailProvider.php", `App\Dependencies\MailProvider`)
type Catalog struct {
	mu       sync.Mutex
	staged   map[string][]string
	declared []string
	known    map[string]bool
	required map[string]bool
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		staged:   make(map[string][]string),
		known:    make(map[string]bool),
		required: make(map[string]bool),
	}
}

// Stage records that requiring path declares names.
func (c *Catalog) Stage(path string, names ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := fileKey(path)
	c.staged[k] = append(c.staged[k], names...)
}

// Declare marks names as declared without any file.
func (c *Catalog) Declare(names ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.declare(names)
}

// Declared returns the declared names in declaration order.
func (c *Catalog) Declared() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.declared...)
}

// Require declares the classes staged for path, once. The file must exist.
func (c *Catalog) Require(path string) error {
	k := fileKey(path)

	c.mu.Lock()
	if c.required[k] {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	if _, err := os.Stat(path); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.required[k] = true
	c.declare(c.staged[k])
	return nil
}

// declare must hold mu.
func (c *Catalog) declare(names []string) {
	for _, name := range names {
		if !c.known[name] {
			c.known[name] = true
			c.declared = append(c.declared, name)
		}
	}
}

func fileKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
