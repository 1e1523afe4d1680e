package bootstrap

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/km-arc/slim-bootstrap/framework/app"
	"github.com/km-arc/slim-bootstrap/framework/classname"
	"github.com/km-arc/slim-bootstrap/framework/config"
	"github.com/km-arc/slim-bootstrap/framework/container"
)

// ProviderFileGlob matches provider source files.
const ProviderFileGlob = "*.php"

// configGlobs match config files below the config directory.
var configGlobs = []string{"*.yaml", "*.yml"}

// ProviderError reports a provider file that could not be turned into a
// registered provider.
type ProviderError struct {
	File  string
	Class string
	Err   error
}

func (e *ProviderError) Error() string {
	if e.Class == "" {
		return fmt.Sprintf("bootstrap: provider file %q: %v", e.File, e.Err)
	}
	return fmt.Sprintf("bootstrap: provider %q in %q: %v", e.Class, e.File, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Bootstrap loads an application directory into a container:
//
//	<app>/config/**.yaml            → "config"
//	config "settings" section       → "settings"
//	<app>/src/.../Dependencies/*.php  → service providers
//	<app>/modules/.../Dependencies/*.php
type Bootstrap struct {
	container  *container.Container
	app        *app.Application
	discoverer *classname.Discoverer
	logger     *zap.Logger

	applicationPath string
	srcPath         string
	configPath      string
	modulesPath     string
}

type options struct {
	logger    *zap.Logger
	types     *container.Types
	runtime   classname.Runtime
	chunkSize int
	envFiles  []string
}

// Option configures a Bootstrap.
type Option func(*options)

// WithLogger sets the logger shared by the bootstrap, discovery and the
// application.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTypes sets the autowiring type table. Provider classes must be
// defined in it.
func WithTypes(t *container.Types) Option {
	return func(o *options) { o.types = t }
}

// WithRuntime enables load-and-diff class discovery against r.
func WithRuntime(r classname.Runtime) Option {
	return func(o *options) { o.runtime = r }
}

// WithChunkSize sets the read size of the source scanner.
func WithChunkSize(n int) Option {
	return func(o *options) { o.chunkSize = n }
}

// WithEnvFiles replaces the default <app>/.env.
func WithEnvFiles(files ...string) Option {
	return func(o *options) { o.envFiles = files }
}

// New prepares the bootstrap of the application rooted at applicationPath.
// Nothing is read until Run.
func New(applicationPath string, opts ...Option) *Bootstrap {
	root := strings.TrimRight(applicationPath, "/")
	switch {
	case root == "" && applicationPath != "":
		root = "/"
	case root == "":
		root = "."
	}

	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.types == nil {
		o.types = container.NewTypes()
	}
	if o.envFiles == nil {
		o.envFiles = []string{filepath.Join(root, ".env")}
	}

	discoverOpts := []classname.Option{
		classname.WithLogger(o.logger),
		classname.WithChunkSize(o.chunkSize),
	}
	if o.runtime != nil {
		discoverOpts = append(discoverOpts, classname.WithRuntime(o.runtime))
	}

	c := container.New(container.WithTypes(o.types))
	return &Bootstrap{
		container:       c,
		app:             app.New(c, app.WithLogger(o.logger), app.WithEnvFiles(o.envFiles...)),
		discoverer:      classname.New(discoverOpts...),
		logger:          o.logger,
		applicationPath: root,
		srcPath:         filepath.Join(root, "src"),
		configPath:      filepath.Join(root, "config"),
		modulesPath:     filepath.Join(root, "modules"),
	}
}

// EnableContainerAutowiring turns on autowiring in the container.
func (b *Bootstrap) EnableContainerAutowiring() {
	b.container.EnableAutowiring()
}

// Run loads configs, settings and dependencies, then boots the providers.
// The first error aborts the bootstrap.
func (b *Bootstrap) Run() error {
	if err := b.LoadConfigs(); err != nil {
		return err
	}
	if err := b.LoadSettings(); err != nil {
		return err
	}
	if err := b.LoadDependencies(); err != nil {
		return err
	}
	b.app.Boot()
	return nil
}

// LoadConfigs merges every config file below the config directory into one
// tree, each file nested under its relative path, and stores it as "config".
func (b *Bootstrap) LoadConfigs() error {
	var files []string
	for _, glob := range configGlobs {
		found, err := findFiles(filepath.Join(b.configPath, glob))
		if err != nil {
			return err
		}
		files = append(files, found...)
	}

	tree, err := config.LoadTree(b.configPath, files)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	b.logger.Debug("configs loaded", zap.Int("files", len(files)))
	b.container.Set("config", tree)
	return nil
}

// LoadSettings overlays the "settings" section of "config" on the default
// settings and stores the result as "settings".
func (b *Bootstrap) LoadSettings() error {
	defaults := config.Tree{}
	if b.container.Has("settings") {
		var err error
		if defaults, err = container.Resolve[config.Tree](b.container, "settings"); err != nil {
			return fmt.Errorf("bootstrap: %w", err)
		}
	}
	b.container.Unset("settings")

	var overlay config.Tree
	if b.container.Has("config") {
		cfg, err := container.Resolve[config.Tree](b.container, "config")
		if err != nil {
			return fmt.Errorf("bootstrap: %w", err)
		}
		overlay = cfg.Sub("settings")
	}

	// Re-set even without a "settings" section so the defaults stay registered.
	b.container.Set("settings", config.Overlay(defaults, overlay))
	return nil
}

// LoadDependencies registers the service provider declared by every
// provider file below src and modules.
func (b *Bootstrap) LoadDependencies() error {
	patterns := []string{
		filepath.Join(b.srcPath, "Dependencies", ProviderFileGlob),
		filepath.Join(b.srcPath, "Core", "*", "*", "Dependencies", ProviderFileGlob),
		filepath.Join(b.modulesPath, "*", "*", "Dependencies", ProviderFileGlob),
		filepath.Join(b.modulesPath, "*", "Dependencies", ProviderFileGlob),
	}

	seen := make(map[string]bool)
	for _, pattern := range patterns {
		files, err := findFiles(pattern)
		if err != nil {
			return err
		}
		for _, file := range files {
			if seen[file] {
				continue
			}
			seen[file] = true
			if err := b.registerProvider(file); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *Bootstrap) registerProvider(file string) error {
	class, err := b.discoverer.Discover(file)
	if err != nil {
		return &ProviderError{File: file, Err: err}
	}

	unit, err := b.container.Autowire(class, nil)
	if err != nil {
		return &ProviderError{File: file, Class: class, Err: err}
	}

	registrar, ok := unit.(container.Registrar)
	if !ok {
		return &ProviderError{File: file, Class: class, Err: fmt.Errorf("%T has no Register method", unit)}
	}

	b.app.Register(registrar)
	b.logger.Info("provider registered", zap.String("file", file), zap.String("class", class))
	return nil
}

// ── Accessors ─────────────────────────────────────────────────────────────────

func (b *Bootstrap) Container() *container.Container { return b.container }
func (b *Bootstrap) Application() *app.Application   { return b.app }
func (b *Bootstrap) ApplicationPath() string         { return b.applicationPath }
func (b *Bootstrap) SrcPath() string                 { return b.srcPath }
func (b *Bootstrap) ConfigPath() string              { return b.configPath }
func (b *Bootstrap) ModulesPath() string             { return b.modulesPath }
