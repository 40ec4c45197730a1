package storeregistry

import (
	"flag"
	"fmt"
	"slices"
	"strings"
	"sync"

	"leptonweight.io/lw/storage"
)

// Option is one key a backend reads from its configuration. Every option is
// also exposed as a command-line flag of the same name.
type Option struct {
	Key     string
	Default string
	Help    string
}

// OpenFunc builds a store from resolved settings. The returned close function
// may be nil.
type OpenFunc func(s Settings) (storage.TableStore, func() error, error)

// Backend is a table store implementation linked in at build time. Backend
// packages register themselves from init and are enabled by a blank import.
type Backend struct {
	Name        string
	Description string
	Usage       Usage
	Options     []Option
	Open        OpenFunc
}

// Settings maps option keys to values. Missing keys read as the option
// default.
type Settings struct {
	values   map[string]string
	defaults map[string]string
}

// Get returns the value for key, or its default.
func (s Settings) Get(key string) string {
	if v, ok := s.values[key]; ok && v != "" {
		return v
	}
	return s.defaults[key]
}

// Require is Get for options that must be set.
func (s Settings) Require(key string) (string, error) {
	v := strings.TrimSpace(s.Get(key))
	if v == "" {
		return "", fmt.Errorf("missing %s", key)
	}
	return v, nil
}

// Registry holds backends by name. The package-level functions use a shared
// default registry.
type Registry struct {
	mu       sync.RWMutex
	backends map[string]Backend
	flags    map[string]*string
}

var defaultRegistry Registry

func (r *Registry) Register(b Backend) error {
	switch {
	case b.Name == "":
		return fmt.Errorf("storeregistry: backend name is required")
	case b.Open == nil:
		return fmt.Errorf("storeregistry: backend %q has no Open", b.Name)
	case b.Usage == 0:
		return fmt.Errorf("storeregistry: backend %q has no Usage", b.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.backends == nil {
		r.backends = make(map[string]Backend)
	}
	if _, dup := r.backends[b.Name]; dup {
		return fmt.Errorf("storeregistry: backend %q already registered", b.Name)
	}
	r.backends[b.Name] = b
	return nil
}

// Backends returns the backends accepted for usage, ordered by name.
func (r *Registry) Backends(usage Usage) []Backend {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Backend
	for _, b := range r.backends {
		if b.Usage.allows(usage) {
			out = append(out, b)
		}
	}
	slices.SortFunc(out, func(a, b Backend) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// BindFlags defines a flag on fs for every option of the backends accepted
// for usage. Parsed values are used by OpenFlags.
func (r *Registry) BindFlags(fs *flag.FlagSet, usage Usage) {
	bs := r.Backends(usage)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.flags == nil {
		r.flags = make(map[string]*string)
	}
	for _, b := range bs {
		for _, o := range b.Options {
			if fs.Lookup(o.Key) != nil {
				continue
			}
			v := new(string)
			fs.StringVar(v, o.Key, o.Default, fmt.Sprintf("%s (for --backend=%s)", o.Help, b.Name))
			r.flags[o.Key] = v
		}
	}
}

func (r *Registry) lookup(name string, usage Usage) (Backend, error) {
	r.mu.RLock()
	b, ok := r.backends[name]
	r.mu.RUnlock()
	if !ok {
		return Backend{}, fmt.Errorf("storeregistry: unknown backend %q", name)
	}
	if !b.Usage.allows(usage) {
		return Backend{}, fmt.Errorf("storeregistry: backend %q not available here", name)
	}
	return b, nil
}

// OpenConfig opens the named backend from key/value configuration.
func (r *Registry) OpenConfig(name string, usage Usage, cfg map[string]string) (storage.TableStore, func() error, error) {
	b, err := r.lookup(name, usage)
	if err != nil {
		return nil, nil, err
	}
	defaults := make(map[string]string, len(b.Options))
	for _, o := range b.Options {
		defaults[o.Key] = o.Default
	}
	st, closeFn, err := b.Open(Settings{values: cfg, defaults: defaults})
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", b.Name, err)
	}
	return st, closeFn, nil
}

// OpenFlags opens the named backend from flags bound by BindFlags.
func (r *Registry) OpenFlags(name string, usage Usage) (storage.TableStore, func() error, error) {
	r.mu.RLock()
	cfg := make(map[string]string, len(r.flags))
	for k, v := range r.flags {
		cfg[k] = *v
	}
	r.mu.RUnlock()
	return r.OpenConfig(name, usage, cfg)
}

// MustRegister registers b with the default registry and panics on error.
func MustRegister(b Backend) {
	if err := defaultRegistry.Register(b); err != nil {
		panic(err)
	}
}

// Names lists the default registry's backends accepted for usage.
func Names(usage Usage) []string {
	var names []string
	for _, b := range defaultRegistry.Backends(usage) {
		names = append(names, b.Name)
	}
	return names
}

// BindFlags binds the default registry's options to fs.
func BindFlags(fs *flag.FlagSet, usage Usage) { defaultRegistry.BindFlags(fs, usage) }

// Open opens a backend of the default registry from bound flags.
func Open(name string, usage Usage) (storage.TableStore, func() error, error) {
	return defaultRegistry.OpenFlags(name, usage)
}

// OpenWithConfig opens a backend of the default registry from cfg.
func OpenWithConfig(name string, usage Usage, cfg map[string]string) (storage.TableStore, func() error, error) {
	return defaultRegistry.OpenConfig(name, usage, cfg)
}
