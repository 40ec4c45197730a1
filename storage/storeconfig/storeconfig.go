// Package storeconfig opens a stack of table stores described by a JSON file:
//
//	{
//	  "write_policy": "all",
//	  "backends": [
//	    {"name": "localfs", "config": {"localfs-dir": "/data/tables"}},
//	    {"name": "grpc", "config": {"grpc-target": "tables.internal:7777"}}
//	  ]
//	}
//
// Backends must be linked in by the caller with blank imports.
package storeconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"

	"leptonweight.io/lw/storage"
	"leptonweight.io/lw/storage/storeregistry"
)

// WritePolicy selects which backends receive writes.
type WritePolicy string

const (
	// WriteFirst writes to the first backend only; reads fall through in order.
	WriteFirst WritePolicy = "first"
	// WriteAll writes to every backend and requires identical references.
	WriteAll WritePolicy = "all"
)

type Config struct {
	WritePolicy WritePolicy     `json:"write_policy,omitempty"`
	Backends    []BackendConfig `json:"backends"`
}

type BackendConfig struct {
	// Name is the registered backend, such as "localfs", "grpc" or "ipfs".
	Name string `json:"name"`
	// ID distinguishes two entries of the same backend. Defaults to Name.
	ID     string            `json:"id,omitempty"`
	Config map[string]string `json:"config,omitempty"`
}

func (b BackendConfig) label() string {
	if b.ID == "" {
		return b.Name
	}
	return b.ID
}

func (b BackendConfig) matches(name string) bool { return b.Name == name || b.ID == name }

// LoadFile reads and validates a config file.
func LoadFile(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, errors.New("storeconfig: no config path")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("storeconfig: %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if len(c.Backends) == 0 {
		return errors.New("storeconfig: no backends")
	}
	labels := make(map[string]bool, len(c.Backends))
	for i, b := range c.Backends {
		if b.Name == "" {
			return fmt.Errorf("storeconfig: backend %d has no name", i)
		}
		if labels[b.label()] {
			return fmt.Errorf("storeconfig: backend %q listed twice; set an id", b.label())
		}
		labels[b.label()] = true
	}
	switch c.WritePolicy {
	case "", WriteFirst, WriteAll:
		return nil
	}
	return fmt.Errorf("storeconfig: unknown write_policy %q", c.WritePolicy)
}

// ordered returns the backends with preferred, when set, moved to the front.
func (c Config) ordered(preferred string) ([]BackendConfig, error) {
	out := slices.Clone(c.Backends)
	if preferred == "" {
		return out, nil
	}
	i := slices.IndexFunc(out, func(b BackendConfig) bool { return b.matches(preferred) })
	if i < 0 {
		return nil, fmt.Errorf("storeconfig: backend %q is not configured", preferred)
	}
	b := out[i]
	out = slices.Delete(out, i, i+1)
	return slices.Insert(out, 0, b), nil
}

type closers []func() error

// close runs the close functions in reverse order and returns the first error.
func (cs closers) close() error {
	var first error
	for i := len(cs) - 1; i >= 0; i-- {
		if err := cs[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open opens every configured backend and combines them per WritePolicy.
// A non-empty preferred names the backend to put first. The returned close
// function is never nil.
func (c Config) Open(usage storeregistry.Usage, preferred string) (storage.TableStore, func() error, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}
	backends, err := c.ordered(preferred)
	if err != nil {
		return nil, nil, err
	}

	var (
		opened []storage.NamedStore
		cs     closers
	)
	for _, b := range backends {
		st, closeFn, err := storeregistry.OpenWithConfig(b.Name, usage, b.Config)
		if err != nil {
			_ = cs.close()
			return nil, nil, err
		}
		if closeFn != nil {
			cs = append(cs, closeFn)
		}
		opened = append(opened, storage.NamedStore{Name: b.label(), Store: st})
	}

	switch {
	case len(opened) == 1:
		return opened[0].Store, cs.close, nil
	case c.WritePolicy == WriteAll:
		return storage.ReplicatingStore{Backends: opened}, cs.close, nil
	}
	var multi storage.MultiStore
	for _, n := range opened {
		multi.Stores = append(multi.Stores, n.Store)
	}
	return multi, cs.close, nil
}
