package storage

import (
	"fmt"

	"leptonweight.io/lw/tableid"
)

// NamedStore associates a TableStore with a stable backend name.
type NamedStore struct {
	Name  string
	Store TableStore
}

// ReplicatingStore writes to all configured backends.
//
// Reads fall back in order. Writes go to all backends and require every
// returned ref to equal the digest of the bytes (otherwise ErrDigestMismatch).
type ReplicatingStore struct {
	Backends []NamedStore
}

var _ TableStore = ReplicatingStore{}

// PutAll writes the same bytes to all backends and returns the per-backend refs.
func (r ReplicatingStore) PutAll(bytes []byte) (tableid.Ref, map[string]tableid.Ref, error) {
	want := tableid.Sum(bytes)
	if len(r.Backends) == 0 {
		return tableid.Ref{}, nil, fmt.Errorf("storage: ReplicatingStore has no backends")
	}

	out := make(map[string]tableid.Ref, len(r.Backends))
	for _, b := range r.Backends {
		if b.Store == nil {
			return tableid.Ref{}, nil, fmt.Errorf("storage: nil store for backend %q", b.Name)
		}
		got, err := b.Store.Put(bytes)
		if err != nil {
			return tableid.Ref{}, nil, fmt.Errorf("storage: backend %q: %w", b.Name, err)
		}
		out[b.Name] = got
		if got != want {
			return tableid.Ref{}, out, ErrDigestMismatch
		}
	}
	return want, out, nil
}

func (r ReplicatingStore) Put(bytes []byte) (tableid.Ref, error) {
	ref, _, err := r.PutAll(bytes)
	return ref, err
}

func (r ReplicatingStore) Get(ref tableid.Ref) ([]byte, error) {
	for _, b := range r.Backends {
		if b.Store == nil {
			continue
		}
		out, err := b.Store.Get(ref)
		if err == nil {
			return out, nil
		}
		if IsNotFound(err) {
			continue
		}
		return nil, err
	}
	return nil, ErrNotFound
}

func (r ReplicatingStore) Has(ref tableid.Ref) bool {
	for _, b := range r.Backends {
		if b.Store != nil && b.Store.Has(ref) {
			return true
		}
	}
	return false
}
