package spline

import (
	"fmt"

	"leptonweight.io/lw/storage"
	"leptonweight.io/lw/tableid"
)

// StoreBackend loads tables from a table store. Identifiers are table names
// ("<hex>.fits") or bare digests; Decode parses the stored bytes.
type StoreBackend struct {
	Store  storage.TableStore
	Decode func(data []byte) (Table, error)
}

func (b StoreBackend) Load(id string) (Table, error) {
	if b.Store == nil || b.Decode == nil {
		return nil, fmt.Errorf("store backend is not configured")
	}
	ref, err := tableid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrInvalidRef, err)
	}
	data, err := b.Store.Get(ref)
	if err != nil {
		return nil, err
	}
	return b.Decode(data)
}
