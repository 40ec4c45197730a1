package storage

import (
	"errors"

	"leptonweight.io/lw/tableid"
)

// MultiStore provides deterministic, ordered fallback across multiple stores.
//
// Lookup order is the slice order in Stores; callers MUST supply a fixed order.
// Put writes only to the first store.
type MultiStore struct {
	Stores []TableStore
}

var _ TableStore = MultiStore{}

func (m MultiStore) Put(bytes []byte) (tableid.Ref, error) {
	if len(m.Stores) == 0 {
		return tableid.Ref{}, errors.New("storage: MultiStore has no stores")
	}
	return m.Stores[0].Put(bytes)
}

func (m MultiStore) Get(ref tableid.Ref) ([]byte, error) {
	for _, s := range m.Stores {
		b, err := s.Get(ref)
		if err == nil {
			return b, nil
		}
		if IsNotFound(err) {
			continue
		}
		return nil, err
	}
	return nil, ErrNotFound
}

func (m MultiStore) Has(ref tableid.Ref) bool {
	for _, s := range m.Stores {
		if s.Has(ref) {
			return true
		}
	}
	return false
}
