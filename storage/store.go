package storage

import "leptonweight.io/lw/tableid"

// TableStore is the side-channel store holding serialized spline tables.
//
// Contract:
// - Put MUST be idempotent and MUST return tableid.Sum(bytes).
// - Put writes only when no object with that name exists with matching bytes;
//   a stored object whose bytes no longer hash to its name is replaced.
// - Get MUST verify the returned bytes against ref.
// - Get MUST return ErrNotFound when ref is absent.
type TableStore interface {
	Put(bytes []byte) (tableid.Ref, error)
	Get(ref tableid.Ref) ([]byte, error)
	Has(ref tableid.Ref) bool
}
