package testkit

import (
	"bytes"
	"testing"

	"leptonweight.io/lw/storage"
	"leptonweight.io/lw/tableid"
)

// NewStore constructs a fresh, empty TableStore instance for a test.
// The returned store MUST be isolated from other tests.
type NewStore func(t *testing.T) storage.TableStore

func RunStoreConformance(t *testing.T, newStore NewStore) {
	t.Helper()

	t.Run("PutGetRoundTrip", func(t *testing.T) {
		s := newStore(t)
		want := []byte("dsdxdy_nu_CC_iso table bytes")

		ref, err := s.Put(want)
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if ref != tableid.Sum(want) {
			t.Fatalf("Put ref mismatch: got %s want %s", ref, tableid.Sum(want))
		}

		got, err := s.Get(ref)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("Get bytes mismatch")
		}
		if !ref.Verify(got) {
			t.Fatalf("Get returned bytes not matching requested ref")
		}
	})

	t.Run("PutIdempotent", func(t *testing.T) {
		s := newStore(t)
		b := []byte("same bytes")

		r1, err := s.Put(b)
		if err != nil {
			t.Fatalf("Put(1) failed: %v", err)
		}
		r2, err := s.Put(b)
		if err != nil {
			t.Fatalf("Put(2) failed: %v", err)
		}
		if r1 != r2 {
			t.Fatalf("Put not idempotent: %s vs %s", r1, r2)
		}
	})

	t.Run("HasAndNotFound", func(t *testing.T) {
		s := newStore(t)
		b := []byte("missing")
		ref := tableid.Sum(b)

		if s.Has(ref) {
			t.Fatalf("Has returned true for missing table")
		}
		if _, err := s.Get(ref); !storage.IsNotFound(err) {
			t.Fatalf("Get missing: got err=%v want ErrNotFound", err)
		}

		if _, err := s.Put(b); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if !s.Has(ref) {
			t.Fatalf("Has returned false after Put")
		}
	})

	t.Run("RejectUndefinedRef", func(t *testing.T) {
		s := newStore(t)
		var undef tableid.Ref
		if s.Has(undef) {
			t.Fatalf("Has should be false for undefined ref")
		}
		if _, err := s.Get(undef); err == nil {
			t.Fatalf("Get should fail for undefined ref")
		}
	})
}
