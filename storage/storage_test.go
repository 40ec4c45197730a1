package storage_test

import (
	"testing"

	"leptonweight.io/lw/storage"
	"leptonweight.io/lw/storage/localfs"
	"leptonweight.io/lw/storage/testkit"
	"leptonweight.io/lw/tableid"
)

func newLocal(t *testing.T) *localfs.Store {
	t.Helper()
	s, err := localfs.New(t.TempDir())
	if err != nil {
		t.Fatalf("localfs.New: %v", err)
	}
	return s
}

func TestMultiStore_Conformance(t *testing.T) {
	testkit.RunStoreConformance(t, func(t *testing.T) storage.TableStore {
		return storage.MultiStore{Stores: []storage.TableStore{newLocal(t), newLocal(t)}}
	})
}

func TestMultiStore_FallsBackInOrder(t *testing.T) {
	primary, secondary := newLocal(t), newLocal(t)
	data := []byte("only in secondary")
	ref, err := secondary.Put(data)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	m := storage.MultiStore{Stores: []storage.TableStore{primary, secondary}}
	got, err := m.Get(ref)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != string(data) {
		t.Fatalf("bytes mismatch")
	}
	if !m.Has(ref) {
		t.Fatalf("Has: expected true")
	}
	if primary.Has(ref) {
		t.Fatalf("Get must not write through to the primary store")
	}
}

func TestReplicatingStore_PutAll(t *testing.T) {
	a, b := newLocal(t), newLocal(t)
	r := storage.ReplicatingStore{Backends: []storage.NamedStore{{Name: "a", Store: a}, {Name: "b", Store: b}}}

	data := []byte("replicate me")
	ref, per, err := r.PutAll(data)
	if err != nil {
		t.Fatalf("PutAll: %v", err)
	}
	if ref != tableid.Sum(data) {
		t.Fatalf("unexpected ref %s", ref)
	}
	if per["a"] != ref || per["b"] != ref {
		t.Fatalf("per-backend refs mismatch: %v", per)
	}
	if !a.Has(ref) || !b.Has(ref) {
		t.Fatalf("table not written to every backend")
	}
}

func TestReplicatingStore_NoBackends(t *testing.T) {
	if _, err := (storage.ReplicatingStore{}).Put([]byte("x")); err == nil {
		t.Fatalf("expected error without backends")
	}
	if _, err := (storage.MultiStore{}).Put([]byte("x")); err == nil {
		t.Fatalf("expected error without stores")
	}
}
