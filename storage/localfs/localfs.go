package localfs

import (
	"errors"
	"os"
	"path/filepath"

	"leptonweight.io/lw/storage"
	"leptonweight.io/lw/tableid"
)

// Store is a directory of spline tables named "<hex sha2-512>.fits".
//
// The layout is flat so that a table directory produced by other tooling can be
// used as-is. Put only writes when no file with the table's name exists with a
// matching digest, which keeps repeated config decodes idempotent.
type Store struct {
	root string
}

var _ storage.TableStore = (*Store)(nil)

// New constructs a filesystem store rooted at root. The directory will be created if needed.
func New(root string) (*Store, error) {
	if root == "" {
		return nil, errors.New("localfs: root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Store{root: root}, nil
}

// Root returns the directory backing the store.
func (s *Store) Root() string { return s.root }

func (s *Store) Put(bytes []byte) (tableid.Ref, error) {
	ref := tableid.Sum(bytes)
	path := s.PathFor(ref)

	if existing, err := os.ReadFile(path); err == nil {
		if ref.Verify(existing) {
			return ref, nil
		}
	} else if !os.IsNotExist(err) {
		return tableid.Ref{}, err
	}

	tmp, err := os.CreateTemp(s.root, ".tmp-"+ref.Hex()[:16]+"-*")
	if err != nil {
		return tableid.Ref{}, err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(bytes); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return tableid.Ref{}, err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return tableid.Ref{}, err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return tableid.Ref{}, err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return tableid.Ref{}, err
	}
	return ref, nil
}

func (s *Store) Get(ref tableid.Ref) ([]byte, error) {
	if !ref.Defined() {
		return nil, storage.ErrInvalidRef
	}
	b, err := os.ReadFile(s.PathFor(ref))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	if !ref.Verify(b) {
		return nil, storage.ErrDigestMismatch
	}
	return b, nil
}

func (s *Store) Has(ref tableid.Ref) bool {
	if !ref.Defined() {
		return false
	}
	_, err := os.Stat(s.PathFor(ref))
	return err == nil
}

// PathFor returns the file path a table is stored under.
func (s *Store) PathFor(ref tableid.Ref) string {
	return filepath.Join(s.root, ref.Name())
}
