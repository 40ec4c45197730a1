// Package ipfs stores spline tables as raw blocks in a local Kubo repository.
//
// Blocks are written as CIDv1 raw with a sha2-512 multihash, which is exactly
// tableid.Ref.CID, so sites can exchange tables by CID. The store drives the
// ipfs command line and needs no running daemon.
package ipfs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/ipfs/go-cid"

	"leptonweight.io/lw/storage"
	"leptonweight.io/lw/tableid"
)

type Options struct {
	// Bin is the ipfs executable. Defaults to "ipfs" on PATH.
	Bin string
	// Env replaces the command environment when non-nil, typically to set
	// IPFS_PATH.
	Env []string
	// Timeout bounds each command. Zero means no limit.
	Timeout time.Duration
}

type Store struct {
	opts Options
}

var _ storage.TableStore = (*Store)(nil)

func New(opts Options) *Store {
	if opts.Bin == "" {
		opts.Bin = "ipfs"
	}
	return &Store{opts: opts}
}

// commandError is a failed ipfs invocation with its stderr.
type commandError struct {
	args   []string
	stderr string
	err    error
}

func (e *commandError) Error() string {
	sub := strings.Join(e.args[:min(2, len(e.args))], " ")
	if e.stderr != "" {
		return fmt.Sprintf("ipfs %s: %s", sub, e.stderr)
	}
	return fmt.Sprintf("ipfs %s: %v", sub, e.err)
}

func (e *commandError) Unwrap() error { return e.err }

func (s *Store) exec(ctx context.Context, stdin []byte, args ...string) ([]byte, error) {
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, s.opts.Bin, args...)
	cmd.Env = s.opts.Env
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, &commandError{args: args, stderr: strings.TrimSpace(stderr.String()), err: err}
	}
	return out, nil
}

// isLikelyNotFound recognizes Kubo's messages for absent blocks.
func isLikelyNotFound(err error) bool {
	var ce *commandError
	if errors.As(err, &ce) {
		return strings.Contains(strings.ToLower(ce.stderr), "not found")
	}
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "not found")
}

func (s *Store) PutContext(ctx context.Context, data []byte) (tableid.Ref, error) {
	ref := tableid.Sum(data)
	want, err := ref.CID()
	if err != nil {
		return tableid.Ref{}, err
	}
	out, err := s.exec(ctx, data, "block", "put", "--quiet", "--format=raw",
		"--mhtype=sha2-512", "--mhlen=64", "--cid-version=1", "/dev/stdin")
	if err != nil {
		return tableid.Ref{}, err
	}
	got, err := cid.Decode(strings.TrimSpace(string(out)))
	if err != nil {
		return tableid.Ref{}, fmt.Errorf("ipfs: block put printed %q: %w", out, err)
	}
	if !got.Equals(want) {
		return tableid.Ref{}, storage.ErrDigestMismatch
	}
	return ref, nil
}

func (s *Store) GetContext(ctx context.Context, ref tableid.Ref) ([]byte, error) {
	id, err := ref.CID()
	if err != nil {
		return nil, storage.ErrInvalidRef
	}
	data, err := s.exec(ctx, nil, "block", "get", id.String())
	switch {
	case isLikelyNotFound(err):
		return nil, storage.ErrNotFound
	case err != nil:
		return nil, err
	case !ref.Verify(data):
		return nil, storage.ErrDigestMismatch
	}
	return data, nil
}

func (s *Store) HasContext(ctx context.Context, ref tableid.Ref) bool {
	id, err := ref.CID()
	if err != nil {
		return false
	}
	_, err = s.exec(ctx, nil, "block", "stat", "--offline", id.String())
	return err == nil
}

func (s *Store) Put(data []byte) (tableid.Ref, error) {
	return s.PutContext(context.Background(), data)
}

func (s *Store) Get(ref tableid.Ref) ([]byte, error) {
	return s.GetContext(context.Background(), ref)
}

func (s *Store) Has(ref tableid.Ref) bool {
	return s.HasContext(context.Background(), ref)
}
