package storage

import "errors"

var (
	ErrNotFound       = errors.New("storage: not found")
	ErrInvalidRef     = errors.New("storage: invalid table ref")
	ErrDigestMismatch = errors.New("storage: digest mismatch")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
