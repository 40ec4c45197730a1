package grpcstore

import (
	"fmt"
	"strconv"
	"time"

	"leptonweight.io/lw/storage"
	"leptonweight.io/lw/storage/storeregistry"
)

// Configuration keys accepted by the "grpc" backend.
const (
	KeyTarget      = "grpc-target"
	KeyTimeout     = "grpc-timeout"
	KeyMaxMsgBytes = "grpc-max-msg-bytes"
)

func init() {
	storeregistry.MustRegister(storeregistry.Backend{
		Name:        "grpc",
		Description: "Remote table store over gRPC",
		Usage:       storeregistry.UsageLibrary,
		Options: []storeregistry.Option{
			{Key: KeyTarget, Help: "gRPC target host:port"},
			{Key: KeyTimeout, Default: "30s", Help: "Per-call timeout"},
			{Key: KeyMaxMsgBytes, Help: "Max message size in bytes; empty keeps the gRPC default"},
		},
		Open: open,
	})
}

func open(s storeregistry.Settings) (storage.TableStore, func() error, error) {
	target, err := s.Require(KeyTarget)
	if err != nil {
		return nil, nil, err
	}
	var opts Options
	if v := s.Get(KeyTimeout); v != "" {
		if opts.Timeout, err = time.ParseDuration(v); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", KeyTimeout, err)
		}
	}
	if v := s.Get(KeyMaxMsgBytes); v != "" {
		if opts.MaxMsgBytes, err = strconv.Atoi(v); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", KeyMaxMsgBytes, err)
		}
	}
	c, err := New(target, opts)
	if err != nil {
		return nil, nil, err
	}
	return c, c.Close, nil
}
