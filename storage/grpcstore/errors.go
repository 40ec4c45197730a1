package grpcstore

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"leptonweight.io/lw/storage"
)

// Storage sentinels and the status codes that carry them.
var sentinelCodes = []struct {
	err  error
	code codes.Code
}{
	{storage.ErrNotFound, codes.NotFound},
	{storage.ErrInvalidRef, codes.InvalidArgument},
	{storage.ErrDigestMismatch, codes.DataLoss},
}

// toStatus converts a store error into a gRPC status error.
func toStatus(err error) error {
	for _, s := range sentinelCodes {
		if errors.Is(err, s.err) {
			return status.Error(s.code, s.err.Error())
		}
	}
	return status.Error(codes.Internal, err.Error())
}

// fromStatus converts a gRPC status error back into a storage sentinel where
// one applies.
func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	for _, s := range sentinelCodes {
		if st.Code() == s.code {
			return s.err
		}
	}
	return err
}
