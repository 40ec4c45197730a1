package grpcstore

import (
	"context"

	"github.com/ipfs/go-cid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"leptonweight.io/lw/storage"
	"leptonweight.io/lw/tableid"
)

// Server serves a storage.TableStore, typically a shared table directory, to
// remote weighting jobs.
type Server struct {
	Store storage.TableStore
}

var _ TableStoreServer = (*Server)(nil)

func (s *Server) store() (storage.TableStore, error) {
	if s == nil || s.Store == nil {
		return nil, status.Error(codes.FailedPrecondition, "grpcstore: server has no table store")
	}
	return s.Store, nil
}

func parseKey(key string) (tableid.Ref, error) {
	id, err := cid.Decode(key)
	if err != nil {
		return tableid.Ref{}, err
	}
	return tableid.FromCID(id)
}

func keyArg(in *wrapperspb.StringValue) (tableid.Ref, error) {
	ref, err := parseKey(in.GetValue())
	if err != nil {
		return tableid.Ref{}, toStatus(storage.ErrInvalidRef)
	}
	return ref, nil
}

func (s *Server) Put(_ context.Context, in *wrapperspb.BytesValue) (*wrapperspb.StringValue, error) {
	st, err := s.store()
	if err != nil {
		return nil, err
	}
	data := in.GetValue()
	ref, err := st.Put(data)
	if err != nil {
		return nil, toStatus(err)
	}
	if ref != tableid.Sum(data) {
		return nil, toStatus(storage.ErrDigestMismatch)
	}
	key, err := wireKey(ref)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return wrapperspb.String(key), nil
}

func (s *Server) Get(_ context.Context, in *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	st, err := s.store()
	if err != nil {
		return nil, err
	}
	ref, err := keyArg(in)
	if err != nil {
		return nil, err
	}
	data, err := st.Get(ref)
	if err != nil {
		return nil, toStatus(err)
	}
	if !ref.Verify(data) {
		return nil, toStatus(storage.ErrDigestMismatch)
	}
	return wrapperspb.Bytes(data), nil
}

func (s *Server) Has(_ context.Context, in *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	st, err := s.store()
	if err != nil {
		return nil, err
	}
	ref, err := keyArg(in)
	if err != nil {
		return nil, err
	}
	return wrapperspb.Bool(st.Has(ref)), nil
}
