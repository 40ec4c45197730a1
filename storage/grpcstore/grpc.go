package grpcstore

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The service is declared by hand on protobuf wrapper messages, so there is
// no generated code:
//
//	service TableStore {
//	  rpc Put(google.protobuf.BytesValue)  returns (google.protobuf.StringValue); // table bytes -> key
//	  rpc Get(google.protobuf.StringValue) returns (google.protobuf.BytesValue);  // key -> table bytes
//	  rpc Has(google.protobuf.StringValue) returns (google.protobuf.BoolValue);
//	}
//
// Keys are the string form of the table's raw sha2-512 CIDv1.
const serviceName = "lw.storage.grpcstore.v1.TableStore"

func method(name string) string { return "/" + serviceName + "/" + name }

// TableStoreServer is implemented by Server.
type TableStoreServer interface {
	Put(context.Context, *wrapperspb.BytesValue) (*wrapperspb.StringValue, error)
	Get(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error)
	Has(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
}

// RegisterTableStoreServer registers srv on s.
func RegisterTableStoreServer(s grpc.ServiceRegistrar, srv TableStoreServer) {
	s.RegisterService(&serviceDesc, srv)
}

// unary adapts one TableStoreServer method to a grpc.MethodHandler.
func unary[In, Out any](name string, call func(TableStoreServer, context.Context, *In) (*Out, error)) grpc.MethodDesc {
	full := method(name)
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, icpt grpc.UnaryServerInterceptor) (any, error) {
			in := new(In)
			if err := dec(in); err != nil {
				return nil, err
			}
			impl := srv.(TableStoreServer)
			if icpt == nil {
				return call(impl, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: full}
			return icpt(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(impl, ctx, req.(*In))
			})
		},
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*TableStoreServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Put", TableStoreServer.Put),
		unary("Get", TableStoreServer.Get),
		unary("Has", TableStoreServer.Has),
	},
	Metadata: "lw/storage/grpcstore/v1/tablestore.proto",
}

// invoke performs one unary call into a fresh reply message.
func invoke[Out any](ctx context.Context, cc grpc.ClientConnInterface, name string, in any, opts ...grpc.CallOption) (*Out, error) {
	out := new(Out)
	if err := cc.Invoke(ctx, method(name), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
