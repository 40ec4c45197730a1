package grpcstore

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"leptonweight.io/lw/storage"
	"leptonweight.io/lw/tableid"
)

// Client is a storage.TableStore backed by a remote TableStore service.
// Every reply is verified against the table's digest before it is returned.
type Client struct {
	cc grpc.ClientConnInterface
	// closer is set when the Client owns its connection.
	closer func() error

	// Timeout bounds each call made through the storage.TableStore methods.
	Timeout time.Duration
}

var _ storage.TableStore = (*Client)(nil)

// Options configures New.
type Options struct {
	// Timeout bounds each call made through the storage.TableStore methods.
	Timeout time.Duration
	// MaxMsgBytes raises both message size limits when non-zero. Differential
	// cross-section tables easily exceed the 4 MiB gRPC default.
	MaxMsgBytes int
	// DialOptions are appended to the defaults (insecure transport).
	DialOptions []grpc.DialOption
}

// New connects to target. Connections are established lazily, on first call.
func New(target string, opts Options) (*Client, error) {
	dial := []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	if n := opts.MaxMsgBytes; n > 0 {
		dial = append(dial, grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(n), grpc.MaxCallSendMsgSize(n)))
	}
	dial = append(dial, opts.DialOptions...)
	cc, err := grpc.NewClient(target, dial...)
	if err != nil {
		return nil, fmt.Errorf("grpcstore: %s: %w", target, err)
	}
	return &Client{cc: cc, closer: cc.Close, Timeout: opts.Timeout}, nil
}

// NewClient uses an existing connection, which the caller keeps ownership of.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Close releases the connection if the Client opened it.
func (c *Client) Close() error {
	if c == nil || c.closer == nil {
		return nil
	}
	return c.closer()
}

func (c *Client) withTimeout() (context.Context, context.CancelFunc) {
	if c.Timeout > 0 {
		return context.WithTimeout(context.Background(), c.Timeout)
	}
	return context.WithCancel(context.Background())
}

func wireKey(ref tableid.Ref) (string, error) {
	id, err := ref.CID()
	if err != nil {
		return "", storage.ErrInvalidRef
	}
	return id.String(), nil
}

// PutContext uploads data and checks the server addressed it correctly.
func (c *Client) PutContext(ctx context.Context, data []byte) (tableid.Ref, error) {
	reply, err := invoke[wrapperspb.StringValue](ctx, c.cc, "Put", wrapperspb.Bytes(data))
	if err != nil {
		return tableid.Ref{}, fromStatus(err)
	}
	got, err := parseKey(reply.GetValue())
	if err != nil {
		return tableid.Ref{}, storage.ErrInvalidRef
	}
	if got != tableid.Sum(data) {
		return tableid.Ref{}, storage.ErrDigestMismatch
	}
	return got, nil
}

// GetContext downloads the table named by ref.
func (c *Client) GetContext(ctx context.Context, ref tableid.Ref) ([]byte, error) {
	key, err := wireKey(ref)
	if err != nil {
		return nil, err
	}
	reply, err := invoke[wrapperspb.BytesValue](ctx, c.cc, "Get", wrapperspb.String(key))
	if err != nil {
		return nil, fromStatus(err)
	}
	if data := reply.GetValue(); ref.Verify(data) {
		return data, nil
	}
	return nil, storage.ErrDigestMismatch
}

// HasContext reports whether the server holds ref.
func (c *Client) HasContext(ctx context.Context, ref tableid.Ref) (bool, error) {
	key, err := wireKey(ref)
	if err != nil {
		return false, err
	}
	reply, err := invoke[wrapperspb.BoolValue](ctx, c.cc, "Has", wrapperspb.String(key))
	if err != nil {
		return false, fromStatus(err)
	}
	return reply.GetValue(), nil
}

func (c *Client) Put(data []byte) (tableid.Ref, error) {
	ctx, cancel := c.withTimeout()
	defer cancel()
	return c.PutContext(ctx, data)
}

func (c *Client) Get(ref tableid.Ref) ([]byte, error) {
	ctx, cancel := c.withTimeout()
	defer cancel()
	return c.GetContext(ctx, ref)
}

// Has treats transport failures as absence.
func (c *Client) Has(ref tableid.Ref) bool {
	ctx, cancel := c.withTimeout()
	defer cancel()
	ok, err := c.HasContext(ctx, ref)
	return err == nil && ok
}
