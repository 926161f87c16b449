package rpctransport

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the well-known name the master transaction engine's
// RPC server is registered under; workers dial this name.
const ServiceName = "memgraph.tx.Engine"

// Wire messages. Plain Go structs — see codec.go for why.

type Empty struct{}

type BeginRequest struct{}

type BeginReply struct {
	ID       uint64
	Snapshot []uint64
}

type CommitRequest struct{ ID uint64 }

type AbortRequest struct{ ID uint64 }

type SnapshotOfRequest struct{ ID uint64 }

type SnapshotOfReply struct{ Snapshot []uint64 }

type GlobalLastReply struct{ ID uint64 }

type AdvanceRequest struct{ ID uint64 }

type AdvanceReply struct{ CommandID uint64 }

// EngineServer is implemented by the master transaction engine and
// invoked for every RPC a worker sends.
type EngineServer interface {
	Begin(ctx context.Context, req *BeginRequest) (*BeginReply, error)
	Commit(ctx context.Context, req *CommitRequest) (*Empty, error)
	Abort(ctx context.Context, req *AbortRequest) (*Empty, error)
	SnapshotOf(ctx context.Context, req *SnapshotOfRequest) (*SnapshotOfReply, error)
	GlobalLast(ctx context.Context, req *Empty) (*GlobalLastReply, error)
	Advance(ctx context.Context, req *AdvanceRequest) (*AdvanceReply, error)
}

func unaryHandler[Req any, Resp any](srv interface{}, call func(EngineServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srvIface interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		req := new(Req)
		if err := dec(req); err != nil {
			return nil, err
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srvIface.(EngineServer), ctx, req.(*Req))
		}
		if interceptor == nil {
			return handler(ctx, req)
		}
		info := &grpc.UnaryServerInfo{Server: srvIface, FullMethod: ServiceName}
		return interceptor(ctx, req, info, handler)
	}
}

// ServiceDesc is the hand-written equivalent of what protoc-gen-go-grpc
// would emit from a .proto file describing the six transaction engine
// RPCs: Begin, Commit, Abort, SnapshotOf, GlobalLast, Advance.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EngineServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Begin", Handler: unaryHandler(func(s EngineServer, ctx context.Context, r *BeginRequest) (*BeginReply, error) { return s.Begin(ctx, r) })},
		{MethodName: "Commit", Handler: unaryHandler(func(s EngineServer, ctx context.Context, r *CommitRequest) (*Empty, error) { return s.Commit(ctx, r) })},
		{MethodName: "Abort", Handler: unaryHandler(func(s EngineServer, ctx context.Context, r *AbortRequest) (*Empty, error) { return s.Abort(ctx, r) })},
		{MethodName: "SnapshotOf", Handler: unaryHandler(func(s EngineServer, ctx context.Context, r *SnapshotOfRequest) (*SnapshotOfReply, error) { return s.SnapshotOf(ctx, r) })},
		{MethodName: "GlobalLast", Handler: unaryHandler(func(s EngineServer, ctx context.Context, r *Empty) (*GlobalLastReply, error) { return s.GlobalLast(ctx, r) })},
		{MethodName: "Advance", Handler: unaryHandler(func(s EngineServer, ctx context.Context, r *AdvanceRequest) (*AdvanceReply, error) { return s.Advance(ctx, r) })},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "memgraph/txengine.proto",
}

// EngineClient is the worker-side stub for the RPCs above.
type EngineClient struct {
	conn *grpc.ClientConn
}

// NewEngineClient wraps an established connection to the master.
func NewEngineClient(conn *grpc.ClientConn) *EngineClient {
	return &EngineClient{conn: conn}
}

func invoke[Resp any](ctx context.Context, c *EngineClient, method string, req interface{}) (*Resp, error) {
	resp := new(Resp)
	fullMethod := "/" + ServiceName + "/" + method
	if err := c.conn.Invoke(ctx, fullMethod, req, resp, grpc.ForceCodec(gobCodec{})); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *EngineClient) Begin(ctx context.Context) (*BeginReply, error) {
	return invoke[BeginReply](ctx, c, "Begin", &BeginRequest{})
}

func (c *EngineClient) Commit(ctx context.Context, id uint64) error {
	_, err := invoke[Empty](ctx, c, "Commit", &CommitRequest{ID: id})
	return err
}

func (c *EngineClient) Abort(ctx context.Context, id uint64) error {
	_, err := invoke[Empty](ctx, c, "Abort", &AbortRequest{ID: id})
	return err
}

func (c *EngineClient) SnapshotOf(ctx context.Context, id uint64) (*SnapshotOfReply, error) {
	return invoke[SnapshotOfReply](ctx, c, "SnapshotOf", &SnapshotOfRequest{ID: id})
}

func (c *EngineClient) GlobalLast(ctx context.Context) (*GlobalLastReply, error) {
	return invoke[GlobalLastReply](ctx, c, "GlobalLast", &Empty{})
}

func (c *EngineClient) Advance(ctx context.Context, id uint64) (*AdvanceReply, error) {
	return invoke[AdvanceReply](ctx, c, "Advance", &AdvanceRequest{ID: id})
}

// NewServer builds a *grpc.Server with the gob codec forced and the
// engine service registered against impl.
func NewServer(impl EngineServer, opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{grpc.ForceServerCodec(gobCodec{})}, opts...)
	srv := grpc.NewServer(opts...)
	srv.RegisterService(&ServiceDesc, impl)
	return srv
}
