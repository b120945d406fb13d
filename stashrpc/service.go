// Package stashrpc exposes an instrumented cache as the rawr.Stash gRPC
// service. Registration uses a hand-written [grpc.ServiceDesc], so no
// protobuf code generation is involved; messages travel as JSON through a
// codec that still hands real protobuf messages to the proto codec.
//
// Clients in other processes must send JSON bodies under the "proto" content
// subtype, which is what importing this package arranges for Go clients.
package stashrpc

import (
	"context"
	"errors"
	"strings"

	gorawrstash "github.com/Keksclan/goRawrStash"
	"github.com/Keksclan/goRawrStash/store"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "rawr.Stash"

// Handler is the interface a rawr.Stash implementation must satisfy.
type Handler interface {
	Store(ctx context.Context, req *StoreRequest) (*StoreResponse, error)
	Get(ctx context.Context, req *GetRequest) (*GetResponse, error)
	CallCount(ctx context.Context, req *CallCountRequest) (*CallCountResponse, error)
	Replay(ctx context.Context, req *ReplayRequest) (*ReplayResponse, error)
}

// NewHandler serves rawr.Stash from c.
func NewHandler(c *gorawrstash.Cache) Handler {
	return cacheHandler{c: c}
}

type cacheHandler struct {
	c *gorawrstash.Cache
}

func (h cacheHandler) Store(ctx context.Context, req *StoreRequest) (*StoreResponse, error) {
	v, err := req.value()
	if err != nil {
		return nil, err
	}
	key, err := h.c.Store(ctx, v)
	if err != nil {
		return nil, toStatus(err)
	}
	return &StoreResponse{Key: key}, nil
}

func (h cacheHandler) Get(ctx context.Context, req *GetRequest) (*GetResponse, error) {
	raw, err := h.c.Get(ctx, req.Key, nil)
	if err != nil {
		return nil, toStatus(err)
	}
	if raw == nil {
		return &GetResponse{}, nil
	}
	b := raw.([]byte)
	resp := &GetResponse{Found: true, Value: b}

	switch req.Decode {
	case DecodeNone:
	case DecodeString:
		s, _ := gorawrstash.DecodeString(b)
		resp.String = &s
	case DecodeInt:
		n, err := gorawrstash.DecodeInt(b)
		if err != nil {
			return nil, toStatus(err)
		}
		resp.Int = &n
	case DecodeFloat:
		f, err := gorawrstash.DecodeFloat(b)
		if err != nil {
			return nil, toStatus(err)
		}
		resp.Float = &f
	default:
		return nil, status.Errorf(codes.InvalidArgument, "unknown decode %q", req.Decode)
	}
	return resp, nil
}

func (h cacheHandler) CallCount(ctx context.Context, req *CallCountRequest) (*CallCountResponse, error) {
	n, err := h.c.CallCount(ctx, h.method(req.Method))
	if err != nil {
		return nil, toStatus(err)
	}
	return &CallCountResponse{Count: n}, nil
}

func (h cacheHandler) Replay(ctx context.Context, req *ReplayRequest) (*ReplayResponse, error) {
	name := h.method(req.Method)
	n, err := h.c.CallCount(ctx, name)
	if err != nil {
		return nil, toStatus(err)
	}
	calls, err := h.c.History(ctx, name)
	if err != nil {
		return nil, toStatus(err)
	}
	var trace strings.Builder
	if err := h.c.Replay(ctx, name, &trace); err != nil {
		return nil, toStatus(err)
	}
	return &ReplayResponse{Count: n, Calls: calls, Trace: trace.String()}, nil
}

// method defaults an empty method name to the cache's Store method.
func (h cacheHandler) method(name string) string {
	if name == "" {
		return h.c.MethodName()
	}
	return name
}

// toStatus maps cache and store errors onto gRPC codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, gorawrstash.ErrUnsupportedType):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, gorawrstash.ErrDecode),
		errors.Is(err, store.ErrWrongType),
		errors.Is(err, store.ErrNotInteger):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case store.IsTransient(err):
		return status.Error(codes.Unavailable, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

// ServiceDesc is the grpc.ServiceDesc for the rawr.Stash service.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*Handler)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Store", Handler: unary("Store", Handler.Store)},
		{MethodName: "Get", Handler: unary("Get", Handler.Get)},
		{MethodName: "CallCount", Handler: unary("CallCount", Handler.CallCount)},
		{MethodName: "Replay", Handler: unary("Replay", Handler.Replay)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rawr/stash.proto",
}

// unary builds the grpc.MethodHandler for one Handler method.
func unary[Req, Resp any](method string, call func(Handler, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	fullMethod := "/" + ServiceName + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		req := new(Req)
		if err := dec(req); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(Handler), ctx, req)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, r any) (any, error) {
			return call(srv.(Handler), ctx, r.(*Req))
		}
		return interceptor(ctx, req, info, handler)
	}
}

// Register registers a rawr.Stash implementation on the given gRPC server.
func Register(s *grpc.Server, h Handler) {
	s.RegisterService(&ServiceDesc, h)
}
