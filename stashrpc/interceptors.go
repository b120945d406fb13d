package stashrpc

import (
	"context"

	"github.com/apex/log"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// errRateLimited is allocated once to avoid per-request allocations on the hot path.
var errRateLimited = status.Error(codes.ResourceExhausted, "rate limit exceeded")

// recoveryUnary turns a panic inside a handler into codes.Internal.
func recoveryUnary(logger log.Interface) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.WithField("method", info.FullMethod).
					WithField("panic", r).
					Error("recovered from handler panic")
				resp = nil
				err = status.Error(codes.Internal, "internal server error")
			}
		}()
		return handler(ctx, req)
	}
}

// rateLimitUnary rejects requests once the token bucket is empty.
func rateLimitUnary(lim *rate.Limiter) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		_ *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if !lim.Allow() {
			return nil, errRateLimited
		}
		return handler(ctx, req)
	}
}
