// Package transportgrpc adapts gRPC unary calls onto the engine: an
// interceptor that reruns the call through Run, and an errs.Rule that
// classifies grpc/codes.Code the way the errs HTTP rule classifies status
// codes, without errs importing grpc itself.
package transportgrpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/orrery/resilient/engine"
	"github.com/orrery/resilient/errs"
)

// UnaryClientInterceptor reruns a failed unary call through eng's retry,
// breaker and budget logic.
func UnaryClientInterceptor(eng *engine.Engine, opts ...engine.Option) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, callOpts ...grpc.CallOption) error {
		task := func(ctx context.Context) (struct{}, error) {
			return struct{}{}, invoker(ctx, method, req, reply, cc, callOpts...)
		}
		_, err := engine.RunOrThrow(ctx, eng, task, opts...)
		return err
	}
}

// Rule classifies a grpc status error by its codes.Code, mirroring the
// retry/no-retry split the errs HTTP rule applies to status codes.
func Rule() errs.Rule {
	return errs.When(func(v any) bool {
		err, ok := v.(error)
		if !ok {
			return false
		}
		_, ok = status.FromError(err)
		return ok && status.Code(err) != codes.OK
	}).ToCode("GRPC").With(func(v any) *errs.TypedError {
		err := v.(error)
		st, _ := status.FromError(err)
		code := st.Code()

		retryable := false
		switch code {
		case codes.Unavailable, codes.ResourceExhausted, codes.DeadlineExceeded:
			retryable = true
		}

		return &errs.TypedError{
			Message:   st.Message(),
			Meta:      map[string]any{"grpcCode": code.String()},
			Retryable: retryable,
		}
	})
}
