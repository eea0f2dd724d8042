package middleware

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// UnaryLogger is a gRPC server interceptor that installs log on the call
// context, tagged with the caller's x-request-id when present, and logs
// one line per call.
func UnaryLogger(log *zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		l := log.With().Str("grpc_method", info.FullMethod)
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if ids := md.Get("x-request-id"); len(ids) > 0 {
				l = l.Str("request_id", ids[0])
			}
		}
		callLog := l.Logger()
		ctx = callLog.WithContext(ctx)

		start := time.Now()
		resp, err := handler(ctx, req)

		event := callLog.Debug()
		if err != nil {
			event = callLog.Warn().Err(err)
		}
		event.Str("code", status.Code(err).String()).
			Dur("duration", time.Since(start)).
			Msg("grpc call")
		return resp, err
	}
}
