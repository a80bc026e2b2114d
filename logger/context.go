package logger

import (
	"context"

	"go.uber.org/zap"
)

type scopeKey struct{}

// scope is what a request carries: its id and a logger already tagged with it.
type scope struct {
	requestID string
	log       *zap.Logger
}

// WithRequestID binds requestID and a logger tagged with it to ctx.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope{
		requestID: requestID,
		log:       L().With(zap.String("request_id", requestID)),
	})
}

func RequestIDFrom(ctx context.Context) string {
	s, _ := ctx.Value(scopeKey{}).(scope)
	return s.requestID
}

// FromCtx returns the request logger, or the process logger outside a request.
func FromCtx(ctx context.Context) *zap.Logger {
	if s, ok := ctx.Value(scopeKey{}).(scope); ok {
		return s.log
	}
	return L()
}
