package middleware

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const RequestIDKey contextKey = "request_id"

// Command is one CLI action.
type Command func(ctx context.Context, args []string) error

// RequestID gives every command run an id. The id travels in ctx, is attached
// to the ctx logger, and is sent upstream as X-Request-ID.
// https://github.com/gin-contrib/requestid
func RequestID(logger zerolog.Logger) func(name string, next Command) Command {
	return func(name string, next Command) Command {
		return func(ctx context.Context, args []string) error {
			start := time.Now()

			requestID := GetRequestID(ctx)
			if requestID == "" {
				requestID = uuid.New().String()
			}

			ctx = WithRequestID(ctx, requestID)

			loggerWithID := logger.With().Str("request_id", requestID).Logger()
			ctx = loggerWithID.WithContext(ctx)

			loggerWithID.Debug().
				Str("command", name).
				Strs("args", args).
				Msg("command started")

			err := next(ctx, args)

			duration := time.Since(start)
			event := loggerWithID.Debug()
			if err != nil {
				event = loggerWithID.Warn().Err(err)
			}
			event.
				Str("command", name).
				Int64("duration_ms", duration.Milliseconds()).
				Dur("duration", duration).
				Msg("command completed")
			return err
		}
	}
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
