package routes

import (
	"context"
	"net/http"
	"time"

	"presentcoachdev/logger"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

type ctxKey int

const requestIDKey ctxKey = iota

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// requestIDMiddleware keeps a caller-supplied X-Request-ID or mints one.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func requestLoggerMiddleware(logger *logger.LogMiddleware) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			logger.Logger(ctx).Info("Request Received",
				zap.String("url", r.URL.Path),
				zap.String("method", r.Method),
				zap.String("request_id", requestIDFrom(ctx)),
			)
			next.ServeHTTP(ww, r)
			logger.Logger(ctx).Info("Request Completed",
				zap.String("path", r.URL.Path),
				zap.String("method", r.Method),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", requestIDFrom(ctx)),
			)
		})
	}
}

// recoverMiddleware turns a handler panic into the generic JSON 500 envelope.
func recoverMiddleware(logger *logger.LogMiddleware) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Logger(r.Context()).Error("[Router] Recovered from handler panic",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path),
					zap.String("request_id", requestIDFrom(r.Context())),
				)
				respondJSON(w, http.StatusInternalServerError, errorEnvelope{Success: false, Error: "Internal server error"})
			}()
			next.ServeHTTP(w, r)
		})
	}
}
