// Copyright (c) 2026 CoPla. All rights reserved.

package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/copla/copla/internal/platform/constants"
	"github.com/copla/copla/internal/platform/ctxutil"
	"github.com/copla/copla/pkg/uuid"
)

// healthPaths are polled by the orchestrator and logged at debug level only.
var healthPaths = map[string]bool{"/health": true, "/ready": true}

// RequestID reuses the caller's X-Request-ID or mints a UUIDv7, then echoes it
// back in the response.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			id := request.Header.Get(constants.HeaderXRequestID)
			if id == "" {
				id = uuid.New()
			}

			writer.Header().Set(constants.HeaderXRequestID, id)
			next.ServeHTTP(writer, request.WithContext(ctxutil.WithRequestID(request.Context(), id)))
		})
	}
}

// responseRecorder captures the status and size written by downstream handlers.
type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (recorder *responseRecorder) WriteHeader(status int) {
	if recorder.status == 0 {
		recorder.status = status
	}
	recorder.ResponseWriter.WriteHeader(status)
}

func (recorder *responseRecorder) Write(body []byte) (int, error) {
	if recorder.status == 0 {
		recorder.status = http.StatusOK
	}
	written, err := recorder.ResponseWriter.Write(body)
	recorder.bytes += written
	return written, err
}

func (recorder *responseRecorder) Unwrap() http.ResponseWriter {
	return recorder.ResponseWriter
}

func levelFor(path string, status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	case healthPaths[path]:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// StructuredLogger attaches a request-scoped logger to the context and logs
// one "http_request_finished" line per request. Must run after [RequestID].
func StructuredLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			started := time.Now()

			requestLogger := logger.With(
				slog.String("request_id", ctxutil.GetRequestID(request.Context())),
				slog.String("method", request.Method),
				slog.String("path", request.URL.Path),
				slog.String("ip", RealIP(request)),
			)
			ctx := ctxutil.WithLogger(request.Context(), requestLogger)

			recorder := &responseRecorder{ResponseWriter: writer}
			next.ServeHTTP(recorder, request.WithContext(ctx))

			if recorder.status == 0 {
				recorder.status = http.StatusOK
			}

			attrs := []slog.Attr{
				slog.Int("status", recorder.status),
				slog.Int("bytes", recorder.bytes),
				slog.Int64("latency_ms", time.Since(started).Milliseconds()),
				slog.String("user_agent", request.UserAgent()),
			}

			requestLogger.LogAttrs(ctx, levelFor(request.URL.Path, recorder.status), "http_request_finished", attrs...)
		})
	}
}
