package httpapi

import (
	"net/http"
	"time"

	"cdr.dev/slog/v3"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(logger slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			if p := recover(); p != nil {
				logger.Error(r.Context(), "panic serving request",
					slog.F("path", r.URL.Path), slog.F("panic", p))
				writeError(rec, http.StatusInternalServerError, "internal_error", "unexpected server error")
			}
			logger.Debug(r.Context(), "http request",
				slog.F("method", r.Method),
				slog.F("path", r.URL.Path),
				slog.F("from", r.RemoteAddr),
				slog.F("status", rec.status),
				slog.F("dur", time.Since(start).String()),
			)
		}()
		next.ServeHTTP(rec, r)
	})
}
