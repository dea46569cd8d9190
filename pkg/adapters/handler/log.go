package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/wadjakorntonsri/rendium/pkg/logger"
)

// AccessLog writes one line per request. Server errors log at error level,
// client errors at warn.
func AccessLog(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				fields := []zap.Field{
					logger.String("method", r.Method),
					logger.String("path", r.URL.Path),
					logger.Int("status", status),
					logger.Int("bytes", ww.BytesWritten()),
					logger.Duration("duration", time.Since(start)),
					logger.String("remote_ip", r.RemoteAddr),
					logger.String("request_id", middleware.GetReqID(r.Context())),
				}

				switch {
				case status >= 500:
					log.Error("request", fields...)
				case status >= 400:
					log.Warn("request", fields...)
				default:
					log.Info("request", fields...)
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
