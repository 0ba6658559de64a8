package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/libraria/catalog-service/internal/observability"
)

// requestIDMiddleware ensures every request carries a request ID, honoring one
// supplied by the client.
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		w.Header().Set("X-Request-ID", requestID)
		ctx := observability.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// observeMiddleware logs every request and feeds the HTTP metrics. The route
// label uses the chi pattern, not the raw path, to keep cardinality bounded.
func (s *Server) observeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}

		if s.metrics != nil {
			s.metrics.RecordHTTPRequest(r.Method, route, strconv.Itoa(status), duration.Seconds())
		}

		logger := observability.WithRequestContext(s.logger, observability.RequestIDFromContext(r.Context()), r.Method, r.URL.Path)
		logger.Debug().
			Int("status", status).
			Dur("duration", duration).
			Int("bytes", ww.BytesWritten()).
			Msg("Handled request")
	})
}
