package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/YuminosukeSato/pm25scope/pkg/errors"
	"github.com/YuminosukeSato/pm25scope/pkg/log"
)

// errorBody is the JSON body of every error response.
type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// statusFor maps an error kind to an HTTP status. Data that cannot be
// analysed is 422, a bad request parameter 400, anything else 500.
func statusFor(err error) int {
	switch errors.Kind(err) {
	case "missing_column", "computation", "empty_input", "singular_matrix":
		return http.StatusUnprocessableEntity
	case "invalid_input":
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	fields := []any{
		log.RequestIDKey, middleware.GetReqID(r.Context()),
		log.PathKey, r.URL.Path,
		log.StatusKey, status,
		log.ErrAttrKey, err,
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", fields...)
	} else {
		s.logger.Warn("request rejected", fields...)
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Kind: errors.Kind(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.GetLoggerWithName("server").Error("encode response", log.ErrAttrKey, err)
	}
}

// requestLogger logs one line per request with its status and duration.
func requestLogger(logger log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("request",
					log.RequestIDKey, middleware.GetReqID(r.Context()),
					log.MethodKey, r.Method,
					log.PathKey, r.URL.Path,
					log.StatusKey, ww.Status(),
					log.DurationMsKey, time.Since(start).Milliseconds(),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
