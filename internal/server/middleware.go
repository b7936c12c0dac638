package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ducminhle1904/stock-insight/internal/errors"
	"github.com/ducminhle1904/stock-insight/internal/monitoring"
)

const maxBodyBytes = 1 << 20 // 1 MiB request body cap

// statusRecorder captures the response code for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// wrap applies request logging and API metrics around a handler. route is
// the metrics label, with path parameters kept symbolic so the cardinality
// stays bounded.
func (s *Server) wrap(route string, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)
		elapsed := time.Since(start)

		monitoring.RecordAPIRequest(route, r.Method, rec.status, elapsed)
		s.logger.Info("api request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", elapsed.Milliseconds(),
		)
	})
}

// cors sits outside the mux so preflight requests are answered before method
// matching rejects them.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already out; nothing left to do but note it.
		monitoring.RecordError("encode_response")
	}
}

// respondError maps domain errors onto HTTP status codes and writes a JSON
// error body.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		monitoring.RecordError("api_internal")
	}
	respondJSON(w, status, errorResponse{Error: err.Error()})
}

func statusForError(err error) int {
	switch {
	case stderrors.Is(err, errors.ErrInvalidInput):
		return http.StatusBadRequest
	case stderrors.Is(err, errors.ErrNotFound):
		return http.StatusNotFound
	}

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		switch appErr.Category {
		case errors.ErrorCategoryRateLimit:
			return http.StatusTooManyRequests
		case errors.ErrorCategoryLLM:
			return http.StatusBadGateway
		case errors.ErrorCategoryTimeout:
			return http.StatusGatewayTimeout
		}
	}
	return http.StatusInternalServerError
}

// decodeJSON reads a request body into v, rejecting oversized or malformed
// payloads with a validation error.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer func() {
		_, _ = io.Copy(io.Discard, body)
	}()

	if err := json.NewDecoder(body).Decode(v); err != nil {
		return errors.NewValidationError("server", "decode_request", fmt.Sprintf("invalid JSON body: %v", err))
	}
	return nil
}
