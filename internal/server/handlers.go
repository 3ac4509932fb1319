package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/agbru/fibdrv/internal/bignum"
	"github.com/agbru/fibdrv/internal/device"
	"github.com/agbru/fibdrv/internal/logging"
	"github.com/agbru/fibdrv/internal/service"
)

// busyRetryAfter is the Retry-After value, in seconds, sent with 503.
const busyRetryAfter = "1"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.writeJSONResponse(w, http.StatusOK, map[string]any{
		"status":     "healthy",
		"max_offset": s.maxOffset,
		"timestamp":  time.Now().Unix(),
	})
}

// handleRead serves GET /read?n=<offset>. Cached offsets are answered
// without opening a session.
func (s *Server) handleRead(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	n, err := s.parseOffset(r)
	if err != nil {
		s.writeParseError(w, err)
		return
	}

	if s.cache != nil {
		if resp, ok := s.cache.Get(n); ok {
			cacheLookups.WithLabelValues("hit").Inc()
			resp.Cached = true
			resp.Session = ""
			s.writeJSONResponse(w, http.StatusOK, resp)
			return
		}
		cacheLookups.WithLabelValues("miss").Inc()
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeouts.RequestTimeout)
	defer cancel()

	reading, err := s.service.Read(ctx, n)
	if err != nil {
		s.writeServiceError(w, n, err)
		return
	}
	resp := ReadResponse{
		N:        n,
		Result:   reading.Sequence,
		Digits:   len(reading.Sequence),
		Duration: reading.Duration.String(),
		Session:  reading.Session,
	}
	if s.cache != nil {
		s.cache.Add(n, resp)
	}
	s.writeJSONResponse(w, http.StatusOK, resp)
}

// handleMeasure serves GET /measure?n=<offset>&mode=<mode>.
func (s *Server) handleMeasure(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	n, err := s.parseOffset(r)
	if err != nil {
		s.writeParseError(w, err)
		return
	}
	mode := 0
	if m := r.URL.Query().Get("mode"); m != "" {
		if mode, err = strconv.Atoi(m); err != nil || mode < 0 {
			s.writeErrorResponse(w, http.StatusBadRequest, "Invalid 'mode' parameter: must be a non-negative integer")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeouts.RequestTimeout)
	defer cancel()

	elapsed, err := s.service.Measure(ctx, n, mode)
	if err != nil {
		s.writeServiceError(w, n, err)
		return
	}
	s.writeJSONResponse(w, http.StatusOK, MeasureResponse{
		N:           n,
		Mode:        mode,
		Nanoseconds: elapsed.Nanoseconds(),
		Duration:    elapsed.String(),
	})
}

// parseOffset reads the n query parameter and checks it against the device
// bounds.
func (s *Server) parseOffset(r *http.Request) (int64, error) {
	nStr := r.URL.Query().Get("n")
	if nStr == "" {
		return 0, ParseError{Message: "Missing 'n' parameter", StatusCode: http.StatusBadRequest}
	}
	n, err := strconv.ParseInt(nStr, 10, 64)
	if err != nil || n < 0 {
		return 0, ParseError{Message: "Invalid 'n' parameter: must be a non-negative integer", StatusCode: http.StatusBadRequest}
	}
	if n > s.maxOffset {
		return 0, ParseError{
			Message:    fmt.Sprintf("Value of 'n' exceeds the device maximum (%d).", s.maxOffset),
			StatusCode: http.StatusBadRequest,
		}
	}
	return n, nil
}

func (s *Server) writeParseError(w http.ResponseWriter, err error) {
	var parseErr ParseError
	if errors.As(err, &parseErr) {
		s.writeErrorResponse(w, parseErr.StatusCode, parseErr.Message)
		return
	}
	s.writeErrorResponse(w, http.StatusBadRequest, err.Error())
}

// writeServiceError maps device and engine failures to HTTP statuses.
func (s *Server) writeServiceError(w http.ResponseWriter, n int64, err error) {
	switch {
	case errors.Is(err, device.ErrBusy):
		w.Header().Set("Retry-After", busyRetryAfter)
		s.writeErrorResponse(w, http.StatusServiceUnavailable, "The device is held by another session.")
	case errors.Is(err, service.ErrOffsetOutOfRange), errors.Is(err, device.ErrUnknownMode):
		s.writeErrorResponse(w, http.StatusBadRequest, err.Error())
	case bignum.IsOverflow(err):
		s.writeErrorResponse(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.logger.Error("device request failed", err, logging.Int64("offset", n))
		s.writeErrorResponse(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encoding JSON response", err)
	}
}

func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	s.writeJSONResponse(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}
