package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"unicode/utf8"

	"github.com/mesh-intelligence/survey/pkg/types"
)

// Client-facing messages. Store errors carry paths and OS detail, so they
// are logged but never written to the response.
const (
	msgSubmitted     = "Submit successful!"
	msgInvalidBody   = "request body must be valid JSON"
	msgBodyTooLarge  = "request body too large"
	msgSaveFailed    = "failed to save response"
	msgInternalError = "internal server error"
)

func (s *Server) handleHello(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "Hello %s!", s.cfg.Name)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, "ok")
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := s.logger.With("request_id", RequestID(ctx))

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.Warn("rejected response", "reason", "body too large", "limit", tooLarge.Limit)
			writeText(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
			return
		}
		logger.Warn("rejected response", "reason", "read body", "err", err)
		writeText(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	record := bytes.TrimSpace(body)
	if len(record) == 0 || !json.Valid(record) {
		logger.Warn("rejected response", "reason", "invalid JSON", "bytes", len(body))
		writeText(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if !utf8.Valid(record) {
		logger.Warn("rejected response", "reason", "invalid UTF-8", "bytes", len(body))
		writeText(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	logger.Info("received survey response", "bytes", len(record))
	logger.Debug("survey response body", "body", string(record))

	if err := s.store.Append(ctx, json.RawMessage(record)); err != nil {
		s.writeStoreError(w, logger, err)
		return
	}
	writeText(w, http.StatusOK, msgSubmitted)
}

// writeStoreError maps a store error kind to a status and logs the detail.
func (s *Server) writeStoreError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, types.ErrInvalidInput):
		logger.Warn("rejected response", "reason", "store refused record", "err", err)
		writeText(w, http.StatusBadRequest, msgInvalidBody)
	case errors.Is(err, types.ErrCorruptStore):
		logger.Error("response store is corrupt; operator intervention required", "err", err)
		writeText(w, http.StatusInternalServerError, msgSaveFailed)
	case errors.Is(err, types.ErrStorageUnavailable):
		logger.Error("response storage unavailable", "err", err)
		writeText(w, http.StatusInternalServerError, msgSaveFailed)
	default:
		logger.Error("saving response failed", "err", err)
		writeText(w, http.StatusInternalServerError, msgInternalError)
	}
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	io.WriteString(w, msg)
}
