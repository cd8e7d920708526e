package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sydlexius/coverlens/internal/api/middleware"
	"github.com/sydlexius/coverlens/internal/shs"
	"github.com/sydlexius/coverlens/internal/version"
)

// maxBodyInResponse bounds the upstream body echoed back in a notice.
const maxBodyInResponse = 2048

func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Version,
		"commit":  version.Commit,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func viewOf[T any](o shs.Outcome[T]) shs.OutcomeInfo {
	return o.Info(maxBodyInResponse)
}

type noticeResponse struct {
	Notice    string          `json:"notice"`
	Outcome   shs.OutcomeInfo `json:"outcome"`
	RequestID string          `json:"request_id,omitempty"`
}

// writeNotice reports a non-success outcome. An empty result is a normal
// answer; an upstream failure is a bad gateway.
func writeNotice[T any](w http.ResponseWriter, req *http.Request, o shs.Outcome[T], notice string) {
	status := http.StatusOK
	if o.Tag == shs.TagHTTPError || o.Tag == shs.TagDecodeError {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, noticeResponse{
		Notice:    notice,
		Outcome:   viewOf(o),
		RequestID: middleware.RequestIDFromContext(req.Context()),
	})
}

// writeCallError maps an error returned alongside an outcome. Contract
// violations are the caller's fault.
func (r *Router) writeCallError(w http.ResponseWriter, req *http.Request, err error) {
	var invalidQuery *shs.ErrInvalidQuery
	var invalidRef *shs.ErrInvalidReference
	if errors.As(err, &invalidQuery) || errors.As(err, &invalidRef) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	r.logger.Error("request failed",
		"request_id", middleware.RequestIDFromContext(req.Context()),
		"error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encode error", http.StatusInternalServerError)
	}
}
