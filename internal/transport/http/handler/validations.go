package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/contact-verifier/internal/application/engage"
	"github.com/contact-verifier/internal/application/validation"
	"github.com/contact-verifier/internal/domain"
	"github.com/go-chi/chi/v5"
)

// maxCallbackBytes bounds a verifier callback body; a full batch is well under it.
const maxCallbackBytes = 4 << 20

type triggerRequest struct {
	Hostname string `json:"hostname"`
}

type singleRequest struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Hostname string `json:"hostname"`
}

// ValidationHandler triggers validation runs and receives verifier results.
type ValidationHandler struct {
	svc             validation.Service
	defaultHostname string
}

func NewValidationHandler(svc validation.Service, defaultHostname string) *ValidationHandler {
	return &ValidationHandler{svc: svc, defaultHostname: defaultHostname}
}

func (h *ValidationHandler) hostname(requested string) string {
	if requested != "" {
		return requested
	}
	return h.defaultHostname
}

// decodeOptional decodes a JSON body, treating an empty body as the zero value.
func decodeOptional(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// Trigger runs bulk validation for {channel}, or for every channel when it is "all".
func (h *ValidationHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	var req triggerRequest
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	hostname := h.hostname(req.Hostname)

	param := chi.URLParam(r, "channel")
	if param == "all" {
		reports, err := h.svc.ValidateAll(r.Context(), hostname)
		h.writeRun(w, reports, err)
		return
	}
	ch, err := domain.ParseChannel(param)
	if err != nil {
		httpError(w, err)
		return
	}
	report, err := h.svc.ValidateBulk(r.Context(), ch, hostname)
	var reports []*domain.RunReport
	if report != nil {
		reports = append(reports, report)
	}
	h.writeRun(w, reports, err)
}

func (h *ValidationHandler) writeRun(w http.ResponseWriter, reports []*domain.RunReport, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, RunEnvelope{Reports: reports})
		return
	}
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	writeJSON(w, status, RunEnvelope{Reports: compact(reports), Error: msg})
}

func compact(reports []*domain.RunReport) []*domain.RunReport {
	out := reports[:0:0]
	for _, r := range reports {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

// Single sends one email or phone to the verifier.
func (h *ValidationHandler) Single(w http.ResponseWriter, r *http.Request) {
	var req singleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ch, ident := domain.ChannelEmail, req.Email
	if ident == "" {
		ch, ident = domain.ChannelPhone, req.Phone
	}
	if err := h.svc.ValidateSingle(r.Context(), ch, ident, h.hostname(req.Hostname)); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, MessageEnvelope{Message: "verification requested"})
}

// Results accepts the verifier's result list for {channel} and reconciles it.
func (h *ValidationHandler) Results(w http.ResponseWriter, r *http.Request) {
	ch, err := domain.ParseChannel(chi.URLParam(r, "channel"))
	if err != nil {
		httpError(w, err)
		return
	}
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCallbackBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	results, err := engage.DecodeResults(ch, raw)
	if err != nil {
		httpError(w, err)
		return
	}
	report, err := h.svc.Reconcile(r.Context(), ch, results)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ReconcileEnvelope{Report: report, Error: "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, ReconcileEnvelope{Report: report})
}
