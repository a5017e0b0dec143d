package httpadapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"gestio/internal/domain"
	"gestio/internal/ports"
)

type createExportRequest struct {
	Kind     string    `json:"kind"`
	TargetID uuid.UUID `json:"targetId"`
}

type exportDTO struct {
	JobID  string `json:"jobId"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

func (s *Server) createExport(w http.ResponseWriter, r *http.Request) {
	var req createExportRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	kind := ports.ExportKind(req.Kind)
	if kind != ports.ExportDocument && kind != ports.ExportSpecification {
		writeError(w, &domain.ValidationError{Msg: "export kind must be document or specification"})
		return
	}
	if req.TargetID == uuid.Nil {
		writeError(w, &domain.ValidationError{Msg: "targetId is required"})
		return
	}
	jobID, err := s.exports.Enqueue(r.Context(), kind, req.TargetID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, exportDTO{JobID: jobID, Status: "queued"})
}

func (s *Server) getExport(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if _, err := uuid.Parse(jobID); err != nil {
		writeError(w, &domain.ValidationError{Msg: "invalid id"})
		return
	}
	status, reason, err := s.exports.Status(r.Context(), jobID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exportDTO{JobID: jobID, Status: status, Reason: reason})
}
