package httpadapter

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"gestio/internal/domain"
)

func (s *Server) listSpecifications(w http.ResponseWriter, r *http.Request) {
	specs, err := s.specs.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]specificationDTO, 0, len(specs))
	for _, sp := range specs {
		out = append(out, toSpecificationDTO(sp))
	}
	writeJSON(w, http.StatusOK, out)
}

type createSpecificationRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (s *Server) createSpecification(w http.ResponseWriter, r *http.Request) {
	var req createSpecificationRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	spec, err := s.specs.Create(r.Context(), req.Title, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSpecificationDTO(spec))
}

func (s *Server) getSpecification(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "specID")
	if err != nil {
		writeError(w, err)
		return
	}
	spec, err := s.specs.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSpecificationDTO(spec))
}

func (s *Server) deleteSpecification(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "specID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.specs.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listFeatures(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "specID")
	if err != nil {
		writeError(w, err)
		return
	}
	features, err := s.specs.Features(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]featureDTO, 0, len(features))
	for _, f := range features {
		out = append(out, toFeatureDTO(f))
	}
	writeJSON(w, http.StatusOK, out)
}

type createFeatureRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Level       int        `json:"level"`
	ParentID    *uuid.UUID `json:"parentId"`
}

func (s *Server) createFeature(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "specID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req createFeatureRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	feature, err := s.specs.AddFeature(r.Context(), id, req.Title, req.Description, req.Level, req.ParentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toFeatureDTO(feature))
}

type patchFeatureRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Level       *int    `json:"level"`
	// parentId must distinguish absent (leave alone) from null (make
	// root). A pointer cannot: encoding/json leaves it nil for both.
	// The raw message keeps the presence information.
	ParentID    json.RawMessage `json:"parentId"`
	IsCompleted *bool           `json:"isCompleted"`
}

func (s *Server) patchFeature(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "featureID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req patchFeatureRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	patch := domain.FeaturePatch{
		Title:       req.Title,
		Description: req.Description,
		Level:       req.Level,
		IsCompleted: req.IsCompleted,
	}
	if len(req.ParentID) > 0 {
		var parent *uuid.UUID
		if err := json.Unmarshal(req.ParentID, &parent); err != nil {
			writeError(w, &domain.ValidationError{Msg: "invalid parentId"})
			return
		}
		nu := uuid.NullUUID{}
		if parent != nil {
			nu = uuid.NullUUID{UUID: *parent, Valid: true}
		}
		patch.ParentID = &nu
	}
	feature, err := s.specs.UpdateFeature(r.Context(), id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toFeatureDTO(feature))
}

func (s *Server) toggleFeature(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "featureID")
	if err != nil {
		writeError(w, err)
		return
	}
	feature, err := s.specs.ToggleFeature(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toFeatureDTO(feature))
}

func (s *Server) deleteFeature(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "featureID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.specs.DeleteFeature(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getProgress(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "specID")
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := s.specs.Progress(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progressDTO(p))
}

func (s *Server) getSpecificationView(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "specID")
	if err != nil {
		writeError(w, err)
		return
	}
	view, err := s.specs.View(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, &domain.ValidationError{Msg: "invalid id"}
	}
	return id, nil
}
