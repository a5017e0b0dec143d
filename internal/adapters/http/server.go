package httpadapter

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"

	"gestio/internal/domain"
	docsvc "gestio/internal/services/documents"
	exportsvc "gestio/internal/services/exports"
	specsvc "gestio/internal/services/specs"
)

// Server exposes the persistence API the front ends talk to.
type Server struct {
	specs     *specsvc.Service
	documents *docsvc.Service
	exports   *exportsvc.Service
	clock     clockwork.Clock
}

func New(specs *specsvc.Service, documents *docsvc.Service, exports *exportsvc.Service, clock clockwork.Clock) *Server {
	return &Server{specs: specs, documents: documents, exports: exports, clock: clock}
}

// Routes returns the chi.Router with all handlers mounted.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.getHealthz)

	r.Route("/specifications", func(r chi.Router) {
		r.Get("/", s.listSpecifications)
		r.Post("/", s.createSpecification)
		r.Route("/{specID}", func(r chi.Router) {
			r.Get("/", s.getSpecification)
			r.Delete("/", s.deleteSpecification)
			r.Get("/features", s.listFeatures)
			r.Post("/features", s.createFeature)
			r.Get("/progress", s.getProgress)
			r.Get("/view", s.getSpecificationView)
		})
	})

	r.Route("/features/{featureID}", func(r chi.Router) {
		r.Patch("/", s.patchFeature)
		r.Delete("/", s.deleteFeature)
		r.Post("/toggle", s.toggleFeature)
	})

	r.Route("/documents", func(r chi.Router) {
		r.Get("/", s.listDocuments)
		r.Post("/", s.createDocument)
		r.Route("/{docID}", func(r chi.Router) {
			r.Get("/", s.getDocument)
			r.Put("/", s.updateDocument)
			r.Post("/status", s.changeStatus)
			r.Post("/payments", s.recordPayment)
			r.Post("/milestones", s.addMilestone)
			r.Patch("/milestones/{milestoneID}", s.patchMilestone)
			r.Get("/view", s.getDocumentView)
		})
	})

	r.Route("/exports", func(r chi.Router) {
		r.Post("/", s.createExport)
		r.Get("/{jobID}", s.getExport)
	})

	return r
}

func (s *Server) getHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("response encode error: %v", err)
	}
}

// writeError maps domain failures onto status codes. Validation and
// transition messages are surfaced verbatim; everything else is a 500
// with the detail kept server-side.
func writeError(w http.ResponseWriter, err error) {
	var (
		ve *domain.ValidationError
		te *domain.TransitionError
	)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: ve.Msg})
	case errors.As(err, &te):
		writeJSON(w, http.StatusConflict, errorBody{Error: te.Error()})
	default:
		log.Printf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &domain.ValidationError{Msg: "invalid request body"}
	}
	return nil
}
