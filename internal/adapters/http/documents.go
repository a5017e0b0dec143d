package httpadapter

import (
	"net/http"

	oapitypes "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"

	"gestio/internal/domain"
	"gestio/internal/ports"
	docsvc "gestio/internal/services/documents"
)

type newItemRequest struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
}

func toNewItems(reqs []newItemRequest) []docsvc.NewItem {
	items := make([]docsvc.NewItem, 0, len(reqs))
	for _, it := range reqs {
		items = append(items, docsvc.NewItem{
			Description: it.Description,
			Quantity:    domain.AmountFromFloat(it.Quantity),
			UnitPrice:   domain.AmountFromFloat(it.UnitPrice),
		})
	}
	return items
}

type newMilestoneRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	DueDate     oapitypes.Date `json:"dueDate"`
	Amount      float64        `json:"amount"`
}

type createDocumentRequest struct {
	Type       string                `json:"type"`
	Title      string                `json:"title"`
	Client     clientDTO             `json:"client"`
	Items      []newItemRequest      `json:"items"`
	Discount   float64               `json:"discount"`
	Tax        float64               `json:"tax"`
	IssueDate  *oapitypes.Date       `json:"issueDate"`
	DueDate    *oapitypes.Date       `json:"dueDate"`
	ValidUntil *oapitypes.Date       `json:"validUntil"`
	Milestones []newMilestoneRequest `json:"milestones"`
}

func (s *Server) createDocument(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	in := docsvc.NewDocument{
		Type:  domain.DocType(req.Type),
		Title: req.Title,
		Client: domain.Client{
			Name: req.Client.Name, Email: req.Client.Email,
			Phone: req.Client.Phone, Address: req.Client.Address,
		},
		Items:    toNewItems(req.Items),
		Discount: domain.AmountFromFloat(req.Discount),
		Tax:      domain.AmountFromFloat(req.Tax),
	}
	if req.IssueDate != nil {
		in.IssueDate = &req.IssueDate.Time
	}
	if req.DueDate != nil {
		in.DueDate = &req.DueDate.Time
	}
	if req.ValidUntil != nil {
		in.ValidUntil = &req.ValidUntil.Time
	}
	for _, m := range req.Milestones {
		in.Milestones = append(in.Milestones, docsvc.NewMilestone{
			Title:       m.Title,
			Description: m.Description,
			DueDate:     m.DueDate.Time,
			Amount:      domain.AmountFromFloat(m.Amount),
		})
	}
	doc, err := s.documents.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.toDocumentDTO(doc))
}

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	filter := ports.DocumentFilter{
		Type:   domain.DocType(r.URL.Query().Get("type")),
		Status: domain.Status(r.URL.Query().Get("status")),
	}
	docs, err := s.documents.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]documentDTO, 0, len(docs))
	for _, d := range docs {
		out = append(out, s.toDocumentDTO(d))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "docID")
	if err != nil {
		writeError(w, err)
		return
	}
	doc, err := s.documents.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.toDocumentDTO(doc))
}

type updateDocumentRequest struct {
	Title      *string          `json:"title"`
	Client     *clientDTO       `json:"client"`
	Items      []newItemRequest `json:"items"`
	Discount   *float64         `json:"discount"`
	Tax        *float64         `json:"tax"`
	DueDate    *oapitypes.Date  `json:"dueDate"`
	ValidUntil *oapitypes.Date  `json:"validUntil"`
}

func (s *Server) updateDocument(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "docID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req updateDocumentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	in := docsvc.Update{Title: req.Title}
	if req.Client != nil {
		in.Client = &domain.Client{
			Name: req.Client.Name, Email: req.Client.Email,
			Phone: req.Client.Phone, Address: req.Client.Address,
		}
	}
	if req.Items != nil {
		in.Items = toNewItems(req.Items)
	}
	if req.Discount != nil {
		d := domain.AmountFromFloat(*req.Discount)
		in.Discount = &d
	}
	if req.Tax != nil {
		t := domain.AmountFromFloat(*req.Tax)
		in.Tax = &t
	}
	if req.DueDate != nil {
		in.DueDate = &req.DueDate.Time
	}
	if req.ValidUntil != nil {
		in.ValidUntil = &req.ValidUntil.Time
	}
	doc, err := s.documents.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.toDocumentDTO(doc))
}

type changeStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) changeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "docID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req changeStatusRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	doc, err := s.documents.ChangeStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.toDocumentDTO(doc))
}

type recordPaymentRequest struct {
	Amount float64         `json:"amount"`
	Date   *oapitypes.Date `json:"date"`
}

func (s *Server) recordPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "docID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req recordPaymentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	// The amount is validated by the service, not coerced: a negative
	// payment should be rejected loudly, not silently zeroed.
	amount := decimal.NewFromFloat(req.Amount)
	paidOn := s.clock.Now()
	if req.Date != nil {
		paidOn = req.Date.Time
	}
	doc, err := s.documents.RecordPayment(r.Context(), id, amount, paidOn)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.toDocumentDTO(doc))
}

func (s *Server) addMilestone(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "docID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req newMilestoneRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	m, err := s.documents.AddMilestone(r.Context(), id, docsvc.NewMilestone{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate.Time,
		Amount:      domain.AmountFromFloat(req.Amount),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMilestoneDTO(m))
}

type patchMilestoneRequest struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	DueDate     *oapitypes.Date `json:"dueDate"`
	Amount      *float64        `json:"amount"`
	Status      *string         `json:"status"`
}

func (s *Server) patchMilestone(w http.ResponseWriter, r *http.Request) {
	docID, err := pathID(r, "docID")
	if err != nil {
		writeError(w, err)
		return
	}
	milestoneID, err := pathID(r, "milestoneID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req patchMilestoneRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	patch := docsvc.MilestonePatch{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.DueDate != nil {
		patch.DueDate = &req.DueDate.Time
	}
	if req.Amount != nil {
		a := domain.AmountFromFloat(*req.Amount)
		patch.Amount = &a
	}
	if req.Status != nil {
		st := domain.MilestoneStatus(*req.Status)
		patch.Status = &st
	}
	m, err := s.documents.UpdateMilestone(r.Context(), docID, milestoneID, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMilestoneDTO(m))
}

func (s *Server) getDocumentView(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "docID")
	if err != nil {
		writeError(w, err)
		return
	}
	view, err := s.documents.View(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
