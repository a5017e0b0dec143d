package documents

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"

	"gestio/internal/domain"
	"gestio/internal/ports"
)

// Service owns the financial document lifecycle: creation with atomic
// numbering, total recomputation, status transitions, payment recording
// and milestone reconciliation.
type Service struct {
	docs  ports.DocumentRepository
	clock clockwork.Clock
}

func New(docs ports.DocumentRepository, clock clockwork.Clock) *Service {
	return &Service{docs: docs, clock: clock}
}

// Now exposes the injected clock so callers resolve derived statuses
// against the same time source.
func (s *Service) Now() time.Time {
	return s.clock.Now()
}

// NewItem is a line item payload. Totals are never taken from input.
type NewItem struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// NewDocument is the creation payload shared by the three types.
type NewDocument struct {
	Type       domain.DocType
	Title      string
	Client     domain.Client
	Items      []NewItem
	Discount   decimal.Decimal
	Tax        decimal.Decimal
	IssueDate  *time.Time
	DueDate    *time.Time
	ValidUntil *time.Time
	Milestones []NewMilestone
}

// NewMilestone is a milestone payload on contract creation.
type NewMilestone struct {
	Title       string
	Description string
	DueDate     time.Time
	Amount      decimal.Decimal
}

// Create validates the payload, computes totals and persists the
// document as a draft with a freshly allocated number.
func (s *Service) Create(ctx context.Context, in NewDocument) (domain.Document, error) {
	if !in.Type.Valid() {
		return domain.Document{}, &domain.ValidationError{Msg: "unknown document type"}
	}
	if strings.TrimSpace(in.Title) == "" {
		return domain.Document{}, &domain.ValidationError{Msg: "document title is required"}
	}
	if in.Type != domain.TypeContract && len(in.Milestones) > 0 {
		return domain.Document{}, &domain.ValidationError{Msg: "milestones only apply to contracts"}
	}

	now := s.clock.Now()
	issue := now
	if in.IssueDate != nil {
		issue = *in.IssueDate
	}
	doc := domain.Document{
		Type:       in.Type,
		Title:      in.Title,
		Client:     in.Client,
		Status:     domain.StatusDraft,
		Discount:   in.Discount,
		Tax:        in.Tax,
		PaidAmount: decimal.Zero,
		IssueDate:  issue,
		DueDate:    in.DueDate,
		ValidUntil: in.ValidUntil,
	}
	for _, it := range in.Items {
		doc.Items = append(doc.Items, domain.LineItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}
	doc.Recalculate()
	for _, m := range in.Milestones {
		doc.Milestones = append(doc.Milestones, domain.Milestone{
			Title:       m.Title,
			Description: m.Description,
			DueDate:     m.DueDate,
			Amount:      m.Amount,
			Status:      domain.MilestonePending,
		})
	}
	return s.docs.CreateDocument(ctx, doc)
}

func (s *Service) List(ctx context.Context, filter ports.DocumentFilter) ([]domain.Document, error) {
	return s.docs.ListDocuments(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.Document, error) {
	return s.docs.GetDocument(ctx, id)
}

// Update replaces the editable fields (title, client, items, discount,
// tax, dates) and recomputes totals. Number, status and paid amount are
// not editable through this path.
type Update struct {
	Title      *string
	Client     *domain.Client
	Items      []NewItem
	Discount   *decimal.Decimal
	Tax        *decimal.Decimal
	DueDate    *time.Time
	ValidUntil *time.Time
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in Update) (domain.Document, error) {
	doc, err := s.docs.GetDocument(ctx, id)
	if err != nil {
		return domain.Document{}, err
	}
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return domain.Document{}, &domain.ValidationError{Msg: "document title is required"}
		}
		doc.Title = *in.Title
	}
	if in.Client != nil {
		doc.Client = *in.Client
	}
	if in.Items != nil {
		doc.Items = doc.Items[:0]
		for _, it := range in.Items {
			doc.Items = append(doc.Items, domain.LineItem{
				Description: it.Description,
				Quantity:    it.Quantity,
				UnitPrice:   it.UnitPrice,
			})
		}
	}
	if in.Discount != nil {
		doc.Discount = *in.Discount
	}
	if in.Tax != nil {
		doc.Tax = *in.Tax
	}
	if in.DueDate != nil {
		doc.DueDate = in.DueDate
	}
	if in.ValidUntil != nil {
		doc.ValidUntil = in.ValidUntil
	}
	doc.Recalculate()
	return s.docs.UpdateDocument(ctx, doc)
}

// ChangeStatus validates the transition against the type's machine and
// persists it. The stored row is only written after validation, so a
// rejected transition leaves the document untouched.
func (s *Service) ChangeStatus(ctx context.Context, id uuid.UUID, raw string) (domain.Document, error) {
	doc, err := s.docs.GetDocument(ctx, id)
	if err != nil {
		return domain.Document{}, err
	}
	target, err := domain.ParseStatus(doc.Type, raw)
	if err != nil {
		return domain.Document{}, err
	}
	if err := domain.MachineFor(doc.Type).CanTransition(doc.Status, target); err != nil {
		return domain.Document{}, err
	}
	if err := s.docs.UpdateStatus(ctx, id, target); err != nil {
		return domain.Document{}, err
	}
	doc.Status = target
	if doc.Type == domain.TypeContract && target == domain.StatusSigned {
		now := s.clock.Now()
		doc.SignedAt = &now
	}
	return doc, nil
}

// RecordPayment adds a partial payment to an invoice. The amount must be
// positive; overpayment is permitted and surfaces as a negative balance.
// Reaching a zero balance does not mark the invoice paid; that remains
// an explicit status change.
func (s *Service) RecordPayment(ctx context.Context, id uuid.UUID, amount decimal.Decimal, paidOn time.Time) (domain.Document, error) {
	doc, err := s.docs.GetDocument(ctx, id)
	if err != nil {
		return domain.Document{}, err
	}
	if doc.Type != domain.TypeInvoice {
		return domain.Document{}, &domain.ValidationError{Msg: "payments can only be recorded on invoices"}
	}
	if !amount.IsPositive() {
		return domain.Document{}, &domain.ValidationError{Msg: "payment amount must be greater than zero"}
	}
	if !doc.AllowsPayment(s.clock.Now()) {
		return domain.Document{}, &domain.ValidationError{Msg: "invoice must be sent before recording payments"}
	}
	if paidOn.IsZero() {
		paidOn = s.clock.Now()
	}
	paid, err := s.docs.AddPayment(ctx, domain.Payment{
		DocumentID: id,
		Amount:     amount,
		PaidOn:     paidOn,
	})
	if err != nil {
		return domain.Document{}, err
	}
	doc.PaidAmount = paid
	return doc, nil
}

// MilestonePatch is an explicit optional-field update for a milestone.
// Status changes route through the forward-only milestone machine.
type MilestonePatch struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Amount      *decimal.Decimal
	Status      *domain.MilestoneStatus
}

// UpdateMilestone patches a single milestone of a contract. Only that
// milestone's row is written; the rest of the contract is untouched.
func (s *Service) UpdateMilestone(ctx context.Context, contractID, milestoneID uuid.UUID, patch MilestonePatch) (domain.Milestone, error) {
	doc, err := s.docs.GetDocument(ctx, contractID)
	if err != nil {
		return domain.Milestone{}, err
	}
	if doc.Type != domain.TypeContract {
		return domain.Milestone{}, &domain.ValidationError{Msg: "milestones only apply to contracts"}
	}
	var current *domain.Milestone
	for i := range doc.Milestones {
		if doc.Milestones[i].ID == milestoneID {
			current = &doc.Milestones[i]
			break
		}
	}
	if current == nil {
		return domain.Milestone{}, domain.ErrNotFound
	}
	m := *current
	if patch.Title != nil {
		m.Title = *patch.Title
	}
	if patch.Description != nil {
		m.Description = *patch.Description
	}
	if patch.DueDate != nil {
		m.DueDate = *patch.DueDate
	}
	if patch.Amount != nil {
		m.Amount = *patch.Amount
	}
	if patch.Status != nil && *patch.Status != m.Status {
		m, err = domain.AdvanceMilestone(m, *patch.Status, s.clock.Now())
		if err != nil {
			return domain.Milestone{}, err
		}
	}
	return s.docs.UpdateMilestone(ctx, m)
}

// AddMilestone appends a pending milestone to an existing contract.
func (s *Service) AddMilestone(ctx context.Context, contractID uuid.UUID, in NewMilestone) (domain.Milestone, error) {
	doc, err := s.docs.GetDocument(ctx, contractID)
	if err != nil {
		return domain.Milestone{}, err
	}
	if doc.Type != domain.TypeContract {
		return domain.Milestone{}, &domain.ValidationError{Msg: "milestones only apply to contracts"}
	}
	if strings.TrimSpace(in.Title) == "" {
		return domain.Milestone{}, &domain.ValidationError{Msg: "milestone title is required"}
	}
	return s.docs.CreateMilestone(ctx, domain.Milestone{
		ContractID:  contractID,
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		Amount:      in.Amount,
		Status:      domain.MilestonePending,
	})
}

// View builds the renderable view model for the external renderer.
func (s *Service) View(ctx context.Context, id uuid.UUID) (domain.DocumentView, error) {
	doc, err := s.docs.GetDocument(ctx, id)
	if err != nil {
		return domain.DocumentView{}, err
	}
	return domain.RenderDocument(&doc, s.clock.Now()), nil
}
