package httpadapter

import (
	"time"

	"github.com/google/uuid"
	oapitypes "github.com/oapi-codegen/runtime/types"

	"gestio/internal/domain"
)

// Wire types. Dates travel as ISO YYYY-MM-DD (oapi runtime Date); money
// as plain JSON numbers, converted to decimals at this boundary.

type clientDTO struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

type lineItemDTO struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	Quantity    float64   `json:"quantity"`
	UnitPrice   float64   `json:"unitPrice"`
	Total       float64   `json:"total"`
}

type milestoneDTO struct {
	ID             uuid.UUID       `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description,omitempty"`
	DueDate        oapitypes.Date  `json:"dueDate"`
	Amount         float64         `json:"amount"`
	Status         string          `json:"status"`
	CompletionDate *oapitypes.Date `json:"completionDate,omitempty"`
	PaymentDate    *oapitypes.Date `json:"paymentDate,omitempty"`
}

type documentDTO struct {
	ID            uuid.UUID       `json:"id"`
	Type          string          `json:"type"`
	Number        string          `json:"number"`
	Title         string          `json:"title"`
	Client        clientDTO       `json:"client"`
	Status        string          `json:"status"`
	DisplayStatus string          `json:"displayStatus"`
	Items         []lineItemDTO   `json:"items"`
	Subtotal      float64         `json:"subtotal"`
	Discount      float64         `json:"discount"`
	Tax           float64         `json:"tax"`
	Total         float64         `json:"total"`
	PaidAmount    float64         `json:"paidAmount"`
	Balance       float64         `json:"balance"`
	IssueDate     oapitypes.Date  `json:"issueDate"`
	DueDate       *oapitypes.Date `json:"dueDate,omitempty"`
	ValidUntil    *oapitypes.Date `json:"validUntil,omitempty"`
	SignedAt      *time.Time      `json:"signedAt,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`

	Milestones        []milestoneDTO `json:"milestones,omitempty"`
	MilestoneProgress *int           `json:"milestoneProgress,omitempty"`
	RemainingBalance  *float64       `json:"remainingBalance,omitempty"`
}

type specificationDTO struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type featureDTO struct {
	ID              uuid.UUID  `json:"id"`
	SpecificationID uuid.UUID  `json:"specificationId"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	OrderIndex      int        `json:"orderIndex"`
	Level           int        `json:"level"`
	ParentID        *uuid.UUID `json:"parentId"`
	IsCompleted     bool       `json:"isCompleted"`
	CreatedAt       time.Time  `json:"createdAt"`
}

type progressDTO struct {
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

func toSpecificationDTO(s domain.Specification) specificationDTO {
	return specificationDTO{
		ID: s.ID, Title: s.Title, Description: s.Description,
		CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt,
	}
}

func toFeatureDTO(f domain.Feature) featureDTO {
	return featureDTO{
		ID:              f.ID,
		SpecificationID: f.SpecificationID,
		Title:           f.Title,
		Description:     f.Description,
		OrderIndex:      f.OrderIndex,
		Level:           f.Level,
		ParentID:        f.ParentID,
		IsCompleted:     f.IsCompleted,
		CreatedAt:       f.CreatedAt,
	}
}

func toMilestoneDTO(m domain.Milestone) milestoneDTO {
	dto := milestoneDTO{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		DueDate:     oapitypes.Date{Time: m.DueDate},
		Amount:      m.Amount.InexactFloat64(),
		Status:      string(m.Status),
	}
	if m.CompletionDate != nil {
		dto.CompletionDate = &oapitypes.Date{Time: *m.CompletionDate}
	}
	if m.PaymentDate != nil {
		dto.PaymentDate = &oapitypes.Date{Time: *m.PaymentDate}
	}
	return dto
}

func (s *Server) toDocumentDTO(d domain.Document) documentDTO {
	now := s.clock.Now()
	dto := documentDTO{
		ID:     d.ID,
		Type:   string(d.Type),
		Number: d.Number,
		Title:  d.Title,
		Client: clientDTO{
			Name: d.Client.Name, Email: d.Client.Email,
			Phone: d.Client.Phone, Address: d.Client.Address,
		},
		Status:        string(d.Status),
		DisplayStatus: string(d.DisplayStatus(now)),
		Subtotal:      d.Subtotal.InexactFloat64(),
		Discount:      d.Discount.InexactFloat64(),
		Tax:           d.Tax.InexactFloat64(),
		Total:         d.Total.InexactFloat64(),
		PaidAmount:    d.PaidAmount.InexactFloat64(),
		Balance:       d.Balance().InexactFloat64(),
		IssueDate:     oapitypes.Date{Time: d.IssueDate},
		SignedAt:      d.SignedAt,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
	if d.DueDate != nil {
		dto.DueDate = &oapitypes.Date{Time: *d.DueDate}
	}
	if d.ValidUntil != nil {
		dto.ValidUntil = &oapitypes.Date{Time: *d.ValidUntil}
	}
	dto.Items = make([]lineItemDTO, 0, len(d.Items))
	for _, it := range d.Items {
		dto.Items = append(dto.Items, lineItemDTO{
			ID:          it.ID,
			Description: it.Description,
			Quantity:    it.Quantity.InexactFloat64(),
			UnitPrice:   it.UnitPrice.InexactFloat64(),
			Total:       it.Total.InexactFloat64(),
		})
	}
	if d.Type == domain.TypeContract {
		for _, m := range d.Milestones {
			dto.Milestones = append(dto.Milestones, toMilestoneDTO(m))
		}
		progress := domain.MilestoneProgress(d.Milestones)
		remaining := domain.RemainingBalance(d.Total, domain.MilestonePaidTotal(d.Milestones)).InexactFloat64()
		dto.MilestoneProgress = &progress
		dto.RemainingBalance = &remaining
	}
	return dto
}
