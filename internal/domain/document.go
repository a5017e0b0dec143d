package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Core domain models. Wire/DTO types live in the HTTP adapter; these are
// the authoritative shapes the services and repositories work with.

// DocType discriminates the three financial document kinds, which share
// one storage shape and most behavior.
type DocType string

const (
	TypeQuote    DocType = "quote"
	TypeInvoice  DocType = "invoice"
	TypeContract DocType = "contract"
)

func (t DocType) Valid() bool {
	switch t {
	case TypeQuote, TypeInvoice, TypeContract:
		return true
	}
	return false
}

// NumberPrefix returns the human-readable identifier prefix for the type
// (e.g. quotes are numbered DEV-2025-001).
func (t DocType) NumberPrefix() string {
	switch t {
	case TypeQuote:
		return "DEV"
	case TypeInvoice:
		return "FAC"
	case TypeContract:
		return "CNT"
	}
	return "DOC"
}

// Client is the counterparty block embedded in every financial document.
type Client struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// LineItem is one row of a financial document. Total is stored but is
// always recomputed from Quantity and UnitPrice before persisting.
type LineItem struct {
	ID          uuid.UUID
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
}

// Document is the shared shape across quotes, invoices and contracts.
// Optional dates are nil when the field does not apply to the type
// (ValidUntil is quote-only, DueDate invoice-only, SignedAt contract-only).
type Document struct {
	ID         uuid.UUID
	Type       DocType
	Number     string
	Title      string
	Client     Client
	Status     Status
	Items      []LineItem
	Subtotal   decimal.Decimal
	Discount   decimal.Decimal
	Tax        decimal.Decimal
	Total      decimal.Decimal
	PaidAmount decimal.Decimal
	IssueDate  time.Time
	DueDate    *time.Time
	ValidUntil *time.Time
	SignedAt   *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Contract-only.
	Milestones []Milestone
}

// Recalculate recomputes every line total and the document totals in
// place. Must be called after any mutation of items, discount or tax.
func (d *Document) Recalculate() {
	for i := range d.Items {
		d.Items[i].Total = LineTotal(d.Items[i].Quantity, d.Items[i].UnitPrice)
	}
	d.Subtotal, d.Total = DocumentTotals(d.Items, d.Discount, d.Tax)
}

// Balance is the amount still owed. Negative when overpaid; not clamped.
func (d *Document) Balance() decimal.Decimal {
	return Balance(d.Total, d.PaidAmount)
}

// Payment is a recorded partial payment against an invoice.
type Payment struct {
	ID         uuid.UUID
	DocumentID uuid.UUID
	Amount     decimal.Decimal
	PaidOn     time.Time
	CreatedAt  time.Time
}
