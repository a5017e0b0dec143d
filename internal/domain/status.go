package domain

import (
	"strings"
	"time"
)

// Status represents the persisted lifecycle state of a document.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusPaid      Status = "paid"
	StatusSigned    Status = "signed"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"

	// StatusOverdue is display-only for invoices. It is a valid persisted
	// value (external systems may write it) but the derived condition is
	// computed from the due date, never from this field.
	StatusOverdue Status = "overdue"
)

// Machine is the per-type transition table. Transitions are strictly
// one-directional; a state absent from the table is terminal.
type Machine struct {
	docType     DocType
	statuses    map[Status]struct{}
	transitions map[Status]map[Status]struct{}
}

var quoteMachine = Machine{
	docType: TypeQuote,
	statuses: map[Status]struct{}{
		StatusDraft: {}, StatusSent: {}, StatusAccepted: {}, StatusRejected: {}, StatusExpired: {},
	},
	transitions: map[Status]map[Status]struct{}{
		StatusDraft: {StatusSent: {}},
		// Acceptance/rejection is triggered by the counterparty, but the
		// resulting write goes through the same table.
		StatusSent: {StatusAccepted: {}, StatusRejected: {}, StatusExpired: {}},
	},
}

var invoiceMachine = Machine{
	docType: TypeInvoice,
	statuses: map[Status]struct{}{
		StatusDraft: {}, StatusSent: {}, StatusPaid: {}, StatusOverdue: {}, StatusCancelled: {},
	},
	transitions: map[Status]map[Status]struct{}{
		StatusDraft: {StatusSent: {}},
		StatusSent:  {StatusPaid: {}, StatusCancelled: {}},
		// An invoice persisted as overdue keeps the same exits as sent.
		StatusOverdue: {StatusPaid: {}, StatusCancelled: {}},
	},
}

var contractMachine = Machine{
	docType: TypeContract,
	statuses: map[Status]struct{}{
		StatusDraft: {}, StatusSent: {}, StatusSigned: {}, StatusActive: {},
		StatusCompleted: {}, StatusExpired: {}, StatusCancelled: {},
	},
	transitions: map[Status]map[Status]struct{}{
		StatusDraft: {StatusSent: {}},
		StatusSent:  {StatusSigned: {}, StatusCancelled: {}},
		// signed -> completed is a valid shortcut past active.
		StatusSigned: {StatusActive: {}, StatusCompleted: {}},
		StatusActive: {StatusCompleted: {}},
	},
}

// MachineFor returns the lifecycle machine for a document type.
func MachineFor(t DocType) Machine {
	switch t {
	case TypeInvoice:
		return invoiceMachine
	case TypeContract:
		return contractMachine
	default:
		return quoteMachine
	}
}

// ParseStatus normalises an incoming status string against the type's
// closed set.
func ParseStatus(t DocType, raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	m := MachineFor(t)
	if _, ok := m.statuses[s]; !ok {
		return "", invalidStatusError(t, raw)
	}
	return s, nil
}

// Valid reports whether the status belongs to the type's closed set.
func (m Machine) Valid(s Status) bool {
	_, ok := m.statuses[s]
	return ok
}

// IsTerminal reports whether no transition leaves the status.
func (m Machine) IsTerminal(s Status) bool {
	return len(m.transitions[s]) == 0
}

// CanTransition verifies a transition against the table. Both states
// must be members of the type's status set.
func (m Machine) CanTransition(from, to Status) error {
	if !m.Valid(from) {
		return invalidStatusError(m.docType, string(from))
	}
	if !m.Valid(to) {
		return invalidStatusError(m.docType, string(to))
	}
	if next, ok := m.transitions[from]; ok {
		if _, allowed := next[to]; allowed {
			return nil
		}
	}
	return invalidTransitionError(m.docType, from, to)
}

// Derived display conditions. These are pure over (status, dates, now)
// and are never written back to the persisted status.

// IsOverdue holds for invoices that are past due and neither paid nor
// cancelled, regardless of the stored status string.
func (d *Document) IsOverdue(now time.Time) bool {
	if d.Type != TypeInvoice || d.DueDate == nil {
		return false
	}
	if d.Status == StatusPaid || d.Status == StatusCancelled {
		return false
	}
	return d.DueDate.Before(now)
}

// IsExpired holds for sent quotes whose validity window has lapsed.
func (d *Document) IsExpired(now time.Time) bool {
	if d.Type != TypeQuote || d.ValidUntil == nil {
		return false
	}
	return d.Status == StatusSent && d.ValidUntil.Before(now)
}

// DisplayStatus is the status a list or detail view should label the
// document with: the derived condition when one holds, otherwise the
// persisted status.
func (d *Document) DisplayStatus(now time.Time) Status {
	if d.IsOverdue(now) {
		return StatusOverdue
	}
	if d.IsExpired(now) {
		return StatusExpired
	}
	return d.Status
}

// AllowsPayment reports whether recording a payment is offered. Overdue
// invoices keep the same actions as sent ones.
func (d *Document) AllowsPayment(now time.Time) bool {
	if d.Type != TypeInvoice {
		return false
	}
	return d.Status == StatusSent || d.Status == StatusOverdue || d.IsOverdue(now)
}
