package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MilestoneStatus is the lifecycle state of a contract payment
// checkpoint. Forward-only: pending -> completed -> paid.
type MilestoneStatus string

const (
	MilestonePending   MilestoneStatus = "pending"
	MilestoneCompleted MilestoneStatus = "completed"
	MilestonePaid      MilestoneStatus = "paid"
	MilestoneOverdue   MilestoneStatus = "overdue"
)

// Milestone is a scheduled partial-payment checkpoint on a contract.
type Milestone struct {
	ID             uuid.UUID
	ContractID     uuid.UUID
	Title          string
	Description    string
	DueDate        time.Time
	Amount         decimal.Decimal
	Status         MilestoneStatus
	CompletionDate *time.Time
	PaymentDate    *time.Time
}

var milestoneTransitions = map[MilestoneStatus]map[MilestoneStatus]struct{}{
	MilestonePending:   {MilestoneCompleted: {}},
	MilestoneCompleted: {MilestonePaid: {}},
	// overdue is persisted by external sync paths; it exits like pending.
	MilestoneOverdue: {MilestoneCompleted: {}},
}

// AdvanceMilestone applies a forward status transition and stamps the
// matching date field from now. No backward transition exists.
func AdvanceMilestone(m Milestone, to MilestoneStatus, now time.Time) (Milestone, error) {
	next, ok := milestoneTransitions[m.Status]
	if !ok {
		return m, validationError("milestone is already %s", m.Status)
	}
	if _, allowed := next[to]; !allowed {
		return m, validationError("milestone cannot move from %s to %s", m.Status, to)
	}
	m.Status = to
	day := now
	switch to {
	case MilestoneCompleted:
		m.CompletionDate = &day
	case MilestonePaid:
		m.PaymentDate = &day
	}
	return m, nil
}

// MilestonePaidTotal sums the amounts of milestones already paid.
func MilestonePaidTotal(milestones []Milestone) decimal.Decimal {
	total := decimal.Zero
	for _, m := range milestones {
		if m.Status == MilestonePaid {
			total = total.Add(m.Amount)
		}
	}
	return total
}

// RemainingBalance is the contract value minus the paid milestone total.
func RemainingBalance(contractValue, paidTotal decimal.Decimal) decimal.Decimal {
	return contractValue.Sub(paidTotal)
}

// MilestoneProgress is the rounded percentage of milestones that are
// completed or paid; 0 when the contract has no milestones.
func MilestoneProgress(milestones []Milestone) int {
	done := 0
	for _, m := range milestones {
		if m.Status == MilestoneCompleted || m.Status == MilestonePaid {
			done++
		}
	}
	return RoundPercent(done, len(milestones))
}
