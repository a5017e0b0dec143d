package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvanceMilestone(t *testing.T) {
	now := date(2025, time.March, 10)
	m := Milestone{Status: MilestonePending}

	m, err := AdvanceMilestone(m, MilestoneCompleted, now)
	require.NoError(t, err)
	assert.Equal(t, MilestoneCompleted, m.Status)
	require.NotNil(t, m.CompletionDate)
	assert.Equal(t, now, *m.CompletionDate)
	assert.Nil(t, m.PaymentDate)

	later := date(2025, time.March, 20)
	m, err = AdvanceMilestone(m, MilestonePaid, later)
	require.NoError(t, err)
	assert.Equal(t, MilestonePaid, m.Status)
	require.NotNil(t, m.PaymentDate)
	assert.Equal(t, later, *m.PaymentDate)
}

func TestAdvanceMilestoneForwardOnly(t *testing.T) {
	now := time.Now()

	// pending cannot jump straight to paid
	_, err := AdvanceMilestone(Milestone{Status: MilestonePending}, MilestonePaid, now)
	require.Error(t, err)

	// paid is terminal
	_, err = AdvanceMilestone(Milestone{Status: MilestonePaid}, MilestonePending, now)
	require.Error(t, err)
	_, err = AdvanceMilestone(Milestone{Status: MilestonePaid}, MilestoneCompleted, now)
	require.Error(t, err)

	// no going back
	_, err = AdvanceMilestone(Milestone{Status: MilestoneCompleted}, MilestonePending, now)
	require.Error(t, err)
}

func TestMilestoneReconciliation(t *testing.T) {
	// Contract milestones [{1000, paid}, {2000, pending}] against a
	// 3000 contract value.
	milestones := []Milestone{
		{Amount: dec("1000"), Status: MilestonePaid},
		{Amount: dec("2000"), Status: MilestonePending},
	}
	paid := MilestonePaidTotal(milestones)
	assert.Equal(t, "1000", paid.String())
	assert.Equal(t, "2000", RemainingBalance(dec("3000"), paid).String())
	assert.Equal(t, 50, MilestoneProgress(milestones))
}

func TestMilestoneProgressCountsCompleted(t *testing.T) {
	milestones := []Milestone{
		{Status: MilestoneCompleted},
		{Status: MilestonePaid},
		{Status: MilestonePending},
		{Status: MilestoneOverdue},
	}
	assert.Equal(t, 50, MilestoneProgress(milestones))
	assert.Equal(t, 0, MilestoneProgress(nil))
}
