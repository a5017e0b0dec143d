package documents

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gestio/internal/domain"
	"gestio/internal/ports"
)

// fakeRepo is an in-memory DocumentRepository.
type fakeRepo struct {
	docs map[uuid.UUID]*domain.Document
	seq  map[string]int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{docs: make(map[uuid.UUID]*domain.Document), seq: make(map[string]int)}
}

func (r *fakeRepo) ListDocuments(_ context.Context, filter ports.DocumentFilter) ([]domain.Document, error) {
	var out []domain.Document
	for _, d := range r.docs {
		if filter.Type != "" && d.Type != filter.Type {
			continue
		}
		if filter.Status != "" && d.Status != filter.Status {
			continue
		}
		out = append(out, *d)
	}
	return out, nil
}

func (r *fakeRepo) GetDocument(_ context.Context, id uuid.UUID) (domain.Document, error) {
	d, ok := r.docs[id]
	if !ok {
		return domain.Document{}, domain.ErrNotFound
	}
	return *d, nil
}

func (r *fakeRepo) CreateDocument(_ context.Context, d domain.Document) (domain.Document, error) {
	d.ID = uuid.New()
	year := d.IssueDate.Year()
	key := fmt.Sprintf("%s-%d", d.Type, year)
	r.seq[key]++
	d.Number = domain.FormatNumber(d.Type.NumberPrefix(), year, r.seq[key])
	for i := range d.Items {
		d.Items[i].ID = uuid.New()
	}
	for i := range d.Milestones {
		d.Milestones[i].ID = uuid.New()
		d.Milestones[i].ContractID = d.ID
	}
	stored := d
	r.docs[d.ID] = &stored
	return d, nil
}

func (r *fakeRepo) UpdateDocument(_ context.Context, d domain.Document) (domain.Document, error) {
	stored, ok := r.docs[d.ID]
	if !ok {
		return domain.Document{}, domain.ErrNotFound
	}
	d.Number = stored.Number
	d.Status = stored.Status
	d.PaidAmount = stored.PaidAmount
	*stored = d
	return d, nil
}

func (r *fakeRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.Status) error {
	stored, ok := r.docs[id]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Status = status
	return nil
}

func (r *fakeRepo) AddPayment(_ context.Context, p domain.Payment) (decimal.Decimal, error) {
	stored, ok := r.docs[p.DocumentID]
	if !ok {
		return decimal.Zero, domain.ErrNotFound
	}
	stored.PaidAmount = stored.PaidAmount.Add(p.Amount)
	return stored.PaidAmount, nil
}

func (r *fakeRepo) CreateMilestone(_ context.Context, m domain.Milestone) (domain.Milestone, error) {
	stored, ok := r.docs[m.ContractID]
	if !ok {
		return domain.Milestone{}, domain.ErrNotFound
	}
	m.ID = uuid.New()
	stored.Milestones = append(stored.Milestones, m)
	return m, nil
}

func (r *fakeRepo) UpdateMilestone(_ context.Context, m domain.Milestone) (domain.Milestone, error) {
	stored, ok := r.docs[m.ContractID]
	if !ok {
		return domain.Milestone{}, domain.ErrNotFound
	}
	for i := range stored.Milestones {
		if stored.Milestones[i].ID == m.ID {
			stored.Milestones[i] = m
			return m, nil
		}
	}
	return domain.Milestone{}, domain.ErrNotFound
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newService() (*Service, *fakeRepo, *clockwork.FakeClock) {
	repo := newFakeRepo()
	clock := clockwork.NewFakeClockAt(time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC))
	return New(repo, clock), repo, clock
}

func TestCreateComputesTotalsAndNumber(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	doc, err := svc.Create(ctx, NewDocument{
		Type:  domain.TypeQuote,
		Title: "Website",
		Items: []NewItem{
			{Description: "Design", Quantity: dec("2"), UnitPrice: dec("100")},
			{Description: "Hosting", Quantity: dec("1"), UnitPrice: dec("50")},
		},
		Discount: dec("20"),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusDraft, doc.Status)
	assert.Equal(t, "250", doc.Subtotal.String())
	assert.Equal(t, "230", doc.Total.String())
	assert.Equal(t, "DEV-2025-001", doc.Number)
	require.Len(t, doc.Items, 2)
	assert.Equal(t, "200", doc.Items[0].Total.String())

	second, err := svc.Create(ctx, NewDocument{Type: domain.TypeQuote, Title: "Another"})
	require.NoError(t, err)
	assert.Equal(t, "DEV-2025-002", second.Number)

	// Numbering is scoped per type.
	inv, err := svc.Create(ctx, NewDocument{Type: domain.TypeInvoice, Title: "Invoice"})
	require.NoError(t, err)
	assert.Equal(t, "FAC-2025-001", inv.Number)
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	_, err := svc.Create(ctx, NewDocument{Type: "memo", Title: "x"})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	_, err = svc.Create(ctx, NewDocument{Type: domain.TypeQuote, Title: "  "})
	require.Error(t, err)

	_, err = svc.Create(ctx, NewDocument{
		Type:       domain.TypeInvoice,
		Title:      "x",
		Milestones: []NewMilestone{{Title: "m"}},
	})
	require.Error(t, err)
}

func TestPaymentFlow(t *testing.T) {
	svc, repo, _ := newService()
	ctx := context.Background()

	inv, err := svc.Create(ctx, NewDocument{
		Type:  domain.TypeInvoice,
		Title: "Big job",
		Items: []NewItem{{Description: "Work", Quantity: dec("1"), UnitPrice: dec("1000")}},
	})
	require.NoError(t, err)

	// Payments cannot be recorded while the invoice is a draft.
	_, err = svc.RecordPayment(ctx, inv.ID, dec("400"), time.Time{})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	_, err = svc.ChangeStatus(ctx, inv.ID, "sent")
	require.NoError(t, err)

	got, err := svc.RecordPayment(ctx, inv.ID, dec("400"), time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "400", got.PaidAmount.String())
	assert.Equal(t, "600", got.Balance().String())

	got, err = svc.RecordPayment(ctx, inv.ID, dec("600"), time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "1000", got.PaidAmount.String())
	assert.True(t, got.Balance().IsZero())

	// A zero balance does not flip the status; paid is an explicit call.
	assert.Equal(t, domain.StatusSent, repo.docs[inv.ID].Status)
	got, err = svc.ChangeStatus(ctx, inv.ID, "paid")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, got.Status)
}

func TestRecordPaymentValidation(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	inv, err := svc.Create(ctx, NewDocument{Type: domain.TypeInvoice, Title: "x"})
	require.NoError(t, err)
	_, err = svc.ChangeStatus(ctx, inv.ID, "sent")
	require.NoError(t, err)

	_, err = svc.RecordPayment(ctx, inv.ID, decimal.Zero, time.Time{})
	require.Error(t, err)
	_, err = svc.RecordPayment(ctx, inv.ID, dec("-5"), time.Time{})
	require.Error(t, err)

	// Overpayment is permitted; the balance just goes negative.
	got, err := svc.RecordPayment(ctx, inv.ID, dec("50"), time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "-50", got.Balance().String())

	q, err := svc.Create(ctx, NewDocument{Type: domain.TypeQuote, Title: "q"})
	require.NoError(t, err)
	_, err = svc.RecordPayment(ctx, q.ID, dec("10"), time.Time{})
	require.Error(t, err)
}

func TestChangeStatusRejectsUndefinedTransitions(t *testing.T) {
	svc, repo, _ := newService()
	ctx := context.Background()

	inv, err := svc.Create(ctx, NewDocument{Type: domain.TypeInvoice, Title: "x"})
	require.NoError(t, err)

	// draft cannot jump straight to paid
	_, err = svc.ChangeStatus(ctx, inv.ID, "paid")
	require.Error(t, err)
	assert.Equal(t, domain.StatusDraft, repo.docs[inv.ID].Status)

	_, err = svc.ChangeStatus(ctx, inv.ID, "sent")
	require.NoError(t, err)
	_, err = svc.ChangeStatus(ctx, inv.ID, "paid")
	require.NoError(t, err)

	// paid is terminal
	_, err = svc.ChangeStatus(ctx, inv.ID, "sent")
	require.Error(t, err)
	var te *domain.TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, domain.StatusPaid, repo.docs[inv.ID].Status)
}

func TestChangeStatusStampsSignedAt(t *testing.T) {
	svc, _, clock := newService()
	ctx := context.Background()

	cnt, err := svc.Create(ctx, NewDocument{Type: domain.TypeContract, Title: "Support"})
	require.NoError(t, err)
	_, err = svc.ChangeStatus(ctx, cnt.ID, "sent")
	require.NoError(t, err)

	got, err := svc.ChangeStatus(ctx, cnt.ID, "signed")
	require.NoError(t, err)
	require.NotNil(t, got.SignedAt)
	assert.Equal(t, clock.Now(), *got.SignedAt)
}

func TestMilestoneLifecycle(t *testing.T) {
	svc, repo, clock := newService()
	ctx := context.Background()

	due := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	cnt, err := svc.Create(ctx, NewDocument{
		Type:  domain.TypeContract,
		Title: "Support",
		Items: []NewItem{{Description: "Year", Quantity: dec("1"), UnitPrice: dec("3000")}},
		Milestones: []NewMilestone{
			{Title: "Kickoff", DueDate: due, Amount: dec("1000")},
			{Title: "Delivery", DueDate: due.AddDate(0, 3, 0), Amount: dec("2000")},
		},
	})
	require.NoError(t, err)
	require.Len(t, cnt.Milestones, 2)
	kickoff := cnt.Milestones[0]

	completed := domain.MilestoneCompleted
	m, err := svc.UpdateMilestone(ctx, cnt.ID, kickoff.ID, MilestonePatch{Status: &completed})
	require.NoError(t, err)
	assert.Equal(t, domain.MilestoneCompleted, m.Status)
	require.NotNil(t, m.CompletionDate)
	assert.Equal(t, clock.Now(), *m.CompletionDate)

	paid := domain.MilestonePaid
	m, err = svc.UpdateMilestone(ctx, cnt.ID, kickoff.ID, MilestonePatch{Status: &paid})
	require.NoError(t, err)
	require.NotNil(t, m.PaymentDate)

	// Only the targeted milestone was touched.
	stored := repo.docs[cnt.ID]
	assert.Equal(t, domain.MilestonePending, stored.Milestones[1].Status)

	// Reconciliation over the stored state.
	assert.Equal(t, "1000", domain.MilestonePaidTotal(stored.Milestones).String())
	assert.Equal(t, "2000", domain.RemainingBalance(stored.Total, domain.MilestonePaidTotal(stored.Milestones)).String())
	assert.Equal(t, 50, domain.MilestoneProgress(stored.Milestones))

	// Backward transition is rejected and nothing is written.
	pending := domain.MilestonePending
	_, err = svc.UpdateMilestone(ctx, cnt.ID, kickoff.ID, MilestonePatch{Status: &pending})
	require.Error(t, err)
	assert.Equal(t, domain.MilestonePaid, stored.Milestones[0].Status)
}

func TestUpdateRecomputesTotals(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	q, err := svc.Create(ctx, NewDocument{
		Type:  domain.TypeQuote,
		Title: "Website",
		Items: []NewItem{{Description: "Design", Quantity: dec("2"), UnitPrice: dec("100")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "200", q.Total.String())

	tax := dec("15")
	got, err := svc.Update(ctx, q.ID, Update{
		Items: []NewItem{{Description: "Design", Quantity: dec("3"), UnitPrice: dec("100")}},
		Tax:   &tax,
	})
	require.NoError(t, err)
	assert.Equal(t, "300", got.Subtotal.String())
	assert.Equal(t, "315", got.Total.String())
}

func TestViewUsesDerivedStatus(t *testing.T) {
	svc, repo, _ := newService()
	ctx := context.Background()

	due := time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)
	inv, err := svc.Create(ctx, NewDocument{
		Type:    domain.TypeInvoice,
		Title:   "Old invoice",
		DueDate: &due,
	})
	require.NoError(t, err)
	repo.docs[inv.ID].Status = domain.StatusSent

	view, err := svc.View(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOverdue, view.Status)
}
