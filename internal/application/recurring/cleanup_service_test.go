package recurring

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sponsorship/backend/internal/domain/recurring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type cleanupFixture struct {
	*generationFixture
	cleanup *InvoiceCleanupService
}

func newCleanupFixture(today time.Time) *cleanupFixture {
	gen := newGenerationFixture(today)
	cleanup := NewInvoiceCleanupService(memScope{gen.store}, gen.service, gen.queue, zap.NewNop())
	cleanup.now = func() time.Time { return today }
	return &cleanupFixture{generationFixture: gen, cleanup: cleanup}
}

func TestCleanInvoices_AsyncEnqueuesJob(t *testing.T) {
	f := newCleanupFixture(date(2024, 1, 1))
	group, _ := f.monthlyGroup(date(2024, 1, 1), 2)

	require.NoError(t, f.cleanup.CleanInvoices(context.Background(), []uuid.UUID{group.ID}, CleanOptions{}))

	require.Len(t, f.queue.jobs, 1)
	assert.Equal(t, ChannelRecurringInvoicer, f.queue.jobs[0].channel)
	assert.Equal(t, JobTypeCleanInvoices, f.queue.jobs[0].jobType)

	var payload CleanJobPayload
	require.NoError(t, json.Unmarshal(f.queue.jobs[0].payload, &payload))
	assert.Equal(t, []uuid.UUID{group.ID}, payload.GroupIDs)
}

func TestCleanInvoices_RoundTripReproducesSchedule(t *testing.T) {
	f := newCleanupFixture(date(2024, 1, 1))
	group, contract := f.monthlyGroup(date(2024, 1, 1), 2)

	_, err := f.service.Generate(context.Background(), []uuid.UUID{group.ID}, GenerateOptions{Sync: true})
	require.NoError(t, err)
	before := f.store.schedule()
	require.Len(t, before[contract.ID], 3)

	require.NoError(t, f.cleanup.CleanInvoices(context.Background(), []uuid.UUID{group.ID}, CleanOptions{Sync: true}))

	// Cancel + rewind + regenerate is a no-op on the external schedule.
	after := f.store.schedule()
	assert.Equal(t, before, after)
	require.NotNil(t, contract.NextInvoiceDate)
	assert.Equal(t, date(2024, 4, 1), *contract.NextInvoiceDate)

	// The replaced invoices stay behind as cancelled history.
	cancelled := 0
	for _, inv := range f.store.invoices {
		if inv.State == recurring.InvoiceStateCancelled {
			cancelled++
		}
	}
	assert.Equal(t, 3, cancelled)
}

func TestCleanInvoices_RegeneratesWithNewSettings(t *testing.T) {
	f := newCleanupFixture(date(2024, 1, 1))
	group, contract := f.monthlyGroup(date(2024, 1, 1), 2)

	_, err := f.service.Generate(context.Background(), []uuid.UUID{group.ID}, GenerateOptions{Sync: true})
	require.NoError(t, err)
	require.Len(t, f.store.activeInvoices(), 3)

	// Switch the group to bi-monthly before cleaning.
	group.RecurringValue = 2
	require.NoError(t, f.cleanup.CleanInvoices(context.Background(), []uuid.UUID{group.ID}, CleanOptions{Sync: true}))

	invoices := f.store.activeInvoices()
	require.Len(t, invoices, 2)
	assert.Equal(t, date(2024, 1, 1), invoices[0].Date)
	assert.Equal(t, date(2024, 3, 1), invoices[1].Date)
	assert.Equal(t, date(2024, 5, 1), *contract.NextInvoiceDate)
}

func TestCleanInvoices_RespectsLastPaidInvoiceDate(t *testing.T) {
	f := newCleanupFixture(date(2024, 1, 1))
	group, contract := f.monthlyGroup(date(2024, 1, 1), 2)

	_, err := f.service.Generate(context.Background(), []uuid.UUID{group.ID}, GenerateOptions{Sync: true})
	require.NoError(t, err)

	// January and February are already paid.
	invoices := f.store.activeInvoices()
	invoices[0].State = recurring.InvoiceStatePaid
	invoices[1].State = recurring.InvoiceStatePaid
	paid := date(2024, 2, 1)
	contract.LastPaidInvoiceDate = &paid

	require.NoError(t, f.cleanup.CleanInvoices(context.Background(), []uuid.UUID{group.ID}, CleanOptions{Sync: true}))

	// Paid invoices survive, as does everything dated before the cutoff.
	for _, inv := range f.store.invoices {
		if inv.Date.Before(paid) || inv.Date.Equal(paid) {
			assert.NotEqual(t, recurring.InvoiceStateCancelled, inv.State)
		}
	}
	assert.Equal(t, recurring.InvoiceStatePaid, invoices[1].State)
}

func TestCleanInvoices_ValidatesRegeneratedRun(t *testing.T) {
	f := newCleanupFixture(date(2024, 1, 1))
	group, _ := f.monthlyGroup(date(2024, 1, 1), 1)

	_, err := f.service.Generate(context.Background(), []uuid.UUID{group.ID}, GenerateOptions{Sync: true})
	require.NoError(t, err)

	require.NoError(t, f.cleanup.CleanInvoices(context.Background(), []uuid.UUID{group.ID}, CleanOptions{Sync: true}))
	for _, inv := range f.store.activeInvoices() {
		assert.Equal(t, recurring.InvoiceStateOpen, inv.State)
	}
}

func TestHandleCleanJob(t *testing.T) {
	f := newCleanupFixture(date(2024, 1, 1))
	group, _ := f.monthlyGroup(date(2024, 1, 1), 2)

	_, err := f.service.Generate(context.Background(), []uuid.UUID{group.ID}, GenerateOptions{Sync: true})
	require.NoError(t, err)
	before := f.store.schedule()

	payload, err := json.Marshal(CleanJobPayload{GroupIDs: []uuid.UUID{group.ID}})
	require.NoError(t, err)
	require.NoError(t, f.cleanup.HandleCleanJob(context.Background(), payload))
	assert.Equal(t, before, f.store.schedule())

	assert.Error(t, f.cleanup.HandleCleanJob(context.Background(), []byte("{bad")))
}
