package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sponsorship/backend/internal/domain/recurring"
	"github.com/sponsorship/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sponsorship/backend/internal/infrastructure/persistence/models"
)

func testInvoice(t *testing.T, invoicer *recurring.Invoicer, group *recurring.ContractGroup, contractID uuid.UUID, date time.Time) *recurring.Invoice {
	t.Helper()
	return recurring.NewInvoice(invoicer, group, date, []recurring.InvoiceLineData{
		{
			ContractID:  contractID,
			Description: "Sponsorship",
			Quantity:    decimal.NewFromInt(1),
			UnitPrice:   decimal.NewFromInt(42),
		},
	})
}

func TestInvoiceRepository_SaveAndFind(t *testing.T) {
	db := setupRecurringTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	group := testGroup(t)
	invoicer := recurring.NewInvoicer("recurring.contract.group")
	contractID := uuid.New()
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("saves and finds an invoice with lines", func(t *testing.T) {
		invoice := testInvoice(t, invoicer, group, contractID, date)

		err := repo.Save(ctx, invoice)
		require.NoError(t, err)

		found, err := repo.FindByID(ctx, invoice.ID)
		require.NoError(t, err)
		assert.Equal(t, invoice.ID, found.ID)
		assert.Equal(t, invoicer.ID, found.InvoicerID)
		assert.Equal(t, recurring.InvoiceStateDraft, found.State)
		require.Len(t, found.Lines, 1)
		assert.Equal(t, contractID, found.Lines[0].ContractID)
		assert.True(t, found.Total().Equal(decimal.NewFromInt(42)))
	})

	t.Run("save updates state on an existing invoice", func(t *testing.T) {
		invoice := testInvoice(t, invoicer, group, contractID, date)
		require.NoError(t, repo.Save(ctx, invoice))

		require.NoError(t, invoice.Validate())
		require.NoError(t, repo.Save(ctx, invoice))

		found, err := repo.FindByID(ctx, invoice.ID)
		require.NoError(t, err)
		assert.Equal(t, recurring.InvoiceStateOpen, found.State)
	})

	t.Run("returns not found for unknown ID", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestInvoiceRepository_FindByInvoicer(t *testing.T) {
	db := setupRecurringTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	group := testGroup(t)
	run := recurring.NewInvoicer("recurring.contract.group")
	otherRun := recurring.NewInvoicer("recurring.contract.group")
	contractID := uuid.New()

	february := testInvoice(t, run, group, contractID, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	january := testInvoice(t, run, group, contractID, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	foreign := testInvoice(t, otherRun, group, contractID, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	require.NoError(t, repo.Save(ctx, february))
	require.NoError(t, repo.Save(ctx, january))
	require.NoError(t, repo.Save(ctx, foreign))

	invoices, err := repo.FindByInvoicer(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, invoices, 2)
	assert.Equal(t, january.ID, invoices[0].ID)
	assert.Equal(t, february.ID, invoices[1].ID)
}

func TestInvoiceRepository_FindByContractsSince(t *testing.T) {
	db := setupRecurringTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	group := testGroup(t)
	run := recurring.NewInvoicer("recurring.contract.group")
	contractID := uuid.New()
	otherContractID := uuid.New()

	before := testInvoice(t, run, group, contractID, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	onCutoff := testInvoice(t, run, group, contractID, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	after := testInvoice(t, run, group, contractID, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	cancelled := testInvoice(t, run, group, contractID, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, cancelled.Cancel())
	foreign := testInvoice(t, run, group, otherContractID, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	for _, inv := range []*recurring.Invoice{before, onCutoff, after, cancelled, foreign} {
		require.NoError(t, repo.Save(ctx, inv))
	}

	since := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	invoices, err := repo.FindByContractsSince(ctx, []uuid.UUID{contractID}, since)
	require.NoError(t, err)
	require.Len(t, invoices, 2)
	assert.Equal(t, onCutoff.ID, invoices[0].ID)
	assert.Equal(t, after.ID, invoices[1].ID)
}

func TestInvoiceRepository_Delete(t *testing.T) {
	db := setupRecurringTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	group := testGroup(t)
	run := recurring.NewInvoicer("recurring.contract.group")
	invoice := testInvoice(t, run, group, uuid.New(), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Save(ctx, invoice))

	err := repo.Delete(ctx, invoice.ID)
	require.NoError(t, err)

	_, err = repo.FindByID(ctx, invoice.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	var lineCount int64
	require.NoError(t, db.Model(&models.InvoiceLineModel{}).
		Where("invoice_id = ?", invoice.ID).Count(&lineCount).Error)
	assert.Equal(t, int64(0), lineCount)
}
