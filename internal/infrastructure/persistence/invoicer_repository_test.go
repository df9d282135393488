package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sponsorship/backend/internal/domain/recurring"
	"github.com/sponsorship/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoicerRepository_SaveAndFind(t *testing.T) {
	db := setupRecurringTestDB(t)
	repo := NewGormInvoicerRepository(db)
	ctx := context.Background()

	t.Run("saves and finds a generation run", func(t *testing.T) {
		invoicer := recurring.NewInvoicer("recurring.contract.group")

		err := repo.Save(ctx, invoicer)
		require.NoError(t, err)

		found, err := repo.FindByID(ctx, invoicer.ID)
		require.NoError(t, err)
		assert.Equal(t, invoicer.ID, found.ID)
		assert.Equal(t, "recurring.contract.group", found.Source)
	})

	t.Run("returns not found for unknown ID", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
