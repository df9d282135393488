package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apprecurring "github.com/sponsorship/backend/internal/application/recurring"
	"github.com/sponsorship/backend/internal/domain/recurring"
	"github.com/sponsorship/backend/internal/domain/shared"
)

func TestGormTransactionScope_Execute(t *testing.T) {
	db := setupRecurringTestDB(t)
	scope := NewGormTransactionScope(db)
	ctx := context.Background()

	t.Run("commits writes across repositories", func(t *testing.T) {
		group := testGroup(t)
		contract := testContract(t, group, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

		err := scope.Execute(ctx, func(repos apprecurring.TransactionalRepositories) error {
			if err := repos.Groups().Save(ctx, group); err != nil {
				return err
			}
			return repos.Contracts().Save(ctx, contract)
		})
		require.NoError(t, err)

		found, err := NewGormContractGroupRepository(db).FindByID(ctx, group.ID)
		require.NoError(t, err)
		assert.Equal(t, group.ID, found.ID)

		contracts, err := NewGormContractRepository(db).FindByGroup(ctx, group.ID)
		require.NoError(t, err)
		assert.Len(t, contracts, 1)
	})

	t.Run("rolls back all writes when the function fails", func(t *testing.T) {
		group := testGroup(t)

		err := scope.Execute(ctx, func(repos apprecurring.TransactionalRepositories) error {
			if err := repos.Groups().Save(ctx, group); err != nil {
				return err
			}
			return assert.AnError
		})
		require.Error(t, err)

		_, err = NewGormContractGroupRepository(db).FindByID(ctx, group.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("committed checkpoints survive a later failure", func(t *testing.T) {
		group := testGroup(t)
		invoicer := recurring.NewInvoicer("recurring.contract.group")

		err := scope.Execute(ctx, func(repos apprecurring.TransactionalRepositories) error {
			if err := repos.Groups().Save(ctx, group); err != nil {
				return err
			}
			return repos.Invoicers().Save(ctx, invoicer)
		})
		require.NoError(t, err)

		err = scope.Execute(ctx, func(repos apprecurring.TransactionalRepositories) error {
			return assert.AnError
		})
		require.Error(t, err)

		found, err := NewGormInvoicerRepository(db).FindByID(ctx, invoicer.ID)
		require.NoError(t, err)
		assert.Equal(t, invoicer.ID, found.ID)
	})

}
