package persistence

import (
	"context"
	"testing"

	"github.com/sponsorship/backend/internal/domain/shared"
	"github.com/sponsorship/backend/internal/domain/sponsorship"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertyValueRepository_FindByCategoryAndValue(t *testing.T) {
	db := setupSponsorshipTestDB(t)
	repo := NewGormPropertyValueRepository(db)
	ctx := context.Background()

	value := sponsorship.NewPropertyValue(sponsorship.CategoryHobbies, "Football")
	require.NoError(t, repo.Create(ctx, value))

	t.Run("matches case-insensitively", func(t *testing.T) {
		found, err := repo.FindByCategoryAndValue(ctx, sponsorship.CategoryHobbies, "FOOTBALL")
		require.NoError(t, err)
		assert.Equal(t, value.ID, found.ID)
		assert.Equal(t, "football", found.ValueEN)
	})

	t.Run("does not match across categories", func(t *testing.T) {
		_, err := repo.FindByCategoryAndValue(ctx, sponsorship.CategoryChristianActivities, "football")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("returns not found for unknown value", func(t *testing.T) {
		_, err := repo.FindByCategoryAndValue(ctx, sponsorship.CategoryHobbies, "chess")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
