package sponsorship

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sponsorship/backend/internal/domain/sponsorship"
)

func TestGenerateDescriptions(t *testing.T) {
	f, child := newCaseStudyFixture(t)
	f.fetcher.doc = parsedDocument(t)
	_, err := f.service.FetchCaseStudy(context.Background(), child.ID)
	require.NoError(t, err)

	svc := NewDescriptionService(f.children, f.studies, zap.NewNop())
	updated, err := svc.GenerateDescriptions(context.Background(), child.ID)
	require.NoError(t, err)

	assert.NotEmpty(t, updated.DescriptionFR)
	assert.Contains(t, updated.DescriptionFR, "A l'Église, Firmin participe")
	assert.Contains(t, updated.DescriptionFR, "Il aime beaucoup")
	assert.Contains(t, updated.DescriptionFR, "troisième année")
	assert.Equal(t, 1, f.children.saved)
	assert.Equal(t, updated.DescriptionFR, f.children.children[child.ID].DescriptionFR)
}

func TestGenerateDescriptions_UsesLatestSnapshot(t *testing.T) {
	f, child := newCaseStudyFixture(t)

	older := sponsorship.NewCaseStudy(child.ID, "2013-01-01")
	older.Values = []sponsorship.PropertyValue{
		*sponsorship.NewPropertyValue(sponsorship.CategoryHobbies, "singing"),
	}
	require.NoError(t, f.studies.Create(context.Background(), older))

	newer := sponsorship.NewCaseStudy(child.ID, "2014-01-01")
	newer.Values = []sponsorship.PropertyValue{
		*sponsorship.NewPropertyValue(sponsorship.CategoryHobbies, "swimming"),
	}
	require.NoError(t, f.studies.Create(context.Background(), newer))

	svc := NewDescriptionService(f.children, f.studies, zap.NewNop())
	updated, err := svc.GenerateDescriptions(context.Background(), child.ID)
	require.NoError(t, err)
	assert.Contains(t, updated.DescriptionFR, "swimming")
	assert.NotContains(t, updated.DescriptionFR, "singing")
}

func TestGenerateDescriptions_NoCaseStudy(t *testing.T) {
	f, child := newCaseStudyFixture(t)

	svc := NewDescriptionService(f.children, f.studies, zap.NewNop())
	_, err := svc.GenerateDescriptions(context.Background(), child.ID)
	assert.ErrorIs(t, err, ErrNoCaseStudy)
}

func TestGenerateDescriptions_UnknownChild(t *testing.T) {
	f, _ := newCaseStudyFixture(t)
	svc := NewDescriptionService(f.children, f.studies, zap.NewNop())
	_, err := svc.GenerateDescriptions(context.Background(), uuid.New())
	assert.Error(t, err)
}
