package sponsorship

import (
	"context"

	"github.com/google/uuid"
)

// ChildRepository persists sponsored child records
type ChildRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Child, error)
	FindByCode(ctx context.Context, code string) (*Child, error)
	Save(ctx context.Context, child *Child) error
}

// CaseStudyRepository persists case-study snapshots. Records are append-only:
// there is no update, the most recent snapshot is the last created.
type CaseStudyRepository interface {
	Create(ctx context.Context, cs *CaseStudy) error
	FindByChild(ctx context.Context, childID uuid.UUID) ([]*CaseStudy, error)
	FindLatestByChild(ctx context.Context, childID uuid.UUID) (*CaseStudy, error)
}

// PropertyValueRepository persists the deduplicated fact reference data
type PropertyValueRepository interface {
	// FindByCategoryAndValue matches case-insensitively on the English value.
	FindByCategoryAndValue(ctx context.Context, category PropertyCategory, valueEN string) (*PropertyValue, error)
	Create(ctx context.Context, value *PropertyValue) error
}
