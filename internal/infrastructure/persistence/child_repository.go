package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sponsorship/backend/internal/domain/shared"
	"github.com/sponsorship/backend/internal/domain/sponsorship"
	"github.com/sponsorship/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormChildRepository implements ChildRepository using GORM
type GormChildRepository struct {
	db *gorm.DB
}

// NewGormChildRepository creates a new GormChildRepository
func NewGormChildRepository(db *gorm.DB) *GormChildRepository {
	return &GormChildRepository{db: db}
}

// FindByID finds a child by its ID
func (r *GormChildRepository) FindByID(ctx context.Context, id uuid.UUID) (*sponsorship.Child, error) {
	var model models.ChildModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode finds a child by its provider code
func (r *GormChildRepository) FindByCode(ctx context.Context, code string) (*sponsorship.Child, error) {
	var model models.ChildModel
	if err := r.db.WithContext(ctx).First(&model, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save upserts a child
func (r *GormChildRepository) Save(ctx context.Context, child *sponsorship.Child) error {
	model := models.ChildModelFromDomain(child)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(model).Error
}

// Ensure GormChildRepository implements ChildRepository
var _ sponsorship.ChildRepository = (*GormChildRepository)(nil)
