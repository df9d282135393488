package persistence

import (
	"context"
	"errors"

	"github.com/sponsorship/backend/internal/domain/shared"
	"github.com/sponsorship/backend/internal/domain/sponsorship"
	"github.com/sponsorship/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPropertyValueRepository implements PropertyValueRepository using GORM
type GormPropertyValueRepository struct {
	db *gorm.DB
}

// NewGormPropertyValueRepository creates a new GormPropertyValueRepository
func NewGormPropertyValueRepository(db *gorm.DB) *GormPropertyValueRepository {
	return &GormPropertyValueRepository{db: db}
}

// FindByCategoryAndValue looks up a fact value, matching the English text
// case-insensitively
func (r *GormPropertyValueRepository) FindByCategoryAndValue(ctx context.Context, category sponsorship.PropertyCategory, valueEN string) (*sponsorship.PropertyValue, error) {
	var model models.PropertyValueModel
	if err := r.db.WithContext(ctx).
		Where("category = ? AND LOWER(value_en) = LOWER(?)", string(category), valueEN).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create inserts a new fact value
func (r *GormPropertyValueRepository) Create(ctx context.Context, value *sponsorship.PropertyValue) error {
	model := models.PropertyValueModelFromDomain(value)
	return r.db.WithContext(ctx).Create(model).Error
}

// Ensure GormPropertyValueRepository implements PropertyValueRepository
var _ sponsorship.PropertyValueRepository = (*GormPropertyValueRepository)(nil)
