package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sponsorship/backend/internal/domain/recurring"
	"github.com/sponsorship/backend/internal/domain/shared"
	"github.com/sponsorship/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvoicerRepository implements InvoicerRepository using GORM
type GormInvoicerRepository struct {
	db *gorm.DB
}

// NewGormInvoicerRepository creates a new GormInvoicerRepository
func NewGormInvoicerRepository(db *gorm.DB) *GormInvoicerRepository {
	return &GormInvoicerRepository{db: db}
}

// FindByID finds an invoicer by its ID
func (r *GormInvoicerRepository) FindByID(ctx context.Context, id uuid.UUID) (*recurring.Invoicer, error) {
	var model models.InvoicerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save upserts an invoicer
func (r *GormInvoicerRepository) Save(ctx context.Context, invoicer *recurring.Invoicer) error {
	model := models.InvoicerModelFromDomain(invoicer)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(model).Error
}

// Ensure GormInvoicerRepository implements InvoicerRepository
var _ recurring.InvoicerRepository = (*GormInvoicerRepository)(nil)
