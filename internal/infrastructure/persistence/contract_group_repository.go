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

// GormContractGroupRepository implements ContractGroupRepository using GORM
type GormContractGroupRepository struct {
	db *gorm.DB
}

// NewGormContractGroupRepository creates a new GormContractGroupRepository
func NewGormContractGroupRepository(db *gorm.DB) *GormContractGroupRepository {
	return &GormContractGroupRepository{db: db}
}

// FindByID finds a contract group by its ID
func (r *GormContractGroupRepository) FindByID(ctx context.Context, id uuid.UUID) (*recurring.ContractGroup, error) {
	var model models.ContractGroupModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds contract groups by their IDs, in stable creation order
func (r *GormContractGroupRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*recurring.ContractGroup, error) {
	var groupModels []models.ContractGroupModel
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("created_at ASC").
		Find(&groupModels).Error; err != nil {
		return nil, err
	}
	groups := make([]*recurring.ContractGroup, len(groupModels))
	for i := range groupModels {
		groups[i] = groupModels[i].ToDomain()
	}
	return groups, nil
}

// FindDue returns groups whose derived next invoice date is set
func (r *GormContractGroupRepository) FindDue(ctx context.Context) ([]*recurring.ContractGroup, error) {
	var groupModels []models.ContractGroupModel
	if err := r.db.WithContext(ctx).
		Where("next_invoice_date IS NOT NULL").
		Order("created_at ASC").
		Find(&groupModels).Error; err != nil {
		return nil, err
	}
	groups := make([]*recurring.ContractGroup, len(groupModels))
	for i := range groupModels {
		groups[i] = groupModels[i].ToDomain()
	}
	return groups, nil
}

// Save upserts a contract group
func (r *GormContractGroupRepository) Save(ctx context.Context, group *recurring.ContractGroup) error {
	model := models.ContractGroupModelFromDomain(group)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(model).Error
}

// Ensure GormContractGroupRepository implements ContractGroupRepository
var _ recurring.ContractGroupRepository = (*GormContractGroupRepository)(nil)
