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

// GormContractRepository implements ContractRepository using GORM
type GormContractRepository struct {
	db *gorm.DB
}

// NewGormContractRepository creates a new GormContractRepository
func NewGormContractRepository(db *gorm.DB) *GormContractRepository {
	return &GormContractRepository{db: db}
}

// FindByID finds a contract by its ID
func (r *GormContractRepository) FindByID(ctx context.Context, id uuid.UUID) (*recurring.Contract, error) {
	var model models.ContractModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByGroup finds the member contracts of a group, in stable creation order
func (r *GormContractRepository) FindByGroup(ctx context.Context, groupID uuid.UUID) ([]*recurring.Contract, error) {
	var contractModels []models.ContractModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("group_id = ?", groupID).
		Order("created_at ASC").
		Find(&contractModels).Error; err != nil {
		return nil, err
	}
	contracts := make([]*recurring.Contract, len(contractModels))
	for i := range contractModels {
		contracts[i] = contractModels[i].ToDomain()
	}
	return contracts, nil
}

// Save upserts a contract and replaces its lines
func (r *GormContractRepository) Save(ctx context.Context, contract *recurring.Contract) error {
	model := models.ContractModelFromDomain(contract)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lines := model.Lines
		model.Lines = nil
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(model).Error; err != nil {
			return err
		}
		if err := tx.Where("contract_id = ?", model.ID).
			Delete(&models.ContractLineModel{}).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return nil
		}
		return tx.Create(&lines).Error
	})
}

// Ensure GormContractRepository implements ContractRepository
var _ recurring.ContractRepository = (*GormContractRepository)(nil)
