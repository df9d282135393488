package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sponsorship/backend/internal/domain/shared"
	"github.com/sponsorship/backend/internal/domain/sponsorship"
	"github.com/sponsorship/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCaseStudyRepository implements CaseStudyRepository using GORM.
// Snapshots are append-only, so there is no update path.
type GormCaseStudyRepository struct {
	db *gorm.DB
}

// NewGormCaseStudyRepository creates a new GormCaseStudyRepository
func NewGormCaseStudyRepository(db *gorm.DB) *GormCaseStudyRepository {
	return &GormCaseStudyRepository{db: db}
}

// Create inserts a case-study snapshot with its fact links
func (r *GormCaseStudyRepository) Create(ctx context.Context, cs *sponsorship.CaseStudy) error {
	model := models.CaseStudyModelFromDomain(cs)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		links := model.Values
		model.Values = nil
		if err := tx.Create(model).Error; err != nil {
			return err
		}
		if len(links) == 0 {
			return nil
		}
		return tx.Create(&links).Error
	})
}

// FindByChild returns all snapshots for a child, oldest first
func (r *GormCaseStudyRepository) FindByChild(ctx context.Context, childID uuid.UUID) ([]*sponsorship.CaseStudy, error) {
	var studyModels []models.CaseStudyModel
	if err := r.db.WithContext(ctx).
		Preload("Values", func(db *gorm.DB) *gorm.DB {
			return db.Order("child_case_study_values.position ASC")
		}).
		Preload("Values.Value").
		Where("child_id = ?", childID).
		Order("created_at ASC").
		Find(&studyModels).Error; err != nil {
		return nil, err
	}
	studies := make([]*sponsorship.CaseStudy, len(studyModels))
	for i := range studyModels {
		studies[i] = studyModels[i].ToDomain()
	}
	return studies, nil
}

// FindLatestByChild returns the most recent snapshot for a child
func (r *GormCaseStudyRepository) FindLatestByChild(ctx context.Context, childID uuid.UUID) (*sponsorship.CaseStudy, error) {
	var model models.CaseStudyModel
	if err := r.db.WithContext(ctx).
		Preload("Values", func(db *gorm.DB) *gorm.DB {
			return db.Order("child_case_study_values.position ASC")
		}).
		Preload("Values.Value").
		Where("child_id = ?", childID).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Ensure GormCaseStudyRepository implements CaseStudyRepository
var _ sponsorship.CaseStudyRepository = (*GormCaseStudyRepository)(nil)
