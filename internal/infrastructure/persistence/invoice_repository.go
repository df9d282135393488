package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sponsorship/backend/internal/domain/recurring"
	"github.com/sponsorship/backend/internal/domain/shared"
	"github.com/sponsorship/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*recurring.Invoice, error) {
	var model models.InvoiceModel
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

// FindByInvoicer finds the invoices produced by a generation run, oldest first
func (r *GormInvoiceRepository) FindByInvoicer(ctx context.Context, invoicerID uuid.UUID) ([]*recurring.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("invoicer_id = ?", invoicerID).
		Order("date ASC, created_at ASC").
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	return toDomainInvoices(invoiceModels), nil
}

// FindByContractsSince finds non-cancelled invoices carrying lines for the
// given contracts, dated on or after since
func (r *GormInvoiceRepository) FindByContractsSince(ctx context.Context, contractIDs []uuid.UUID, since time.Time) ([]*recurring.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Distinct("invoices.*").
		Joins("JOIN invoice_lines ON invoice_lines.invoice_id = invoices.id").
		Where("invoice_lines.contract_id IN ?", contractIDs).
		Where("invoices.state <> ?", string(recurring.InvoiceStateCancelled)).
		Where("invoices.date >= ?", since).
		Order("invoices.date ASC").
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	return toDomainInvoices(invoiceModels), nil
}

// Save upserts an invoice and replaces its lines
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *recurring.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lines := model.Lines
		model.Lines = nil
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(model).Error; err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", model.ID).
			Delete(&models.InvoiceLineModel{}).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return nil
		}
		return tx.Create(&lines).Error
	})
}

// Delete removes an invoice and its lines
func (r *GormInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", id).
			Delete(&models.InvoiceLineModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.InvoiceModel{}, "id = ?", id).Error
	})
}

func toDomainInvoices(invoiceModels []models.InvoiceModel) []*recurring.Invoice {
	invoices := make([]*recurring.Invoice, len(invoiceModels))
	for i := range invoiceModels {
		invoices[i] = invoiceModels[i].ToDomain()
	}
	return invoices
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ recurring.InvoiceRepository = (*GormInvoiceRepository)(nil)
