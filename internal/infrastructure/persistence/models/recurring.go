package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sponsorship/backend/internal/domain/recurring"
)

// ContractGroupModel is the GORM model for contract groups
type ContractGroupModel struct {
	Base
	PartnerID            uuid.UUID  `gorm:"type:uuid;not null;index"`
	Ref                  string     `gorm:"type:varchar(50);not null"`
	PaymentTermID        *uuid.UUID `gorm:"type:uuid"`
	CurrencyID           *uuid.UUID `gorm:"type:uuid"`
	RecurringUnit        string     `gorm:"type:varchar(10);not null;default:'month'"`
	RecurringValue       int        `gorm:"not null;default:1"`
	AdvanceBillingMonths int        `gorm:"not null;default:1"`
	ChangeMethod         string     `gorm:"type:varchar(20);not null;default:'do_nothing'"`
	NextInvoiceDate      *time.Time `gorm:"index"`
	LastPaidInvoiceDate  *time.Time
}

// TableName returns the table name for GORM
func (ContractGroupModel) TableName() string {
	return "contract_groups"
}

// ToDomain converts the model to a domain contract group
func (m *ContractGroupModel) ToDomain() *recurring.ContractGroup {
	return &recurring.ContractGroup{
		BaseEntity:           m.Base.Entity(),
		PartnerID:            m.PartnerID,
		Ref:                  m.Ref,
		PaymentTermID:        m.PaymentTermID,
		CurrencyID:           m.CurrencyID,
		RecurringUnit:        recurring.RecurringUnit(m.RecurringUnit),
		RecurringValue:       m.RecurringValue,
		AdvanceBillingMonths: m.AdvanceBillingMonths,
		ChangeMethod:         recurring.ChangeMethod(m.ChangeMethod),
		NextInvoiceDate:      m.NextInvoiceDate,
		LastPaidInvoiceDate:  m.LastPaidInvoiceDate,
	}
}

// ContractGroupModelFromDomain converts a domain contract group to the model
func ContractGroupModelFromDomain(g *recurring.ContractGroup) *ContractGroupModel {
	m := &ContractGroupModel{
		PartnerID:            g.PartnerID,
		Ref:                  g.Ref,
		PaymentTermID:        g.PaymentTermID,
		CurrencyID:           g.CurrencyID,
		RecurringUnit:        string(g.RecurringUnit),
		RecurringValue:       g.RecurringValue,
		AdvanceBillingMonths: g.AdvanceBillingMonths,
		ChangeMethod:         string(g.ChangeMethod),
		NextInvoiceDate:      g.NextInvoiceDate,
		LastPaidInvoiceDate:  g.LastPaidInvoiceDate,
	}
	m.SetEntity(g.BaseEntity)
	return m
}

// ContractModel is the GORM model for sponsorship contracts
type ContractModel struct {
	Base
	GroupID             uuid.UUID  `gorm:"type:uuid;not null;index"`
	PartnerID           uuid.UUID  `gorm:"type:uuid;not null;index"`
	Reference           string     `gorm:"type:varchar(50);not null"`
	State               string     `gorm:"type:varchar(20);not null;default:'draft';index"`
	NextInvoiceDate     *time.Time `gorm:"index"`
	EndDate             *time.Time
	LastPaidInvoiceDate *time.Time
	Lines               []ContractLineModel `gorm:"foreignKey:ContractID;references:ID"`
}

// TableName returns the table name for GORM
func (ContractModel) TableName() string {
	return "contracts"
}

// ContractLineModel is the GORM model for contract billing positions
type ContractLineModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	ContractID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description string          `gorm:"type:varchar(200);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (ContractLineModel) TableName() string {
	return "contract_lines"
}

// ToDomain converts the model to a domain contract
func (m *ContractModel) ToDomain() *recurring.Contract {
	c := &recurring.Contract{
		BaseEntity:          m.Base.Entity(),
		GroupID:             m.GroupID,
		PartnerID:           m.PartnerID,
		Reference:           m.Reference,
		State:               recurring.ContractState(m.State),
		NextInvoiceDate:     m.NextInvoiceDate,
		EndDate:             m.EndDate,
		LastPaidInvoiceDate: m.LastPaidInvoiceDate,
	}
	for _, l := range m.Lines {
		c.Lines = append(c.Lines, recurring.ContractLine{
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		})
	}
	return c
}

// ContractModelFromDomain converts a domain contract to the model
func ContractModelFromDomain(c *recurring.Contract) *ContractModel {
	m := &ContractModel{
		GroupID:             c.GroupID,
		PartnerID:           c.PartnerID,
		Reference:           c.Reference,
		State:               string(c.State),
		NextInvoiceDate:     c.NextInvoiceDate,
		EndDate:             c.EndDate,
		LastPaidInvoiceDate: c.LastPaidInvoiceDate,
	}
	m.SetEntity(c.BaseEntity)
	for _, l := range c.Lines {
		m.Lines = append(m.Lines, ContractLineModel{
			ID:          uuid.New(),
			ContractID:  c.ID,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		})
	}
	return m
}

// InvoicerModel is the GORM model for generation run tokens
type InvoicerModel struct {
	Base
	Source string `gorm:"type:varchar(50);not null"`
}

// TableName returns the table name for GORM
func (InvoicerModel) TableName() string {
	return "recurring_invoicers"
}

// ToDomain converts the model to a domain invoicer
func (m *InvoicerModel) ToDomain() *recurring.Invoicer {
	return &recurring.Invoicer{
		BaseEntity: m.Base.Entity(),
		Source:     m.Source,
	}
}

// InvoicerModelFromDomain converts a domain invoicer to the model
func InvoicerModelFromDomain(inv *recurring.Invoicer) *InvoicerModel {
	m := &InvoicerModel{Source: inv.Source}
	m.SetEntity(inv.BaseEntity)
	return m
}

// InvoiceModel is the GORM model for generated invoices
type InvoiceModel struct {
	Base
	InvoicerID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	GroupID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	PartnerID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	PaymentTermID *uuid.UUID `gorm:"type:uuid"`
	CurrencyID    *uuid.UUID `gorm:"type:uuid"`
	Date          time.Time  `gorm:"not null;index"`
	State         string     `gorm:"type:varchar(20);not null;default:'draft';index"`
	Lines         []InvoiceLineModel `gorm:"foreignKey:InvoiceID;references:ID"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// InvoiceLineModel is the GORM model for invoice positions
type InvoiceLineModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ContractID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description string          `gorm:"type:varchar(200);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (InvoiceLineModel) TableName() string {
	return "invoice_lines"
}

// ToDomain converts the model to a domain invoice
func (m *InvoiceModel) ToDomain() *recurring.Invoice {
	inv := &recurring.Invoice{
		BaseEntity:    m.Base.Entity(),
		InvoicerID:    m.InvoicerID,
		GroupID:       m.GroupID,
		PartnerID:     m.PartnerID,
		PaymentTermID: m.PaymentTermID,
		CurrencyID:    m.CurrencyID,
		Date:          m.Date,
		State:         recurring.InvoiceState(m.State),
	}
	for _, l := range m.Lines {
		inv.Lines = append(inv.Lines, recurring.InvoiceLine{
			ID:          l.ID,
			InvoiceID:   l.InvoiceID,
			ContractID:  l.ContractID,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		})
	}
	return inv
}

// InvoiceModelFromDomain converts a domain invoice to the model
func InvoiceModelFromDomain(inv *recurring.Invoice) *InvoiceModel {
	m := &InvoiceModel{
		InvoicerID:    inv.InvoicerID,
		GroupID:       inv.GroupID,
		PartnerID:     inv.PartnerID,
		PaymentTermID: inv.PaymentTermID,
		CurrencyID:    inv.CurrencyID,
		Date:          inv.Date,
		State:         string(inv.State),
	}
	m.SetEntity(inv.BaseEntity)
	for _, l := range inv.Lines {
		m.Lines = append(m.Lines, InvoiceLineModel{
			ID:          l.ID,
			InvoiceID:   l.InvoiceID,
			ContractID:  l.ContractID,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		})
	}
	return m
}
