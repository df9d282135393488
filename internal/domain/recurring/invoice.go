package recurring

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sponsorship/backend/internal/domain/shared"
)

// InvoiceState is the lifecycle state of a generated invoice
type InvoiceState string

const (
	InvoiceStateDraft     InvoiceState = "draft"
	InvoiceStateOpen      InvoiceState = "open"
	InvoiceStatePaid      InvoiceState = "paid"
	InvoiceStateCancelled InvoiceState = "cancelled"
)

// Invoicer is the run token grouping all invoices created by one generation
// pass. It is used for bulk validation and auditing of a run.
type Invoicer struct {
	shared.BaseEntity
	Source string
}

// NewInvoicer creates a new generation run token
func NewInvoicer(source string) *Invoicer {
	return &Invoicer{
		BaseEntity: shared.NewBaseEntity(),
		Source:     source,
	}
}

// InvoiceLineData is line data assembled from a contract before the invoice
// exists
type InvoiceLineData struct {
	ContractID  uuid.UUID
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// InvoiceLine is a persisted invoice position, traceable to the contract that
// produced it
type InvoiceLine struct {
	ID          uuid.UUID
	InvoiceID   uuid.UUID
	ContractID  uuid.UUID
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// Subtotal returns quantity x unit price
func (l InvoiceLine) Subtotal() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

// Invoice is one generated invoice of a contract group for one billing date
type Invoice struct {
	shared.BaseEntity
	InvoicerID    uuid.UUID
	GroupID       uuid.UUID
	PartnerID     uuid.UUID
	PaymentTermID *uuid.UUID
	CurrencyID    *uuid.UUID
	Date          time.Time
	State         InvoiceState
	Lines         []InvoiceLine
}

// NewInvoice creates a draft invoice for a group and billing date, attaching
// the assembled line data
func NewInvoice(invoicer *Invoicer, group *ContractGroup, date time.Time, lines []InvoiceLineData) *Invoice {
	inv := &Invoice{
		BaseEntity:    shared.NewBaseEntity(),
		InvoicerID:    invoicer.ID,
		GroupID:       group.ID,
		PartnerID:     group.PartnerID,
		PaymentTermID: group.PaymentTermID,
		CurrencyID:    group.CurrencyID,
		Date:          date,
		State:         InvoiceStateDraft,
	}
	for _, l := range lines {
		inv.Lines = append(inv.Lines, InvoiceLine{
			ID:          uuid.New(),
			InvoiceID:   inv.ID,
			ContractID:  l.ContractID,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		})
	}
	return inv
}

// HasLines reports whether the invoice carries at least one line. Invoices
// without lines are never persisted past a group checkpoint.
func (i *Invoice) HasLines() bool {
	return len(i.Lines) > 0
}

// Total returns the sum of the line subtotals
func (i *Invoice) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range i.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Validate moves a draft invoice to open
func (i *Invoice) Validate() error {
	if i.State != InvoiceStateDraft {
		return shared.ErrInvalidState
	}
	i.State = InvoiceStateOpen
	i.Touch()
	return nil
}

// Cancel reverses an unpaid invoice
func (i *Invoice) Cancel() error {
	if i.State == InvoiceStatePaid {
		return shared.ErrInvalidState
	}
	i.State = InvoiceStateCancelled
	i.Touch()
	return nil
}
