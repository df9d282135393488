package recurring

import (
	"time"

	"github.com/google/uuid"
	"github.com/sponsorship/backend/internal/domain/shared"
)

// DefaultAdvanceBillingMonths is how far ahead invoices are pre-generated
// when a group does not configure its own horizon.
const DefaultAdvanceBillingMonths = 1

// ContractGroup aggregates the contracts of one partner sharing a billing
// cadence. Its NextInvoiceDate and LastPaidInvoiceDate are derived views over
// the live member contracts and are recomputed on every relevant contract
// mutation, never maintained independently.
type ContractGroup struct {
	shared.BaseEntity
	PartnerID            uuid.UUID
	Ref                  string
	PaymentTermID        *uuid.UUID
	CurrencyID           *uuid.UUID
	RecurringUnit        RecurringUnit
	RecurringValue       int
	AdvanceBillingMonths int
	ChangeMethod         ChangeMethod

	// Derived from member contracts, see RefreshDerivedDates.
	NextInvoiceDate     *time.Time
	LastPaidInvoiceDate *time.Time
}

// NewContractGroup creates a contract group with the default monthly cadence
func NewContractGroup(partnerID uuid.UUID, ref string) *ContractGroup {
	return &ContractGroup{
		BaseEntity:           shared.NewBaseEntity(),
		PartnerID:            partnerID,
		Ref:                  ref,
		RecurringUnit:        UnitMonth,
		RecurringValue:       1,
		AdvanceBillingMonths: DefaultAdvanceBillingMonths,
		ChangeMethod:         ChangeMethodDoNothing,
	}
}

// Validate checks the recurrence settings
func (g *ContractGroup) Validate() error {
	if !g.RecurringUnit.IsValid() {
		return shared.NewDomainError("INVALID_INPUT", "Invalid recurring unit")
	}
	if g.RecurringValue < 1 {
		return shared.NewDomainError("INVALID_INPUT", "Recurring value must be at least 1")
	}
	if !g.ChangeMethod.IsValid() {
		return shared.NewDomainError("INVALID_INPUT", "Invalid change method")
	}
	return nil
}

// NextDateAfter advances a billing date by one recurrence step of this group
func (g *ContractGroup) NextDateAfter(t time.Time) time.Time {
	return g.RecurringUnit.AddTo(t, g.RecurringValue)
}

// BillingLimitDate returns how far ahead of today invoices are generated.
// Groups without an explicit horizon bill one month in advance.
func (g *ContractGroup) BillingLimitDate(today time.Time) time.Time {
	months := g.AdvanceBillingMonths
	if months <= 0 {
		months = DefaultAdvanceBillingMonths
	}
	return UnitMonth.AddTo(today, months)
}

// ComputeNextInvoiceDate derives the group's next invoice date: the earliest
// next invoice date over generation-eligible member contracts, nil if none.
func ComputeNextInvoiceDate(contracts []*Contract) *time.Time {
	var next *time.Time
	for _, c := range contracts {
		if c.NextInvoiceDate == nil || !c.State.IsGenerationEligible() {
			continue
		}
		if next == nil || c.NextInvoiceDate.Before(*next) {
			d := *c.NextInvoiceDate
			next = &d
		}
	}
	return next
}

// ComputeLastPaidInvoiceDate derives the group's last paid invoice date: the
// latest over all member contracts, nil if none.
func ComputeLastPaidInvoiceDate(contracts []*Contract) *time.Time {
	var last *time.Time
	for _, c := range contracts {
		if c.LastPaidInvoiceDate == nil {
			continue
		}
		if last == nil || c.LastPaidInvoiceDate.After(*last) {
			d := *c.LastPaidInvoiceDate
			last = &d
		}
	}
	return last
}

// RefreshDerivedDates recomputes both derived dates from the member contracts
func (g *ContractGroup) RefreshDerivedDates(contracts []*Contract) {
	g.NextInvoiceDate = ComputeNextInvoiceDate(contracts)
	g.LastPaidInvoiceDate = ComputeLastPaidInvoiceDate(contracts)
	g.Touch()
}

// DueContracts selects the member contracts that must be invoiced for the
// given date, preserving the input order.
func DueContracts(contracts []*Contract, date time.Time) []*Contract {
	var due []*Contract
	for _, c := range contracts {
		if c.IsDueOn(date) {
			due = append(due, c)
		}
	}
	return due
}

// CleanSinceDate returns the cutoff from which invoices are cancelled during
// a clean-and-regenerate: never before today, never before the last paid
// invoice (paid invoices are not reversed).
func (g *ContractGroup) CleanSinceDate(today time.Time) time.Time {
	since := today
	if g.LastPaidInvoiceDate != nil && g.LastPaidInvoiceDate.After(since) {
		since = *g.LastPaidInvoiceDate
	}
	return since
}
