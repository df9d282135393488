package recurring

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sponsorship/backend/internal/domain/shared"
)

// ContractState is the lifecycle state of a sponsorship contract
type ContractState string

const (
	ContractStateDraft      ContractState = "draft"
	ContractStateActive     ContractState = "active"
	ContractStateTerminated ContractState = "terminated"
	ContractStateCancelled  ContractState = "cancelled"
)

// IsGenerationEligible returns true if contracts in this state may produce
// new invoices
func (s ContractState) IsGenerationEligible() bool {
	return s == ContractStateActive
}

// GenerationStates returns the set of states permitted to produce invoices
func GenerationStates() []ContractState {
	return []ContractState{ContractStateActive}
}

// ContractLine is a billable position carried by a contract. Amount
// computation beyond quantity x unit price (tax, account codes) is owned by
// the accounting collaborator and opaque here.
type ContractLine struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// Contract is a subscription-like agreement belonging to exactly one contract
// group. The contract owns its own billing cursor (NextInvoiceDate) and knows
// how to advance it; the group only supplies the cadence.
type Contract struct {
	shared.BaseEntity
	GroupID             uuid.UUID
	PartnerID           uuid.UUID
	Reference           string
	State               ContractState
	NextInvoiceDate     *time.Time
	EndDate             *time.Time
	LastPaidInvoiceDate *time.Time
	Lines               []ContractLine
}

// NewContract creates a draft contract in the given group
func NewContract(groupID, partnerID uuid.UUID, reference string) *Contract {
	return &Contract{
		BaseEntity: shared.NewBaseEntity(),
		GroupID:    groupID,
		PartnerID:  partnerID,
		Reference:  reference,
		State:      ContractStateDraft,
	}
}

// Activate transitions the contract into the generation-eligible state
func (c *Contract) Activate() error {
	if c.State != ContractStateDraft {
		return shared.ErrInvalidState
	}
	if c.NextInvoiceDate == nil {
		return shared.NewDomainError("INVALID_INPUT", "Contract cannot be activated without a next invoice date")
	}
	c.State = ContractStateActive
	c.Touch()
	return nil
}

// IsEnded reports whether the contract's end date has been reached relative
// to its own pending invoice date. Ended contracts are excluded from
// generation even while still in an eligible state.
func (c *Contract) IsEnded() bool {
	if c.EndDate == nil || c.NextInvoiceDate == nil {
		return false
	}
	return !c.EndDate.Before(*c.NextInvoiceDate)
}

// IsDueOn reports whether the contract must be invoiced for the given date:
// its next invoice date is set and not after the date, its state is
// generation-eligible and it is not already ended.
func (c *Contract) IsDueOn(date time.Time) bool {
	if c.NextInvoiceDate == nil || c.NextInvoiceDate.After(date) {
		return false
	}
	return c.State.IsGenerationEligible() && !c.IsEnded()
}

// AdvanceNextInvoiceDate moves the contract's billing cursor one recurrence
// step forward. It is a no-op for contracts without a pending date.
func (c *Contract) AdvanceNextInvoiceDate(unit RecurringUnit, value int) {
	if c.NextInvoiceDate == nil {
		return
	}
	next := unit.AddTo(*c.NextInvoiceDate, value)
	c.NextInvoiceDate = &next
	c.Touch()
}

// RewindNextInvoiceDate moves the billing cursor back so that cancelled
// invoices are regenerated on the same schedule. The cursor never moves
// forward through this method.
func (c *Contract) RewindNextInvoiceDate(to time.Time) {
	if c.NextInvoiceDate != nil && !c.NextInvoiceDate.After(to) {
		return
	}
	rewound := to
	c.NextInvoiceDate = &rewound
	c.Touch()
}

// InvoiceLinesData assembles the invoice line data contributed by this
// contract. A due contract can legitimately contribute nothing (all positions
// zero), in which case the resulting invoice is discarded by the engine.
func (c *Contract) InvoiceLinesData() []InvoiceLineData {
	var lines []InvoiceLineData
	for _, l := range c.Lines {
		if l.Quantity.IsZero() {
			continue
		}
		lines = append(lines, InvoiceLineData{
			ContractID:  c.ID,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		})
	}
	return lines
}
