package recurring

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sponsorship/backend/internal/domain/recurring"
	"go.uber.org/zap"
)

// UpdateGroupInput carries the mutable fields of a contract group. Nil
// pointers leave the field untouched.
type UpdateGroupInput struct {
	PaymentTermID        *uuid.UUID
	RecurringUnit        *recurring.RecurringUnit
	RecurringValue       *int
	AdvanceBillingMonths *int
	ChangeMethod         *recurring.ChangeMethod
	// NextInvoiceDateOverride writes the derived date directly; such writes
	// never trigger the change method.
	NextInvoiceDateOverride *time.Time
}

// ContractGroupService mutates contract groups and keeps their derived dates
// consistent with member contracts. Billing-affecting changes to a group with
// pending invoices run the group's configured change method after the write.
type ContractGroupService struct {
	groups    recurring.ContractGroupRepository
	contracts recurring.ContractRepository
	cleanup   *InvoiceCleanupService
	logger    *zap.Logger
}

// NewContractGroupService creates a new ContractGroupService
func NewContractGroupService(
	groups recurring.ContractGroupRepository,
	contracts recurring.ContractRepository,
	cleanup *InvoiceCleanupService,
	logger *zap.Logger,
) *ContractGroupService {
	return &ContractGroupService{
		groups:    groups,
		contracts: contracts,
		cleanup:   cleanup,
		logger:    logger,
	}
}

// GetGroup loads a contract group
func (s *ContractGroupService) GetGroup(ctx context.Context, id uuid.UUID) (*recurring.ContractGroup, error) {
	return s.groups.FindByID(ctx, id)
}

// UpdateGroup applies the input to the group and, when the group already has
// a pending next invoice date and the write is not a direct date override,
// runs the configured change method afterwards.
func (s *ContractGroupService) UpdateGroup(ctx context.Context, id uuid.UUID, input UpdateGroupInput) (*recurring.ContractGroup, error) {
	group, err := s.groups.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	applyChangeMethod := group.NextInvoiceDate != nil && input.NextInvoiceDateOverride == nil

	if input.PaymentTermID != nil {
		group.PaymentTermID = input.PaymentTermID
	}
	if input.RecurringUnit != nil {
		group.RecurringUnit = *input.RecurringUnit
	}
	if input.RecurringValue != nil {
		group.RecurringValue = *input.RecurringValue
	}
	if input.AdvanceBillingMonths != nil {
		group.AdvanceBillingMonths = *input.AdvanceBillingMonths
	}
	if input.ChangeMethod != nil {
		group.ChangeMethod = *input.ChangeMethod
	}
	if input.NextInvoiceDateOverride != nil {
		group.NextInvoiceDate = input.NextInvoiceDateOverride
	}
	if err := group.Validate(); err != nil {
		return nil, err
	}
	group.Touch()
	if err := s.groups.Save(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to save contract group: %w", err)
	}

	if applyChangeMethod {
		switch group.ChangeMethod {
		case recurring.ChangeMethodCleanInvoices:
			s.logger.Info("group changed, cleaning invoices",
				zap.String("group_id", group.ID.String()),
			)
			if err := s.cleanup.CleanInvoices(ctx, []uuid.UUID{group.ID}, CleanOptions{}); err != nil {
				return nil, err
			}
		case recurring.ChangeMethodDoNothing:
			// No side effect before the next generation.
		}
	}

	return group, nil
}

// RefreshGroupDates recomputes a group's derived dates from its live member
// contracts. Called after contract mutations that affect billing.
func (s *ContractGroupService) RefreshGroupDates(ctx context.Context, groupID uuid.UUID) (*recurring.ContractGroup, error) {
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	contracts, err := s.contracts.FindByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	group.RefreshDerivedDates(contracts)
	if err := s.groups.Save(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to save contract group: %w", err)
	}
	return group, nil
}
