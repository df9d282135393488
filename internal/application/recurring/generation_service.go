package recurring

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sponsorship/backend/internal/domain/recurring"
	"github.com/sponsorship/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// InvoicerSource marks invoicer run tokens created by the contract-group
// engine
const InvoicerSource = "recurring.contract.group"

// GenerateOptions controls one generation request
type GenerateOptions struct {
	// Sync forces synchronous execution instead of enqueueing a job.
	Sync bool
	// SuppressNextDateUpdate keeps the contracts' billing cursors in place
	// after invoicing (used by migrations and backfills).
	SuppressNextDateUpdate bool
	// Invoicer reuses an existing run token; a fresh one is created when nil.
	Invoicer *recurring.Invoicer
}

// InvoiceGenerationService drives the per-group, per-date invoice creation
// loop. By default work is offloaded to the task queue; the synchronous path
// guards against a generation already running on the channel.
type InvoiceGenerationService struct {
	scope     TransactionScope
	groups    recurring.ContractGroupRepository
	invoices  recurring.InvoiceRepository
	invoicers recurring.InvoicerRepository
	queue     TaskQueue
	logger    *zap.Logger
	now       func() time.Time
}

// NewInvoiceGenerationService creates a new InvoiceGenerationService
func NewInvoiceGenerationService(
	scope TransactionScope,
	groups recurring.ContractGroupRepository,
	invoices recurring.InvoiceRepository,
	invoicers recurring.InvoicerRepository,
	queue TaskQueue,
	logger *zap.Logger,
) *InvoiceGenerationService {
	return &InvoiceGenerationService{
		scope:     scope,
		groups:    groups,
		invoices:  invoices,
		invoicers: invoicers,
		queue:     queue,
		logger:    logger,
		now:       time.Now,
	}
}

// Generate creates (or reuses) an invoicer run token and generates the
// pending invoices of the given groups. The default mode enqueues a job on
// the invoicer channel and returns immediately; Sync runs in the caller's
// goroutine after checking that no generation job is already started on the
// channel.
func (s *InvoiceGenerationService) Generate(ctx context.Context, groupIDs []uuid.UUID, opts GenerateOptions) (*recurring.Invoicer, error) {
	invoicer := opts.Invoicer
	if invoicer == nil {
		invoicer = recurring.NewInvoicer(InvoicerSource)
		if err := s.invoicers.Save(ctx, invoicer); err != nil {
			return nil, fmt.Errorf("failed to create invoicer: %w", err)
		}
	}

	if !opts.Sync {
		payload := GenerationJobPayload{
			GroupIDs:               groupIDs,
			InvoicerID:             invoicer.ID,
			SuppressNextDateUpdate: opts.SuppressNextDateUpdate,
		}
		if _, err := s.queue.Enqueue(ctx, ChannelRecurringInvoicer, JobTypeGenerateInvoices, payload); err != nil {
			return nil, fmt.Errorf("failed to enqueue generation job: %w", err)
		}
		return invoicer, nil
	}

	// Prevent two generations at the same time. The async path relies on
	// the queue's single worker per channel instead.
	started, err := s.queue.CountByChannelAndState(ctx, ChannelRecurringInvoicer, JobStateStarted)
	if err != nil {
		return nil, fmt.Errorf("failed to query generation jobs: %w", err)
	}
	if started > 0 {
		return nil, shared.ErrGenerationInProgress
	}

	if err := s.runGeneration(ctx, groupIDs, invoicer.ID, opts.SuppressNextDateUpdate); err != nil {
		return nil, err
	}
	return invoicer, nil
}

// GenerateAndValidate runs a synchronous generation and validates the
// resulting invoicer (the interactive button path).
func (s *InvoiceGenerationService) GenerateAndValidate(ctx context.Context, groupIDs []uuid.UUID) (*recurring.Invoicer, error) {
	invoicer, err := s.Generate(ctx, groupIDs, GenerateOptions{Sync: true})
	if err != nil {
		return nil, err
	}
	if err := s.ValidateInvoices(ctx, invoicer.ID); err != nil {
		return nil, err
	}
	return invoicer, nil
}

// GenerateDue enqueues a generation run over every group with a pending next
// invoice date. Invoked by the cron trigger.
func (s *InvoiceGenerationService) GenerateDue(ctx context.Context) (*recurring.Invoicer, error) {
	groups, err := s.groups.FindDue(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find due groups: %w", err)
	}
	if len(groups) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, len(groups))
	for i, g := range groups {
		ids[i] = g.ID
	}
	return s.Generate(ctx, ids, GenerateOptions{})
}

// ValidateInvoices moves the draft invoices of a run to open. Runs with no
// invoices are left alone.
func (s *InvoiceGenerationService) ValidateInvoices(ctx context.Context, invoicerID uuid.UUID) error {
	invoices, err := s.invoices.FindByInvoicer(ctx, invoicerID)
	if err != nil {
		return fmt.Errorf("failed to load invoicer invoices: %w", err)
	}
	for _, inv := range invoices {
		if inv.State != recurring.InvoiceStateDraft {
			continue
		}
		if err := inv.Validate(); err != nil {
			return err
		}
		if err := s.invoices.Save(ctx, inv); err != nil {
			return fmt.Errorf("failed to validate invoice %s: %w", inv.ID, err)
		}
	}
	return nil
}

// HandleGenerationJob is the worker entrypoint for generate_invoices jobs
func (s *InvoiceGenerationService) HandleGenerationJob(ctx context.Context, payload []byte) error {
	var job GenerationJobPayload
	if err := json.Unmarshal(payload, &job); err != nil {
		return fmt.Errorf("invalid generation job payload: %w", err)
	}
	return s.runGeneration(ctx, job.GroupIDs, job.InvoicerID, job.SuppressNextDateUpdate)
}

// runGeneration is the engine. One transaction per group: after a group is
// done its writes are committed, so a crash or timeout mid-run resumes at the
// next group instead of replaying finished ones.
func (s *InvoiceGenerationService) runGeneration(ctx context.Context, groupIDs []uuid.UUID, invoicerID uuid.UUID, suppressNextDate bool) error {
	s.logger.Info("invoice generation started",
		zap.Int("groups", len(groupIDs)),
		zap.String("invoicer_id", invoicerID.String()),
	)
	today := dateOnly(s.now())

	for i, groupID := range groupIDs {
		s.logger.Info("generating invoices for group",
			zap.Int("group", i+1),
			zap.Int("of", len(groupIDs)),
			zap.String("group_id", groupID.String()),
		)
		err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			return s.generateForGroup(ctx, repos, groupID, invoicerID, today, suppressNextDate)
		})
		if err != nil {
			return fmt.Errorf("invoice generation failed for group %s: %w", groupID, err)
		}
	}

	s.logger.Info("invoice generation successfully finished")
	return nil
}

func (s *InvoiceGenerationService) generateForGroup(
	ctx context.Context,
	repos TransactionalRepositories,
	groupID uuid.UUID,
	invoicerID uuid.UUID,
	today time.Time,
	suppressNextDate bool,
) error {
	group, err := repos.Groups().FindByID(ctx, groupID)
	if err != nil {
		return err
	}
	contracts, err := repos.Contracts().FindByGroup(ctx, groupID)
	if err != nil {
		return err
	}

	// The group's next invoice date is a derived view; always recompute from
	// live contract state.
	next := recurring.ComputeNextInvoiceDate(contracts)
	if next == nil {
		return nil
	}
	invoicer, err := repos.Invoicers().FindByID(ctx, invoicerID)
	if err != nil {
		return err
	}

	limit := group.BillingLimitDate(today)
	current := *next
	for !current.After(limit) {
		due := recurring.DueContracts(contracts, current)
		if len(due) == 0 {
			// No gap filling past a missed date.
			break
		}

		var lines []recurring.InvoiceLineData
		for _, c := range due {
			lines = append(lines, c.InvoiceLinesData()...)
		}
		invoice := recurring.NewInvoice(invoicer, group, current, lines)
		if err := repos.Invoices().Save(ctx, invoice); err != nil {
			return err
		}
		if !invoice.HasLines() {
			// A contract can be due yet contribute no billable line.
			if err := repos.Invoices().Delete(ctx, invoice.ID); err != nil {
				return err
			}
		}

		if !suppressNextDate {
			for _, c := range due {
				c.AdvanceNextInvoiceDate(group.RecurringUnit, group.RecurringValue)
				if err := repos.Contracts().Save(ctx, c); err != nil {
					return err
				}
			}
		}

		current = group.NextDateAfter(current)
	}

	group.RefreshDerivedDates(contracts)
	return repos.Groups().Save(ctx, group)
}

// dateOnly truncates a timestamp to its calendar date
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
