package recurring

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sponsorship/backend/internal/domain/recurring"
	"go.uber.org/zap"
)

// CleanOptions controls one cleanup request
type CleanOptions struct {
	// Sync forces synchronous execution instead of enqueueing a job.
	Sync bool
}

// InvoiceCleanupService cancels the pending invoices of contract groups,
// rewinds the contracts' billing cursors and regenerates, so that invoices
// reflect modified group settings. Paid invoices are never touched.
type InvoiceCleanupService struct {
	scope      TransactionScope
	generation *InvoiceGenerationService
	queue      TaskQueue
	logger     *zap.Logger
	now        func() time.Time
}

// NewInvoiceCleanupService creates a new InvoiceCleanupService
func NewInvoiceCleanupService(
	scope TransactionScope,
	generation *InvoiceGenerationService,
	queue TaskQueue,
	logger *zap.Logger,
) *InvoiceCleanupService {
	return &InvoiceCleanupService{
		scope:      scope,
		generation: generation,
		queue:      queue,
		logger:     logger,
		now:        time.Now,
	}
}

// CleanInvoices runs the clean-and-regenerate protocol over the given
// groups. The default mode enqueues a job on the invoicer channel; Sync runs
// immediately (tests and callers needing the result).
func (s *InvoiceCleanupService) CleanInvoices(ctx context.Context, groupIDs []uuid.UUID, opts CleanOptions) error {
	if !opts.Sync {
		if _, err := s.queue.Enqueue(ctx, ChannelRecurringInvoicer, JobTypeCleanInvoices, CleanJobPayload{GroupIDs: groupIDs}); err != nil {
			return fmt.Errorf("failed to enqueue clean job: %w", err)
		}
		return nil
	}
	return s.runCleanGenerate(ctx, groupIDs)
}

// HandleCleanJob is the worker entrypoint for clean_invoices jobs
func (s *InvoiceCleanupService) HandleCleanJob(ctx context.Context, payload []byte) error {
	var job CleanJobPayload
	if err := json.Unmarshal(payload, &job); err != nil {
		return fmt.Errorf("invalid clean job payload: %w", err)
	}
	return s.runCleanGenerate(ctx, job.GroupIDs)
}

// runCleanGenerate cancels and rewinds per group (one checkpoint each), then
// regenerates across all affected groups and validates the new run.
func (s *InvoiceCleanupService) runCleanGenerate(ctx context.Context, groupIDs []uuid.UUID) error {
	s.logger.Info("invoice cleanup started", zap.Int("groups", len(groupIDs)))
	today := dateOnly(s.now())

	for _, groupID := range groupIDs {
		err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			return s.cleanGroup(ctx, repos, groupID, today)
		})
		if err != nil {
			return fmt.Errorf("invoice cleanup failed for group %s: %w", groupID, err)
		}
	}

	invoicer := recurring.NewInvoicer(InvoicerSource)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.Invoicers().Save(ctx, invoicer)
	})
	if err != nil {
		return fmt.Errorf("failed to create invoicer: %w", err)
	}
	if err := s.generation.runGeneration(ctx, groupIDs, invoicer.ID, false); err != nil {
		return err
	}
	if err := s.generation.ValidateInvoices(ctx, invoicer.ID); err != nil {
		return err
	}
	s.logger.Info("invoice cleanup successfully finished")
	return nil
}

func (s *InvoiceCleanupService) cleanGroup(ctx context.Context, repos TransactionalRepositories, groupID uuid.UUID, today time.Time) error {
	group, err := repos.Groups().FindByID(ctx, groupID)
	if err != nil {
		return err
	}
	contracts, err := repos.Contracts().FindByGroup(ctx, groupID)
	if err != nil {
		return err
	}
	group.RefreshDerivedDates(contracts)

	since := group.CleanSinceDate(today)
	contractIDs := make([]uuid.UUID, len(contracts))
	byID := make(map[uuid.UUID]*recurring.Contract, len(contracts))
	for i, c := range contracts {
		contractIDs[i] = c.ID
		byID[c.ID] = c
	}

	invoices, err := repos.Invoices().FindByContractsSince(ctx, contractIDs, since)
	if err != nil {
		return err
	}

	// Earliest cancelled date per contract becomes its rewound cursor, so
	// regeneration reproduces the same schedule.
	rewindTo := make(map[uuid.UUID]time.Time)
	for _, inv := range invoices {
		if inv.State == recurring.InvoiceStatePaid {
			continue
		}
		if err := inv.Cancel(); err != nil {
			return err
		}
		if err := repos.Invoices().Save(ctx, inv); err != nil {
			return err
		}
		for _, line := range inv.Lines {
			if earliest, ok := rewindTo[line.ContractID]; !ok || inv.Date.Before(earliest) {
				rewindTo[line.ContractID] = inv.Date
			}
		}
	}

	for contractID, to := range rewindTo {
		contract, ok := byID[contractID]
		if !ok {
			continue
		}
		contract.RewindNextInvoiceDate(to)
		if err := repos.Contracts().Save(ctx, contract); err != nil {
			return err
		}
	}

	group.RefreshDerivedDates(contracts)
	return repos.Groups().Save(ctx, group)
}
