package recurring

import (
	"context"

	"github.com/google/uuid"
	"github.com/sponsorship/backend/internal/domain/recurring"
)

// ChannelRecurringInvoicer is the task-queue channel carrying generation and
// cleanup jobs. The queue guarantees one worker per channel, so jobs on it
// run serially.
const ChannelRecurringInvoicer = "recurring.invoicer"

// Job types dispatched on the invoicer channel
const (
	JobTypeGenerateInvoices = "generate_invoices"
	JobTypeCleanInvoices    = "clean_invoices"
)

// JobState is the lifecycle state of a queued job as observed through the
// TaskQueue port
type JobState string

const (
	JobStatePending JobState = "pending"
	JobStateStarted JobState = "started"
	JobStateDone    JobState = "done"
	JobStateFailed  JobState = "failed"
)

// TaskQueue is the external task queue the engine offloads work to:
// at-least-once delivery, per-channel serial execution.
type TaskQueue interface {
	Enqueue(ctx context.Context, channel, jobType string, payload any) (uuid.UUID, error)
	CountByChannelAndState(ctx context.Context, channel string, state JobState) (int64, error)
}

// TransactionalRepositories exposes the repositories bound to one running
// transaction
type TransactionalRepositories interface {
	Groups() recurring.ContractGroupRepository
	Contracts() recurring.ContractRepository
	Invoices() recurring.InvoiceRepository
	Invoicers() recurring.InvoicerRepository
}

// TransactionScope executes a function atomically. Each call is one
// checkpoint: committed work survives a later failure, a failing function
// rolls back only its own writes.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// GenerationJobPayload is the payload of a generate_invoices job
type GenerationJobPayload struct {
	GroupIDs               []uuid.UUID `json:"group_ids"`
	InvoicerID             uuid.UUID   `json:"invoicer_id"`
	SuppressNextDateUpdate bool        `json:"suppress_next_date_update,omitempty"`
}

// CleanJobPayload is the payload of a clean_invoices job
type CleanJobPayload struct {
	GroupIDs []uuid.UUID `json:"group_ids"`
}
