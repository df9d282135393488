package recurring

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ContractRepository persists sponsorship contracts
type ContractRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Contract, error)
	FindByGroup(ctx context.Context, groupID uuid.UUID) ([]*Contract, error)
	Save(ctx context.Context, contract *Contract) error
}

// ContractGroupRepository persists contract groups
type ContractGroupRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ContractGroup, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*ContractGroup, error)
	// FindDue returns groups whose derived next invoice date is set,
	// in stable creation order.
	FindDue(ctx context.Context) ([]*ContractGroup, error)
	Save(ctx context.Context, group *ContractGroup) error
}

// InvoiceRepository persists generated invoices together with their lines
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByInvoicer(ctx context.Context, invoicerID uuid.UUID) ([]*Invoice, error)
	// FindByContractsSince returns the non-cancelled invoices carrying at
	// least one line of the given contracts, dated on or after since.
	FindByContractsSince(ctx context.Context, contractIDs []uuid.UUID, since time.Time) ([]*Invoice, error)
	Save(ctx context.Context, invoice *Invoice) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// InvoicerRepository persists generation run tokens
type InvoicerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoicer, error)
	Save(ctx context.Context, invoicer *Invoicer) error
}
