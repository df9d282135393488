package recurring

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sponsorship/backend/internal/domain/recurring"
	"github.com/sponsorship/backend/internal/domain/shared"
)

// memStore is an in-memory implementation of the repository interfaces and
// the transaction scope, shared by the service tests.
type memStore struct {
	groups    map[uuid.UUID]*recurring.ContractGroup
	contracts map[uuid.UUID]*recurring.Contract
	invoices  map[uuid.UUID]*recurring.Invoice
	invoicers map[uuid.UUID]*recurring.Invoicer

	contractOrder []uuid.UUID
	invoiceOrder  []uuid.UUID
}

func newMemStore() *memStore {
	return &memStore{
		groups:    make(map[uuid.UUID]*recurring.ContractGroup),
		contracts: make(map[uuid.UUID]*recurring.Contract),
		invoices:  make(map[uuid.UUID]*recurring.Invoice),
		invoicers: make(map[uuid.UUID]*recurring.Invoicer),
	}
}

func (m *memStore) addGroup(g *recurring.ContractGroup)  { m.groups[g.ID] = g }
func (m *memStore) addContract(c *recurring.Contract) {
	m.contracts[c.ID] = c
	m.contractOrder = append(m.contractOrder, c.ID)
}

func (m *memStore) activeInvoices() []*recurring.Invoice {
	var out []*recurring.Invoice
	for _, id := range m.invoiceOrder {
		if inv, ok := m.invoices[id]; ok && inv.State != recurring.InvoiceStateCancelled {
			out = append(out, inv)
		}
	}
	return out
}

// schedule returns the (contract, date) pairs of non-cancelled invoices
func (m *memStore) schedule() map[uuid.UUID][]time.Time {
	out := make(map[uuid.UUID][]time.Time)
	for _, inv := range m.activeInvoices() {
		for _, line := range inv.Lines {
			out[line.ContractID] = append(out[line.ContractID], inv.Date)
		}
	}
	return out
}

type memGroupRepo struct{ s *memStore }

func (r memGroupRepo) FindByID(_ context.Context, id uuid.UUID) (*recurring.ContractGroup, error) {
	g, ok := r.s.groups[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return g, nil
}

func (r memGroupRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*recurring.ContractGroup, error) {
	var out []*recurring.ContractGroup
	for _, id := range ids {
		if g, ok := r.s.groups[id]; ok {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r memGroupRepo) FindDue(_ context.Context) ([]*recurring.ContractGroup, error) {
	var out []*recurring.ContractGroup
	for _, g := range r.s.groups {
		if g.NextInvoiceDate != nil {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r memGroupRepo) Save(_ context.Context, g *recurring.ContractGroup) error {
	r.s.groups[g.ID] = g
	return nil
}

type memContractRepo struct{ s *memStore }

func (r memContractRepo) FindByID(_ context.Context, id uuid.UUID) (*recurring.Contract, error) {
	c, ok := r.s.contracts[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return c, nil
}

func (r memContractRepo) FindByGroup(_ context.Context, groupID uuid.UUID) ([]*recurring.Contract, error) {
	var out []*recurring.Contract
	for _, id := range r.s.contractOrder {
		if c := r.s.contracts[id]; c.GroupID == groupID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r memContractRepo) Save(_ context.Context, c *recurring.Contract) error {
	if _, ok := r.s.contracts[c.ID]; !ok {
		r.s.contractOrder = append(r.s.contractOrder, c.ID)
	}
	r.s.contracts[c.ID] = c
	return nil
}

type memInvoiceRepo struct{ s *memStore }

func (r memInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*recurring.Invoice, error) {
	inv, ok := r.s.invoices[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return inv, nil
}

func (r memInvoiceRepo) FindByInvoicer(_ context.Context, invoicerID uuid.UUID) ([]*recurring.Invoice, error) {
	var out []*recurring.Invoice
	for _, id := range r.s.invoiceOrder {
		if inv, ok := r.s.invoices[id]; ok && inv.InvoicerID == invoicerID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r memInvoiceRepo) FindByContractsSince(_ context.Context, contractIDs []uuid.UUID, since time.Time) ([]*recurring.Invoice, error) {
	wanted := make(map[uuid.UUID]bool, len(contractIDs))
	for _, id := range contractIDs {
		wanted[id] = true
	}
	var out []*recurring.Invoice
	for _, id := range r.s.invoiceOrder {
		inv, ok := r.s.invoices[id]
		if !ok || inv.State == recurring.InvoiceStateCancelled || inv.Date.Before(since) {
			continue
		}
		for _, line := range inv.Lines {
			if wanted[line.ContractID] {
				out = append(out, inv)
				break
			}
		}
	}
	return out, nil
}

func (r memInvoiceRepo) Save(_ context.Context, inv *recurring.Invoice) error {
	if _, ok := r.s.invoices[inv.ID]; !ok {
		r.s.invoiceOrder = append(r.s.invoiceOrder, inv.ID)
	}
	r.s.invoices[inv.ID] = inv
	return nil
}

func (r memInvoiceRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.s.invoices, id)
	return nil
}

type memInvoicerRepo struct{ s *memStore }

func (r memInvoicerRepo) FindByID(_ context.Context, id uuid.UUID) (*recurring.Invoicer, error) {
	inv, ok := r.s.invoicers[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return inv, nil
}

func (r memInvoicerRepo) Save(_ context.Context, inv *recurring.Invoicer) error {
	r.s.invoicers[inv.ID] = inv
	return nil
}

type memScope struct{ s *memStore }

func (m memScope) Groups() recurring.ContractGroupRepository { return memGroupRepo{m.s} }
func (m memScope) Contracts() recurring.ContractRepository   { return memContractRepo{m.s} }
func (m memScope) Invoices() recurring.InvoiceRepository     { return memInvoiceRepo{m.s} }
func (m memScope) Invoicers() recurring.InvoicerRepository   { return memInvoicerRepo{m.s} }

func (m memScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(m)
}

// enqueuedJob records one Enqueue call
type enqueuedJob struct {
	channel string
	jobType string
	payload []byte
}

type memQueue struct {
	jobs         []enqueuedJob
	startedCount int64
}

func (q *memQueue) Enqueue(_ context.Context, channel, jobType string, payload any) (uuid.UUID, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return uuid.Nil, err
	}
	q.jobs = append(q.jobs, enqueuedJob{channel: channel, jobType: jobType, payload: data})
	return uuid.New(), nil
}

func (q *memQueue) CountByChannelAndState(_ context.Context, channel string, state JobState) (int64, error) {
	if channel == ChannelRecurringInvoicer && state == JobStateStarted {
		return q.startedCount, nil
	}
	return 0, nil
}
