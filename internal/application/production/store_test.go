package production

import (
	"context"
	"sort"
	"sync"

	inventoryapp "github.com/erp/ledger/internal/application/inventory"
	"github.com/erp/ledger/internal/domain/catalog"
	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/production"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memStore is an in-memory database whose transactions are serialized and
// rolled back on error.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	materials    map[uuid.UUID]catalog.Material
	prices       []catalog.SupplierPrice
	projects     map[uuid.UUID]finance.Project
	consumptions map[uuid.UUID]production.Consumption
	ledger       []inventory.LedgerEntry
	reversals    []inventory.LedgerReversal

	failLedgerCreate error
	conflictsLeft    int
}

func newMemStore() *memStore {
	return &memStore{
		materials:    make(map[uuid.UUID]catalog.Material),
		projects:     make(map[uuid.UUID]finance.Project),
		consumptions: make(map[uuid.UUID]production.Consumption),
	}
}

func (s *memStore) Execute(_ context.Context, fn func(repos inventoryapp.TransactionalRepositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	ledgerBefore := append([]inventory.LedgerEntry(nil), s.ledger...)
	reversalsBefore := append([]inventory.LedgerReversal(nil), s.reversals...)
	consumptionsBefore := make(map[uuid.UUID]production.Consumption, len(s.consumptions))
	for k, v := range s.consumptions {
		consumptionsBefore[k] = v
	}
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.ledger = ledgerBefore
		s.reversals = reversalsBefore
		s.consumptions = consumptionsBefore
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *memStore) LedgerRepo() inventory.LedgerEntryRepository       { return memLedger{s} }
func (s *memStore) ConsumptionRepo() production.ConsumptionRepository { return memConsumptions{s} }
func (s *memStore) MaterialRepo() catalog.MaterialRepository          { return memMaterials{s} }
func (s *memStore) PriceRepo() catalog.SupplierPriceRepository        { return memPrices{s} }

func (s *memStore) ledgerEntries() []inventory.LedgerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]inventory.LedgerEntry(nil), s.ledger...)
}

func (s *memStore) consumptionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.consumptions)
}

type memMaterials struct{ s *memStore }

func (r memMaterials) FindByID(_ context.Context, id uuid.UUID) (*catalog.Material, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.materials[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &m, nil
}

func (r memMaterials) FindActive(_ context.Context) ([]catalog.Material, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []catalog.Material
	for _, m := range r.s.materials {
		if m.Active {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r memMaterials) FindActiveWithReorderPoint(ctx context.Context) ([]catalog.Material, error) {
	active, _ := r.FindActive(ctx)
	var out []catalog.Material
	for _, m := range active {
		if m.HasReorderPoint() {
			out = append(out, m)
		}
	}
	return out, nil
}

type memPrices struct{ s *memStore }

func (r memPrices) FindActiveByMaterial(_ context.Context, materialID uuid.UUID) ([]catalog.SupplierPrice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []catalog.SupplierPrice
	for _, p := range r.s.prices {
		if p.MaterialID == materialID && p.Active {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Price.LessThan(out[j].Price) })
	return out, nil
}

type memProjects struct{ s *memStore }

func (r memProjects) FindByID(_ context.Context, id uuid.UUID) (*finance.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.projects[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &p, nil
}

type memConsumptions struct{ s *memStore }

func (r memConsumptions) FindByID(_ context.Context, id uuid.UUID) (*production.Consumption, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.consumptions[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &c, nil
}

func (r memConsumptions) FindByProject(_ context.Context, projectID uuid.UUID) ([]production.Consumption, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []production.Consumption
	for _, c := range r.s.consumptions {
		if c.ProjectID == projectID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memConsumptions) SumCostByProject(_ context.Context, projectID uuid.UUID) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	total := decimal.Zero
	for _, c := range r.s.consumptions {
		if c.ProjectID == projectID {
			total = total.Add(c.TotalCost)
		}
	}
	return total, nil
}

func (r memConsumptions) Create(_ context.Context, c *production.Consumption) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.consumptions[c.ID] = *c
	return nil
}

func (r memConsumptions) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.consumptions[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.s.consumptions, id)
	return nil
}

type memLedger struct{ s *memStore }

func (r memLedger) Create(_ context.Context, entry *inventory.LedgerEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failLedgerCreate != nil {
		return r.s.failLedgerCreate
	}
	if r.s.conflictsLeft > 0 {
		r.s.conflictsLeft--
		return shared.ErrConcurrencyConflict
	}
	r.s.ledger = append(r.s.ledger, *entry)
	return nil
}

func (r memLedger) Snapshot(_ context.Context, materialID uuid.UUID) (inventory.BalanceSnapshot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	snap := inventory.BalanceSnapshot{Balance: decimal.Zero}
	for _, e := range r.s.ledger {
		if e.MaterialID != materialID {
			continue
		}
		snap.Balance = snap.Balance.Add(e.Delta())
		snap.EntryCount++
		if e.Sequence > snap.LastSequence {
			snap.LastSequence = e.Sequence
		}
	}
	return snap, nil
}

func (r memLedger) BalancesByMaterial(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[uuid.UUID]decimal.Decimal)
	for _, id := range ids {
		for _, e := range r.s.ledger {
			if e.MaterialID == id {
				out[id] = out[id].Add(e.Delta())
			}
		}
	}
	return out, nil
}

func (r memLedger) FindByMaterial(_ context.Context, materialID uuid.UUID, _ shared.Filter) ([]inventory.LedgerEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []inventory.LedgerEntry
	for _, e := range r.s.ledger {
		if e.MaterialID == materialID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func (r memLedger) CountByMaterial(ctx context.Context, materialID uuid.UUID) (int64, error) {
	entries, _ := r.FindByMaterial(ctx, materialID, shared.Filter{})
	return int64(len(entries)), nil
}

func (r memLedger) FindByReference(_ context.Context, refType inventory.ReferenceType, refID string) ([]inventory.LedgerEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []inventory.LedgerEntry
	for _, e := range r.s.ledger {
		if e.ReferenceType == refType && e.ReferenceID == refID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r memLedger) DeleteByReference(_ context.Context, refType inventory.ReferenceType, refID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var kept []inventory.LedgerEntry
	var n int64
	for _, e := range r.s.ledger {
		if e.ReferenceType == refType && e.ReferenceID == refID {
			n++
			continue
		}
		kept = append(kept, e)
	}
	r.s.ledger = kept
	return n, nil
}

func (r memLedger) LastEntry(ctx context.Context, materialID uuid.UUID) (*inventory.LedgerEntry, error) {
	entries, _ := r.FindByMaterial(ctx, materialID, shared.Filter{})
	if len(entries) == 0 {
		return nil, shared.ErrNotFound
	}
	return &entries[len(entries)-1], nil
}

func (r memLedger) CreateReversal(_ context.Context, reversal *inventory.LedgerReversal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.reversals = append(r.s.reversals, *reversal)
	return nil
}

func (r memLedger) FindReversals(_ context.Context, materialID uuid.UUID) ([]inventory.LedgerReversal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []inventory.LedgerReversal
	for _, rev := range r.s.reversals {
		if rev.MaterialID == materialID {
			out = append(out, rev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func (r memLedger) LastReversedSequence(ctx context.Context, materialID uuid.UUID) (int64, error) {
	reversals, _ := r.FindReversals(ctx, materialID)
	if len(reversals) == 0 {
		return 0, nil
	}
	return reversals[len(reversals)-1].Sequence, nil
}
