package inventory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/erp/ledger/internal/domain/catalog"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{events: make([]shared.DomainEvent, 0)}
}

func (m *MockEventPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *MockEventPublisher) GetEvents() []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]shared.DomainEvent, len(m.events))
	copy(result, m.events)
	return result
}

type memMaterialRepo struct {
	mu        sync.Mutex
	materials map[uuid.UUID]*catalog.Material
}

func newMemMaterialRepo(materials ...*catalog.Material) *memMaterialRepo {
	r := &memMaterialRepo{materials: make(map[uuid.UUID]*catalog.Material)}
	for _, m := range materials {
		r.materials[m.ID] = m
	}
	return r
}

func (r *memMaterialRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Material, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.materials[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	c := *m
	return &c, nil
}

func (r *memMaterialRepo) FindActive(_ context.Context) ([]catalog.Material, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []catalog.Material
	for _, m := range r.materials {
		if m.Active {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *memMaterialRepo) FindActiveWithReorderPoint(ctx context.Context) ([]catalog.Material, error) {
	active, _ := r.FindActive(ctx)
	var out []catalog.Material
	for _, m := range active {
		if m.HasReorderPoint() {
			out = append(out, m)
		}
	}
	return out, nil
}

type memLedgerRepo struct {
	mu        sync.Mutex
	entries   []inventory.LedgerEntry
	reversals []inventory.LedgerReversal
}

func newMemLedgerRepo() *memLedgerRepo {
	return &memLedgerRepo{}
}

func (r *memLedgerRepo) Create(_ context.Context, entry *inventory.LedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.MaterialID == entry.MaterialID && e.Sequence == entry.Sequence {
			return fmt.Errorf("duplicate sequence %d", entry.Sequence)
		}
	}
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memLedgerRepo) Snapshot(_ context.Context, materialID uuid.UUID) (inventory.BalanceSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := inventory.BalanceSnapshot{Balance: decimal.Zero}
	for _, e := range r.entries {
		if e.MaterialID != materialID {
			continue
		}
		s.Balance = s.Balance.Add(e.Delta())
		s.EntryCount++
		if e.Sequence > s.LastSequence {
			s.LastSequence = e.Sequence
		}
	}
	return s, nil
}

func (r *memLedgerRepo) BalancesByMaterial(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wanted := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	out := make(map[uuid.UUID]decimal.Decimal)
	for _, e := range r.entries {
		if wanted[e.MaterialID] {
			out[e.MaterialID] = out[e.MaterialID].Add(e.Delta())
		}
	}
	return out, nil
}

func (r *memLedgerRepo) FindByMaterial(_ context.Context, materialID uuid.UUID, filter shared.Filter) ([]inventory.LedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []inventory.LedgerEntry
	for _, e := range r.entries {
		if e.MaterialID == materialID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	if filter.Unpaged() {
		return out, nil
	}
	start := filter.Offset()
	if start >= len(out) {
		return []inventory.LedgerEntry{}, nil
	}
	end := start + filter.PageSize
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], nil
}

func (r *memLedgerRepo) CountByMaterial(_ context.Context, materialID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, e := range r.entries {
		if e.MaterialID == materialID {
			n++
		}
	}
	return n, nil
}

func (r *memLedgerRepo) FindByReference(_ context.Context, refType inventory.ReferenceType, refID string) ([]inventory.LedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []inventory.LedgerEntry
	for _, e := range r.entries {
		if e.ReferenceType == refType && e.ReferenceID == refID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memLedgerRepo) DeleteByReference(_ context.Context, refType inventory.ReferenceType, refID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.entries[:0]
	var n int64
	for _, e := range r.entries {
		if e.ReferenceType == refType && e.ReferenceID == refID {
			n++
			continue
		}
		kept = append(kept, e)
	}
	r.entries = kept
	return n, nil
}

func (r *memLedgerRepo) LastEntry(ctx context.Context, materialID uuid.UUID) (*inventory.LedgerEntry, error) {
	entries, _ := r.FindByMaterial(ctx, materialID, shared.Filter{})
	if len(entries) == 0 {
		return nil, shared.ErrNotFound
	}
	return &entries[len(entries)-1], nil
}

func (r *memLedgerRepo) CreateReversal(_ context.Context, reversal *inventory.LedgerReversal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reversals = append(r.reversals, *reversal)
	return nil
}

func (r *memLedgerRepo) FindReversals(_ context.Context, materialID uuid.UUID) ([]inventory.LedgerReversal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []inventory.LedgerReversal
	for _, rev := range r.reversals {
		if rev.MaterialID == materialID {
			out = append(out, rev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func (r *memLedgerRepo) LastReversedSequence(ctx context.Context, materialID uuid.UUID) (int64, error) {
	reversals, _ := r.FindReversals(ctx, materialID)
	if len(reversals) == 0 {
		return 0, nil
	}
	return reversals[len(reversals)-1].Sequence, nil
}

func (r *memLedgerRepo) all() []inventory.LedgerEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]inventory.LedgerEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

var (
	_ catalog.MaterialRepository      = (*memMaterialRepo)(nil)
	_ inventory.LedgerEntryRepository = (*memLedgerRepo)(nil)
)
