package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/erp/ledger/internal/domain/catalog"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MovementObserver is notified after a stock movement has committed
type MovementObserver interface {
	CheckAfterMovement(ctx context.Context, materialID uuid.UUID) error
}

// LedgerService appends to and reads the per-material stock ledger.
// Appends for one material are serialized by the MaterialLocker and run
// read-balance, post and persist inside one transaction.
type LedgerService struct {
	materialRepo   catalog.MaterialRepository
	ledgerRepo     inventory.LedgerEntryRepository
	txScope        TransactionScope
	locker         MaterialLocker
	eventPublisher shared.EventPublisher
	observer       MovementObserver
	logger         *zap.Logger
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	materialRepo catalog.MaterialRepository,
	ledgerRepo inventory.LedgerEntryRepository,
	txScope TransactionScope,
	locker MaterialLocker,
	logger *zap.Logger,
) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{
		materialRepo: materialRepo,
		ledgerRepo:   ledgerRepo,
		txScope:      txScope,
		locker:       locker,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *LedgerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMovementObserver sets the observer called after each committed movement
func (s *LedgerService) SetMovementObserver(observer MovementObserver) {
	s.observer = observer
}

// Append validates and appends one entry under the material's lock in its own transaction
func (s *LedgerService) Append(ctx context.Context, req AppendEntryRequest) (*inventory.LedgerEntry, error) {
	entry, err := req.toEntry()
	if err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, entry.MaterialID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		return s.post(ctx, repos, entry)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("ledger entry appended",
		zap.String("material_id", entry.MaterialID.String()),
		zap.Int64("sequence", entry.Sequence),
		zap.String("transaction_type", entry.TransactionType.String()),
		zap.String("stock_after", entry.StockAfter.String()),
	)
	s.notifyMovement(ctx, entry.MaterialID)
	return entry, nil
}

// AppendInScope appends an entry inside a transaction owned by the caller.
// The caller must hold the material's lock for the lifetime of the transaction.
func (s *LedgerService) AppendInScope(ctx context.Context, repos TransactionalRepositories, req AppendEntryRequest) (*inventory.LedgerEntry, error) {
	entry, err := req.toEntry()
	if err != nil {
		return nil, err
	}
	if err := s.post(ctx, repos, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// post positions entry after the material's current tail and persists it
func (s *LedgerService) post(ctx context.Context, repos TransactionalRepositories, entry *inventory.LedgerEntry) error {
	if _, err := repos.MaterialRepo().FindByID(ctx, entry.MaterialID); err != nil {
		return err
	}

	snapshot, err := repos.LedgerRepo().Snapshot(ctx, entry.MaterialID)
	if err != nil {
		return fmt.Errorf("read ledger balance: %w", err)
	}

	if snapshot.EntryCount > 0 {
		last, err := repos.LedgerRepo().LastEntry(ctx, entry.MaterialID)
		if err != nil {
			return fmt.Errorf("read ledger tail: %w", err)
		}
		if err := entry.FollowTail(last.TransactionDate); err != nil {
			return err
		}
	}

	highWater, err := s.highWater(ctx, repos, entry.MaterialID, snapshot.LastSequence)
	if err != nil {
		return err
	}
	entry.Post(snapshot.Balance, highWater)
	if err := repos.LedgerRepo().Create(ctx, entry); err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}
	return nil
}

// Reverse deletes the entries produced by one business event.
// Returns NOT_FOUND when the reference has no entries.
func (s *LedgerService) Reverse(ctx context.Context, referenceType inventory.ReferenceType, referenceID string) ([]inventory.LedgerEntry, error) {
	entries, err := s.ledgerRepo.FindByReference(ctx, referenceType, referenceID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, shared.Wrap(shared.ErrNotFound, fmt.Sprintf("No ledger entries for %s %s", referenceType, referenceID))
	}

	materialIDs := distinctMaterials(entries)
	for _, materialID := range materialIDs {
		unlock, err := s.locker.Lock(ctx, materialID)
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	var reversed []inventory.LedgerEntry
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var txErr error
		reversed, txErr = s.ReverseInScope(ctx, repos, referenceType, referenceID)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	s.publishReversed(ctx, reversed)
	for _, materialID := range materialIDs {
		s.notifyMovement(ctx, materialID)
	}
	return reversed, nil
}

// ReverseInScope deletes the entries of a reference inside a caller-owned transaction.
// Returns NOT_FOUND when the reference has no entries.
func (s *LedgerService) ReverseInScope(ctx context.Context, repos TransactionalRepositories, referenceType inventory.ReferenceType, referenceID string) ([]inventory.LedgerEntry, error) {
	entries, err := repos.LedgerRepo().FindByReference(ctx, referenceType, referenceID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, shared.Wrap(shared.ErrNotFound, fmt.Sprintf("No ledger entries for %s %s", referenceType, referenceID))
	}

	highWater := make(map[uuid.UUID]int64)
	for _, materialID := range distinctMaterials(entries) {
		snapshot, err := repos.LedgerRepo().Snapshot(ctx, materialID)
		if err != nil {
			return nil, fmt.Errorf("read ledger balance: %w", err)
		}
		hw, err := s.highWater(ctx, repos, materialID, snapshot.LastSequence)
		if err != nil {
			return nil, err
		}
		highWater[materialID] = hw
	}

	deleted, err := repos.LedgerRepo().DeleteByReference(ctx, referenceType, referenceID)
	if err != nil {
		return nil, fmt.Errorf("delete ledger entries: %w", err)
	}
	if deleted != int64(len(entries)) {
		return nil, shared.Wrap(shared.ErrConcurrencyConflict, fmt.Sprintf(
			"ledger entries for %s %s changed during reversal", referenceType, referenceID))
	}
	for i := range entries {
		reversal := inventory.NewLedgerReversal(&entries[i], highWater[entries[i].MaterialID])
		if err := repos.LedgerRepo().CreateReversal(ctx, reversal); err != nil {
			return nil, fmt.Errorf("record ledger reversal: %w", err)
		}
	}
	return entries, nil
}

// highWater is the last sequence ever allocated for a material. Removed
// entries keep their sequence reserved so positions are never reused.
func (s *LedgerService) highWater(ctx context.Context, repos TransactionalRepositories, materialID uuid.UUID, lastSequence int64) (int64, error) {
	reversed, err := repos.LedgerRepo().LastReversedSequence(ctx, materialID)
	if err != nil {
		return 0, fmt.Errorf("read reversed sequences: %w", err)
	}
	if reversed > lastSequence {
		return reversed, nil
	}
	return lastSequence, nil
}

// History returns one page of a material's ledger in append order and the total entry count
func (s *LedgerService) History(ctx context.Context, materialID uuid.UUID, filter LedgerHistoryFilter) ([]inventory.LedgerEntry, int64, error) {
	if _, err := s.materialRepo.FindByID(ctx, materialID); err != nil {
		return nil, 0, err
	}

	entries, err := s.ledgerRepo.FindByMaterial(ctx, materialID, shared.Page(filter.Page, filter.PageSize))
	if err != nil {
		return nil, 0, err
	}
	total, err := s.ledgerRepo.CountByMaterial(ctx, materialID)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// Verify re-walks a material's whole chain and reports the first entry whose
// StockAfter disagrees with the running balance.
func (s *LedgerService) Verify(ctx context.Context, materialID uuid.UUID) error {
	entries, err := s.ledgerRepo.FindByMaterial(ctx, materialID, shared.Filter{})
	if err != nil {
		return err
	}
	reversals, err := s.ledgerRepo.FindReversals(ctx, materialID)
	if err != nil {
		return err
	}
	if err := inventory.VerifyChain(entries, reversals...); err != nil {
		s.logger.Error("ledger chain verification failed",
			zap.String("material_id", materialID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *LedgerService) notifyMovement(ctx context.Context, materialID uuid.UUID) {
	if s.observer == nil {
		return
	}
	if err := s.observer.CheckAfterMovement(ctx, materialID); err != nil {
		s.logger.Warn("stock check after movement failed",
			zap.String("material_id", materialID.String()),
			zap.Error(err),
		)
	}
}

func (s *LedgerService) publishReversed(ctx context.Context, entries []inventory.LedgerEntry) {
	if s.eventPublisher == nil {
		return
	}
	events := make([]shared.DomainEvent, 0, len(entries))
	for i := range entries {
		events = append(events, inventory.NewLedgerEntryReversedEvent(&entries[i]))
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish ledger reversal events", zap.Error(err))
	}
}

// distinctMaterials returns the materials touched by entries in a stable order,
// so that multi-material reversals always lock in the same sequence.
func distinctMaterials(entries []inventory.LedgerEntry) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(entries))
	ids := make([]uuid.UUID, 0, len(entries))
	for i := range entries {
		id := entries[i].MaterialID
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}
