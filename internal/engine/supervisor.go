package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"auction-engine/internal/auctionerrors"
	model "auction-engine/internal/models"
	"auction-engine/internal/repository"
	"auction-engine/utils"
)

const (
	// DefaultSweepInterval is how often the expiry sweep runs.
	DefaultSweepInterval = time.Second
	// DefaultEvictGrace is how long a closed auction's machine stays in
	// memory after its last observer leaves.
	DefaultEvictGrace = 5 * time.Minute
)

// machineEntry tracks one live machine plus the supervisor's bookkeeping:
// when it closed, its final outcome, and whether the persisted status still
// needs a (re)write.
type machineEntry struct {
	machine     *StateMachine
	closedAt    time.Time
	winnerID    *int64
	statusDirty bool
}

// Supervisor owns the registry of live auction state machines, materializes
// them lazily from the store, force-closes expired auctions on a timer, and
// evicts closed machines nobody is watching anymore.
type Supervisor struct {
	store         repository.AuctionStore
	hub           *Hub
	sweepInterval time.Duration
	evictGrace    time.Duration

	mu       sync.Mutex
	machines map[int64]*machineEntry
}

// NewSupervisor creates a supervisor over the given store and hub
func NewSupervisor(store repository.AuctionStore, hub *Hub, sweepInterval, evictGrace time.Duration) *Supervisor {
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}
	if evictGrace <= 0 {
		evictGrace = DefaultEvictGrace
	}
	return &Supervisor{
		store:         store,
		hub:           hub,
		sweepInterval: sweepInterval,
		evictGrace:    evictGrace,
		machines:      make(map[int64]*machineEntry),
	}
}

// Create persists a new pending auction and materializes its machine
func (s *Supervisor) Create(ctx context.Context, versionID int64, startingBid, reservePrice float64, durationMinutes int) (int64, error) {
	if startingBid <= 0 || reservePrice < 0 || durationMinutes <= 0 {
		return 0, fmt.Errorf("supervisor: invalid auction parameters: %w", auctionerrors.ErrInvalidBid)
	}

	now := time.Now().UTC()
	auction := model.Auction{
		VersionID:       versionID,
		StartingBid:     startingBid,
		ReservePrice:    reservePrice,
		DurationMinutes: durationMinutes,
		Status:          model.StatusPending,
		CreatedAt:       now,
		EndsAt:          now.Add(time.Duration(durationMinutes) * time.Minute),
	}

	id, err := s.store.CreateAuction(ctx, auction)
	if err != nil {
		return 0, fmt.Errorf("supervisor: create auction: %w", err)
	}
	auction.ID = id

	s.mu.Lock()
	s.machines[id] = &machineEntry{machine: NewStateMachine(auction)}
	s.mu.Unlock()

	utils.Info("supervisor: auction created", map[string]any{
		"auction_id": id,
		"version_id": versionID,
	})
	return id, nil
}

// Machine returns the live state machine for an auction, loading its
// persisted state on first reference
func (s *Supervisor) Machine(ctx context.Context, auctionID int64) (*StateMachine, error) {
	s.mu.Lock()
	if entry, ok := s.machines[auctionID]; ok {
		s.mu.Unlock()
		return entry.machine, nil
	}
	s.mu.Unlock()

	// Load outside the registry lock; a concurrent load of the same auction
	// is resolved below by keeping whichever machine registered first.
	auction, err := s.store.LoadAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.machines[auctionID]; ok {
		return entry.machine, nil
	}
	entry := &machineEntry{machine: NewStateMachine(auction)}
	if auction.Status == model.StatusClosed {
		entry.closedAt = time.Now().UTC()
	}
	s.machines[auctionID] = entry
	return entry.machine, nil
}

// Start activates a pending auction, persists the transition, and broadcasts it
func (s *Supervisor) Start(ctx context.Context, auctionID int64) (model.AuctionSnapshot, error) {
	machine, err := s.Machine(ctx, auctionID)
	if err != nil {
		return model.AuctionSnapshot{}, err
	}

	snap, err := machine.Start()
	if err != nil {
		return model.AuctionSnapshot{}, err
	}

	if err := s.store.UpdateStatus(ctx, auctionID, model.StatusActive, nil); err != nil {
		utils.Error("supervisor: failed to persist auction start", map[string]any{
			"auction_id": auctionID,
			"error":      err.Error(),
		})
		return model.AuctionSnapshot{}, fmt.Errorf("supervisor: persist start of auction %d: %w", auctionID, auctionerrors.ErrStoreWriteFailed)
	}

	s.hub.Publish(auctionID, NewStatusEvent(snap))
	utils.Info("supervisor: auction started", map[string]any{
		"auction_id": auctionID,
		"ends_at":    snap.EndsAt,
	})
	return snap, nil
}

// End closes an auction by explicit command. Racing the expiry timer is safe:
// whichever close lands first determines the one outcome and broadcasts the
// one transition event.
func (s *Supervisor) End(ctx context.Context, auctionID int64) (CloseResult, error) {
	machine, err := s.Machine(ctx, auctionID)
	if err != nil {
		return CloseResult{}, err
	}
	return s.closeMachine(ctx, auctionID, machine, time.Now().UTC()), nil
}

// Status returns a consistent snapshot of an auction's live state
func (s *Supervisor) Status(ctx context.Context, auctionID int64) (model.AuctionSnapshot, error) {
	machine, err := s.Machine(ctx, auctionID)
	if err != nil {
		return model.AuctionSnapshot{}, err
	}
	return machine.Snapshot(), nil
}

// Run drives the expiry sweep until the context is cancelled
func (s *Supervisor) Run(ctx context.Context) {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.sweep(ctx, now.UTC())
		}
	}
}

// sweep force-closes expired active auctions, retries pending status writes,
// and evicts closed machines past the grace period with no observers. An
// error on one auction never halts the sweep for the others.
func (s *Supervisor) sweep(ctx context.Context, now time.Time) {
	type sweepItem struct {
		id    int64
		entry *machineEntry
		dirty bool
	}

	s.mu.Lock()
	items := make([]sweepItem, 0, len(s.machines))
	for id, entry := range s.machines {
		items = append(items, sweepItem{id: id, entry: entry, dirty: entry.statusDirty})
	}
	s.mu.Unlock()

	for _, item := range items {
		snap := item.entry.machine.Snapshot()

		switch {
		case snap.Status == model.StatusActive && !now.Before(snap.EndsAt):
			s.closeMachine(ctx, item.id, item.entry.machine, now)

		case item.dirty:
			s.retryStatusWrite(ctx, item.id, item.entry)

		case snap.Status == model.StatusClosed:
			s.maybeEvict(item.id, item.entry, now)
		}
	}
}

// closeMachine performs the shared close path used by both the explicit end
// command and the expiry timer. Only the caller that actually performed the
// transition persists and broadcasts it.
func (s *Supervisor) closeMachine(ctx context.Context, auctionID int64, machine *StateMachine, effectiveTime time.Time) CloseResult {
	result := machine.Close(effectiveTime)
	if result.AlreadyClosed {
		return result
	}

	s.mu.Lock()
	entry, ok := s.machines[auctionID]
	if ok {
		entry.closedAt = effectiveTime
		entry.winnerID = result.WinnerID
	}
	s.mu.Unlock()

	if err := s.store.UpdateStatus(ctx, auctionID, model.StatusClosed, result.WinnerID); err != nil {
		// Logged as a consistency event; the sweep retries on its next tick.
		utils.Error("supervisor: failed to persist auction close", map[string]any{
			"auction_id": auctionID,
			"error":      err.Error(),
		})
		if ok {
			s.mu.Lock()
			entry.statusDirty = true
			s.mu.Unlock()
		}
	}

	s.hub.Publish(auctionID, NewClosedEvent(result))
	utils.Info("supervisor: auction closed", map[string]any{
		"auction_id":  auctionID,
		"winner_id":   result.WinnerID,
		"reserve_met": result.ReserveMet,
	})
	return result
}

// retryStatusWrite re-attempts a failed close persistence
func (s *Supervisor) retryStatusWrite(ctx context.Context, auctionID int64, entry *machineEntry) {
	s.mu.Lock()
	winner := entry.winnerID
	s.mu.Unlock()

	if err := s.store.UpdateStatus(ctx, auctionID, model.StatusClosed, winner); err != nil {
		utils.Warn("supervisor: status write retry failed", map[string]any{
			"auction_id": auctionID,
			"error":      err.Error(),
		})
		return
	}

	s.mu.Lock()
	entry.statusDirty = false
	s.mu.Unlock()
}

// maybeEvict drops a closed machine once it has been closed past the grace
// period with nobody watching. In-flight bid evaluations are unaffected:
// they hold the machine itself, not the registry entry.
func (s *Supervisor) maybeEvict(auctionID int64, entry *machineEntry, now time.Time) {
	s.mu.Lock()
	closedAt := entry.closedAt
	s.mu.Unlock()

	if closedAt.IsZero() || now.Sub(closedAt) < s.evictGrace {
		return
	}
	if s.hub.ObserverCount(auctionID) > 0 {
		return
	}

	s.mu.Lock()
	delete(s.machines, auctionID)
	s.mu.Unlock()

	utils.Debug("supervisor: auction machine evicted", map[string]any{
		"auction_id": auctionID,
	})
}
