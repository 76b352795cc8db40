package engine

import (
	"fmt"
	"sync"
	"time"

	"auction-engine/internal/auctionerrors"
	model "auction-engine/internal/models"
)

// RejectReason explains why a bid was not accepted.
type RejectReason string

const (
	ReasonTooLow    RejectReason = "too_low"
	ReasonNotActive RejectReason = "not_active"
)

// BidResult is the outcome of a single bid evaluation. On acceptance,
// PrevHighest/PrevBidder hold the superseded leader so the caller can roll
// the bid back if it cannot be made durable.
type BidResult struct {
	Accepted    bool
	Reason      RejectReason
	HighestBid  float64 // new highest when accepted; current highest when rejected as too low
	PrevHighest *float64
	PrevBidder  *int64
}

// CloseResult is the outcome of closing an auction. WinnerID is nil when the
// reserve price was not met or no bids were placed. AlreadyClosed reports
// that a previous Close already determined the outcome.
type CloseResult struct {
	AlreadyClosed bool
	WinnerID      *int64
	HighestBid    *float64
	ReserveMet    bool
}

// StateMachine is the sole authority over one auction's status and highest
// bid fields. Every operation runs under the instance's exclusive lock;
// the lock is never held across auctions and never while doing I/O.
type StateMachine struct {
	mu      sync.Mutex
	auction model.Auction
}

// NewStateMachine wraps a persisted auction in its in-memory state machine
func NewStateMachine(auction model.Auction) *StateMachine {
	return &StateMachine{auction: auction}
}

// ID returns the auction id this machine owns
func (m *StateMachine) ID() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.auction.ID
}

// Start transitions the auction from pending to active and fixes the
// absolute end time from the configured duration
func (m *StateMachine) Start() (model.AuctionSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.auction.Status != model.StatusPending {
		return model.AuctionSnapshot{}, fmt.Errorf("start auction %d from %s: %w",
			m.auction.ID, m.auction.Status, auctionerrors.ErrInvalidTransition)
	}

	now := time.Now().UTC()
	m.auction.Status = model.StatusActive
	m.auction.EndsAt = now.Add(time.Duration(m.auction.DurationMinutes) * time.Minute)
	return m.snapshotLocked(now), nil
}

// SubmitBid evaluates one bid against the current state. A bid is accepted
// iff the auction is active and the amount is strictly greater than the
// current highest bid, or at least the starting bid when no bid exists yet.
// Ties are rejected: the first bidder to reach a price level keeps the lead.
func (m *StateMachine) SubmitBid(bidderID int64, amount float64) BidResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.auction.Status != model.StatusActive {
		return BidResult{Reason: ReasonNotActive}
	}

	if m.auction.HighestBid == nil {
		if amount < m.auction.StartingBid {
			return BidResult{Reason: ReasonTooLow, HighestBid: m.auction.StartingBid}
		}
	} else if amount <= *m.auction.HighestBid {
		return BidResult{Reason: ReasonTooLow, HighestBid: *m.auction.HighestBid}
	}

	prevHighest := m.auction.HighestBid
	prevBidder := m.auction.HighestBidderID
	m.auction.HighestBid = &amount
	m.auction.HighestBidderID = &bidderID

	return BidResult{
		Accepted:    true,
		HighestBid:  amount,
		PrevHighest: prevHighest,
		PrevBidder:  prevBidder,
	}
}

// RevertBid undoes an accepted bid whose durability write failed. The revert
// only applies while the failed bid is still the current leader; if a newer
// bid has already superseded it there is nothing to restore. Reports whether
// a rollback happened.
func (m *StateMachine) RevertBid(failedAmount float64, failedBidder int64, prevHighest *float64, prevBidder *int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.auction.HighestBid == nil || *m.auction.HighestBid != failedAmount {
		return false
	}
	if m.auction.HighestBidderID == nil || *m.auction.HighestBidderID != failedBidder {
		return false
	}

	m.auction.HighestBid = prevHighest
	m.auction.HighestBidderID = prevBidder
	return true
}

// Close transitions the auction to closed and determines the winner: the
// highest bidder iff the highest bid met the reserve price. Closing an
// already closed auction is a no-op reported through AlreadyClosed, so the
// explicit end command and the expiry timer can race safely.
func (m *StateMachine) Close(effectiveTime time.Time) CloseResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.auction.Status == model.StatusClosed {
		return CloseResult{
			AlreadyClosed: true,
			HighestBid:    m.auction.HighestBid,
		}
	}

	m.auction.Status = model.StatusClosed
	m.auction.EndsAt = effectiveTime.UTC()

	result := CloseResult{HighestBid: m.auction.HighestBid}
	if m.auction.HighestBid != nil && *m.auction.HighestBid >= m.auction.ReservePrice {
		result.ReserveMet = true
		result.WinnerID = m.auction.HighestBidderID
	}
	return result
}

// Snapshot returns a consistent non-mutating read of the auction's state
func (m *StateMachine) Snapshot() model.AuctionSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked(time.Now().UTC())
}

func (m *StateMachine) snapshotLocked(now time.Time) model.AuctionSnapshot {
	snap := model.AuctionSnapshot{
		AuctionID:       m.auction.ID,
		VersionID:       m.auction.VersionID,
		Status:          m.auction.Status,
		StartingBid:     m.auction.StartingBid,
		ReservePrice:    m.auction.ReservePrice,
		HighestBid:      m.auction.HighestBid,
		HighestBidderID: m.auction.HighestBidderID,
		EndsAt:          m.auction.EndsAt,
	}
	if snap.Status == model.StatusActive {
		if remaining := m.auction.EndsAt.Sub(now); remaining > 0 {
			snap.TimeRemaining = remaining
		}
	}
	return snap
}
