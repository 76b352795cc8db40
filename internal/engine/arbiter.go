package engine

import (
	"context"
	"fmt"
	"time"

	"auction-engine/internal/auctionerrors"
	"auction-engine/internal/auth"
	model "auction-engine/internal/models"
	"auction-engine/internal/repository"
	"auction-engine/utils"
)

// MachineResolver yields the live state machine for an auction id,
// materializing it from the store when needed. Implemented by Supervisor.
type MachineResolver interface {
	Machine(ctx context.Context, auctionID int64) (*StateMachine, error)
}

// Arbiter is the only entry point for submitting bids. It gates on the
// caller's role, delegates acceptance to the auction's state machine, makes
// accepted bids durable, and fans the result out to observers.
type Arbiter struct {
	machines MachineResolver
	store    repository.AuctionStore
	hub      *Hub
}

// NewArbiter creates a new bid arbiter
func NewArbiter(machines MachineResolver, store repository.AuctionStore, hub *Hub) *Arbiter {
	return &Arbiter{machines: machines, store: store, hub: hub}
}

// SubmitBid evaluates one bid for one auction. A bid only counts as accepted
// once both the in-memory update and the store write succeeded; if the store
// write fails the in-memory highest bid is rolled back (unless a newer bid
// already superseded it) and the bidder is told the bid failed.
func (a *Arbiter) SubmitBid(ctx context.Context, auctionID int64, bidder auth.Identity, amount float64) (BidResult, error) {
	if amount <= 0 {
		return BidResult{}, fmt.Errorf("arbiter: non-positive bid amount: %w", auctionerrors.ErrInvalidBid)
	}
	if bidder.Role != auth.RoleSeller {
		return BidResult{}, fmt.Errorf("arbiter: role %q may not bid: %w", bidder.Role, auctionerrors.ErrForbidden)
	}

	machine, err := a.machines.Machine(ctx, auctionID)
	if err != nil {
		return BidResult{}, fmt.Errorf("arbiter: resolve auction %d: %w", auctionID, err)
	}

	result := machine.SubmitBid(bidder.UserID, amount)
	if !result.Accepted {
		return result, nil
	}

	bid := model.Bid{
		BidID:     utils.GenerateID(),
		AuctionID: auctionID,
		BidderID:  bidder.UserID,
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	}

	// The write runs outside the machine lock so other bidders keep being
	// evaluated against the already-updated highest bid.
	if err := a.store.RecordBid(ctx, bid); err != nil {
		rolledBack := machine.RevertBid(amount, bidder.UserID, result.PrevHighest, result.PrevBidder)
		utils.Error("arbiter: accepted bid could not be persisted", map[string]any{
			"auction_id":  auctionID,
			"bidder_id":   bidder.UserID,
			"amount":      amount,
			"rolled_back": rolledBack,
			"error":       err.Error(),
		})
		return BidResult{}, fmt.Errorf("arbiter: record bid for auction %d: %w", auctionID, auctionerrors.ErrStoreWriteFailed)
	}

	a.hub.Publish(auctionID, NewBidAcceptedEvent(amount, bidder.UserID))

	utils.Info("arbiter: bid accepted", map[string]any{
		"auction_id": auctionID,
		"bidder_id":  bidder.UserID,
		"amount":     amount,
	})
	return result, nil
}
