package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"auction-engine/internal/auctionerrors"
	model "auction-engine/internal/models"
)

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=repository

// AuctionStore defines the durable storage interface for auctions and bids.
// Auction identifiers are assigned by the store on creation.
type AuctionStore interface {
	CreateAuction(ctx context.Context, auction model.Auction) (int64, error)
	LoadAuction(ctx context.Context, auctionID int64) (model.Auction, error)
	RecordBid(ctx context.Context, bid model.Bid) error
	UpdateStatus(ctx context.Context, auctionID int64, status model.AuctionStatus, winnerID *int64) error
	VersionExists(ctx context.Context, versionID int64) (bool, error)
}

// MemoryRepo is a concurrency-safe in-memory implementation of AuctionStore
type MemoryRepo struct {
	mu       sync.RWMutex
	nextID   int64
	auctions map[int64]model.Auction // key: auctionID
	bids     map[int64][]model.Bid   // key: auctionID -> accepted bids in record order
	versions map[int64]struct{}      // known vehicle version ids
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		nextID:   1,
		auctions: make(map[int64]model.Auction),
		bids:     make(map[int64][]model.Bid),
		versions: make(map[int64]struct{}),
	}
}

// CreateAuction persists a new auction and returns its assigned id
func (r *MemoryRepo) CreateAuction(_ context.Context, auction model.Auction) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.versions[auction.VersionID]; !ok {
		return 0, fmt.Errorf("create auction for version %d: %w", auction.VersionID, auctionerrors.ErrVersionNotFound)
	}

	auction.ID = r.nextID
	r.nextID++
	r.auctions[auction.ID] = auction
	return auction.ID, nil
}

// LoadAuction returns the persisted state of an auction
func (r *MemoryRepo) LoadAuction(_ context.Context, auctionID int64) (model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	auction, ok := r.auctions[auctionID]
	if !ok {
		return model.Auction{}, fmt.Errorf("load auction %d: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	return auction, nil
}

// RecordBid records an accepted bid and updates the auction's highest bid fields
func (r *MemoryRepo) RecordBid(_ context.Context, bid model.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	auction, ok := r.auctions[bid.AuctionID]
	if !ok {
		return fmt.Errorf("record bid for auction %d: %w", bid.AuctionID, auctionerrors.ErrAuctionNotFound)
	}

	r.bids[bid.AuctionID] = append(r.bids[bid.AuctionID], bid)

	amount := bid.Amount
	bidder := bid.BidderID
	auction.HighestBid = &amount
	auction.HighestBidderID = &bidder
	r.auctions[bid.AuctionID] = auction

	return nil
}

// UpdateStatus persists a status transition and, on closure, the winner (nil when reserve not met)
func (r *MemoryRepo) UpdateStatus(_ context.Context, auctionID int64, status model.AuctionStatus, winnerID *int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	auction, ok := r.auctions[auctionID]
	if !ok {
		return fmt.Errorf("update status for auction %d: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}

	auction.Status = status
	if status == model.StatusActive {
		auction.EndsAt = time.Now().UTC().Add(time.Duration(auction.DurationMinutes) * time.Minute)
	}
	if status == model.StatusClosed && winnerID != nil {
		auction.HighestBidderID = winnerID
	}
	r.auctions[auctionID] = auction
	return nil
}

// VersionExists reports whether a vehicle version is known
func (r *MemoryRepo) VersionExists(_ context.Context, versionID int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.versions[versionID]
	return ok, nil
}

// BidsForAuction returns all recorded bids for an auction. This method is intended for tests only.
func (r *MemoryRepo) BidsForAuction(auctionID int64) []model.Bid {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]model.Bid(nil), r.bids[auctionID]...)
}

// AddVersion registers a vehicle version so auctions can reference it
func (r *MemoryRepo) AddVersion(versionID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.versions[versionID] = struct{}{}
}
