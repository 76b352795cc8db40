package models

import "time"

// AuctionStatus is the lifecycle state of an auction.
type AuctionStatus string

const (
	StatusPending AuctionStatus = "pending"
	StatusActive  AuctionStatus = "active"
	StatusClosed  AuctionStatus = "closed"
)

// Auction represents one timed competitive-bidding process for a vehicle version.
// HighestBid and HighestBidderID are nil until the first bid is accepted.
type Auction struct {
	ID              int64         `json:"id" db:"id"`
	VersionID       int64         `json:"version_id" db:"version_id"`
	StartingBid     float64       `json:"starting_bid" db:"starting_bid"`
	ReservePrice    float64       `json:"reserve_price" db:"reserve_price"`
	DurationMinutes int           `json:"duration_minutes" db:"duration_minutes"`
	Status          AuctionStatus `json:"status" db:"status"`
	HighestBid      *float64      `json:"highest_bid" db:"highest_bid"`
	HighestBidderID *int64        `json:"highest_bidder_id" db:"highest_bidder_id"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	EndsAt          time.Time     `json:"ends_at" db:"ends_at"`
}

// Bid is an accepted offer recorded against an auction. Rejected bids are
// never stored.
type Bid struct {
	BidID     string    `json:"bid_id" db:"bid_id"`
	AuctionID int64     `json:"auction_id" db:"auction_id"`
	BidderID  int64     `json:"bidder_id" db:"bidder_id"`
	Amount    float64   `json:"amount" db:"amount"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// AuctionSnapshot is a consistent read of an auction's live state.
type AuctionSnapshot struct {
	AuctionID       int64         `json:"auction_id"`
	VersionID       int64         `json:"version_id"`
	Status          AuctionStatus `json:"status"`
	StartingBid     float64       `json:"starting_bid"`
	ReservePrice    float64       `json:"reserve_price"`
	HighestBid      *float64      `json:"highest_bid"`
	HighestBidderID *int64        `json:"highest_bidder_id"`
	EndsAt          time.Time     `json:"ends_at"`
	TimeRemaining   time.Duration `json:"-"`
}
