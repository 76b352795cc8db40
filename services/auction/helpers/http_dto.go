package helpers

// Request/Response DTOs
type CreateAuctionRequest struct {
	VersionID       int64   `json:"version_id" binding:"required"`
	StartingBid     float64 `json:"starting_bid" binding:"required,gt=0"`
	ReservePrice    float64 `json:"reserve_price" binding:"required,gt=0"`
	DurationMinutes int     `json:"duration_minutes" binding:"required,gt=0"`
}

type CreateAuctionResponse struct {
	AuctionID int64 `json:"auction_id"`
}

type AuctionStatusResponse struct {
	AuctionID        int64    `json:"auction_id"`
	VersionID        int64    `json:"version_id"`
	Status           string   `json:"status"`
	CurrentHighest   *float64 `json:"current_highest_bid"`
	HighestBidderID  *int64   `json:"highest_bidder_id"`
	TimeRemainingSec *int64   `json:"time_remaining_seconds,omitempty"`
}

type EndAuctionResponse struct {
	AuctionID  int64    `json:"auction_id"`
	WinnerID   *int64   `json:"winner_id"`
	HighestBid *float64 `json:"highest_bid"`
	ReserveMet bool     `json:"reserve_met"`
}

// BidMessage is one inbound message on the live bid channel
type BidMessage struct {
	Amount float64 `json:"amount"`
}
