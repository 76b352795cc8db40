package engine

import (
	model "auction-engine/internal/models"
)

// Event types delivered over an auction's observer channel.
const (
	EventBidAccepted = "bid_accepted"
	EventBidRejected = "bid_rejected"
	EventStatus      = "status"
)

// Event is one outbound message for an auction's observers. Rejections are
// sent only to the submitting connection and never fanned out.
type Event struct {
	Type          string              `json:"type"`
	Amount        float64             `json:"amount,omitempty"`
	BidderID      int64               `json:"bidder_id,omitempty"`
	Reason        RejectReason        `json:"reason,omitempty"`
	Status        model.AuctionStatus `json:"status,omitempty"`
	EndsInSeconds *int64              `json:"ends_in_seconds,omitempty"`
	WinnerID      *int64              `json:"winner_id,omitempty"`
}

// NewBidAcceptedEvent builds the fan-out event for an accepted bid
func NewBidAcceptedEvent(amount float64, bidderID int64) Event {
	return Event{Type: EventBidAccepted, Amount: amount, BidderID: bidderID}
}

// NewBidRejectedEvent builds the submitter-only rejection message
func NewBidRejectedEvent(reason RejectReason) Event {
	return Event{Type: EventBidRejected, Reason: reason}
}

// NewStatusEvent builds a lifecycle transition event from a snapshot
func NewStatusEvent(snap model.AuctionSnapshot) Event {
	ev := Event{Type: EventStatus, Status: snap.Status}
	if snap.Status == model.StatusActive {
		secs := int64(snap.TimeRemaining.Seconds())
		ev.EndsInSeconds = &secs
	}
	return ev
}

// NewClosedEvent builds the terminal status event carrying the outcome
func NewClosedEvent(result CloseResult) Event {
	return Event{Type: EventStatus, Status: model.StatusClosed, WinnerID: result.WinnerID}
}
