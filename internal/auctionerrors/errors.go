package auctionerrors

import "errors"

// Repository-level errors
var (
	ErrAuctionNotFound  = errors.New("auction not found")
	ErrVersionNotFound  = errors.New("version not found")
	ErrStoreWriteFailed = errors.New("store write failed")
)

// State-machine errors
var (
	ErrInvalidTransition = errors.New("invalid auction state transition")
	ErrNotActive         = errors.New("auction not active")
	ErrBidTooLow         = errors.New("bid amount too low")
)

// Gateway/business errors
var (
	ErrInvalidBid   = errors.New("invalid bid")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("insufficient permissions")
)
