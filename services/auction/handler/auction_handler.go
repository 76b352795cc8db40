package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"auction-engine/internal/auctionerrors"
	"auction-engine/internal/auth"
	"auction-engine/internal/engine"
	model "auction-engine/internal/models"
	"auction-engine/services/auction/helpers"
	"auction-engine/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// writeTimeout bounds one outbound websocket write.
const writeTimeout = 10 * time.Second

type AuctionCommanderInterface interface {
	Create(ctx context.Context, versionID int64, startingBid, reservePrice float64, durationMinutes int) (int64, error)
	Start(ctx context.Context, auctionID int64) (model.AuctionSnapshot, error)
	End(ctx context.Context, auctionID int64) (engine.CloseResult, error)
	Status(ctx context.Context, auctionID int64) (model.AuctionSnapshot, error)
}

type BidSubmitterInterface interface {
	SubmitBid(ctx context.Context, auctionID int64, bidder auth.Identity, amount float64) (engine.BidResult, error)
}

type AuctionHandler struct {
	commands AuctionCommanderInterface
	bids     BidSubmitterInterface
	hub      *engine.Hub
	verifier auth.Verifier
	upgrader websocket.Upgrader
}

func NewAuctionHandler(commands AuctionCommanderInterface, bids BidSubmitterInterface, hub *engine.Hub, verifier auth.Verifier) *AuctionHandler {
	return &AuctionHandler{
		commands: commands,
		bids:     bids,
		hub:      hub,
		verifier: verifier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Cross-origin policy is enforced upstream by the marketplace gateway.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// CreateAuctionHandler handles POST /auction/create
func (h *AuctionHandler) CreateAuctionHandler(c *gin.Context) {
	var req helpers.CreateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateAuctionHandler", err)
		return
	}

	auctionID, err := h.commands.Create(c.Request.Context(), req.VersionID, req.StartingBid, req.ReservePrice, req.DurationMinutes)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("CreateAuctionHandler: failed to create auction", map[string]any{
			"version_id": req.VersionID,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.CreateAuctionResponse{AuctionID: auctionID}, "auction created successfully")
	helpers.LogSuccess("CreateAuctionHandler", "auction created successfully", map[string]any{
		"auction_id": auctionID,
		"version_id": req.VersionID,
	})
}

// StartAuctionHandler handles POST /auction/start/:auction_id
func (h *AuctionHandler) StartAuctionHandler(c *gin.Context) {
	auctionID, ok := parseAuctionID(c, "StartAuctionHandler")
	if !ok {
		return
	}

	snap, err := h.commands.Start(c.Request.Context(), auctionID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("StartAuctionHandler: failed to start auction", map[string]any{
			"auction_id": auctionID,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, statusResponse(snap), "auction started successfully")
	helpers.LogSuccess("StartAuctionHandler", "auction started successfully", map[string]any{
		"auction_id": auctionID,
	})
}

// EndAuctionHandler handles POST /auction/end/:auction_id
func (h *AuctionHandler) EndAuctionHandler(c *gin.Context) {
	auctionID, ok := parseAuctionID(c, "EndAuctionHandler")
	if !ok {
		return
	}

	result, err := h.commands.End(c.Request.Context(), auctionID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("EndAuctionHandler: failed to end auction", map[string]any{
			"auction_id": auctionID,
			"error":      err.Error(),
		})
		return
	}

	resp := helpers.EndAuctionResponse{
		AuctionID:  auctionID,
		WinnerID:   result.WinnerID,
		HighestBid: result.HighestBid,
		ReserveMet: result.ReserveMet,
	}
	utils.JSONResponse(c, http.StatusOK, resp, "auction ended successfully")
	helpers.LogSuccess("EndAuctionHandler", "auction ended successfully", map[string]any{
		"auction_id": auctionID,
		"winner_id":  result.WinnerID,
	})
}

// AuctionStatusHandler handles GET /auction/status/:auction_id
func (h *AuctionHandler) AuctionStatusHandler(c *gin.Context) {
	auctionID, ok := parseAuctionID(c, "AuctionStatusHandler")
	if !ok {
		return
	}

	snap, err := h.commands.Status(c.Request.Context(), auctionID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		return
	}

	utils.JSONResponse(c, http.StatusOK, statusResponse(snap), "auction status retrieved successfully")
}

// BidChannelHandler handles GET /auction/bid/:auction_id — the live duplex
// channel. The connection is registered with the hub, the caller is
// authenticated from the token query parameter, and every inbound bid message
// goes through the arbiter. Accepted bids reach this connection via the
// hub fan-out; rejections are answered only on this connection.
func (h *AuctionHandler) BidChannelHandler(c *gin.Context) {
	auctionID, ok := parseAuctionID(c, "BidChannelHandler")
	if !ok {
		return
	}

	// Resolve before upgrading so unknown auctions get a plain 404.
	snap, err := h.commands.Status(c.Request.Context(), auctionID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		return
	}

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.Warn("BidChannelHandler: websocket upgrade failed", map[string]any{
			"auction_id": auctionID,
			"error":      err.Error(),
		})
		return
	}

	obs := &wsObserver{conn: ws}
	h.hub.Register(auctionID, obs)

	identity, err := h.verifier.Verify(c.Query("token"))
	if err != nil {
		_ = obs.Send(engine.NewBidRejectedEvent("unauthorized"))
		h.hub.Unregister(obs)
		return
	}
	if identity.Role != auth.RoleSeller {
		_ = obs.Send(engine.NewBidRejectedEvent("forbidden"))
		h.hub.Unregister(obs)
		return
	}

	// Greet the new observer with the current state of the auction.
	_ = obs.Send(engine.NewStatusEvent(snap))

	utils.Info("BidChannelHandler: observer connected", map[string]any{
		"auction_id": auctionID,
		"user_id":    identity.UserID,
	})

	h.readPump(c.Request.Context(), auctionID, identity, obs)
}

// readPump consumes inbound bid messages until the connection errors or
// closes, then unregisters the observer.
func (h *AuctionHandler) readPump(ctx context.Context, auctionID int64, identity auth.Identity, obs *wsObserver) {
	defer h.hub.Unregister(obs)

	for {
		var msg helpers.BidMessage
		if err := obs.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				utils.Debug("BidChannelHandler: read error", map[string]any{
					"auction_id": auctionID,
					"user_id":    identity.UserID,
					"error":      err.Error(),
				})
			}
			return
		}

		result, err := h.bids.SubmitBid(ctx, auctionID, identity, msg.Amount)
		switch {
		case err == nil && result.Accepted:
			// The accepted-bid event arrives through the hub fan-out.
		case err == nil:
			if sendErr := obs.Send(engine.NewBidRejectedEvent(result.Reason)); sendErr != nil {
				return
			}
		case errors.Is(err, auctionerrors.ErrStoreWriteFailed):
			if sendErr := obs.Send(engine.NewBidRejectedEvent("bid_failed")); sendErr != nil {
				return
			}
		case errors.Is(err, auctionerrors.ErrInvalidBid):
			if sendErr := obs.Send(engine.NewBidRejectedEvent("invalid_bid")); sendErr != nil {
				return
			}
		default:
			// Unknown auction or fatal arbiter error: report and drop.
			_ = obs.Send(engine.NewBidRejectedEvent("bid_failed"))
			return
		}
	}
}

// wsObserver adapts one gorilla connection to the hub's ObserverConn. The
// mutex serializes hub fan-out writes with direct replies from the read pump.
type wsObserver struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (w *wsObserver) Send(event engine.Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return w.conn.WriteJSON(event)
}

func (w *wsObserver) Close() error {
	return w.conn.Close()
}

// parseAuctionID reads the :auction_id path parameter, answering 400 on junk
func parseAuctionID(c *gin.Context, handlerName string) (int64, bool) {
	raw := c.Param("auction_id")
	auctionID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || auctionID <= 0 {
		utils.JSONError(c, http.StatusBadRequest, fmt.Errorf("invalid auction id %q", raw), "invalid auction id")
		utils.Warn(handlerName+": invalid auction id", map[string]any{"auction_id": raw})
		return 0, false
	}
	return auctionID, true
}

// statusResponse converts a snapshot to its wire representation
func statusResponse(snap model.AuctionSnapshot) helpers.AuctionStatusResponse {
	resp := helpers.AuctionStatusResponse{
		AuctionID:       snap.AuctionID,
		VersionID:       snap.VersionID,
		Status:          string(snap.Status),
		CurrentHighest:  snap.HighestBid,
		HighestBidderID: snap.HighestBidderID,
	}
	if snap.Status == model.StatusActive {
		secs := int64(snap.TimeRemaining.Seconds())
		resp.TimeRemainingSec = &secs
	}
	return resp
}
