package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"auction-engine/internal/auth"
	"auction-engine/internal/engine"
	model "auction-engine/internal/models"
	"auction-engine/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

const channelTestSecret = "channel-test-secret"

type channelFixture struct {
	server *httptest.Server
	repo   *repository.MemoryRepo
	hub    *engine.Hub
	sup    *engine.Supervisor
}

func newChannelFixture(t *testing.T) *channelFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.NewMemoryRepo()
	repo.AddVersion(10)
	hub := engine.NewHub()
	sup := engine.NewSupervisor(repo, hub, engine.DefaultSweepInterval, engine.DefaultEvictGrace)
	arbiter := engine.NewArbiter(sup, repo, hub)
	verifier := auth.NewJWTVerifier(channelTestSecret)

	h := NewAuctionHandler(sup, arbiter, hub, verifier)
	router := gin.New()
	router.GET("/auction/bid/:auction_id", h.BidChannelHandler)
	srv := httptest.NewServer(router)

	t.Cleanup(func() {
		srv.Close()
		hub.Close()
	})
	return &channelFixture{server: srv, repo: repo, hub: hub, sup: sup}
}

func (f *channelFixture) startedAuction(t *testing.T) int64 {
	t.Helper()
	id, err := f.sup.Create(context.Background(), 10, 1000, 1500, 60)
	require.NoError(t, err)
	_, err = f.sup.Start(context.Background(), id)
	require.NoError(t, err)
	return id
}

func (f *channelFixture) dial(t *testing.T, auctionID int64, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") +
		"/auction/bid/" + strconv.FormatInt(auctionID, 10) + "?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sellerToken(t *testing.T, userID int64) string {
	t.Helper()
	token, err := auth.IssueToken(channelTestSecret, userID, auth.RoleSeller)
	require.NoError(t, err)
	return token
}

func readEvent(t *testing.T, conn *websocket.Conn) engine.Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var event engine.Event
	require.NoError(t, conn.ReadJSON(&event))
	return event
}

func TestBidChannel_StatusGreeting(t *testing.T) {
	f := newChannelFixture(t)
	auctionID := f.startedAuction(t)

	conn := f.dial(t, auctionID, sellerToken(t, 7))

	greeting := readEvent(t, conn)
	require.Equal(t, engine.EventStatus, greeting.Type)
	require.Equal(t, model.StatusActive, greeting.Status)
	require.NotNil(t, greeting.EndsInSeconds)
}

func TestBidChannel_AcceptedBidFansOut(t *testing.T) {
	f := newChannelFixture(t)
	auctionID := f.startedAuction(t)

	bidder := f.dial(t, auctionID, sellerToken(t, 7))
	watcher := f.dial(t, auctionID, sellerToken(t, 8))
	readEvent(t, bidder)  // greeting
	readEvent(t, watcher) // greeting

	require.NoError(t, bidder.WriteJSON(map[string]float64{"amount": 1200}))

	for _, conn := range []*websocket.Conn{bidder, watcher} {
		event := readEvent(t, conn)
		require.Equal(t, engine.EventBidAccepted, event.Type)
		require.Equal(t, 1200.0, event.Amount)
		require.Equal(t, int64(7), event.BidderID)
	}
}

func TestBidChannel_RejectionOnlyToSubmitter(t *testing.T) {
	f := newChannelFixture(t)
	auctionID := f.startedAuction(t)

	bidder := f.dial(t, auctionID, sellerToken(t, 7))
	watcher := f.dial(t, auctionID, sellerToken(t, 8))
	readEvent(t, bidder)
	readEvent(t, watcher)

	require.NoError(t, bidder.WriteJSON(map[string]float64{"amount": 1500}))
	accepted := readEvent(t, bidder)
	require.Equal(t, engine.EventBidAccepted, accepted.Type)
	readEvent(t, watcher)

	// A tie with the current highest is rejected.
	require.NoError(t, bidder.WriteJSON(map[string]float64{"amount": 1500}))
	rejection := readEvent(t, bidder)
	require.Equal(t, engine.EventBidRejected, rejection.Type)
	require.Equal(t, engine.ReasonTooLow, rejection.Reason)

	// The watcher never sees the rejection; its next event would have to be
	// another accepted bid, so a short read deadline must expire instead.
	require.NoError(t, watcher.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	var event engine.Event
	require.Error(t, watcher.ReadJSON(&event))
}

func TestBidChannel_BadToken(t *testing.T) {
	f := newChannelFixture(t)
	auctionID := f.startedAuction(t)

	conn := f.dial(t, auctionID, "not-a-token")

	event := readEvent(t, conn)
	require.Equal(t, engine.EventBidRejected, event.Type)
	require.Equal(t, engine.RejectReason("unauthorized"), event.Reason)
}

func TestBidChannel_WrongRole(t *testing.T) {
	f := newChannelFixture(t)
	auctionID := f.startedAuction(t)

	token, err := auth.IssueToken(channelTestSecret, 7, auth.RoleBuyer)
	require.NoError(t, err)
	conn := f.dial(t, auctionID, token)

	event := readEvent(t, conn)
	require.Equal(t, engine.EventBidRejected, event.Type)
	require.Equal(t, engine.RejectReason("forbidden"), event.Reason)
}

func TestBidChannel_UnknownAuction(t *testing.T) {
	f := newChannelFixture(t)

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/auction/bid/404?token=" + sellerToken(t, 7)
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBidChannel_BidOnPendingAuction(t *testing.T) {
	f := newChannelFixture(t)
	auctionID, err := f.sup.Create(context.Background(), 10, 1000, 1500, 60)
	require.NoError(t, err)

	conn := f.dial(t, auctionID, sellerToken(t, 7))
	greeting := readEvent(t, conn)
	require.Equal(t, model.StatusPending, greeting.Status)

	require.NoError(t, conn.WriteJSON(map[string]float64{"amount": 1200}))
	rejection := readEvent(t, conn)
	require.Equal(t, engine.EventBidRejected, rejection.Type)
	require.Equal(t, engine.ReasonNotActive, rejection.Reason)
}

func TestBidChannel_ClosedEventReachesObservers(t *testing.T) {
	f := newChannelFixture(t)
	auctionID := f.startedAuction(t)

	conn := f.dial(t, auctionID, sellerToken(t, 7))
	readEvent(t, conn)

	require.NoError(t, conn.WriteJSON(map[string]float64{"amount": 1600}))
	accepted := readEvent(t, conn)
	require.Equal(t, engine.EventBidAccepted, accepted.Type)

	_, err := f.sup.End(context.Background(), auctionID)
	require.NoError(t, err)

	closed := readEvent(t, conn)
	require.Equal(t, engine.EventStatus, closed.Type)
	require.Equal(t, model.StatusClosed, closed.Status)
	require.NotNil(t, closed.WinnerID)
	require.Equal(t, int64(7), *closed.WinnerID)
}
