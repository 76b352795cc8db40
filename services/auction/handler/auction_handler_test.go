package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"auction-engine/internal/auctionerrors"
	"auction-engine/internal/auth"
	"auction-engine/internal/engine"
	model "auction-engine/internal/models"
	"auction-engine/services/auction/helpers"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func newTestRouter(h *AuctionHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/auction/create", h.CreateAuctionHandler)
	router.POST("/auction/start/:auction_id", h.StartAuctionHandler)
	router.POST("/auction/end/:auction_id", h.EndAuctionHandler)
	router.GET("/auction/status/:auction_id", h.AuctionStatusHandler)
	return router
}

func performJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(raw)
	} else {
		reader = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// Test CreateAuctionHandler
func TestCreateAuctionHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCommands := NewMockAuctionCommanderInterface(ctrl)
	mockBids := NewMockBidSubmitterInterface(ctrl)
	handler := NewAuctionHandler(mockCommands, mockBids, engine.NewHub(), auth.NewJWTVerifier("secret"))
	router := newTestRouter(handler)

	tests := []struct {
		name           string
		requestBody    any
		mockSetup      func()
		expectedStatus int
	}{
		{
			name: "success",
			requestBody: helpers.CreateAuctionRequest{
				VersionID:       10,
				StartingBid:     1000,
				ReservePrice:    1500,
				DurationMinutes: 60,
			},
			mockSetup: func() {
				mockCommands.EXPECT().
					Create(gomock.Any(), int64(10), 1000.0, 1500.0, 60).
					Return(int64(5), nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing_fields",
			requestBody:    map[string]any{"version_id": 10},
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unknown_version",
			requestBody: helpers.CreateAuctionRequest{
				VersionID:       999,
				StartingBid:     1000,
				ReservePrice:    1500,
				DurationMinutes: 60,
			},
			mockSetup: func() {
				mockCommands.EXPECT().
					Create(gomock.Any(), int64(999), 1000.0, 1500.0, 60).
					Return(int64(0), fmt.Errorf("create: %w", auctionerrors.ErrVersionNotFound))
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.mockSetup()
			w := performJSON(t, router, http.MethodPost, "/auction/create", tc.requestBody)
			require.Equal(t, tc.expectedStatus, w.Code)

			if tc.expectedStatus == http.StatusCreated {
				body := decodeBody(t, w)
				data := body["data"].(map[string]any)
				require.Equal(t, float64(5), data["auction_id"])
			}
		})
	}
}

// Test StartAuctionHandler
func TestStartAuctionHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCommands := NewMockAuctionCommanderInterface(ctrl)
	mockBids := NewMockBidSubmitterInterface(ctrl)
	handler := NewAuctionHandler(mockCommands, mockBids, engine.NewHub(), auth.NewJWTVerifier("secret"))
	router := newTestRouter(handler)

	t.Run("success", func(t *testing.T) {
		mockCommands.EXPECT().
			Start(gomock.Any(), int64(5)).
			Return(model.AuctionSnapshot{
				AuctionID:     5,
				VersionID:     10,
				Status:        model.StatusActive,
				TimeRemaining: time.Minute,
			}, nil)

		w := performJSON(t, router, http.MethodPost, "/auction/start/5", nil)
		require.Equal(t, http.StatusOK, w.Code)

		data := decodeBody(t, w)["data"].(map[string]any)
		require.Equal(t, "active", data["status"])
		require.Equal(t, float64(60), data["time_remaining_seconds"])
	})

	t.Run("already_started", func(t *testing.T) {
		mockCommands.EXPECT().
			Start(gomock.Any(), int64(5)).
			Return(model.AuctionSnapshot{}, fmt.Errorf("start: %w", auctionerrors.ErrInvalidTransition))

		w := performJSON(t, router, http.MethodPost, "/auction/start/5", nil)
		require.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("bad_auction_id", func(t *testing.T) {
		w := performJSON(t, router, http.MethodPost, "/auction/start/banana", nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// Test EndAuctionHandler
func TestEndAuctionHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCommands := NewMockAuctionCommanderInterface(ctrl)
	mockBids := NewMockBidSubmitterInterface(ctrl)
	handler := NewAuctionHandler(mockCommands, mockBids, engine.NewHub(), auth.NewJWTVerifier("secret"))
	router := newTestRouter(handler)

	t.Run("success_with_winner", func(t *testing.T) {
		winner := int64(7)
		highest := 1600.0
		mockCommands.EXPECT().
			End(gomock.Any(), int64(5)).
			Return(engine.CloseResult{WinnerID: &winner, HighestBid: &highest, ReserveMet: true}, nil)

		w := performJSON(t, router, http.MethodPost, "/auction/end/5", nil)
		require.Equal(t, http.StatusOK, w.Code)

		data := decodeBody(t, w)["data"].(map[string]any)
		require.Equal(t, float64(7), data["winner_id"])
		require.Equal(t, 1600.0, data["highest_bid"])
		require.Equal(t, true, data["reserve_met"])
	})

	t.Run("reserve_not_met", func(t *testing.T) {
		highest := 1200.0
		mockCommands.EXPECT().
			End(gomock.Any(), int64(5)).
			Return(engine.CloseResult{HighestBid: &highest}, nil)

		w := performJSON(t, router, http.MethodPost, "/auction/end/5", nil)
		require.Equal(t, http.StatusOK, w.Code)

		data := decodeBody(t, w)["data"].(map[string]any)
		require.Nil(t, data["winner_id"])
		require.Equal(t, false, data["reserve_met"])
	})

	t.Run("unknown_auction", func(t *testing.T) {
		mockCommands.EXPECT().
			End(gomock.Any(), int64(404)).
			Return(engine.CloseResult{}, fmt.Errorf("end: %w", auctionerrors.ErrAuctionNotFound))

		w := performJSON(t, router, http.MethodPost, "/auction/end/404", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

// Test AuctionStatusHandler
func TestAuctionStatusHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCommands := NewMockAuctionCommanderInterface(ctrl)
	mockBids := NewMockBidSubmitterInterface(ctrl)
	handler := NewAuctionHandler(mockCommands, mockBids, engine.NewHub(), auth.NewJWTVerifier("secret"))
	router := newTestRouter(handler)

	t.Run("active_with_highest_bid", func(t *testing.T) {
		highest := 1200.0
		bidder := int64(7)
		mockCommands.EXPECT().
			Status(gomock.Any(), int64(5)).
			Return(model.AuctionSnapshot{
				AuctionID:       5,
				VersionID:       10,
				Status:          model.StatusActive,
				HighestBid:      &highest,
				HighestBidderID: &bidder,
				TimeRemaining:   30 * time.Second,
			}, nil)

		w := performJSON(t, router, http.MethodGet, "/auction/status/5", nil)
		require.Equal(t, http.StatusOK, w.Code)

		data := decodeBody(t, w)["data"].(map[string]any)
		require.Equal(t, "active", data["status"])
		require.Equal(t, 1200.0, data["current_highest_bid"])
		require.Equal(t, float64(7), data["highest_bidder_id"])
		require.Equal(t, float64(30), data["time_remaining_seconds"])
	})

	t.Run("closed_has_no_time_remaining", func(t *testing.T) {
		mockCommands.EXPECT().
			Status(gomock.Any(), int64(5)).
			Return(model.AuctionSnapshot{AuctionID: 5, Status: model.StatusClosed}, nil)

		w := performJSON(t, router, http.MethodGet, "/auction/status/5", nil)
		require.Equal(t, http.StatusOK, w.Code)

		data := decodeBody(t, w)["data"].(map[string]any)
		require.Equal(t, "closed", data["status"])
		_, present := data["time_remaining_seconds"]
		require.False(t, present)
	})

	t.Run("unknown_auction", func(t *testing.T) {
		mockCommands.EXPECT().
			Status(gomock.Any(), int64(404)).
			Return(model.AuctionSnapshot{}, fmt.Errorf("status: %w", auctionerrors.ErrAuctionNotFound))

		w := performJSON(t, router, http.MethodGet, "/auction/status/404", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}
