package server

import (
	"auction-engine/internal/auth"
	handler "auction-engine/services/auction/handler"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures all Gin routes for the auction engine
func SetupRouter(auctionHandler *handler.AuctionHandler, verifier auth.Verifier) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	dealerOnly := RequireRole(verifier, auth.RoleDealer, auth.RoleAdmin)

	auction := router.Group("/auction")
	{
		auction.POST("/create", dealerOnly, auctionHandler.CreateAuctionHandler)
		auction.POST("/start/:auction_id", dealerOnly, auctionHandler.StartAuctionHandler)
		auction.POST("/end/:auction_id", dealerOnly, auctionHandler.EndAuctionHandler)
		auction.GET("/status/:auction_id", auctionHandler.AuctionStatusHandler)
		auction.GET("/bid/:auction_id", auctionHandler.BidChannelHandler)
	}

	return router
}
