package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"auction-engine/internal/auth"
	"auction-engine/internal/config"
	"auction-engine/internal/engine"
	"auction-engine/internal/repository"
	"auction-engine/internal/server"
	handler "auction-engine/services/auction/handler"
	"auction-engine/utils"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, cleanup := setupStore(ctx, cfg)
	defer cleanup()

	hub := engine.NewHub()
	defer hub.Close()

	supervisor := engine.NewSupervisor(store, hub, cfg.SweepInterval, cfg.EvictGrace)
	arbiter := engine.NewArbiter(supervisor, store, hub)
	verifier := auth.NewJWTVerifier(cfg.JWTSecret)

	go supervisor.Run(ctx)

	auctionHandler := handler.NewAuctionHandler(supervisor, arbiter, hub, verifier)
	router := server.SetupRouter(auctionHandler, verifier)

	fmt.Printf("Starting auction server on %s...\n", cfg.Addr())
	if err := router.Run(cfg.Addr()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}

// setupStore picks the postgres store when DATABASE_URL is configured and
// falls back to the in-memory store otherwise
func setupStore(ctx context.Context, cfg *config.Config) (repository.AuctionStore, func()) {
	if cfg.DatabaseURL == "" {
		utils.Info("using in-memory auction store", nil)
		repo := repository.NewMemoryRepo()
		prepopulateVersions(repo)
		return repo, func() {}
	}

	repo, err := repository.NewPostgresRepo(cfg.DatabaseURL)
	if err != nil {
		utils.Fatal("failed to connect to auction store", map[string]any{"error": err.Error()})
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		utils.Fatal("failed to prepare auction store schema", map[string]any{"error": err.Error()})
	}
	return repo, func() { _ = repo.Close() }
}

// prepopulateVersions seeds vehicle versions so auctions can be created
// against the in-memory store
func prepopulateVersions(repo *repository.MemoryRepo) {
	for _, versionID := range []int64{1, 2, 3} {
		repo.AddVersion(versionID)
	}
}
