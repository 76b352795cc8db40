package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"auction-engine/internal/auctionerrors"
	model "auction-engine/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS auctions (
	id                BIGSERIAL PRIMARY KEY,
	version_id        BIGINT NOT NULL,
	starting_bid      DOUBLE PRECISION NOT NULL,
	reserve_price     DOUBLE PRECISION NOT NULL,
	duration_minutes  INTEGER NOT NULL,
	status            TEXT NOT NULL,
	highest_bid       DOUBLE PRECISION,
	highest_bidder_id BIGINT,
	winner_id         BIGINT,
	created_at        TIMESTAMPTZ NOT NULL,
	ends_at           TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS bids (
	bid_id     UUID PRIMARY KEY,
	auction_id BIGINT NOT NULL REFERENCES auctions (id),
	bidder_id  BIGINT NOT NULL,
	amount     DOUBLE PRECISION NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_bids_auction ON bids (auction_id);
`

// PostgresRepo is a postgres-backed implementation of AuctionStore
type PostgresRepo struct {
	db *sqlx.DB
}

// NewPostgresRepo connects to postgres and verifies the connection
func NewPostgresRepo(databaseURL string) (*PostgresRepo, error) {
	db, err := sqlx.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &PostgresRepo{db: db}, nil
}

// EnsureSchema creates the auctions and bids tables if they do not exist
func (r *PostgresRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool
func (r *PostgresRepo) Close() error {
	return r.db.Close()
}

// CreateAuction persists a new auction and returns its assigned id
func (r *PostgresRepo) CreateAuction(ctx context.Context, auction model.Auction) (int64, error) {
	exists, err := r.VersionExists(ctx, auction.VersionID)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, fmt.Errorf("create auction for version %d: %w", auction.VersionID, auctionerrors.ErrVersionNotFound)
	}

	var id int64
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO auctions (version_id, starting_bid, reserve_price, duration_minutes, status, created_at, ends_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		auction.VersionID, auction.StartingBid, auction.ReservePrice, auction.DurationMinutes,
		auction.Status, auction.CreatedAt, auction.EndsAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create auction: %w", err)
	}
	return id, nil
}

// LoadAuction returns the persisted state of an auction
func (r *PostgresRepo) LoadAuction(ctx context.Context, auctionID int64) (model.Auction, error) {
	var auction model.Auction
	err := r.db.GetContext(ctx, &auction, `
		SELECT id, version_id, starting_bid, reserve_price, duration_minutes, status,
		       highest_bid, highest_bidder_id, created_at, ends_at
		FROM auctions
		WHERE id = $1`, auctionID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Auction{}, fmt.Errorf("load auction %d: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	if err != nil {
		return model.Auction{}, fmt.Errorf("load auction %d: %w", auctionID, err)
	}
	return auction, nil
}

// RecordBid inserts the bid and updates the auction's highest bid fields in one transaction
func (r *PostgresRepo) RecordBid(ctx context.Context, bid model.Bid) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record bid for auction %d: %w", bid.AuctionID, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE auctions SET highest_bid = $1, highest_bidder_id = $2
		WHERE id = $3`,
		bid.Amount, bid.BidderID, bid.AuctionID)
	if err != nil {
		return fmt.Errorf("record bid for auction %d: %w", bid.AuctionID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("record bid for auction %d: %w", bid.AuctionID, auctionerrors.ErrAuctionNotFound)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO bids (bid_id, auction_id, bidder_id, amount, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		bid.BidID, bid.AuctionID, bid.BidderID, bid.Amount, bid.CreatedAt); err != nil {
		return fmt.Errorf("record bid for auction %d: %w", bid.AuctionID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record bid for auction %d: %w", bid.AuctionID, err)
	}
	return nil
}

// UpdateStatus persists a status transition and, on closure, the winner
func (r *PostgresRepo) UpdateStatus(ctx context.Context, auctionID int64, status model.AuctionStatus, winnerID *int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE auctions
		SET status = $1,
		    winner_id = $2,
		    ends_at = CASE WHEN $1 = 'active' THEN now() + duration_minutes * interval '1 minute' ELSE ends_at END
		WHERE id = $3`,
		status, winnerID, auctionID)
	if err != nil {
		return fmt.Errorf("update status for auction %d: %w", auctionID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update status for auction %d: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	return nil
}

// VersionExists reports whether a vehicle version is known
func (r *PostgresRepo) VersionExists(ctx context.Context, versionID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM versions WHERE id = $1)`, versionID)
	if err != nil {
		return false, fmt.Errorf("check version %d: %w", versionID, err)
	}
	return exists, nil
}
