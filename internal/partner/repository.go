package partner

import (
	"context"
	"fmt"
	"time"

	"gotalk/server/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the persistence contract for directed partner records.
// Mutations are idempotent: responding to or deleting a pair that does
// not exist is a no-op.
type Repository interface {
	// Upsert creates the directed record or, when the pair already
	// exists, refreshes its request date. The response date is never
	// touched, so re-requesting an accepted pair does not re-pend it.
	Upsert(ctx context.Context, followedID, followerID int64, requestedAt time.Time) (created bool, err error)
	// MarkResponded stamps the response date on one directed record.
	MarkResponded(ctx context.Context, followedID, followerID int64, respondedAt time.Time) error
	// DeletePair removes both directional records between two profiles.
	DeletePair(ctx context.Context, a, b int64) error
	// Find returns one directed record, or nil when absent.
	Find(ctx context.Context, followedID, followerID int64) (*models.Partner, error)
	// PendingFor lists incoming requests awaiting a response.
	PendingFor(ctx context.Context, followedID int64) ([]models.Partner, error)
	// AcceptedPeers lists profile ids with an accepted edge in either
	// direction relative to profileID.
	AcceptedPeers(ctx context.Context, profileID int64) ([]int64, error)
}

type pgRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) Upsert(ctx context.Context, followedID, followerID int64, requestedAt time.Time) (bool, error) {
	// xmax = 0 distinguishes a fresh insert from a conflict update.
	query := `
		INSERT INTO partners (followed_id, follower_id, request_date)
		VALUES ($1, $2, $3)
		ON CONFLICT (followed_id, follower_id)
		DO UPDATE SET request_date = EXCLUDED.request_date
		RETURNING (xmax = 0)
	`
	var created bool
	err := r.pool.QueryRow(ctx, query, followedID, followerID, requestedAt).Scan(&created)
	if err != nil {
		return false, fmt.Errorf("failed to upsert partner record: %w", err)
	}
	return created, nil
}

func (r *pgRepository) MarkResponded(ctx context.Context, followedID, followerID int64, respondedAt time.Time) error {
	query := `
		UPDATE partners SET response_date = $3
		WHERE followed_id = $1 AND follower_id = $2
	`
	_, err := r.pool.Exec(ctx, query, followedID, followerID, respondedAt)
	if err != nil {
		return fmt.Errorf("failed to mark partner record responded: %w", err)
	}
	return nil
}

func (r *pgRepository) DeletePair(ctx context.Context, a, b int64) error {
	query := `
		DELETE FROM partners
		WHERE (followed_id = $1 AND follower_id = $2)
		   OR (followed_id = $2 AND follower_id = $1)
	`
	_, err := r.pool.Exec(ctx, query, a, b)
	if err != nil {
		return fmt.Errorf("failed to delete partner pair: %w", err)
	}
	return nil
}

func (r *pgRepository) Find(ctx context.Context, followedID, followerID int64) (*models.Partner, error) {
	query := `
		SELECT followed_id, follower_id, request_date, response_date
		FROM partners
		WHERE followed_id = $1 AND follower_id = $2
	`
	var p models.Partner
	err := r.pool.QueryRow(ctx, query, followedID, followerID).
		Scan(&p.FollowedID, &p.FollowerID, &p.RequestDate, &p.ResponseDate)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find partner record: %w", err)
	}
	return &p, nil
}

func (r *pgRepository) PendingFor(ctx context.Context, followedID int64) ([]models.Partner, error) {
	query := `
		SELECT followed_id, follower_id, request_date, response_date
		FROM partners
		WHERE followed_id = $1 AND response_date IS NULL
		ORDER BY request_date DESC
	`
	rows, err := r.pool.Query(ctx, query, followedID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	defer rows.Close()

	var pending []models.Partner
	for rows.Next() {
		var p models.Partner
		if err := rows.Scan(&p.FollowedID, &p.FollowerID, &p.RequestDate, &p.ResponseDate); err != nil {
			return nil, fmt.Errorf("failed to scan pending request: %w", err)
		}
		pending = append(pending, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pending requests: %w", err)
	}
	return pending, nil
}

func (r *pgRepository) AcceptedPeers(ctx context.Context, profileID int64) ([]int64, error) {
	query := `
		SELECT follower_id FROM partners
		WHERE followed_id = $1 AND response_date IS NOT NULL
		UNION
		SELECT followed_id FROM partners
		WHERE follower_id = $1 AND response_date IS NOT NULL
	`
	rows, err := r.pool.Query(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accepted peers: %w", err)
	}
	defer rows.Close()

	var peers []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan accepted peer: %w", err)
		}
		peers = append(peers, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accepted peers: %w", err)
	}
	return peers, nil
}
