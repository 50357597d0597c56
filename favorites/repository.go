package favorites

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/pollualert/core/models"
)

// Repository stores per-user watch lists. The alert pipeline only ever reads
// them; create/remove is driven by the user through the UI shell.
type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]models.FavoriteWatch, error)
	Add(ctx context.Context, w models.FavoriteWatch) error
	Remove(ctx context.Context, userID, locationID string) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]models.FavoriteWatch, error) {
	query := `
		SELECT user_id, location_id, lat, lon, created_at
		FROM favorite_watches
		WHERE user_id = $1
		ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	var watches []models.FavoriteWatch
	for rows.Next() {
		var w models.FavoriteWatch
		if err := rows.Scan(&w.UserID, &w.LocationID, &w.Lat, &w.Lon, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		watches = append(watches, w)
	}
	return watches, rows.Err()
}

func (r *PostgresRepository) Add(ctx context.Context, w models.FavoriteWatch) error {
	query := `
		INSERT INTO favorite_watches (user_id, location_id, lat, lon, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, location_id) DO NOTHING`
	created := w.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, query, w.UserID, w.LocationID, w.Lat, w.Lon, created)
	return err
}

func (r *PostgresRepository) Remove(ctx context.Context, userID, locationID string) error {
	query := `DELETE FROM favorite_watches WHERE user_id = $1 AND location_id = $2`
	_, err := r.db.ExecContext(ctx, query, userID, locationID)
	return err
}

// ---------------------------------------------------------------------------
// In-memory implementation
// ---------------------------------------------------------------------------

// MemoryRepository keeps watches in process, for tests and standalone shells.
type MemoryRepository struct {
	mu      sync.Mutex
	watches []models.FavoriteWatch
}

func NewMemoryRepository() *MemoryRepository { return &MemoryRepository{} }

func (r *MemoryRepository) ListByUser(_ context.Context, userID string) ([]models.FavoriteWatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.FavoriteWatch
	for _, w := range r.watches {
		if w.UserID == userID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (r *MemoryRepository) Add(_ context.Context, w models.FavoriteWatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, have := range r.watches {
		if have.UserID == w.UserID && have.LocationID == w.LocationID {
			return nil
		}
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now().UTC()
	}
	r.watches = append(r.watches, w)
	return nil
}

func (r *MemoryRepository) Remove(_ context.Context, userID, locationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.watches[:0]
	for _, w := range r.watches {
		if w.UserID != userID || w.LocationID != locationID {
			kept = append(kept, w)
		}
	}
	r.watches = kept
	return nil
}
