package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dayplan/itinerary-backend-go/internal/models"
)

// ItineraryRepository persists delivered itineraries. Rows are immutable
// once created: there is no update path.
type ItineraryRepository struct {
	db *sql.DB
}

// NewItineraryRepository creates a new itinerary repository
func NewItineraryRepository(db *sql.DB) *ItineraryRepository {
	return &ItineraryRepository{db: db}
}

// Save inserts a finished itinerary keyed by its id and owning user
func (r *ItineraryRepository) Save(it *models.Itinerary) error {
	if it.ID == "" {
		return fmt.Errorf("itinerary has no id")
	}
	payload, err := json.Marshal(it)
	if err != nil {
		return fmt.Errorf("failed to encode itinerary: %w", err)
	}

	_, err = r.db.Exec(
		`INSERT INTO itineraries (id, user_id, date, payload, created_at) VALUES (?, ?, ?, ?, ?)`,
		it.ID, it.UserID, it.Date, string(payload), it.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert itinerary: %w", err)
	}
	return nil
}

// GetByID fetches one itinerary. Returns (nil, nil) when absent.
func (r *ItineraryRepository) GetByID(id string) (*models.Itinerary, error) {
	var payload string
	err := r.db.QueryRow(`SELECT payload FROM itineraries WHERE id = ?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query itinerary: %w", err)
	}

	var it models.Itinerary
	if err := json.Unmarshal([]byte(payload), &it); err != nil {
		return nil, fmt.Errorf("failed to decode itinerary %s: %w", id, err)
	}
	return &it, nil
}

// ListByUser returns a user's itineraries, newest first, with the total count
func (r *ItineraryRepository) ListByUser(userID string, limit, offset int) ([]*models.Itinerary, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM itineraries WHERE user_id = ?`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count itineraries: %w", err)
	}

	rows, err := r.db.Query(
		`SELECT payload FROM itineraries WHERE user_id = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query itineraries: %w", err)
	}
	defer rows.Close()

	var out []*models.Itinerary
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, 0, fmt.Errorf("failed to scan itinerary: %w", err)
		}
		var it models.Itinerary
		if err := json.Unmarshal([]byte(payload), &it); err != nil {
			return nil, 0, fmt.Errorf("failed to decode itinerary: %w", err)
		}
		out = append(out, &it)
	}
	return out, total, rows.Err()
}
