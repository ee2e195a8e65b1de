package store

import (
	"database/sql"
	"errors"
	"time"
)

// Event is one journaled device action: which session triggered which
// action on which device, and the gesture that caused it. The journal is
// append-only history; it never restores device or session state.
type Event struct {
	ID        string
	SessionID string
	DeviceID  string
	Gesture   string
	Action    string
	CreatedAt time.Time
}

// EventRepository provides journal operations for action events.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Insert appends an event to the journal. CreatedAt is stamped if unset.
func (r *EventRepository) Insert(e *Event) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO events (id, session_id, device_id, gesture, action, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.SessionID, e.DeviceID, e.Gesture, e.Action, e.CreatedAt,
	)
	return err
}

// GetByID retrieves one event.
func (r *EventRepository) GetByID(id string) (*Event, error) {
	e := &Event{}

	err := r.db.QueryRow(
		`SELECT id, session_id, device_id, gesture, action, created_at
		 FROM events WHERE id = ?`,
		id,
	).Scan(&e.ID, &e.SessionID, &e.DeviceID, &e.Gesture, &e.Action, &e.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return e, nil
}

// ListRecent returns the most recent events, newest first.
func (r *EventRepository) ListRecent(limit int) ([]*Event, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(
		`SELECT id, session_id, device_id, gesture, action, created_at
		 FROM events ORDER BY created_at DESC, id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e := &Event{}
		if err := rows.Scan(&e.ID, &e.SessionID, &e.DeviceID, &e.Gesture, &e.Action, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// DeleteBefore removes events older than the cutoff and reports how many
// were deleted.
func (r *EventRepository) DeleteBefore(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM events WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
