package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driven"
)

// EventStore implements driven.EventStore on the events table.
type EventStore struct {
	store *Store
}

var _ driven.EventStore = (*EventStore)(nil)

const eventColumns = `event_id, room_id, sender, type, ts, body, encrypted, redacted, content`

// SaveEvent stores or replaces an event.
func (s *EventStore) SaveEvent(ctx context.Context, event domain.Event) error {
	if event.ID == "" || event.RoomID == "" {
		return domain.ErrInvalidInput
	}

	contentJSON, err := json.Marshal(event.Content)
	if err != nil {
		return fmt.Errorf("marshalling content: %w", err)
	}

	var body sql.NullString
	if event.Body != "" {
		body = sql.NullString{String: event.Body, Valid: true}
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO events (`+eventColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(event_id) DO UPDATE SET
			room_id = excluded.room_id,
			sender = excluded.sender,
			type = excluded.type,
			ts = excluded.ts,
			body = excluded.body,
			encrypted = excluded.encrypted,
			redacted = excluded.redacted,
			content = excluded.content
	`, event.ID, event.RoomID, event.Sender, event.Type, event.Timestamp.UnixNano(),
		body, event.Encrypted, event.Redacted, string(contentJSON))
	if err != nil {
		return fmt.Errorf("saving event: %w", err)
	}
	return nil
}

// GetEvent retrieves an event by ID.
func (s *EventStore) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE event_id = ?`, id)
	event, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return event, err
}

// EventsBefore returns up to count events preceding eventID in roomID, oldest first.
func (s *EventStore) EventsBefore(ctx context.Context, eventID, roomID string, count int) ([]domain.Event, error) {
	ts, err := s.anchor(ctx, eventID, roomID)
	if err != nil || count <= 0 {
		return nil, err
	}

	events, err := s.query(ctx, `
		SELECT `+eventColumns+` FROM events
		WHERE room_id = ? AND (ts < ? OR (ts = ? AND event_id < ?))
		ORDER BY ts DESC, event_id DESC
		LIMIT ?
	`, roomID, ts, ts, eventID, count)
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	return events, nil
}

// EventsAfter returns up to count events following eventID in roomID, oldest first.
func (s *EventStore) EventsAfter(ctx context.Context, eventID, roomID string, count int) ([]domain.Event, error) {
	ts, err := s.anchor(ctx, eventID, roomID)
	if err != nil || count <= 0 {
		return nil, err
	}

	return s.query(ctx, `
		SELECT `+eventColumns+` FROM events
		WHERE room_id = ? AND (ts > ? OR (ts = ? AND event_id > ?))
		ORDER BY ts ASC, event_id ASC
		LIMIT ?
	`, roomID, ts, ts, eventID, count)
}

// ListRoomEvents returns the whole timeline of roomID, oldest first.
func (s *EventStore) ListRoomEvents(ctx context.Context, roomID string) ([]domain.Event, error) {
	return s.query(ctx, `
		SELECT `+eventColumns+` FROM events
		WHERE room_id = ?
		ORDER BY ts ASC, event_id ASC
	`, roomID)
}

// ListPending returns encrypted events in roomIDs that have no body yet.
func (s *EventStore) ListPending(ctx context.Context, roomIDs []string) ([]domain.Event, error) {
	if len(roomIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(roomIDs)), ",")
	args := make([]any, len(roomIDs))
	for i, id := range roomIDs {
		args[i] = id
	}

	return s.query(ctx, `
		SELECT `+eventColumns+` FROM events
		WHERE room_id IN (`+placeholders+`) AND encrypted = 1 AND body IS NULL AND redacted = 0
		ORDER BY ts ASC, event_id ASC
	`, args...)
}

// anchor returns the timestamp of eventID, which must live in roomID.
func (s *EventStore) anchor(ctx context.Context, eventID, roomID string) (int64, error) {
	var ts int64
	err := s.store.db.QueryRowContext(ctx,
		`SELECT ts FROM events WHERE event_id = ? AND room_id = ?`, eventID, roomID).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("locating event: %w", err)
	}
	return ts, nil
}

func (s *EventStore) query(ctx context.Context, query string, args ...any) ([]domain.Event, error) {
	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event //nolint:prealloc // size unknown from query
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}
	return events, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	var (
		event       domain.Event
		ts          int64
		body        sql.NullString
		contentJSON string
	)

	err := row.Scan(&event.ID, &event.RoomID, &event.Sender, &event.Type, &ts,
		&body, &event.Encrypted, &event.Redacted, &contentJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning event: %w", err)
	}

	event.Timestamp = time.Unix(0, ts).UTC()
	event.Body = body.String

	if contentJSON != "" && contentJSON != jsonNull {
		if err := json.Unmarshal([]byte(contentJSON), &event.Content); err != nil {
			return nil, fmt.Errorf("unmarshalling content: %w", err)
		}
	}

	return &event, nil
}
