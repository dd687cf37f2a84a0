package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
)

var base = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func ev(id, room string, minute int) domain.Event {
	return domain.Event{
		ID:        id,
		RoomID:    room,
		Type:      domain.EventTypeMessage,
		Timestamp: base.Add(time.Duration(minute) * time.Minute),
		Body:      "body of " + id,
	}
}

func eventIDs(events []domain.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}

// setupTimeline stores $1..$5 in !a, deliberately out of order.
func setupTimeline(t *testing.T) *EventStore {
	t.Helper()
	store := NewEventStore()
	ctx := context.Background()
	for _, e := range []domain.Event{ev("$3", "!a", 3), ev("$1", "!a", 1), ev("$5", "!a", 5), ev("$2", "!a", 2), ev("$4", "!a", 4), ev("$x", "!b", 3)} {
		require.NoError(t, store.SaveEvent(ctx, e))
	}
	return store
}

func TestEventStore_GetEvent(t *testing.T) {
	store := setupTimeline(t)

	got, err := store.GetEvent(context.Background(), "$2")
	require.NoError(t, err)
	assert.Equal(t, "body of $2", got.Body)

	_, err = store.GetEvent(context.Background(), "$missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEventStore_ListRoomEvents_Ordered(t *testing.T) {
	store := setupTimeline(t)

	events, err := store.ListRoomEvents(context.Background(), "!a")

	require.NoError(t, err)
	assert.Equal(t, []string{"$1", "$2", "$3", "$4", "$5"}, eventIDs(events))
}

func TestEventStore_EventsBefore(t *testing.T) {
	store := setupTimeline(t)
	ctx := context.Background()

	before, err := store.EventsBefore(ctx, "$4", "!a", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"$2", "$3"}, eventIDs(before))

	atStart, err := store.EventsBefore(ctx, "$2", "!a", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"$1"}, eventIDs(atStart))

	zero, err := store.EventsBefore(ctx, "$4", "!a", 0)
	require.NoError(t, err)
	assert.Empty(t, zero)
}

func TestEventStore_EventsAfter(t *testing.T) {
	store := setupTimeline(t)
	ctx := context.Background()

	after, err := store.EventsAfter(ctx, "$2", "!a", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"$3", "$4"}, eventIDs(after))

	atEnd, err := store.EventsAfter(ctx, "$4", "!a", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"$5"}, eventIDs(atEnd))
}

func TestEventStore_ContextWrongRoom(t *testing.T) {
	store := setupTimeline(t)

	_, err := store.EventsBefore(context.Background(), "$x", "!a", 2)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEventStore_SameTimestampOrderedByID(t *testing.T) {
	store := NewEventStore()
	ctx := context.Background()
	require.NoError(t, store.SaveEvent(ctx, ev("$b", "!a", 1)))
	require.NoError(t, store.SaveEvent(ctx, ev("$a", "!a", 1)))
	require.NoError(t, store.SaveEvent(ctx, ev("$c", "!a", 1)))

	after, err := store.EventsAfter(ctx, "$a", "!a", 5)

	require.NoError(t, err)
	assert.Equal(t, []string{"$b", "$c"}, eventIDs(after))
}

func TestEventStore_ReplaceKeepsSinglePosition(t *testing.T) {
	store := setupTimeline(t)
	ctx := context.Background()

	require.NoError(t, store.SaveEvent(ctx, ev("$3", "!a", 3).Redact()))

	events, err := store.ListRoomEvents(ctx, "!a")
	require.NoError(t, err)
	assert.Equal(t, []string{"$1", "$2", "$3", "$4", "$5"}, eventIDs(events))
	assert.True(t, events[2].Redacted)
}

func TestEventStore_ListPending(t *testing.T) {
	store := setupTimeline(t)
	ctx := context.Background()
	enc := domain.Event{ID: "$enc", RoomID: "!a", Encrypted: true, Timestamp: base.Add(6 * time.Minute)}
	encB := domain.Event{ID: "$encb", RoomID: "!b", Encrypted: true, Timestamp: base}
	require.NoError(t, store.SaveEvent(ctx, enc))
	require.NoError(t, store.SaveEvent(ctx, encB))

	pending, err := store.ListPending(ctx, []string{"!a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"$enc"}, eventIDs(pending))

	require.NoError(t, store.SaveEvent(ctx, enc.WithBody("decrypted")))
	pending, err = store.ListPending(ctx, []string{"!a", "!b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"$encb"}, eventIDs(pending))
}
