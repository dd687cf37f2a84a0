package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
)

var base = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func msg(id, room, body string, minute int) domain.Event {
	return domain.Event{
		ID:        id,
		RoomID:    room,
		Type:      domain.EventTypeMessage,
		Timestamp: base.Add(time.Duration(minute) * time.Minute),
		Body:      body,
	}
}

func ids(postings []domain.Posting) []string {
	out := make([]string, len(postings))
	for i, p := range postings {
		out[i] = p.EventID
	}
	return out
}

func setupIndex(t *testing.T, opts ...Option) *Index {
	t.Helper()
	ix := New(opts...)
	ctx := context.Background()
	for _, ev := range []domain.Event{
		msg("$1", "!a", "Lorem ipsum dolor sit amet", 1),
		msg("$2", "!a", "Lorem ipsum dolor sit amet", 2),
		msg("$3", "!a", "lorem lorem lorem", 3),
		msg("$4", "!b", "Loremipsum is one word", 4),
	} {
		require.NoError(t, ix.Index(ctx, ev))
	}
	return ix
}

func TestIndex_ExactLookup(t *testing.T) {
	ix := setupIndex(t)

	postings, err := ix.Lookup(context.Background(), domain.Token{Text: "lorem"}, []string{"!a", "!b"})

	require.NoError(t, err)
	assert.Equal(t, []string{"$3", "$2", "$1"}, ids(postings))
	assert.Equal(t, 3, postings[0].Hits)
	assert.Equal(t, "!a", postings[0].RoomID)
	assert.True(t, postings[0].Timestamp.Equal(base.Add(3*time.Minute)))
}

func TestIndex_PrefixLookup(t *testing.T) {
	ix := setupIndex(t)

	postings, err := ix.Lookup(context.Background(), domain.Token{Text: "lore", Prefix: true}, []string{"!a", "!b"})

	require.NoError(t, err)
	assert.Equal(t, []string{"$4", "$3", "$2", "$1"}, ids(postings))
}

func TestIndex_PrefixSumsHitsAcrossTerms(t *testing.T) {
	ix := New()
	ctx := context.Background()
	require.NoError(t, ix.Index(ctx, msg("$1", "!a", "test tests tester", 1)))

	postings, err := ix.Lookup(ctx, domain.Token{Text: "test", Prefix: true}, []string{"!a"})
	require.NoError(t, err)
	require.Len(t, postings, 1)
	assert.Equal(t, 3, postings[0].Hits)

	exact, err := ix.Lookup(ctx, domain.Token{Text: "test"}, []string{"!a"})
	require.NoError(t, err)
	require.Len(t, exact, 1)
	assert.Equal(t, 1, exact[0].Hits)
}

func TestIndex_RoomScope(t *testing.T) {
	ix := setupIndex(t)
	ctx := context.Background()

	onlyB, err := ix.Lookup(ctx, domain.Token{Text: "lore", Prefix: true}, []string{"!b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"$4"}, ids(onlyB))

	none, err := ix.Lookup(ctx, domain.Token{Text: "lore", Prefix: true}, nil)
	require.NoError(t, err)
	assert.Empty(t, none)

	dup, err := ix.Lookup(ctx, domain.Token{Text: "loremipsum"}, []string{"!b", "!b", "!unknown"})
	require.NoError(t, err)
	assert.Equal(t, []string{"$4"}, ids(dup))
}

func TestIndex_ReindexReplacesPostings(t *testing.T) {
	ix := setupIndex(t)
	ctx := context.Background()

	require.NoError(t, ix.Index(ctx, msg("$3", "!a", "completely different", 3)))

	lorem, err := ix.Lookup(ctx, domain.Token{Text: "lorem"}, []string{"!a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"$2", "$1"}, ids(lorem))

	diff, err := ix.Lookup(ctx, domain.Token{Text: "diff", Prefix: true}, []string{"!a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"$3"}, ids(diff))
	assert.Equal(t, 4, ix.Len())
}

func TestIndex_RemoveAndUnsearchable(t *testing.T) {
	ix := setupIndex(t)
	ctx := context.Background()

	require.NoError(t, ix.Remove(ctx, "$2"))
	require.NoError(t, ix.Remove(ctx, "$unknown"))
	require.NoError(t, ix.Index(ctx, msg("$1", "!a", "Lorem", 1).Redact()))

	postings, err := ix.Lookup(ctx, domain.Token{Text: "ipsum"}, []string{"!a"})
	require.NoError(t, err)
	assert.Empty(t, postings)

	prefix, err := ix.Lookup(ctx, domain.Token{Text: "ips", Prefix: true}, []string{"!a"})
	require.NoError(t, err)
	assert.Empty(t, prefix)
	assert.Equal(t, 2, ix.Len())
}

func TestIndex_BloomFilterGrows(t *testing.T) {
	ix := New(WithBloomCapacity(4))
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		require.NoError(t, ix.Index(ctx, msg(fmt.Sprintf("$%d", i), "!a", fmt.Sprintf("word%d", i), i)))
	}

	for i := 0; i < 50; i++ {
		postings, err := ix.Lookup(ctx, domain.Token{Text: fmt.Sprintf("word%d", i)}, []string{"!a"})
		require.NoError(t, err)
		assert.Equal(t, []string{fmt.Sprintf("$%d", i)}, ids(postings))
	}

	missing, err := ix.Lookup(ctx, domain.Token{Text: "absent"}, []string{"!a"})
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestIndex_ConcurrentReadersAndWriters(t *testing.T) {
	ix := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				_ = ix.Index(ctx, msg(fmt.Sprintf("$%d-%d", w, i), "!a", "shared words here", i))
			}
		}(w)
	}
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				postings, err := ix.Lookup(ctx, domain.Token{Text: "sha", Prefix: true}, []string{"!a"})
				if assert.NoError(t, err) {
					for _, p := range postings {
						assert.Equal(t, 1, p.Hits)
					}
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, ix.Len())
}

func TestIndex_CancelledLookup(t *testing.T) {
	ix := setupIndex(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ix.Lookup(ctx, domain.Token{Text: "lorem"}, []string{"!a"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIndex_Closed(t *testing.T) {
	ix := New()
	require.NoError(t, ix.Close())
	require.NoError(t, ix.Close())

	ctx := context.Background()
	assert.ErrorIs(t, ix.Index(ctx, msg("$1", "!a", "x", 1)), domain.ErrIndexClosed)
	assert.ErrorIs(t, ix.Remove(ctx, "$1"), domain.ErrIndexClosed)
	_, err := ix.Lookup(ctx, domain.Token{Text: "x"}, []string{"!a"})
	assert.ErrorIs(t, err, domain.ErrIndexClosed)
}
