package bleve

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-chat/internal/logger"
	"github.com/custodia-labs/sercha-chat/internal/tokenizer"
)

// Ensure Index implements the interface.
var _ driven.SearchIndex = (*Index)(nil)

// Field names of indexed documents.
const (
	fieldRoom      = "room"
	fieldTokens    = "tokens"
	fieldTimestamp = "ts"
)

var log = logger.For("bleve")

// Index is a bleve-backed search index.
type Index struct {
	mu    sync.RWMutex // serialises mutations against lookups
	index bleve.Index
	path  string
}

// Open opens the index at path, creating it if it does not exist.
// An empty path creates a memory-only index.
func Open(path string) (*Index, error) {
	if path == "" {
		idx, err := bleve.NewMemOnly(newMapping())
		if err != nil {
			return nil, fmt.Errorf("creating memory index: %w", err)
		}
		return &Index{index: idx}, nil
	}

	idx, err := bleve.Open(path)
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		idx, err = bleve.New(path, newMapping())
	}
	if err != nil {
		return nil, fmt.Errorf("opening index %s: %w", path, err)
	}
	return &Index{index: idx, path: path}, nil
}

// newMapping builds the document mapping for indexed events.
func newMapping() mapping.IndexMapping {
	keywordField := func() *mapping.FieldMapping {
		f := bleve.NewTextFieldMapping()
		f.Analyzer = keyword.Name
		f.Store = true
		f.Index = true
		f.IncludeInAll = false
		return f
	}

	eventMapping := bleve.NewDocumentMapping()
	eventMapping.AddFieldMappingsAt(fieldRoom, keywordField())
	eventMapping.AddFieldMappingsAt(fieldTokens, keywordField())
	eventMapping.AddFieldMappingsAt(fieldTimestamp, keywordField())

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = eventMapping
	indexMapping.DefaultAnalyzer = keyword.Name
	return indexMapping
}

// Path returns the on-disk location, or empty for a memory-only index.
func (ix *Index) Path() string {
	return ix.path
}

// Index stores the tokenized event body, replacing any previous version.
func (ix *Index) Index(ctx context.Context, event domain.Event) error {
	var tokens []string
	if event.Searchable() {
		tokens = tokenizer.Tokenize(event.Body)
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.index == nil {
		return domain.ErrIndexClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(tokens) == 0 {
		if err := ix.index.Delete(event.ID); err != nil {
			return fmt.Errorf("deleting %s: %w", event.ID, err)
		}
		return nil
	}

	doc := map[string]any{
		fieldRoom:      event.RoomID,
		fieldTokens:    tokens,
		fieldTimestamp: strconv.FormatInt(event.Timestamp.UnixNano(), 10),
	}
	if err := ix.index.Index(event.ID, doc); err != nil {
		return fmt.Errorf("indexing %s: %w", event.ID, err)
	}
	log.Debug("indexed %s in %s: %d tokens", event.ID, event.RoomID, len(tokens))
	return nil
}

// Remove deletes the event from the index.
func (ix *Index) Remove(_ context.Context, eventID string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.index == nil {
		return domain.ErrIndexClosed
	}
	if err := ix.index.Delete(eventID); err != nil {
		return fmt.Errorf("deleting %s: %w", eventID, err)
	}
	return nil
}

// Lookup returns the postings matching token in the given rooms,
// newest first with ties broken by event ID.
func (ix *Index) Lookup(ctx context.Context, token domain.Token, roomIDs []string) ([]domain.Posting, error) {
	if len(roomIDs) == 0 {
		return nil, nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if ix.index == nil {
		return nil, domain.ErrIndexClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	total, err := ix.index.DocCount()
	if err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}
	if total == 0 {
		return nil, nil
	}

	req := bleve.NewSearchRequestOptions(buildQuery(token, roomIDs), int(total), 0, false)
	req.Fields = []string{fieldRoom, fieldTokens, fieldTimestamp}

	res, err := ix.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", token.Text, err)
	}

	postings := make([]domain.Posting, 0, len(res.Hits))
	for _, hit := range res.Hits {
		p, err := toPosting(hit.ID, hit.Fields, token)
		if err != nil {
			log.Warn("skipping %s: %v", hit.ID, err)
			continue
		}
		postings = append(postings, p)
	}

	sort.Slice(postings, func(i, j int) bool {
		a, b := postings[i], postings[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.After(b.Timestamp)
		}
		return a.EventID < b.EventID
	})
	return postings, nil
}

// Close closes the underlying bleve index.
func (ix *Index) Close() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.index == nil {
		return nil
	}
	err := ix.index.Close()
	ix.index = nil
	return err
}

func buildQuery(token domain.Token, roomIDs []string) query.Query {
	var tokenQuery query.Query
	if token.Prefix {
		q := bleve.NewPrefixQuery(token.Text)
		q.SetField(fieldTokens)
		tokenQuery = q
	} else {
		q := bleve.NewTermQuery(token.Text)
		q.SetField(fieldTokens)
		tokenQuery = q
	}

	rooms := make([]query.Query, 0, len(roomIDs))
	for _, id := range roomIDs {
		q := bleve.NewTermQuery(id)
		q.SetField(fieldRoom)
		rooms = append(rooms, q)
	}

	return bleve.NewConjunctionQuery(tokenQuery, bleve.NewDisjunctionQuery(rooms...))
}

// toPosting rebuilds a posting from stored fields.
func toPosting(id string, fields map[string]any, token domain.Token) (domain.Posting, error) {
	room, _ := fields[fieldRoom].(string)
	rawTS, _ := fields[fieldTimestamp].(string)
	nanos, err := strconv.ParseInt(rawTS, 10, 64)
	if err != nil {
		return domain.Posting{}, fmt.Errorf("bad timestamp %q: %w", rawTS, err)
	}

	hits := 0
	for _, word := range storedStrings(fields[fieldTokens]) {
		if tokenizer.Matches(token, word) {
			hits++
		}
	}

	return domain.Posting{
		EventID:   id,
		RoomID:    room,
		Timestamp: time.Unix(0, nanos).UTC(),
		Hits:      hits,
	}, nil
}

// storedStrings normalises a stored field, which bleve returns as a plain
// string for single-valued arrays.
func storedStrings(v any) []string {
	switch vals := v.(type) {
	case string:
		return []string{vals}
	case []any:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return vals
	default:
		return nil
	}
}
