package services

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
)

// cursorVersion is bumped whenever the cursor layout changes.
const cursorVersion = 2

// cursor is the decoded form of a next_batch token. It carries the
// ordering key of the last item served plus enough of the query to
// reject tokens replayed against a different search.
type cursor struct {
	Version     int                `json:"v"`
	Order       domain.SearchOrder `json:"order"`
	Fingerprint string             `json:"fp"`
	Rank        int                `json:"rank,omitempty"`
	Timestamp   time.Time          `json:"ts"`
	EventID     string             `json:"event_id"`
}

// queryFingerprint identifies the result set a cursor belongs to.
func queryFingerprint(tokens []domain.Token, roomID string) string {
	var b strings.Builder
	b.WriteString(roomID)
	for _, tok := range tokens {
		b.WriteByte(0)
		b.WriteString(tok.Text)
		if tok.Prefix {
			b.WriteByte('*')
		}
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:8])
}

// encodeCursor returns the opaque token resuming after key.
func encodeCursor(order domain.SearchOrder, fingerprint string, key domain.OrderKey) (string, error) {
	data, err := json.Marshal(cursor{
		Version:     cursorVersion,
		Order:       order,
		Fingerprint: fingerprint,
		Rank:        key.Rank,
		Timestamp:   key.Timestamp.UTC(),
		EventID:     key.EventID,
	})
	if err != nil {
		return "", fmt.Errorf("encoding cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// decodeCursor parses a token produced by encodeCursor for the same
// ordering and query. Anything else is domain.ErrInvalidCursor.
func decodeCursor(token string, order domain.SearchOrder, fingerprint string) (domain.OrderKey, error) {
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return domain.OrderKey{}, fmt.Errorf("%w: not base64", domain.ErrInvalidCursor)
	}

	var c cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return domain.OrderKey{}, fmt.Errorf("%w: malformed", domain.ErrInvalidCursor)
	}

	switch {
	case c.Version != cursorVersion:
		return domain.OrderKey{}, fmt.Errorf("%w: unsupported version %d", domain.ErrInvalidCursor, c.Version)
	case c.EventID == "":
		return domain.OrderKey{}, fmt.Errorf("%w: missing position", domain.ErrInvalidCursor)
	case c.Order != order:
		return domain.OrderKey{}, fmt.Errorf("%w: issued for %s ordering, query uses %s",
			domain.ErrInvalidCursor, c.Order, order)
	case c.Fingerprint != fingerprint:
		return domain.OrderKey{}, fmt.Errorf("%w: issued for a different query", domain.ErrInvalidCursor)
	}

	return domain.OrderKey{
		Rank:      c.Rank,
		Timestamp: c.Timestamp,
		EventID:   c.EventID,
	}, nil
}
