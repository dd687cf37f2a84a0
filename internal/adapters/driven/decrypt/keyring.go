package decrypt

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-chat/internal/logger"
)

// Algorithm is the value of the "algorithm" content field for events
// sealed by this package.
const Algorithm = "sercha.xchacha20-poly1305"

const (
	fieldAlgorithm  = "algorithm"
	fieldCiphertext = "ciphertext"
)

// ErrNoKey is returned by Encrypt when the room has no key.
var ErrNoKey = errors.New("no key for room")

var log = logger.For("decrypt")

// Ensure Keyring implements the interface.
var _ driven.Decryptor = (*Keyring)(nil)

// Keyring holds one AEAD per room.
type Keyring struct {
	mu   sync.RWMutex
	keys map[string]cipher.AEAD
}

// NewKeyring creates an empty key ring.
func NewKeyring() *Keyring {
	return &Keyring{keys: make(map[string]cipher.AEAD)}
}

// AddKey installs a 32-byte key for roomID, replacing any previous one.
func (k *Keyring) AddKey(roomID string, key []byte) error {
	if roomID == "" {
		return fmt.Errorf("%w: empty room id", domain.ErrInvalidInput)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return fmt.Errorf("%w: room %s: %v", domain.ErrInvalidInput, roomID, err)
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	k.keys[roomID] = aead
	return nil
}

// LoadRoomKeys installs keys given as "roomID=base64key" entries.
func (k *Keyring) LoadRoomKeys(entries []string) error {
	for _, entry := range entries {
		roomID, encoded, ok := strings.Cut(entry, "=")
		if !ok {
			return fmt.Errorf("%w: room key entry %q is not roomID=key", domain.ErrInvalidInput, entry)
		}
		key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
		if err != nil {
			return fmt.Errorf("%w: room %s: decoding key: %v", domain.ErrInvalidInput, roomID, err)
		}
		if err := k.AddKey(strings.TrimSpace(roomID), key); err != nil {
			return err
		}
	}
	return nil
}

// HasKey reports whether roomID has a key.
func (k *Keyring) HasKey(roomID string) bool {
	_, ok := k.aead(roomID)
	return ok
}

// Encrypt seals plaintext for roomID and returns the event content
// that TryDecrypt understands.
func (k *Keyring) Encrypt(roomID, plaintext string) (map[string]any, error) {
	aead, ok := k.aead(roomID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoKey, roomID)
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, []byte(plaintext), []byte(roomID))

	return map[string]any{
		fieldAlgorithm:  Algorithm,
		fieldCiphertext: base64.StdEncoding.EncodeToString(sealed),
	}, nil
}

// TryDecrypt opens the event payload with the room key.
// It never fails loudly: any problem leaves the event pending.
func (k *Keyring) TryDecrypt(_ context.Context, event domain.Event) (string, bool) {
	if alg, _ := event.Content[fieldAlgorithm].(string); alg != Algorithm {
		return "", false
	}
	encoded, _ := event.Content[fieldCiphertext].(string)
	if encoded == "" {
		return "", false
	}

	aead, ok := k.aead(event.RoomID)
	if !ok {
		return "", false
	}

	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(sealed) < aead.NonceSize()+aead.Overhead() {
		log.Debug("event %s: malformed ciphertext", event.ID)
		return "", false
	}

	nonce, box := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, box, []byte(event.RoomID))
	if err != nil {
		log.Debug("event %s: %v", event.ID, err)
		return "", false
	}
	return string(plain), true
}

func (k *Keyring) aead(roomID string) (cipher.AEAD, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	aead, ok := k.keys[roomID]
	return aead, ok
}
