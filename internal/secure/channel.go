// Package secure provides authenticated symmetric encryption for client data.
//
// A Channel owns one randomly generated 256-bit key for its whole lifetime.
// The key is never persisted, exported or rotated: tokens produced by one
// Channel can only be opened by that same Channel, and all of them become
// unreadable once the process exits. Callers that need durable ciphertext must
// not rely on this package.
//
// Token layout (base64url, no padding):
//
//	version (1) | issued-at, unix seconds, big-endian (8) | nonce (24) | ciphertext | tag (16)
//
// Version and issued-at are authenticated as additional data, so changing any
// bit of a token makes Decrypt fail.
package secure

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/chacha20poly1305"

	"git.home.luguber.info/inful/webforge/internal/foundation/errors"
)

const (
	// KeySize is the length in bytes of a Channel key.
	KeySize = chacha20poly1305.KeySize

	tokenVersion byte = 0x81
	headerLen         = 1 + 8
	nonceLen          = chacha20poly1305.NonceSizeX
	minTokenLen       = headerLen + nonceLen + chacha20poly1305.Overhead

	// MaxClockSkew is how far in the future an issued-at time may lie before
	// DecryptWithTTL rejects the token.
	MaxClockSkew = 60 * time.Second
)

var encoding = base64.RawURLEncoding.Strict()

// Sentinel errors. Returned errors match them with errors.Is.
var (
	ErrMalformedToken   = errors.DecryptionError("malformed token").Build()
	ErrUnsupportedToken = errors.DecryptionError("unsupported token version").Build()
	ErrAuthentication   = errors.DecryptionError("token authentication failed").Build()
	ErrExpiredToken     = errors.DecryptionError("token expired").Build()
	ErrInvalidUTF8      = errors.EncryptionError("plaintext is not valid UTF-8").Build()
)

// Channel encrypts and decrypts text with a single process-lifetime key.
// It is safe for concurrent use.
type Channel struct {
	aead cipher.AEAD
	now  func() time.Time
}

// New creates a Channel with a fresh random key.
func New() (*Channel, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, errors.EncryptionError("failed to generate key").WithCause(err).Build()
	}
	return NewWithKey(key)
}

// NewWithKey creates a Channel from an explicit key. It exists for tests and
// for embedding callers that manage keys themselves.
func NewWithKey(key []byte) (*Channel, error) {
	if len(key) != KeySize {
		return nil, errors.ValidationError("key has wrong length").
			WithContext("expected", KeySize).
			WithContext("actual", len(key)).
			Build()
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, errors.EncryptionError("failed to initialize cipher").WithCause(err).Build()
	}
	return &Channel{aead: aead, now: time.Now}, nil
}

// Encrypt seals plaintext into a printable token.
func (c *Channel) Encrypt(plaintext string) (string, error) {
	if !utf8.ValidString(plaintext) {
		return "", ErrInvalidUTF8
	}

	header := make([]byte, headerLen)
	header[0] = tokenVersion
	binary.BigEndian.PutUint64(header[1:], uint64(c.now().Unix()))

	nonce := make([]byte, nonceLen)
	if _, err := rand.Read(nonce); err != nil {
		return "", errors.EncryptionError("failed to generate nonce").WithCause(err).Build()
	}

	out := make([]byte, 0, headerLen+nonceLen+len(plaintext)+c.aead.Overhead())
	out = append(out, header...)
	out = append(out, nonce...)
	out = c.aead.Seal(out, nonce, []byte(plaintext), header)
	return encoding.EncodeToString(out), nil
}

// Decrypt opens a token produced by Encrypt on this Channel. Any malformed,
// foreign or tampered token yields a decryption error and no data.
func (c *Channel) Decrypt(token string) (string, error) {
	plaintext, _, err := c.open(token)
	return plaintext, err
}

// DecryptWithTTL is Decrypt, additionally rejecting tokens issued more than
// ttl ago or more than MaxClockSkew in the future.
func (c *Channel) DecryptWithTTL(token string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", errors.ValidationError("ttl must be positive").WithContext("ttl", ttl.String()).Build()
	}
	plaintext, issued, err := c.open(token)
	if err != nil {
		return "", err
	}
	now := c.now()
	if now.Sub(issued) > ttl {
		return "", ErrExpiredToken.WithContext("issued_at", issued.UTC().Format(time.RFC3339))
	}
	if issued.Sub(now) > MaxClockSkew {
		return "", errors.DecryptionError("token issued in the future").
			WithContext("issued_at", issued.UTC().Format(time.RFC3339)).
			Build()
	}
	return plaintext, nil
}

// IssuedAt returns the authenticated creation time of token.
func (c *Channel) IssuedAt(token string) (time.Time, error) {
	_, issued, err := c.open(token)
	return issued, err
}

func (c *Channel) open(token string) (string, time.Time, error) {
	raw, err := encoding.DecodeString(strings.TrimSpace(token))
	if err != nil {
		return "", time.Time{}, errors.DecryptionError(ErrMalformedToken.Message()).WithCause(err).Build()
	}
	if len(raw) < minTokenLen {
		return "", time.Time{}, ErrMalformedToken.WithContext("length", len(raw))
	}
	if raw[0] != tokenVersion {
		return "", time.Time{}, ErrUnsupportedToken.WithContext("version", int(raw[0]))
	}

	header := raw[:headerLen]
	nonce := raw[headerLen : headerLen+nonceLen]
	sealed := raw[headerLen+nonceLen:]

	plaintext, err := c.aead.Open(nil, nonce, sealed, header)
	if err != nil {
		return "", time.Time{}, ErrAuthentication
	}
	if !utf8.Valid(plaintext) {
		return "", time.Time{}, errors.DecryptionError("plaintext is not valid UTF-8").Build()
	}

	issued := time.Unix(int64(binary.BigEndian.Uint64(header[1:])), 0)
	return string(plaintext), issued, nil
}
