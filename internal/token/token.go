// Package token implements the sheets-api bearer credential: the
// spreadsheet id and an issuance timestamp, XOR-ed with a repeating
// shared secret and base64-encoded. The scheme matches what the
// WordPress plugin expects; it is a shared-secret check, not real
// cryptography (the key stream repeats and is recoverable from a
// known-plaintext token).
package token

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Validity is the accepted token age. A token older than this is
// rejected by Validate.
const Validity = 24 * time.Hour

var (
	ErrSecretMissing = errors.New("token: secret key is not configured")
	ErrDecode        = errors.New("token: not a valid encoded token")
	ErrFormat        = errors.New("token: malformed payload")
	ErrExpired       = errors.New("token: expired")
)

// Claims is the payload recovered from a valid token.
type Claims struct {
	WorkspaceID string
	IssuedAt    time.Time
}

// Codec issues and validates tokens. The zero value is not usable;
// create one with New.
type Codec struct {
	now func() time.Time
}

func New() *Codec {
	return &Codec{now: time.Now}
}

// NewWithClock is used by tests to pin the clock.
func NewWithClock(now func() time.Time) *Codec {
	return &Codec{now: now}
}

// Encode XORs plaintext with the repeating secret and base64-encodes the
// result. Deterministic for a fixed (plaintext, secret) pair.
func Encode(plaintext, secret string) (string, error) {
	if secret == "" {
		return "", ErrSecretMissing
	}
	out := xorBytes([]byte(plaintext), secret)
	return base64.StdEncoding.EncodeToString(out), nil
}

// Decode is the inverse of Encode.
func Decode(tok, secret string) (string, error) {
	if secret == "" {
		return "", ErrSecretMissing
	}
	raw, err := base64.StdEncoding.DecodeString(tok)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return string(xorBytes(raw, secret)), nil
}

func xorBytes(in []byte, secret string) []byte {
	out := make([]byte, len(in))
	for i, b := range in {
		out[i] = b ^ secret[i%len(secret)]
	}
	return out
}

// Issue builds a fresh token for workspaceID: "<workspaceID>|<unix ms>".
func (c *Codec) Issue(workspaceID, secret string) (string, error) {
	millis := c.now().UnixMilli()
	return Encode(workspaceID+"|"+strconv.FormatInt(millis, 10), secret)
}

// Validate decodes tok and checks its age against Validity. A token
// issued exactly Validity ago is still accepted; one millisecond more
// fails with ErrExpired.
func (c *Codec) Validate(tok, secret string) (Claims, error) {
	plain, err := Decode(tok, secret)
	if err != nil {
		return Claims{}, err
	}

	parts := strings.Split(plain, "|")
	if len(parts) != 2 {
		return Claims{}, ErrFormat
	}
	issuedMillis, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: bad timestamp", ErrFormat)
	}

	issuedAt := time.UnixMilli(issuedMillis)
	if c.now().UnixMilli()-issuedMillis > Validity.Milliseconds() {
		return Claims{}, ErrExpired
	}

	return Claims{WorkspaceID: parts[0], IssuedAt: issuedAt}, nil
}
