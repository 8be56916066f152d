package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"hash"
)

var (
	ErrInvalidLength    = errors.New("invalid_cursor_length")
	ErrInvalidSignature = errors.New("invalid_cursor_signature")
)

// Codec lists the cursor methods the handlers rely on.
// Implementations must be safe for concurrent use.
type Codec interface {
	EncodeRecommendationsCursor(id int64) string
	DecodeRecommendationsCursor(token string) (int64, error)
}

// HMAC implements Codec using HMAC-SHA256 for integrity.
// It encodes payloads as base64 URL without padding.
type HMAC struct {
	key []byte
	h   func() hash.Hash
}

// NewHMAC creates an HMAC signer with the provided secret key.
func NewHMAC(key []byte) *HMAC {
	return &HMAC{key: append([]byte(nil), key...), h: sha256.New}
}

// seal signs the payload and returns a base64url token payload||sig.
func (c *HMAC) seal(payload []byte) string {
	mac := hmac.New(c.h, c.key)
	mac.Write(payload)
	sig := mac.Sum(nil)
	buf := append(payload, sig...)
	return base64.RawURLEncoding.EncodeToString(buf)
}

// open verifies the token and returns the payload bytes.
func (c *HMAC) open(token string, payloadLen int) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, err
	}
	if len(raw) != payloadLen+sha256.Size {
		return nil, ErrInvalidLength
	}
	payload := raw[:payloadLen]
	sig := raw[payloadLen:]
	mac := hmac.New(c.h, c.key)
	mac.Write(payload)
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return nil, ErrInvalidSignature
	}
	return payload, nil
}

// Recommendations cursor: last seen row id(int64), newest-first paging.
func (c *HMAC) EncodeRecommendationsCursor(id int64) string {
	payload := make([]byte, 8)
	binary.BigEndian.PutUint64(payload, uint64(id))
	return c.seal(payload)
}

func (c *HMAC) DecodeRecommendationsCursor(token string) (int64, error) {
	payload, err := c.open(token, 8)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(payload)), nil
}
