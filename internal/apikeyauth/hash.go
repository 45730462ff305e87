// Package apikeyauth hashes and verifies API key secrets. A key's printable
// form is "<prefix>.<secret>"; only the prefix and a salted hash of the
// secret are ever persisted.
package apikeyauth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
)

const (
	prefixLen = 12
	saltLen   = 16
)

// Generate creates a new key: a random prefix, a random secret, and the
// salted hash to persist. raw is the value handed to the caller once and
// never stored.
func Generate() (raw string, prefix string, salt []byte, hash []byte, err error) {
	prefixBytes := make([]byte, prefixLen)
	if _, err = rand.Read(prefixBytes); err != nil {
		return "", "", nil, nil, fmt.Errorf("generating prefix: %w", err)
	}
	prefix = base64.RawURLEncoding.EncodeToString(prefixBytes)[:prefixLen]

	secretBytes := make([]byte, 32)
	if _, err = rand.Read(secretBytes); err != nil {
		return "", "", nil, nil, fmt.Errorf("generating secret: %w", err)
	}
	secret := base64.RawURLEncoding.EncodeToString(secretBytes)

	salt = make([]byte, saltLen)
	if _, err = rand.Read(salt); err != nil {
		return "", "", nil, nil, fmt.Errorf("generating salt: %w", err)
	}

	raw = prefix + "." + secret
	hash = hashSecret(secret, salt)
	return raw, prefix, salt, hash, nil
}

// Split extracts the prefix from a raw "<prefix>.<secret>" key value.
func Split(raw string) (prefix, secret string, ok bool) {
	i := strings.IndexByte(raw, '.')
	if i <= 0 || i == len(raw)-1 {
		return "", "", false
	}
	return raw[:i], raw[i+1:], true
}

// Verify reports whether secret matches the given salt/hash pair, in
// constant time with respect to the comparison itself.
func Verify(secret string, salt, hash []byte) bool {
	candidate := hashSecret(secret, salt)
	return subtle.ConstantTimeCompare(candidate, hash) == 1
}

func hashSecret(secret string, salt []byte) []byte {
	mac := hmac.New(sha256.New, salt)
	mac.Write([]byte(secret))
	return mac.Sum(nil)
}
