package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
)

var (
	// ErrInvalidRefresh is returned for an invalid or expired refresh token.
	ErrInvalidRefresh = errors.New("invalid refresh token")
)

// GenerateToken creates a secure random token and its persistable hash.
// Used for both refresh tokens and password-reset tokens; only the hash is
// stored server-side.
func GenerateToken() (raw string, hashed string, err error) {
	buf := make([]byte, 32)
	if _, err = rand.Read(buf); err != nil {
		return "", "", err
	}

	raw = base64.RawURLEncoding.EncodeToString(buf)
	hashed = HashToken(raw)
	return raw, hashed, nil
}

// HashToken produces a base64 SHA-256 hash.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// RefreshRedisKey builds the redis key holding refresh-token state.
func RefreshRedisKey(hash string) string {
	return fmt.Sprintf("refresh:%s", hash)
}

// ResetRedisKey builds the redis key holding a pending password reset.
func ResetRedisKey(hash string) string {
	return fmt.Sprintf("pwreset:%s", hash)
}
