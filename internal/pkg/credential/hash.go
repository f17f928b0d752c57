package credential

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const hashCost = 10

// HashRefresh returns the bcrypt hash stored in place of a refresh token.
// The token is digested first since bcrypt rejects inputs over 72 bytes.
func HashRefresh(token string) (string, error) {
	h, err := bcrypt.GenerateFromPassword(digest(token), hashCost)
	if err != nil {
		return "", fmt.Errorf("hash refresh token: %w", err)
	}
	return string(h), nil
}

// CompareRefresh reports whether token matches a hash from HashRefresh.
func CompareRefresh(token, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), digest(token)) == nil
}

func digest(token string) []byte {
	sum := sha256.Sum256([]byte(token))
	return []byte(hex.EncodeToString(sum[:]))
}
