package utils // package utils provides credential helpers: hashing, tokens and random names

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned by DecodeToken for any token that fails to
// parse, carries a foreign signature, uses a non-HMAC algorithm or has expired.
var ErrInvalidToken = errors.New("invalid token")

// TokenClaims is the claim set carried by every token the API issues:
// the user's id and username plus the registered iat/exp claims.
type TokenClaims struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// EncodeToken signs an HS256 token for the given user. A ttl of zero or less
// produces a token without an exp claim.
func EncodeToken(secret string, id uint64, username string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := TokenClaims{
		ID:       id,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// DecodeToken verifies raw against secret and returns its claims.
func DecodeToken(secret, raw string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid || claims.ID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// RandomHex returns n bytes of cryptographically secure random data,
// hex encoded (2n characters).
func RandomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
