package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.True(t, VerifyPassword(hash, "correct horse"))
	assert.False(t, VerifyPassword(hash, "correct horsE"))
	assert.False(t, VerifyPassword(hash, ""))
	assert.False(t, VerifyPassword("not-a-hash", "correct horse"))
}

func TestHashPasswordFallsBackToDefaultCost(t *testing.T) {
	hash, err := HashPassword("pw", 99)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestTokenRoundTrip(t *testing.T) {
	testCases := []struct {
		name     string
		id       uint64
		username string
		ttl      time.Duration
	}{
		{name: "expiring", id: 7, username: "alice", ttl: time.Hour},
		{name: "non expiring", id: 42, username: "bob", ttl: 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := EncodeToken("secret", tc.id, tc.username, tc.ttl)
			require.NoError(t, err)

			claims, err := DecodeToken("secret", raw)
			require.NoError(t, err)
			assert.Equal(t, tc.id, claims.ID)
			assert.Equal(t, tc.username, claims.Username)
			if tc.ttl > 0 {
				require.NotNil(t, claims.ExpiresAt)
			} else {
				assert.Nil(t, claims.ExpiresAt)
			}
		})
	}
}

func TestDecodeTokenRejects(t *testing.T) {
	good, err := EncodeToken("secret", 1, "alice", time.Hour)
	require.NoError(t, err)

	// EncodeToken omits exp for ttl <= 0, so build an expired token by hand.
	expiredClaims := TokenClaims{ID: 1, Username: "alice", RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, expiredClaims).SignedString([]byte("secret"))
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, TokenClaims{ID: 1}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	parts := strings.Split(good, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	flipped := parts[0] + "." + parts[1] + "." + string(sig)

	testCases := []struct {
		name   string
		secret string
		raw    string
	}{
		{name: "other secret", secret: "different", raw: good},
		{name: "flipped signature", secret: "secret", raw: flipped},
		{name: "malformed", secret: "secret", raw: "not.a.jwt"},
		{name: "empty", secret: "secret", raw: ""},
		{name: "expired", secret: "secret", raw: expired},
		{name: "alg none", secret: "secret", raw: none},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			claims, err := DecodeToken(tc.secret, tc.raw)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, claims)
		})
	}
}

func TestRandomHex(t *testing.T) {
	a, err := RandomHex(10)
	require.NoError(t, err)
	b, err := RandomHex(10)
	require.NoError(t, err)
	assert.Len(t, a, 20)
	assert.NotEqual(t, a, b)
}
