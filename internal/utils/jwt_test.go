package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/freelance-gateway/internal/model"
)

const testSecret = "test-secret-key"

var testUser = model.UserView{
	UserID:   "8f14e45f-ea8e-4b5f-9f3a-000000000001",
	Email:    "dev@example.com",
	UserType: model.UserTypeDeveloper,
}

func TestTokenRoundTrip(t *testing.T) {
	st, err := NewSignedToken(testSecret, testUser, model.TokenKindAccess, 15*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, st.Token)

	claims, err := VerifyToken(testSecret, st.Token)
	require.NoError(t, err)
	assert.Equal(t, testUser.UserID, claims.UserID)
	assert.Equal(t, testUser.Email, claims.Email)
	assert.Equal(t, model.UserTypeDeveloper, claims.UserType)
	assert.Equal(t, model.TokenKindAccess, claims.TokenKind)
	assert.WithinDuration(t, st.Exp, claims.ExpiresAt, time.Second)
}

func TestTokensAreUniquePerIssue(t *testing.T) {
	// Two tokens minted back to back share user, kind and second-granularity
	// timestamps; the jti must still make them distinct. Rotation and the
	// blacklist key on per-token hashes, so identical tokens would let a
	// rotated refresh token keep working and let a fresh login collide with
	// a just-blacklisted access token.
	a, err := NewSignedToken(testSecret, testUser, model.TokenKindRefresh, 7*24*time.Hour)
	require.NoError(t, err)
	b, err := NewSignedToken(testSecret, testUser, model.TokenKindRefresh, 7*24*time.Hour)
	require.NoError(t, err)

	assert.NotEqual(t, a.Token, b.Token)
	assert.NotEqual(t, HashToken(a.Token), HashToken(b.Token))
}

func TestRefreshTokenCarriesKind(t *testing.T) {
	st, err := NewSignedToken(testSecret, testUser, model.TokenKindRefresh, 7*24*time.Hour)
	require.NoError(t, err)

	claims, err := VerifyToken(testSecret, st.Token)
	require.NoError(t, err)
	assert.Equal(t, model.TokenKindRefresh, claims.TokenKind)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	st, err := NewSignedToken(testSecret, testUser, model.TokenKindAccess, time.Minute)
	require.NoError(t, err)

	_, err = VerifyToken("another-secret", st.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := VerifyToken(testSecret, "not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyExpired(t *testing.T) {
	st, err := NewSignedToken(testSecret, testUser, model.TokenKindAccess, -time.Minute)
	require.NoError(t, err)

	_, err = VerifyToken(testSecret, st.Token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestDecodeTokenIgnoresExpiry(t *testing.T) {
	st, err := NewSignedToken(testSecret, testUser, model.TokenKindAccess, -time.Minute)
	require.NoError(t, err)

	// An expired token still identifies its holder; logout depends on this.
	claims, err := DecodeToken(testSecret, st.Token)
	require.NoError(t, err)
	assert.Equal(t, testUser.UserID, claims.UserID)

	// The signature is still enforced.
	_, err = DecodeToken("another-secret", st.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHashTokenIsStable(t *testing.T) {
	a := HashToken("some-token")
	b := HashToken("some-token")
	c := HashToken("other-token")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
