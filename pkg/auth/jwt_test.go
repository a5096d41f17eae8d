package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicroute/clinicroute/internal/config"
	"github.com/clinicroute/clinicroute/internal/domain"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:          "test-secret-that-is-long-enough-0",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
		Issuer:          "clinicroute-test",
	}
}

func testClaims() *domain.Claims {
	return &domain.Claims{
		UserID:   uuid.New(),
		Username: "reception1",
		Role:     domain.RoleReceptionist,
	}
}

func TestGenerateAndValidateTokenPair(t *testing.T) {
	m := NewJWTManager(testJWTConfig())
	claims := testClaims()

	pair, err := m.GenerateTokenPair(claims)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.True(t, pair.ExpiresAt.After(time.Now()))

	got, err := m.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, claims.UserID, got.UserID)
	assert.Equal(t, claims.Username, got.Username)
	assert.Equal(t, claims.Role, got.Role)

	got, err = m.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, claims.UserID, got.UserID)
}

func TestTokenTypeMismatch(t *testing.T) {
	m := NewJWTManager(testJWTConfig())

	pair, err := m.GenerateTokenPair(testClaims())
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenTypeMismatch)

	_, err = m.ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenTypeMismatch)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	m := NewJWTManager(testJWTConfig())
	pair, err := m.GenerateTokenPair(testClaims())
	require.NoError(t, err)

	otherCfg := testJWTConfig()
	otherCfg.Secret = "another-secret-that-is-long-enough"
	other := NewJWTManager(otherCfg)

	_, err = other.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	cfg.AccessTokenTTL = -time.Minute
	m := NewJWTManager(cfg)

	pair, err := m.GenerateTokenPair(testClaims())
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateRejectsGarbage(t *testing.T) {
	m := NewJWTManager(testJWTConfig())

	_, err := m.ValidateAccessToken("not.a.token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestPatientClaimsSurvive(t *testing.T) {
	m := NewJWTManager(testJWTConfig())
	patientID := uuid.New()
	claims := testClaims()
	claims.Role = domain.RolePatient
	claims.PatientID = &patientID

	pair, err := m.GenerateTokenPair(claims)
	require.NoError(t, err)

	got, err := m.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	require.NotNil(t, got.PatientID)
	assert.Equal(t, patientID, *got.PatientID)
}
