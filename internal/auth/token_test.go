package auth

import (
	"testing"
	"time"

	"eventify/internal/config"
	"eventify/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *models.User {
	return &models.User{
		ID:    "user-1",
		Name:  "Ada",
		Email: "ada@example.com",
		Role:  models.RoleOrganizer,
	}
}

func TestIssueAndParseToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "test-secret", TTL: time.Hour}

	token, err := IssueToken(cfg, testUser())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	ident, err := ParseToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", ident.UserID)
	assert.Equal(t, "Ada", ident.Name)
	assert.Equal(t, "ada@example.com", ident.Email)
	assert.Equal(t, models.RoleOrganizer, ident.Role)
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := IssueToken(config.JWTConfig{Secret: "secret-a", TTL: time.Hour}, testUser())
	require.NoError(t, err)

	_, err = ParseToken(config.JWTConfig{Secret: "secret-b"}, token)
	assert.Error(t, err)
}

func TestParseExpiredToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "test-secret", TTL: -time.Minute}

	token, err := IssueToken(cfg, testUser())
	require.NoError(t, err)

	_, err = ParseToken(cfg, token)
	assert.Error(t, err)
}

func TestParseGarbageToken(t *testing.T) {
	_, err := ParseToken(config.JWTConfig{Secret: "test-secret"}, "not.a.token")
	assert.Error(t, err)
}
