package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/job-portal/internal/config"
	"github.com/spec-kit/job-portal/internal/domain"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{JWTSecret: "test-secret", Issuer: "job-portal", TokenTTLMinutes: 30}
}

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager(testAuthConfig())

	token, exp, err := tm.GenerateToken(domain.Principal{ID: "hm-1", Role: domain.RoleHiringManager, Verified: true})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), exp, 5*time.Second)

	principal, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, domain.Principal{ID: "hm-1", Role: domain.RoleHiringManager, Verified: true}, principal)
}

func TestTokenManager_VerifiedOnlyForHiringManagers(t *testing.T) {
	tm := NewTokenManager(testAuthConfig())

	token, _, err := tm.GenerateToken(domain.Principal{ID: "s-1", Role: domain.RoleStudent, Verified: true})
	require.NoError(t, err)

	principal, err := tm.Verify(token)
	require.NoError(t, err)
	assert.False(t, principal.Verified)
}

func TestTokenManager_Rejects(t *testing.T) {
	tm := NewTokenManager(testAuthConfig())
	valid := domain.Principal{ID: "a-1", Role: domain.RoleAdmin}

	otherSecret := testAuthConfig()
	otherSecret.JWTSecret = "other"
	forged, _, err := NewTokenManager(otherSecret).GenerateToken(valid)
	require.NoError(t, err)

	otherIssuer := testAuthConfig()
	otherIssuer.Issuer = "someone-else"
	foreign, _, err := NewTokenManager(otherIssuer).GenerateToken(valid)
	require.NoError(t, err)

	expiredMgr := NewTokenManager(testAuthConfig())
	expiredMgr.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, err := expiredMgr.GenerateToken(valid)
	require.NoError(t, err)

	unknownRole, _, err := tm.GenerateToken(domain.Principal{ID: "x", Role: "janitor"})
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":      "not-a-jwt",
		"wrong secret": forged,
		"wrong issuer": foreign,
		"expired":      expired,
		"unknown role": unknownRole,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := tm.Verify(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
