package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.NoError(t, CheckPassword(hash, "s3cret"))

	other, err := HashPassword("s3cretx")
	require.NoError(t, err)
	assert.Error(t, CheckPassword(other, "s3cret"))
}

func TestHashIsSalted(t *testing.T) {
	a, err := HashPassword("same")
	require.NoError(t, err)
	b, err := HashPassword("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestTokenRoundTrip(t *testing.T) {
	now := time.Now()
	token, err := GenerateToken("secret", Claims{UserID: "u1", Email: "admin", Role: RoleAdmin}, time.Hour, now)
	require.NoError(t, err)

	claims, err := ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, RoleAdmin, claims.Role)

	_, err = ParseToken("other", token)
	assert.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	token, err := GenerateToken("secret", Claims{UserID: "u1"}, time.Minute, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	_, err = ParseToken("secret", token)
	assert.Error(t, err)
}

func TestGenerateTokenRequiresSecret(t *testing.T) {
	_, err := GenerateToken("", Claims{UserID: "u1"}, time.Minute, time.Now())
	assert.Error(t, err)
}

func TestEnforcerPolicy(t *testing.T) {
	e, err := NewEnforcer()
	require.NoError(t, err)

	cases := []struct {
		role, obj, act string
		allowed        bool
	}{
		{RoleAdmin, ResSettings, ActWrite, true},
		{RoleAdmin, ResLeaveAdmin, ActWrite, true},
		{RoleAdmin, ResTimesheets, ActWrite, true},
		{RoleUser, ResTimesheets, ActWrite, true},
		{RoleUser, ResSettings, ActRead, true},
		{RoleUser, ResSettings, ActWrite, false},
		{RoleUser, ResLeaveAdmin, ActWrite, false},
		{RoleUser, ResUsers, ActWrite, false},
		{"guest", ResProjects, ActRead, false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.role+"/"+tc.obj+"/"+tc.act, func(t *testing.T) {
			ok, err := e.Enforce(tc.role, tc.obj, tc.act)
			require.NoError(t, err)
			assert.Equal(t, tc.allowed, ok)
		})
	}
}
