package identity

import (
	"context"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worklog/internal/domain/auth"
	"worklog/internal/domain/users"
	"worklog/internal/platform/crypto"
	"worklog/internal/platform/storage"
)

const testKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func newTestService(t *testing.T) (*Service, *users.Service) {
	t.Helper()
	usersSvc := users.NewService(storage.NewMemoryStore())
	cryptoSvc, err := crypto.New(testKey)
	require.NoError(t, err)
	return NewService(usersSvc, cryptoSvc, "test-secret", time.Hour), usersSvc
}

func seedAdmin(t *testing.T, usersSvc *users.Service) {
	t.Helper()
	_, err := usersSvc.EnsureSeed(context.Background(), []users.Seed{
		{Name: "Admin User", Email: "admin", Password: "admin", Role: auth.RoleAdmin, Country: "India"},
	})
	require.NoError(t, err)
}

func TestLoginWithoutUserStore(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Login(context.Background(), "admin", "admin", "")
	assert.ErrorIs(t, err, ErrUserStoreMissing)
}

func TestLoginScenarios(t *testing.T) {
	svc, usersSvc := newTestService(t)
	seedAdmin(t, usersSvc)
	ctx := context.Background()

	session, err := svc.Login(ctx, "admin", "admin", "")
	require.NoError(t, err)
	assert.Equal(t, "Admin User", session.User.Name)
	assert.Equal(t, auth.RoleAdmin, session.User.Role)

	claims, err := auth.ParseToken("test-secret", session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, claims.UserID)

	_, err = svc.Login(ctx, "admin", "wrong", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody", "admin", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginFallsBackToName(t *testing.T) {
	svc, usersSvc := newTestService(t)
	seedAdmin(t, usersSvc)

	session, err := svc.Login(context.Background(), "Admin User", "admin", "")
	require.NoError(t, err)
	assert.Equal(t, "admin", session.User.Email)
}

func TestMFAFlow(t *testing.T) {
	svc, usersSvc := newTestService(t)
	seedAdmin(t, usersSvc)
	ctx := context.Background()

	admin, err := usersSvc.Get(ctx, users.ByEmail("admin"))
	require.NoError(t, err)

	setup, err := svc.SetupMFA(ctx, admin.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, setup.URL)

	acct, err := usersSvc.Account(ctx, users.ByID(admin.ID))
	require.NoError(t, err)
	assert.NotEqual(t, setup.Secret, acct.MFASecret)
	assert.False(t, acct.MFAEnabled)

	assert.ErrorIs(t, svc.EnableMFA(ctx, admin.ID, "000000x"), ErrInvalidMFACode)

	code, err := totp.GenerateCode(setup.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, svc.EnableMFA(ctx, admin.ID, code))

	_, err = svc.Login(ctx, "admin", "admin", "")
	assert.ErrorIs(t, err, ErrMFARequired)

	code, err = totp.GenerateCode(setup.Secret, time.Now())
	require.NoError(t, err)
	_, err = svc.Login(ctx, "admin", "admin", code)
	require.NoError(t, err)

	require.NoError(t, svc.DisableMFA(ctx, admin.ID, code))
	_, err = svc.Login(ctx, "admin", "admin", "")
	require.NoError(t, err)
}

func TestEnableWithoutSetup(t *testing.T) {
	svc, usersSvc := newTestService(t)
	seedAdmin(t, usersSvc)
	ctx := context.Background()

	admin, err := usersSvc.Get(ctx, users.ByEmail("admin"))
	require.NoError(t, err)
	assert.ErrorIs(t, svc.EnableMFA(ctx, admin.ID, "123456"), ErrMFANotSetUp)
}
