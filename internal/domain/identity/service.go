// Package identity checks credentials and issues session tokens.
package identity

import (
	"context"
	"errors"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"go.uber.org/zap"

	"worklog/internal/domain/auth"
	"worklog/internal/domain/users"
	"worklog/internal/platform/apperror"
	"worklog/internal/platform/crypto"
)

const mfaIssuer = "Worklog"

var (
	ErrUserStoreMissing   = apperror.NotFound("User database not found")
	ErrInvalidCredentials = apperror.Unauthorized("Invalid credentials")
	ErrMFARequired        = apperror.Unauthorized("MFA code required")
	ErrInvalidMFACode     = apperror.Unauthorized("Invalid MFA code")
	ErrMFANotSetUp        = apperror.InvalidState("MFA has not been set up")
)

// Session is the result of a successful login.
type Session struct {
	User      users.Profile `json:"user"`
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expiresAt"`
}

type Service struct {
	Users    *users.Service
	Crypto   *crypto.Service
	Secret   string
	TokenTTL time.Duration
	now      func() time.Time
	log      *zap.Logger
}

func NewService(usersSvc *users.Service, cryptoSvc *crypto.Service, secret string, ttl time.Duration) *Service {
	return &Service{
		Users:    usersSvc,
		Crypto:   cryptoSvc,
		Secret:   secret,
		TokenTTL: ttl,
		now:      time.Now,
		log:      zap.L().Named("identity.service"),
	}
}

// Login verifies identifier and password. The identifier is matched
// against email first and then against the display name.
func (s *Service) Login(ctx context.Context, identifier, password, mfaCode string) (Session, error) {
	populated, err := s.Users.Populated(ctx)
	if err != nil {
		return Session{}, err
	}
	if !populated {
		return Session{}, ErrUserStoreMissing
	}

	account, err := s.Users.Account(ctx, users.ByEmail(identifier))
	if errors.Is(err, users.ErrNotFound) {
		account, err = s.Users.Account(ctx, users.ByName(identifier))
	}
	if errors.Is(err, users.ErrNotFound) {
		s.log.Info("login rejected", zap.String("reason", "unknown_user"))
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if account.PasswordHash == "" || auth.CheckPassword(account.PasswordHash, password) != nil {
		s.log.Info("login rejected", zap.String("reason", "bad_password"), zap.String("userId", account.ID))
		return Session{}, ErrInvalidCredentials
	}

	if account.MFAEnabled {
		if mfaCode == "" {
			return Session{}, ErrMFARequired
		}
		secret, err := s.Crypto.Open(account.MFASecret)
		if err != nil {
			return Session{}, apperror.Internal(err)
		}
		if !totp.Validate(mfaCode, secret) {
			return Session{}, ErrInvalidMFACode
		}
	}
	return s.issue(account)
}

func (s *Service) issue(account users.User) (Session, error) {
	now := s.now()
	token, err := auth.GenerateToken(s.Secret, auth.Claims{
		UserID: account.ID,
		Email:  account.Email,
		Name:   account.Name,
		Role:   account.Role,
	}, s.TokenTTL, now)
	if err != nil {
		return Session{}, apperror.Internal(err)
	}
	return Session{User: account.Profile(), Token: token, ExpiresAt: now.Add(s.TokenTTL).UTC()}, nil
}

// MFASetup is returned when a new TOTP secret is generated.
type MFASetup struct {
	Secret string `json:"secret"`
	URL    string `json:"otpauthUrl"`
}

// SetupMFA generates a TOTP secret for the user and stores it sealed but
// not yet enabled.
func (s *Service) SetupMFA(ctx context.Context, userID string) (MFASetup, error) {
	account, err := s.Users.Account(ctx, users.ByID(userID))
	if err != nil {
		return MFASetup{}, err
	}
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      mfaIssuer,
		AccountName: account.Email,
		Period:      30,
		Digits:      otp.DigitsSix,
	})
	if err != nil {
		return MFASetup{}, apperror.Internal(err)
	}
	sealed, err := s.Crypto.Seal(key.Secret())
	if err != nil {
		return MFASetup{}, apperror.Internal(err)
	}
	if err := s.Users.SetMFA(ctx, account.ID, sealed, false); err != nil {
		return MFASetup{}, err
	}
	return MFASetup{Secret: key.Secret(), URL: key.URL()}, nil
}

// EnableMFA turns on the second factor once code proves possession of the
// stored secret.
func (s *Service) EnableMFA(ctx context.Context, userID, code string) error {
	account, secret, err := s.secretFor(ctx, userID)
	if err != nil {
		return err
	}
	if !totp.Validate(code, secret) {
		return ErrInvalidMFACode
	}
	return s.Users.SetMFA(ctx, account.ID, account.MFASecret, true)
}

func (s *Service) DisableMFA(ctx context.Context, userID, code string) error {
	account, secret, err := s.secretFor(ctx, userID)
	if err != nil {
		return err
	}
	if account.MFAEnabled && !totp.Validate(code, secret) {
		return ErrInvalidMFACode
	}
	return s.Users.SetMFA(ctx, account.ID, "", false)
}

func (s *Service) secretFor(ctx context.Context, userID string) (users.User, string, error) {
	account, err := s.Users.Account(ctx, users.ByID(userID))
	if err != nil {
		return users.User{}, "", err
	}
	if account.MFASecret == "" {
		return users.User{}, "", ErrMFANotSetUp
	}
	secret, err := s.Crypto.Open(account.MFASecret)
	if err != nil {
		return users.User{}, "", apperror.Internal(err)
	}
	return account, secret, nil
}
