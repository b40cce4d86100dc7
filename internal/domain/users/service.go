package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"worklog/internal/domain/auth"
	"worklog/internal/platform/apperror"
	"worklog/internal/platform/storage"
)

// protectedFields cannot be set through Update.
var protectedFields = []string{"id", "createdAt", "updatedAt", "passwordHash", "mfaSecret", "mfaEnabled"}

type Service struct {
	records storage.Records[User]
	now     func() time.Time
	log     *zap.Logger
}

func NewService(store storage.Store) *Service {
	return &Service{
		records: storage.Records[User]{Store: store, Collection: storage.Users, Envelope: "users"},
		now:     time.Now,
		log:     zap.L().Named("users.service"),
	}
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) all(ctx context.Context) ([]User, error) {
	items, err := s.records.All(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	for i := range items {
		items[i].normalize()
	}
	return items, nil
}

// Populated reports whether the user collection exists.
func (s *Service) Populated(ctx context.Context) (bool, error) {
	ok, err := s.records.Populated(ctx)
	if err != nil {
		return false, apperror.Internal(err)
	}
	return ok, nil
}

func (s *Service) List(ctx context.Context) ([]Profile, error) {
	items, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Profile, 0, len(items))
	for _, u := range items {
		out = append(out, u.Profile())
	}
	return out, nil
}

// Account returns the full record including credential fields.
func (s *Service) Account(ctx context.Context, lookup Lookup) (User, error) {
	items, err := s.all(ctx)
	if err != nil {
		return User{}, err
	}
	for _, u := range items {
		if lookup.matches(u) {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (s *Service) Get(ctx context.Context, lookup Lookup) (Profile, error) {
	u, err := s.Account(ctx, lookup)
	if err != nil {
		return Profile{}, err
	}
	return u.Profile(), nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Profile, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return Profile{}, ErrMissingFields
	}
	if in.Role == "" {
		in.Role = auth.RoleUser
	}
	if !auth.ValidRole(in.Role) {
		return Profile{}, ErrInvalidRole
	}

	items, err := s.all(ctx)
	if err != nil {
		return Profile{}, err
	}
	for _, u := range items {
		if ByEmail(in.Email).matches(u) {
			return Profile{}, ErrDuplicateEmail
		}
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return Profile{}, apperror.Internal(fmt.Errorf("hash password: %w", err))
	}
	user := User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		Country:      in.Country,
		Manager:      in.Manager,
		ManagerEmail: in.ManagerEmail,
		Designation:  in.Designation,
		CreatedAt:    s.now().UTC().Format(time.RFC3339),
	}
	if err := s.records.Replace(ctx, append(items, user)); err != nil {
		return Profile{}, apperror.Internal(err)
	}
	s.log.Info("user created", zap.String("id", user.ID), zap.String("email", user.Email))
	return user.Profile(), nil
}

// Update shallow-merges patch onto the matched user. A "password" key is
// hashed before storage.
func (s *Service) Update(ctx context.Context, lookup Lookup, patch map[string]any) (Profile, error) {
	patch, err := s.preparePatch(patch)
	if err != nil {
		return Profile{}, err
	}
	items, err := s.all(ctx)
	if err != nil {
		return Profile{}, err
	}
	idx := -1
	for i, u := range items {
		if lookup.matches(u) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Profile{}, ErrNotFound
	}

	updated := items[idx]
	if err := storage.Merge(&updated, patch); err != nil {
		return Profile{}, apperror.Validation("Invalid user fields").WithErr(err)
	}
	updated.normalize()
	if !auth.ValidRole(updated.Role) {
		return Profile{}, ErrInvalidRole
	}
	if strings.TrimSpace(updated.Email) == "" || strings.TrimSpace(updated.Name) == "" {
		return Profile{}, apperror.Validation("Name and email cannot be empty")
	}
	for i, u := range items {
		if i != idx && ByEmail(updated.Email).matches(u) {
			return Profile{}, ErrDuplicateEmail
		}
	}
	updated.UpdatedAt = s.now().UTC().Format(time.RFC3339)
	items[idx] = updated
	if err := s.records.Replace(ctx, items); err != nil {
		return Profile{}, apperror.Internal(err)
	}
	return updated.Profile(), nil
}

func (s *Service) preparePatch(patch map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(patch))
	for k, v := range patch {
		out[k] = v
	}
	for _, k := range protectedFields {
		delete(out, k)
	}
	if raw, ok := out["manager_email"]; ok {
		out["managerEmail"] = raw
		delete(out, "manager_email")
	}
	if raw, ok := out["password"]; ok {
		delete(out, "password")
		password, _ := raw.(string)
		if password != "" {
			hash, err := auth.HashPassword(password)
			if err != nil {
				return nil, apperror.Internal(fmt.Errorf("hash password: %w", err))
			}
			out["passwordHash"] = hash
		}
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, lookup Lookup) (Profile, error) {
	removed, err := s.records.Delete(ctx, lookup.matches)
	if errors.Is(err, storage.ErrNoMatch) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, apperror.Internal(err)
	}
	u := removed[0]
	u.normalize()
	s.log.Info("user deleted", zap.String("id", u.ID), zap.Int("removed", len(removed)))
	return u.Profile(), nil
}

// SetMFA stores the sealed TOTP secret and flag for the user with id.
func (s *Service) SetMFA(ctx context.Context, id, sealedSecret string, enabled bool) error {
	_, err := s.records.Update(ctx, ByID(id).matches, func(u *User) error {
		u.MFASecret = sealedSecret
		u.MFAEnabled = enabled
		u.UpdatedAt = s.now().UTC().Format(time.RFC3339)
		return nil
	})
	if errors.Is(err, storage.ErrNoMatch) {
		return ErrNotFound
	}
	if err != nil {
		return apperror.Internal(err)
	}
	return nil
}

// EnsureSeed creates the seed accounts when the collection is empty.
// It reports whether anything was written.
func (s *Service) EnsureSeed(ctx context.Context, seeds []Seed) (bool, error) {
	populated, err := s.Populated(ctx)
	if err != nil || populated || len(seeds) == 0 {
		return false, err
	}
	now := s.now().UTC().Format(time.RFC3339)
	items := make([]User, 0, len(seeds))
	for _, seed := range seeds {
		if seed.Email == "" || seed.Password == "" {
			continue
		}
		hash, err := auth.HashPassword(seed.Password)
		if err != nil {
			return false, apperror.Internal(err)
		}
		role := seed.Role
		if role == "" {
			role = auth.RoleUser
		}
		items = append(items, User{
			ID:           uuid.NewString(),
			Name:         seed.Name,
			Email:        seed.Email,
			PasswordHash: hash,
			Role:         role,
			Country:      seed.Country,
			Manager:      seed.Manager,
			ManagerEmail: seed.ManagerEmail,
			CreatedAt:    now,
		})
	}
	if err := s.records.Replace(ctx, items); err != nil {
		return false, apperror.Internal(err)
	}
	s.log.Info("seeded user collection", zap.Int("count", len(items)))
	return true, nil
}
