// Package settings holds the singleton application settings document.
package settings

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"worklog/internal/platform/apperror"
	"worklog/internal/platform/storage"
)

type Settings struct {
	CompanyName        string `json:"companyName"`
	EmailNotifications bool   `json:"emailNotifications"`
	DefaultTimeZone    string `json:"defaultTimeZone"`
}

func Defaults() Settings {
	return Settings{
		CompanyName:        "Singh Automation",
		EmailNotifications: true,
		DefaultTimeZone:    "UTC",
	}
}

var ErrInvalidTimeZone = apperror.Validation("defaultTimeZone must be a valid IANA time zone")

type Service struct {
	store storage.Store
	log   *zap.Logger
}

func NewService(store storage.Store) *Service {
	return &Service{store: store, log: zap.L().Named("settings.service")}
}

// Get returns the stored settings, writing the defaults on first access.
func (s *Service) Get(ctx context.Context) (Settings, error) {
	out, err := storage.GetOrInit(ctx, s.store, storage.Settings, Defaults())
	if err != nil {
		return Settings{}, apperror.Internal(err)
	}
	return out, nil
}

// Update overlays patch on the current settings.
func (s *Service) Update(ctx context.Context, patch map[string]any) (Settings, error) {
	current, err := s.Get(ctx)
	if err != nil {
		return Settings{}, err
	}
	if err := storage.Merge(&current, patch); err != nil {
		return Settings{}, apperror.Validation("Invalid settings payload").WithErr(err)
	}
	current.DefaultTimeZone = strings.TrimSpace(current.DefaultTimeZone)
	if current.DefaultTimeZone == "" {
		current.DefaultTimeZone = "UTC"
	}
	if _, err := time.LoadLocation(current.DefaultTimeZone); err != nil {
		return Settings{}, ErrInvalidTimeZone.WithErr(err)
	}
	if err := s.store.Save(ctx, storage.Settings, current); err != nil {
		return Settings{}, apperror.Internal(err)
	}
	s.log.Info("settings updated", zap.Any("keys", keys(patch)))
	return current, nil
}

// Location returns the configured default zone, or UTC when it cannot be read.
func (s *Service) Location(ctx context.Context) *time.Location {
	cur, err := s.Get(ctx)
	if err != nil {
		return time.UTC
	}
	loc, err := time.LoadLocation(cur.DefaultTimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
