package leave

import (
	"context"
	"strings"

	"worklog/internal/platform/apperror"
	"worklog/internal/platform/storage"
)

func (s *Service) sheet(ctx context.Context) (BalanceSheet, error) {
	sheet, err := storage.GetOrInit(ctx, s.store, storage.LeaveData, BalanceSheet{
		Users:              []Balance{},
		DefaultTotalLeaves: s.defaultTotal,
	})
	if err != nil {
		return BalanceSheet{}, apperror.Internal(err)
	}
	if sheet.DefaultTotalLeaves <= 0 {
		sheet.DefaultTotalLeaves = s.defaultTotal
	}
	return sheet, nil
}

func (s *Service) save(ctx context.Context, sheet BalanceSheet) error {
	if sheet.Users == nil {
		sheet.Users = []Balance{}
	}
	if err := s.store.Save(ctx, storage.LeaveData, sheet); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

// ensure returns the index of name in sheet, appending a fresh balance when
// the employee has none yet.
func ensure(sheet *BalanceSheet, name string) (int, bool) {
	for i, b := range sheet.Users {
		if b.Name == name {
			return i, false
		}
	}
	sheet.Users = append(sheet.Users, Balance{Name: name, TotalLeaves: sheet.DefaultTotalLeaves})
	return len(sheet.Users) - 1, true
}

// Available returns the employee's allowance, creating it on first use.
func (s *Service) Available(ctx context.Context, name string) (Availability, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Availability{}, ErrNameRequired
	}
	sheet, err := s.sheet(ctx)
	if err != nil {
		return Availability{}, err
	}
	i, created := ensure(&sheet, name)
	if created {
		if err := s.save(ctx, sheet); err != nil {
			return Availability{}, err
		}
	}
	return sheet.Users[i].Availability(), nil
}

func (s *Service) Balances(ctx context.Context) ([]Availability, error) {
	sheet, err := s.sheet(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Availability, 0, len(sheet.Users))
	for _, b := range sheet.Users {
		out = append(out, b.Availability())
	}
	return out, nil
}

func (s *Service) charge(ctx context.Context, name string, days float64) (Balance, error) {
	sheet, err := s.sheet(ctx)
	if err != nil {
		return Balance{}, err
	}
	i, _ := ensure(&sheet, name)
	sheet.Users[i].UsedLeaves += days
	if err := s.save(ctx, sheet); err != nil {
		return Balance{}, err
	}
	return sheet.Users[i], nil
}
