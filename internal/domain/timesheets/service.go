package timesheets

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"worklog/internal/platform/apperror"
	"worklog/internal/platform/dates"
	"worklog/internal/platform/storage"
)

const NoDataMessage = "No data found for the given date range."

// Location supplies the zone used to pick "today" for undated submissions.
type Location func(ctx context.Context) *time.Location

type Service struct {
	store    storage.Store
	now      func() time.Time
	location Location
	log      *zap.Logger
}

func NewService(store storage.Store, location Location) *Service {
	if location == nil {
		location = func(context.Context) *time.Location { return time.UTC }
	}
	return &Service{
		store:    store,
		now:      time.Now,
		location: location,
		log:      zap.L().Named("timesheets.service"),
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) load(ctx context.Context) (Document, bool, error) {
	doc := Document{}
	found, err := storage.Get(ctx, s.store, storage.Timesheets, &doc)
	if err != nil {
		return nil, false, apperror.Internal(err)
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, found, nil
}

func (s *Service) key(ctx context.Context, employee, date string) (string, string, error) {
	employee = strings.TrimSpace(employee)
	if employee == "" {
		return "", "", ErrEmployeeRequired
	}
	day, err := dates.KeyOrToday(date, s.now(), s.location(ctx))
	if err != nil {
		return "", "", ErrInvalidDate
	}
	return employee, day, nil
}

// mutate applies fn to the (employee, day) entry and saves the whole document.
func (s *Service) mutate(ctx context.Context, employee, day string, fn func(*Day) error) (Day, error) {
	doc, _, err := s.load(ctx)
	if err != nil {
		return Day{}, err
	}
	days := doc[employee]
	if days == nil {
		days = map[string]Day{}
		doc[employee] = days
	}
	entry := days[day]
	if err := fn(&entry); err != nil {
		return Day{}, err
	}
	days[day] = entry
	if err := s.store.Save(ctx, storage.Timesheets, doc); err != nil {
		return Day{}, apperror.Internal(err)
	}
	return entry, nil
}

// SubmitAM stores the morning plan, replacing any earlier one for the day.
func (s *Service) SubmitAM(ctx context.Context, in AMInput) (string, Day, error) {
	employee, day, err := s.key(ctx, in.EmployeeName, in.Date)
	if err != nil {
		return "", Day{}, err
	}
	saved, err := s.mutate(ctx, employee, day, func(d *Day) error {
		d.AM = nonNilTasks(in.Tasks)
		if in.Country != "" {
			d.Country = in.Country
		}
		return nil
	})
	if err != nil {
		return "", Day{}, err
	}
	s.log.Info("AM timesheet saved", zap.String("employee", employee), zap.String("date", day), zap.Int("tasks", len(in.Tasks)))
	return day, saved, nil
}

// SubmitPM stores the evening report, replacing any earlier one for the
// day. The country is only set when the day has none yet.
func (s *Service) SubmitPM(ctx context.Context, in PMInput) (string, Day, error) {
	employee, day, err := s.key(ctx, in.EmployeeName, in.Date)
	if err != nil {
		return "", Day{}, err
	}
	if err := validateEntries(in.Hours); err != nil {
		return "", Day{}, err
	}
	saved, err := s.mutate(ctx, employee, day, func(d *Day) error {
		d.PM = in.Hours
		if d.Country == "" {
			d.Country = in.country()
		}
		return nil
	})
	if err != nil {
		return "", Day{}, err
	}
	s.log.Info("PM timesheet saved", zap.String("employee", employee), zap.String("date", day), zap.Int("hours", len(in.Hours)))
	return day, saved, nil
}

// Submit records one half of a day and refuses to overwrite it.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (string, Day, error) {
	period := strings.ToUpper(strings.TrimSpace(in.Period))
	if period != PeriodAM && period != PeriodPM {
		return "", Day{}, ErrInvalidPeriod
	}
	employee, day, err := s.key(ctx, in.EmployeeName, in.Date)
	if err != nil {
		return "", Day{}, err
	}
	if period == PeriodAM && len(in.Tasks) == 0 {
		return "", Day{}, ErrEmptySubmission
	}
	if period == PeriodPM {
		if len(in.Hours) == 0 {
			return "", Day{}, ErrEmptySubmission
		}
		if err := validateEntries(in.Hours); err != nil {
			return "", Day{}, err
		}
	}
	saved, err := s.mutate(ctx, employee, day, func(d *Day) error {
		switch period {
		case PeriodAM:
			if d.AMSubmitted() {
				return ErrAlreadySubmitted
			}
			d.AM = in.Tasks
		case PeriodPM:
			if d.PMSubmitted() {
				return ErrAlreadySubmitted
			}
			d.PM = in.Hours
		}
		if d.Country == "" {
			d.Country = in.Country
		}
		return nil
	})
	if err != nil {
		return "", Day{}, err
	}
	return day, saved, nil
}

func (s *Service) Status(ctx context.Context, employee, date string) (Status, error) {
	employee, day, err := s.key(ctx, employee, date)
	if err != nil {
		return Status{}, err
	}
	doc, _, err := s.load(ctx)
	if err != nil {
		return Status{}, err
	}
	entry := doc[employee][day]
	return Status{AMSubmitted: entry.AMSubmitted(), PMSubmitted: entry.PMSubmitted()}, nil
}

// Day returns one employee's entry, distinguishing which level is missing.
func (s *Service) Day(ctx context.Context, employee, date string) (Day, error) {
	employee = strings.TrimSpace(employee)
	day, err := dates.Key(date)
	if err != nil {
		return Day{}, ErrInvalidDate
	}
	doc, found, err := s.load(ctx)
	if err != nil {
		return Day{}, err
	}
	if !found {
		return Day{}, ErrNoTimesheets
	}
	days, ok := doc[employee]
	if !ok {
		return Day{}, ErrNoUserTimesheet
	}
	entry, ok := days[day]
	if !ok {
		entry, ok = days[strings.TrimSpace(date)]
	}
	if !ok {
		return Day{}, ErrNoDateTimesheet
	}
	return entry, nil
}

// RangeAM lists morning plans of employee between start and end inclusive.
func (s *Service) RangeAM(ctx context.Context, employee, start, end string) ([]RangeEntry, error) {
	return s.collect(ctx, employee, start, end, func(date string, d Day) (RangeEntry, bool) {
		if !d.AMSubmitted() {
			return RangeEntry{}, false
		}
		lines := make([]HourLine, 0, len(d.AM))
		for _, hour := range sortedHours(d.AM) {
			lines = append(lines, HourLine{Hour: hour, Task: d.AM[hour].Description})
		}
		return RangeEntry{Date: date, Hours: lines, Shift: d.Country}, true
	})
}

// RangePM lists evening reports of employee between start and end inclusive.
func (s *Service) RangePM(ctx context.Context, employee, start, end string) ([]RangeEntry, error) {
	return s.collect(ctx, employee, start, end, func(date string, d Day) (RangeEntry, bool) {
		if !d.PMSubmitted() {
			return RangeEntry{}, false
		}
		lines := make([]HourLine, 0, len(d.PM))
		for _, e := range d.PM {
			lines = append(lines, HourLine{Hour: e.Hour, Task: e.Task, Progress: e.Progress, Comments: e.Comments})
		}
		return RangeEntry{Date: date, Hours: lines, Shift: d.Country, Country: d.Country}, true
	})
}

// Range returns the raw days of employee within the interval, keyed by day.
func (s *Service) Range(ctx context.Context, employee, start, end string) (map[string]Day, error) {
	window, err := dates.ParseRange(start, end)
	if err != nil {
		return nil, ErrInvalidRange.WithErr(err)
	}
	doc, _, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := map[string]Day{}
	for date, d := range doc[strings.TrimSpace(employee)] {
		if window.Contains(date) {
			out[date] = d
		}
	}
	return out, nil
}

func (s *Service) collect(ctx context.Context, employee, start, end string, pick func(string, Day) (RangeEntry, bool)) ([]RangeEntry, error) {
	employee = strings.TrimSpace(employee)
	days, err := s.Range(ctx, employee, start, end)
	if err != nil {
		return nil, err
	}
	out := make([]RangeEntry, 0, len(days))
	for date, d := range days {
		entry, ok := pick(date, d)
		if !ok {
			continue
		}
		entry.EmployeeName = employee
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func validateEntries(entries PMEntries) error {
	for _, e := range entries {
		if e.Progress != "" && !progressValues[e.Progress] {
			return ErrInvalidProgress.WithDetails(map[string]string{"hour": e.Hour, "progress": e.Progress})
		}
	}
	return nil
}

func nonNilTasks(t Tasks) Tasks {
	if t == nil {
		return Tasks{}
	}
	return t
}
