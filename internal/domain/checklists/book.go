package checklists

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"worklog/internal/platform/apperror"
	"worklog/internal/platform/dates"
	"worklog/internal/platform/storage"
)

// Book stores the sheets of one Kind.
type Book struct {
	Kind         Kind
	store        storage.Store
	defaultShift string
	now          func() time.Time
	location     func(context.Context) *time.Location
	log          *zap.Logger
}

func NewBook(kind Kind, store storage.Store, defaultShift string, location func(context.Context) *time.Location) *Book {
	if location == nil {
		location = func(context.Context) *time.Location { return time.UTC }
	}
	return &Book{
		Kind:         kind,
		store:        store,
		defaultShift: defaultShift,
		now:          time.Now,
		location:     location,
		log:          zap.L().Named("checklists." + kind.Name),
	}
}

func (b *Book) WithClock(now func() time.Time) *Book {
	b.now = now
	return b
}

func (b *Book) load(ctx context.Context) (Document, error) {
	doc := Document{}
	if _, err := storage.Get(ctx, b.store, b.Kind.Collection, &doc); err != nil {
		return nil, apperror.Internal(err)
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}

func (b *Book) validate(ratings map[string]string) error {
	if len(ratings) == 0 {
		return ErrRatingsRequired
	}
	for question, v := range ratings {
		if !b.Kind.validRating(v) {
			return ErrInvalidRating.WithDetails(map[string]any{
				"question": question,
				"value":    v,
				"allowed":  b.Kind.Ratings,
			})
		}
	}
	if b.Kind.RequireAll {
		var missing []string
		for _, q := range b.Kind.Questions {
			if _, ok := ratings[q]; !ok {
				missing = append(missing, q)
			}
		}
		if len(missing) > 0 {
			return ErrIncomplete.WithDetails(map[string]any{"missing": missing})
		}
	}
	return nil
}

// Save replaces the employee's sheet for the day.
func (b *Book) Save(ctx context.Context, in SaveInput) (Record, error) {
	employee := strings.TrimSpace(in.Employee)
	if employee == "" {
		return Record{}, ErrEmployeeRequired
	}
	now := b.now()
	day, err := dates.KeyOrToday(in.Date, now, b.location(ctx))
	if err != nil {
		return Record{}, ErrInvalidDate
	}
	if err := b.validate(in.Ratings); err != nil {
		return Record{}, err
	}
	shift := in.Shift
	if shift == "" && b.Kind.Name == Safety.Name {
		shift = b.defaultShift
	}

	doc, err := b.load(ctx)
	if err != nil {
		return Record{}, err
	}
	if doc[employee] == nil {
		doc[employee] = map[string]Entry{}
	}
	entry := Entry{
		ID:          b.Kind.Name + "-" + uuid.NewString(),
		Criteria:    in.Ratings,
		RedCount:    CountRed(in.Ratings),
		Shift:       shift,
		SubmittedAt: now.UTC().Format(time.RFC3339),
	}
	doc[employee][day] = entry
	if err := b.store.Save(ctx, b.Kind.Collection, doc); err != nil {
		return Record{}, apperror.Internal(err)
	}
	b.log.Info("sheet saved", zap.String("employee", employee), zap.String("date", day), zap.Int("red", entry.RedCount))
	return Record{Employee: employee, Date: day, Entry: entry}, nil
}

func (b *Book) Status(ctx context.Context, employee, date string) (Status, error) {
	employee = strings.TrimSpace(employee)
	if employee == "" {
		return Status{}, ErrEmployeeRequired
	}
	day, err := dates.KeyOrToday(date, b.now(), b.location(ctx))
	if err != nil {
		return Status{}, ErrInvalidDate
	}
	doc, err := b.load(ctx)
	if err != nil {
		return Status{}, err
	}
	entry, ok := doc[employee][day]
	if !ok {
		return Status{}, nil
	}
	return Status{Submitted: true, Ratings: entry.Criteria, RedCount: entry.RedCount}, nil
}

// Range lists the employee's sheets between start and end inclusive.
func (b *Book) Range(ctx context.Context, employee, start, end string) ([]RangeEntry, error) {
	employee = strings.TrimSpace(employee)
	if employee == "" {
		return nil, ErrEmployeeRequired
	}
	window, err := dates.ParseRange(start, end)
	if err != nil {
		return nil, ErrInvalidRange.WithErr(err)
	}
	doc, err := b.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]RangeEntry, 0)
	for day, entry := range doc[employee] {
		if !window.Contains(day) {
			continue
		}
		row := RangeEntry{Date: day, EmployeeName: employee, Shift: entry.Shift, RedCount: entry.RedCount}
		if b.Kind.Name == Safety.Name {
			row.SafetyMatrix = entry.Criteria
		} else {
			row.Ratings = entry.Criteria
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}
