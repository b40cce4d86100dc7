package timesheets

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"worklog/internal/platform/export"
)

// Report flattens an employee's days in the interval into one row per hour
// and period, ordered by date.
func (s *Service) Report(ctx context.Context, employee, start, end string) (export.Table, error) {
	employee = strings.TrimSpace(employee)
	if employee == "" {
		return export.Table{}, ErrEmployeeRequired
	}
	days, err := s.Range(ctx, employee, start, end)
	if err != nil {
		return export.Table{}, err
	}
	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	table := export.Table{
		Title:    "Timesheet " + employee,
		Subtitle: fmt.Sprintf("%s to %s", start, end),
		Headers:  []string{"Date", "Period", "Hour", "Task", "Progress", "Comments", "Country"},
	}
	for _, date := range keys {
		d := days[date]
		for _, hour := range sortedHours(d.AM) {
			table.Rows = append(table.Rows, []string{date, PeriodAM, hour, d.AM[hour].Description, "", "", d.Country})
		}
		for _, e := range d.PM {
			table.Rows = append(table.Rows, []string{date, PeriodPM, e.Hour, e.Task, e.Progress, e.Comments, d.Country})
		}
	}
	return table, nil
}
