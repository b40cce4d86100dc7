package timesheets

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
)

const (
	PeriodAM = "AM"
	PeriodPM = "PM"
)

var progressValues = map[string]bool{"Green": true, "Yellow": true, "Red": true}

// Document maps employee → day key → Day.
type Document map[string]map[string]Day

type Day struct {
	AM      Tasks     `json:"AM"`
	PM      PMEntries `json:"PM,omitempty"`
	Country string    `json:"country,omitempty"`
}

func (d Day) AMSubmitted() bool { return d.AM != nil }
func (d Day) PMSubmitted() bool { return len(d.PM) > 0 }

// Task is one morning plan line. It decodes from either a bare string or
// an object with a description.
type Task struct {
	Description string `json:"description"`
}

func (t *Task) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &t.Description)
	}
	type plain Task
	return json.Unmarshal(data, (*plain)(t))
}

// Tasks maps an hour label to its planned task.
type Tasks map[string]Task

type PMEntry struct {
	Hour        string            `json:"hour"`
	Task        string            `json:"task"`
	Progress    string            `json:"progress,omitempty"`
	Comments    string            `json:"comments,omitempty"`
	ProjectName string            `json:"projectName,omitempty"`
	Projects    map[string]string `json:"projects,omitempty"`
}

// PMEntries decodes from an array or from an object keyed by hour.
type PMEntries []PMEntry

func (p *PMEntries) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		byHour := map[string]PMEntry{}
		if err := json.Unmarshal(data, &byHour); err != nil {
			return err
		}
		out := make(PMEntries, 0, len(byHour))
		for hour, entry := range byHour {
			if entry.Hour == "" {
				entry.Hour = hour
			}
			out = append(out, entry)
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].Hour < out[j].Hour })
		*p = out
		return nil
	}
	var list []PMEntry
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*p = list
	return nil
}

type AMInput struct {
	EmployeeName string `json:"employee_name"`
	Date         string `json:"date"`
	Tasks        Tasks  `json:"tasks"`
	Country      string `json:"country"`
}

type PMInput struct {
	EmployeeName string    `json:"employee_name"`
	Date         string    `json:"date"`
	Hours        PMEntries `json:"hours"`
	Country      string    `json:"country"`
	Shift        string    `json:"shift"`
}

func (in PMInput) country() string {
	if strings.TrimSpace(in.Country) != "" {
		return in.Country
	}
	return in.Shift
}

// SubmitInput carries either half of a day for the submit-once endpoint.
type SubmitInput struct {
	EmployeeName string    `json:"employee_name"`
	Date         string    `json:"date"`
	Period       string    `json:"period"`
	Tasks        Tasks     `json:"tasks"`
	Hours        PMEntries `json:"hours"`
	Country      string    `json:"country"`
}

type Status struct {
	AMSubmitted bool `json:"amSubmitted"`
	PMSubmitted bool `json:"pmSubmitted"`
}

// HourLine is one row of a range view.
type HourLine struct {
	Hour     string `json:"hour"`
	Task     string `json:"task"`
	Progress string `json:"progress,omitempty"`
	Comments string `json:"comments,omitempty"`
}

type RangeEntry struct {
	Date         string     `json:"date"`
	EmployeeName string     `json:"employee_name"`
	Hours        []HourLine `json:"hours"`
	Shift        string     `json:"shift,omitempty"`
	Country      string     `json:"country,omitempty"`
}

func sortedHours(t Tasks) []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
