package checklists

// Entry is one employee's sheet for one day.
type Entry struct {
	ID          string            `json:"id,omitempty"`
	Criteria    map[string]string `json:"criteria"`
	RedCount    int               `json:"red_count"`
	Shift       string            `json:"shift,omitempty"`
	SubmittedAt string            `json:"submittedAt,omitempty"`
}

// Document maps employee → day key → Entry.
type Document map[string]map[string]Entry

type SaveInput struct {
	Employee string
	Date     string
	Ratings  map[string]string
	Shift    string
}

type Record struct {
	Employee string `json:"employee_name"`
	Date     string `json:"date"`
	Entry
}

// RangeEntry is the view row for a date range query. Performance rows
// carry Ratings and safety rows carry SafetyMatrix.
type RangeEntry struct {
	Date         string            `json:"date"`
	EmployeeName string            `json:"employee_name"`
	Shift        string            `json:"shift,omitempty"`
	Ratings      map[string]string `json:"ratings,omitempty"`
	SafetyMatrix map[string]string `json:"safety_matrix,omitempty"`
	RedCount     int               `json:"red_count"`
}

type Status struct {
	Submitted bool              `json:"submitted"`
	Ratings   map[string]string `json:"ratings,omitempty"`
	RedCount  int               `json:"red_count"`
}

// CountRed returns how many ratings are Red.
func CountRed(ratings map[string]string) int {
	n := 0
	for _, v := range ratings {
		if v == Red {
			n++
		}
	}
	return n
}
