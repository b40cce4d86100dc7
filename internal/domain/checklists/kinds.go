// Package checklists records per-day rating sheets: the performance matrix
// and the safety checklist.
package checklists

import "worklog/internal/platform/storage"

const (
	Green  = "Green"
	Yellow = "Yellow"
	Red    = "Red"
)

var PerformanceCriteria = []string{
	"Performance of the Day",
	"First Time Quality",
	"On-Time Delivery",
	"Engagement and Support",
}

var SafetyQuestions = []string{
	"Are you wearing all required Personal Protective Equipment (PPE) for your task today?",
	"Have you inspected your tools, machines, or equipment for any visible damage or malfunction?",
	"Is your work area clean, organized, and free from slip/trip hazards?",
	"Are all emergency stop buttons and safety interlocks functional and accessible?",
	"Are all wires, cables, and hoses properly managed to avoid entanglement or tripping?",
	"Have you seen or experienced anything unsafe today that should be reported?",
	"Have you reviewed and acknowledged today's safety briefing or posted instructions?",
}

// Kind describes one sheet type.
type Kind struct {
	Name       string
	Collection storage.Collection
	Questions  []string
	Ratings    []string
	// RequireAll rejects submissions that leave a question unanswered.
	RequireAll bool
}

var (
	Performance = Kind{
		Name:       "performance",
		Collection: storage.Matrices,
		Questions:  PerformanceCriteria,
		Ratings:    []string{Green, Yellow, Red},
	}
	Safety = Kind{
		Name:       "safety",
		Collection: storage.Safety,
		Questions:  SafetyQuestions,
		Ratings:    []string{Green, Yellow, Red},
		RequireAll: true,
	}
)

func (k Kind) validRating(v string) bool {
	for _, r := range k.Ratings {
		if r == v {
			return true
		}
	}
	return false
}
