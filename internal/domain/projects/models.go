package projects

import "strings"

type Project struct {
	ID            string `json:"id"`
	ProjectNumber string `json:"projectNumber"`
	ProjectName   string `json:"projectName"`
	StartDate     string `json:"startDate,omitempty"`
	EndDate       string `json:"endDate,omitempty"`
	Description   string `json:"description,omitempty"`
	CreatedAt     string `json:"createdAt,omitempty"`
	UpdatedAt     string `json:"updatedAt,omitempty"`
}

// Member records hours an employee booked against a project.
type Member struct {
	ID            string  `json:"id"`
	ProjectID     string  `json:"projectId,omitempty"`
	ProjectNumber string  `json:"projectNumber,omitempty"`
	ProjectName   string  `json:"projectName,omitempty"`
	Employee      string  `json:"employee"`
	Hours         float64 `json:"hours"`
	CreatedAt     string  `json:"createdAt,omitempty"`
}

type CreateInput struct {
	ProjectNumber string `json:"projectNumber" validate:"required"`
	ProjectName   string `json:"projectName" validate:"required"`
	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate"`
	Description   string `json:"description"`
}

// Criteria selects projects by number and/or name. Empty fields are ignored.
type Criteria struct {
	ProjectNumber string `json:"projectNumber"`
	ProjectName   string `json:"projectName"`
}

func (c Criteria) normalized() Criteria {
	return Criteria{
		ProjectNumber: strings.TrimSpace(c.ProjectNumber),
		ProjectName:   strings.TrimSpace(c.ProjectName),
	}
}

func (c Criteria) empty() bool {
	n := c.normalized()
	return n.ProjectNumber == "" && n.ProjectName == ""
}

// matchesAny reports whether p matches on any non-empty field.
func (c Criteria) matchesAny(p Project) bool {
	n := c.normalized()
	if n.ProjectNumber != "" && p.ProjectNumber == n.ProjectNumber {
		return true
	}
	return n.ProjectName != "" && p.ProjectName == n.ProjectName
}

// matchesBoth is the composite key used for deletion.
func (c Criteria) matchesBoth(p Project) bool {
	n := c.normalized()
	return p.ProjectNumber == n.ProjectNumber && p.ProjectName == n.ProjectName
}

type AddMemberInput struct {
	Employee string  `json:"employee" validate:"required"`
	Hours    float64 `json:"hours" validate:"gte=0"`
}

// Details is a project with its booked members.
type Details struct {
	Project    Project  `json:"project"`
	Members    []Member `json:"members"`
	TotalHours float64  `json:"total_hours"`
}
