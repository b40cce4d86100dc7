package users

import (
	"strings"

	"worklog/internal/domain/auth"
)

// User is the stored account record.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash,omitempty"`
	Role         string `json:"role"`
	Country      string `json:"country,omitempty"`
	Manager      string `json:"manager,omitempty"`
	ManagerEmail string `json:"managerEmail,omitempty"`
	Designation  string `json:"designation,omitempty"`
	MFAEnabled   bool   `json:"mfaEnabled,omitempty"`
	MFASecret    string `json:"mfaSecret,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty"`
	UpdatedAt    string `json:"updatedAt,omitempty"`

	// Older documents stored the bcrypt hash under "password" and used
	// snake case for the manager email.
	LegacyPassword     string `json:"password,omitempty"`
	LegacyManagerEmail string `json:"manager_email,omitempty"`
}

// Profile is a User without credential material.
type Profile struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	Country      string `json:"country,omitempty"`
	Manager      string `json:"manager,omitempty"`
	ManagerEmail string `json:"managerEmail,omitempty"`
	Designation  string `json:"designation,omitempty"`
	MFAEnabled   bool   `json:"mfaEnabled"`
	CreatedAt    string `json:"createdAt,omitempty"`
	UpdatedAt    string `json:"updatedAt,omitempty"`
}

func (u User) Profile() Profile {
	return Profile{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role,
		Country:      u.Country,
		Manager:      u.Manager,
		ManagerEmail: u.ManagerEmail,
		Designation:  u.Designation,
		MFAEnabled:   u.MFAEnabled,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (u *User) normalize() {
	if u.PasswordHash == "" && u.LegacyPassword != "" {
		u.PasswordHash = u.LegacyPassword
	}
	u.LegacyPassword = ""
	if u.ManagerEmail == "" && u.LegacyManagerEmail != "" {
		u.ManagerEmail = u.LegacyManagerEmail
	}
	u.LegacyManagerEmail = ""
	if u.Role == "" {
		u.Role = auth.RoleUser
	}
}

type CreateInput struct {
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"required"`
	Password     string `json:"password" validate:"required"`
	Role         string `json:"role" validate:"omitempty,oneof=admin user"`
	Country      string `json:"country"`
	Manager      string `json:"manager"`
	ManagerEmail string `json:"managerEmail"`
	Designation  string `json:"designation"`
}

// Seed describes an account created when the user collection is empty.
type Seed struct {
	Name         string
	Email        string
	Password     string
	Role         string
	Country      string
	Manager      string
	ManagerEmail string
}

// Field names the attribute a Lookup matches on.
type Field string

const (
	FieldID    Field = "id"
	FieldEmail Field = "email"
	FieldName  Field = "name"
)

type Lookup struct {
	Field Field
	Value string
}

func ByID(id string) Lookup       { return Lookup{Field: FieldID, Value: id} }
func ByEmail(email string) Lookup { return Lookup{Field: FieldEmail, Value: email} }
func ByName(name string) Lookup   { return Lookup{Field: FieldName, Value: name} }

func (l Lookup) matches(u User) bool {
	value := strings.TrimSpace(l.Value)
	if value == "" {
		return false
	}
	switch l.Field {
	case FieldID:
		return u.ID == value
	case FieldEmail:
		return strings.EqualFold(strings.TrimSpace(u.Email), value)
	case FieldName:
		return strings.EqualFold(strings.TrimSpace(u.Name), value)
	}
	return false
}
