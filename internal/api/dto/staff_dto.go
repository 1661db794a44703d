package dto

import "github.com/spec-kit/incident-portal/internal/domain"

// StaffRequest is the add/edit staff form. An empty availability keeps the
// current one on edit.
type StaffRequest struct {
	Name         string   `json:"name" validate:"notblank"`
	Email        string   `json:"email" validate:"required,email,emaildomain"`
	Password     string   `json:"password" validate:"omitempty,password"`
	Department   string   `json:"department" validate:"notblank"`
	Skillset     []string `json:"skillset" validate:"min=1,dive,notblank"`
	Availability string   `json:"availability" validate:"omitempty,availability"`
	Role         string   `json:"role" validate:"role"`
}

// SkillsRequest adds and removes skill tags.
type SkillsRequest struct {
	Add    []string `json:"add"`
	Remove []string `json:"remove"`
}

// StaffResponse never carries a password.
type StaffResponse struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Email        string              `json:"email"`
	Department   string              `json:"department"`
	Skillset     []string            `json:"skillset"`
	Availability domain.Availability `json:"availability"`
	Role         domain.Role         `json:"role"`
}
