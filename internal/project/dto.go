package project

import (
	"strings"
	"time"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

type CreateProjectDTO struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Scope       string     `json:"scope"`
	Status      string     `json:"status"`
	ClientID    int64      `json:"client_id"`
	ManagerID   int64      `json:"manager_id"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

func (d *CreateProjectDTO) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return ValidationError{Field: "name", Message: "is required"}
	}
	if d.ClientID <= 0 {
		return ValidationError{Field: "client_id", Message: "is required"}
	}
	if d.ManagerID <= 0 {
		return ValidationError{Field: "manager_id", Message: "is required"}
	}
	if d.Status == "" {
		d.Status = string(StatusPlanning)
	}
	if _, err := ParseStatus(d.Status); err != nil {
		return ValidationError{Field: "status", Message: "must be planning, active, on_hold or completed"}
	}
	return nil
}

type UpdateProjectDTO struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	Scope       *string    `json:"scope,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Progress    *int       `json:"progress,omitempty"`
	ManagerID   *int64     `json:"manager_id,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

func (d *UpdateProjectDTO) Validate() error {
	if d.Name != nil && strings.TrimSpace(*d.Name) == "" {
		return ValidationError{Field: "name", Message: "cannot be empty"}
	}
	if d.Status != nil {
		if _, err := ParseStatus(*d.Status); err != nil {
			return ValidationError{Field: "status", Message: "must be planning, active, on_hold or completed"}
		}
	}
	if d.Progress != nil && (*d.Progress < 0 || *d.Progress > 100) {
		return ValidationError{Field: "progress", Message: "must be between 0 and 100"}
	}
	return nil
}

type CreateMilestoneDTO struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

func (d *CreateMilestoneDTO) Validate() error {
	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" {
		return ValidationError{Field: "title", Message: "is required"}
	}
	return nil
}

type UpdateMilestoneDTO struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Completed   *bool      `json:"completed,omitempty"`
}

type CreateChangeRequestDTO struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (d *CreateChangeRequestDTO) Validate() error {
	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" {
		return ValidationError{Field: "title", Message: "is required"}
	}
	return nil
}

type DecideChangeRequestDTO struct {
	Approve bool `json:"approve"`
}
