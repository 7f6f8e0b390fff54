package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateProjectRequest struct {
	SchoolName string `json:"school_name" validate:"required,min=2,max=200"`
	ClassName  string `json:"class_name" validate:"required,min=1,max=60"`
	ClassYear  string `json:"class_year" validate:"omitempty,max=20"`
}

type UpdateProjectStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active done in_print archived"`
}

type AccessCodeRequest struct {
	Code      string     `json:"code" validate:"omitempty,min=6,max=16"`
	Enabled   bool       `json:"enabled"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type ProjectResponse struct {
	ID         uuid.UUID `json:"id"`
	SchoolName string    `json:"school_name"`
	ClassName  string    `json:"class_name"`
	ClassYear  string    `json:"class_year,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// PartnerProjectResponse is the owner view, with credentials included.
type PartnerProjectResponse struct {
	ProjectResponse
	AccessCode          string     `json:"access_code,omitempty"`
	AccessCodeEnabled   bool       `json:"access_code_enabled"`
	AccessCodeExpiresAt *time.Time `json:"access_code_expires_at,omitempty"`
	ShareToken          string     `json:"share_token,omitempty"`
	PreviewToken        string     `json:"preview_token,omitempty"`
}

type ProjectListResponse struct {
	Projects []PartnerProjectResponse `json:"projects"`
	Total    int64                    `json:"total"`
	Page     int                      `json:"page"`
	Limit    int                      `json:"limit"`
}

type AddPersonRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=120"`
	Type     string `json:"type" validate:"required,oneof=student teacher"`
	Position int    `json:"position" validate:"gte=0"`
}

type AttachPhotoRequest struct {
	Slot    string     `json:"slot" validate:"required,oneof=override archive legacy"`
	PhotoID *uuid.UUID `json:"photo_id"`
}

type PersonResponse struct {
	ID               uuid.UUID  `json:"id"`
	ProjectID        uuid.UUID  `json:"project_id"`
	Name             string     `json:"name"`
	Type             string     `json:"type"`
	Position         int        `json:"position"`
	EffectivePhotoID *uuid.UUID `json:"effective_photo_id,omitempty"`
}

type PersonListResponse struct {
	Persons []PersonResponse `json:"persons"`
}

type AuditLogResponse struct {
	ID        uuid.UUID `json:"id"`
	AuditType string    `json:"audit_type"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type AuditLogListResponse struct {
	Entries []AuditLogResponse `json:"entries"`
	Total   int64              `json:"total"`
	Page    int                `json:"page"`
	Limit   int                `json:"limit"`
}
