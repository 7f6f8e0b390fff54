package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tablostudio/tablo-api/domain/models"
)

type CreateProjectInput struct {
	PartnerID  uuid.UUID
	SchoolName string
	ClassName  string
	ClassYear  string
}

type AccessCodeSettings struct {
	Code      string
	Enabled   bool
	ExpiresAt *time.Time
}

// PhotoSlot selects which link of the person photo chain to set.
type PhotoSlot string

const (
	PhotoSlotOverride PhotoSlot = "override"
	PhotoSlotArchive  PhotoSlot = "archive"
	PhotoSlotLegacy   PhotoSlot = "legacy"
)

type ProjectService interface {
	Create(ctx context.Context, input CreateProjectInput) (*models.Project, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	ListByPartner(ctx context.Context, partnerID uuid.UUID, page, limit int) ([]models.Project, int64, error)

	// UpdateStatus transitions the project status. Reaching done or in_print
	// locks guest-facing mutation; the token sweep picks up the credentials.
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ProjectStatus) (*models.Project, error)

	// Finalize closes the project on behalf of the class: status moves to
	// done and guest mutation locks. Idempotent for already-done projects;
	// in_print and archived projects cannot be finalized.
	Finalize(ctx context.Context, id uuid.UUID) (*models.Project, error)

	// Credential management
	SetAccessCode(ctx context.Context, id uuid.UUID, settings AccessCodeSettings) (*models.Project, error)
	RotateShareToken(ctx context.Context, id uuid.UUID) (*models.Project, error)
	RotatePreviewToken(ctx context.Context, id uuid.UUID) (*models.Project, error)

	// Roster management
	AddPerson(ctx context.Context, projectID uuid.UUID, name string, personType models.PersonType, position int) (*models.Person, error)
	ListPersons(ctx context.Context, projectID uuid.UUID) ([]models.Person, error)
	// AttachPhoto sets one link of the person photo chain. The person must
	// belong to projectID; persons of other projects are reported as not
	// found.
	AttachPhoto(ctx context.Context, projectID, personID uuid.UUID, slot PhotoSlot, photoID *uuid.UUID) (*models.Person, error)
}
