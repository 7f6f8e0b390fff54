package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestGuestMutationLocked(t *testing.T) {
	assert.False(t, (&Project{Status: ProjectStatusActive}).GuestMutationLocked())
	assert.True(t, (&Project{Status: ProjectStatusDone}).GuestMutationLocked())
	assert.True(t, (&Project{Status: ProjectStatusInPrint}).GuestMutationLocked())
	// Archived projects are read-only for links but not "in production"
	assert.False(t, (&Project{Status: ProjectStatusArchived}).GuestMutationLocked())
}

func TestAccessCodeUsable(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name    string
		project Project
		want    bool
	}{
		{"enabled active", Project{Status: ProjectStatusActive, AccessCodeEnabled: true}, true},
		{"disabled", Project{Status: ProjectStatusActive, AccessCodeEnabled: false}, false},
		{"expired", Project{Status: ProjectStatusActive, AccessCodeEnabled: true, AccessCodeExpiresAt: &past}, false},
		{"future expiry", Project{Status: ProjectStatusActive, AccessCodeEnabled: true, AccessCodeExpiresAt: &future}, true},
		{"finalized", Project{Status: ProjectStatusDone, AccessCodeEnabled: true}, false},
		{"in print", Project{Status: ProjectStatusInPrint, AccessCodeEnabled: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.project.AccessCodeUsable(now))
		})
	}
}

func TestValidForTokenKind(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)

	tests := []struct {
		name    string
		kind    TokenKind
		project Project
		want    bool
	}{
		{"auth on active project", TokenKindAuth, Project{Status: ProjectStatusActive, AccessCodeEnabled: true}, true},
		{"auth on disabled code", TokenKindAuth, Project{Status: ProjectStatusActive, AccessCodeEnabled: false}, false},
		{"auth on expired code", TokenKindAuth, Project{Status: ProjectStatusActive, AccessCodeEnabled: true, AccessCodeExpiresAt: &past}, false},
		{"auth on finalized project", TokenKindAuth, Project{Status: ProjectStatusDone, AccessCodeEnabled: true}, false},
		// QR tokens outlive the access code; printed posters keep working
		// until the project is finalized
		{"qr on disabled code", TokenKindQRRegistration, Project{Status: ProjectStatusActive, AccessCodeEnabled: false}, true},
		{"qr on expired code", TokenKindQRRegistration, Project{Status: ProjectStatusActive, AccessCodeEnabled: true, AccessCodeExpiresAt: &past}, true},
		{"qr on in print", TokenKindQRRegistration, Project{Status: ProjectStatusInPrint, AccessCodeEnabled: true}, false},
		{"qr on done", TokenKindQRRegistration, Project{Status: ProjectStatusDone, AccessCodeEnabled: true}, false},
		{"share on finalized project", TokenKindShare, Project{Status: ProjectStatusDone}, true},
		{"share on archived project", TokenKindShare, Project{Status: ProjectStatusArchived}, false},
		{"preview on archived project", TokenKindPreview, Project{Status: ProjectStatusArchived}, false},
		{"unknown kind", TokenKind("personal-access-token"), Project{Status: ProjectStatusActive, AccessCodeEnabled: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.project.ValidForTokenKind(tt.kind, now))
		})
	}
}

func TestEffectivePhotoID(t *testing.T) {
	override := uuid.New()
	archive := uuid.New()
	legacy := uuid.New()

	assert.Nil(t, (&Person{}).EffectivePhotoID())
	assert.Equal(t, &legacy, (&Person{LegacyPhotoID: &legacy}).EffectivePhotoID())
	assert.Equal(t, &archive, (&Person{ArchivePhotoID: &archive, LegacyPhotoID: &legacy}).EffectivePhotoID())
	assert.Equal(t, &override, (&Person{OverridePhotoID: &override, ArchivePhotoID: &archive, LegacyPhotoID: &legacy}).EffectivePhotoID())
}
