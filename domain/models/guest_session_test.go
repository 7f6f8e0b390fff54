package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestClaimState(t *testing.T) {
	personID := uuid.New()

	tests := []struct {
		name       string
		status     VerificationStatus
		personID   *uuid.UUID
		wantKind   ClaimStateKind
		wantPerson uuid.UUID
	}{
		{"fresh session", VerificationPending, nil, ClaimUnclaimed, uuid.Nil},
		{"pending claim", VerificationPending, &personID, ClaimPending, personID},
		{"verified owner", VerificationVerified, &personID, ClaimVerified, personID},
		// A displaced owner keeps the verified column until re-read, but
		// without a slot it counts as unclaimed
		{"displaced owner", VerificationVerified, nil, ClaimUnclaimed, uuid.Nil},
		{"rejected", VerificationRejected, nil, ClaimRejected, uuid.Nil},
		{"rejected with stale link", VerificationRejected, &personID, ClaimRejected, uuid.Nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &GuestSession{VerificationStatus: tt.status, TabloPersonID: tt.personID}
			state := s.ClaimState()
			assert.Equal(t, tt.wantKind, state.Kind)
			assert.Equal(t, tt.wantPerson, state.PersonID)
		})
	}
}

func TestEligibleOwner(t *testing.T) {
	assert.True(t, (&GuestSession{}).EligibleOwner())
	assert.False(t, (&GuestSession{Banned: true}).EligibleOwner())
}

func TestRestoreTokenUsable(t *testing.T) {
	now := time.Now()
	hash := "abc123"
	empty := ""
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	tests := []struct {
		name      string
		hash      *string
		expiresAt *time.Time
		want      bool
	}{
		{"no token", nil, nil, false},
		{"cleared token", &empty, &future, false},
		{"valid token", &hash, &future, true},
		{"no expiry", &hash, nil, true},
		{"expired", &hash, &past, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &GuestSession{RestoreTokenHash: tt.hash, RestoreTokenExpiresAt: tt.expiresAt}
			assert.Equal(t, tt.want, s.RestoreTokenUsable(now))
		})
	}
}
