package models

import (
	"time"

	"github.com/google/uuid"
)

// TokenKind is the closed set of bearer credential kinds. The stored name of a
// token is the sole source of truth for its access tier; nothing else on the
// row is consulted when classifying a request.
type TokenKind string

const (
	TokenKindAuth           TokenKind = "tablo-auth-token"
	TokenKindQRRegistration TokenKind = "qr-registration"
	TokenKindShare          TokenKind = "tablo-share-token"
	TokenKindPreview        TokenKind = "tablo-preview-token"
)

// AccessTier is the effective permission level derived from a TokenKind.
type AccessTier string

const (
	TierFull    AccessTier = "full"
	TierShare   AccessTier = "share"
	TierPreview AccessTier = "preview"
	TierUnknown AccessTier = "unknown"
)

// tokenTiers is the single mapping from credential kind to tier. QR-code
// registration intentionally grants full access, matching the production
// guest flows that depend on it.
var tokenTiers = map[TokenKind]AccessTier{
	TokenKindAuth:           TierFull,
	TokenKindQRRegistration: TierFull,
	TokenKindShare:          TierShare,
	TokenKindPreview:        TierPreview,
}

// ParseTokenKind parses a stored token name into a TokenKind. Unknown names
// are rejected rather than falling through to a default.
func ParseTokenKind(name string) (TokenKind, bool) {
	kind := TokenKind(name)
	_, ok := tokenTiers[kind]
	return kind, ok
}

// Tier returns the access tier for the kind, TierUnknown for anything that
// is not in the mapping.
func (k TokenKind) Tier() AccessTier {
	if tier, ok := tokenTiers[k]; ok {
		return tier
	}
	return TierUnknown
}

// IsGuest reports whether the tier belongs to a limited guest credential.
func (t AccessTier) IsGuest() bool {
	return t == TierShare || t == TierPreview
}

// CanFinalize reports whether the tier may use the finalization sub-API.
func (t AccessTier) CanFinalize() bool {
	return t == TierFull
}

// AccessToken is a per-login bearer credential. The opaque secret is never
// stored; only its SHA-256 hash is.
type AccessToken struct {
	ID        uuid.UUID `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	TokenHash string    `gorm:"uniqueIndex;not null"`
	Name      string    `gorm:"not null;index"` // TokenKind string as issued

	// Scope references, all optional
	TabloProjectID *uuid.UUID `gorm:"type:uuid;index"`
	GuestSessionID *uuid.UUID `gorm:"type:uuid;index"`
	PartnerID      *uuid.UUID `gorm:"type:uuid;index"`

	LastUsedAt *time.Time
	ExpiresAt  *time.Time
	CreatedAt  time.Time

	// Relations
	Project *Project      `gorm:"foreignKey:TabloProjectID"`
	Session *GuestSession `gorm:"foreignKey:GuestSessionID"`
}

func (AccessToken) TableName() string {
	return "access_tokens"
}

// Kind parses the stored name. Second return is false for legacy or
// tampered rows whose name no longer maps to a known kind.
func (t *AccessToken) Kind() (TokenKind, bool) {
	return ParseTokenKind(t.Name)
}

// Tier classifies the token. Unknown names classify as TierUnknown and are
// rejected by every gate.
func (t *AccessToken) Tier() AccessTier {
	kind, ok := t.Kind()
	if !ok {
		return TierUnknown
	}
	return kind.Tier()
}

// Expired reports whether the credential itself has an elapsed expiry.
func (t *AccessToken) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && now.After(*t.ExpiresAt)
}
