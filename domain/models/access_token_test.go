package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenKindTiers(t *testing.T) {
	tests := []struct {
		name string
		want AccessTier
	}{
		{"tablo-auth-token", TierFull},
		// QR registration grants full access on purpose; deployed posters
		// depend on it
		{"qr-registration", TierFull},
		{"tablo-share-token", TierShare},
		{"tablo-preview-token", TierPreview},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := ParseTokenKind(tt.name)
			assert.True(t, ok)
			assert.Equal(t, tt.want, kind.Tier())
		})
	}
}

func TestParseTokenKind_RejectsUnknownNames(t *testing.T) {
	for _, name := range []string{"", "personal-access-token", "TABLO-AUTH-TOKEN", "tablo-auth-token "} {
		_, ok := ParseTokenKind(name)
		assert.False(t, ok, "name %q must not parse", name)
	}
}

func TestAccessTokenTier_UnknownNameHitsNoGate(t *testing.T) {
	token := &AccessToken{Name: "legacy-token"}
	assert.Equal(t, TierUnknown, token.Tier())
	assert.False(t, token.Tier().CanFinalize())
	assert.False(t, token.Tier().IsGuest())
}

func TestTierCapabilities(t *testing.T) {
	assert.True(t, TierFull.CanFinalize())
	assert.False(t, TierShare.CanFinalize())
	assert.False(t, TierPreview.CanFinalize())

	assert.False(t, TierFull.IsGuest())
	assert.True(t, TierShare.IsGuest())
	assert.True(t, TierPreview.IsGuest())
}

func TestAccessTokenExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	assert.False(t, (&AccessToken{}).Expired(now), "no expiry means never expired")
	assert.False(t, (&AccessToken{ExpiresAt: &future}).Expired(now))
	assert.True(t, (&AccessToken{ExpiresAt: &past}).Expired(now))
}
