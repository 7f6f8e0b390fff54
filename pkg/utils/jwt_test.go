package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablostudio/tablo-api/domain/models"
)

func TestPartnerTokenRoundTrip(t *testing.T) {
	partner := &models.Partner{
		ID:    uuid.New(),
		Name:  "Fény Stúdió",
		Email: "studio@example.com",
	}

	token, err := GeneratePartnerToken(partner, "test-secret")
	require.NoError(t, err)

	ctx, err := ValidatePartnerToken(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, partner.ID, ctx.ID)
	assert.Equal(t, partner.Name, ctx.Name)
	assert.Equal(t, partner.Email, ctx.Email)
}

func TestValidatePartnerToken_WrongSecret(t *testing.T) {
	partner := &models.Partner{ID: uuid.New()}
	token, err := GeneratePartnerToken(partner, "test-secret")
	require.NoError(t, err)

	_, err = ValidatePartnerToken(token, "other-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidatePartnerToken_Expired(t *testing.T) {
	claims := JWTClaims{
		PartnerID: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = ValidatePartnerToken(token, "test-secret")
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidatePartnerToken_Missing(t *testing.T) {
	_, err := ValidatePartnerToken("", "test-secret")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc", ExtractTokenFromHeader("Bearer abc"))
	assert.Equal(t, "", ExtractTokenFromHeader(""))
	assert.Equal(t, "", ExtractTokenFromHeader("abc"))
	assert.Equal(t, "", ExtractTokenFromHeader("Basic abc"))
	assert.Equal(t, "", ExtractTokenFromHeader("Bearer"))
}
