package utils

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tablostudio/tablo-api/domain/models"
	"github.com/tablostudio/tablo-api/pkg/logger"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrMissingToken = errors.New("missing token")
)

type JWTClaims struct {
	PartnerID string `json:"partner_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

// PartnerContext is the authenticated studio account on a request.
type PartnerContext struct {
	ID    uuid.UUID
	Name  string
	Email string
}

// GeneratePartnerToken signs a 7-day JWT for the partner panel.
func GeneratePartnerToken(partner *models.Partner, jwtSecret string) (string, error) {
	claims := JWTClaims{
		PartnerID: partner.ID.String(),
		Name:      partner.Name,
		Email:     partner.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(7 * 24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

// ValidatePartnerToken parses and validates a partner JWT.
func ValidatePartnerToken(tokenString, jwtSecret string) (*PartnerContext, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	if strings.HasPrefix(tokenString, "Bearer ") {
		tokenString = strings.TrimPrefix(tokenString, "Bearer ")
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(jwtSecret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	partnerID, err := uuid.Parse(claims.PartnerID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &PartnerContext{
		ID:    partnerID,
		Name:  claims.Name,
		Email: claims.Email,
	}, nil
}

func ExtractTokenFromHeader(authHeader string) string {
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}

	return parts[1]
}

func GetPartnerFromContext(c *fiber.Ctx) (*PartnerContext, error) {
	partner := c.Locals("partner")

	if partner == nil {
		logger.Warn(logger.CategoryAuth, "get_partner_context", "Partner not found in context", nil)
		return nil, errors.New("partner not found in context")
	}

	partnerCtx, ok := partner.(*PartnerContext)
	if !ok {
		logger.Warn(logger.CategoryAuth, "get_partner_context", "Invalid partner context type", map[string]interface{}{"type": logger.GetTypeName(partner)})
		return nil, errors.New("invalid partner context type")
	}

	return partnerCtx, nil
}
