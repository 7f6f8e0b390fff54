package dto

import (
	"time"

	"github.com/google/uuid"
)

// RegisterPartnerRequest is the studio panel signup payload
type RegisterPartnerRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginPartnerRequest is the studio panel login payload
type LoginPartnerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type PartnerResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Provider  string     `json:"provider"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type PartnerAuthResponse struct {
	Token   string          `json:"token"`
	Partner PartnerResponse `json:"partner"`
}

// GuestLoginRequest carries exactly one project credential. Presenting more
// than one is rejected with a validation error.
type GuestLoginRequest struct {
	AccessCode   string `json:"access_code,omitempty"`
	ShareToken   string `json:"share_token,omitempty"`
	PreviewToken string `json:"preview_token,omitempty"`
}

// GuestLoginResponse returns the plaintext bearer secret exactly once.
type GuestLoginResponse struct {
	Token     string          `json:"token"`
	TokenName string          `json:"token_name"`
	Tier      string          `json:"tier"`
	Project   ProjectResponse `json:"project"`
}
