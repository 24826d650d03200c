// AngelaMos | 2026
// dto.go

package auth

import (
	"time"
)

type LoginRequest struct {
	Email    string `validate:"required,email,max=255"`
	Password string `validate:"required,max=128"`
}

type RegisterRequest struct {
	Email    string `validate:"required,email,max=255"`
	Password string `validate:"required,min=8,max=128"`
}

type LoginResult struct {
	User      *UserInfo
	Token     string
	ExpiresAt time.Time
}
