// AngelaMos | 2026
// dto.go

package user

import (
	"github.com/carterperez-dev/flashforge/internal/core"
	"github.com/carterperez-dev/flashforge/internal/quota"
)

type AccountResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	PromptsUsed int    `json:"prompts_used"`
	Subscribed  bool   `json:"subscribed"`
	Remaining   int    `json:"remaining"`
	FreeLimit   int    `json:"free_limit"`
}

type IndexResponse struct {
	User    *AccountResponse `json:"user"`
	Flashes []core.Flash     `json:"flashes"`
}

func ToAccountResponse(u *User, tracker *quota.Tracker) AccountResponse {
	return AccountResponse{
		ID:          u.ID,
		Email:       u.Email,
		PromptsUsed: u.PromptsUsed,
		Subscribed:  u.Subscribed,
		Remaining:   tracker.Remaining(u.Usage()),
		FreeLimit:   tracker.Limit(),
	}
}
