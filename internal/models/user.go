package models

import "time"

// User represents a bot user with their role, tracked channels and interests
type User struct {
	ID                  string    `json:"id"`
	RealName            string    `json:"real_name"`
	Role                string    `json:"role,omitempty"`
	TrackedChannels     []string  `json:"tracked_channels"`
	Interests           []string  `json:"interests"`
	FollowedUsers       []string  `json:"followed_users"`
	MessageCount        int64     `json:"message_count"`
	LastActive          time.Time `json:"last_active"`
	Muted               bool      `json:"muted"`
	OnboardingCompleted bool      `json:"onboarding_completed"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Customized reports whether the user has a non-empty tracked-channel or
// interest set. Role defaults are only applied to uncustomized users.
func (u *User) Customized() bool {
	return len(u.TrackedChannels) > 0 || len(u.Interests) > 0
}
