package users

import "github.com/princekumarofficial/marketplace-service/internal/types/badges"

type Role string

const (
	RoleUser Role = "user"
	RoleNGO  Role = "ngo"
)

type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name"`
	Role     Role   `json:"role" validate:"omitempty,oneof=user ngo"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// User is the stored user record without credentials.
type User struct {
	ID              string          `json:"id"`
	Email           string          `json:"email"`
	Name            string          `json:"name"`
	Role            Role            `json:"role"`
	ProfilePhotoURL string          `json:"profile_photo_url"`
	Counters        badges.Counters `json:"counters"`
	CreatedAt       string          `json:"created_at"`
}

// ProfileUpdateRequest commits a profile photo uploaded through a ticket.
// Nil fields are left untouched.
type ProfileUpdateRequest struct {
	Name            *string `json:"name" validate:"omitempty,min=1,max=120"`
	ProfilePhotoURL *string `json:"profile_photo_url" validate:"omitempty,url"`
}

// BadgeStatus is one row of GET /me/badges.
type BadgeStatus struct {
	Key      badges.BadgeKey `json:"key"`
	Field    badges.Field    `json:"field"`
	Unlocked bool            `json:"unlocked"`
}

// ProfileUpdateResponse is returned by PATCH /me/profile.
type ProfileUpdateResponse struct {
	User      User              `json:"user"`
	NewBadges []badges.BadgeKey `json:"new_badges"`
}
