package httpdto

import (
	"time"

	"relay-chat/internal/domain/user"
)

// UserDTO is the public projection of a user. It never carries the password.
type UserDTO struct {
	ID         string    `json:"id"`
	FullName   string    `json:"fullName"`
	Username   string    `json:"username"`
	Gender     string    `json:"gender"`
	ProfilePic string    `json:"profilePic"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// UserSummaryDTO is the inline sender of a message.
type UserSummaryDTO struct {
	ID         string `json:"id"`
	FullName   string `json:"fullName"`
	Username   string `json:"username"`
	ProfilePic string `json:"profilePic"`
}

func FromUser(u user.User) UserDTO {
	return UserDTO{
		ID:         u.ID.String(),
		FullName:   u.FullName,
		Username:   u.Username,
		Gender:     u.Gender,
		ProfilePic: u.ProfilePic,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func FromUserSlice(users []user.User) []UserDTO {
	out := make([]UserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, FromUser(u))
	}
	return out
}

func FromUserSummary(u user.User) UserSummaryDTO {
	return UserSummaryDTO{
		ID:         u.ID.String(),
		FullName:   u.FullName,
		Username:   u.Username,
		ProfilePic: u.ProfilePic,
	}
}
