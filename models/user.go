package models

import (
	"strings"
	"time"
)

type User struct {
	ID         int       `json:"id"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Email      string    `json:"email"`
	Password   string    `json:"-"`
	Picture    string    `json:"picture"`
	Followers  int       `json:"followers"`
	Following  int       `json:"following"`
	IsActive   bool      `json:"isActive"`
	LastActive time.Time `json:"lastActive"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Username is the local part of the user's email address.
func (u *User) Username() string {
	if i := strings.Index(u.Email, "@"); i > 0 {
		return u.Email[:i]
	}
	return u.Email
}

// UserSummary is the sender profile attached to chat and notification events.
type UserSummary struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Picture   string `json:"picture"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:        u.ID,
		Username:  u.Username(),
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Picture:   u.Picture,
	}
}

type Follow struct {
	ID          int       `json:"id"`
	FollowerID  int       `json:"followerId"`
	FollowingID int       `json:"followingId"`
	CreatedAt   time.Time `json:"createdAt"`
}
