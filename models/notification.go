package models

import "time"

const (
	NotificationLike   = "LIKE"
	NotificationFollow = "FOLLOW"
)

// Notification rows are created in the same transaction as the like/follow
// edge that triggers them, and deleted when that edge is removed.
type Notification struct {
	ID        int       `json:"id"`
	Type      string    `json:"type"`
	UserID    int       `json:"userId"`
	SenderID  int       `json:"senderId"`
	PostID    *int      `json:"postId"`
	PostTitle string    `json:"postTitle"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Picture   string    `json:"picture"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}
