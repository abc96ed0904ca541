package events

import (
	"time"

	"pulsefeed.dev/project-pulsefeed/models"
)

type ActionStatus string

const (
	StatusLiked      ActionStatus = "LIKED"
	StatusUnliked    ActionStatus = "UNLIKED"
	StatusFollowed   ActionStatus = "FOLLOW"
	StatusUnfollowed ActionStatus = "UNFOLLOW"
)

const (
	EventNewMessage       = "NEW_MESSAGE"
	EventReadNotification = "READ_NOTIFICATION"
)

// PresenceUpdate is published on TopicPresence whenever a user's online state
// settles.
type PresenceUpdate struct {
	UserID     int       `json:"userId"`
	IsActive   bool      `json:"isActive"`
	LastActive time.Time `json:"lastActive"`
}

// ActionNotification is the payload for like and follow toggles. ID carries
// the persisted notification id on the forward action and a generated id on
// reversal, where no notification row survives.
type ActionNotification struct {
	ID        string       `json:"id"`
	PostID    *int         `json:"postId"`
	SenderID  int          `json:"senderId"`
	FirstName string       `json:"firstName"`
	LastName  string       `json:"lastName"`
	PostTitle *string      `json:"postTitle"`
	Status    ActionStatus `json:"status"`
	Read      bool         `json:"read"`
	Message   string       `json:"message"`
	Picture   string       `json:"picture"`
	CreatedAt *time.Time   `json:"createdAt,omitempty"`
	Type      string       `json:"type"`
}

// MessageEvent is published to both parties of a chat on new messages and on
// read-state changes.
type MessageEvent struct {
	ID          int                 `json:"id,omitempty"`
	ReceiverID  int                 `json:"receiverId"`
	Content     string              `json:"content,omitempty"`
	CreatedAt   *time.Time          `json:"createdAt,omitempty"`
	Sender      *models.UserSummary `json:"sender,omitempty"`
	UnreadCount int                 `json:"unreadCount"`
	EventType   string              `json:"eventType"`
	ChatWith    int                 `json:"chatWith,omitempty"`
	Read        bool                `json:"read"`
}

// NotificationsRead is published when a user marks all notifications read.
type NotificationsRead struct {
	UserID int  `json:"userId"`
	Read   bool `json:"read"`
}
