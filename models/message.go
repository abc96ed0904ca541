package models

import "time"

// Message is immutable once created except for the read flag.
type Message struct {
	ID         int       `json:"id"`
	SenderID   int       `json:"senderId"`
	ReceiverID int       `json:"receiverId"`
	Content    string    `json:"content"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ChatSummary is the derived per-counterpart aggregate returned by the chat
// listing. It is never stored; unread counts are recomputed from message rows
// on every read.
type ChatSummary struct {
	ID              int        `json:"id"`
	Username        string     `json:"username"`
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	Picture         string     `json:"picture"`
	IsActive        bool       `json:"isActive"`
	LastActive      time.Time  `json:"lastActive"`
	LastMessage     string     `json:"lastMessage"`
	LastMessageTime *time.Time `json:"lastMessageTime"`
	UnreadCount     int        `json:"unreadCount"`
	Read            bool       `json:"read"`
}
