package chat

import (
	"context"
	"errors"

	"pulsefeed.dev/project-pulsefeed/events"
	"pulsefeed.dev/project-pulsefeed/models"
)

var (
	ErrEmptyContent = errors.New("message content cannot be empty")
	ErrUserNotFound = errors.New("user not found")
)

// Store is the persistence capability the chat manager needs.
type Store interface {
	User(ctx context.Context, id int) (*models.User, error)
	CreateMessage(ctx context.Context, senderID, receiverID int, content string) (*models.Message, error)
	UnreadCount(ctx context.Context, senderID, receiverID int) (int, error)
	MarkMessagesRead(ctx context.Context, readerID, counterpartID int) error
	ChatCounterparts(ctx context.Context, userID int) ([]int, error)
	LastMessage(ctx context.Context, userA, userB int) (*models.Message, error)
	Messages(ctx context.Context, userA, userB int) ([]models.Message, error)
}

// Manager persists messages and keeps unread counts consistent. Counts are
// always recomputed from stored rows, so a missed event self-heals on the next
// read.
type Manager struct {
	store Store
	bus   *events.Bus
}

func NewManager(store Store, bus *events.Bus) *Manager {
	return &Manager{store: store, bus: bus}
}

// SendMessage persists an unread message and publishes the enriched event to
// both parties' topics, so the sender's other open sessions stay in sync.
func (m *Manager) SendMessage(ctx context.Context, senderID, receiverID int, content string) (*models.Message, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}

	sender, err := m.store.User(ctx, senderID)
	if err != nil {
		return nil, err
	}
	if sender == nil {
		return nil, ErrUserNotFound
	}

	msg, err := m.store.CreateMessage(ctx, senderID, receiverID, content)
	if err != nil {
		return nil, err
	}

	unread, err := m.store.UnreadCount(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}

	summary := sender.Summary()
	ev := events.MessageEvent{
		ID:          msg.ID,
		ReceiverID:  receiverID,
		Content:     msg.Content,
		CreatedAt:   &msg.CreatedAt,
		Sender:      &summary,
		UnreadCount: unread,
		EventType:   events.EventNewMessage,
		Read:        msg.Read,
	}
	m.bus.Publish(events.TopicMessages(receiverID), ev)
	m.bus.Publish(events.TopicMessages(senderID), ev)
	return msg, nil
}

// MarkAsRead flips every unread message from the counterpart to the reader and
// notifies both parties with the recomputed (now zero) unread count.
func (m *Manager) MarkAsRead(ctx context.Context, readerID, counterpartID int) error {
	if err := m.store.MarkMessagesRead(ctx, readerID, counterpartID); err != nil {
		return err
	}

	unread, err := m.store.UnreadCount(ctx, counterpartID, readerID)
	if err != nil {
		return err
	}

	ev := events.MessageEvent{
		ReceiverID:  readerID,
		ChatWith:    counterpartID,
		UnreadCount: unread,
		EventType:   events.EventReadNotification,
		Read:        true,
	}
	m.bus.Publish(events.TopicMessages(readerID), ev)
	m.bus.Publish(events.TopicMessages(counterpartID), ev)
	return nil
}

// UserChats derives one summary per counterpart the user has exchanged
// messages with, in either direction.
func (m *Manager) UserChats(ctx context.Context, userID int) ([]models.ChatSummary, error) {
	counterparts, err := m.store.ChatCounterparts(ctx, userID)
	if err != nil {
		return nil, err
	}

	var chats []models.ChatSummary
	for _, otherID := range counterparts {
		other, err := m.store.User(ctx, otherID)
		if err != nil {
			return nil, err
		}
		if other == nil {
			continue
		}

		last, err := m.store.LastMessage(ctx, userID, otherID)
		if err != nil {
			return nil, err
		}

		unread, err := m.store.UnreadCount(ctx, otherID, userID)
		if err != nil {
			return nil, err
		}

		summary := models.ChatSummary{
			ID:          other.ID,
			Username:    other.Username(),
			FirstName:   other.FirstName,
			LastName:    other.LastName,
			Picture:     other.Picture,
			IsActive:    other.IsActive,
			LastActive:  other.LastActive,
			UnreadCount: unread,
		}
		if last != nil {
			summary.LastMessage = last.Content
			summary.LastMessageTime = &last.CreatedAt
			summary.Read = last.Read
		}
		chats = append(chats, summary)
	}
	return chats, nil
}

// Messages returns the full two-way history between the user and chatWith,
// oldest first.
func (m *Manager) Messages(ctx context.Context, userID, chatWith int) ([]models.Message, error) {
	return m.store.Messages(ctx, userID, chatWith)
}
