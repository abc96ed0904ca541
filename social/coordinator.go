package social

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"pulsefeed.dev/project-pulsefeed/events"
	"pulsefeed.dev/project-pulsefeed/models"
)

var (
	ErrPostNotFound = errors.New("post not found")
	ErrUserNotFound = errors.New("user not found")
	ErrSelfFollow   = errors.New("cannot follow yourself")
)

// Store is the persistence capability the coordinator needs. Composite write
// methods must apply their sub-writes as one all-or-nothing unit.
type Store interface {
	UserSummary(ctx context.Context, userID int) (*models.UserSummary, error)
	UserExists(ctx context.Context, userID int) (bool, error)
	Post(ctx context.Context, postID int) (*models.Post, error)
	HasLiked(ctx context.Context, postID, userID int) (bool, error)
	ApplyLike(ctx context.Context, postID, userID int, n *models.Notification) (int, error)
	RemoveLike(ctx context.Context, postID, userID int) error
	IsFollowing(ctx context.Context, followerID, followingID int) (bool, error)
	ApplyFollow(ctx context.Context, userID, targetID int, n *models.Notification) (int, error)
	RemoveFollow(ctx context.Context, userID, targetID int) error
	MarkNotificationsRead(ctx context.Context, userID int) error
}

// Pusher mirrors a notification to the recipient's devices. Delivery is
// best-effort and happens off the request path.
type Pusher interface {
	NotifyUser(userID int, title, body string, data map[string]string)
}

// Coordinator executes like/unlike and follow/unfollow as atomic store
// operations followed by a fire-and-forget publish. The edge's existence is
// the sole toggle discriminator; callers supply no intent flag.
type Coordinator struct {
	store Store
	bus   *events.Bus
	push  Pusher
}

// NewCoordinator wires the coordinator to its store and bus. push may be nil.
func NewCoordinator(store Store, bus *events.Bus, push Pusher) *Coordinator {
	return &Coordinator{store: store, bus: bus, push: push}
}

// ToggleLike likes the post if the caller has not liked it yet, otherwise
// unlikes it. The returned payload is the event published on post.liked.
func (c *Coordinator) ToggleLike(ctx context.Context, userID, postID int) (*events.ActionNotification, error) {
	actor, err := c.store.UserSummary(ctx, userID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, ErrUserNotFound
	}

	liked, err := c.store.HasLiked(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	if liked {
		if err := c.store.RemoveLike(ctx, postID, userID); err != nil {
			return nil, err
		}
		ev := &events.ActionNotification{
			ID:        uuid.NewString(),
			PostID:    &postID,
			SenderID:  userID,
			FirstName: actor.FirstName,
			LastName:  actor.LastName,
			PostTitle: nil,
			Status:    events.StatusUnliked,
			Read:      true,
			Message:   "Post unliked successfully.",
			Picture:   actor.Picture,
			Type:      models.NotificationLike,
		}
		c.bus.Publish(events.TopicPostLiked, *ev)
		return ev, nil
	}

	post, err := c.store.Post(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	var notif *models.Notification
	if post.AuthorID != userID {
		notif = &models.Notification{
			Type:      models.NotificationLike,
			UserID:    post.AuthorID,
			SenderID:  userID,
			PostID:    &postID,
			PostTitle: post.Title,
			FirstName: actor.FirstName,
			LastName:  actor.LastName,
			Picture:   actor.Picture,
		}
	}

	notifID, err := c.store.ApplyLike(ctx, postID, userID, notif)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	id := uuid.NewString()
	if notifID != 0 {
		id = strconv.Itoa(notifID)
	}
	ev := &events.ActionNotification{
		ID:        id,
		PostID:    &postID,
		SenderID:  userID,
		FirstName: actor.FirstName,
		LastName:  actor.LastName,
		PostTitle: &post.Title,
		Status:    events.StatusLiked,
		Read:      false,
		Message:   "Post liked successfully.",
		Picture:   actor.Picture,
		CreatedAt: &now,
		Type:      models.NotificationLike,
	}
	c.bus.Publish(events.TopicPostLiked, *ev)

	if c.push != nil && post.AuthorID != userID {
		go c.push.NotifyUser(post.AuthorID,
			actor.FirstName+" liked your post", post.Title,
			map[string]string{
				"type":     "post_like",
				"post_id":  strconv.Itoa(postID),
				"liker_id": strconv.Itoa(userID),
			})
	}
	return ev, nil
}

// ToggleFollow follows the target user if no edge exists, otherwise unfollows.
// Both denormalized counters and the FOLLOW notification move with the edge in
// one transaction.
func (c *Coordinator) ToggleFollow(ctx context.Context, userID, targetID int) (*events.ActionNotification, error) {
	if userID == targetID {
		return nil, ErrSelfFollow
	}

	actor, err := c.store.UserSummary(ctx, userID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, ErrUserNotFound
	}

	exists, err := c.store.UserExists(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	following, err := c.store.IsFollowing(ctx, userID, targetID)
	if err != nil {
		return nil, err
	}

	if following {
		if err := c.store.RemoveFollow(ctx, userID, targetID); err != nil {
			return nil, err
		}
		ev := &events.ActionNotification{
			ID:        uuid.NewString(),
			PostID:    nil,
			SenderID:  userID,
			FirstName: actor.FirstName,
			LastName:  actor.LastName,
			Status:    events.StatusUnfollowed,
			Read:      true,
			Message:   "Unfollowed",
			Picture:   actor.Picture,
			Type:      models.NotificationFollow,
		}
		c.bus.Publish(events.TopicFollowUpdated(targetID), *ev)
		return ev, nil
	}

	notif := &models.Notification{
		Type:      models.NotificationFollow,
		UserID:    targetID,
		SenderID:  userID,
		FirstName: actor.FirstName,
		LastName:  actor.LastName,
		Picture:   actor.Picture,
	}
	notifID, err := c.store.ApplyFollow(ctx, userID, targetID, notif)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	ev := &events.ActionNotification{
		ID:        strconv.Itoa(notifID),
		PostID:    nil,
		SenderID:  userID,
		FirstName: actor.FirstName,
		LastName:  actor.LastName,
		Status:    events.StatusFollowed,
		Read:      false,
		Message:   "Followed",
		Picture:   actor.Picture,
		CreatedAt: &now,
		Type:      models.NotificationFollow,
	}
	c.bus.Publish(events.TopicFollowUpdated(targetID), *ev)

	if c.push != nil {
		go c.push.NotifyUser(targetID,
			"New Follower", actor.FirstName+" started following you!",
			map[string]string{
				"type":        "new_follower",
				"follower_id": strconv.Itoa(userID),
			})
	}
	return ev, nil
}

// MarkNotificationsRead flips every unread notification for the user and
// announces it on the user's notification.read topic.
func (c *Coordinator) MarkNotificationsRead(ctx context.Context, userID int) error {
	if err := c.store.MarkNotificationsRead(ctx, userID); err != nil {
		return err
	}
	c.bus.Publish(events.TopicNotificationsRead(userID), events.NotificationsRead{
		UserID: userID,
		Read:   true,
	})
	return nil
}
