package social

import (
	"context"
	"sync"
	"testing"
	"time"

	"pulsefeed.dev/project-pulsefeed/events"
	"pulsefeed.dev/project-pulsefeed/models"
)

type pair struct{ a, b int }

type fakeStore struct {
	mu            sync.Mutex
	users         map[int]*models.User
	posts         map[int]*models.Post
	likes         map[pair]bool
	follows       map[pair]bool
	notifications map[int]*models.Notification
	nextNotifID   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:         make(map[int]*models.User),
		posts:         make(map[int]*models.Post),
		likes:         make(map[pair]bool),
		follows:       make(map[pair]bool),
		notifications: make(map[int]*models.Notification),
	}
}

func (f *fakeStore) addUser(id int, firstName, email string) {
	f.users[id] = &models.User{ID: id, FirstName: firstName, Email: email}
}

func (f *fakeStore) addPost(id, authorID int, title string) {
	f.posts[id] = &models.Post{ID: id, AuthorID: authorID, Title: title}
}

func (f *fakeStore) UserSummary(ctx context.Context, userID int) (*models.UserSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, nil
	}
	s := u.Summary()
	return &s, nil
}

func (f *fakeStore) UserExists(ctx context.Context, userID int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.users[userID]
	return ok, nil
}

func (f *fakeStore) Post(ctx context.Context, postID int) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[postID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) HasLiked(ctx context.Context, postID, userID int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.likes[pair{postID, userID}], nil
}

func (f *fakeStore) ApplyLike(ctx context.Context, postID, userID int, n *models.Notification) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts[postID].Likes++
	f.likes[pair{postID, userID}] = true
	if n == nil {
		return 0, nil
	}
	f.nextNotifID++
	stored := *n
	stored.ID = f.nextNotifID
	stored.CreatedAt = time.Now()
	f.notifications[stored.ID] = &stored
	return stored.ID, nil
}

func (f *fakeStore) RemoveLike(ctx context.Context, postID, userID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.posts[postID].Likes > 0 {
		f.posts[postID].Likes--
	}
	delete(f.likes, pair{postID, userID})
	for id, n := range f.notifications {
		if n.Type == models.NotificationLike && n.PostID != nil && *n.PostID == postID && n.SenderID == userID {
			delete(f.notifications, id)
		}
	}
	return nil
}

func (f *fakeStore) IsFollowing(ctx context.Context, followerID, followingID int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.follows[pair{followerID, followingID}], nil
}

func (f *fakeStore) ApplyFollow(ctx context.Context, userID, targetID int, n *models.Notification) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[userID].Following++
	f.users[targetID].Followers++
	f.follows[pair{userID, targetID}] = true
	f.nextNotifID++
	stored := *n
	stored.ID = f.nextNotifID
	stored.CreatedAt = time.Now()
	f.notifications[stored.ID] = &stored
	return stored.ID, nil
}

func (f *fakeStore) RemoveFollow(ctx context.Context, userID, targetID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[userID].Following--
	f.users[targetID].Followers--
	delete(f.follows, pair{userID, targetID})
	for id, n := range f.notifications {
		if n.Type == models.NotificationFollow && n.UserID == targetID && n.SenderID == userID {
			delete(f.notifications, id)
		}
	}
	return nil
}

func (f *fakeStore) MarkNotificationsRead(ctx context.Context, userID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.notifications {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

func (f *fakeStore) notificationsFor(userID int) []*models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Notification
	for _, n := range f.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

func receive(t *testing.T, sub *events.Subscription) events.Event {
	t.Helper()
	select {
	case ev := <-sub.Events():
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return events.Event{}
	}
}

func TestLikeUnlikeRoundTrip(t *testing.T) {
	store := newFakeStore()
	store.addUser(1, "Alice", "alice@example.com")
	store.addUser(2, "Bob", "bob@example.com")
	store.addPost(10, 2, "Bob's post")

	bus := events.NewBus()
	defer bus.Close()
	sub := bus.Subscribe(events.TopicPostLiked)

	c := NewCoordinator(store, bus, nil)
	ctx := context.Background()

	result, err := c.ToggleLike(ctx, 1, 10)
	if err != nil {
		t.Fatalf("like: %v", err)
	}
	if result.Status != events.StatusLiked {
		t.Errorf("expected LIKED, got %s", result.Status)
	}
	if result.Read {
		t.Error("like event should be unread")
	}
	if result.PostTitle == nil || *result.PostTitle != "Bob's post" {
		t.Errorf("expected post title on like event, got %v", result.PostTitle)
	}
	if store.posts[10].Likes != 1 {
		t.Errorf("expected 1 like, got %d", store.posts[10].Likes)
	}

	notifs := store.notificationsFor(2)
	if len(notifs) != 1 {
		t.Fatalf("expected one notification for the author, got %d", len(notifs))
	}
	if notifs[0].Read {
		t.Error("new notification should be unread")
	}
	if notifs[0].SenderID != 1 {
		t.Errorf("expected sender 1, got %d", notifs[0].SenderID)
	}

	result, err = c.ToggleLike(ctx, 1, 10)
	if err != nil {
		t.Fatalf("unlike: %v", err)
	}
	if result.Status != events.StatusUnliked {
		t.Errorf("expected UNLIKED, got %s", result.Status)
	}
	if !result.Read {
		t.Error("unlike event should carry read=true")
	}
	if result.PostTitle != nil {
		t.Errorf("unlike event should have no post title, got %v", *result.PostTitle)
	}
	if store.posts[10].Likes != 0 {
		t.Errorf("expected like counter back at 0, got %d", store.posts[10].Likes)
	}
	if len(store.notificationsFor(2)) != 0 {
		t.Error("expected notification removed on unlike")
	}

	first := receive(t, sub).Payload.(events.ActionNotification)
	second := receive(t, sub).Payload.(events.ActionNotification)
	if first.Status != events.StatusLiked || second.Status != events.StatusUnliked {
		t.Errorf("expected LIKED then UNLIKED on the bus, got %s then %s", first.Status, second.Status)
	}
}

func TestLikeMissingPost(t *testing.T) {
	store := newFakeStore()
	store.addUser(1, "Alice", "alice@example.com")

	bus := events.NewBus()
	defer bus.Close()
	c := NewCoordinator(store, bus, nil)

	if _, err := c.ToggleLike(context.Background(), 1, 99); err != ErrPostNotFound {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

func TestSelfLikeSkipsNotification(t *testing.T) {
	store := newFakeStore()
	store.addUser(1, "Alice", "alice@example.com")
	store.addPost(10, 1, "my own post")

	bus := events.NewBus()
	defer bus.Close()
	c := NewCoordinator(store, bus, nil)

	if _, err := c.ToggleLike(context.Background(), 1, 10); err != nil {
		t.Fatalf("like: %v", err)
	}
	if store.posts[10].Likes != 1 {
		t.Errorf("expected counter incremented, got %d", store.posts[10].Likes)
	}
	if len(store.notificationsFor(1)) != 0 {
		t.Error("liking your own post must not notify yourself")
	}
}

func TestFollowUnfollowCounterSymmetry(t *testing.T) {
	store := newFakeStore()
	store.addUser(1, "Alice", "alice@example.com")
	store.addUser(2, "Bob", "bob@example.com")

	bus := events.NewBus()
	defer bus.Close()
	c := NewCoordinator(store, bus, nil)
	ctx := context.Background()

	result, err := c.ToggleFollow(ctx, 1, 2)
	if err != nil {
		t.Fatalf("follow: %v", err)
	}
	if result.Status != events.StatusFollowed {
		t.Errorf("expected FOLLOW, got %s", result.Status)
	}
	if store.users[1].Following != 1 || store.users[2].Followers != 1 {
		t.Errorf("counters after follow: following=%d followers=%d",
			store.users[1].Following, store.users[2].Followers)
	}
	if len(store.notificationsFor(2)) != 1 {
		t.Error("expected FOLLOW notification for the target")
	}

	result, err = c.ToggleFollow(ctx, 1, 2)
	if err != nil {
		t.Fatalf("unfollow: %v", err)
	}
	if result.Status != events.StatusUnfollowed {
		t.Errorf("expected UNFOLLOW, got %s", result.Status)
	}
	if store.users[1].Following != 0 || store.users[2].Followers != 0 {
		t.Errorf("counters not back at pre-follow values: following=%d followers=%d",
			store.users[1].Following, store.users[2].Followers)
	}
	if len(store.notificationsFor(2)) != 0 {
		t.Error("expected FOLLOW notification removed on unfollow")
	}
}

func TestSelfFollowRejected(t *testing.T) {
	store := newFakeStore()
	store.addUser(1, "Alice", "alice@example.com")

	bus := events.NewBus()
	defer bus.Close()
	c := NewCoordinator(store, bus, nil)

	if _, err := c.ToggleFollow(context.Background(), 1, 1); err != ErrSelfFollow {
		t.Fatalf("expected ErrSelfFollow, got %v", err)
	}
}

func TestFollowMissingTarget(t *testing.T) {
	store := newFakeStore()
	store.addUser(1, "Alice", "alice@example.com")

	bus := events.NewBus()
	defer bus.Close()
	c := NewCoordinator(store, bus, nil)

	if _, err := c.ToggleFollow(context.Background(), 1, 42); err != ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestFollowPublishesToTargetTopicOnly(t *testing.T) {
	store := newFakeStore()
	store.addUser(1, "Alice", "alice@example.com")
	store.addUser(2, "Bob", "bob@example.com")
	store.addUser(3, "Carol", "carol@example.com")

	bus := events.NewBus()
	defer bus.Close()
	target := bus.Subscribe(events.TopicFollowUpdated(2))
	bystander := bus.Subscribe(events.TopicFollowUpdated(3))

	c := NewCoordinator(store, bus, nil)
	if _, err := c.ToggleFollow(context.Background(), 1, 2); err != nil {
		t.Fatalf("follow: %v", err)
	}

	ev := receive(t, target).Payload.(events.ActionNotification)
	if ev.SenderID != 1 || ev.Status != events.StatusFollowed {
		t.Errorf("unexpected follow event %+v", ev)
	}

	select {
	case ev := <-bystander.Events():
		t.Fatalf("bystander received follow event: %v", ev.Payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMarkNotificationsRead(t *testing.T) {
	store := newFakeStore()
	store.addUser(1, "Alice", "alice@example.com")
	store.addUser(2, "Bob", "bob@example.com")
	store.addPost(10, 2, "Bob's post")

	bus := events.NewBus()
	defer bus.Close()
	sub := bus.Subscribe(events.TopicNotificationsRead(2))

	c := NewCoordinator(store, bus, nil)
	ctx := context.Background()

	if _, err := c.ToggleLike(ctx, 1, 10); err != nil {
		t.Fatalf("like: %v", err)
	}
	if err := c.MarkNotificationsRead(ctx, 2); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	for _, n := range store.notificationsFor(2) {
		if !n.Read {
			t.Error("expected all notifications marked read")
		}
	}

	ev := receive(t, sub).Payload.(events.NotificationsRead)
	if ev.UserID != 2 || !ev.Read {
		t.Errorf("unexpected notifications-read event %+v", ev)
	}
}
