package database

import (
	"context"
	"database/sql"
	"time"

	"pulsefeed.dev/project-pulsefeed/models"
)

// Store is the Postgres-backed persistence layer. Composite write methods own
// their transactions; lookups that find nothing return (nil, nil) and leave
// the not-found decision to the caller.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ---- users ----

func (s *Store) CreateUser(ctx context.Context, firstName, lastName, email, passwordHash, picture string) (*models.User, error) {
	u := &models.User{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Picture:   picture,
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (first_name, last_name, email, password, picture)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		firstName, lastName, email, passwordHash, picture,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, email, password, picture,
		       followers, following, is_active, last_active, created_at
		FROM users WHERE email = $1`, email))
}

func (s *Store) User(ctx context.Context, id int) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, email, password, picture,
		       followers, following, is_active, last_active, created_at
		FROM users WHERE id = $1`, id))
}

func (s *Store) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Password,
		&u.Picture, &u.Followers, &u.Following, &u.IsActive, &u.LastActive, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) UserSummary(ctx context.Context, id int) (*models.UserSummary, error) {
	u, err := s.User(ctx, id)
	if err != nil || u == nil {
		return nil, err
	}
	sum := u.Summary()
	return &sum, nil
}

func (s *Store) UserExists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// ---- presence ----

func (s *Store) SetActiveStatus(ctx context.Context, userID int, active bool, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET is_active = $1, last_active = $2 WHERE id = $3`,
		active, at, userID)
	return err
}

// ---- social actions ----

func (s *Store) Post(ctx context.Context, postID int) (*models.Post, error) {
	var p models.Post
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, content, author_id, likes, created_at, updated_at
		FROM posts WHERE id = $1`, postID,
	).Scan(&p.ID, &p.Title, &p.Content, &p.AuthorID, &p.Likes, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) HasLiked(ctx context.Context, postID, userID int) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM post_likes WHERE post_id = $1 AND user_id = $2)`,
		postID, userID).Scan(&exists)
	return exists, err
}

// ApplyLike performs the like branch as one unit: counter increment, like edge
// insert and, when n is non-nil, the notification insert. The post row is
// locked first so concurrent likes on the same post cannot lose updates.
func (s *Store) ApplyLike(ctx context.Context, postID, userID int, n *models.Notification) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var likes int
	err = tx.QueryRowContext(ctx,
		`SELECT likes FROM posts WHERE id = $1 FOR UPDATE`, postID).Scan(&likes)
	if err != nil {
		return 0, err
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE posts SET likes = likes + 1 WHERE id = $1`, postID); err != nil {
		return 0, err
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2)`,
		postID, userID); err != nil {
		return 0, err
	}

	var notifID int
	if n != nil {
		err = tx.QueryRowContext(ctx, `
			INSERT INTO notifications
				(type, user_id, sender_id, post_id, post_title, first_name, last_name, picture, read)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE)
			RETURNING id`,
			n.Type, n.UserID, n.SenderID, n.PostID, n.PostTitle,
			n.FirstName, n.LastName, n.Picture,
		).Scan(&notifID)
		if err != nil {
			return 0, err
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return notifID, nil
}

// RemoveLike reverses ApplyLike: counter decrement, like edge delete and
// removal of the matching LIKE notifications, all-or-nothing.
func (s *Store) RemoveLike(ctx context.Context, postID, userID int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var likes int
	err = tx.QueryRowContext(ctx,
		`SELECT likes FROM posts WHERE id = $1 FOR UPDATE`, postID).Scan(&likes)
	if err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE posts SET likes = GREATEST(likes - 1, 0) WHERE id = $1`, postID); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`,
		postID, userID); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM notifications WHERE type = 'LIKE' AND post_id = $1 AND sender_id = $2`,
		postID, userID); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) IsFollowing(ctx context.Context, followerID, followingID int) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM followers WHERE follower_id = $1 AND following_id = $2)`,
		followerID, followingID).Scan(&exists)
	return exists, err
}

// ApplyFollow updates both denormalized counters, inserts the edge and the
// FOLLOW notification as one unit. Both user rows are locked in id order so
// two users following each other concurrently cannot deadlock.
func (s *Store) ApplyFollow(ctx context.Context, userID, targetID int, n *models.Notification) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if err = lockUserPair(ctx, tx, userID, targetID); err != nil {
		return 0, err
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE users SET following = following + 1 WHERE id = $1`, userID); err != nil {
		return 0, err
	}
	if _, err = tx.ExecContext(ctx,
		`UPDATE users SET followers = followers + 1 WHERE id = $1`, targetID); err != nil {
		return 0, err
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO followers (follower_id, following_id) VALUES ($1, $2)`,
		userID, targetID); err != nil {
		return 0, err
	}

	var notifID int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO notifications
			(type, user_id, sender_id, post_id, post_title, first_name, last_name, picture, read)
		VALUES ($1, $2, $3, NULL, '', $4, $5, $6, FALSE)
		RETURNING id`,
		n.Type, n.UserID, n.SenderID, n.FirstName, n.LastName, n.Picture,
	).Scan(&notifID)
	if err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return notifID, nil
}

// RemoveFollow reverses ApplyFollow, deleting the matching FOLLOW
// notifications along with the edge.
func (s *Store) RemoveFollow(ctx context.Context, userID, targetID int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err = lockUserPair(ctx, tx, userID, targetID); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE users SET following = GREATEST(following - 1, 0) WHERE id = $1`, userID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx,
		`UPDATE users SET followers = GREATEST(followers - 1, 0) WHERE id = $1`, targetID); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM followers WHERE follower_id = $1 AND following_id = $2`,
		userID, targetID); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM notifications WHERE type = 'FOLLOW' AND user_id = $1 AND sender_id = $2`,
		targetID, userID); err != nil {
		return err
	}

	return tx.Commit()
}

func lockUserPair(ctx context.Context, tx *sql.Tx, a, b int) error {
	first, second := a, b
	if second < first {
		first, second = second, first
	}
	for _, id := range []int{first, second} {
		var locked int
		if err := tx.QueryRowContext(ctx,
			`SELECT id FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&locked); err != nil {
			return err
		}
	}
	return nil
}

// ---- notifications ----

func (s *Store) MarkNotificationsRead(ctx context.Context, userID int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE user_id = $1 AND read = FALSE`,
		userID)
	return err
}

func (s *Store) Notifications(ctx context.Context, userID int) ([]models.Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, user_id, sender_id, post_id, post_title,
		       first_name, last_name, picture, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		var postID sql.NullInt64
		if err := rows.Scan(&n.ID, &n.Type, &n.UserID, &n.SenderID, &postID,
			&n.PostTitle, &n.FirstName, &n.LastName, &n.Picture, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		if postID.Valid {
			id := int(postID.Int64)
			n.PostID = &id
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// ---- chat ----

func (s *Store) CreateMessage(ctx context.Context, senderID, receiverID int, content string) (*models.Message, error) {
	m := &models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO messages (sender_id, receiver_id, content, read)
		VALUES ($1, $2, $3, FALSE)
		RETURNING id, created_at`,
		senderID, receiverID, content,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// UnreadCount counts unread messages sent by senderID to receiverID. It is
// recomputed from rows on every call, never cached.
func (s *Store) UnreadCount(ctx context.Context, senderID, receiverID int) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM messages
		WHERE sender_id = $1 AND receiver_id = $2 AND read = FALSE`,
		senderID, receiverID).Scan(&count)
	return count, err
}

func (s *Store) MarkMessagesRead(ctx context.Context, readerID, counterpartID int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE messages SET read = TRUE
		WHERE receiver_id = $1 AND sender_id = $2 AND read = FALSE`,
		readerID, counterpartID)
	return err
}

// ChatCounterparts returns the distinct users the given user has exchanged
// messages with, treating both directions as the same conversation.
func (s *Store) ChatCounterparts(ctx context.Context, userID int) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT CASE WHEN sender_id = $1 THEN receiver_id ELSE sender_id END
		FROM messages
		WHERE sender_id = $1 OR receiver_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) LastMessage(ctx context.Context, userA, userB int) (*models.Message, error) {
	var m models.Message
	err := s.db.QueryRowContext(ctx, `
		SELECT id, sender_id, receiver_id, content, read, created_at
		FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2)
		   OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY created_at DESC
		LIMIT 1`, userA, userB,
	).Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.Read, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) Messages(ctx context.Context, userA, userB int) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sender_id, receiver_id, content, read, created_at
		FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2)
		   OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY created_at ASC`, userA, userB)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.Read, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// ---- device tokens ----

func (s *Store) RegisterDeviceToken(ctx context.Context, userID int, token string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO device_tokens (user_id, token)
		VALUES ($1, $2)
		ON CONFLICT (user_id, token)
		DO UPDATE SET updated_at = NOW()`,
		userID, token)
	return err
}

func (s *Store) DeviceTokens(ctx context.Context, userID int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT token FROM device_tokens
		WHERE user_id = $1 AND token != ''`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}

func (s *Store) DeleteDeviceToken(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM device_tokens WHERE token = $1`, token)
	return err
}
