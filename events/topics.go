package events

import "strconv"

// Topic taxonomy. Presence and like events are global; follow, message and
// notification-read events are addressed to a single user.
const (
	TopicPresence  = "presence.global"
	TopicPostLiked = "post.liked"
)

func TopicFollowUpdated(userID int) string {
	return "follow.updated." + strconv.Itoa(userID)
}

func TopicMessages(userID int) string {
	return "message." + strconv.Itoa(userID)
}

func TopicNotificationsRead(userID int) string {
	return "notification.read." + strconv.Itoa(userID)
}
