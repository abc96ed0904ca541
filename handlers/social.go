package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"pulsefeed.dev/project-pulsefeed/social"
)

// ToggleLike likes or unlikes a post for the authenticated caller. The
// response is the same typed payload published on the post.liked topic.
func ToggleLike(coordinator *social.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := requireIdentity(w, r)
		if !ok {
			return
		}

		postID, err := strconv.Atoi(mux.Vars(r)["postId"])
		if err != nil {
			http.Error(w, "Invalid post ID", http.StatusBadRequest)
			return
		}

		result, err := coordinator.ToggleLike(r.Context(), identity.ID, postID)
		if err != nil {
			switch {
			case errors.Is(err, social.ErrPostNotFound):
				http.Error(w, "Post not found", http.StatusNotFound)
			case errors.Is(err, social.ErrUserNotFound):
				http.Error(w, "User not found", http.StatusNotFound)
			default:
				http.Error(w, "Failed to toggle like", http.StatusInternalServerError)
				log.Println("ToggleLike error:", err)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}

// ToggleFollow follows or unfollows the target user.
func ToggleFollow(coordinator *social.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := requireIdentity(w, r)
		if !ok {
			return
		}

		targetID, err := strconv.Atoi(mux.Vars(r)["targetUserId"])
		if err != nil {
			http.Error(w, "Invalid user ID", http.StatusBadRequest)
			return
		}

		result, err := coordinator.ToggleFollow(r.Context(), identity.ID, targetID)
		if err != nil {
			switch {
			case errors.Is(err, social.ErrSelfFollow):
				http.Error(w, "Cannot follow yourself", http.StatusBadRequest)
			case errors.Is(err, social.ErrUserNotFound):
				http.Error(w, "User not found", http.StatusNotFound)
			default:
				http.Error(w, "Failed to toggle follow", http.StatusInternalServerError)
				log.Println("ToggleFollow error:", err)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}

// MarkNotificationsRead flips all the caller's unread notifications.
func MarkNotificationsRead(coordinator *social.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := requireIdentity(w, r)
		if !ok {
			return
		}

		if err := coordinator.MarkNotificationsRead(r.Context(), identity.ID); err != nil {
			http.Error(w, "Failed to mark notifications read", http.StatusInternalServerError)
			log.Println("MarkNotificationsRead error:", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "marked as read"})
	}
}
