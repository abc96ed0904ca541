package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"pulsefeed.dev/project-pulsefeed/chat"
)

func SendMessage(manager *chat.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := requireIdentity(w, r)
		if !ok {
			return
		}

		var req struct {
			ReceiverID int    `json:"receiverId"`
			Content    string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		message, err := manager.SendMessage(r.Context(), identity.ID, req.ReceiverID, req.Content)
		if err != nil {
			switch {
			case errors.Is(err, chat.ErrEmptyContent):
				http.Error(w, "Message content is required", http.StatusBadRequest)
			case errors.Is(err, chat.ErrUserNotFound):
				http.Error(w, "User not found", http.StatusNotFound)
			default:
				http.Error(w, "Failed to send message", http.StatusInternalServerError)
				log.Println("SendMessage error:", err)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(message)
	}
}

// GetMessages returns the full two-way history with another user.
func GetMessages(manager *chat.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := requireIdentity(w, r)
		if !ok {
			return
		}

		chatWith, err := strconv.Atoi(mux.Vars(r)["chatWith"])
		if err != nil {
			http.Error(w, "Invalid user ID", http.StatusBadRequest)
			return
		}

		messages, err := manager.Messages(r.Context(), identity.ID, chatWith)
		if err != nil {
			http.Error(w, "Failed to fetch messages", http.StatusInternalServerError)
			log.Println("GetMessages error:", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(messages)
	}
}

// MarkMessagesRead marks every message from the counterpart as read.
func MarkMessagesRead(manager *chat.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := requireIdentity(w, r)
		if !ok {
			return
		}

		chatWith, err := strconv.Atoi(mux.Vars(r)["chatWith"])
		if err != nil {
			http.Error(w, "Invalid user ID", http.StatusBadRequest)
			return
		}

		if err := manager.MarkAsRead(r.Context(), identity.ID, chatWith); err != nil {
			http.Error(w, "Failed to mark messages read", http.StatusInternalServerError)
			log.Println("MarkMessagesRead error:", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]bool{"read": true})
	}
}

// GetUserChats lists one entry per conversation counterpart.
func GetUserChats(manager *chat.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := requireIdentity(w, r)
		if !ok {
			return
		}

		chats, err := manager.UserChats(r.Context(), identity.ID)
		if err != nil {
			http.Error(w, "Failed to fetch chats", http.StatusInternalServerError)
			log.Println("GetUserChats error:", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chats)
	}
}
