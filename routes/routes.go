package routes

import (
	"github.com/gorilla/mux"
	"pulsefeed.dev/project-pulsefeed/auth"
	"pulsefeed.dev/project-pulsefeed/chat"
	"pulsefeed.dev/project-pulsefeed/database"
	"pulsefeed.dev/project-pulsefeed/events"
	"pulsefeed.dev/project-pulsefeed/handlers"
	"pulsefeed.dev/project-pulsefeed/presence"
	"pulsefeed.dev/project-pulsefeed/social"
)

func CreateUserRoutes(router *mux.Router, store *database.Store, tokens *auth.TokenManager) *mux.Router {
	router.HandleFunc("/signup", handlers.Signup(store, tokens)).Methods("POST")
	router.HandleFunc("/login", handlers.Login(store, tokens)).Methods("POST")
	router.HandleFunc("/device-tokens", handlers.RegisterDeviceToken(store)).Methods("POST")

	return router
}

func CreateSocialRoutes(router *mux.Router, coordinator *social.Coordinator, store *database.Store) *mux.Router {
	router.HandleFunc("/posts/{postId}/like", handlers.ToggleLike(coordinator)).Methods("POST")
	router.HandleFunc("/users/{targetUserId}/follow", handlers.ToggleFollow(coordinator)).Methods("POST")
	router.HandleFunc("/notifications", handlers.GetNotifications(store)).Methods("GET")
	router.HandleFunc("/notifications/read", handlers.MarkNotificationsRead(coordinator)).Methods("POST")

	return router
}

func CreateChatRoutes(router *mux.Router, manager *chat.Manager) *mux.Router {
	router.HandleFunc("/chats", handlers.GetUserChats(manager)).Methods("GET")
	router.HandleFunc("/messages", handlers.SendMessage(manager)).Methods("POST")
	router.HandleFunc("/messages/{chatWith}", handlers.GetMessages(manager)).Methods("GET")
	router.HandleFunc("/messages/{chatWith}/read", handlers.MarkMessagesRead(manager)).Methods("POST")

	return router
}

func CreateSubscriptionRoutes(router *mux.Router, tokens *auth.TokenManager, tracker *presence.Tracker, bus *events.Bus) *mux.Router {
	router.HandleFunc("/subscribe", handlers.Subscribe(tokens, tracker, bus)).Methods("GET")

	return router
}
