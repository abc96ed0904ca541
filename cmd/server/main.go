package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"pulsefeed.dev/project-pulsefeed/auth"
	"pulsefeed.dev/project-pulsefeed/chat"
	"pulsefeed.dev/project-pulsefeed/database"
	"pulsefeed.dev/project-pulsefeed/events"
	"pulsefeed.dev/project-pulsefeed/handlers"
	"pulsefeed.dev/project-pulsefeed/presence"
	"pulsefeed.dev/project-pulsefeed/routes"
	"pulsefeed.dev/project-pulsefeed/services"
	"pulsefeed.dev/project-pulsefeed/social"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	secret := os.Getenv("JWT_SECRET_KEY")
	if secret == "" {
		log.Fatal("JWT_SECRET_KEY not set")
	}

	db, err := database.ConnectDB()
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}
	defer db.Close()

	if err := database.EnsureSchema(db); err != nil {
		log.Fatal("Schema setup failed:", err)
	}

	store := database.NewStore(db)
	tokens := auth.NewTokenManager(secret)
	bus := events.NewBus()
	defer bus.Close()

	grace := presence.DefaultGrace
	if raw := os.Getenv("PRESENCE_GRACE_SECONDS"); raw != "" {
		if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
			grace = time.Duration(seconds) * time.Second
		}
	}
	tracker := presence.NewTracker(store, bus, grace)
	defer tracker.Stop()

	var pusher social.Pusher
	if credentials := os.Getenv("FIREBASE_CREDENTIALS_PATH"); credentials != "" {
		push, err := services.NewPushService(context.Background(), credentials, store)
		if err != nil {
			log.Printf("Push service init failed, continuing without push: %v", err)
		} else {
			pusher = push
		}
	}

	coordinator := social.NewCoordinator(store, bus, pusher)
	manager := chat.NewManager(store, bus)

	router := mux.NewRouter()
	router.Use(handlers.AuthMiddleware(tokens))
	routes.CreateUserRoutes(router, store, tokens)
	routes.CreateSocialRoutes(router, coordinator, store)
	routes.CreateChatRoutes(router, manager)
	routes.CreateSubscriptionRoutes(router, tokens, tracker, bus)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server running at http://localhost:%s", port)
	log.Fatal(http.ListenAndServe(":"+port, router))
}
