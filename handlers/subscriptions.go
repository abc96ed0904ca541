package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"pulsefeed.dev/project-pulsefeed/auth"
	"pulsefeed.dev/project-pulsefeed/events"
	"pulsefeed.dev/project-pulsefeed/presence"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const pingInterval = 30 * time.Second

// Subscribe upgrades the connection to a websocket and relays bus events to
// the caller. Connecting marks the user online; closing the socket starts the
// offline grace window. Each frame is {"topic": ..., "payload": ...}.
func Subscribe(tokens *auth.TokenManager, tracker *presence.Tracker, bus *events.Bus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("token")
		if raw == "" {
			raw = r.Header.Get("token")
		}
		identity, err := tokens.Verify(raw)
		if err != nil {
			http.Error(w, "User is not authenticated", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("Subscribe upgrade error: %v", err)
			return
		}

		if err := tracker.SetPresence(r.Context(), identity.ID, true); err != nil {
			log.Printf("Subscribe presence error: %v", err)
		}

		sub := bus.Subscribe(
			events.TopicPresence,
			events.TopicPostLiked,
			events.TopicFollowUpdated(identity.ID),
			events.TopicMessages(identity.ID),
			events.TopicNotificationsRead(identity.ID),
		)

		go subscriptionWriter(conn, sub)

		// Reader loop: the client sends nothing meaningful, but reading is
		// how we learn the socket closed.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}

		bus.Unsubscribe(sub)
		conn.Close()
		if err := tracker.SetPresence(r.Context(), identity.ID, false); err != nil {
			log.Printf("Subscribe disconnect presence error: %v", err)
		}
	}
}

func subscriptionWriter(conn *websocket.Conn, sub *events.Subscription) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
