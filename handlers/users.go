package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"pulsefeed.dev/project-pulsefeed/auth"
	"pulsefeed.dev/project-pulsefeed/database"
)

const defaultPicture = "https://res.cloudinary.com/dodnxrlj6/image/upload/v1740730369/default_jc14qo.jpg"

func Signup(store *database.Store, tokens *auth.TokenManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			FirstName string `json:"firstName"`
			LastName  string `json:"lastName"`
			Email     string `json:"email"`
			Password  string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if req.FirstName == "" || req.Email == "" || req.Password == "" {
			http.Error(w, "firstName, email, and password are required", http.StatusBadRequest)
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			http.Error(w, "Failed to hash password", http.StatusInternalServerError)
			return
		}

		user, err := store.CreateUser(r.Context(), req.FirstName, req.LastName, req.Email, hash, defaultPicture)
		if err != nil {
			http.Error(w, "Failed to create user", http.StatusInternalServerError)
			log.Println("Signup error:", err)
			return
		}

		token, err := tokens.Issue(auth.Identity{ID: user.ID, Email: user.Email})
		if err != nil {
			http.Error(w, "Failed to issue token", http.StatusInternalServerError)
			log.Println("Signup token error:", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"token": token})
	}
}

func Login(store *database.Store, tokens *auth.TokenManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		user, err := store.UserByEmail(r.Context(), req.Email)
		if err != nil {
			http.Error(w, "Database query failed", http.StatusInternalServerError)
			log.Println("Login error:", err)
			return
		}
		if user == nil || auth.CheckPassword(user.Password, req.Password) != nil {
			http.Error(w, "Invalid email or password", http.StatusUnauthorized)
			return
		}

		token, err := tokens.Issue(auth.Identity{ID: user.ID, Email: user.Email})
		if err != nil {
			http.Error(w, "Failed to issue token", http.StatusInternalServerError)
			log.Println("Login token error:", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"token": token})
	}
}

// GetNotifications returns the caller's notification rows, oldest first.
func GetNotifications(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := requireIdentity(w, r)
		if !ok {
			return
		}

		notifications, err := store.Notifications(r.Context(), identity.ID)
		if err != nil {
			http.Error(w, "Failed to fetch notifications", http.StatusInternalServerError)
			log.Println("GetNotifications error:", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(notifications)
	}
}

// RegisterDeviceToken stores an FCM device token for push mirroring.
func RegisterDeviceToken(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := requireIdentity(w, r)
		if !ok {
			return
		}

		var req struct {
			Token string `json:"token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.Token == "" {
			http.Error(w, "Device token is required", http.StatusBadRequest)
			return
		}

		if err := store.RegisterDeviceToken(r.Context(), identity.ID, req.Token); err != nil {
			http.Error(w, "Failed to register device token", http.StatusInternalServerError)
			log.Println("RegisterDeviceToken error:", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"message": "Device token registered successfully",
		})
	}
}
