package services

import (
	"context"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// TokenStore provides the registered device tokens for a user and lets the
// service drop tokens FCM reports as dead.
type TokenStore interface {
	DeviceTokens(ctx context.Context, userID int) ([]string, error)
	DeleteDeviceToken(ctx context.Context, token string) error
}

// PushService mirrors in-app notifications to a user's devices over FCM.
// Delivery is best-effort; failures are logged and never surfaced to the
// action that triggered the push.
type PushService struct {
	client *messaging.Client
	tokens TokenStore
}

func NewPushService(ctx context.Context, credentialsPath string, tokens TokenStore) (*PushService, error) {
	opt := option.WithCredentialsFile(credentialsPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, err
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, err
	}
	log.Println("[FCM] messaging client initialized")
	return &PushService{client: client, tokens: tokens}, nil
}

// NotifyUser sends a multicast push to every device registered for the user.
func (p *PushService) NotifyUser(userID int, title, body string, data map[string]string) {
	ctx := context.Background()

	tokens, err := p.tokens.DeviceTokens(ctx, userID)
	if err != nil {
		log.Printf("[FCM] fetching tokens for user %d: %v", userID, err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	message := &messaging.MulticastMessage{
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data:   data,
		Tokens: tokens,
	}

	response, err := p.client.SendEachForMulticast(ctx, message)
	if err != nil {
		log.Printf("[FCM] multicast to user %d failed: %v", userID, err)
		return
	}

	if response.FailureCount > 0 {
		for i, resp := range response.Responses {
			if resp.Success {
				continue
			}
			log.Printf("[FCM] token error for user %d: %v", userID, resp.Error)
			if messaging.IsUnregistered(resp.Error) {
				if err := p.tokens.DeleteDeviceToken(ctx, tokens[i]); err != nil {
					log.Printf("[FCM] deleting dead token: %v", err)
				}
			}
		}
	}

	log.Printf("[FCM] user %d | success=%d failure=%d",
		userID, response.SuccessCount, response.FailureCount)
}
