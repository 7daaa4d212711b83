package notification

import (
	"context"
	"fmt"
	"time"

	providerRepo "fundi/database/repository/provider"
	"fundi/utils"

	"firebase.google.com/go/v4/messaging"
	"github.com/go-redis/redis/v8"
)

const sendTimeout = 5 * time.Second

// DefaultNotificationService sends FCM pushes. Provider tokens come from the
// directory record; requester tokens are published to the cache by the
// upstream identity service under fcm:user:<id>.
type DefaultNotificationService struct {
	Providers providerRepo.ProviderRepository
	Cache     *redis.Client
}

func NewDefaultNotificationService(providers providerRepo.ProviderRepository, cache *redis.Client) *DefaultNotificationService {
	return &DefaultNotificationService{Providers: providers, Cache: cache}
}

func (s *DefaultNotificationService) NotifyRequester(ctx context.Context, userID, title, body string, data map[string]string) error {
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	token, err := s.Cache.Get(sendCtx, "fcm:user:"+userID).Result()
	if err != nil {
		return fmt.Errorf("NotifyRequester: no FCM token for user %s: %w", userID, err)
	}

	if data == nil {
		data = map[string]string{}
	}
	data["role"] = "user"

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}
	if _, err := utils.FCMClient.Send(sendCtx, msg); err != nil {
		return fmt.Errorf("NotifyRequester: failed to send FCM message: %w", err)
	}
	return nil
}

func (s *DefaultNotificationService) NotifyProvider(ctx context.Context, providerID, title, body string, data map[string]string) error {
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	p, err := s.Providers.GetByID(sendCtx, providerID)
	if err != nil {
		return fmt.Errorf("NotifyProvider: could not find provider %s: %w", providerID, err)
	}
	if p.FCMToken == "" {
		return fmt.Errorf("NotifyProvider: provider %s has no FCM token", providerID)
	}

	if data == nil {
		data = map[string]string{}
	}
	data["role"] = "provider"

	msg := &messaging.Message{
		Token: p.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
	}
	if _, err := utils.FCMClient.Send(sendCtx, msg); err != nil {
		return fmt.Errorf("NotifyProvider: failed to send FCM message: %w", err)
	}
	return nil
}
