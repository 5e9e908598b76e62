package fcm

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"
	"github.com/mapmarket/reaction-service/internal/domain"
	"github.com/mapmarket/reaction-service/internal/platform/logger"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// FCM caps a single multicast at 500 tokens.
const multicastLimit = 500

// Client sends multicast push payloads through Firebase Cloud Messaging and
// deletes auth credentials for the account sweep. Both sit on the same
// Firebase app handle, constructed once at process start and injected where
// needed.
type Client struct {
	messaging *messaging.Client
	auth      *auth.Client
	logger    *logger.Logger
}

func NewClient(ctx context.Context, credentialsFile string, log *logger.Logger) (*Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	msgClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize fcm messaging client: %w", err)
	}
	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase auth client: %w", err)
	}

	return &Client{
		messaging: msgClient,
		auth:      authClient,
		logger:    log.Named("FCMClient"),
	}, nil
}

// SendMulticast fans one payload out to the given tokens, batching at the
// transport limit. Per-token rejections (stale or unregistered tokens) are
// logged and counted, never surfaced as an error; pruning stale tokens is a
// separate concern that does not live here.
func (c *Client) SendMulticast(ctx context.Context, tokens []string, msg domain.PushMessage) (int, error) {
	accepted := 0
	for start := 0; start < len(tokens); start += multicastLimit {
		end := start + multicastLimit
		if end > len(tokens) {
			end = len(tokens)
		}
		batch := tokens[start:end]

		payload := &messaging.MulticastMessage{
			Tokens: batch,
			Notification: &messaging.Notification{
				Title: msg.Title,
				Body:  msg.Body,
			},
			Data: msg.Data,
			Webpush: &messaging.WebpushConfig{
				Notification: &messaging.WebpushNotification{
					Icon: msg.Icon,
				},
				FCMOptions: &messaging.WebpushFCMOptions{
					Link: msg.Link,
				},
			},
		}

		resp, err := c.messaging.SendEachForMulticast(ctx, payload)
		if err != nil {
			// Transport-level failure for the whole batch. Log and keep
			// going: remaining batches may still deliver.
			c.logger.Error("FCM multicast failed", zap.Error(err), zap.Int("tokens", len(batch)))
			continue
		}
		accepted += resp.SuccessCount
		if resp.FailureCount > 0 {
			c.logger.Warn("FCM multicast partially failed",
				zap.Int("success", resp.SuccessCount),
				zap.Int("failure", resp.FailureCount))
		}
	}
	return accepted, nil
}

// DeleteAccount removes the authentication credential for a uid.
func (c *Client) DeleteAccount(ctx context.Context, uid string) error {
	if err := c.auth.DeleteUser(ctx, uid); err != nil {
		return fmt.Errorf("failed to delete auth user %s: %w", uid, err)
	}
	return nil
}
