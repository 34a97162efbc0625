package utils

import (
	"context"
	"log"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FCMSender delivers push notifications through Firebase Cloud Messaging.
// When the service account file is missing the sender stays disabled and
// every Send is a silent no-op.
type FCMSender struct {
	client *messaging.Client
	logger *log.Logger
}

func NewFCMSender(ctx context.Context, credentialsFile string, logger *log.Logger) *FCMSender {
	if credentialsFile == "" {
		logger.Println("Warning: no Firebase credentials configured. Push notifications will not work.")
		return &FCMSender{logger: logger}
	}
	if _, err := os.Stat(credentialsFile); err != nil {
		logger.Printf("Warning: %s not found. Push notifications will not work.", credentialsFile)
		return &FCMSender{logger: logger}
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		logger.Printf("Firebase init failed: %v. Push notifications will not work.", err)
		return &FCMSender{logger: logger}
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		logger.Printf("Firebase messaging init failed: %v. Push notifications will not work.", err)
		return &FCMSender{logger: logger}
	}

	logger.Println("Firebase Admin initialized")
	return &FCMSender{client: client, logger: logger}
}

// Enabled reports whether the backing channel is configured.
func (f *FCMSender) Enabled() bool { return f.client != nil }

// Send delivers one notification. No-op when the sender is disabled or the
// token is empty.
func (f *FCMSender) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	if f.client == nil || token == "" {
		return nil
	}

	payload := make(map[string]string, len(data)+1)
	for k, v := range data {
		payload[k] = v
	}
	payload["click_action"] = "FLUTTER_NOTIFICATION_CLICK"

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: payload,
	}

	if _, err := f.client.Send(ctx, msg); err != nil {
		return err
	}
	f.logger.Printf("push notification sent")
	return nil
}
