// README: SMS transport adapters: console log, Redis hand-off queue, and Firebase Cloud Messaging.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/redis/go-redis/v9"
)

// LogSender prints messages instead of sending them. Used for local runs.
type LogSender struct {
	log *slog.Logger
}

func NewLogSender(log *slog.Logger) *LogSender {
	if log == nil {
		log = slog.Default()
	}
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, phone, message string) error {
	s.log.Info("sms", "to", phone, "message", message)
	return nil
}

type queuedSMS struct {
	Phone    string    `json:"phone"`
	Message  string    `json:"message"`
	QueuedAt time.Time `json:"queued_at"`
}

// RedisQueueSender pushes messages onto a Redis list drained by the SMS gateway worker.
type RedisQueueSender struct {
	redis *redis.Client
	key   string
}

func NewRedisQueueSender(rdb *redis.Client, key string) *RedisQueueSender {
	if key == "" {
		key = "notify:sms"
	}
	return &RedisQueueSender{redis: rdb, key: key}
}

func (s *RedisQueueSender) Send(ctx context.Context, phone, message string) error {
	body, err := json.Marshal(queuedSMS{Phone: phone, Message: message, QueuedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	if err := s.redis.RPush(ctx, s.key, body).Err(); err != nil {
		return fmt.Errorf("rpush %s: %w", s.key, err)
	}
	return nil
}

type fcmClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMSender delivers to the FCM topic the mobile apps subscribe to for a phone number.
type FCMSender struct {
	client fcmClient
	brand  string
}

func NewFCMSender(client *messaging.Client, brand string) *FCMSender {
	return &FCMSender{client: client, brand: brand}
}

func (s *FCMSender) Send(ctx context.Context, phone, message string) error {
	topic := PhoneTopic(phone)
	if topic == "" {
		return fmt.Errorf("phone %q has no digits", phone)
	}
	msg := &messaging.Message{
		Topic: topic,
		Data: map[string]string{
			"type":    "sms",
			"message": message,
		},
		Notification: &messaging.Notification{
			Title: s.brand,
			Body:  message,
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
	}
	if _, err := s.client.Send(ctx, msg); err != nil {
		return fmt.Errorf("sending FCM to topic %s: %w", topic, err)
	}
	return nil
}

// PhoneTopic maps "555-1234" to "phone_5551234".
func PhoneTopic(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return "phone_" + b.String()
}
