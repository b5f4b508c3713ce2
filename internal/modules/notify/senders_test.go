package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestPhoneTopic(t *testing.T) {
	cases := map[string]string{
		"555-1234":        "phone_5551234",
		"+1 (617) 555-01": "phone_161755501",
		"":                "",
		"none":            "",
	}
	for in, want := range cases {
		if got := PhoneTopic(in); got != want {
			t.Errorf("PhoneTopic(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRedisQueueSender(t *testing.T) {
	redisAddr := os.Getenv("LIMO_REDIS_ADDR")
	if redisAddr == "" {
		t.Skip("LIMO_REDIS_ADDR not set; skipping integration test")
	}
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer rdb.Close()

	ctx := context.Background()
	key := fmt.Sprintf("notify:test:%d", time.Now().UnixNano())
	defer rdb.Del(ctx, key)

	s := NewRedisQueueSender(rdb, key)
	if err := s.Send(ctx, "555-1234", "hello"); err != nil {
		t.Fatalf("send: %v", err)
	}

	raw, err := rdb.LPop(ctx, key).Result()
	if err != nil {
		t.Fatalf("lpop: %v", err)
	}
	var got queuedSMS
	if err := json.Unmarshal([]byte(raw), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Phone != "555-1234" || got.Message != "hello" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}
