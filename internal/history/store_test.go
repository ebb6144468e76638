package history

import (
	"context"
	"net"
	"os"
	"strconv"
	"testing"
	"time"

	"promptdesk/internal/config"
	"promptdesk/internal/redis"
)

func TestStoreDegradesWithoutClient(t *testing.T) {
	store := NewStore(nil, "test_app")
	if store.Available() {
		t.Fatalf("store without client must report unavailable")
	}
	ctx := context.Background()
	if err := store.Append(ctx, 1, "prompt", "answer"); err != nil {
		t.Fatalf("append must be a no-op, got %v", err)
	}
	entries, err := store.Recent(ctx, 1, 10)
	if err != nil {
		t.Fatalf("recent must return empty, got %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}

func TestStoreRoundTrip(t *testing.T) {
	client, cleanup := newRedisClient(t)
	defer cleanup()

	store := NewStore(client, "test_app")
	ctx := context.Background()
	userID := int64(42)

	exchanges := []struct{ prompt, answer string }{
		{"first question", "first answer"},
		{"second question", "- bullet\n- list"},
		{"third question", "final answer 🎉"},
	}
	for _, ex := range exchanges {
		if err := store.Append(ctx, userID, ex.prompt, ex.answer); err != nil {
			t.Fatalf("append: %v", err)
		}
		// distinct timestamps keep ordering deterministic
		time.Sleep(5 * time.Millisecond)
	}

	entries, err := store.Recent(ctx, userID, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != len(exchanges) {
		t.Fatalf("expected %d entries, got %d", len(exchanges), len(entries))
	}
	// newest first, content byte-for-byte
	for i, entry := range entries {
		want := exchanges[len(exchanges)-1-i]
		if entry.Prompt != want.prompt || entry.Answer != want.answer {
			t.Fatalf("entry %d = %+v, want %+v", i, entry, want)
		}
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Timestamp.After(entries[i-1].Timestamp) {
			t.Fatalf("entries not ordered newest first")
		}
	}

	// limit caps the page
	limited, err := store.Recent(ctx, userID, 2)
	if err != nil {
		t.Fatalf("recent limited: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(limited))
	}
}

func TestStoreIsolatesUsers(t *testing.T) {
	client, cleanup := newRedisClient(t)
	defer cleanup()

	store := NewStore(client, "test_app")
	ctx := context.Background()
	if err := store.Append(ctx, 7, "mine", "yes"); err != nil {
		t.Fatalf("append: %v", err)
	}
	entries, err := store.Recent(ctx, 8, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("user 8 sees user 7's history")
	}
}

func newRedisClient(t *testing.T) (*redis.Client, func()) {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis-backed history tests")
	}
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("split host port: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("atoi port: %v", err)
	}
	db := 0
	if v := os.Getenv("TEST_REDIS_DB"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			db = parsed
		}
	}
	cfg := &config.Config{
		Redis: config.RedisConfig{Host: host, Port: port, DB: db},
	}
	client, err := redis.NewRedisClient(cfg)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if raw := client.Raw(); raw != nil {
		if err := raw.FlushDB(ctx).Err(); err != nil {
			t.Fatalf("flush db: %v", err)
		}
	}
	return client, func() { client.Close() }
}
