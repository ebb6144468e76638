package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"promptdesk/internal/models"
	"promptdesk/internal/redis"
)

// DefaultLimit is how many entries a history page shows.
const DefaultLimit = 10

// Store appends and reads per-user prompt/answer history in redis.
// A Store built without a client degrades to no-op writes and empty reads
// so the rest of the pipeline keeps working without history.
type Store struct {
	client    *redis.Client
	namespace string
}

// NewStore builds the history adapter. client may be nil.
func NewStore(client *redis.Client, namespace string) *Store {
	if namespace == "" {
		namespace = "default_app"
	}
	return &Store{client: client, namespace: namespace}
}

// Available reports whether the backing store is reachable in principle.
func (s *Store) Available() bool {
	return s != nil && s.client != nil
}

func (s *Store) key(userID int64) string {
	return fmt.Sprintf("artifacts:%s:users:%d:search_history", s.namespace, userID)
}

// Append writes one prompt/answer exchange with a server-assigned timestamp.
func (s *Store) Append(ctx context.Context, userID int64, prompt, answer string) error {
	if !s.Available() {
		log.Printf("history store unavailable, skipping append for user %d", userID)
		return nil
	}
	if userID <= 0 {
		return errors.New("invalid user id")
	}
	if strings.TrimSpace(answer) == "" {
		return errors.New("answer cannot be empty")
	}
	now := time.Now().UTC()
	entry := models.HistoryEntry{
		Prompt:    prompt,
		Answer:    answer,
		Timestamp: now,
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal history entry: %w", err)
	}
	if err := s.client.ZAdd(ctx, s.key(userID), float64(now.UnixNano()), payload); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// Recent returns up to limit entries for the user, newest first.
func (s *Store) Recent(ctx context.Context, userID int64, limit int) ([]models.HistoryEntry, error) {
	if !s.Available() {
		return nil, nil
	}
	if userID <= 0 {
		return nil, errors.New("invalid user id")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	raw, err := s.client.ZRevRange(ctx, s.key(userID), 0, int64(limit-1))
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	entries := make([]models.HistoryEntry, 0, len(raw))
	for _, item := range raw {
		var entry models.HistoryEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			log.Printf("history decode failed for user %d: %v", userID, err)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
