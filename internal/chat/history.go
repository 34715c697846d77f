package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/terra-clan/intern-engine/internal/models"
)

const (
	sessionsKeyPrefix = "mentor:sessions:"
	messagesKeyPrefix = "mentor:messages:"

	titleMaxLen = 60
)

// History stores mentor conversations in Redis: per-user session index
// as a sorted set scored by last activity, per-session message log as a
// list of JSON entries. The log is append-only; nothing edits past turns.
type History struct {
	client *redis.Client
}

// NewHistory connects to Redis and verifies the connection
func NewHistory(ctx context.Context, address, password string, db int) (*History, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &History{client: client}, nil
}

func sessionsKey(userID string) string {
	return sessionsKeyPrefix + userID
}

func messagesKey(userID, sessionID string) string {
	return messagesKeyPrefix + userID + ":" + sessionID
}

// Append records one turn and bumps the session's activity score
func (h *History) Append(ctx context.Context, userID, sessionID string, msg models.ChatMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal chat message: %w", err)
	}

	pipe := h.client.TxPipeline()
	pipe.RPush(ctx, messagesKey(userID, sessionID), data)
	pipe.ZAdd(ctx, sessionsKey(userID), redis.Z{
		Score:  float64(msg.CreatedAt.Unix()),
		Member: sessionID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append chat message: %w", err)
	}

	return nil
}

// Recent returns up to n most recent turns in chronological order
func (h *History) Recent(ctx context.Context, userID, sessionID string, n int64) ([]models.ChatMessage, error) {
	return h.readRange(ctx, userID, sessionID, -n, -1)
}

// Messages returns the full session log in chronological order
func (h *History) Messages(ctx context.Context, userID, sessionID string) ([]models.ChatMessage, error) {
	return h.readRange(ctx, userID, sessionID, 0, -1)
}

func (h *History) readRange(ctx context.Context, userID, sessionID string, start, stop int64) ([]models.ChatMessage, error) {
	entries, err := h.client.LRange(ctx, messagesKey(userID, sessionID), start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read chat history: %w", err)
	}

	messages := make([]models.ChatMessage, 0, len(entries))
	for _, entry := range entries {
		var msg models.ChatMessage
		if err := json.Unmarshal([]byte(entry), &msg); err != nil {
			slog.Warn("corrupt chat entry skipped",
				"session_id", sessionID,
				"error", err,
			)
			continue
		}
		messages = append(messages, msg)
	}

	return messages, nil
}

// ListSessions returns the user's sessions, most recently active first
func (h *History) ListSessions(ctx context.Context, userID string) ([]models.ChatSession, error) {
	entries, err := h.client.ZRevRangeWithScores(ctx, sessionsKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list chat sessions: %w", err)
	}

	sessions := make([]models.ChatSession, 0, len(entries))
	for _, entry := range entries {
		sessionID, ok := entry.Member.(string)
		if !ok {
			continue
		}

		key := messagesKey(userID, sessionID)

		count, err := h.client.LLen(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to count session messages: %w", err)
		}

		title := ""
		if first, err := h.client.LIndex(ctx, key, 0).Result(); err == nil {
			var msg models.ChatMessage
			if json.Unmarshal([]byte(first), &msg) == nil {
				title = SessionTitle(msg.Content)
			}
		}

		sessions = append(sessions, models.ChatSession{
			ID:           sessionID,
			Title:        title,
			MessageCount: count,
			LastActivity: time.Unix(int64(entry.Score), 0).UTC(),
		})
	}

	return sessions, nil
}

// DeleteSession removes a session's log and index entry. Returns false
// when the session did not exist.
func (h *History) DeleteSession(ctx context.Context, userID, sessionID string) (bool, error) {
	removed, err := h.client.ZRem(ctx, sessionsKey(userID), sessionID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to remove session from index: %w", err)
	}

	if err := h.client.Del(ctx, messagesKey(userID, sessionID)).Err(); err != nil {
		return false, fmt.Errorf("failed to delete session log: %w", err)
	}

	return removed > 0, nil
}

// PruneStale deletes sessions whose last activity predates cutoff,
// across all users. Returns the number of sessions removed.
func (h *History) PruneStale(ctx context.Context, cutoff time.Time) (int, error) {
	var pruned int
	var cursor uint64
	maxScore := strconv.FormatInt(cutoff.Unix(), 10)

	for {
		keys, nextCursor, err := h.client.Scan(ctx, cursor, sessionsKeyPrefix+"*", 100).Result()
		if err != nil {
			return pruned, fmt.Errorf("failed to scan session indexes: %w", err)
		}

		for _, indexKey := range keys {
			userID := strings.TrimPrefix(indexKey, sessionsKeyPrefix)

			stale, err := h.client.ZRangeByScore(ctx, indexKey, &redis.ZRangeBy{
				Min: "-inf",
				Max: maxScore,
			}).Result()
			if err != nil {
				return pruned, fmt.Errorf("failed to find stale sessions: %w", err)
			}

			for _, sessionID := range stale {
				if _, err := h.DeleteSession(ctx, userID, sessionID); err != nil {
					return pruned, err
				}
				pruned++
			}
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return pruned, nil
}

// Ping checks Redis connectivity
func (h *History) Ping(ctx context.Context) error {
	return h.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (h *History) Close() error {
	return h.client.Close()
}

// SessionTitle derives a display title from the opening message
func SessionTitle(content string) string {
	title := strings.TrimSpace(content)
	if idx := strings.IndexByte(title, '\n'); idx >= 0 {
		title = title[:idx]
	}

	runes := []rune(title)
	if len(runes) > titleMaxLen {
		return string(runes[:titleMaxLen]) + "..."
	}
	return title
}
