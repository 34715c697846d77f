package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/terra-clan/intern-engine/internal/llm"
	"github.com/terra-clan/intern-engine/internal/models"
	"github.com/terra-clan/intern-engine/internal/prompts"
)

// contextWindow is how many recent turns are replayed to the model
const contextWindow = 10

// Store is the slice of the history store the mentor needs
type Store interface {
	Append(ctx context.Context, userID, sessionID string, msg models.ChatMessage) error
	Recent(ctx context.Context, userID, sessionID string, n int64) ([]models.ChatMessage, error)
}

// Mentor answers free-form questions with conversation context from the
// session history. Nothing here touches scoring or tasks.
type Mentor struct {
	history Store
	llm     llm.Client
	now     func() time.Time
}

// NewMentor creates a mentor backed by a history store and model client
func NewMentor(history Store, client llm.Client) *Mentor {
	return &Mentor{
		history: history,
		llm:     client,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Chat sends one user message and returns the mentor's reply. An empty
// sessionID starts a fresh session; the generated ID comes back in the
// response.
func (m *Mentor) Chat(ctx context.Context, userID string, req models.ChatRequest) (*models.ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	recent, err := m.history.Recent(ctx, userID, sessionID, contextWindow)
	if err != nil {
		return nil, err
	}

	reply, err := m.llm.Complete(ctx, llm.Request{
		Messages:    buildMessages(recent, message),
		Temperature: 0.7,
		MaxTokens:   1024,
	})
	if err != nil {
		return nil, fmt.Errorf("mentor call failed: %w", err)
	}

	now := m.now()
	turns := []models.ChatMessage{
		{Role: "user", Content: message, CreatedAt: now},
		{Role: "assistant", Content: reply, CreatedAt: now},
	}
	for _, turn := range turns {
		if err := m.history.Append(ctx, userID, sessionID, turn); err != nil {
			// The reply already exists; losing a log entry is not fatal
			slog.Warn("failed to record chat turn",
				"session_id", sessionID,
				"role", turn.Role,
				"error", err,
			)
			break
		}
	}

	return &models.ChatResponse{SessionID: sessionID, Reply: reply}, nil
}

// buildMessages assembles the completion payload: persona, replayed
// context window, then the incoming message
func buildMessages(recent []models.ChatMessage, message string) []llm.Message {
	msgs := make([]llm.Message, 0, len(recent)+2)
	msgs = append(msgs, llm.Message{Role: "system", Content: prompts.MentorSystemPrompt})

	for _, turn := range recent {
		msgs = append(msgs, llm.Message{Role: turn.Role, Content: turn.Content})
	}

	return append(msgs, llm.Message{Role: "user", Content: message})
}
