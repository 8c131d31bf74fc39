package ai

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/jefree-app/backend/internal/config"
	"github.com/jefree-app/backend/internal/conversation"
	"github.com/jefree-app/backend/internal/model/profile"
)

// Service wraps the meal-planning chat model behind a prompt chain.
type Service struct {
	chatModel model.ChatModel
	cfg       config.AIConfig
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewService creates the AI service from model configuration.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile planner chain: %w", err)
	}

	return &Service{
		chatModel: chatModel,
		cfg:       cfg,
		chain:     runnable,
	}, nil
}

// StreamingEnabled indicates whether SSE streaming output is configured.
func (s *Service) StreamingEnabled() bool {
	return s.cfg.StreamResponse
}

// Generate produces a planner reply for the caller's message given prior
// turns and household preferences.
func (s *Service) Generate(ctx context.Context, prefs profile.Preferences, history []conversation.Turn, message string) (*schema.Message, error) {
	response, err := s.chain.Invoke(ctx, s.chainInput(prefs, history, message))
	if err != nil {
		return nil, fmt.Errorf("failed to run planner chain: %w", err)
	}

	log.Printf("[ai] generated response, length=%d tokens=%d", len(response.Content), TokenCost(response))
	return response, nil
}

// Stream produces the planner reply as a chunk stream.
func (s *Service) Stream(ctx context.Context, prefs profile.Preferences, history []conversation.Turn, message string) (*schema.StreamReader[*schema.Message], error) {
	if !s.StreamingEnabled() {
		return nil, fmt.Errorf("streaming disabled in configuration")
	}

	stream, err := s.chain.Stream(ctx, s.chainInput(prefs, history, message))
	if err != nil {
		return nil, fmt.Errorf("failed to stream planner chain output: %w", err)
	}

	return stream, nil
}

func (s *Service) chainInput(prefs profile.Preferences, history []conversation.Turn, message string) map[string]any {
	return map[string]any{
		"system":  SystemPrompt(prefs),
		"history": historyMessages(history),
		"query":   message,
	}
}

func historyMessages(turns []conversation.Turn) []*schema.Message {
	if len(turns) == 0 {
		return nil
	}

	history := make([]*schema.Message, 0, len(turns))
	for _, turn := range turns {
		switch turn.Speaker {
		case conversation.SpeakerUser:
			history = append(history, schema.UserMessage(turn.Text))
		case conversation.SpeakerAssistant:
			history = append(history, schema.AssistantMessage(turn.Text, nil))
		}
	}

	return history
}

// TokenCost reports the total tokens a response consumed, zero when the
// provider attached no usage metadata.
func TokenCost(msg *schema.Message) int64 {
	if msg == nil || msg.ResponseMeta == nil || msg.ResponseMeta.Usage == nil {
		return 0
	}
	return int64(msg.ResponseMeta.Usage.TotalTokens)
}
