// Package chat orchestrates one governed exchange per inbound user message:
// admission first, then the model call, and only after a successful reply the
// conversation log and token meter are updated. A failed model call leaves
// everything but the already-spent admission slot untouched.
package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/jefree-app/backend/internal/conversation"
	"github.com/jefree-app/backend/internal/model/profile"
	"github.com/jefree-app/backend/internal/quota"
	"github.com/jefree-app/backend/internal/service/ai"
)

// contextTurns is how many prior turns each model request carries. The log
// stores more (conversation.DefaultCapacity) so later requests can reach
// slightly further back.
const contextTurns = 5

// freeMenuDaysMax is the longest menu a free-tier caller may request.
const freeMenuDaysMax = 3

var (
	ErrMessageRequired  = errors.New("message is required")
	ErrPremiumRequired  = errors.New("premium subscription required")
	ErrNothingToProcess = errors.New("nothing to process")
)

// UpstreamError marks a failure of the external model call. The caller's
// state is untouched apart from the admission slot already spent, which is
// intentionally not refunded.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return "upstream model failure: " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Model produces assistant replies; satisfied by the ai service.
type Model interface {
	Generate(ctx context.Context, prefs profile.Preferences, history []conversation.Turn, message string) (*schema.Message, error)
	Stream(ctx context.Context, prefs profile.Preferences, history []conversation.Turn, message string) (*schema.StreamReader[*schema.Message], error)
}

// Reply is the outcome of an admitted, answered exchange.
type Reply struct {
	Content string `json:"content"`
	Tokens  int64  `json:"tokens"`
}

// Service composes the quota store, the conversation log and the model into
// the single public contract handlers talk to.
type Service struct {
	model    Model
	quotas   quota.Store
	history  *conversation.Log
	profiles profile.Store
}

// NewService wires the orchestrator with its collaborators.
func NewService(model Model, quotas quota.Store, history *conversation.Log, profiles profile.Store) *Service {
	return &Service{
		model:    model,
		quotas:   quotas,
		history:  history,
		profiles: profiles,
	}
}

// Exchange runs one governed round trip: admission, model call, then the
// post-success accounting.
func (s *Service) Exchange(ctx context.Context, callerID, message string, prefs *profile.Preferences) (Reply, error) {
	if strings.TrimSpace(message) == "" {
		return Reply{}, ErrMessageRequired
	}

	if err := s.quotas.Consume(ctx, callerID); err != nil {
		return Reply{}, err
	}

	effective := s.effectivePreferences(callerID, prefs)
	history := s.history.Context(callerID, contextTurns)

	response, err := s.model.Generate(ctx, effective, history, message)
	if err != nil {
		return Reply{}, &UpstreamError{Err: err}
	}
	if response == nil || response.Content == "" {
		return Reply{}, &UpstreamError{Err: errors.New("empty model response")}
	}

	return s.recordOutcome(ctx, callerID, message, response), nil
}

// ExchangeStream is Exchange with the reply delivered chunk by chunk through
// emit. Accounting still happens only once the full stream arrived.
func (s *Service) ExchangeStream(ctx context.Context, callerID, message string, prefs *profile.Preferences, emit func(chunk string) error) (Reply, error) {
	if strings.TrimSpace(message) == "" {
		return Reply{}, ErrMessageRequired
	}

	if err := s.quotas.Consume(ctx, callerID); err != nil {
		return Reply{}, err
	}

	effective := s.effectivePreferences(callerID, prefs)
	history := s.history.Context(callerID, contextTurns)

	stream, err := s.model.Stream(ctx, effective, history, message)
	if err != nil {
		return Reply{}, &UpstreamError{Err: err}
	}
	defer stream.Close()

	chunks := make([]*schema.Message, 0, 8)
	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return Reply{}, &UpstreamError{Err: recvErr}
		}
		if chunk == nil {
			continue
		}

		chunks = append(chunks, chunk)
		if chunk.Content != "" {
			if err := emit(chunk.Content); err != nil {
				return Reply{}, fmt.Errorf("deliver stream chunk: %w", err)
			}
		}
	}

	if len(chunks) == 0 {
		return Reply{}, &UpstreamError{Err: errors.New("empty model stream")}
	}

	response, err := schema.ConcatMessages(chunks)
	if err != nil {
		return Reply{}, &UpstreamError{Err: err}
	}

	return s.recordOutcome(ctx, callerID, message, response), nil
}

// GenerateMenuPlan asks for a multi-day menu honoring stored preferences.
// Menus beyond three days are a premium feature.
func (s *Service) GenerateMenuPlan(ctx context.Context, callerID string, premium bool, prefs *profile.Preferences) (Reply, error) {
	effective := s.effectivePreferences(callerID, prefs)
	if effective.MenuDays <= 0 {
		effective.MenuDays = freeMenuDaysMax
	}
	if effective.MenuDays > freeMenuDaysMax && !premium {
		return Reply{}, ErrPremiumRequired
	}

	return s.Exchange(ctx, callerID, menuPlanRequest(effective), &effective)
}

// GenerateShoppingList turns a menu plan into an organized shopping list.
func (s *Service) GenerateShoppingList(ctx context.Context, callerID, menuPlan string) (Reply, error) {
	if strings.TrimSpace(menuPlan) == "" {
		return Reply{}, ErrNothingToProcess
	}
	return s.Exchange(ctx, callerID, shoppingListRequest(menuPlan), nil)
}

// EstimateShoppingCost estimates the price range of a shopping list.
func (s *Service) EstimateShoppingCost(ctx context.Context, callerID, shoppingList string) (Reply, error) {
	if strings.TrimSpace(shoppingList) == "" {
		return Reply{}, ErrNothingToProcess
	}
	return s.Exchange(ctx, callerID, costEstimateRequest(shoppingList), nil)
}

// recordOutcome commits the post-success mutations: both turns enter the
// log and the reported token cost is metered. Metering failures are logged
// rather than failing an already-delivered reply.
func (s *Service) recordOutcome(ctx context.Context, callerID, message string, response *schema.Message) Reply {
	s.history.Append(callerID, conversation.Turn{Speaker: conversation.SpeakerUser, Text: message})
	s.history.Append(callerID, conversation.Turn{Speaker: conversation.SpeakerAssistant, Text: response.Content})

	tokens := ai.TokenCost(response)
	if err := s.quotas.RecordTokens(ctx, callerID, tokens); err != nil {
		log.Printf("[chat] failed to record token usage for caller=%s: %v", callerID, err)
	}

	return Reply{Content: response.Content, Tokens: tokens}
}

// effectivePreferences prefers the request's preferences and falls back to
// the caller's stored profile.
func (s *Service) effectivePreferences(callerID string, prefs *profile.Preferences) profile.Preferences {
	if prefs != nil && !prefs.IsZero() {
		return *prefs
	}
	if s.profiles != nil {
		if stored, ok := s.profiles.Get(callerID); ok {
			return stored
		}
	}
	return profile.Preferences{}
}
