package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nkatz/stylist/internal/domain"
	"github.com/nkatz/stylist/internal/logger"
	"github.com/nkatz/stylist/internal/prompts"
)

// Intent extraction errors. These abort the pipeline run and reach the user.
var (
	ErrEmptyInput         = errors.New("please provide a valid input")
	ErrModelResponseEmpty = errors.New("please provide more details")
	ErrUnparsableResponse = errors.New("could not understand your request, please try being more specific")
	ErrMissingField       = errors.New("missing required field")
)

// IntentService classifies a free-text message into a structured intent
// using a single chat completion call with a fixed output-schema contract.
type IntentService struct {
	chat *chatClient
	now  func() time.Time
}

// NewIntentService creates a new intent extraction service.
// Parameters:
//   - cfg: LLM configuration including model, API key, and base URL.
//
// Returns:
//   - *IntentService: initialized intent extractor.
func NewIntentService(cfg *LLMConfig) *IntentService {
	return &IntentService{
		chat: newChatClient(cfg),
		now:  time.Now,
	}
}

// Extract classifies the message into one of the recognized intent kinds.
// The extractor performs no date math itself; relative date phrases are
// resolved to absolute dates by the model per the prompt's rules, and only
// the presence of required fields is validated post-parse.
func (s *IntentService) Extract(ctx context.Context, message string) (*domain.Intent, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyInput
	}

	today := s.now().Format("2006-01-02")
	content, err := s.chat.Complete(ctx, prompts.IntentSystemPrompt(today), message)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrModelResponseEmpty
	}

	intent, err := parseIntent(content)
	if err != nil {
		logger.CtxWarn(ctx, "Failed to parse intent response: %v, content=%q", err, content)
		return nil, ErrUnparsableResponse
	}

	if missing := intent.MissingFields(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
	}

	return intent, nil
}

// parseIntent applies a strict-then-lenient two-stage parse: strict
// unmarshal first, then one bounded repair pass (object extraction plus
// trailing-comma removal) and a single re-attempt.
func parseIntent(content string) (*domain.Intent, error) {
	var intent domain.Intent
	if err := json.Unmarshal([]byte(content), &intent); err == nil {
		return &intent, nil
	}

	repaired := extractObject(content)
	if repaired == "" {
		return nil, fmt.Errorf("no JSON object found in response")
	}
	repaired = stripTrailingCommas(repaired)

	if err := json.Unmarshal([]byte(repaired), &intent); err != nil {
		return nil, fmt.Errorf("failed to parse repaired JSON: %w", err)
	}
	return &intent, nil
}
