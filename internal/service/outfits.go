package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nkatz/stylist/internal/domain"
	"github.com/nkatz/stylist/internal/logger"
	"github.com/nkatz/stylist/internal/prompts"
)

// outfitBatchSize is the number of outfits requested per generation call.
const outfitBatchSize = 4

// StyleContext is the resolved styling input for one generation call.
// Exactly one of Weather, Event, or (Kind, Reference) is set.
type StyleContext struct {
	Weather   *domain.WeatherSnapshot
	Event     string
	Kind      domain.IntentKind // thematic kinds only
	Reference string
}

// OutfitService generates a batch of outfit descriptions from a style
// context via one chat completion call. Generation is best-effort: any
// unsalvageable model output collapses to an empty list, never an error.
type OutfitService struct {
	chat *chatClient
}

// NewOutfitService creates a new outfit generator.
// Parameters:
//   - cfg: LLM configuration including model, API key, and base URL.
//
// Returns:
//   - *OutfitService: initialized outfit generator.
func NewOutfitService(cfg *LLMConfig) *OutfitService {
	return &OutfitService{chat: newChatClient(cfg)}
}

// Generate returns 0 to 4 outfits for the given context. Every returned
// outfit has all four descriptive fields non-empty and a fresh ID.
func (s *OutfitService) Generate(ctx context.Context, sc StyleContext) []domain.Outfit {
	prompt := s.directive(sc) + prompts.OutfitFormatInstructions

	content, err := s.chat.Complete(ctx, prompts.OutfitSystemPrompt, prompt)
	if err != nil {
		logger.CtxWarn(ctx, "Outfit generation call failed: %v", err)
		return nil
	}
	if strings.TrimSpace(content) == "" {
		return nil
	}

	outfits := parseOutfits(content)
	if len(outfits) == 0 {
		logger.CtxWarn(ctx, "Outfit generation yielded no usable outfits")
	}
	return outfits
}

// directive builds the kind-specific natural-language framing.
func (s *OutfitService) directive(sc StyleContext) string {
	switch {
	case sc.Weather != nil:
		temp := math.Round(sc.Weather.Temperature)
		season := seasonOf(forecastMonth(sc.Weather.Date))
		return fmt.Sprintf(
			"Design %d fashion-forward outfits for %s. Temperature: %.0f°F (%s), Condition: %s, Season: %s.",
			outfitBatchSize, sc.Weather.Location, temp, TemperatureCategory(temp),
			sc.Weather.Description, season)
	case sc.Event != "":
		return fmt.Sprintf("Design %d trend-aware outfits suitable for attending a %s.", outfitBatchSize, sc.Event)
	case sc.Kind == domain.IntentLyrics:
		return fmt.Sprintf("Design %d outfits inspired by the emotion, tone, and imagery of the lyrics: %q.", outfitBatchSize, sc.Reference)
	case sc.Kind == domain.IntentMovie:
		return fmt.Sprintf("Design %d fashion looks inspired by the visual mood and style of the movie: %q.", outfitBatchSize, sc.Reference)
	case sc.Kind == domain.IntentAnime:
		return fmt.Sprintf("Design %d stylish outfits that channel the characters or aesthetic from the anime: %q.", outfitBatchSize, sc.Reference)
	case sc.Kind == domain.IntentSports:
		return fmt.Sprintf("Design %d modern fan-inspired outfits for the occasion: %q.", outfitBatchSize, sc.Reference)
	case sc.Kind == domain.IntentCulture:
		return fmt.Sprintf("Design %d fashion outfits based on the cultural vibe of: %q.", outfitBatchSize, sc.Reference)
	default:
		return fmt.Sprintf("Design %d versatile and stylish outfits based on recent fashion trends.", outfitBatchSize)
	}
}

// rawOutfit mirrors the per-outfit shape the model is asked to emit.
type rawOutfit struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	SearchQuery string `json:"searchQuery"`
	ImagePrompt string `json:"imagePrompt"`
}

// parseOutfits applies a strict-then-lenient parse to the model output and
// silently discards elements missing any of the four required fields. A
// malformed element never corrupts its siblings.
func parseOutfits(content string) []domain.Outfit {
	var raw []rawOutfit
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		repaired := extractArray(content)
		if repaired == "" {
			return nil
		}
		repaired = stripTrailingCommas(repaired)
		if err := json.Unmarshal([]byte(repaired), &raw); err != nil {
			return nil
		}
	}

	outfits := make([]domain.Outfit, 0, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r.Name) == "" ||
			strings.TrimSpace(r.Description) == "" ||
			strings.TrimSpace(r.SearchQuery) == "" ||
			strings.TrimSpace(r.ImagePrompt) == "" {
			continue
		}
		outfits = append(outfits, domain.Outfit{
			ID:          uuid.New().String(),
			Name:        r.Name,
			Description: r.Description,
			SearchQuery: r.SearchQuery,
			ImagePrompt: r.ImagePrompt,
		})
		if len(outfits) == outfitBatchSize {
			break
		}
	}
	return outfits
}

// TemperatureCategory buckets a Fahrenheit temperature into one of seven
// named ranges. Boundaries are inclusive on the lower bound of each range.
func TemperatureCategory(temp float64) string {
	switch {
	case temp >= 85:
		return "Very Hot"
	case temp >= 75:
		return "Hot"
	case temp >= 65:
		return "Warm"
	case temp >= 55:
		return "Mild"
	case temp >= 45:
		return "Cool"
	case temp >= 35:
		return "Cold"
	default:
		return "Very Cold"
	}
}

// Season derives the season name from a calendar month.
func Season(month time.Month) string {
	return seasonOf(month)
}

func seasonOf(month time.Month) string {
	switch {
	case month >= time.March && month <= time.May:
		return "Spring"
	case month >= time.June && month <= time.August:
		return "Summer"
	case month >= time.September && month <= time.November:
		return "Fall"
	default:
		return "Winter"
	}
}

// forecastMonth extracts the month from a yyyy-mm-dd forecast date,
// falling back to the current month when the date is malformed.
func forecastMonth(date string) time.Month {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Now().Month()
	}
	return t.Month()
}
