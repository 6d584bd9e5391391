package prompts

import "fmt"

// ============================================================================
// Shared Lexicons
// ============================================================================

// EventCategories is the enumerated taxonomy of occasions the intent
// extractor may label an event message with.
var EventCategories = []string{
	"wedding", "baby shower", "birthday party", "graduation", "job interview",
	"date night", "prom", "gala", "cocktail party", "concert", "music festival",
	"beach party", "brunch", "business meeting", "holiday party", "casual outing",
}

// ============================================================================
// Intent Extraction Prompts
// ============================================================================

// intentSystemPrompt enumerates the recognized intent kinds and the JSON
// shape expected per kind. The current date is injected so the model can
// resolve relative date phrases to absolute calendar dates.
const intentSystemPrompt = `You are a fashion AI assistant. Extract one of the following from the user's message: travel information, event type, song lyrics, movie/anime inspiration, sports fan theme, or cultural occasion. Return it as a single JSON object and nothing else.

Today's date is %s.

Recognized types and their JSON shapes:
- travel:  {"type":"travel","destination":"<city>","date":"<yyyy-mm-dd>"}
- event:   {"type":"event","event":"<category>"} where <category> is one of: %s
- lyrics:  {"type":"lyrics","reference":"<the quoted lyrics>"}
- movie:   {"type":"movie","reference":"<movie title>"}
- anime:   {"type":"anime","reference":"<anime title>"}
- sports:  {"type":"sports","reference":"<team or sporting occasion>"}
- culture: {"type":"culture","reference":"<cultural occasion or vibe>"}

Date resolution rules (travel only):
- Resolve relative phrases to absolute dates: "tomorrow", "next week" (7 days out), "this weekend" (nearest Saturday).
- Seasons map to fixed mid-season dates: spring -> April 15, summer -> July 15, fall -> October 15, winter -> January 15.
- A month without a day defaults to the 15th of that month.
- When no year is given, pick the next future occurrence.
- The resolved date must fall within 365 days of today.
- If no date is mentioned at all, use tomorrow.

Output only the JSON object. No markdown fences, no commentary.`

// IntentSystemPrompt renders the intent extraction system prompt for the
// given current date (yyyy-mm-dd).
func IntentSystemPrompt(today string) string {
	return fmt.Sprintf(intentSystemPrompt, today, joinComma(EventCategories))
}

// ============================================================================
// Outfit Generation Prompts
// ============================================================================

// OutfitSystemPrompt pins the model to a strict four-object JSON array.
const OutfitSystemPrompt = `You are a fashion-forward AI stylist trained on modern, edgy, and seasonal fashion trends. Respond with only a valid JSON array of 4 outfit objects.`

// OutfitFormatInstructions is appended to every generation directive.
const OutfitFormatInstructions = `

Each outfit should include:
- A creative and fashionable name
- Clear description with labeled clothing items (Top, Bottom, Outerwear if needed, Shoes, Accessories)
- Include fabric, fit, and color details
- Add a searchQuery string and imagePrompt string

Format output as a valid JSON array of 4 objects. Each object must have:
{
  "name": "Outfit Name",
  "description": "Top: ..., Bottom: ..., Shoes: ..., Accessories: ...",
  "searchQuery": "main item name",
  "imagePrompt": "descriptive image idea"
}`

func joinComma(items []string) string {
	out := ""
	for i, item := range items {
		if i > 0 {
			out += ", "
		}
		out += item
	}
	return out
}
