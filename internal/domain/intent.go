package domain

import "strings"

// IntentKind represents the recognized category of a user message.
// Values include IntentTravel, IntentEvent, and the thematic kinds.
type IntentKind string

const (
	IntentTravel  IntentKind = "travel"
	IntentEvent   IntentKind = "event"
	IntentLyrics  IntentKind = "lyrics"
	IntentMovie   IntentKind = "movie"
	IntentAnime   IntentKind = "anime"
	IntentSports  IntentKind = "sports"
	IntentCulture IntentKind = "culture"
)

// Intent is the structured interpretation of a free-text user message.
// Exactly the fields for its Kind are populated; everything else stays empty.
type Intent struct {
	Kind IntentKind `json:"type"`

	// Travel fields
	Destination string `json:"destination,omitempty"`
	Date        string `json:"date,omitempty"` // ISO yyyy-mm-dd

	// Event field
	Event string `json:"event,omitempty"`

	// Thematic reference (lyrics, movie, anime, sports, culture)
	Reference string `json:"reference,omitempty"`
}

// IsThematic reports whether the intent is one of the free-text reference kinds.
func (i *Intent) IsThematic() bool {
	switch i.Kind {
	case IntentLyrics, IntentMovie, IntentAnime, IntentSports, IntentCulture:
		return true
	}
	return false
}

// MissingFields returns the names of mandatory fields absent for the
// intent's kind. An unrecognized kind is reported as a missing "type".
func (i *Intent) MissingFields() []string {
	var missing []string
	switch i.Kind {
	case IntentTravel:
		if strings.TrimSpace(i.Destination) == "" {
			missing = append(missing, "destination")
		}
		if strings.TrimSpace(i.Date) == "" {
			missing = append(missing, "date")
		}
	case IntentEvent:
		if strings.TrimSpace(i.Event) == "" {
			missing = append(missing, "event")
		}
	case IntentLyrics, IntentMovie, IntentAnime, IntentSports, IntentCulture:
		if strings.TrimSpace(i.Reference) == "" {
			missing = append(missing, string(i.Kind))
		}
	default:
		missing = append(missing, "type")
	}
	return missing
}
