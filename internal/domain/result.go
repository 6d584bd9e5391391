package domain

// ResultStatus represents the terminal state of a pipeline run.
type ResultStatus string

const (
	StatusSuccess ResultStatus = "success"
	StatusWarning ResultStatus = "warning"
	StatusError   ResultStatus = "error"
)

// ResultRecord is the output of one pipeline run. A new record fully
// replaces the previous one; no history is kept across runs.
type ResultRecord struct {
	ID     string       `json:"id"`
	Status ResultStatus `json:"status"`
	Type   string       `json:"type"` // intent kind, or "error"

	Destination string `json:"destination,omitempty"`
	Date        string `json:"date,omitempty"`
	Event       string `json:"event,omitempty"`
	Reference   string `json:"reference,omitempty"`

	Weather *WeatherSnapshot `json:"weather,omitempty"`
	Warning string           `json:"warning,omitempty"`
	Outfits []Outfit         `json:"outfits,omitempty"`

	// OutfitsDegraded marks a run where generation produced nothing usable
	// and an empty outfit list was accepted instead of failing the run.
	OutfitsDegraded bool `json:"outfits_degraded,omitempty"`

	Error string `json:"error,omitempty"`
}
