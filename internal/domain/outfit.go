package domain

// Outfit is one AI-proposed look. The four descriptive fields are always
// populated for a valid outfit; Products is filled in by product resolution.
type Outfit struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"` // labeled items: Top, Bottom, Outerwear, Shoes, Accessories
	SearchQuery string    `json:"search_query"`
	ImagePrompt string    `json:"image_prompt"`
	Products    []Product `json:"products,omitempty"`

	// Degraded marks an outfit whose product resolution fell back to the
	// single placeholder product instead of real search results.
	Degraded bool `json:"degraded,omitempty"`
}

// Product is a shoppable (or placeholder) match for an outfit.
type Product struct {
	Title       string `json:"title"`
	Link        string `json:"link"` // "#" for placeholder products
	Image       string `json:"image"`
	Price       string `json:"price"` // "Price N/A" when no figure was found
	Store       string `json:"store"`
	Description string `json:"description,omitempty"`
	Placeholder bool   `json:"placeholder,omitempty"`
}
