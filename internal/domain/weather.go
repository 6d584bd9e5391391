package domain

// WeatherDetails carries the secondary figures for a forecast day.
type WeatherDetails struct {
	Humidity      float64 `json:"humidity"`
	WindSpeed     float64 `json:"wind_speed"`
	FeelsLike     float64 `json:"feels_like"`
	Precipitation float64 `json:"precipitation"`
}

// WeatherSnapshot is the resolved forecast for a place and date. When the
// requested date had no forecast entry, Date holds the substituted date and
// Warning names it; RequestedDate always holds the date the user asked for.
type WeatherSnapshot struct {
	Location      string         `json:"location"`
	Date          string         `json:"date"`
	RequestedDate string         `json:"requested_date"`
	Temperature   float64        `json:"temperature"`
	Description   string         `json:"description"`
	Icon          string         `json:"icon"`
	Details       WeatherDetails `json:"details"`
	Warning       string         `json:"warning,omitempty"`
}
