package service

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/nkatz/stylist/internal/logger"
)

// PhotoServiceConfig holds configuration for the stock photo service.
type PhotoServiceConfig struct {
	AccessKey   string
	BaseURL     string
	FallbackURL string
	PerPage     int
	Timeout     time.Duration
}

// PhotoService fetches stock photos keyed on an outfit's search terms.
// It never fails: when the search call errors it returns a randomized-seed
// fallback URL instead.
type PhotoService struct {
	client      *resty.Client
	baseURL     string
	fallbackURL string
	perPage     int
}

// NewPhotoService creates a new stock photo service.
// Parameters:
//   - cfg: provider endpoint, access key, and page size.
//
// Returns:
//   - *PhotoService: initialized photo service.
func NewPhotoService(cfg *PhotoServiceConfig) *PhotoService {
	client := resty.New()
	client.SetHeader("Authorization", "Client-ID "+cfg.AccessKey)

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client.SetTimeout(timeout)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.unsplash.com"
	}
	fallbackURL := cfg.FallbackURL
	if fallbackURL == "" {
		fallbackURL = "https://source.unsplash.com/400x600"
	}
	perPage := cfg.PerPage
	if perPage <= 0 {
		perPage = 5
	}

	return &PhotoService{
		client:      client,
		baseURL:     baseURL,
		fallbackURL: fallbackURL,
		perPage:     perPage,
	}
}

type photoSearchResponse struct {
	Results []struct {
		URLs struct {
			Regular string `json:"regular"`
		} `json:"urls"`
	} `json:"results"`
}

// StockPhoto returns an image URL for the given outfit search terms,
// picking randomly among the top results for variety.
func (s *PhotoService) StockPhoto(ctx context.Context, query, imagePrompt string) string {
	searchQuery := query + " fashion outfit style"
	if imagePrompt != "" {
		searchQuery = imagePrompt + " outfit"
	}

	var result photoSearchResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"query":       searchQuery,
			"orientation": "portrait",
			"per_page":    fmt.Sprintf("%d", s.perPage),
		}).
		SetResult(&result).
		Get(s.baseURL + "/search/photos")

	if err != nil || resp.StatusCode() < 200 || resp.StatusCode() >= 300 || len(result.Results) == 0 {
		if err != nil {
			logger.CtxWarn(ctx, "Stock photo search failed: %v", err)
		}
		return s.fallbackPhotoURL(query)
	}

	n := len(result.Results)
	if n > s.perPage {
		n = s.perPage
	}
	return result.Results[rand.Intn(n)].URLs.Regular
}

// fallbackPhotoURL builds a secondary image URL with a randomized seed so
// repeated fallbacks do not collapse to the same cached photo.
func (s *PhotoService) fallbackPhotoURL(query string) string {
	seed := fmt.Sprintf("%s fashion outfit style %f", query, rand.Float64())
	return s.fallbackURL + "/?" + url.QueryEscape(seed)
}
