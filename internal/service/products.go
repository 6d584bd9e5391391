package service

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/nkatz/stylist/internal/domain"
	"github.com/nkatz/stylist/internal/logger"
)

// fallbackPriceRange is the display price of the synthesized placeholder product.
const fallbackPriceRange = "$29.99 - $99.99"

// fallbackStoreLabel is the generic store tag of the placeholder product.
const fallbackStoreLabel = "Style"

// priceRe matches a dollar amount in a result title or snippet.
var priceRe = regexp.MustCompile(`\$\d+(?:\.\d{2})?`)

// ProductServiceConfig holds configuration for the product resolver.
type ProductServiceConfig struct {
	APIKey      string
	CSEID       string
	Endpoint    string
	MaxProducts int
	ResultCount int
	Timeout     time.Duration
}

// ProductService resolves an outfit's search query into shoppable products
// via restricted web search. Resolution never fails outward: every internal
// error degrades to the single-placeholder fallback path.
type ProductService struct {
	client      *resty.Client
	photos      *PhotoService
	apiKey      string
	cseID       string
	endpoint    string
	maxProducts int
	resultCount int
}

// NewProductService creates a new product resolver.
// Parameters:
//   - cfg: search provider credentials and result caps.
//   - photos: stock photo service for image fallbacks.
//
// Returns:
//   - *ProductService: initialized product resolver.
func NewProductService(cfg *ProductServiceConfig, photos *PhotoService) *ProductService {
	client := resty.New()
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client.SetTimeout(timeout)

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "https://www.googleapis.com/customsearch/v1"
	}
	maxProducts := cfg.MaxProducts
	if maxProducts <= 0 {
		maxProducts = 6
	}
	resultCount := cfg.ResultCount
	if resultCount <= 0 {
		resultCount = 10
	}

	return &ProductService{
		client:      client,
		photos:      photos,
		apiKey:      cfg.APIKey,
		cseID:       cfg.CSEID,
		endpoint:    endpoint,
		maxProducts: maxProducts,
		resultCount: resultCount,
	}
}

// Google Custom Search response structures. Pagemap metadata is optional
// and unstructured; every field access below tolerates its absence.
type searchResponse struct {
	Items []searchItem `json:"items"`
}

type searchItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Pagemap struct {
		Offer []struct {
			Price string `json:"price"`
		} `json:"offer"`
		Product []struct {
			Price string `json:"price"`
			Image string `json:"image"`
		} `json:"product"`
		CSEImage []struct {
			Src string `json:"src"`
		} `json:"cse_image"`
		CSEThumbnail []struct {
			Src string `json:"src"`
		} `json:"cse_thumbnail"`
	} `json:"pagemap"`
}

// ResolveProducts searches the curated retail domains for products matching
// the outfit's search query, deduplicated by store. When search fails or
// yields nothing usable it marks the outfit degraded and returns exactly
// one placeholder product.
func (s *ProductService) ResolveProducts(ctx context.Context, outfit *domain.Outfit) []domain.Product {
	query := outfit.SearchQuery + " clothing " + siteRestriction()

	var result searchResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"key": s.apiKey,
			"cx":  s.cseID,
			"q":   query,
			"num": strconv.Itoa(s.resultCount),
			"gl":  "us",
		}).
		SetResult(&result).
		Get(s.endpoint)

	if err != nil || resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		if err != nil {
			logger.CtxWarn(ctx, "Product search failed: %v", err)
		} else {
			logger.CtxWarn(ctx, "Product search failed with status %d", resp.StatusCode())
		}
		return s.fallbackProducts(ctx, outfit)
	}

	if len(result.Items) == 0 {
		return s.fallbackProducts(ctx, outfit)
	}

	seenStores := make(map[string]bool)
	products := make([]domain.Product, 0, s.maxProducts)

	for _, item := range result.Items {
		key := storeKey(item.Link)
		if seenStores[key] {
			continue
		}
		seenStores[key] = true

		image := extractImage(item)
		if image == "" {
			// Stock photo lookup only when the result carried no image
			// metadata; never issued speculatively.
			image = s.photos.StockPhoto(ctx, outfit.SearchQuery, outfit.ImagePrompt)
		}

		products = append(products, domain.Product{
			Title:       cleanTitle(item.Title),
			Link:        item.Link,
			Image:       image,
			Price:       extractPrice(item),
			Store:       storeLabel(key),
			Description: item.Snippet,
		})

		if len(products) >= s.maxProducts {
			break
		}
	}

	if len(products) == 0 {
		return s.fallbackProducts(ctx, outfit)
	}
	return products
}

// fallbackProducts synthesizes the single placeholder product and marks the
// outfit as degraded.
func (s *ProductService) fallbackProducts(ctx context.Context, outfit *domain.Outfit) []domain.Product {
	outfit.Degraded = true

	title := outfit.Name
	if title == "" {
		title = "Style Suggestion"
	}
	description := outfit.Description
	if description == "" {
		description = "AI-curated style suggestion"
	}

	return []domain.Product{
		{
			Title:       title,
			Link:        "#",
			Image:       s.photos.StockPhoto(ctx, outfit.SearchQuery, outfit.ImagePrompt),
			Price:       fallbackPriceRange,
			Store:       fallbackStoreLabel,
			Description: description,
			Placeholder: true,
		},
	}
}

// extractPrice pulls a price in priority order: structured offer price,
// structured product price, dollar pattern in title, dollar pattern in
// snippet, else "Price N/A".
func extractPrice(item searchItem) string {
	if len(item.Pagemap.Offer) > 0 && item.Pagemap.Offer[0].Price != "" {
		return dollarPrefixed(item.Pagemap.Offer[0].Price)
	}
	if len(item.Pagemap.Product) > 0 && item.Pagemap.Product[0].Price != "" {
		return dollarPrefixed(item.Pagemap.Product[0].Price)
	}
	if m := priceRe.FindString(item.Title); m != "" {
		return m
	}
	if m := priceRe.FindString(item.Snippet); m != "" {
		return m
	}
	return "Price N/A"
}

// dollarPrefixed ensures structured prices carry a currency symbol.
func dollarPrefixed(price string) string {
	if strings.HasPrefix(price, "$") {
		return price
	}
	return "$" + price
}

// extractImage pulls an image URL in priority order from the result's
// structured metadata. Returns "" when none is present.
func extractImage(item searchItem) string {
	if len(item.Pagemap.CSEImage) > 0 && item.Pagemap.CSEImage[0].Src != "" {
		return item.Pagemap.CSEImage[0].Src
	}
	if len(item.Pagemap.CSEThumbnail) > 0 && item.Pagemap.CSEThumbnail[0].Src != "" {
		return item.Pagemap.CSEThumbnail[0].Src
	}
	if len(item.Pagemap.Product) > 0 && item.Pagemap.Product[0].Image != "" {
		return item.Pagemap.Product[0].Image
	}
	return ""
}

// cleanTitle truncates a result title at the first pipe or hyphen to trim
// trailing site-branding suffixes.
func cleanTitle(title string) string {
	if idx := strings.IndexAny(title, "|-"); idx != -1 {
		title = title[:idx]
	}
	return strings.TrimSpace(title)
}
