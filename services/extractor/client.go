package extractor

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/buger/jsonparser"
	json "github.com/goccy/go-json"

	"sjsage522/tapeworker/helpers"
	"sjsage522/tapeworker/internal/record"
	"sjsage522/tapeworker/internal/shop"
	"sjsage522/tapeworker/pkg/errors"
)

// DefaultHost is the public endpoint of the extraction service
const DefaultHost = "https://api.fetchfox.ai"

// Service crawls shops and extracts product records from the crawled pages
type Service interface {
	Crawl(ctx context.Context, req CrawlRequest) (*CrawlResult, error)
	Extract(ctx context.Context, req ExtractRequest) (*ExtractResult, error)
}

// Cost is what the service charged for a call, in USD
type Cost struct {
	Total float64
}

// Metrics are returned alongside every result
type Metrics struct {
	Cost Cost
}

// CrawlRequest asks the service to enumerate product URLs of a shop
type CrawlRequest struct {
	Shop shop.Shop
}

// CrawlResult holds the product URLs found by a crawl
type CrawlResult struct {
	Hits    []string
	Metrics Metrics
}

// ExtractRequest asks the service to extract records from URLs
type ExtractRequest struct {
	Shop     shop.Shop
	URLs     []string
	Template shop.Template
}

// ExtractResult holds the records extracted from the requested URLs
type ExtractResult struct {
	Items   []record.Record
	Metrics Metrics
}

// Client talks to the extraction service over HTTP
type Client struct {
	host   string
	apiKey string
	http   *http.Client
}

// NewClient creates a new client. A zero timeout keeps the default.
func NewClient(host, apiKey string, timeout time.Duration) *Client {
	if host == "" {
		host = DefaultHost
	}
	httpClient := helpers.DefaultClient
	if timeout > 0 {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		host:   strings.TrimRight(host, "/"),
		apiKey: apiKey,
		http:   httpClient,
	}
}

// Crawl runs a crawl for the shop
func (c *Client) Crawl(ctx context.Context, req CrawlRequest) (*CrawlResult, error) {
	data, err := c.post(ctx, req.Shop.Name, "/api/crawl", shopPayload(req.Shop))
	if err != nil {
		return nil, err
	}

	result := &CrawlResult{Hits: []string{}}
	var parseErr error
	_, err = jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, _ int, _ error) {
		if parseErr != nil {
			return
		}
		if dataType != jsonparser.String {
			parseErr = fmt.Errorf("hit is a %s, not a string", dataType)
			return
		}
		hit, err := jsonparser.ParseString(value)
		if err != nil {
			parseErr = err
			return
		}
		result.Hits = append(result.Hits, hit)
	}, "results", "hits")
	if err != nil && !stderrors.Is(err, jsonparser.KeyPathNotFoundError) {
		return nil, errors.NewParsing(req.Shop.Name, "failed to decode crawl hits", err)
	}
	if parseErr != nil {
		return nil, errors.NewParsing(req.Shop.Name, "failed to decode crawl hits", parseErr)
	}

	result.Metrics = parseMetrics(data)
	return result, nil
}

// Extract runs an extraction over the given URLs
func (c *Client) Extract(ctx context.Context, req ExtractRequest) (*ExtractResult, error) {
	payload := shopPayload(req.Shop)
	payload["urls"] = req.URLs
	if !req.Template.IsZero() {
		payload["template"] = req.Template
	}

	data, err := c.post(ctx, req.Shop.Name, "/api/extract", payload)
	if err != nil {
		return nil, err
	}

	result := &ExtractResult{Items: []record.Record{}}
	var parseErr error
	_, err = jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, _ int, _ error) {
		if parseErr != nil {
			return
		}
		if dataType != jsonparser.Object {
			parseErr = record.ErrNotObject
			return
		}
		item, err := record.Decode(value)
		if err != nil {
			parseErr = err
			return
		}
		result.Items = append(result.Items, item)
	}, "results", "items")
	if err != nil && !stderrors.Is(err, jsonparser.KeyPathNotFoundError) {
		return nil, errors.NewParsing(req.Shop.Name, "failed to decode extracted items", err)
	}
	if parseErr != nil {
		return nil, errors.NewParsing(req.Shop.Name, "failed to decode extracted items", parseErr)
	}

	result.Metrics = parseMetrics(data)
	return result, nil
}

func (c *Client) post(ctx context.Context, shopName, path string, payload map[string]any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.NewValidation(shopName, fmt.Sprintf("failed to encode request: %v", err))
	}

	headers := map[string]string{}
	if c.apiKey != "" {
		headers["Authorization"] = "Bearer " + c.apiKey
	}

	data, err := helpers.PostJSON(ctx, c.http, c.host+path, headers, body)
	if err != nil {
		var statusErr *helpers.StatusError
		if stderrors.As(err, &statusErr) && statusErr.IsRateLimited() {
			return nil, errors.NewRateLimit(shopName, statusErr.RetryAfter)
		}
		return nil, errors.NewNetwork(shopName, fmt.Sprintf("POST %s failed", path), err)
	}
	return data, nil
}

// shopPayload builds the request body shared by crawl and extract
func shopPayload(s shop.Shop) map[string]any {
	payload := make(map[string]any, len(s.Extra)+8)
	for k, v := range s.Extra {
		payload[k] = v
	}
	payload["pattern"] = s.Pattern
	payload["startUrls"] = s.StartURLs
	if s.Proxy != "" {
		payload["proxy"] = s.Proxy
	}
	if s.MaxDepth != nil {
		payload["maxDepth"] = *s.MaxDepth
	}
	if s.MaxVisits != nil {
		payload["maxVisits"] = *s.MaxVisits
	}
	if len(s.ContentTransform) > 0 {
		payload["contentTransform"] = s.ContentTransform
	}
	return payload
}

// parseMetrics reads metrics.cost.total; a missing cost counts as zero
func parseMetrics(data []byte) Metrics {
	total, err := jsonparser.GetFloat(data, "metrics", "cost", "total")
	if err != nil {
		return Metrics{}
	}
	return Metrics{Cost: Cost{Total: total}}
}
