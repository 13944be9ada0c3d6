package helpers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"slices"
	"time"

	"golang.org/x/net/html/charset"
)

// DefaultClient is used when callers pass no client
var DefaultClient = &http.Client{
	Timeout: 10 * time.Minute,
}

const userAgent = "tapeworker/1.0 (+https://github.com/sjsage522/tapeworker)"

// StatusError is returned for non-2xx responses
type StatusError struct {
	URL        string
	StatusCode int
	RetryAfter string
	Body       string
}

// Error implements the error interface
func (e *StatusError) Error() string {
	if e.IsRateLimited() {
		return fmt.Sprintf("rate limited; retry after %s", e.RetryAfter)
	}
	return fmt.Sprintf("post %s unexpected status code: %d", e.URL, e.StatusCode)
}

// IsRateLimited reports whether the server asked us to slow down
func (e *StatusError) IsRateLimited() bool {
	return slices.Contains([]int{http.StatusTooManyRequests, 430}, e.StatusCode)
}

// PostJSON sends body as JSON and returns the response body converted to
// UTF-8. Headers are added to the request as given.
func PostJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, body []byte) ([]byte, error) {
	if client == nil {
		client = DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to post %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{
			URL:        url,
			StatusCode: resp.StatusCode,
			RetryAfter: resp.Header.Get("Retry-After"),
			Body:       string(snippet),
		}
	}

	reader, err := utf8Reader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return data, nil
}

// utf8Reader decodes r according to the charset parameter of contentType.
// JSON without a charset is UTF-8.
func utf8Reader(r io.Reader, contentType string) (io.Reader, error) {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return r, nil
	}
	label, ok := params["charset"]
	if !ok || label == "" {
		return r, nil
	}
	decoded, err := charset.NewReaderLabel(label, r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s body: %w", label, err)
	}
	return decoded, nil
}
