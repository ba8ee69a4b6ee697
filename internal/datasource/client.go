package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/seenimoa/asharemcp/internal/infra"
)

// DefaultUserAgent is the user agent string used for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// DefaultTimeout bounds a single upstream request. It belongs to the
// provider boundary; the tool layer defines no timeout of its own.
const DefaultTimeout = 30 * time.Second

// httpClient is the shared HTTP layer for the Eastmoney adapters:
// a pre-configured client, a conservative rate limit, and JSON/text
// fetch helpers that map transport failures onto the error taxonomy.
type httpClient struct {
	c       *http.Client
	limiter *infra.RateLimiter
}

func newHTTPClient(timeout time.Duration) *httpClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &httpClient{
		c:       &http.Client{Timeout: timeout},
		limiter: infra.NewRateLimiter(5, time.Second),
	}
}

// get performs a rate-limited GET and returns the response body.
// HTTP 401/403 map to AuthFailure, other >=400 statuses and transport
// errors to SourceFailure.
func (hc *httpClient) get(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	if err := hc.limiter.Wait(ctx); err != nil {
		return nil, WrapSource(err, "rate limit wait interrupted")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, WrapSource(err, "create request")
	}
	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", "application/json, text/html, */*")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := hc.c.Do(req)
	if err != nil {
		return nil, WrapSource(err, "HTTP GET %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, AuthFailure("upstream rejected the request: HTTP %s", resp.Status)
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, SourceFailure("HTTP %s: %s", resp.Status, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, WrapSource(err, "read response body")
	}
	return body, nil
}

// getJSON performs a GET and decodes the JSON response into out.
func (hc *httpClient) getJSON(ctx context.Context, url string, headers map[string]string, out any) error {
	body, err := hc.get(ctx, url, headers)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return WrapSource(err, "decode response from %s", url)
	}
	return nil
}

// numericCell decodes an upstream numeric cell, keeping nil for the
// placeholder dash Eastmoney uses on suspended instruments.
func numericCell(raw json.RawMessage) any {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "-" || s == "" {
			return nil
		}
		return s
	}
	return fmt.Sprintf("%s", raw)
}
