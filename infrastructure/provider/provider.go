// Package provider implements the live review source adapters.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/localytics/localytics/domain/source"
)

// classifyStatus maps an HTTP status to the source error taxonomy.
// 429 is a throttle, 5xx a transient failure; anything else non-2xx is a
// terminal request error.
func classifyStatus(status int, body []byte) error {
	switch {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: http %d", source.ErrThrottled, status)
	case status >= http.StatusInternalServerError:
		return fmt.Errorf("%w: http %d", source.ErrTransient, status)
	default:
		return fmt.Errorf("unexpected status %d: %s", status, truncate(body, 200))
	}
}

// getJSON performs a GET request and decodes a 200 response into out.
// Network failures classify as transient; non-200 responses classify via
// classifyStatus.
func getJSON(ctx context.Context, client *http.Client, url string, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", source.ErrTransient, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", source.ErrTransient, err)
	}

	if resp.StatusCode != http.StatusOK {
		return classifyStatus(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
