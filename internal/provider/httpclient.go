package provider

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultTimeout = 10 * time.Second

func newHTTPClient(baseURL string, timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
}

// decodeResponse checks the status of rr and unmarshals its body into out.
// Bodies are decoded regardless of the Content-Type the service sent.
func decodeResponse(service string, rr *resty.Response, out any) error {
	if rr.IsError() {
		return fmt.Errorf("%s: %s; body: %s", service, rr.Status(), abbreviate(rr.String(), 300))
	}
	if err := json.Unmarshal(rr.Body(), out); err != nil {
		return fmt.Errorf("%s: decode response: %w", service, err)
	}
	return nil
}

func abbreviate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
