// client.go issues the single HTTP GET against the vehicle-data API and
// converts the response into a tagged Result, so a transport failure is
// never confused with payload content downstream.
package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// Result is the outcome of one remote fetch. Exactly one of Payload or
// Reason is meaningful, selected by OK.
type Result struct {
	OK      bool
	Payload string // response body (pretty-printed when JSON)
	Reason  string // human-readable failure reason
}

// Display returns the text to embed in the user-facing reply. Failures
// keep the original bot's wording so end users see the same message.
func (r Result) Display() string {
	if r.OK {
		return r.Payload
	}
	return "❌ Error fetching vehicle data: " + r.Reason
}

// Fetcher is the remote-lookup contract the flow depends on.
// *Client is the production implementation.
type Fetcher interface {
	Fetch(ctx context.Context, vehicle string) Result
}

// Client fetches vehicle records over HTTP. One GET per lookup with a
// bounded timeout; no retries.
type Client struct {
	httpClient *http.Client
	base       string
}

func NewClient(base string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		base:       base,
	}
}

// Fetch performs the GET for one already-normalized vehicle number.
// The number is percent-encoded before being appended to the base URL, so
// URL-special characters cannot corrupt the request. A JSON response is
// pretty-printed with two-space indentation, preserving key order and
// non-ASCII characters; any other content type, or undecodable JSON, is
// returned as raw text.
func (c *Client) Fetch(ctx context.Context, vehicle string) Result {
	reqURL := c.base + url.QueryEscape(vehicle)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return failure(vehicle, fmt.Errorf("build request: %w", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return failure(vehicle, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return failure(vehicle, fmt.Errorf("unexpected status %s", resp.Status))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return failure(vehicle, fmt.Errorf("read body: %w", err))
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, body, "", "  "); err == nil {
			return Result{OK: true, Payload: pretty.String()}
		}
		// Declared JSON but not decodable: fall through to raw text.
	}

	return Result{OK: true, Payload: string(body)}
}

func failure(vehicle string, err error) Result {
	log.WithError(err).WithField("vehicle", vehicle).Error("Vehicle fetch failed")
	return Result{Reason: err.Error()}
}
