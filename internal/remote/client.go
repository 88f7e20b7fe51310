// Package remote implements the client for the wpAddons.io addons API.
package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	addons "github.com/eugener/wpaddons/internal"
)

const (
	// DefaultBaseURL is the REST root of the public addons service.
	DefaultBaseURL = "https://wpaddons.io/wp-json"

	// maxBody caps how much of a response is read into memory.
	maxBody = 8 << 20
)

// Client fetches addon listings from the remote API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client. If baseURL is empty, DefaultBaseURL is used.
// The provided client carries timeouts and transport settings.
func New(baseURL string, client *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = &http.Client{}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    client,
	}
}

// PluginURL returns the endpoint listing the addons of slug.
func (c *Client) PluginURL(slug string) string {
	return c.baseURL + "/plugin/" + url.PathEscape(slug) + "/"
}

// PluginAddons fetches the raw addons document for slug. The body is returned
// unmodified when the API answers 200 with valid JSON.
func (c *Client) PluginAddons(ctx context.Context, slug string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.PluginURL(slug), nil)
	if err != nil {
		return nil, fmt.Errorf("addons api: create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("addons api: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, parseAPIError(resp)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("addons api: read body: %w", err)
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("addons api: %w", addons.ErrInvalidPayload)
	}
	return body, nil
}
