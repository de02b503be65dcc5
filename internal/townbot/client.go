// Package townbot drives a town server the way a browser client would. It
// backs the townbot command, which is used for load and smoke testing.
package townbot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/playperu/townsquare/internal/town"
)

// Client talks to the REST surface of a town server.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) ListTowns(ctx context.Context) ([]town.TownSummary, error) {
	var out []town.TownSummary
	err := c.do(ctx, http.MethodGet, "/towns", nil, nil, &out)
	return out, err
}

func (c *Client) CreateTown(ctx context.Context, friendlyName string, public bool, mapFile string) (town.TownCredentials, error) {
	body := map[string]any{
		"friendlyName":     friendlyName,
		"isPubliclyListed": public,
		"mapFile":          mapFile,
	}
	var out town.TownCredentials
	err := c.do(ctx, http.MethodPost, "/towns", body, nil, &out)
	return out, err
}

func (c *Client) DeleteTown(ctx context.Context, townID, password string) error {
	header := http.Header{"X-Town-Password": {password}}
	return c.do(ctx, http.MethodDelete, "/towns/"+townID, nil, header, nil)
}

func (c *Client) Leaderboard(ctx context.Context, townID, areaID string) ([]town.LeaderboardEntry, error) {
	var out []town.LeaderboardEntry
	err := c.do(ctx, http.MethodGet, "/towns/"+townID+"/simonSaysArea/"+areaID+"/leaderboard", nil, nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body any, header http.Header, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	for k, v := range header {
		req.Header[k] = v
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&e)
		return fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, e.Error)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
