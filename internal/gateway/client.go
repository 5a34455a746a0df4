// Package gateway is the HTTP client for the persistence server.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"artdesk/internal/catalog"
)

// APIError is a non-2xx response from the gateway.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gateway returned status %d", e.Status)
	}
	return fmt.Sprintf("gateway returned status %d: %s", e.Status, e.Message)
}

// SaveResult is the body of a successful save.
type SaveResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New returns a client for the gateway rooted at baseURL (including any
// route prefix). A nil httpClient gets a client with the given timeout.
func New(baseURL, token string, timeout time.Duration, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    httpClient,
	}
}

func (c *Client) Health(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return err
	}
	if out.Status != "ok" {
		return fmt.Errorf("gateway unhealthy: status %q", out.Status)
	}
	return nil
}

func (c *Client) LoadData(ctx context.Context) ([]catalog.Row, error) {
	var out struct {
		Data []catalog.Row `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/load-data", nil, &out); err != nil {
		return nil, fmt.Errorf("load data: %w", err)
	}
	return out.Data, nil
}

func (c *Client) SaveData(ctx context.Context, rows []catalog.Row) (SaveResult, error) {
	if rows == nil {
		rows = []catalog.Row{}
	}
	var out SaveResult
	err := c.do(ctx, http.MethodPost, "/save-data", map[string]any{"data": rows}, &out)
	if err != nil {
		return out, fmt.Errorf("save data: %w", err)
	}
	return out, nil
}

func (c *Client) LoadRecipes(ctx context.Context) ([]catalog.RecipeEntry, error) {
	var out struct {
		Recipes []catalog.RecipeEntry `json:"recipes"`
	}
	if err := c.do(ctx, http.MethodGet, "/load-recipes", nil, &out); err != nil {
		return nil, fmt.Errorf("load recipes: %w", err)
	}
	return out.Recipes, nil
}

func (c *Client) SaveRecipes(ctx context.Context, recipes []catalog.RecipeEntry) (SaveResult, error) {
	if recipes == nil {
		recipes = []catalog.RecipeEntry{}
	}
	var out SaveResult
	err := c.do(ctx, http.MethodPost, "/save-recipes", map[string]any{"recipes": recipes}, &out)
	if err != nil {
		return out, fmt.Errorf("save recipes: %w", err)
	}
	return out, nil
}

func (c *Client) LoadColors(ctx context.Context) ([]catalog.ColorEntry, error) {
	var out struct {
		Colors []catalog.ColorEntry `json:"colors"`
	}
	if err := c.do(ctx, http.MethodGet, "/load-colors", nil, &out); err != nil {
		return nil, fmt.Errorf("load colors: %w", err)
	}
	return out.Colors, nil
}

func (c *Client) SaveColors(ctx context.Context, colors []catalog.ColorEntry) (SaveResult, error) {
	if colors == nil {
		colors = []catalog.ColorEntry{}
	}
	var out SaveResult
	err := c.do(ctx, http.MethodPost, "/save-colors", map[string]any{"colors": colors}, &out)
	if err != nil {
		return out, fmt.Errorf("save colors: %w", err)
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var e struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
