// Package sheets downloads a published Google Sheet as CSV.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
)

var ErrInvalidURL = errors.New("invalid Google Sheets URL")

var (
	sheetIDPattern = regexp.MustCompile(`/d/([a-zA-Z0-9_-]+)`)
	gidPattern     = regexp.MustCompile(`gid=([0-9]+)`)
)

// maxSheetBytes bounds a single download.
const maxSheetBytes = 256 << 20

// ExportURL turns a sheet's share or edit URL into its CSV export URL. The
// tab defaults to gid 0.
func ExportURL(sheetURL string) (string, error) {
	id := sheetIDPattern.FindStringSubmatch(sheetURL)
	if id == nil {
		return "", ErrInvalidURL
	}
	gid := "0"
	if m := gidPattern.FindStringSubmatch(sheetURL); m != nil {
		gid = m[1]
	}
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/export?format=csv&gid=%s", id[1], gid), nil
}

// Fetch downloads the CSV text at exportURL.
func Fetch(ctx context.Context, client *http.Client, exportURL string) (string, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, exportURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch sheet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch sheet: status %d: make sure the sheet is shared with \"Anyone with the link can view\"", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSheetBytes))
	if err != nil {
		return "", fmt.Errorf("read sheet: %w", err)
	}
	return string(data), nil
}

// Load resolves sheetURL and downloads it.
func Load(ctx context.Context, client *http.Client, sheetURL string) (string, error) {
	u, err := ExportURL(sheetURL)
	if err != nil {
		return "", err
	}
	return Fetch(ctx, client, u)
}
