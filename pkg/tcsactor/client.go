package tcsactor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"timetrack-service/internal/service"
)

// ErrNotConfigured is returned when no actor URL has been configured.
var ErrNotConfigured = errors.New("tcsactor: actor URL not configured")

// Client drives the external TCS form-filling actor, a browser-automation
// sidecar exposing the fill flow over HTTP. It implements service.Automator.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// ErrorResponse represents an actor error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewClient creates a new actor client instance
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

type startRequest struct {
	Headless bool `json:"headless"`
	DryRun   bool `json:"dry_run"`
}

type fillRequest struct {
	Date    string             `json:"date"`
	Entries []service.TCSEntry `json:"entries"`
}

type screenshotResponse struct {
	Path string `json:"path"`
}

type previewRequest struct {
	AutoConfirm bool `json:"auto_confirm"`
}

// Start opens a browser session on the actor
func (c *Client) Start(headless, dryRun bool) error {
	return c.post("/session/start", startRequest{Headless: headless, DryRun: dryRun}, nil)
}

// FillEntries fills the timesheet form for one date (YYYYMMDD)
func (c *Client) FillEntries(date string, entries []service.TCSEntry) error {
	return c.post("/session/fill", fillRequest{Date: date, Entries: entries}, nil)
}

// Screenshot captures the filled form and returns the stored file path
func (c *Client) Screenshot() (string, error) {
	var resp screenshotResponse
	if err := c.post("/session/screenshot", nil, &resp); err != nil {
		return "", err
	}
	return resp.Path, nil
}

// PreviewBeforeSave triggers the actor's preview step
func (c *Client) PreviewBeforeSave(autoConfirm bool) error {
	return c.post("/session/preview", previewRequest{AutoConfirm: autoConfirm}, nil)
}

// Save commits the filled form
func (c *Client) Save() error {
	return c.post("/session/save", nil, nil)
}

// Close tears down the browser session
func (c *Client) Close() error {
	return c.post("/session/close", nil, nil)
}

// post sends a JSON request to the actor and decodes the response into out
// when out is non-nil.
func (c *Client) post(path string, payload, out interface{}) error {
	if c.BaseURL == "" {
		return ErrNotConfigured
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(http.MethodPost, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(respBody, &errorResp); err != nil || errorResp.Error == "" {
			return fmt.Errorf("actor request %s failed: %d %s", path, resp.StatusCode, string(respBody))
		}
		return fmt.Errorf("actor request %s failed: %s", path, errorResp.Error)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return err
		}
	}

	return nil
}

var _ service.Automator = (*Client)(nil)
