// Package client talks to the intake HTTP service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/juventudesmira/intake/internal/tablestore"
)

// Error is a non-success answer from the service.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("intake service: %s (%d)", e.Message, e.Status) }

type Client struct {
	base string
	http *http.Client
}

func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), http: hc}
}

// Lookup fetches the stored record for key. It returns
// tablestore.ErrKeyNotFound on 404 so callers treat it like a local store.
func (c *Client) Lookup(ctx context.Context, key string) (map[string]string, error) {
	var body struct {
		Data    map[string]string `json:"data"`
		Message string            `json:"message"`
		Error   string            `json:"error"`
	}
	status, err := c.do(ctx, http.MethodGet, "/lookup/"+url.PathEscape(key), nil, &body)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
		return body.Data, nil
	case http.StatusNotFound:
		return nil, tablestore.ErrKeyNotFound
	}
	return nil, &Error{Status: status, Message: firstNonEmpty(body.Error, body.Message)}
}

// Submit posts a flattened payload. It satisfies form.Submitter.
func (c *Client) Submit(ctx context.Context, payload map[string]string) error {
	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	status, err := c.do(ctx, http.MethodPost, "/submit", payload, &body)
	if err != nil {
		return err
	}
	if status != http.StatusOK || !body.Success {
		return &Error{Status: status, Message: body.Message}
	}
	return nil
}

// CheckConnection reports the title of the spreadsheet behind the service.
func (c *Client) CheckConnection(ctx context.Context) (string, error) {
	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Title   string `json:"title"`
	}
	status, err := c.do(ctx, http.MethodGet, "/check-connection", nil, &body)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK || !body.Success {
		return "", &Error{Status: status, Message: body.Message}
	}
	return body.Title, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) (int, error) {
	var reqBody *bytes.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reqBody)
	if err != nil {
		return 0, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("calling %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return resp.StatusCode, fmt.Errorf("decoding response: %w", err)
	}
	return resp.StatusCode, nil
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return "unexpected response"
}
