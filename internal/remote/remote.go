// Package remote is the HTTP client for the linguistic service.
package remote

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

	"github.com/verte-zerg/morfo/internal/model"
)

// DefaultURL is the address the service listens on by default.
const DefaultURL = "http://127.0.0.1:5000"

const maxBodySize = 16 * 1024 * 1024

// ErrUnavailable wraps every transport, status or decoding failure.
var ErrUnavailable = errors.New("linguistic service unavailable")

// Client talks to the linguistic service.
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

// New returns a client for baseURL. A zero timeout disables the client timeout.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("server url is empty")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", baseURL)
	}
	if timeout < 0 {
		return nil, fmt.Errorf("timeout must be >= 0")
	}
	return &Client{
		baseURL: parsed,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// BaseURL returns the configured service address.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Decompose splits a sentence into lexemes with their analyses, in the order
// the service returned them.
func (c *Client) Decompose(ctx context.Context, sentence string) ([]model.Analysis, error) {
	var resp struct {
		Result orderedAnalyses `json:"result"`
	}
	body := struct {
		Sentence string `json:"sentence"`
	}{Sentence: sentence}
	if err := c.do(ctx, http.MethodPost, "decompose", body, &resp); err != nil {
		return nil, err
	}
	return []model.Analysis(resp.Result), nil
}

// Morph applies trait codes to a word.
func (c *Client) Morph(ctx context.Context, word string, traits []string) (string, error) {
	if traits == nil {
		traits = []string{}
	}
	var resp struct {
		Result *string `json:"result"`
	}
	body := struct {
		Word   string   `json:"word"`
		Traits []string `json:"traits"`
	}{Word: word, Traits: traits}
	if err := c.do(ctx, http.MethodPost, "morph", body, &resp); err != nil {
		return "", err
	}
	if resp.Result == nil {
		return "", fmt.Errorf("%w: morph: missing result", ErrUnavailable)
	}
	return *resp.Result, nil
}

// WordInfo returns the trait list of a word: stem marker, ending marker, features.
func (c *Client) WordInfo(ctx context.Context, word string) ([]string, error) {
	var resp struct {
		Result []string `json:"result"`
	}
	body := struct {
		Word string `json:"word"`
	}{Word: word}
	if err := c.do(ctx, http.MethodPost, "wordinfo", body, &resp); err != nil {
		return nil, err
	}
	if resp.Result == nil {
		return nil, fmt.Errorf("%w: wordinfo: missing result", ErrUnavailable)
	}
	return resp.Result, nil
}

// Dict fetches the full dictionary held by the service.
func (c *Client) Dict(ctx context.Context) (model.Dictionary, error) {
	var resp struct {
		Result model.Dictionary `json:"result"`
	}
	if err := c.do(ctx, http.MethodGet, "dict", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Result == nil {
		resp.Result = model.Dictionary{}
	}
	for lexeme, entry := range resp.Result {
		if entry.Features == nil {
			entry.Features = []string{}
		}
		if !entry.HasStem() {
			entry.Stem, entry.Ending = nil, nil
		}
		resp.Result[lexeme] = entry
	}
	return resp.Result, nil
}

// UpdateDict overwrites the service dictionary. The response body is ignored.
func (c *Client) UpdateDict(ctx context.Context, d model.Dictionary) error {
	if d == nil {
		d = model.Dictionary{}
	}
	body := struct {
		NewDictionary model.Dictionary `json:"newDictionary"`
	}{NewDictionary: d}
	return c.do(ctx, http.MethodPost, "updatedict", body, nil)
}

func (c *Client) do(ctx context.Context, method, endpoint string, in, out any) error {
	var reader io.Reader = http.NoBody
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", endpoint, err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath(endpoint).String(), reader)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUnavailable, endpoint, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return fmt.Errorf("%w: %s: unexpected status: %s", ErrUnavailable, endpoint, resp.Status)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: failed to decode response: %w", ErrUnavailable, endpoint, err)
	}
	return nil
}
