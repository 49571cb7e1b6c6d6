// Package client is a typed HTTP client for the Mini Notes API.
//
// Every failure is classified into the apperr taxonomy: transport failures and
// timeouts become network errors, 4xx responses carry the server's message, and
// anything else collapses to a generic unknown error.
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

	"github.com/starford/mininotes/internal/apperr"
	"github.com/starford/mininotes/internal/models"
)

// DefaultTimeout bounds every request made by a Client.
const DefaultTimeout = 10 * time.Second

const maxErrorBody = 64 << 10

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the upper bound on request duration.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client. Its Timeout is overwritten
// unless WithTimeout is set to zero.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// Client talks to a Mini Notes API server.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	timeout time.Duration
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("client: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("client: base url must be http or https: %q", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("client: base url has no host: %q", baseURL)
	}

	c := &Client{baseURL: u, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{}
	} else {
		hc := *c.http
		c.http = &hc
	}
	if c.timeout > 0 {
		c.http.Timeout = c.timeout
	}
	return c, nil
}

// BaseURL returns the API root the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Health checks that the server answers GET /health.
func (c *Client) Health(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/health", nil, nil, http.StatusOK, &out); err != nil {
		return err
	}
	if out.Status != "ok" {
		return apperr.New(apperr.KindUnknown, fmt.Sprintf("server reported status %q", out.Status))
	}
	return nil
}

// ListNotes fetches all notes, or those matching query when it is not blank.
func (c *Client) ListNotes(ctx context.Context, query string) ([]models.Note, error) {
	var params url.Values
	if strings.TrimSpace(query) != "" {
		params = url.Values{"q": []string{query}}
	}
	notes := []models.Note{}
	if err := c.do(ctx, http.MethodGet, "/notes", params, nil, http.StatusOK, &notes); err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []models.Note{}
	}
	return notes, nil
}

// GetNote fetches one note by id.
func (c *Client) GetNote(ctx context.Context, id string) (models.Note, error) {
	var note models.Note
	err := c.do(ctx, http.MethodGet, "/notes/"+url.PathEscape(id), nil, nil, http.StatusOK, &note)
	return note, err
}

// CreateNote creates a note and returns it as stored by the server.
func (c *Client) CreateNote(ctx context.Context, title, content string) (models.Note, error) {
	var note models.Note
	body := models.NewNote{Title: title, Content: content}
	err := c.do(ctx, http.MethodPost, "/notes", nil, body, http.StatusCreated, &note)
	return note, err
}

// Append implements the store contract on top of the API.
func (c *Client) Append(ctx context.Context, title, content string) (models.Note, error) {
	return c.CreateNote(ctx, title, content)
}

// List implements the store contract on top of the API.
func (c *Client) List(ctx context.Context, query string) ([]models.Note, error) {
	return c.ListNotes(ctx, query)
}

// Get implements the store contract on top of the API.
func (c *Client) Get(ctx context.Context, id string) (models.Note, error) {
	return c.GetNote(ctx, id)
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, in any, want int, out any) error {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = params.Encode()

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return apperr.Wrap(apperr.KindUnknown, apperr.MsgUnknown, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return apperr.Wrap(apperr.KindUnknown, apperr.MsgUnknown, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return networkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if isTimeout(err) {
			return networkError(err)
		}
		return apperr.Wrap(apperr.KindUnknown, apperr.MsgUnknown, fmt.Errorf("decode %s %s: %w", method, path, err))
	}
	return nil
}

func networkError(err error) error {
	msg := apperr.MsgNetwork
	if isTimeout(err) {
		msg = "Network error: request timed out"
	}
	return apperr.Wrap(apperr.KindNetwork, msg, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func statusError(resp *http.Response) error {
	cause := fmt.Errorf("unexpected status %d", resp.StatusCode)
	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode < http.StatusBadRequest {
		return apperr.Wrap(apperr.KindUnknown, apperr.MsgUnknown, cause)
	}

	var env errorEnvelope
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := ""
	if json.Unmarshal(raw, &env) == nil {
		msg = env.Error.Message
	}
	if msg == "" {
		msg = fmt.Sprintf("Request failed with status %d", resp.StatusCode)
	}

	if resp.StatusCode == http.StatusNotFound {
		return apperr.Wrap(apperr.KindNotFound, msg, cause)
	}
	return apperr.Wrap(apperr.KindValidation, msg, cause)
}
