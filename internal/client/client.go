// Package client talks to the customization persistence API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/chartviz/engine/internal/square"
)

// Endpoint paths relative to the base URL.
const (
	CustomizationPath = "/api/square-customization"
	DetailingPath     = "/api/square-detailing"
)

// Customization is the stored form of one square edit.
type Customization struct {
	ID          uint64           `json:"id,omitempty"`
	ChartID     uint64           `json:"chartId"`
	SquareClass square.Class     `json:"squareClass"`
	ParentText  string           `json:"parentText"`
	Depth       int              `json:"depth"`
	Title       string           `json:"title"`
	Priority    square.Priority  `json:"priority"`
	Urgency     square.Urgency   `json:"urgency"`
	Aesthetic   square.Aesthetic `json:"aesthetic"`
	CreatedAt   time.Time        `json:"createdAt,omitempty"`
}

// NewCustomization keys d under chartID and key.
func NewCustomization(chartID uint64, key square.Key, d square.SquareData) Customization {
	return Customization{
		ChartID:     chartID,
		SquareClass: key.SquareClass,
		ParentText:  key.ParentText,
		Depth:       key.Depth,
		Title:       d.Title,
		Priority:    d.Priority,
		Urgency:     d.Urgency,
		Aesthetic:   d.Aesthetic,
	}
}

// Key returns the (class, parent, depth) tuple the record applies to.
func (c Customization) Key() square.Key {
	return square.Key{SquareClass: c.SquareClass, ParentText: c.ParentText, Depth: c.Depth}
}

// Data returns the editor view of the record.
func (c Customization) Data() square.SquareData {
	return square.SquareData{Title: c.Title, Priority: c.Priority, Urgency: c.Urgency, Aesthetic: c.Aesthetic}
}

// Detailing is the free-text metadata entered on the detailings form.
type Detailing struct {
	ID          uint64          `json:"id,omitempty"`
	ChartID     uint64          `json:"chartId"`
	SquareClass square.Class    `json:"squareClass"`
	ParentText  string          `json:"parentText"`
	Depth       int             `json:"depth"`
	Plane       string          `json:"plane"`
	Purpose     string          `json:"purpose"`
	Delineator  string          `json:"delineator"`
	Notations   string          `json:"notations"`
	Details     string          `json:"details"`
	ExtraData   json.RawMessage `json:"extraData,omitempty"`
	CreatedAt   time.Time       `json:"createdAt,omitempty"`
}

// APIError is returned for any non-2xx response or an unsuccessful envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error: status %d: %s: %s", e.Status, e.Code, e.Message)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sends a bearer token with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// Client performs single-shot calls against the persistence API. It never retries.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// New returns a client rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Save posts a new customization row and returns the stored record.
// Repeated saves for the same key create new rows.
func (c *Client) Save(ctx context.Context, in Customization) (*Customization, error) {
	var out Customization
	if err := c.do(ctx, http.MethodPost, CustomizationPath, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchAll returns every stored customization for chartID in insertion order.
func (c *Client) FetchAll(ctx context.Context, chartID uint64) ([]Customization, error) {
	var out []Customization
	if err := c.do(ctx, http.MethodGet, CustomizationPath+"/"+strconv.FormatUint(chartID, 10), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveDetailing posts a detailings form submission.
func (c *Client) SaveDetailing(ctx context.Context, in Detailing) (*Detailing, error) {
	var out Detailing
	if err := c.do(ctx, http.MethodPost, DetailingPath, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchDetailings returns every detailing stored for chartID.
func (c *Client) FetchDetailings(ctx context.Context, chartID uint64) ([]Detailing, error) {
	var out []Detailing
	if err := c.do(ctx, http.MethodGet, DetailingPath+"/"+strconv.FormatUint(chartID, 10), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 300 {
			return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		}
		return fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= 300 || !env.Success {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		if env.Error != nil {
			apiErr.Code, apiErr.Message = env.Error.Code, env.Error.Message
		}
		return apiErr
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}
