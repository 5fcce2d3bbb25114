// Package api is a port.StorageGateway that talks to a remote billed server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	"go.uber.org/zap"
)

// Error is a non-2xx answer from the server
type Error struct {
	StatusCode int
	Detail     string
}

// Error returns "Erreur <status>", the message shown on the error page
func (e *Error) Error() string {
	return fmt.Sprintf("Erreur %d", e.StatusCode)
}

// Config holds client configuration
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client implements port.StorageGateway and port.BillStore over HTTP
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client for the server at cfg.BaseURL
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid api base url %q: %w", cfg.BaseURL, err)
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}, nil
}

// envelope mirrors the server's response body
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Bills implements port.StorageGateway
func (c *Client) Bills() port.BillStore {
	return c
}

// List fetches GET /bills
func (c *Client) List(ctx context.Context) ([]entity.Bill, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/bills", nil)
	if err != nil {
		return nil, err
	}

	bills := []entity.Bill{}
	if err := c.do(req, &bills); err != nil {
		return nil, err
	}
	return bills, nil
}

// Create uploads the proof with POST /bills as multipart form data
func (c *Client) Create(ctx context.Context, payload *entity.UploadPayload) (*entity.UploadRef, error) {
	if payload == nil || payload.File.Name == "" {
		return nil, fmt.Errorf("upload payload has no file")
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	if err := form.WriteField("email", payload.Email); err != nil {
		return nil, err
	}
	part, err := form.CreateFormFile("file", payload.File.Name)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(payload.File.Content); err != nil {
		return nil, err
	}
	if err := form.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/bills", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	var ref entity.UploadRef
	if err := c.do(req, &ref); err != nil {
		return nil, err
	}
	return &ref, nil
}

// Update sends PATCH /bills/:id with the full record
func (c *Client) Update(ctx context.Context, bill *entity.Bill) error {
	data, err := json.Marshal(bill)
	if err != nil {
		return fmt.Errorf("failed to encode bill: %w", err)
	}

	endpoint := c.baseURL + "/bills/" + url.PathEscape(bill.ID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, nil)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Request failed",
			zap.String("method", req.Method),
			zap.String("url", req.URL.String()),
			zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{StatusCode: resp.StatusCode, Detail: env.Error}
		c.logger.Debug("Server answered with an error",
			zap.String("method", req.Method),
			zap.String("url", req.URL.String()),
			zap.Int("status", resp.StatusCode),
			zap.String("detail", env.Error))
		return apiErr
	}

	if decodeErr != nil {
		return fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

var (
	_ port.StorageGateway = (*Client)(nil)
	_ port.BillStore      = (*Client)(nil)
)
