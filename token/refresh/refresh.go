package refresh

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-blog-client/internal/errors"
	"github.com/rs/zerolog"
)

// Refresh specific failures, all of which satisfy errors.Is(err, errors.ErrRefreshFailed)
var (
	ErrRefreshRejected    = fmt.Errorf("%w: session rejected by server", errors.ErrRefreshFailed)
	ErrRefreshUnavailable = fmt.Errorf("%w: refresh endpoint unavailable", errors.ErrRefreshFailed)
	ErrRefreshMalformed   = fmt.Errorf("%w: malformed refresh response", errors.ErrRefreshFailed)
)

// maxErrorBody bounds how much of a failed response is kept for logging.
const maxErrorBody = 4 << 10

// tokenResponse accepts both field names the service has used for the new token.
type tokenResponse struct {
	Access      string `json:"access"`
	AccessToken string `json:"access_token"`
}

func (r tokenResponse) token() string {
	if r.Access != "" {
		return r.Access
	}
	return r.AccessToken
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// Client exchanges the ambient session cookie for a fresh access token.
type Client struct {
	httpClient *http.Client
	endpoint   string
	logger     zerolog.Logger
}

// NewClient creates a refresh client. httpClient must share its cookie jar with the
// API client so the session cookie set at login is sent.
func NewClient(httpClient *http.Client, baseURL, path string, logger zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		endpoint:   strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(path, "/"),
		logger:     logger.With().Str("component", "refresh").Logger(),
	}
}

// Endpoint returns the absolute refresh URL
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Refresh calls the refresh endpoint with no credential and an empty JSON body.
func (c *Client) Refresh(ctx context.Context) (string, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader([]byte("{}")))
	if err != nil {
		return "", fmt.Errorf("[refresh Refresh] create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("[refresh Refresh] %w: %v", errors.ErrRefreshFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("[refresh Refresh] read body: %w: %v", errors.ErrRefreshFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", c.statusError(resp.StatusCode, body)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("[refresh Refresh] decode: %w", ErrRefreshMalformed)
	}
	if tr.token() == "" {
		return "", fmt.Errorf("[refresh Refresh] no token in response: %w", ErrRefreshMalformed)
	}

	c.logger.Debug().Dur("duration", time.Since(start)).Msg("credential refreshed")
	return tr.token(), nil
}

func (c *Client) statusError(status int, body []byte) error {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	var er errorResponse
	_ = json.Unmarshal(body, &er)
	detail := er.Detail
	if detail == "" {
		detail = http.StatusText(status)
	}

	c.logger.Warn().Int("status_code", status).Str("detail", detail).Msg("credential refresh failed")

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("[refresh Refresh] %w: HTTP %d: %s", ErrRefreshRejected, status, detail)
	case status >= 500:
		return fmt.Errorf("[refresh Refresh] %w: HTTP %d", ErrRefreshUnavailable, status)
	default:
		return fmt.Errorf("[refresh Refresh] %w: HTTP %d: %s", errors.ErrRefreshFailed, status, detail)
	}
}
