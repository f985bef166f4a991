package apiclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-blog-client/internal/config"
	"github.com/jrsteele09/go-blog-client/internal/errors"
	"github.com/jrsteele09/go-blog-client/metrics"
	"github.com/jrsteele09/go-blog-client/navigation"
	"github.com/jrsteele09/go-blog-client/token"
	"github.com/jrsteele09/go-blog-client/token/refresh"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// maxRefreshRetries is how many refresh-and-resend cycles one originating request may trigger.
const maxRefreshRetries = 1

const requestIDHeader = "X-Request-ID"

// maxResponseBody bounds how much of a response body is read into memory.
const maxResponseBody = 32 << 20

// Session is the credential side of the session context the client mutates.
type Session interface {
	Credential(ctx context.Context) (string, error)
	SetCredential(ctx context.Context, credential string) error
	Clear(ctx context.Context) error
}

// Refresher obtains a new credential without user interaction.
type Refresher interface {
	Refresh(ctx context.Context) (string, error)
}

// Client performs authenticated calls against the blog API. It attaches the current
// credential, recovers once from an expired credential, and signs the session out when
// recovery is impossible or the account is inactive.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    Session
	refresher  Refresher
	navigator  navigation.Navigator
	signInPath string
	logger     zerolog.Logger
	metrics    *metrics.Metrics

	refreshGroup singleflight.Group
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func WithSignInPath(path string) Option {
	return func(c *Client) {
		c.signInPath = path
	}
}

func New(baseURL string, session Session, refresher Refresher, navigator navigation.Navigator, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		session:    session,
		refresher:  refresher,
		navigator:  navigator,
		signInPath: navigation.RouteLogin,
		logger:     log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With().Str("component", "apiclient").Logger()
	return c
}

// NewFromConfig wires a client and its refresh client over one cookie-carrying
// http.Client, so the session cookie set at login reaches the refresh endpoint.
func NewFromConfig(cfg config.APIConfig, session Session, navigator navigation.Navigator, opts ...Option) (*Client, error) {
	base, err := url.Parse(cfg.GetBaseURL())
	if err != nil {
		return nil, fmt.Errorf("[apiclient NewFromConfig] base url: %w: %w", errors.ErrInvalidInput, err)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("[apiclient NewFromConfig] base url %q: %w", cfg.GetBaseURL(), errors.ErrInvalidInput)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("[apiclient NewFromConfig] cookie jar: %w", err)
	}
	hc := &http.Client{Jar: jar, Timeout: cfg.GetHTTPTimeout()}

	opts = append([]Option{WithHTTPClient(hc), WithSignInPath(cfg.GetSignInPath())}, opts...)
	c := New(cfg.GetBaseURL(), session, nil, navigator, opts...)
	c.refresher = refresh.NewClient(c.httpClient, cfg.GetBaseURL(), cfg.GetRefreshPath(), c.logger)
	return c, nil
}

// BaseURL returns the API root requests are resolved against
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SignInPath is where the client sends the navigator when it signs the session out
func (c *Client) SignInPath() string {
	return c.signInPath
}

// HTTPClient exposes the underlying client so collaborators (uploads) share its jar and timeout
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// Do sends req and returns the 2xx response, or an error. A 401 triggers at most
// one refresh-and-resend; every other failure is returned unchanged.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	credential := ""
	if !req.Anonymous {
		var err error
		if credential, err = c.session.Credential(ctx); err != nil {
			return nil, fmt.Errorf("[apiclient Do] %s: %w", req, err)
		}
	}
	return c.do(ctx, req, uuid.NewString(), credential, 0)
}

func (c *Client) do(ctx context.Context, req Request, requestID, credential string, retries int) (*Response, error) {
	resp, err := c.send(ctx, req, requestID, credential, retries)
	if err != nil {
		return nil, err
	}
	if resp.OK() {
		return resp, nil
	}

	apiErr := newAPIError(req, resp)
	if req.Anonymous {
		return nil, apiErr
	}

	switch {
	case apiErr.Inactive():
		c.logger.Warn().Str("request_id", requestID).Str("request", req.String()).Msg("account inactive, signing out")
		c.teardown(ctx, metrics.TeardownInactive)
		return nil, apiErr

	case resp.StatusCode == http.StatusUnauthorized && retries < maxRefreshRetries:
		// another request already refreshed while this one was in flight
		if stored, err := c.session.Credential(ctx); err == nil && stored != "" && stored != credential {
			c.logger.Debug().Str("request_id", requestID).Str("request", req.String()).Msg("replaying with refreshed credential")
			return c.do(ctx, req, requestID, stored, retries+1)
		}
		newCredential, refreshErr := c.refreshCredential(ctx)
		if refreshErr != nil {
			c.logger.Warn().Err(refreshErr).Str("request_id", requestID).Str("request", req.String()).Msg("refresh failed, signing out")
			c.teardown(ctx, metrics.TeardownRefreshFailed)
			return nil, errors.Join(apiErr, refreshErr)
		}
		return c.do(ctx, req, requestID, newCredential, retries+1)
	}

	return nil, apiErr
}

func (c *Client) send(ctx context.Context, req Request, requestID, credential string, retries int) (*Response, error) {
	httpReq, err := req.build(ctx, c.baseURL)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set(requestIDHeader, requestID)
	if credential != "" {
		token.OAuth2(credential).SetAuthHeader(httpReq)
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.RecordRequest(req.Method, 0, time.Since(start))
		return nil, fmt.Errorf("[apiclient Do] %s: %w", req, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	duration := time.Since(start)
	c.metrics.RecordRequest(req.Method, httpResp.StatusCode, duration)
	if err != nil {
		return nil, fmt.Errorf("[apiclient Do] %s: read body: %w", req, err)
	}

	c.logger.Debug().
		Str("request_id", requestID).
		Str("method", req.Method).
		Str("path", req.Path).
		Int("status", httpResp.StatusCode).
		Int("retry", retries).
		Bool("authenticated", credential != "").
		Dur("duration", duration).
		Msg("api call")

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       body,
		RequestID:  requestID,
	}, nil
}

// refreshCredential runs the refresher and persists its result. Concurrent callers
// share one in-flight refresh; each still counts its own retry.
func (c *Client) refreshCredential(ctx context.Context) (string, error) {
	if c.refresher == nil {
		return "", fmt.Errorf("[apiclient refresh] no refresher configured: %w", errors.ErrRefreshFailed)
	}

	v, err, shared := c.refreshGroup.Do("refresh", func() (any, error) {
		refreshCtx := context.WithoutCancel(ctx)
		newCredential, err := c.refresher.Refresh(refreshCtx)
		if err != nil {
			return "", err
		}
		if err := c.session.SetCredential(refreshCtx, newCredential); err != nil {
			return "", fmt.Errorf("%w: %w", errors.ErrRefreshFailed, err)
		}
		return newCredential, nil
	})
	if err != nil {
		c.metrics.RecordRefresh(metrics.RefreshFailure)
		return "", err
	}

	c.metrics.RecordRefresh(metrics.RefreshSuccess)
	c.logger.Info().Bool("shared", shared).Msg("credential refreshed")
	return v.(string), nil
}

// teardown clears credential storage, then the session, then leaves for sign-in.
func (c *Client) teardown(ctx context.Context, reason string) {
	if err := c.session.Clear(ctx); err != nil {
		c.logger.Error().Err(err).Str("reason", reason).Msg("session teardown incomplete")
	}
	c.metrics.RecordTeardown(reason)
	navigation.RedirectToSignIn(c.navigator, c.signInPath)
}

// Send performs req and decodes the JSON response into out when out is not nil.
func (c *Client) Send(ctx context.Context, req Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

// GetJSON issues a GET with optional query parameters and decodes the result.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	req := NewRequest(http.MethodGet, path)
	req.Query = query
	return c.Send(ctx, req, out)
}

// SendJSON issues method with in encoded as JSON (nil sends no body) and decodes into out.
func (c *Client) SendJSON(ctx context.Context, method, path string, in, out any) error {
	req := NewRequest(method, path)
	if in != nil {
		var err error
		if req, err = req.WithJSON(in); err != nil {
			return err
		}
	}
	return c.Send(ctx, req, out)
}
