package uploads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/jrsteele09/go-blog-client/apiclient"
	"github.com/jrsteele09/go-blog-client/internal/config"
	"github.com/jrsteele09/go-blog-client/internal/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const RouteGenerateSignature = "/auth/generate-signature"

// Signature authorizes one direct upload to the file host.
type Signature struct {
	Signature string      `json:"signature"`
	Timestamp json.Number `json:"timestamp"`
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Uploader sends files straight to the third-party file host using a signature
// minted by the blog API. The blog API only ever sees the resulting URL.
type Uploader struct {
	api        *apiclient.Client
	httpClient *http.Client
	uploadURL  string
	apiKey     string
	logger     zerolog.Logger
}

type Option func(*Uploader)

func WithHTTPClient(hc *http.Client) Option {
	return func(u *Uploader) {
		u.httpClient = hc
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(u *Uploader) {
		u.logger = logger
	}
}

func New(api *apiclient.Client, cfg config.UploadConfig, opts ...Option) *Uploader {
	u := &Uploader{
		api:        api,
		httpClient: api.HTTPClient(),
		uploadURL:  cfg.GetUploadURL(),
		apiKey:     cfg.GetUploadAPIKey(),
		logger:     log.Logger,
	}
	for _, opt := range opts {
		opt(u)
	}
	u.logger = u.logger.With().Str("component", "uploads").Logger()
	return u
}

// Sign fetches a fresh upload signature from the blog API.
func (u *Uploader) Sign(ctx context.Context) (*Signature, error) {
	var sig Signature
	req := apiclient.NewRequest(http.MethodGet, RouteGenerateSignature).AsAnonymous()
	if err := u.api.Send(ctx, req, &sig); err != nil {
		return nil, fmt.Errorf("[uploads Sign] %w", err)
	}
	if sig.Signature == "" || sig.Timestamp == "" {
		return nil, fmt.Errorf("[uploads Sign] incomplete signature: %w", errors.ErrUploadFailed)
	}
	return &sig, nil
}

// Upload stores the content under filename on the file host and returns its public URL.
func (u *Uploader) Upload(ctx context.Context, filename string, content io.Reader) (string, error) {
	sig, err := u.Sign(ctx)
	if err != nil {
		return "", err
	}

	body, contentType, err := u.form(filename, content, sig)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.uploadURL, body)
	if err != nil {
		return "", fmt.Errorf("[uploads Upload] create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("[uploads Upload] %w: %v", errors.ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	var ur uploadResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&ur)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := http.StatusText(resp.StatusCode)
		if decodeErr == nil && ur.Error != nil && ur.Error.Message != "" {
			msg = ur.Error.Message
		}
		u.logger.Error().Int("status_code", resp.StatusCode).Str("file", filename).Str("error", msg).Msg("file host rejected upload")
		return "", fmt.Errorf("[uploads Upload] %w: HTTP %d: %s", errors.ErrUploadFailed, resp.StatusCode, msg)
	}
	if decodeErr != nil || ur.SecureURL == "" {
		return "", fmt.Errorf("[uploads Upload] no secure_url in response: %w", errors.ErrUploadFailed)
	}

	u.logger.Debug().Str("file", filename).Str("url", ur.SecureURL).Msg("uploaded")
	return ur.SecureURL, nil
}

func (u *Uploader) form(filename string, content io.Reader, sig *Signature) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, "", fmt.Errorf("[uploads form] file part: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, "", fmt.Errorf("[uploads form] copy %s: %w", filename, err)
	}

	fields := [][2]string{
		{"api_key", u.apiKey},
		{"timestamp", sig.Timestamp.String()},
		{"signature", sig.Signature},
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, "", fmt.Errorf("[uploads form] field %s: %w", f[0], err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("[uploads form] close: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}
