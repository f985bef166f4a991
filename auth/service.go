package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-blog-client/apiclient"
	"github.com/jrsteele09/go-blog-client/internal/errors"
	"github.com/jrsteele09/go-blog-client/metrics"
	"github.com/jrsteele09/go-blog-client/sessions"
	"github.com/jrsteele09/go-blog-client/users"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Uploader puts a file on the file host and returns its public URL
type Uploader interface {
	Upload(ctx context.Context, filename string, content io.Reader) (string, error)
}

// File is an optional upload attached to an account operation
type File struct {
	Name    string
	Content io.Reader
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse is returned by login and, on some deployments, by register
type loginResponse struct {
	AccessToken string      `json:"access_token"`
	User        *users.User `json:"user"`
}

// Service signs the account in and out and edits its profile. It is the only
// writer of the session user apart from the API client's teardown.
type Service struct {
	api      *apiclient.Client
	session  *sessions.Context
	uploader Uploader
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

type Option func(*Service)

func WithUploader(u Uploader) Option {
	return func(s *Service) {
		s.uploader = u
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(api *apiclient.Client, session *sessions.Context, opts ...Option) *Service {
	s := &Service{
		api:     api,
		session: session,
		logger:  log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("component", "auth").Logger()
	return s
}

// Register creates an account. The optional profile picture is uploaded to the file
// host first. When the server answers with a credential the session is established.
func (s *Service) Register(ctx context.Context, req users.RegisterRequest, profilePic *File) (*users.User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("[auth Register] %w: %v", errors.ErrInvalidInput, err)
	}

	if profilePic != nil {
		url, err := s.upload(ctx, profilePic)
		if err != nil {
			return nil, fmt.Errorf("[auth Register] profile picture: %w", err)
		}
		req.ProfilePic = url
	}

	httpReq, err := apiclient.NewRequest(http.MethodPost, RouteRegister).WithJSON(req)
	if err != nil {
		return nil, err
	}
	resp, err := s.api.Do(ctx, httpReq.AsAnonymous())
	if err != nil {
		return nil, fmt.Errorf("[auth Register] %w", err)
	}

	var lr loginResponse
	if err := resp.Decode(&lr); err != nil {
		return nil, err
	}
	if lr.User == nil {
		lr.User = &users.User{}
		if err := resp.Decode(lr.User); err != nil {
			return nil, err
		}
	}

	if lr.AccessToken != "" {
		if err := s.session.Establish(ctx, lr.AccessToken, lr.User); err != nil {
			return nil, fmt.Errorf("[auth Register] %w", err)
		}
	}
	s.logger.Info().Int64("user_id", lr.User.ID).Msg("registered")
	return lr.User, nil
}

// Login exchanges email and password for a credential and the profile.
func (s *Service) Login(ctx context.Context, email, password string) (*users.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, fmt.Errorf("[auth Login] email and password are required: %w", errors.ErrInvalidInput)
	}

	req, err := apiclient.NewRequest(http.MethodPost, RouteLogin).WithJSON(loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	var lr loginResponse
	if err := s.api.Send(ctx, req.AsAnonymous(), &lr); err != nil {
		if errors.Is(err, errors.ErrUnauthorized) {
			return nil, fmt.Errorf("[auth Login] %w: %w", errors.ErrInvalidCredentials, err)
		}
		return nil, fmt.Errorf("[auth Login] %w", err)
	}
	if lr.AccessToken == "" || lr.User == nil {
		return nil, fmt.Errorf("[auth Login] incomplete login response: %w", errors.ErrInternal)
	}

	if err := s.session.Establish(ctx, lr.AccessToken, lr.User); err != nil {
		return nil, fmt.Errorf("[auth Login] %w", err)
	}
	s.logger.Info().Int64("user_id", lr.User.ID).Msg("signed in")
	return lr.User.Clone(), nil
}

// Logout ends the server session and always clears local state, credential first.
func (s *Service) Logout(ctx context.Context) error {
	_, serverErr := s.api.Do(ctx, apiclient.NewRequest(http.MethodPost, RouteLogout).AsAnonymous())
	if serverErr != nil {
		s.logger.Warn().Err(serverErr).Msg("server logout failed, clearing local session anyway")
	}

	clearErr := s.session.Clear(ctx)
	s.metrics.RecordTeardown(metrics.TeardownLogout)

	if err := errors.Join(serverErr, clearErr); err != nil {
		return fmt.Errorf("[auth Logout] %w", err)
	}
	s.logger.Info().Msg("signed out")
	return nil
}

// CurrentUser reloads the profile of the credential holder into the session.
// Any failure leaves the session without a user.
func (s *Service) CurrentUser(ctx context.Context) (*users.User, error) {
	var u users.User
	if err := s.api.GetJSON(ctx, RouteMe, nil, &u); err != nil {
		s.session.SetUser(nil)
		return nil, fmt.Errorf("[auth CurrentUser] %w", err)
	}
	s.session.SetUser(&u)
	return &u, nil
}

// UpdateUsername renames the signed-in account
func (s *Service) UpdateUsername(ctx context.Context, username string) (*users.User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, fmt.Errorf("[auth UpdateUsername] username is required: %w", errors.ErrInvalidInput)
	}
	return s.patchMe(ctx, map[string]string{"username": username})
}

// UpdateProfilePic uploads a new picture and points the profile at it
func (s *Service) UpdateProfilePic(ctx context.Context, pic File) (*users.User, error) {
	url, err := s.upload(ctx, &pic)
	if err != nil {
		return nil, fmt.Errorf("[auth UpdateProfilePic] %w", err)
	}
	return s.patchMe(ctx, map[string]string{"profile_pic": url})
}

func (s *Service) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	if err := users.ValidatePasswordStrength(newPassword); err != nil {
		return fmt.Errorf("[auth ChangePassword] %w: %v", errors.ErrInvalidInput, err)
	}
	body := users.ChangePasswordRequest{OldPassword: oldPassword, NewPassword: newPassword}
	if err := s.api.SendJSON(ctx, http.MethodPost, RouteChangePassword, body, nil); err != nil {
		return fmt.Errorf("[auth ChangePassword] %w", err)
	}
	return nil
}

func (s *Service) patchMe(ctx context.Context, fields map[string]string) (*users.User, error) {
	var u users.User
	if err := s.api.SendJSON(ctx, http.MethodPatch, RouteMe, fields, &u); err != nil {
		return nil, fmt.Errorf("[auth patchMe] %w", err)
	}
	s.session.SetUser(&u)
	return &u, nil
}

func (s *Service) upload(ctx context.Context, f *File) (string, error) {
	if s.uploader == nil {
		return "", fmt.Errorf("no uploader configured: %w", errors.ErrUnsupported)
	}
	return s.uploader.Upload(ctx, f.Name, f.Content)
}
