package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/jrsteele09/go-blog-client/apiclient"
	"github.com/jrsteele09/go-blog-client/auth"
	"github.com/jrsteele09/go-blog-client/blogs"
	"github.com/jrsteele09/go-blog-client/credentials"
	"github.com/jrsteele09/go-blog-client/credentials/filestore"
	"github.com/jrsteele09/go-blog-client/credentials/memstore"
	"github.com/jrsteele09/go-blog-client/credentials/redisstore"
	"github.com/jrsteele09/go-blog-client/guards"
	"github.com/jrsteele09/go-blog-client/internal/config"
	"github.com/jrsteele09/go-blog-client/metrics"
	"github.com/jrsteele09/go-blog-client/navigation"
	"github.com/jrsteele09/go-blog-client/sessions"
	"github.com/jrsteele09/go-blog-client/store"
	"github.com/jrsteele09/go-blog-client/uploads"
	"github.com/jrsteele09/go-blog-client/users/admin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// App is everything a command needs, wired once per invocation
type App struct {
	Session   *sessions.Context
	Nav       *navigation.History
	API       *apiclient.Client
	Auth      *auth.Service
	Blogs     *blogs.Service
	Admin     *admin.Service
	Guards    *guards.Guards
	BlogState *store.BlogState
	UserState *store.UserState
	Registry  *prometheus.Registry

	signInPath string
	closers    []io.Closer
}

// AppFactory builds the App lazily so commands that never talk to the API
// (version, help) need no configuration.
type AppFactory func(ctx context.Context, logger zerolog.Logger) (*App, error)

// OpenStore returns the credential store selected by BLOG_CREDENTIAL_STORE. The
// closer is nil unless the store holds a connection.
func OpenStore(ctx context.Context, cfg config.Config) (credentials.Store, io.Closer, error) {
	switch cfg.GetCredentialStore() {
	case config.CredentialStoreMemory:
		return memstore.New(), nil, nil
	case config.CredentialStoreFile:
		s, err := filestore.New(cfg.GetDataFolder(), cfg.GetCredentialPassphrase())
		return s, nil, err
	case config.CredentialStoreRedis:
		client, err := redisstore.NewClient(ctx, cfg.GetRedisAddr(), cfg.GetRedisPassword(), cfg.GetRedisDB())
		if err != nil {
			return nil, nil, err
		}
		return redisstore.New(client, cfg.GetRedisKey()), client, nil
	}
	return nil, nil, fmt.Errorf("unknown credential store %q", cfg.GetCredentialStore())
}

// NewApp wires the client stack from configuration
func NewApp(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*App, error) {
	credStore, closer, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("[cli NewApp] credential store: %w", err)
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	session := sessions.New(credStore)
	nav := navigation.NewHistory(navigation.RouteHome)

	api, err := apiclient.NewFromConfig(cfg, session, nav, apiclient.WithLogger(logger), apiclient.WithMetrics(m))
	if err != nil {
		if closer != nil {
			if closeErr := closer.Close(); closeErr != nil {
				logger.Warn().Err(closeErr).Msg("closing credential store")
			}
		}
		return nil, fmt.Errorf("[cli NewApp] %w", err)
	}
	uploader := uploads.New(api, cfg, uploads.WithLogger(logger))

	app := Assemble(api, session, nav, uploader, m, logger)
	app.Registry = registry
	if closer != nil {
		app.closers = append(app.closers, closer)
	}
	return app, nil
}

// Uploader is satisfied by *uploads.Uploader
type Uploader interface {
	Upload(ctx context.Context, filename string, content io.Reader) (string, error)
}

// Assemble builds the services over an existing API client. The guards share the
// client's sign-in path. A nil uploader disables commands that attach files.
func Assemble(api *apiclient.Client, session *sessions.Context, nav *navigation.History, uploader Uploader, m *metrics.Metrics, logger zerolog.Logger) *App {
	authOpts := []auth.Option{auth.WithMetrics(m), auth.WithLogger(logger)}
	blogOpts := []blogs.Option{blogs.WithLogger(logger)}
	if uploader != nil {
		authOpts = append(authOpts, auth.WithUploader(uploader))
		blogOpts = append(blogOpts, blogs.WithUploader(uploader))
	}
	authService := auth.NewService(api, session, authOpts...)

	return &App{
		Session:    session,
		Nav:        nav,
		API:        api,
		Auth:       authService,
		Blogs:      blogs.NewService(api, blogOpts...),
		Admin:      admin.NewService(api),
		Guards:     guards.New(session, authService, guards.WithSignInPath(api.SignInPath()), guards.WithLogger(logger)),
		BlogState:  store.NewBlogState(),
		UserState:  store.NewUserState(),
		signInPath: api.SignInPath(),
	}
}

// SignInPath is where a torn down session is sent
func (a *App) SignInPath() string {
	return a.signInPath
}

// SignedOut reports whether the API client tore the session down during this run
func (a *App) SignedOut() bool {
	for _, r := range a.Nav.Redirects() {
		if r == a.signInPath {
			return true
		}
	}
	return false
}

func (a *App) Close() error {
	var firstErr error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
