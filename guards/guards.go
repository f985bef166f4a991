// Package guards decides whether a destination may be entered by the current session.
package guards

import (
	"context"

	"github.com/jrsteele09/go-blog-client/navigation"
	"github.com/jrsteele09/go-blog-client/sessions"
	"github.com/jrsteele09/go-blog-client/users"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// UserLoader fetches the profile of the credential holder into the session
type UserLoader interface {
	CurrentUser(ctx context.Context) (*users.User, error)
}

// Decision is the outcome of a guard. When Allow is false the caller should go to
// Redirect, remembering From so a later sign-in can return there.
type Decision struct {
	Allow    bool
	Redirect string
	From     string
}

func allow() Decision {
	return Decision{Allow: true}
}

func redirect(to, from string) Decision {
	return Decision{Redirect: to, From: from}
}

type Guards struct {
	session    sessions.Reader
	loader     UserLoader
	signInPath string
	logger     zerolog.Logger
}

type Option func(*Guards)

func WithSignInPath(path string) Option {
	return func(g *Guards) {
		g.signInPath = path
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(g *Guards) {
		g.logger = logger
	}
}

func New(session sessions.Reader, loader UserLoader, opts ...Option) *Guards {
	g := &Guards{
		session:    session,
		loader:     loader,
		signInPath: navigation.RouteLogin,
		logger:     log.Logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With().Str("component", "guards").Logger()
	return g
}

// currentUser returns the session user, loading it once when the session has none
func (g *Guards) currentUser(ctx context.Context) *users.User {
	if u := g.session.User(); u != nil {
		return u
	}
	if g.loader == nil {
		return nil
	}
	if _, err := g.loader.CurrentUser(ctx); err != nil {
		g.logger.Debug().Err(err).Msg("no current user")
	}
	return g.session.User()
}

// Protected admits any signed-in user
func (g *Guards) Protected(ctx context.Context, path string) Decision {
	if g.currentUser(ctx) == nil {
		return redirect(g.signInPath, path)
	}
	return allow()
}

// Admin admits active superusers. Inactive or unknown users are sent to sign in,
// other users to the home page.
func (g *Guards) Admin(ctx context.Context, path string) Decision {
	u := g.currentUser(ctx)
	switch {
	case u == nil || !u.IsActive:
		return redirect(g.signInPath, path)
	case !u.IsSuperuser:
		return redirect(navigation.RouteHome, path)
	}
	return allow()
}

// Public admits visitors only. A signed-in user goes back to from, or home.
func (g *Guards) Public(from string) Decision {
	if g.session.User() == nil {
		return allow()
	}
	if from == "" {
		from = navigation.RouteHome
	}
	return Decision{Redirect: from}
}
