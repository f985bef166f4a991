// Package cli implements the blogctl commands
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-blog-client/cli/output"
	"github.com/jrsteele09/go-blog-client/internal/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// BuildInfo is stamped at link time
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

type rootOptions struct {
	verbose bool
	color   string
	stats   bool
	json    bool
}

// cliContext carries the per-invocation state shared by every command
type cliContext struct {
	cfg     config.EnvConfig
	factory AppFactory
	build   BuildInfo
	opts    rootOptions
	logger  zerolog.Logger
	printer *output.Printer
	app     *App
}

// NewRootCmd builds the command tree. factory is called at most once, by the
// first command that needs the API.
func NewRootCmd(cfg config.EnvConfig, factory AppFactory, build BuildInfo) *cobra.Command {
	c := &cliContext{cfg: cfg, factory: factory, build: build, logger: zerolog.Nop()}

	root := &cobra.Command{
		Use:   "blogctl",
		Short: "Command line client for the blog service",
		Long: `blogctl signs in to the blog service and works with blogs, comments and users.

Example usage:
  blogctl login --email jane@example.com   # Sign in, password read from stdin
  blogctl blogs list --limit 20            # Show the latest blogs
  blogctl blogs show 5                     # Show one blog with comments
  blogctl admin users                      # List accounts (superusers)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), figure.NewFigure(c.cfg.GetAppName(), "cybermedium", true).String())
			return cmd.Help()
		},
	}

	root.PersistentFlags().BoolVarP(&c.opts.verbose, "verbose", "v", false, "log requests and refreshes")
	root.PersistentFlags().StringVar(&c.opts.color, "color", "auto", "color output: auto, always or never")
	root.PersistentFlags().BoolVar(&c.opts.stats, "stats", false, "print client metrics after the command")
	root.PersistentFlags().BoolVar(&c.opts.json, "json", false, "output as JSON")

	root.AddCommand(
		newLoginCmd(c),
		newLogoutCmd(c),
		newWhoamiCmd(c),
		newRegisterCmd(c),
		newBlogsCmd(c),
		newCommentsCmd(c),
		newAdminCmd(c),
		newVersionCmd(c),
	)
	return root
}

// Execute runs blogctl against the environment configuration
func Execute(ctx context.Context, build BuildInfo) error {
	cfg := config.New()
	factory := func(ctx context.Context, logger zerolog.Logger) (*App, error) {
		return NewApp(ctx, cfg, logger)
	}
	root := NewRootCmd(cfg, factory, build)
	return root.ExecuteContext(ctx)
}

func (c *cliContext) init(cmd *cobra.Command) error {
	mode, err := output.ParseColorMode(c.opts.color)
	if err != nil {
		return err
	}
	c.printer = output.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.ResolveColors(mode))
	c.logger = newLogger(cmd.ErrOrStderr(), c.cfg.GetLogFormat(), c.opts.verbose)
	return nil
}

// newLogger writes to w. Warnings only, unless verbose.
func newLogger(w io.Writer, format string, verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	if strings.EqualFold(format, "console") {
		w = zerolog.ConsoleWriter{Out: w, NoColor: w != os.Stderr}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func (c *cliContext) getApp(ctx context.Context) (*App, error) {
	if c.app != nil {
		return c.app, nil
	}
	app, err := c.factory(ctx, c.logger)
	if err != nil {
		return nil, err
	}
	c.app = app
	return app, nil
}

// run adapts an API command: it wires the app, then reports a server side sign
// out and the metrics whatever the command returned.
func (c *cliContext) run(fn func(ctx context.Context, app *App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := c.getApp(cmd.Context())
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := app.Close(); closeErr != nil {
				c.logger.Warn().Err(closeErr).Msg("close")
			}
		}()

		err = fn(cmd.Context(), app, args)
		if app.SignedOut() {
			c.printer.Warning("the server ended this session, run `blogctl login` to continue")
		}
		if c.opts.stats {
			if statsErr := c.printStats(app); statsErr != nil {
				c.logger.Warn().Err(statsErr).Msg("stats")
			}
		}
		return err
	}
}
