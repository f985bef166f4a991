package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jrsteele09/go-blog-client/auth"
	"github.com/jrsteele09/go-blog-client/guards"
	"github.com/jrsteele09/go-blog-client/navigation"
	"github.com/jrsteele09/go-blog-client/token"
	"github.com/jrsteele09/go-blog-client/users"
	"github.com/spf13/cobra"
)

// readSecret returns flagValue, or the first line of in when the flag was not given
func readSecret(in io.Reader, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// openFile opens path for upload. The caller closes the returned file.
func openFile(path string) (*os.File, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	return f, filepath.Base(path), nil
}

func (c *cliContext) printUser(u *users.User) error {
	if c.opts.json {
		enc := json.NewEncoder(c.printer.Out())
		enc.SetIndent("", "  ")
		return enc.Encode(u)
	}
	c.printer.Header(u.Username)
	c.printer.Field("id", u.ID)
	c.printer.Field("email", u.Email)
	c.printer.Field("status", c.printer.Flag(u.IsActive, "active", "inactive"))
	c.printer.Field("role", c.printer.Flag(u.IsSuperuser, "admin", "user"))
	if u.ProfilePic != "" {
		c.printer.Field("picture", u.ProfilePic)
	}
	if u.LastLogin != nil {
		c.printer.Field("last login", u.LastLogin.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func newLoginCmd(c *cliContext) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the credential",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = c.run(func(ctx context.Context, app *App, _ []string) error {
		app.Nav.Visit(app.SignInPath())
		if cred, _ := app.Session.Credential(ctx); cred != "" {
			_, _ = app.Auth.CurrentUser(ctx)
		}
		if d := app.Guards.Public(""); !d.Allow {
			c.printer.Warning("already signed in as %s", app.Session.User().Username)
			return nil
		}

		secret, err := readSecret(cmd.InOrStdin(), password)
		if err != nil {
			return err
		}
		u, err := app.Auth.Login(ctx, email, secret)
		if err != nil {
			return err
		}
		c.printer.Success("signed in as %s", u.Username)
		return nil
	})
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (read from stdin when omitted)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(c *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored credential",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = c.run(func(ctx context.Context, app *App, _ []string) error {
		if err := app.Auth.Logout(ctx); err != nil {
			c.printer.Warning("%v", err)
		}
		c.printer.Success("signed out")
		return nil
	})
	return cmd
}

func newWhoamiCmd(c *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = c.run(func(ctx context.Context, app *App, _ []string) error {
		if err := c.enter(ctx, app, "/me", false); err != nil {
			return err
		}
		if err := c.printUser(app.Session.User()); err != nil || c.opts.json {
			return err
		}
		cred, _ := app.Session.Credential(ctx)
		if claims, err := token.Inspect(cred); err == nil && !claims.ExpiresAt.IsZero() {
			c.printer.Field("expires", claims.ExpiresAt.Local().Format("2006-01-02 15:04")+" "+c.printer.Dim("(in "+claims.TTL().Round(time.Second).String()+")"))
		}
		return nil
	})
	return cmd
}

func newRegisterCmd(c *cliContext) *cobra.Command {
	var req users.RegisterRequest
	var picture string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = c.run(func(ctx context.Context, app *App, _ []string) error {
		secret, err := readSecret(cmd.InOrStdin(), req.Password)
		if err != nil {
			return err
		}
		req.Password = secret

		var pic *auth.File
		if picture != "" {
			f, name, err := openFile(picture)
			if err != nil {
				return err
			}
			defer f.Close()
			pic = &auth.File{Name: name, Content: f}
		}

		app.Nav.Visit(navigation.RouteRegister)
		u, err := app.Auth.Register(ctx, req, pic)
		if err != nil {
			return err
		}
		if app.Session.Authenticated() {
			c.printer.Success("registered and signed in as %s", u.Username)
			return nil
		}
		c.printer.Success("registered %s, run `blogctl login` to sign in", u.Username)
		return nil
	})
	cmd.Flags().StringVar(&req.Username, "username", "", "display name")
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "password (read from stdin when omitted)")
	cmd.Flags().StringVar(&picture, "picture", "", "profile picture to upload")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// enter runs the protected or admin guard for path and turns a refusal into an error.
// Without a stored credential there is nobody to load, so the API is not asked.
func (c *cliContext) enter(ctx context.Context, app *App, path string, adminOnly bool) error {
	cred, err := app.Session.Credential(ctx)
	if err != nil {
		return err
	}
	if cred == "" {
		return fmt.Errorf("%s requires signing in, run `blogctl login`", path)
	}

	var d guards.Decision
	if adminOnly {
		d = app.Guards.Admin(ctx, path)
	} else {
		d = app.Guards.Protected(ctx, path)
	}
	switch {
	case d.Allow:
		app.Nav.Visit(path)
		return nil
	case d.Redirect == navigation.RouteHome:
		return fmt.Errorf("%s requires an administrator", path)
	}
	return fmt.Errorf("%s requires signing in, run `blogctl login`", path)
}
