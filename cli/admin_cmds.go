package cli

import (
	"context"
	"strconv"

	"github.com/jrsteele09/go-blog-client/cli/output"
	"github.com/jrsteele09/go-blog-client/navigation"
	"github.com/spf13/cobra"
)

func newAdminCmd(c *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage accounts (administrators)",
	}

	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "List every account",
		Args:  cobra.NoArgs,
	}
	usersCmd.RunE = c.run(func(ctx context.Context, app *App, _ []string) error {
		if err := c.enter(ctx, app, navigation.RouteAdmin, true); err != nil {
			return err
		}
		list, err := app.Admin.List(ctx)
		if err != nil {
			return err
		}
		app.UserState.ApplyList(list)
		if c.opts.json {
			return c.writeJSON(app.UserState.Items())
		}
		table := output.NewTable(c.printer.Out(), "ID", "USERNAME", "EMAIL", "STATUS", "ROLE")
		for _, u := range app.UserState.Items() {
			table.AddRow(
				strconv.FormatInt(u.ID, 10),
				u.Username,
				u.Email,
				c.printer.Flag(u.IsActive, "active", "inactive"),
				c.printer.Flag(u.IsSuperuser, "admin", "user"),
			)
		}
		return table.Render()
	})

	var active bool
	toggleCmd := &cobra.Command{
		Use:   "toggle-active USER_ID",
		Short: "Activate or deactivate an account",
		Args:  cobra.ExactArgs(1),
	}
	toggleCmd.RunE = c.run(func(ctx context.Context, app *App, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := c.enter(ctx, app, navigation.RouteAdmin, true); err != nil {
			return err
		}
		u, err := app.Admin.ToggleActive(ctx, id, active)
		if err != nil {
			return err
		}
		app.UserState.ApplyUpdated(u)
		c.printer.Success("%s is now %s", u.Username, c.printer.Flag(u.IsActive, "active", "inactive"))
		return nil
	})
	toggleCmd.Flags().BoolVar(&active, "active", false, "activate instead of deactivate")

	cmd.AddCommand(usersCmd, toggleCmd)
	return cmd
}
