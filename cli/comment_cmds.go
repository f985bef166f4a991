package cli

import (
	"context"
	"strconv"

	"github.com/jrsteele09/go-blog-client/blogs"
	"github.com/jrsteele09/go-blog-client/cli/output"
	"github.com/spf13/cobra"
)

func (c *cliContext) printComments(list []*blogs.Comment) error {
	if c.opts.json {
		return c.writeJSON(list)
	}
	table := output.NewTable(c.printer.Out(), "ID", "AUTHOR", "APPROVED", "COMMENT")
	for _, cm := range list {
		author := "anonymous"
		if cm.User != nil && cm.User.Username != "" {
			author = cm.User.Username
		}
		table.AddRow(strconv.FormatInt(cm.ID, 10), author, c.printer.Flag(cm.IsApproved, "yes", "no"), cm.Content)
	}
	return table.Render()
}

func newCommentsCmd(c *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "comments",
		Aliases: []string{"comment"},
		Short:   "Read and write comments",
	}
	cmd.AddCommand(
		newCommentsListCmd(c),
		newCommentsAddCmd(c),
		newCommentsEditCmd(c),
		newCommentsDeleteCmd(c),
		newCommentsApproveCmd(c),
	)
	return cmd
}

func newCommentsListCmd(c *cliContext) *cobra.Command {
	var skip, limit int
	cmd := &cobra.Command{
		Use:   "list BLOG_ID",
		Short: "List the comments on a blog",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = c.run(func(ctx context.Context, app *App, args []string) error {
		blogID, err := parseID(args[0])
		if err != nil {
			return err
		}
		list, err := app.Blogs.ListComments(ctx, blogID, skip, limit)
		if err != nil {
			return err
		}
		app.BlogState.ApplyComments(skip, list)
		return c.printComments(app.BlogState.Comments())
	})
	cmd.Flags().IntVar(&skip, "skip", 0, "number of comments to skip")
	cmd.Flags().IntVar(&limit, "limit", blogs.DefaultPageSize, "page size")
	return cmd
}

func newCommentsAddCmd(c *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add BLOG_ID TEXT",
		Short: "Comment on a blog",
		Args:  cobra.ExactArgs(2),
	}
	cmd.RunE = c.run(func(ctx context.Context, app *App, args []string) error {
		blogID, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := c.enter(ctx, app, blogRoute(blogID), false); err != nil {
			return err
		}
		cm, err := app.Blogs.CreateComment(ctx, blogID, args[1])
		if err != nil {
			return err
		}
		app.BlogState.ApplyCommentCreated(cm)
		c.printer.Success("added comment %d", cm.ID)
		return nil
	})
	return cmd
}

func newCommentsEditCmd(c *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit COMMENT_ID TEXT",
		Short: "Change one of your comments",
		Args:  cobra.ExactArgs(2),
	}
	cmd.RunE = c.run(func(ctx context.Context, app *App, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := c.enter(ctx, app, "/comments", false); err != nil {
			return err
		}
		cm, err := app.Blogs.UpdateComment(ctx, id, args[1])
		if err != nil {
			return err
		}
		app.BlogState.ApplyCommentUpdated(cm)
		c.printer.Success("updated comment %d", cm.ID)
		return nil
	})
	return cmd
}

func newCommentsDeleteCmd(c *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "delete COMMENT_ID",
		Aliases: []string{"rm"},
		Short:   "Delete a comment",
		Args:    cobra.ExactArgs(1),
	}
	cmd.RunE = c.run(func(ctx context.Context, app *App, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := c.enter(ctx, app, "/comments", false); err != nil {
			return err
		}
		if err := app.Blogs.DeleteComment(ctx, id); err != nil {
			return err
		}
		app.BlogState.ApplyCommentDeleted(id)
		c.printer.Success("deleted comment %d", id)
		return nil
	})
	return cmd
}

func newCommentsApproveCmd(c *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "approve COMMENT_ID",
		Short: "Toggle whether a comment is shown (administrators)",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = c.run(func(ctx context.Context, app *App, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := c.enter(ctx, app, "/admin/comments", true); err != nil {
			return err
		}
		cm, err := app.Blogs.ToggleCommentApproval(ctx, id)
		if err != nil {
			return err
		}
		app.BlogState.ApplyCommentUpdated(cm)
		c.printer.Success("comment %d %s", cm.ID, c.printer.Flag(cm.IsApproved, "approved", "hidden"))
		return nil
	})
	return cmd
}

func newAttachmentsCmd(c *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attachments",
		Short: "Manage files attached to a blog",
	}

	list := &cobra.Command{
		Use:   "list BLOG_ID",
		Short: "List a blog's attachments",
		Args:  cobra.ExactArgs(1),
	}
	list.RunE = c.run(func(ctx context.Context, app *App, args []string) error {
		blogID, err := parseID(args[0])
		if err != nil {
			return err
		}
		attachments, err := app.Blogs.ListAttachments(ctx, blogID)
		if err != nil {
			return err
		}
		app.BlogState.ApplyAttachments(attachments)
		if c.opts.json {
			return c.writeJSON(app.BlogState.Attachments())
		}
		table := output.NewTable(c.printer.Out(), "ID", "URL")
		for _, a := range app.BlogState.Attachments() {
			table.AddRow(strconv.FormatInt(a.ID, 10), a.FileURL)
		}
		return table.Render()
	})

	add := &cobra.Command{
		Use:   "add BLOG_ID FILE",
		Short: "Upload a file and attach it to a blog",
		Args:  cobra.ExactArgs(2),
	}
	add.RunE = c.run(func(ctx context.Context, app *App, args []string) error {
		blogID, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := c.enter(ctx, app, blogRoute(blogID), false); err != nil {
			return err
		}
		f, name, err := openFile(args[1])
		if err != nil {
			return err
		}
		defer f.Close()
		a, err := app.Blogs.CreateAttachment(ctx, blogID, blogs.File{Name: name, Content: f})
		if err != nil {
			return err
		}
		app.BlogState.ApplyAttachmentCreated(a)
		c.printer.Success("attached %s as %d", a.FileURL, a.ID)
		return nil
	})

	remove := &cobra.Command{
		Use:     "delete ATTACHMENT_ID",
		Aliases: []string{"rm"},
		Short:   "Remove an attachment",
		Args:    cobra.ExactArgs(1),
	}
	remove.RunE = c.run(func(ctx context.Context, app *App, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := c.enter(ctx, app, "/attachments", false); err != nil {
			return err
		}
		if err := app.Blogs.DeleteAttachment(ctx, id); err != nil {
			return err
		}
		app.BlogState.ApplyAttachmentDeleted(id)
		c.printer.Success("deleted attachment %d", id)
		return nil
	})

	cmd.AddCommand(list, add, remove)
	return cmd
}
