package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jrsteele09/go-blog-client/blogs"
	"github.com/jrsteele09/go-blog-client/cli/output"
	"github.com/jrsteele09/go-blog-client/internal/utils"
	"github.com/spf13/cobra"
)

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func blogRoute(id int64) string {
	return fmt.Sprintf("/blogs/%d", id)
}

func (c *cliContext) writeJSON(v any) error {
	enc := json.NewEncoder(c.printer.Out())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cliContext) printBlogs(list []*blogs.Blog) error {
	if c.opts.json {
		return c.writeJSON(list)
	}
	table := output.NewTable(c.printer.Out(), "ID", "TITLE", "READS", "LIKES", "UNLIKES", "STATUS", "SEEN")
	for _, b := range list {
		seen := b.Interaction != nil && b.Interaction.Seen
		table.AddRow(
			strconv.FormatInt(b.ID, 10),
			b.Title,
			strconv.Itoa(b.ReadCount),
			strconv.Itoa(b.Likes),
			strconv.Itoa(b.Unlikes),
			c.printer.Flag(b.IsPublished, "published", "draft"),
			c.printer.Flag(seen, "yes", "no"),
		)
	}
	return table.Render()
}

func (c *cliContext) printBlog(b *blogs.Blog, comments []*blogs.Comment, attachments []*blogs.Attachment) error {
	if c.opts.json {
		return c.writeJSON(struct {
			*blogs.Blog
			Comments    []*blogs.Comment    `json:"comments,omitempty"`
			Attachments []*blogs.Attachment `json:"attachments,omitempty"`
		}{b, comments, attachments})
	}
	c.printer.Header(b.Title)
	c.printer.Field("id", b.ID)
	c.printer.Field("author", b.AuthorID)
	c.printer.Field("status", c.printer.Flag(b.IsPublished, "published", "draft"))
	if b.IsBlocked {
		c.printer.Field("moderation", c.printer.Flag(false, "", "blocked"))
	}
	c.printer.Field("reads", b.ReadCount)
	c.printer.Field("likes", fmt.Sprintf("%d / %d", b.Likes, b.Unlikes))
	if b.Interaction != nil && b.Interaction.Liked != nil {
		c.printer.Field("you", c.printer.Flag(utils.Value(b.Interaction.Liked), "liked", "unliked"))
	}
	if b.Image != "" {
		c.printer.Field("image", b.Image)
	}
	if !b.CreatedAt.IsZero() {
		c.printer.Field("created", b.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	c.printer.Print("\n%s", b.Content)

	if len(attachments) > 0 {
		c.printer.Header("Attachments")
		for _, a := range attachments {
			c.printer.Print("  %d  %s", a.ID, a.FileURL)
		}
	}
	if len(comments) > 0 {
		c.printer.Header("Comments")
		return c.printComments(comments)
	}
	return nil
}

func newBlogsCmd(c *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "blogs",
		Aliases: []string{"blog"},
		Short:   "Read and write blogs",
	}
	cmd.AddCommand(
		newBlogsListCmd(c),
		newBlogsShowCmd(c),
		newBlogsCreateCmd(c),
		newBlogsEditCmd(c),
		newBlogsDeleteCmd(c),
		newBlogsReactCmd(c, "like"),
		newBlogsReactCmd(c, "unlike"),
		newBlogsSeenCmd(c),
		newBlogsBlockCmd(c),
		newAttachmentsCmd(c),
	)
	return cmd
}

func newBlogsListCmd(c *cliContext) *cobra.Command {
	var skip, limit, pages int
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List blogs, newest first",
		Args:    cobra.NoArgs,
	}
	cmd.RunE = c.run(func(ctx context.Context, app *App, _ []string) error {
		if limit <= 0 {
			limit = blogs.DefaultPageSize
		}
		for page := 0; page < max(pages, 1); page++ {
			offset := skip + page*limit
			list, err := app.Blogs.List(ctx, offset, limit)
			if err != nil {
				return err
			}
			app.BlogState.ApplyList(offset, list)
			if len(list) < limit {
				break
			}
		}
		return c.printBlogs(app.BlogState.Items())
	})
	cmd.Flags().IntVar(&skip, "skip", 0, "number of blogs to skip")
	cmd.Flags().IntVar(&limit, "limit", blogs.DefaultPageSize, "page size")
	cmd.Flags().IntVar(&pages, "pages", 1, "number of pages to fetch")
	return cmd
}

func newBlogsShowCmd(c *cliContext) *cobra.Command {
	var noSeen bool
	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show a blog with its attachments and comments",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = c.run(func(ctx context.Context, app *App, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		b, err := app.Blogs.Get(ctx, id)
		if err != nil {
			return err
		}
		app.BlogState.Select(b)

		// reads are only recorded for signed-in readers
		if cred, _ := app.Session.Credential(ctx); !noSeen && cred != "" {
			if receipt, err := app.Blogs.MarkSeen(ctx, id); err == nil {
				app.BlogState.ApplySeen(*receipt)
			} else {
				c.logger.Debug().Err(err).Int64("blog_id", id).Msg("mark seen")
			}
		}

		attachments, err := app.Blogs.ListAttachments(ctx, id)
		if err != nil {
			return err
		}
		app.BlogState.ApplyAttachments(attachments)

		comments, err := app.Blogs.ListComments(ctx, id, 0, 0)
		if err != nil {
			return err
		}
		app.BlogState.ApplyComments(0, comments)

		return c.printBlog(app.BlogState.Selected(), app.BlogState.Comments(), app.BlogState.Attachments())
	})
	cmd.Flags().BoolVar(&noSeen, "no-seen", false, "do not record a read")
	return cmd
}

func newBlogsCreateCmd(c *cliContext) *cobra.Command {
	var nb blogs.NewBlog
	var draft bool
	var image, attachment string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Publish a new blog",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = c.run(func(ctx context.Context, app *App, _ []string) error {
		if err := c.enter(ctx, app, "/blogs/new", false); err != nil {
			return err
		}
		nb.IsPublished = !draft

		var imageFile, attachmentFile *blogs.File
		if image != "" {
			f, name, err := openFile(image)
			if err != nil {
				return err
			}
			defer f.Close()
			imageFile = &blogs.File{Name: name, Content: f}
		}
		if attachment != "" {
			f, name, err := openFile(attachment)
			if err != nil {
				return err
			}
			defer f.Close()
			attachmentFile = &blogs.File{Name: name, Content: f}
		}

		b, err := app.Blogs.Create(ctx, nb, imageFile, attachmentFile)
		if b != nil {
			app.BlogState.ApplyCreated(b)
			c.printer.Success("created blog %d", b.ID)
		}
		return err
	})
	cmd.Flags().StringVar(&nb.Title, "title", "", "blog title")
	cmd.Flags().StringVar(&nb.Content, "content", "", "blog body")
	cmd.Flags().BoolVar(&draft, "draft", false, "save without publishing")
	cmd.Flags().StringVar(&image, "image", "", "cover image to upload")
	cmd.Flags().StringVar(&attachment, "attachment", "", "file to attach")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("content")
	return cmd
}

func newBlogsEditCmd(c *cliContext) *cobra.Command {
	var title, content, image string
	var published bool
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a blog's title, content, image or status",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = c.run(func(ctx context.Context, app *App, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := c.enter(ctx, app, blogRoute(id), false); err != nil {
			return err
		}

		var upd blogs.BlogUpdate
		if cmd.Flags().Changed("title") {
			upd.Title = utils.Ptr(title)
		}
		if cmd.Flags().Changed("content") {
			upd.Content = utils.Ptr(content)
		}
		if cmd.Flags().Changed("published") {
			upd.IsPublished = utils.Ptr(published)
		}
		var imageFile *blogs.File
		if image != "" {
			f, name, err := openFile(image)
			if err != nil {
				return err
			}
			defer f.Close()
			imageFile = &blogs.File{Name: name, Content: f}
		}

		b, err := app.Blogs.Update(ctx, id, upd, imageFile)
		if err != nil {
			return err
		}
		app.BlogState.ApplyUpdated(b)
		c.printer.Success("updated blog %d", b.ID)
		return nil
	})
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&content, "content", "", "new body")
	cmd.Flags().BoolVar(&published, "published", true, "publish or unpublish")
	cmd.Flags().StringVar(&image, "image", "", "replacement cover image")
	return cmd
}

func newBlogsDeleteCmd(c *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete a blog",
		Args:    cobra.ExactArgs(1),
	}
	cmd.RunE = c.run(func(ctx context.Context, app *App, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := c.enter(ctx, app, blogRoute(id), false); err != nil {
			return err
		}
		if err := app.Blogs.Delete(ctx, id); err != nil {
			return err
		}
		app.BlogState.ApplyDeleted(id)
		c.printer.Success("deleted blog %d", id)
		return nil
	})
	return cmd
}

func newBlogsReactCmd(c *cliContext, action string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   action + " ID",
		Short: fmt.Sprintf("Record a %s on a blog", action),
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = c.run(func(ctx context.Context, app *App, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := c.enter(ctx, app, blogRoute(id), false); err != nil {
			return err
		}
		react := app.Blogs.Like
		if action == "unlike" {
			react = app.Blogs.Unlike
		}
		b, err := react(ctx, id)
		if err != nil {
			return err
		}
		app.BlogState.ApplyUpdated(b)
		c.printer.Success("%s recorded on blog %d (%d likes, %d unlikes)", action, b.ID, b.Likes, b.Unlikes)
		return nil
	})
	return cmd
}

func newBlogsSeenCmd(c *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seen ID",
		Short: "Mark a blog as read",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = c.run(func(ctx context.Context, app *App, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := c.enter(ctx, app, blogRoute(id), false); err != nil {
			return err
		}
		receipt, err := app.Blogs.MarkSeen(ctx, id)
		if err != nil {
			return err
		}
		app.BlogState.ApplySeen(*receipt)
		c.printer.Success("blog %d read %d times", receipt.ID, receipt.ReadCount)
		return nil
	})
	return cmd
}

func newBlogsBlockCmd(c *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "block ID",
		Short: "Block a blog (administrators)",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = c.run(func(ctx context.Context, app *App, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := c.enter(ctx, app, "/admin/blogs", true); err != nil {
			return err
		}
		b, err := app.Blogs.Block(ctx, id)
		if err != nil {
			return err
		}
		app.BlogState.ApplyUpdated(b)
		c.printer.Success("blog %d %s", b.ID, c.printer.Flag(!b.IsBlocked, "unblocked", "blocked"))
		return nil
	})
	return cmd
}
