// Package blogs reads and writes blog posts, their comments and their attachments.
package blogs

import (
	"fmt"
	"strings"
	"time"

	"github.com/jrsteele09/go-blog-client/users"
)

// DefaultPageSize is used when a listing does not ask for a limit
const DefaultPageSize = 10

// Interaction is how the signed-in reader has engaged with a blog
type Interaction struct {
	Seen  bool  `json:"seen"`
	Liked *bool `json:"liked"` // nil when the reader neither liked nor unliked
}

type Blog struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Content     string       `json:"content"`
	Image       string       `json:"image,omitempty"`
	AuthorID    int64        `json:"author_id"`
	IsPublished bool         `json:"is_published"`
	IsBlocked   bool         `json:"is_blocked"`
	ReadCount   int          `json:"read_count"`
	Likes       int          `json:"likes"`
	Unlikes     int          `json:"unlikes"`
	Interaction *Interaction `json:"interaction,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Clone returns a deep copy
func (b *Blog) Clone() *Blog {
	if b == nil {
		return nil
	}
	c := *b
	if b.Interaction != nil {
		i := *b.Interaction
		if b.Interaction.Liked != nil {
			liked := *b.Interaction.Liked
			i.Liked = &liked
		}
		c.Interaction = &i
	}
	return &c
}

// NewBlog is the payload for creating a blog
type NewBlog struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Image       string `json:"image,omitempty"`
	IsPublished bool   `json:"is_published"`
}

func (n NewBlog) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if strings.TrimSpace(n.Content) == "" {
		return fmt.Errorf("content is required")
	}
	return nil
}

// BlogUpdate is a partial update; nil fields are left unchanged
type BlogUpdate struct {
	Title       *string `json:"title,omitempty"`
	Content     *string `json:"content,omitempty"`
	Image       *string `json:"image,omitempty"`
	IsPublished *bool   `json:"is_published,omitempty"`
}

func (u BlogUpdate) Empty() bool {
	return u.Title == nil && u.Content == nil && u.Image == nil && u.IsPublished == nil
}

// SeenReceipt is what the service returns after a blog is marked as read
type SeenReceipt struct {
	ID        int64 `json:"id"`
	ReadCount int   `json:"read_count"`
}

type Comment struct {
	ID         int64       `json:"id"`
	BlogID     int64       `json:"blog_id,omitempty"`
	Content    string      `json:"content"`
	IsApproved bool        `json:"is_approved"`
	User       *users.User `json:"user,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

type Attachment struct {
	ID      int64  `json:"id"`
	BlogID  int64  `json:"blog_id,omitempty"`
	FileURL string `json:"file_url"`
}

func (c *Comment) Clone() *Comment {
	if c == nil {
		return nil
	}
	cc := *c
	cc.User = c.User.Clone()
	return &cc
}

func (a *Attachment) Clone() *Attachment {
	if a == nil {
		return nil
	}
	ac := *a
	return &ac
}
