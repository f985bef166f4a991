// Package store keeps the client-side cache of blogs and users and folds service
// results into it. All state is copied on the way in and on the way out.
package store

import (
	"slices"
	"sync"

	"github.com/jrsteele09/go-blog-client/blogs"
)

// BlogState is the feed, the blog currently open, and that blog's comments and
// attachments.
type BlogState struct {
	lock        sync.RWMutex
	items       []*blogs.Blog
	selected    *blogs.Blog
	comments    []*blogs.Comment
	attachments []*blogs.Attachment
}

func NewBlogState() *BlogState {
	return &BlogState{}
}

// Items returns a copy of the feed in display order
func (s *BlogState) Items() []*blogs.Blog {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return cloneAll(s.items)
}

func (s *BlogState) Selected() *blogs.Blog {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.selected.Clone()
}

func (s *BlogState) Comments() []*blogs.Comment {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return cloneAll(s.comments)
}

func (s *BlogState) Attachments() []*blogs.Attachment {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return cloneAll(s.attachments)
}

// ApplyList folds a fetched page into the feed. The first page replaces the feed;
// later pages append only blogs not already present.
func (s *BlogState) ApplyList(skip int, page []*blogs.Blog) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if skip == 0 {
		s.items = cloneAll(page)
		return
	}
	seen := make(map[int64]struct{}, len(s.items))
	for _, b := range s.items {
		seen[b.ID] = struct{}{}
	}
	for _, b := range page {
		if _, ok := seen[b.ID]; ok {
			continue
		}
		seen[b.ID] = struct{}{}
		s.items = append(s.items, b.Clone())
	}
}

// ApplyCreated puts a new blog at the top of the feed
func (s *BlogState) ApplyCreated(b *blogs.Blog) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.items = append([]*blogs.Blog{b.Clone()}, s.items...)
}

// ApplyUpdated replaces the blog wherever it is cached. Likes, unlikes and blocks
// return the full blog and are folded in the same way.
func (s *BlogState) ApplyUpdated(b *blogs.Blog) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if i := s.indexOf(b.ID); i >= 0 {
		s.items[i] = b.Clone()
	}
	if s.selected != nil && s.selected.ID == b.ID {
		s.selected = b.Clone()
	}
}

func (s *BlogState) ApplyDeleted(id int64) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.items = slices.DeleteFunc(s.items, func(b *blogs.Blog) bool { return b.ID == id })
	if s.selected != nil && s.selected.ID == id {
		s.selected = nil
	}
}

// ApplySeen records a read: the count comes from the server and the blog is
// flagged as seen if it carries interaction data.
func (s *BlogState) ApplySeen(r blogs.SeenReceipt) {
	s.lock.Lock()
	defer s.lock.Unlock()

	mark := func(b *blogs.Blog) {
		b.ReadCount = r.ReadCount
		if b.Interaction != nil {
			b.Interaction.Seen = true
		}
	}
	if i := s.indexOf(r.ID); i >= 0 {
		mark(s.items[i])
	}
	if s.selected != nil && s.selected.ID == r.ID {
		mark(s.selected)
	}
}

// Select opens a blog. Comments and attachments of a previously open blog are dropped.
func (s *BlogState) Select(b *blogs.Blog) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.selected == nil || b == nil || s.selected.ID != b.ID {
		s.comments = nil
		s.attachments = nil
	}
	s.selected = b.Clone()
}

func (s *BlogState) ClearSelected() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.selected = nil
	s.comments = nil
	s.attachments = nil
}

// ApplyComments replaces the comments on the first page and appends later pages
func (s *BlogState) ApplyComments(skip int, page []*blogs.Comment) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if skip == 0 {
		s.comments = cloneAll(page)
		return
	}
	s.comments = append(s.comments, cloneAll(page)...)
}

// ApplyCommentCreated appends, keeping comments in conversation order
func (s *BlogState) ApplyCommentCreated(c *blogs.Comment) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.comments = append(s.comments, c.Clone())
}

// ApplyCommentUpdated also covers approval toggles
func (s *BlogState) ApplyCommentUpdated(c *blogs.Comment) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if i := slices.IndexFunc(s.comments, func(x *blogs.Comment) bool { return x.ID == c.ID }); i >= 0 {
		s.comments[i] = c.Clone()
	}
}

func (s *BlogState) ApplyCommentDeleted(id int64) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.comments = slices.DeleteFunc(s.comments, func(c *blogs.Comment) bool { return c.ID == id })
}

func (s *BlogState) ApplyAttachments(list []*blogs.Attachment) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.attachments = cloneAll(list)
}

func (s *BlogState) ApplyAttachmentCreated(a *blogs.Attachment) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.attachments = append(s.attachments, a.Clone())
}

func (s *BlogState) ApplyAttachmentDeleted(id int64) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.attachments = slices.DeleteFunc(s.attachments, func(a *blogs.Attachment) bool { return a.ID == id })
}

func (s *BlogState) indexOf(id int64) int {
	return slices.IndexFunc(s.items, func(b *blogs.Blog) bool { return b.ID == id })
}

type cloner[T any] interface {
	Clone() T
}

func cloneAll[T cloner[T]](list []T) []T {
	out := make([]T, 0, len(list))
	for _, v := range list {
		out = append(out, v.Clone())
	}
	return out
}
