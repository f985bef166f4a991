package blogs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jrsteele09/go-blog-client/apiclient"
	"github.com/jrsteele09/go-blog-client/internal/errors"
	"github.com/jrsteele09/go-blog-client/internal/utils"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Uploader puts a file on the file host and returns its public URL
type Uploader interface {
	Upload(ctx context.Context, filename string, content io.Reader) (string, error)
}

// File is a local file to be uploaded alongside a blog operation
type File struct {
	Name    string
	Content io.Reader
}

type Service struct {
	api      *apiclient.Client
	uploader Uploader
	logger   zerolog.Logger
}

type Option func(*Service)

func WithUploader(u Uploader) Option {
	return func(s *Service) {
		s.uploader = u
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(api *apiclient.Client, opts ...Option) *Service {
	s := &Service{api: api, logger: log.Logger}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("component", "blogs").Logger()
	return s
}

func pageQuery(skip, limit int) url.Values {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	return url.Values{
		"skip":  []string{strconv.Itoa(skip)},
		"limit": []string{strconv.Itoa(limit)},
	}
}

// List returns one page of the feed
func (s *Service) List(ctx context.Context, skip, limit int) ([]*Blog, error) {
	var page []*Blog
	if err := s.api.GetJSON(ctx, RouteBlogs, pageQuery(skip, limit), &page); err != nil {
		return nil, fmt.Errorf("[blogs List] %w", err)
	}
	return page, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Blog, error) {
	var b Blog
	if err := s.api.GetJSON(ctx, blogPath(id), nil, &b); err != nil {
		return nil, fmt.Errorf("[blogs Get] blog %d: %w", id, err)
	}
	return &b, nil
}

// Create publishes a blog. A cover image is uploaded first and an attachment, when
// given, is registered against the new blog afterwards.
func (s *Service) Create(ctx context.Context, nb NewBlog, image, attachment *File) (*Blog, error) {
	if err := nb.Validate(); err != nil {
		return nil, fmt.Errorf("[blogs Create] %w: %v", errors.ErrInvalidInput, err)
	}
	if image != nil {
		imageURL, err := s.upload(ctx, image)
		if err != nil {
			return nil, fmt.Errorf("[blogs Create] image: %w", err)
		}
		nb.Image = imageURL
	}

	var b Blog
	if err := s.api.SendJSON(ctx, http.MethodPost, RouteBlogs, nb, &b); err != nil {
		return nil, fmt.Errorf("[blogs Create] %w", err)
	}

	if attachment != nil {
		if _, err := s.CreateAttachment(ctx, b.ID, *attachment); err != nil {
			return &b, fmt.Errorf("[blogs Create] blog %d created without attachment: %w", b.ID, err)
		}
	}
	s.logger.Info().Int64("blog_id", b.ID).Msg("blog created")
	return &b, nil
}

// Update applies a partial update. A replacement image file takes precedence over
// upd.Image.
func (s *Service) Update(ctx context.Context, id int64, upd BlogUpdate, image *File) (*Blog, error) {
	if image != nil {
		imageURL, err := s.upload(ctx, image)
		if err != nil {
			return nil, fmt.Errorf("[blogs Update] image: %w", err)
		}
		upd.Image = utils.Ptr(imageURL)
	}
	if upd.Empty() {
		return nil, fmt.Errorf("[blogs Update] nothing to update: %w", errors.ErrInvalidInput)
	}

	var b Blog
	if err := s.api.SendJSON(ctx, http.MethodPatch, blogPath(id), upd, &b); err != nil {
		return nil, fmt.Errorf("[blogs Update] blog %d: %w", id, err)
	}
	return &b, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.api.SendJSON(ctx, http.MethodDelete, blogPath(id), nil, nil); err != nil {
		return fmt.Errorf("[blogs Delete] blog %d: %w", id, err)
	}
	return nil
}

// MarkSeen records a read of the blog by the signed-in reader
func (s *Service) MarkSeen(ctx context.Context, id int64) (*SeenReceipt, error) {
	var r SeenReceipt
	if err := s.api.SendJSON(ctx, http.MethodPost, blogActionPath(id, "seen"), nil, &r); err != nil {
		return nil, fmt.Errorf("[blogs MarkSeen] blog %d: %w", id, err)
	}
	if r.ID == 0 {
		r.ID = id
	}
	return &r, nil
}

func (s *Service) Like(ctx context.Context, id int64) (*Blog, error) {
	return s.react(ctx, id, "like")
}

func (s *Service) Unlike(ctx context.Context, id int64) (*Blog, error) {
	return s.react(ctx, id, "unlike")
}

func (s *Service) react(ctx context.Context, id int64, action string) (*Blog, error) {
	var b Blog
	if err := s.api.SendJSON(ctx, http.MethodPost, blogActionPath(id, action), nil, &b); err != nil {
		return nil, fmt.Errorf("[blogs %s] blog %d: %w", action, id, err)
	}
	return &b, nil
}

// Block hides a blog from the feed. Superusers only.
func (s *Service) Block(ctx context.Context, id int64) (*Blog, error) {
	var b Blog
	if err := s.api.SendJSON(ctx, http.MethodPatch, blockPath(id), nil, &b); err != nil {
		return nil, fmt.Errorf("[blogs Block] blog %d: %w", id, err)
	}
	return &b, nil
}

func (s *Service) upload(ctx context.Context, f *File) (string, error) {
	if s.uploader == nil {
		return "", fmt.Errorf("no uploader configured: %w", errors.ErrUnsupported)
	}
	return s.uploader.Upload(ctx, f.Name, f.Content)
}
