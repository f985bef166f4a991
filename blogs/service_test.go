package blogs_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/jrsteele09/go-blog-client/apiclient"
	"github.com/jrsteele09/go-blog-client/blogs"
	"github.com/jrsteele09/go-blog-client/credentials/memstore"
	"github.com/jrsteele09/go-blog-client/internal/errors"
	"github.com/jrsteele09/go-blog-client/internal/utils"
	"github.com/jrsteele09/go-blog-client/navigation"
	"github.com/jrsteele09/go-blog-client/sessions"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	lock  sync.Mutex
	names []string
}

func (f *fakeUploader) Upload(_ context.Context, filename string, content io.Reader) (string, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if _, err := io.ReadAll(content); err != nil {
		return "", err
	}
	f.names = append(f.names, filename)
	return "https://files.example.com/" + filename, nil
}

type fixture struct {
	mux      *http.ServeMux
	uploader *fakeUploader
	service  *blogs.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{mux: http.NewServeMux(), uploader: &fakeUploader{}}
	srv := httptest.NewServer(f.mux)
	t.Cleanup(srv.Close)

	session := sessions.New(memstore.New())
	require.NoError(t, session.SetCredential(context.Background(), "tok"))
	api := apiclient.New(srv.URL, session, nil, navigation.NewHistory(navigation.RouteHome),
		apiclient.WithLogger(zerolog.Nop()))
	f.service = blogs.NewService(api, blogs.WithUploader(f.uploader), blogs.WithLogger(zerolog.Nop()))
	return f
}

// bodies hands request payloads from the fake API to the test goroutine
type bodies chan map[string]any

func (b bodies) last(t *testing.T) map[string]any {
	t.Helper()
	select {
	case body := <-b:
		return body
	default:
		require.FailNow(t, "no request body captured")
		return nil
	}
}

func decode(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	body := map[string]any{}
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return body
}

func TestList(t *testing.T) {
	f := newFixture(t)
	f.mux.HandleFunc("GET "+blogs.RouteBlogs, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": 1, "title": r.URL.Query().Get("skip"), "interaction": map[string]any{"seen": true, "liked": nil}},
			{"id": 2, "title": r.URL.Query().Get("limit")},
		})
	})

	page, err := f.service.List(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, "0", page[0].Title)
	require.Equal(t, "10", page[1].Title)
	require.True(t, page[0].Interaction.Seen)
	require.Nil(t, page[0].Interaction.Liked)
	require.Nil(t, page[1].Interaction)

	page, err = f.service.List(context.Background(), 20, 5)
	require.NoError(t, err)
	require.Equal(t, "20", page[0].Title)
	require.Equal(t, "5", page[1].Title)
}

func TestGet_NotFound(t *testing.T) {
	f := newFixture(t)
	f.mux.HandleFunc("GET /blogs/42", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Blog not found"}`))
	})

	_, err := f.service.Get(context.Background(), 42)
	require.ErrorIs(t, err, errors.ErrNotFound)
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	created, attached := make(bodies, 1), make(bodies, 1)
	f.mux.HandleFunc("POST "+blogs.RouteBlogs, func(w http.ResponseWriter, r *http.Request) {
		created <- decode(t, r)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":3,"title":"Hello","is_published":true}`))
	})
	f.mux.HandleFunc("POST /blogs/3/attachments", func(w http.ResponseWriter, r *http.Request) {
		attached <- decode(t, r)
		_, _ = w.Write([]byte(`{"id":30,"file_url":"https://files.example.com/notes.pdf"}`))
	})

	b, err := f.service.Create(context.Background(),
		blogs.NewBlog{Title: "Hello", Content: "World", IsPublished: true},
		&blogs.File{Name: "cover.png", Content: strings.NewReader("png")},
		&blogs.File{Name: "notes.pdf", Content: strings.NewReader("pdf")})
	require.NoError(t, err)
	require.Equal(t, int64(3), b.ID)
	require.Equal(t, "https://files.example.com/cover.png", created.last(t)["image"])
	require.Equal(t, "https://files.example.com/notes.pdf", attached.last(t)["file_url"])
	require.Equal(t, []string{"cover.png", "notes.pdf"}, f.uploader.names)

	_, err = f.service.Create(context.Background(), blogs.NewBlog{Title: " ", Content: "x"}, nil, nil)
	require.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestUpdate_Partial(t *testing.T) {
	f := newFixture(t)
	got := make(bodies, 1)
	f.mux.HandleFunc("PATCH /blogs/3", func(w http.ResponseWriter, r *http.Request) {
		got <- decode(t, r)
		_, _ = w.Write([]byte(`{"id":3,"title":"New","is_published":false}`))
	})

	b, err := f.service.Update(context.Background(), 3, blogs.BlogUpdate{
		Title:       utils.Ptr("New"),
		IsPublished: utils.Ptr(false),
	}, nil)
	require.NoError(t, err)
	require.Equal(t, "New", b.Title)
	require.Equal(t, map[string]any{"title": "New", "is_published": false}, got.last(t))

	_, err = f.service.Update(context.Background(), 3, blogs.BlogUpdate{}, &blogs.File{Name: "new.png", Content: strings.NewReader("png")})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"image": "https://files.example.com/new.png"}, got.last(t))

	_, err = f.service.Update(context.Background(), 3, blogs.BlogUpdate{}, nil)
	require.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestInteractions(t *testing.T) {
	f := newFixture(t)
	f.mux.HandleFunc("POST /blogs/3/seen", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":3,"read_count":12}`))
	})
	f.mux.HandleFunc("POST /blogs/3/like", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":3,"likes":1,"interaction":{"seen":true,"liked":true}}`))
	})
	f.mux.HandleFunc("POST /blogs/3/unlike", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":3,"unlikes":1,"interaction":{"seen":true,"liked":false}}`))
	})
	f.mux.HandleFunc("PATCH /admin/blogs/3/block", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":3,"is_blocked":true}`))
	})
	f.mux.HandleFunc("DELETE /blogs/3", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	receipt, err := f.service.MarkSeen(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, blogs.SeenReceipt{ID: 3, ReadCount: 12}, *receipt)

	b, err := f.service.Like(context.Background(), 3)
	require.NoError(t, err)
	require.True(t, utils.Value(b.Interaction.Liked))

	b, err = f.service.Unlike(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, 1, b.Unlikes)
	require.False(t, utils.Value(b.Interaction.Liked))

	b, err = f.service.Block(context.Background(), 3)
	require.NoError(t, err)
	require.True(t, b.IsBlocked)

	require.NoError(t, f.service.Delete(context.Background(), 3))
}

func TestComments(t *testing.T) {
	f := newFixture(t)
	f.mux.HandleFunc("GET /blogs/3/comments", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "0", r.URL.Query().Get("skip"))
		_, _ = w.Write([]byte(`[{"id":1,"content":"first","is_approved":true,"user":{"id":7,"username":"jane"}}]`))
	})
	f.mux.HandleFunc("POST /blogs/3/comments", func(w http.ResponseWriter, r *http.Request) {
		body := decode(t, r)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 2, "content": body["content"]})
	})
	f.mux.HandleFunc("PATCH /comments/2", func(w http.ResponseWriter, r *http.Request) {
		body := decode(t, r)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 2, "content": body["content"]})
	})
	f.mux.HandleFunc("PATCH /admin/comments/2/toggle-approval", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":2,"content":"edited","is_approved":true}`))
	})
	f.mux.HandleFunc("DELETE /comments/2", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	list, err := f.service.ListComments(context.Background(), 3, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "jane", list[0].User.Username)

	c, err := f.service.CreateComment(context.Background(), 3, "second")
	require.NoError(t, err)
	require.Equal(t, "second", c.Content)

	_, err = f.service.CreateComment(context.Background(), 3, "   ")
	require.ErrorIs(t, err, errors.ErrInvalidInput)

	c, err = f.service.UpdateComment(context.Background(), 2, "edited")
	require.NoError(t, err)
	require.Equal(t, "edited", c.Content)

	c, err = f.service.ToggleCommentApproval(context.Background(), 2)
	require.NoError(t, err)
	require.True(t, c.IsApproved)

	require.NoError(t, f.service.DeleteComment(context.Background(), 2))
}

func TestAttachments(t *testing.T) {
	f := newFixture(t)
	f.mux.HandleFunc("GET /blogs/3/attachments", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":30,"file_url":"https://files.example.com/a.pdf"}]`))
	})
	f.mux.HandleFunc("DELETE /attachments/30", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"detail":"Not the author"}`))
	})

	list, err := f.service.ListAttachments(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, list, 1)

	err = f.service.DeleteAttachment(context.Background(), 30)
	require.ErrorIs(t, err, errors.ErrForbidden)
	require.NotErrorIs(t, err, errors.ErrAccountInactive)
}

func TestWithoutUploader(t *testing.T) {
	srv := httptest.NewServer(http.NewServeMux())
	t.Cleanup(srv.Close)
	api := apiclient.New(srv.URL, sessions.New(memstore.New()), nil, navigation.NewHistory("/"),
		apiclient.WithLogger(zerolog.Nop()))

	_, err := blogs.NewService(api).CreateAttachment(context.Background(), 1, blogs.File{Name: "x", Content: strings.NewReader("x")})
	require.ErrorIs(t, err, errors.ErrUnsupported)
}

func TestBlogClone(t *testing.T) {
	b := &blogs.Blog{ID: 1, Interaction: &blogs.Interaction{Seen: true, Liked: utils.Ptr(true)}}
	c := b.Clone()
	c.Interaction.Seen = false
	*c.Interaction.Liked = false
	require.True(t, b.Interaction.Seen)
	require.True(t, *b.Interaction.Liked)
}
