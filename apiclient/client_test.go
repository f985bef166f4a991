package apiclient_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-blog-client/apiclient"
	"github.com/jrsteele09/go-blog-client/credentials/memstore"
	"github.com/jrsteele09/go-blog-client/internal/errors"
	"github.com/jrsteele09/go-blog-client/metrics"
	"github.com/jrsteele09/go-blog-client/navigation"
	"github.com/jrsteele09/go-blog-client/sessions"
	"github.com/jrsteele09/go-blog-client/token/refresh"
	"github.com/jrsteele09/go-blog-client/users"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	oldToken = "old-token"
	newToken = "new-token"
)

// testFixture holds a client wired to a fake blog API
type testFixture struct {
	srv          *httptest.Server
	mux          *http.ServeMux
	store        *memstore.MemStore
	session      *sessions.Context
	nav          *navigation.History
	metrics      *metrics.Metrics
	client       *apiclient.Client
	refreshCalls atomic.Int32
	replyLock    sync.Mutex
	refreshReply func(w http.ResponseWriter)
}

func (f *testFixture) setRefreshReply(reply func(w http.ResponseWriter)) {
	f.replyLock.Lock()
	defer f.replyLock.Unlock()
	f.refreshReply = reply
}

// recorder captures what the fake API saw on a route
type recorder struct {
	lock       sync.Mutex
	auth       []string
	requestIDs []string
}

func (r *recorder) record(req *http.Request) int {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.auth = append(r.auth, req.Header.Get("Authorization"))
	r.requestIDs = append(r.requestIDs, req.Header.Get("X-Request-ID"))
	return len(r.auth)
}

func (r *recorder) calls() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return len(r.auth)
}

func (r *recorder) authHeaders() []string {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]string(nil), r.auth...)
}

func setupFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{mux: http.NewServeMux()}
	f.refreshReply = func(w http.ResponseWriter) {
		writeJSON(w, http.StatusOK, map[string]string{"access": newToken})
	}
	f.mux.HandleFunc("POST /auth/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		f.refreshCalls.Add(1)
		f.replyLock.Lock()
		reply := f.refreshReply
		f.replyLock.Unlock()
		reply(w)
	})
	f.srv = httptest.NewServer(f.mux)
	t.Cleanup(f.srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	hc := &http.Client{Jar: jar}

	f.store = memstore.New()
	f.session = sessions.New(f.store)
	f.nav = navigation.NewHistory("/blogs/5")
	f.metrics = metrics.New(prometheus.NewRegistry())

	refresher := refresh.NewClient(hc, f.srv.URL+"/", "auth/token/refresh/", zerolog.Nop())
	f.client = apiclient.New(f.srv.URL+"/", f.session, refresher, f.nav,
		apiclient.WithHTTPClient(hc),
		apiclient.WithLogger(zerolog.Nop()),
		apiclient.WithMetrics(f.metrics),
	)
	return f
}

func (f *testFixture) signIn(t *testing.T, credential string) {
	t.Helper()
	err := f.session.Establish(context.Background(), credential, &users.User{ID: 1, Username: "jane", IsActive: true})
	require.NoError(t, err)
}

func (f *testFixture) credential(t *testing.T) string {
	t.Helper()
	cred, err := f.session.Credential(context.Background())
	require.NoError(t, err)
	return cred
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func unauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Token has expired"})
}

type blog struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

func TestDo_AttachesBearerCredential(t *testing.T) {
	f := setupFixture(t)
	rec := &recorder{}
	f.mux.HandleFunc("GET /blogs/", func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		writeJSON(w, http.StatusOK, []blog{})
	})

	_, err := f.client.Do(context.Background(), apiclient.NewRequest(http.MethodGet, "/blogs/"))
	require.NoError(t, err)

	f.signIn(t, oldToken)
	_, err = f.client.Do(context.Background(), apiclient.NewRequest(http.MethodGet, "/blogs/"))
	require.NoError(t, err)

	require.Equal(t, []string{"", "Bearer " + oldToken}, rec.authHeaders())
}

func TestDo_RefreshesOnceAndReplays(t *testing.T) {
	f := setupFixture(t)
	f.signIn(t, oldToken)

	rec := &recorder{}
	f.mux.HandleFunc("GET /blogs/5", func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		if r.Header.Get("Authorization") != "Bearer "+newToken {
			unauthorized(w)
			return
		}
		writeJSON(w, http.StatusOK, blog{ID: 5, Title: "Hello"})
	})

	var got blog
	err := f.client.GetJSON(context.Background(), "/blogs/5", nil, &got)
	require.NoError(t, err)
	require.Equal(t, blog{ID: 5, Title: "Hello"}, got)

	require.Equal(t, []string{"Bearer " + oldToken, "Bearer " + newToken}, rec.authHeaders())
	require.Equal(t, rec.requestIDs[0], rec.requestIDs[1])
	require.NotEmpty(t, rec.requestIDs[0])
	require.Equal(t, int32(1), f.refreshCalls.Load())
	require.Equal(t, newToken, f.credential(t))
	require.True(t, f.session.Authenticated())
	require.Empty(t, f.nav.Redirects())
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RefreshTotal.WithLabelValues(metrics.RefreshSuccess)))
}

func TestDo_RefreshRejectedTearsDownSession(t *testing.T) {
	f := setupFixture(t)
	f.signIn(t, oldToken)
	f.setRefreshReply(func(w http.ResponseWriter) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Refresh token expired"})
	})

	rec := &recorder{}
	f.mux.HandleFunc("GET /blogs/5", func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		unauthorized(w)
	})

	_, err := f.client.Do(context.Background(), apiclient.NewRequest(http.MethodGet, "/blogs/5"))
	require.Error(t, err)
	require.ErrorIs(t, err, errors.ErrUnauthorized)
	require.ErrorIs(t, err, refresh.ErrRefreshRejected)

	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	require.Equal(t, 1, rec.calls())
	require.Equal(t, int32(1), f.refreshCalls.Load())
	require.Empty(t, f.credential(t))
	require.False(t, f.session.Authenticated())
	require.Equal(t, []string{navigation.RouteLogin}, f.nav.Redirects())
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.TeardownTotal.WithLabelValues(metrics.TeardownRefreshFailed)))
}

func TestDo_RefreshRejectedOnSignInPathDoesNotRedirect(t *testing.T) {
	f := setupFixture(t)
	f.signIn(t, oldToken)
	f.nav.Visit(navigation.RouteLogin)
	f.setRefreshReply(func(w http.ResponseWriter) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Refresh token expired"})
	})
	f.mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) { unauthorized(w) })

	_, err := f.client.Do(context.Background(), apiclient.NewRequest(http.MethodGet, "/auth/me"))
	require.ErrorIs(t, err, errors.ErrUnauthorized)
	require.ErrorIs(t, err, refresh.ErrRefreshRejected)

	require.Equal(t, int32(1), f.refreshCalls.Load())
	require.Empty(t, f.credential(t))
	require.False(t, f.session.Authenticated())
	require.Empty(t, f.nav.Redirects())
	require.Equal(t, navigation.RouteLogin, f.nav.CurrentPath())
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.TeardownTotal.WithLabelValues(metrics.TeardownRefreshFailed)))
}

func TestDo_ReplaysWithCredentialRefreshedElsewhere(t *testing.T) {
	f := setupFixture(t)
	f.signIn(t, oldToken)

	rec := &recorder{}
	f.mux.HandleFunc("GET /blogs/5", func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		if r.Header.Get("Authorization") == "Bearer "+oldToken {
			// a concurrent request refreshes before this response arrives
			require.NoError(t, f.session.SetCredential(context.Background(), newToken))
			unauthorized(w)
			return
		}
		writeJSON(w, http.StatusOK, blog{ID: 5, Title: "Hello"})
	})

	var got blog
	require.NoError(t, f.client.GetJSON(context.Background(), "/blogs/5", nil, &got))
	require.Equal(t, int64(5), got.ID)

	require.Equal(t, []string{"Bearer " + oldToken, "Bearer " + newToken}, rec.authHeaders())
	require.Zero(t, f.refreshCalls.Load())
	require.Equal(t, newToken, f.credential(t))
	require.Empty(t, f.nav.Redirects())

	t.Run("replay still counts as the one retry", func(t *testing.T) {
		f := setupFixture(t)
		f.signIn(t, oldToken)
		rec := &recorder{}
		f.mux.HandleFunc("GET /blogs/5", func(w http.ResponseWriter, r *http.Request) {
			if rec.record(r) == 1 {
				require.NoError(t, f.session.SetCredential(context.Background(), newToken))
			}
			unauthorized(w)
		})

		_, err := f.client.Do(context.Background(), apiclient.NewRequest(http.MethodGet, "/blogs/5"))
		require.ErrorIs(t, err, errors.ErrUnauthorized)
		require.Equal(t, 2, rec.calls())
		require.Zero(t, f.refreshCalls.Load())
		require.Equal(t, newToken, f.credential(t))
		require.Empty(t, f.nav.Redirects())
	})
}

func TestDo_SecondUnauthorizedIsNotRetried(t *testing.T) {
	f := setupFixture(t)
	f.signIn(t, oldToken)

	rec := &recorder{}
	f.mux.HandleFunc("GET /blogs/5", func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		unauthorized(w)
	})

	_, err := f.client.Do(context.Background(), apiclient.NewRequest(http.MethodGet, "/blogs/5"))
	require.ErrorIs(t, err, errors.ErrUnauthorized)
	require.NotErrorIs(t, err, errors.ErrRefreshFailed)

	require.Equal(t, []string{"Bearer " + oldToken, "Bearer " + newToken}, rec.authHeaders())
	require.Equal(t, int32(1), f.refreshCalls.Load())
	require.Equal(t, newToken, f.credential(t))
	require.True(t, f.session.Authenticated())
	require.Empty(t, f.nav.Redirects())
}

func TestDo_InactiveAccount(t *testing.T) {
	inactive := func(w http.ResponseWriter) {
		writeJSON(w, http.StatusForbidden, map[string]string{"detail": "User account is inactive"})
	}

	t.Run("tears down and redirects", func(t *testing.T) {
		f := setupFixture(t)
		f.signIn(t, oldToken)
		f.mux.HandleFunc("GET /blogs/5", func(w http.ResponseWriter, r *http.Request) { inactive(w) })

		_, err := f.client.Do(context.Background(), apiclient.NewRequest(http.MethodGet, "/blogs/5"))
		require.ErrorIs(t, err, errors.ErrAccountInactive)
		require.ErrorIs(t, err, errors.ErrForbidden)
		require.Empty(t, f.credential(t))
		require.False(t, f.session.Authenticated())
		require.Equal(t, []string{navigation.RouteLogin}, f.nav.Redirects())
		require.Zero(t, f.refreshCalls.Load())
	})

	t.Run("no redirect when already on sign-in", func(t *testing.T) {
		f := setupFixture(t)
		f.signIn(t, oldToken)
		f.nav.Visit(navigation.RouteLogin)
		f.mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) { inactive(w) })

		_, err := f.client.Do(context.Background(), apiclient.NewRequest(http.MethodGet, "/auth/me"))
		require.ErrorIs(t, err, errors.ErrAccountInactive)
		require.Empty(t, f.credential(t))
		require.Empty(t, f.nav.Redirects())
	})

	t.Run("after a refresh", func(t *testing.T) {
		f := setupFixture(t)
		f.signIn(t, oldToken)
		f.mux.HandleFunc("GET /blogs/5", func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "Bearer "+oldToken {
				unauthorized(w)
				return
			}
			inactive(w)
		})

		_, err := f.client.Do(context.Background(), apiclient.NewRequest(http.MethodGet, "/blogs/5"))
		require.ErrorIs(t, err, errors.ErrAccountInactive)
		require.Equal(t, int32(1), f.refreshCalls.Load())
		require.Empty(t, f.credential(t))
		require.Equal(t, []string{navigation.RouteLogin}, f.nav.Redirects())
	})

	t.Run("code field", func(t *testing.T) {
		f := setupFixture(t)
		f.signIn(t, oldToken)
		f.mux.HandleFunc("GET /blogs/5", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusForbidden, map[string]any{"detail": map[string]string{"code": "user_inactive", "message": "Disabled"}})
		})

		_, err := f.client.Do(context.Background(), apiclient.NewRequest(http.MethodGet, "/blogs/5"))
		require.ErrorIs(t, err, errors.ErrAccountInactive)
		require.Empty(t, f.credential(t))
	})

	t.Run("deactivated wording", func(t *testing.T) {
		f := setupFixture(t)
		f.signIn(t, oldToken)
		f.mux.HandleFunc("GET /blogs/5", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusForbidden, map[string]string{"detail": "Your account has been deactivated"})
		})

		_, err := f.client.Do(context.Background(), apiclient.NewRequest(http.MethodGet, "/blogs/5"))
		require.ErrorIs(t, err, errors.ErrAccountInactive)
		require.Empty(t, f.credential(t))
		require.Equal(t, []string{navigation.RouteLogin}, f.nav.Redirects())
	})
}

func TestDo_ForbiddenOnInactiveResourceKeepsSession(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]string
	}{
		{"inactive blog", map[string]string{"detail": "Cannot comment on an inactive blog"}},
		{"inactive comment", map[string]string{"detail": "This comment is inactive"}},
		{"resource code", map[string]string{"detail": "Blocked", "code": "blog_inactive"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupFixture(t)
			f.signIn(t, oldToken)
			f.mux.HandleFunc("POST /blogs/5/comments", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusForbidden, tt.payload)
			})

			err := f.client.SendJSON(context.Background(), http.MethodPost, "/blogs/5/comments", map[string]string{"content": "hi"}, nil)
			require.ErrorIs(t, err, errors.ErrForbidden)
			require.NotErrorIs(t, err, errors.ErrAccountInactive)

			require.Equal(t, oldToken, f.credential(t))
			require.True(t, f.session.Authenticated())
			require.Empty(t, f.nav.Redirects())
			require.Zero(t, f.refreshCalls.Load())
			require.Zero(t, testutil.ToFloat64(f.metrics.TeardownTotal.WithLabelValues(metrics.TeardownInactive)))
		})
	}
}

func TestDo_OtherErrorsPropagate(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		detail  string
		wantErr error
	}{
		{"forbidden", http.StatusForbidden, "Not the author", errors.ErrForbidden},
		{"not found", http.StatusNotFound, "Blog not found", errors.ErrNotFound},
		{"validation", http.StatusUnprocessableEntity, "title required", errors.ErrInvalidInput},
		{"server error", http.StatusInternalServerError, "boom", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupFixture(t)
			f.signIn(t, oldToken)
			rec := &recorder{}
			f.mux.HandleFunc("GET /blogs/5", func(w http.ResponseWriter, r *http.Request) {
				rec.record(r)
				writeJSON(w, tt.status, map[string]string{"detail": tt.detail})
			})

			_, err := f.client.Do(context.Background(), apiclient.NewRequest(http.MethodGet, "/blogs/5"))
			var apiErr *apiclient.APIError
			require.ErrorAs(t, err, &apiErr)
			require.Equal(t, tt.status, apiErr.StatusCode)
			require.Equal(t, tt.detail, apiErr.Detail)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			}
			require.NotErrorIs(t, err, errors.ErrAccountInactive)

			require.Equal(t, 1, rec.calls())
			require.Zero(t, f.refreshCalls.Load())
			require.Equal(t, oldToken, f.credential(t))
			require.Empty(t, f.nav.Redirects())
		})
	}
}

func TestDo_NetworkErrorIsNotRetried(t *testing.T) {
	f := setupFixture(t)
	f.signIn(t, oldToken)
	f.srv.Close()

	_, err := f.client.Do(context.Background(), apiclient.NewRequest(http.MethodGet, "/blogs/5"))
	require.Error(t, err)
	var apiErr *apiclient.APIError
	require.False(t, errors.As(err, &apiErr))
	require.Zero(t, f.refreshCalls.Load())
	require.Equal(t, oldToken, f.credential(t))
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RequestsTotal.WithLabelValues(http.MethodGet, "error")))
}

func TestDo_AfterLogoutNoAuthorizationHeader(t *testing.T) {
	f := setupFixture(t)
	f.signIn(t, oldToken)
	require.NoError(t, f.session.Clear(context.Background()))

	rec := &recorder{}
	f.mux.HandleFunc("GET /blogs/", func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		writeJSON(w, http.StatusOK, []blog{})
	})

	_, err := f.client.Do(context.Background(), apiclient.NewRequest(http.MethodGet, "/blogs/"))
	require.NoError(t, err)
	require.Equal(t, []string{""}, rec.authHeaders())
}

func TestDo_AnonymousRequests(t *testing.T) {
	f := setupFixture(t)
	f.signIn(t, oldToken)

	rec := &recorder{}
	f.mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid credentials"})
	})

	req, err := apiclient.NewRequest(http.MethodPost, "/auth/login").WithJSON(map[string]string{"email": "a@b.c"})
	require.NoError(t, err)

	_, err = f.client.Do(context.Background(), req.AsAnonymous())
	require.ErrorIs(t, err, errors.ErrUnauthorized)
	require.Equal(t, []string{""}, rec.authHeaders())
	require.Zero(t, f.refreshCalls.Load())
	require.Equal(t, oldToken, f.credential(t))
}

func TestDo_ConcurrentRequestsKeepIndependentRetryState(t *testing.T) {
	f := setupFixture(t)
	f.signIn(t, oldToken)

	always := &recorder{}
	f.mux.HandleFunc("GET /always401", func(w http.ResponseWriter, r *http.Request) {
		always.record(r)
		unauthorized(w)
	})

	// /flaky rejects the first attempt of every originating request
	var seenLock sync.Mutex
	seen := map[string]bool{}
	f.mux.HandleFunc("GET /flaky", func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		seenLock.Lock()
		first := !seen[id]
		seen[id] = true
		seenLock.Unlock()
		if first {
			unauthorized(w)
			return
		}
		writeJSON(w, http.StatusOK, blog{ID: 1})
	})

	const flakyRequests = 8
	var wg sync.WaitGroup
	errs := make([]error, flakyRequests+1)

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, errs[0] = f.client.Do(context.Background(), apiclient.NewRequest(http.MethodGet, "/always401"))
	}()
	for i := 1; i <= flakyRequests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.client.Do(context.Background(), apiclient.NewRequest(http.MethodGet, "/flaky"))
		}(i)
	}
	wg.Wait()

	require.ErrorIs(t, errs[0], errors.ErrUnauthorized)
	require.Equal(t, 2, always.calls())
	for i := 1; i <= flakyRequests; i++ {
		require.NoError(t, errs[i], "flaky request %d", i)
	}

	refreshes := f.refreshCalls.Load()
	require.GreaterOrEqual(t, refreshes, int32(1))
	require.LessOrEqual(t, refreshes, int32(flakyRequests+1))
	require.Empty(t, f.nav.Redirects())
}

func TestSendJSON_EncodesBody(t *testing.T) {
	f := setupFixture(t)
	f.signIn(t, oldToken)

	var gotBody, gotType string
	f.mux.HandleFunc("POST /blogs/", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		gotType = r.Header.Get("Content-Type")
		writeJSON(w, http.StatusCreated, blog{ID: 9, Title: "New"})
	})

	var created blog
	err := f.client.SendJSON(context.Background(), http.MethodPost, "/blogs/", map[string]string{"title": "New"}, &created)
	require.NoError(t, err)
	require.Equal(t, int64(9), created.ID)
	require.JSONEq(t, `{"title":"New"}`, gotBody)
	require.Equal(t, "application/json", gotType)
}

func TestDo_BaseURLWithPathPrefix(t *testing.T) {
	f := setupFixture(t)
	var gotQuery url.Values
	f.mux.HandleFunc("GET /api/blogs/", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		writeJSON(w, http.StatusOK, []blog{})
	})

	c := apiclient.New(f.srv.URL+"/api", f.session, nil, f.nav, apiclient.WithLogger(zerolog.Nop()))
	err := c.GetJSON(context.Background(), "/blogs/", url.Values{"skip": {"10"}, "limit": {"10"}}, nil)
	require.NoError(t, err)
	require.Equal(t, "10", gotQuery.Get("skip"))
}

func TestDo_NoRefresherTearsDown(t *testing.T) {
	f := setupFixture(t)
	f.signIn(t, oldToken)
	f.mux.HandleFunc("GET /blogs/5", func(w http.ResponseWriter, r *http.Request) { unauthorized(w) })

	c := apiclient.New(f.srv.URL, f.session, nil, f.nav, apiclient.WithLogger(zerolog.Nop()))
	_, err := c.Do(context.Background(), apiclient.NewRequest(http.MethodGet, "/blogs/5"))
	require.ErrorIs(t, err, errors.ErrRefreshFailed)
	require.Empty(t, f.credential(t))
}

func TestDo_ResponseBodyIsBounded(t *testing.T) {
	const limit = 32 << 20
	f := setupFixture(t)
	f.signIn(t, oldToken)
	f.mux.HandleFunc("GET /attachments/9", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(bytes.Repeat([]byte("a"), limit+1024))
	})

	resp, err := f.client.Do(context.Background(), apiclient.NewRequest(http.MethodGet, "/attachments/9"))
	require.NoError(t, err)
	require.Len(t, resp.Body, limit)
}

// apiConfig is a fixed config.APIConfig
type apiConfig struct {
	baseURL string
}

func (c apiConfig) GetBaseURL() string          { return c.baseURL }
func (apiConfig) GetRefreshPath() string        { return "auth/token/refresh/" }
func (apiConfig) GetSignInPath() string         { return "/signin" }
func (apiConfig) GetHTTPTimeout() time.Duration { return time.Second }

func TestNewFromConfig(t *testing.T) {
	session := sessions.New(memstore.New())
	nav := navigation.NewHistory(navigation.RouteHome)

	c, err := apiclient.NewFromConfig(apiConfig{baseURL: "https://blog.example.com/api/"}, session, nav)
	require.NoError(t, err)
	require.Equal(t, "https://blog.example.com/api/", c.BaseURL())
	require.Equal(t, "/signin", c.SignInPath())
	require.NotNil(t, c.HTTPClient().Jar)

	for _, bad := range []string{"blog.example.com", "ftp://blog.example.com/", "http://", "://nope"} {
		_, err := apiclient.NewFromConfig(apiConfig{baseURL: bad}, session, nav)
		require.ErrorIs(t, err, errors.ErrInvalidInput, bad)
	}
}

func TestRequest_IsImmutable(t *testing.T) {
	base := apiclient.NewRequest(http.MethodGet, "/blogs/").WithQuery("skip", "0").WithHeader("X-Trace", "a")
	next := base.WithQuery("skip", "10").WithHeader("X-Trace", "b")

	require.Equal(t, "0", base.Query.Get("skip"))
	require.Equal(t, "a", base.Header.Get("X-Trace"))
	require.Equal(t, "10", next.Query.Get("skip"))
	require.Equal(t, "b", next.Header.Get("X-Trace"))
	require.Equal(t, "GET /blogs/", fmt.Sprint(base))
}
