package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Request describes one outbound call. It is a value: every With* method returns a
// modified copy and the client rebuilds a fresh *http.Request for each attempt, so a
// replay after a refresh sends exactly what the caller asked for.
type Request struct {
	Method      string
	Path        string // relative to the API base URL, e.g. "/blogs/5"
	Query       url.Values
	Header      http.Header
	Body        []byte
	ContentType string

	// Anonymous requests carry no bearer credential and never trigger a refresh
	// (login, registration, logout, upload signatures).
	Anonymous bool
}

func NewRequest(method, path string) Request {
	return Request{Method: method, Path: path}
}

func (r Request) WithQuery(key, value string) Request {
	q := url.Values{}
	for k, v := range r.Query {
		q[k] = append([]string(nil), v...)
	}
	q.Set(key, value)
	r.Query = q
	return r
}

func (r Request) WithHeader(key, value string) Request {
	h := r.Header.Clone()
	if h == nil {
		h = http.Header{}
	}
	h.Set(key, value)
	r.Header = h
	return r
}

func (r Request) WithBody(contentType string, body []byte) Request {
	r.ContentType = contentType
	r.Body = append([]byte(nil), body...)
	return r
}

func (r Request) WithJSON(v any) (Request, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return r, fmt.Errorf("[apiclient WithJSON] encode %s: %w", r, err)
	}
	return r.WithBody("application/json", body), nil
}

func (r Request) AsAnonymous() Request {
	r.Anonymous = true
	return r
}

func (r Request) String() string {
	return r.Method + " " + r.Path
}

// build creates the *http.Request for a single attempt.
func (r Request) build(ctx context.Context, baseURL string) (*http.Request, error) {
	target := joinURL(baseURL, r.Path)
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}

	var body io.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("[apiclient build] %s: %w", r, err)
	}
	for k, v := range r.Header {
		req.Header[k] = append([]string(nil), v...)
	}
	if r.ContentType != "" {
		req.Header.Set("Content-Type", r.ContentType)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	return req, nil
}

func joinURL(baseURL, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(path, "/")
}

// Response is a fully read API response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	RequestID  string
}

func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode <= 299
}

// Decode unmarshals the JSON body into v. An empty body leaves v untouched.
func (r *Response) Decode(v any) error {
	if v == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("[apiclient Decode] request %s: %w", r.RequestID, err)
	}
	return nil
}
