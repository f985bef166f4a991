package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-blog-client/internal/errors"
)

// APIError is a non-2xx response, returned to callers verbatim.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Detail     string // human readable message from the payload
	Code       string // machine readable code from the payload, if any
	Body       []byte
	RequestID  string
}

type errorPayload struct {
	Detail  json.RawMessage `json:"detail"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
}

func newAPIError(req Request, resp *Response) *APIError {
	e := &APIError{
		Method:     req.Method,
		Path:       req.Path,
		StatusCode: resp.StatusCode,
		Body:       resp.Body,
		RequestID:  resp.RequestID,
	}

	var p errorPayload
	if err := json.Unmarshal(resp.Body, &p); err == nil {
		e.Code = p.Code
		e.Detail = p.Message
		var detail string
		if err := json.Unmarshal(p.Detail, &detail); err == nil {
			e.Detail = detail
		} else if len(p.Detail) > 0 {
			var nested errorPayload
			if err := json.Unmarshal(p.Detail, &nested); err == nil {
				e.Code = firstNonEmpty(e.Code, nested.Code)
				e.Detail = firstNonEmpty(nested.Message, e.Detail)
			}
		}
	}
	if e.Detail == "" {
		e.Detail = http.StatusText(resp.StatusCode)
	}
	return e
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, e.Detail)
}

// inactiveCodes are the machine readable codes the server uses for a deactivated account.
var inactiveCodes = map[string]bool{
	"user_inactive":    true,
	"account_inactive": true,
	"inactive_user":    true,
	"inactive_account": true,
	"user_deactivated": true,
	"account_disabled": true,
}

// inactivePhrases match account-scoped messages only. A 403 about an inactive blog
// or comment is an ordinary authorization failure.
var inactivePhrases = []string{
	"account is inactive",
	"user is inactive",
	"inactive account",
	"inactive user",
	"account has been deactivated",
	"account is deactivated",
	"account was deactivated",
	"account is disabled",
	"account has been disabled",
}

// Inactive reports whether the server refused the call because the account has
// been deactivated.
func (e *APIError) Inactive() bool {
	if e.StatusCode != http.StatusForbidden {
		return false
	}
	if inactiveCodes[strings.ToLower(strings.TrimSpace(e.Code))] {
		return true
	}
	detail := strings.ToLower(e.Detail)
	for _, phrase := range inactivePhrases {
		if strings.Contains(detail, phrase) {
			return true
		}
	}
	return false
}

// Is lets callers test an APIError against the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case errors.ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case errors.ErrAccountInactive:
		return e.Inactive()
	case errors.ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case errors.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case errors.ErrInvalidInput:
		return e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusUnprocessableEntity
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
