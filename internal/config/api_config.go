package config

import (
	"strings"
	"time"
)

type APIConfig interface {
	GetBaseURL() string
	GetRefreshPath() string
	GetSignInPath() string
	GetHTTPTimeout() time.Duration
}

type API struct{}

var _ APIConfig = API{}

// GetBaseURL returns the remote API root, always with a trailing slash so that
// relative endpoint paths resolve beneath it.
func (API) GetBaseURL() string {
	base := GetEnv("BLOG_API_BASE_URL", "http://localhost:8000/")
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}

func (API) GetRefreshPath() string {
	return GetEnv("BLOG_REFRESH_PATH", "auth/token/refresh/")
}

func (API) GetSignInPath() string {
	return GetEnv("BLOG_SIGNIN_PATH", "/login")
}

func (API) GetHTTPTimeout() time.Duration {
	return GetEnvDuration("BLOG_HTTP_TIMEOUT", 30*time.Second)
}
