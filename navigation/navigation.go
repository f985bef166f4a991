package navigation

import "sync"

// Route path constants shared by the guards and the API client
const (
	RouteHome     = "/"
	RouteLogin    = "/login"
	RouteRegister = "/register"
	RouteAdmin    = "/admin"
)

// Navigator moves the surrounding application to another location.
type Navigator interface {
	CurrentPath() string
	Redirect(path string)
}

// History is an in-process Navigator that remembers where it has been sent.
type History struct {
	current   string
	redirects []string
	lock      sync.RWMutex
}

var _ Navigator = (*History)(nil)

func NewHistory(start string) *History {
	if start == "" {
		start = RouteHome
	}
	return &History{current: start}
}

func (h *History) CurrentPath() string {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return h.current
}

func (h *History) Redirect(path string) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.current = path
	h.redirects = append(h.redirects, path)
}

// Visit moves to path without recording it as a redirect
func (h *History) Visit(path string) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.current = path
}

// Redirects returns every redirect in order
func (h *History) Redirects() []string {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return append([]string(nil), h.redirects...)
}

// RedirectToSignIn sends nav to signInPath unless it is already there.
// Returns true when a redirect happened.
func RedirectToSignIn(nav Navigator, signInPath string) bool {
	if nav == nil {
		return false
	}
	if nav.CurrentPath() == signInPath {
		return false
	}
	nav.Redirect(signInPath)
	return true
}
