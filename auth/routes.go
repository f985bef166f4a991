package auth

// Auth endpoint paths on the blog API
const (
	RouteRegister       = "/auth/register"
	RouteLogin          = "/auth/login"
	RouteLogout         = "/auth/logout"
	RouteMe             = "/auth/me"
	RouteChangePassword = "/auth/change-password"
)
