// Package admin manages user accounts for superusers.
package admin

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-blog-client/apiclient"
	"github.com/jrsteele09/go-blog-client/users"
)

const RouteUsers = "/admin/users/"

// ToggleActivePath returns the endpoint that flips a user's active flag
func ToggleActivePath(userID int64) string {
	return fmt.Sprintf("/admin/users/%d/toggle-active", userID)
}

type Service struct {
	api *apiclient.Client
}

func NewService(api *apiclient.Client) *Service {
	return &Service{api: api}
}

// List returns every account known to the service
func (s *Service) List(ctx context.Context) ([]*users.User, error) {
	var list []*users.User
	if err := s.api.GetJSON(ctx, RouteUsers, nil, &list); err != nil {
		return nil, fmt.Errorf("[admin List] %w", err)
	}
	return list, nil
}

// ToggleActive activates or deactivates an account. A deactivated user is signed
// out by their own client on the next call they make.
func (s *Service) ToggleActive(ctx context.Context, userID int64, active bool) (*users.User, error) {
	body := struct {
		IsActive bool `json:"is_active"`
	}{IsActive: active}

	var u users.User
	if err := s.api.SendJSON(ctx, http.MethodPatch, ToggleActivePath(userID), body, &u); err != nil {
		return nil, fmt.Errorf("[admin ToggleActive] user %d: %w", userID, err)
	}
	return &u, nil
}
