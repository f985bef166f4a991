package users

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// User is the profile the blog service returns for the signed-in account and for the
// admin user listing.
type User struct {
	ID          int64      `json:"id"`                    // Unique identifier for the user
	Username    string     `json:"username"`              // Display name
	Email       string     `json:"email"`                 // User's email address
	ProfilePic  string     `json:"profile_pic,omitempty"` // URL on the file host
	IsActive    bool       `json:"is_active"`             // Inactive accounts are signed out on their next call
	IsSuperuser bool       `json:"is_superuser"`          // Grants the admin surfaces
	CreatedAt   time.Time  `json:"created_at,omitempty"`  // Date and time when the user registered
	LastLogin   *time.Time `json:"last_login,omitempty"`  // Last time the user logged in
}

// Clone returns a deep copy so callers never share a session's user.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.LastLogin != nil {
		t := *u.LastLogin
		c.LastLogin = &t
	}
	return &c
}

// IsAdmin returns true if the user may use the moderation surfaces
func (u *User) IsAdmin() bool {
	return u != nil && u.IsActive && u.IsSuperuser
}

// RegisterRequest is the payload for creating an account
type RegisterRequest struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	ProfilePic string `json:"profile_pic"`
}

func (r RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return fmt.Errorf("username is required")
	}
	if !strings.Contains(r.Email, "@") {
		return fmt.Errorf("a valid email is required")
	}
	return ValidatePasswordStrength(r.Password)
}

// ChangePasswordRequest is the payload for a password change
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}
