package auth

import (
	"time"

	"github.com/slooze/foodorder/internal/rbac"
)

// User represents a persisted account.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         rbac.Role
	Region       *rbac.Region
	CreatedAt    time.Time
}

// Principal projects the user onto the identity carried by tokens.
func (u User) Principal() rbac.Principal {
	return rbac.Principal{ID: u.ID, Email: u.Email, Role: u.Role, Region: u.Region}
}

// UserView is the public representation of a user.
type UserView struct {
	ID     string       `json:"id"`
	Email  string       `json:"email"`
	Name   string       `json:"name"`
	Role   rbac.Role    `json:"role"`
	Region *rbac.Region `json:"region"`
}

// View strips credentials from u.
func (u User) View() UserView {
	return UserView{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role, Region: u.Region}
}

// Session is the result of a successful login.
type Session struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
	User        UserView  `json:"user"`
}
