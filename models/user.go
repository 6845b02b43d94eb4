package models

import (
	"strings"
	"time"

	"github.com/weddingcard/card_admin/config"
	"github.com/weddingcard/card_admin/utils"
)

const RoleAdmin = "ADMIN"

type User struct {
	ID        string     `json:"_id"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Email     string     `json:"email"`
	Contact   string     `json:"contact"`
	Role      string     `json:"role,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginInfo struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Matches is the user search: case-insensitive substring over first name,
// last name and email.
func (u *User) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(u.FirstName), q) ||
		strings.Contains(strings.ToLower(u.LastName), q) ||
		strings.Contains(strings.ToLower(u.Email), q)
}

// FormattedContact returns the contact in international format, or the raw
// value when it cannot be parsed.
func (u *User) FormattedContact() string {
	return utils.FormatPhoneNumber(u.Contact, config.PhoneDefaultRegion())
}

func FilterUsers(users []User, query string) []User {
	out := make([]User, 0, len(users))
	for i := range users {
		if users[i].Matches(query) {
			out = append(out, users[i])
		}
	}
	return out
}
