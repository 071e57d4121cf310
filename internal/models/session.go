package models

import "time"

// Role decides what a signed-in user may reach
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleFiancee Role = "fiancee" // board access only
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleFiancee
}

// User is an account that can sign in to the admin side
type User struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"not null" json:"-"`
	Role         Role   `gorm:"type:varchar(16);not null;default:admin" json:"role"`
}

// Session identifies who is acting. It is passed explicitly into every
// workflow call and never kept in package state.
type Session struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// SessionFor builds the session of a signed-in user
func SessionFor(u *User) Session {
	return Session{UserID: u.ID, Username: u.Username, Role: u.Role}
}

// Actor is the display name used in activity details and notifications
func (s Session) Actor() string {
	if s.Username == "" {
		return "Someone"
	}
	return s.Username
}

// UserRef is the nullable user id stored on tickets
func (s Session) UserRef() *uint {
	if s.UserID == 0 {
		return nil
	}
	id := s.UserID
	return &id
}
