package models

import (
	"time"
)

// Role is the closed set of user roles. Authorization checks switch on it
// exhaustively instead of comparing loose strings.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleVoter Role = "voter"
)

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleVoter
}

// User represents an authenticated account. Name doubles as the login
// identifier and must be unique.
type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Name         string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Email        string    `gorm:"size:255" json:"email,omitempty"`
	PasswordHash string    `gorm:"size:100;not null" json:"-"`
	Role         Role      `gorm:"size:10;not null;default:voter" json:"role"`
	CreatedAt    time.Time `json:"created_at"`

	// VotedIn holds the ids of votings this user has already voted in.
	// Loaded from the user_voted table; mutated only by vote casting.
	VotedIn []string `gorm:"-" json:"voted_in"`
}

// UserVoted is one row of the per-user voted-in set. The composite primary
// key gives the set its no-duplicates semantics.
type UserVoted struct {
	UserID   string `gorm:"primaryKey;size:36"`
	VotingID string `gorm:"primaryKey;size:36"`
}

// TableName overrides GORM's default pluralization.
func (UserVoted) TableName() string {
	return "user_voted"
}
