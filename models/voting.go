package models

import (
	"time"
)

// Voting is a poll: a titled question with a set of options and a short
// join code voters can type instead of the full id.
type Voting struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description,omitempty"`
	Code        string     `gorm:"size:6;not null;uniqueIndex" json:"code"`
	IsActive    bool       `gorm:"not null;default:true" json:"is_active"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
	CreatedBy   string     `gorm:"size:36;index" json:"created_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	Options     []Option   `gorm:"foreignKey:VotingID" json:"options"`
}

// Option is one selectable choice within a voting. Votes is a running
// counter incremented atomically at the storage layer; it must always equal
// the number of Vote rows referencing this option.
type Option struct {
	ID       string `gorm:"primaryKey;size:36" json:"id"`
	VotingID string `gorm:"size:36;not null;index" json:"voting_id"`
	Text     string `gorm:"size:200;not null" json:"text"`
	Votes    int64  `gorm:"not null;default:0" json:"votes"`
}

// Vote is a single user's immutable choice of one option within one voting.
// The composite unique index on (voting_id, user_id) is the constraint the
// whole system exists to protect: a concurrent duplicate insert fails it and
// is reported to the caller as a conflict.
type Vote struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	VotingID    string    `gorm:"size:36;not null;uniqueIndex:idx_votes_voting_user;index:idx_votes_voting_option" json:"voting_id"`
	OptionID    string    `gorm:"size:36;not null;index:idx_votes_voting_option" json:"option_id"`
	UserID      string    `gorm:"size:36;not null;uniqueIndex:idx_votes_voting_user" json:"user_id"`
	IsAnonymous bool      `gorm:"not null;default:false" json:"is_anonymous"`
	CreatedAt   time.Time `json:"timestamp"`
}
