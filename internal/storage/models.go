package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// UserSkills is the durable skill profile for one user. Languages and
// frameworks are JSON arrays stored as text; an upsert replaces every
// column for the user, it never merges.
type UserSkills struct {
	UserID          string
	Languages       string // JSON array stored as text
	Frameworks      string // JSON array stored as text
	ExperienceLevel string
	Interests       string
	UpdatedAt       time.Time
}

// ProjectIdeaRecord is one generated idea persisted for a user.
type ProjectIdeaRecord struct {
	ID          string
	UserID      string
	Idea        string // full idea JSON stored as text
	Difficulty  string
	AIGenerated bool
	CreatedAt   time.Time
}
