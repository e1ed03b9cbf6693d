package models

import (
	"time"
)

// Gender is the optional self-reported gender of a student.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// IsValid reports whether g is one of the known gender values.
func (g Gender) IsValid() bool {
	return g == GenderMale || g == GenderFemale
}

// ValidLevel reports whether level is a valid study level (1-4).
func ValidLevel(level int) bool {
	return level >= 1 && level <= 4
}

// User defines the user model based on the 'users' table. Email and
// StudentID are immutable after creation; StudentID always equals the
// numeric prefix of Email.
type User struct {
	ID             int64     `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Email          string    `json:"email" db:"email"`
	StudentID      string    `json:"studentId" db:"student_id"`
	Password       string    `json:"-" db:"password"` // hashed, never plaintext
	Gender         *Gender   `json:"gender,omitempty" db:"gender"`
	Level          *int      `json:"level,omitempty" db:"level"`
	ProfilePicture *string   `json:"profilePicture,omitempty" db:"profile_picture"` // blob URL, nullable
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}
