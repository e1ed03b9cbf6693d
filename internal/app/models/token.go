package models

import "time"

// AccessToken is an opaque bearer token bound to one user. A user may
// hold several live tokens at once (one per device); logout revokes them
// all.
type AccessToken struct {
	Token      string    `db:"token"`
	UserID     int64     `db:"user_id"`
	ExpiryDate time.Time `db:"expiry_date"`
	CreatedAt  time.Time `db:"created_at"`
}
