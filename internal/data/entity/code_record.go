package entity

import "time"

// CodeRecord is one issued verification code. Records are append-only:
// expiry is enforced by time-filtered queries, never by deletion.
type CodeRecord struct {
	BaseSimple
	Mobile    string    `db:"mobile"`
	Code      string    `db:"code"`
	Category  string    `db:"category"`
	ExpiresAt time.Time `db:"expires_at"`
}
