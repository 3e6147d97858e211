package model

import "time"

// LoginAttempt tracks consecutive failed logins for one salted hash of
// (client ip, username). The row is deleted outright on a successful login.
type LoginAttempt struct {
	AttemptKey   string     `gorm:"primaryKey;size:64"` // hex hmac-sha256, never the raw identifier
	FailCount    int64      `gorm:"not null;default:1"`
	BlockedUntil *time.Time // nil until the short lockout tier is reached
	UpdatedAt    time.Time
}

func (LoginAttempt) TableName() string {
	return "login_attempts"
}
