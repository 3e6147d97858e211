package model

import "time"

// BlacklistedToken records a revoked session token until its natural expiry,
// after which the row is garbage and may be swept at any time.
type BlacklistedToken struct {
	Token     string    `gorm:"primaryKey;size:512"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time
}

func (BlacklistedToken) TableName() string {
	return "token_blacklist"
}
