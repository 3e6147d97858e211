package model

import "time"

type AuditEvent struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserID    uint      `gorm:"index"`                  // internal user id, zero for unknown accounts
	Username  string    `gorm:"size:64;not null;index"` // snapshot of username at event time
	EventType string    `gorm:"size:64;not null;index"` // login_success, login_failure, logout
	Reason    string    `gorm:"size:512"`               // failure reason or context
	IP        string    `gorm:"size:45;not null"`       // IPv4/IPv6
	UserAgent string    `gorm:"size:512"`               // user agent string
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (AuditEvent) TableName() string {
	return "audit"
}
