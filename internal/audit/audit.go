package audit

import (
	"context"
	"log/slog"
	"sync"

	"github.com/khanghh/ltcms/model"
)

var auditRepo AuditEventRepository
var initOnce sync.Once

func Initialize(repo AuditEventRepository) {
	initOnce.Do(func() {
		auditRepo = repo
	})
}

const (
	EventTypeLoginSuccess = "login_success"
	EventTypeLoginFailure = "login_failure"
	EventTypeLogout       = "logout"
)

type LoginRecord struct {
	UserID    uint
	Username  string
	IP        string
	UserAgent string
	Success   bool
	Reason    string
}

type LogoutRecord struct {
	Username  string
	IP        string
	UserAgent string
}

// RecordLogin writes a login audit event. Failures are logged, not returned:
// auditing must never change the outcome of the request being audited.
func RecordLogin(ctx context.Context, record LoginRecord) {
	if auditRepo == nil {
		return
	}
	eventType := EventTypeLoginFailure
	if record.Success {
		eventType = EventTypeLoginSuccess
	}
	err := auditRepo.RecordEvent(ctx, &model.AuditEvent{
		UserID:    record.UserID,
		Username:  record.Username,
		EventType: eventType,
		IP:        record.IP,
		UserAgent: record.UserAgent,
		Reason:    record.Reason,
	})
	if err != nil {
		slog.Error("Failed to record login audit event", "error", err)
	}
}

func RecordLogout(ctx context.Context, record LogoutRecord) {
	if auditRepo == nil {
		return
	}
	err := auditRepo.RecordEvent(ctx, &model.AuditEvent{
		Username:  record.Username,
		EventType: EventTypeLogout,
		IP:        record.IP,
		UserAgent: record.UserAgent,
	})
	if err != nil {
		slog.Error("Failed to record logout audit event", "error", err)
	}
}
