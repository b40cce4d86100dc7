package shared

import (
	"net/http"

	"worklog/internal/domain/audit"
	"worklog/internal/requestctx"
)

// AuditEntry describes a mutation made by the caller of r.
func AuditEntry(r *http.Request, action, entityType, entityID string, before, after any) audit.Entry {
	ctx := r.Context()
	return audit.Entry{
		Actor:      requestctx.Actor(ctx),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		RequestID:  requestctx.GetRequestID(ctx),
		IP:         ClientIP(r),
		Before:     before,
		After:      after,
	}
}
