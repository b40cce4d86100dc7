package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"worklog/internal/requestctx"
	"worklog/internal/transport/http/api"
)

// Enforcer decides whether a role may act on a resource.
type Enforcer interface {
	Enforce(rvals ...interface{}) (bool, error)
}

// Policy gates routes on the caller's role. With Enforced unset every
// request is allowed, matching the open deployment mode.
type Policy struct {
	Enforcer Enforcer
	Enforced bool
}

func (p Policy) Require(obj, act string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !p.Enforced {
				next.ServeHTTP(w, r)
				return
			}
			rid := GetRequestID(r.Context())
			user, ok := requestctx.GetPrincipal(r.Context())
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", rid)
				return
			}
			allowed, err := p.Enforcer.Enforce(user.Role, obj, act)
			if err != nil {
				zap.L().Error("policy check failed", zap.String("requestId", rid), zap.Error(err))
				api.Fail(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Permission check failed", rid)
				return
			}
			if !allowed {
				api.FailWithDetails(w, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions",
					map[string]string{"required": obj + ":" + act}, rid)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
