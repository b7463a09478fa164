package authz

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/sitetrack/sitetrack/internal/shared"
)

type contextKey string

const subjectContextKey contextKey = "authz-subject"

// SubjectSource resolves the principal behind a user id.
type SubjectSource interface {
	SubjectOf(ctx context.Context, userID int64) (Subject, error)
}

// Middleware enforces capability checks on HTTP routes.
type Middleware struct {
	Subjects SubjectSource
	Logger   *slog.Logger
}

// Require rejects requests whose authenticated user lacks the
// capability. The resolved subject is stored in the request context for
// handlers that need attribution.
func (m Middleware) Require(capability string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := m.currentUserID(r)
			if !ok {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			subject, err := m.Subjects.SubjectOf(r.Context(), userID)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("authz resolve subject", slog.Int64("user_id", userID), slog.Any("error", err))
				}
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			if !Can(subject.Role, capability) {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			ctx := ContextWithSubject(r.Context(), subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (m Middleware) currentUserID(r *http.Request) (int64, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0, false
	}
	raw := strings.TrimSpace(sess.User())
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("authz parse user id", slog.String("value", raw))
		}
		return 0, false
	}
	return id, true
}

// ContextWithSubject stores the subject in the context.
func ContextWithSubject(ctx context.Context, subject Subject) context.Context {
	return context.WithValue(ctx, subjectContextKey, subject)
}

// SubjectFromContext retrieves the subject placed by Require.
func SubjectFromContext(ctx context.Context) (Subject, bool) {
	subject, ok := ctx.Value(subjectContextKey).(Subject)
	return subject, ok
}
