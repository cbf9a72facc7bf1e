package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dtroode/taskmanager-server/internal/logger"
	"github.com/dtroode/taskmanager-server/internal/model"
)

// SessionValidator resolves a bearer token to the Principal it belongs to.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (model.Principal, error)
}

// Authenticate guards routes that act on behalf of a user. Requests without
// a valid session token are answered with 401 and never reach the handler.
type Authenticate struct {
	sessions       SessionValidator
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(sessions SessionValidator, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{sessions: sessions, contextManager: contextManager, logger: logger}
}

// Handle validates the Authorization header and stores the Principal in the
// request context.
func (m *Authenticate) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))

		principal, err := m.sessions.Validate(r.Context(), token)
		if err != nil {
			m.logger.DebugContext(r.Context(), "Authenticate middleware: request rejected",
				"path", r.URL.Path,
				"error", err.Error())
			unauthorized(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(m.contextManager.SetPrincipalToContext(r.Context(), principal)))
	})
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "please authenticate"})
}
