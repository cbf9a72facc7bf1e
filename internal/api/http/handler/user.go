package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dtroode/taskmanager-server/internal/avatar"
	"github.com/dtroode/taskmanager-server/internal/logger"
	"github.com/dtroode/taskmanager-server/internal/model"
)

// AuthService defines signup, login and logout operations.
type AuthService interface {
	Signup(ctx context.Context, draft model.UserDraft) (model.User, string, error)
	Login(ctx context.Context, email, password string) (model.User, string, error)
	Logout(ctx context.Context, p model.Principal) error
	LogoutAll(ctx context.Context, p model.Principal) error
}

// UserService defines profile and avatar operations.
type UserService interface {
	Update(ctx context.Context, id uuid.UUID, update model.UserUpdate) (model.User, error)
	Delete(ctx context.Context, id uuid.UUID) (model.User, error)
	SetAvatar(ctx context.Context, p model.Principal, filename string, size int64, r io.Reader) (model.User, error)
	ClearAvatar(ctx context.Context, p model.Principal) (model.User, error)
	GetAvatar(ctx context.Context, userID uuid.UUID) (io.ReadCloser, error)
}

type sessionResponse struct {
	User  model.User `json:"user"`
	Token string     `json:"token"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// User handles the /users endpoints.
type User struct {
	auth           AuthService
	users          UserService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewUser creates a new User handler.
func NewUser(auth AuthService, users UserService, contextManager model.ContextManager, logger *logger.Logger) *User {
	return &User{
		auth:           auth,
		users:          users,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Signup registers a user and returns it with its first token.
func (h *User) Signup(w http.ResponseWriter, r *http.Request) {
	var draft model.UserDraft
	if err := decodeJSON(w, r, &draft); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	user, token, err := h.auth.Signup(r.Context(), draft)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{User: user, Token: token})
}

// Login exchanges credentials for a new token. Every credential failure
// gets the same response.
func (h *User) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	user, token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if model.KindOf(err) == model.KindUnauthorized {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unable to login"})
		return
	}
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{User: user, Token: token})
}

// Logout revokes the token the request was authenticated with.
func (h *User) Logout(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	if err := h.auth.Logout(r.Context(), p); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// LogoutAll revokes every token of the user.
func (h *User) LogoutAll(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	if err := h.auth.LogoutAll(r.Context(), p); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Me returns the authenticated user's profile.
func (h *User) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, p.User)
}

// UpdateMe applies an allow-listed profile change.
func (h *User) UpdateMe(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	update, err := model.DecodeUserUpdate(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	user, err := h.users.Update(r.Context(), p.User.ID, update)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// DeleteMe deletes the account with everything it owns.
func (h *User) DeleteMe(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	user, err := h.users.Delete(r.Context(), p.User.ID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// UploadAvatar stores the image sent in the "avatar" multipart field.
func (h *User) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 2*avatar.MaxUploadSize)
	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeError(w, r, h.logger, model.NewValidationError("please upload an image"))
		return
	}
	defer file.Close()

	if _, err := h.users.SetAvatar(r.Context(), p, header.Filename, header.Size, file); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// DeleteAvatar removes the user's avatar.
func (h *User) DeleteAvatar(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	if _, err := h.users.ClearAvatar(r.Context(), p); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Avatar serves any user's avatar as PNG. It needs no authentication.
func (h *User) Avatar(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, model.NewNotFoundError("user not found"))
		return
	}

	rc, err := h.users.GetAvatar(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", avatar.ContentType)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.WarnContext(r.Context(), "User handler: failed to stream avatar",
			"user_id", id,
			"error", err.Error())
	}
}

func (h *User) principal(w http.ResponseWriter, r *http.Request) (model.Principal, bool) {
	p, ok := h.contextManager.GetPrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, h.logger, model.NewUnauthorizedError("missing principal"))
	}
	return p, ok
}
