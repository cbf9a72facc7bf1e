package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	httpctx "github.com/dtroode/taskmanager-server/internal/api/http/context"
	"github.com/dtroode/taskmanager-server/internal/mocks"
	"github.com/dtroode/taskmanager-server/internal/model"
	"github.com/dtroode/taskmanager-server/internal/testutil"
)

var testPrincipal = model.Principal{
	User: model.User{
		ID:           uuid.MustParse("550e8400-e29b-41d4-a716-446655440000"),
		Name:         "Ann",
		Email:        "ann@example.com",
		PasswordHash: "$2a$08$secret",
		AvatarKey:    "avatars/ann.png",
	},
	Token: "tok",
}

func withPrincipal(cm *httpctx.Manager, p model.Principal) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(cm.SetPrincipalToContext(r.Context(), p)))
		})
	}
}

type fixture struct {
	auth  *mocks.AuthService
	users *mocks.UserService
	tasks *mocks.TaskService
	mux   chi.Router
}

func newFixture(t *testing.T) fixture {
	f := fixture{
		auth:  mocks.NewAuthService(t),
		users: mocks.NewUserService(t),
		tasks: mocks.NewTaskService(t),
	}

	cm := httpctx.NewManager()
	lg := testutil.MakeNoopLogger()
	u := NewUser(f.auth, f.users, cm, lg)
	tk := NewTask(f.tasks, cm, lg)

	mux := chi.NewRouter()
	mux.Post("/users", u.Signup)
	mux.Post("/users/login", u.Login)
	mux.Get("/users/{id}/avatar", u.Avatar)
	mux.Group(func(r chi.Router) {
		r.Use(withPrincipal(cm, testPrincipal))
		r.Post("/users/logout", u.Logout)
		r.Post("/users/logoutAll", u.LogoutAll)
		r.Get("/users/me", u.Me)
		r.Patch("/users/me", u.UpdateMe)
		r.Delete("/users/me", u.DeleteMe)
		r.Post("/users/me/avatar", u.UploadAvatar)
		r.Delete("/users/me/avatar", u.DeleteAvatar)
		r.Post("/tasks", tk.Create)
		r.Get("/tasks", tk.List)
		r.Get("/tasks/{id}", tk.Get)
		r.Patch("/tasks/{id}", tk.Update)
		r.Delete("/tasks/{id}", tk.Delete)
	})
	f.mux = mux

	return f
}

func (f fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}
