package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	httpctx "github.com/dtroode/taskmanager-server/internal/api/http/context"
	"github.com/dtroode/taskmanager-server/internal/mocks"
	"github.com/dtroode/taskmanager-server/internal/model"
	"github.com/dtroode/taskmanager-server/internal/testutil"
)

func TestRouter_Register(t *testing.T) {
	t.Parallel()

	principal := model.Principal{User: model.User{ID: uuid.New(), Email: "ann@example.com"}, Token: "good"}

	sessions := mocks.NewSessionValidator(t)
	sessions.On("Validate", mock.Anything, "good").Return(principal, nil)
	sessions.On("Validate", mock.Anything, "").Return(model.Principal{}, model.NewUnauthorizedError("please authenticate"))

	tasks := mocks.NewTaskService(t)
	tasks.On("List", mock.Anything, principal, mock.Anything).Return([]model.Task{}, nil)

	h := New(
		mocks.NewAuthService(t),
		mocks.NewUserService(t),
		tasks,
		sessions,
		httpctx.NewManager(),
		time.Second,
		testutil.MakeNoopLogger(),
	).Register()

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		wantStatus int
	}{
		{name: "health is public", method: http.MethodGet, path: "/health", wantStatus: http.StatusOK},
		{name: "tasks need a session", method: http.MethodGet, path: "/tasks", wantStatus: http.StatusUnauthorized},
		{name: "profile needs a session", method: http.MethodGet, path: "/users/me", wantStatus: http.StatusUnauthorized},
		{name: "logout needs a session", method: http.MethodPost, path: "/users/logout", wantStatus: http.StatusUnauthorized},
		{name: "authenticated listing", method: http.MethodGet, path: "/tasks", token: "good", wantStatus: http.StatusOK},
		{name: "authenticated profile", method: http.MethodGet, path: "/users/me", token: "good", wantStatus: http.StatusOK},
		{name: "unknown route", method: http.MethodGet, path: "/nope", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
