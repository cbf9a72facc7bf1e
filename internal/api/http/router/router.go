package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/dtroode/taskmanager-server/internal/api/http/handler"
	"github.com/dtroode/taskmanager-server/internal/api/http/middleware"
	"github.com/dtroode/taskmanager-server/internal/logger"
	"github.com/dtroode/taskmanager-server/internal/model"
)

// Router represents the HTTP router of the task manager API.
type Router struct {
	authService    handler.AuthService
	userService    handler.UserService
	taskService    handler.TaskService
	sessions       middleware.SessionValidator
	contextManager model.ContextManager
	requestTimeout time.Duration
	logger         *logger.Logger
}

// New creates new HTTP Router instance.
func New(
	authService handler.AuthService,
	userService handler.UserService,
	taskService handler.TaskService,
	sessions middleware.SessionValidator,
	contextManager model.ContextManager,
	requestTimeout time.Duration,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		userService:    userService,
		taskService:    taskService,
		sessions:       sessions,
		contextManager: contextManager,
		requestTimeout: requestTimeout,
		logger:         logger,
	}
}

// Register builds the route table. Everything except signup, login, the
// public avatar and the health check goes through the access gate.
func (r *Router) Register() http.Handler {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.sessions, r.contextManager, r.logger)
	users := handler.NewUser(r.authService, r.userService, r.contextManager, r.logger)
	tasks := handler.NewTask(r.taskService, r.contextManager, r.logger)

	mux := chi.NewRouter()
	mux.Use(chimiddleware.RequestID)
	mux.Use(chimiddleware.RealIP)
	mux.Use(otelhttp.NewMiddleware("taskmanager.http"))
	mux.Use(logging.Handle)
	mux.Use(chimiddleware.Recoverer)
	if r.requestTimeout > 0 {
		mux.Use(chimiddleware.Timeout(r.requestTimeout))
	}

	mux.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("OK"))
	})

	mux.Route("/users", func(rt chi.Router) {
		rt.Post("/", users.Signup)
		rt.Post("/login", users.Login)
		rt.Get("/{id}/avatar", users.Avatar)

		rt.Group(func(rt chi.Router) {
			rt.Use(authenticate.Handle)

			rt.Post("/logout", users.Logout)
			rt.Post("/logoutAll", users.LogoutAll)
			rt.Get("/me", users.Me)
			rt.Patch("/me", users.UpdateMe)
			rt.Delete("/me", users.DeleteMe)
			rt.Post("/me/avatar", users.UploadAvatar)
			rt.Delete("/me/avatar", users.DeleteAvatar)
		})
	})

	mux.Route("/tasks", func(rt chi.Router) {
		rt.Use(authenticate.Handle)

		rt.Post("/", tasks.Create)
		rt.Get("/", tasks.List)
		rt.Get("/{id}", tasks.Get)
		rt.Patch("/{id}", tasks.Update)
		rt.Delete("/{id}", tasks.Delete)
	})

	return mux
}
