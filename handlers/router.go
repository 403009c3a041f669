package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"taskcanvas/middleware"
)

// Dependencies are the services the router dispatches to. Health may be nil.
type Dependencies struct {
	Tasks  TaskAPI
	Boards BoardAPI
	Auth   AuthAPI
	Health func(ctx context.Context) error
}

func NewRouter(deps Dependencies) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Metrics, middleware.RequestLogger)

	r.HandleFunc("/healthz", healthHandler(deps.Health)).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	auth := NewAuthHandler(deps.Auth)
	r.HandleFunc("/api/auth/signup", auth.Signup).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/login", auth.Login).Methods(http.MethodPost)

	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(middleware.JWTAuth(deps.Auth))
	protected.HandleFunc("/auth/me", auth.Me).Methods(http.MethodGet)
	protected.HandleFunc("/auth/logout", auth.Logout).Methods(http.MethodPost)

	tasks := NewTaskHandler(deps.Tasks)
	protected.HandleFunc("/tasks/{userId}", tasks.GetTasks).Methods(http.MethodGet)
	protected.HandleFunc("/tasks", tasks.CreateTask).Methods(http.MethodPost)
	protected.HandleFunc("/tasks/{id}", tasks.UpdateTask).Methods(http.MethodPut)
	protected.HandleFunc("/tasks/{id}", tasks.DeleteTask).Methods(http.MethodDelete)

	boards := NewBoardHandler(deps.Boards)
	protected.HandleFunc("/board/{userId}", boards.GetBoard).Methods(http.MethodGet)
	protected.HandleFunc("/board/{userId}", boards.SaveBoard).Methods(http.MethodPut)

	return r
}

func healthHandler(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				writeMessage(w, http.StatusServiceUnavailable, "unhealthy")
				return
			}
		}
		writeMessage(w, http.StatusOK, "ok")
	}
}
