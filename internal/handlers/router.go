package handlers

import (
	"time"

	"timeTracker/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type RouterConfig struct {
	JWTSecret      string
	RequestTimeout time.Duration
	RateLimit      int
	AllowedOrigins []string
}

func NewRouter(cfg RouterConfig, tasks *TaskHandler, timers *TimerHandler, users *UserHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", middleware.UserIDHeader},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	if cfg.RateLimit > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimit))
	}

	r.Get("/health", tasks.HealthCheck)
	r.Post("/users", users.PostUser)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))

		r.Get("/users", users.GetUsers)
		r.Get("/users/{id}", users.GetUser)

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", tasks.GetTasks)  // GET /tasks
			r.Post("/", tasks.PostTask) // POST /tasks
			r.Get("/top-month-duration", timers.TopTasks)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", tasks.GetTaskByID)
				r.Patch("/", tasks.UpdateTaskByID)
				r.Put("/", tasks.UpdateTaskByID)
				r.Delete("/", tasks.DeleteTaskByID)

				r.Post("/start", timers.StartTimer) // POST /tasks/{id}/start
				r.Post("/stop", timers.StopTimer)   // POST /tasks/{id}/stop

				r.Get("/comments", tasks.GetTaskComments)
				r.Post("/comments", tasks.PostTaskComment)
			})
		})

		r.Post("/comments", tasks.PostComment)

		r.Route("/timelogs", func(r chi.Router) {
			r.Get("/", timers.GetTimeLogs)
			r.Get("/last-month-full-time", timers.MonthlyTotal)
		})
	})

	return r
}
