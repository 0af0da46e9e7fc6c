package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	backupjob "github.com/Inkrex-dev/lab-dash-ex/internal/jobs/backup"
	authsvc "github.com/Inkrex-dev/lab-dash-ex/internal/services/auth"
	dashsvc "github.com/Inkrex-dev/lab-dash-ex/internal/services/dashboards"
	notessvc "github.com/Inkrex-dev/lab-dash-ex/internal/services/notes"
	ratesvc "github.com/Inkrex-dev/lab-dash-ex/internal/services/rate"
	"github.com/Inkrex-dev/lab-dash-ex/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService      *authsvc.Service
	NotesService     *notessvc.Service
	DashboardService *dashsvc.Service
	LoginLimiter     *ratesvc.Limiter
	BackupJob        *backupjob.Job
	CookieTTLs       handlers.CookieTTLs
	Logger           *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.AuthService, deps.LoginLimiter, deps.CookieTTLs)
	notesHandler := handlers.NewNotesHandler(deps.NotesService)
	dashboardHandler := handlers.NewDashboardHandler(deps.DashboardService)
	backupHandler := handlers.NewBackupHandler(deps.BackupJob)
	healthHandler := handlers.NewHealthHandler()

	authMW := AuthMiddleware(deps.AuthService, deps.Logger)
	adminMW := RequireAdmin()

	r.Get("/healthz", healthHandler.Get)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.Post("/logout", authHandler.Logout)
		r.Get("/has-users", authHandler.HasUsers)
		r.With(authMW).Get("/is-admin", authHandler.IsAdmin)
	})

	r.Route("/notes", func(r chi.Router) {
		r.Use(authMW)
		r.Get("/", notesHandler.List)
		r.Post("/", notesHandler.Create)
		r.Get("/{id}", notesHandler.Get)
		r.Put("/{id}", notesHandler.Update)
		r.Delete("/{id}", notesHandler.Delete)
	})

	r.Route("/dashboard", func(r chi.Router) {
		r.Use(authMW)
		r.Get("/", dashboardHandler.Get)
		r.Put("/", dashboardHandler.Put)
	})

	r.Route("/backup", func(r chi.Router) {
		r.Use(authMW, adminMW)
		r.Post("/run", backupHandler.Run)
		r.Get("/status", backupHandler.Status)
	})
}
