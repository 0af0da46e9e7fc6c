package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Inkrex-dev/lab-dash-ex/internal/config"
	s3infra "github.com/Inkrex-dev/lab-dash-ex/internal/infra/s3"
	backupjob "github.com/Inkrex-dev/lab-dash-ex/internal/jobs/backup"
	pgrepo "github.com/Inkrex-dev/lab-dash-ex/internal/repo/postgres"
	redrepo "github.com/Inkrex-dev/lab-dash-ex/internal/repo/redis"
	authsvc "github.com/Inkrex-dev/lab-dash-ex/internal/services/auth"
	dashsvc "github.com/Inkrex-dev/lab-dash-ex/internal/services/dashboards"
	notessvc "github.com/Inkrex-dev/lab-dash-ex/internal/services/notes"
	ratesvc "github.com/Inkrex-dev/lab-dash-ex/internal/services/rate"
	"github.com/Inkrex-dev/lab-dash-ex/internal/transport/http/handlers"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	backupJob  *backupjob.Job
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pgrepo.Bootstrap(ctx, pool); err != nil {
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)

	userRepo := pgrepo.NewUserRepo(pool)
	noteRepo := pgrepo.NewNoteRepo(pool)
	dashboardRepo := pgrepo.NewDashboardRepo(pool)
	backupRepo := pgrepo.NewBackupRepo(pool)

	tokenManager := authsvc.NewTokenManager(
		cfg.Auth.AccessSecret,
		cfg.Auth.RefreshSecret,
		cfg.Auth.AccessTTL,
		cfg.Auth.RefreshTTL,
	)
	authService := authsvc.NewService(userRepo, tokenManager, cfg.Auth.BcryptCost, log)
	notesService := notessvc.NewService(noteRepo)
	dashboardService := dashsvc.NewService(dashboardRepo)
	loginLimiter := ratesvc.NewLimiter(redrepo.NewRateRepo(redisClient), cfg.Limits.LoginPerMinute)

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, backups disabled", zap.Error(err))
	} else {
		s3Client = c
		if err := s3infra.EnsureBucket(ctx, s3Client, cfg.S3.Bucket); err != nil {
			log.Warn("backup bucket init failed", zap.Error(err))
		}
	}

	var uploader backupjob.Uploader
	if s3Client != nil {
		uploader = s3Client
	}
	job := backupjob.NewJob(
		uploader,
		userRepo,
		noteRepo,
		dashboardRepo,
		backupRepo,
		cfg.S3.Bucket,
		cfg.Backup.Prefix,
		log,
	)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		AuthService:      authService,
		NotesService:     notesService,
		DashboardService: dashboardService,
		LoginLimiter:     loginLimiter,
		BackupJob:        job,
		CookieTTLs: handlers.CookieTTLs{
			Access:  cfg.Auth.AccessCookieTTL,
			Refresh: cfg.Auth.RefreshCookieTTL,
		},
		Logger: log,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		backupJob:  job,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// RunBackupScheduler drives periodic snapshots until the context ends. The
// loop skips quietly when backup storage is not configured.
func (a *App) RunBackupScheduler(ctx context.Context) {
	interval := a.cfg.Backup.Interval
	if interval <= 0 || a.s3 == nil {
		a.logger.Info("backup scheduler disabled")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := a.backupJob.Run(ctx); err != nil {
				a.logger.Error("scheduled backup failed", zap.Error(err))
			}
		}
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
