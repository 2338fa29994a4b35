package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"petition-backend/internal/cases"
	"petition-backend/internal/companies"
	"petition-backend/internal/documents"
	"petition-backend/internal/extract"
	"petition-backend/internal/generateddocs"
	"petition-backend/internal/shared/config"
	"petition-backend/internal/shared/retry"
	"petition-backend/internal/shared/server"
	"petition-backend/internal/shared/server/middleware"
	"petition-backend/internal/shared/storage/db"
	"petition-backend/internal/shared/storage/object"
	localstore "petition-backend/internal/shared/storage/object/local"
	miniostore "petition-backend/internal/shared/storage/object/minio"
	s3store "petition-backend/internal/shared/storage/object/s3"
	"petition-backend/internal/uploads"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config config.Config
	Logger *zap.Logger
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Retry  *retry.Executor

	CompaniesRepo companies.Repo
	CasesRepo     cases.Repo
	DocumentsRepo documents.Repo
	GeneratedRepo generateddocs.Repo

	CompaniesService *companies.Service
	CasesService     *cases.Service
	DocumentsService *documents.Service
	Uploads          *uploads.Orchestrator
	GeneratedService *generateddocs.Service
	ExtractService   *extract.Service
}

// Build connects backends, wires services and registers routes. A nil logger
// is replaced by a no-op one.
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	sqlDB, err := buildDB(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
		return nil, fmt.Errorf("object store: %w", err)
	}

	app := &App{
		Config: cfg,
		Logger: logger,
		DB:     sqlDB,
		Store:  store,
		Retry: retry.New(retry.Config{
			MaxRetries:        cfg.Retry.MaxRetries,
			InitialDelay:      cfg.Retry.InitialDelay,
			MaxDelay:          cfg.Retry.MaxDelay,
			BackoffMultiplier: cfg.Retry.BackoffMultiplier,
		}, logger.Named("retry")),
	}
	buildServices(app)

	limit := middleware.RateLimit("generate", middleware.RateLimitRule{
		Rate:  cfg.Generation.RateLimit,
		Burst: cfg.Generation.RateBurst,
	}, middleware.NewRateLimiter(nil))

	app.Router = server.NewRouter(server.RouterDeps{
		Config: cfg,
		Logger: logger,
		Health: app.health,
		Handlers: []server.RouteRegistrar{
			companies.NewHandler(app.CompaniesService),
			cases.NewHandler(app.CasesService),
			documents.NewHandler(app.DocumentsService, store.PublicURL),
			uploads.NewHandler(app.Uploads, store),
			generateddocs.NewHandler(app.GeneratedService, limit),
			extract.NewHandler(app.ExtractService),
		},
	})

	logger.Info("bootstrap complete",
		zap.String("env", cfg.Env),
		zap.String("object_store", cfg.ObjectStoreType),
		zap.Bool("postgres", sqlDB != nil),
	)
	return app, nil
}

// Close releases the database pool.
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

func (a *App) health() error {
	if a.DB == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return db.Translate("db.ping", a.DB.PingContext(ctx))
}

func buildDB(ctx context.Context, cfg config.Config, logger *zap.Logger) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if config.IsDevLike(cfg.Env) {
			logger.Warn("DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.DefaultServerOptions()
	opts.Logger = logger
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(opts))
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB, logger)
		if err != nil {
			_ = sqlDB.Close()
		}
	}
	if err != nil {
		if config.IsDevLike(cfg.Env) {
			logger.Warn("database unavailable; using in-memory repositories", zap.Error(err))
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID, cfg.PublicBaseURL)
	case "minio":
		return miniostore.New(ctx, cfg.MinIO, cfg.PublicBaseURL)
	default:
		return localstore.New(cfg.LocalStoreDir, cfg.PublicBaseURL), nil
	}
}

func buildServices(app *App) {
	if app.DB != nil {
		app.CompaniesRepo = &companies.PGRepo{DB: app.DB}
		app.CasesRepo = &cases.PGRepo{DB: app.DB}
		app.DocumentsRepo = &documents.PGRepo{DB: app.DB}
		app.GeneratedRepo = &generateddocs.PGRepo{DB: app.DB}
	} else {
		app.CompaniesRepo = companies.NewMemoryRepo()
		app.CasesRepo = cases.NewMemoryRepo()
		app.DocumentsRepo = documents.NewMemoryRepo()
		app.GeneratedRepo = generateddocs.NewMemoryRepo()
	}

	app.CompaniesService = &companies.Service{Repo: app.CompaniesRepo}
	app.CasesService = &cases.Service{Repo: app.CasesRepo, Companies: app.CompaniesRepo}
	app.DocumentsService = &documents.Service{Repo: app.DocumentsRepo}
	app.Uploads = &uploads.Orchestrator{
		Store:     app.Store,
		Documents: app.DocumentsRepo,
		Cases:     app.CasesRepo,
		Companies: app.CompaniesRepo,
		Retry:     app.Retry,
		Logger:    app.Logger.Named("uploads"),
	}
	app.GeneratedService = &generateddocs.Service{
		Repo:      app.GeneratedRepo,
		Cases:     app.CasesRepo,
		Companies: app.CompaniesRepo,
		Store:     app.Store,
		Retry:     app.Retry,
		Logger:    app.Logger.Named("generateddocs"),
		Delay:     app.Config.Generation.Delay,
	}
	app.ExtractService = &extract.Service{
		Documents: app.DocumentsRepo,
		Store:     app.Store,
		Retry:     app.Retry,
		Logger:    app.Logger.Named("extract"),
	}
}
