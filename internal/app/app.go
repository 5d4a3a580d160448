package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/templui/storyloom/internal/config"
	"github.com/templui/storyloom/internal/db"
	"github.com/templui/storyloom/internal/genai"
	"github.com/templui/storyloom/internal/kvstore"
	"github.com/templui/storyloom/internal/repository"
	"github.com/templui/storyloom/internal/service"
	"github.com/templui/storyloom/internal/storage"
	"github.com/templui/storyloom/internal/studio"
)

type App struct {
	Cfg            *config.Config
	DB             *sqlx.DB
	Store          kvstore.Store
	AuthService    *service.AuthService
	EmailService   *service.EmailService
	StoryService   *service.StoryService
	AssetService   *service.AssetService
	OrphanService  *service.OrphanService
	FileService    *service.FileService
	LedgerService  *service.LedgerService
	CatalogService *service.CatalogService
	WriterService  *service.WriterService
	Studio         *studio.Manager
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	err = db.RunMigrations(ctx, database.DB, cfg.DBDriver)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	store, err := newStore(ctx, cfg)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to initialize key-value store: %w", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	storyRepository := repository.NewStoryRepository(database)
	assetRepository := repository.NewAssetRepository(database)
	orphanRepository := repository.NewOrphanRepository(database)
	fileRepository := repository.NewFileRepository(database)

	// Storage is optional; without a bucket cover uploads answer 503
	var fileStorage storage.Storage
	if cfg.StorageEnabled() {
		s3Storage, err := storage.New(ctx, cfg)
		if err != nil {
			_ = store.Close()
			_ = database.Close()
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		fileStorage = s3Storage
	} else {
		slog.Info("file storage disabled, S3_BUCKET not set")
	}

	completer, err := genai.New(genai.Config{
		BaseURL: cfg.GeminiBaseURL,
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		Timeout: cfg.GeminiTimeout,
	})
	if err != nil {
		_ = store.Close()
		_ = database.Close()
		return nil, fmt.Errorf("failed to initialize text generation client: %w", err)
	}

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	authService := service.NewAuthService(userRepository, emailService, cfg.JWTSecret, cfg.JWTExpiry, cfg.CookieSecure)
	storyService := service.NewStoryService(storyRepository, assetRepository)
	assetService := service.NewAssetService(assetRepository)
	orphanService := service.NewOrphanService(orphanRepository, storyRepository, assetRepository)
	fileService := service.NewFileService(fileRepository, storyService, fileStorage)
	ledgerService := service.NewLedgerService(store, emailService)
	writerService := service.NewWriterService(completer)

	catalogService, err := service.NewCatalogService(os.DirFS(cfg.ContentPath), ledgerService)
	if err != nil {
		_ = store.Close()
		_ = database.Close()
		return nil, fmt.Errorf("failed to load story catalog: %w", err)
	}

	manager := studio.NewManager(storyService, assetService, orphanService, studio.Options{
		StepDelay:    cfg.StudioStepDelay,
		AssetBaseURL: cfg.StudioAssetBaseURL,
		Clock:        studio.RealClock,
		Timeout:      cfg.StudioTimeout,
		IdleTTL:      cfg.StudioIdleTTL,
	})

	return &App{
		Cfg:            cfg,
		DB:             database,
		Store:          store,
		AuthService:    authService,
		EmailService:   emailService,
		StoryService:   storyService,
		AssetService:   assetService,
		OrphanService:  orphanService,
		FileService:    fileService,
		LedgerService:  ledgerService,
		CatalogService: catalogService,
		WriterService:  writerService,
		Studio:         manager,
	}, nil
}

func newStore(ctx context.Context, cfg *config.Config) (kvstore.Store, error) {
	switch cfg.KVDriver {
	case "redis":
		return kvstore.NewRedis(ctx, kvstore.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	case "memory", "":
		slog.Info("key-value store initialized", "driver", "memory")
		return kvstore.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported kv driver %q", cfg.KVDriver)
	}
}

// StartBackground runs the orphaned story sweeper and the idle studio
// session pruner until ctx is done. A non-positive interval disables either.
func (a *App) StartBackground(ctx context.Context) {
	if a.Cfg.StudioIdleTTL > 0 {
		go a.Studio.Start(ctx, max(a.Cfg.StudioIdleTTL/2, time.Second))
	}

	if a.Cfg.OrphanSweepInterval <= 0 {
		slog.Warn("orphan sweeper disabled", "interval", a.Cfg.OrphanSweepInterval)
		return
	}
	go a.OrphanService.Start(ctx, a.Cfg.OrphanSweepInterval)
}

func (a *App) Close() error {
	var errs []error
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}
