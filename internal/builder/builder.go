package builder

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/futig/coach-backend/internal/api"
	discoveryapi "github.com/futig/coach-backend/internal/api/discovery"
	projectapi "github.com/futig/coach-backend/internal/api/project"
	"github.com/futig/coach-backend/internal/config"
	"github.com/futig/coach-backend/internal/curriculum"
	"github.com/futig/coach-backend/internal/integration/llm"
	"github.com/futig/coach-backend/internal/pkg/formatter"
	"github.com/futig/coach-backend/internal/pkg/logger"
	"github.com/futig/coach-backend/internal/pkg/metrics"
	"github.com/futig/coach-backend/internal/pkg/validator"
	"github.com/futig/coach-backend/internal/progression"
	"github.com/futig/coach-backend/internal/prompt"
	"github.com/futig/coach-backend/internal/repository"
	"github.com/futig/coach-backend/internal/telegram"
	"github.com/futig/coach-backend/internal/usecase/discovery"
	"github.com/futig/coach-backend/internal/usecase/project"
)

// core holds what both the HTTP server and the Telegram bot run on
type core struct {
	cfg       *config.Config
	logger    *zap.Logger
	db        *pgxpool.Pool
	recorder  *metrics.Recorder
	chats     *repository.TelegramChatRepository
	discovery *discovery.DiscoveryUsecase
	project   *project.ProjectUsecase
}

func Build() (*App, error) {
	c, err := buildCore(context.Background())
	if err != nil {
		return nil, err
	}

	inputValidator := validator.NewValidator(c.cfg.MaxInputLength)

	discoveryHandler := discoveryapi.NewHandler(c.discovery, inputValidator)
	projectHandler := projectapi.NewHandler(c.project, inputValidator)
	c.logger.Info("API handlers initialized")

	// the generator call dominates request time
	requestTimeout := c.cfg.LLMCfg.RequestTimeout + 30*time.Second
	router := api.SetupRouter(discoveryHandler, projectHandler, c.recorder.Handler(), requestTimeout, c.logger)
	c.logger.Info("HTTP router configured")

	server := &http.Server{
		Addr:         c.cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: requestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	c.logger.Info("Application built successfully",
		zap.String("environment", c.cfg.Environment),
	)

	return &App{
		server:          server,
		db:              c.db,
		logger:          c.logger,
		shutdownTimeout: c.cfg.ShutdownTimeout,
	}, nil
}

// BuildTelegramBot creates and initializes the Telegram bot
func BuildTelegramBot() (telegram.Bot, *zap.Logger, error) {
	c, err := buildCore(context.Background())
	if err != nil {
		return nil, nil, err
	}

	if c.cfg.TelegramCfg.BotToken == "" {
		c.db.Close()
		return nil, nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required to run the bot")
	}

	bot, err := telegram.NewBot(&c.cfg.TelegramCfg, c.chats, c.discovery, c.project, c.logger)
	if err != nil {
		c.db.Close()
		return nil, nil, fmt.Errorf("initialize telegram bot: %w", err)
	}

	c.logger.Info("Telegram bot built successfully",
		zap.String("environment", c.cfg.Environment),
	)

	return bot, c.logger, nil
}

func buildCore(ctx context.Context) (*core, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	log.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
		zap.String("llm_provider", cfg.LLMCfg.Provider),
	)

	kb, err := loadCurriculum(cfg.CurriculumDir)
	if err != nil {
		return nil, fmt.Errorf("load curriculum: %w", err)
	}
	log.Info("Curriculum loaded", zap.Int("business_types", len(kb.BusinessTypes())))

	db, err := setupDatabase(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}

	log.Info("Running database migrations")
	if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	log.Info("Database migrations completed successfully")

	var projectRepo repository.ProjectRepository = repository.NewProjectPostgres(db)
	if cfg.CacheCfg.Enabled {
		projectRepo = repository.NewCachedProjectRepository(projectRepo, cfg.CacheCfg.TTL, cfg.CacheCfg.CleanupInterval)
	}
	todoRepo := repository.NewTodoPostgres(db)
	questionnaireRepo := repository.NewQuestionnairePostgres(db)
	chatRepo := repository.NewTelegramChatRepository(db)
	log.Info("Repositories initialized", zap.Bool("project_cache", cfg.CacheCfg.Enabled))

	recorder := metrics.NewRecorder()
	generator := llm.NewInstrumented(newGenerator(cfg.LLMCfg, log), recorder)

	discoveryUC := discovery.NewUsecase(questionnaireRepo, recorder, log)
	projectUC := project.NewUsecase(
		projectRepo,
		todoRepo,
		progression.NewController(kb),
		prompt.NewAssembler(kb),
		generator,
		&cfg.LLMCfg.Retry,
		formatter.NewFactory(cfg.ExportCfg.FontPath()),
		recorder,
		log,
	)
	log.Info("Use cases initialized")

	return &core{
		cfg:       cfg,
		logger:    log,
		db:        db,
		recorder:  recorder,
		chats:     chatRepo,
		discovery: discoveryUC,
		project:   projectUC,
	}, nil
}

func newGenerator(cfg config.LLMConfig, log *zap.Logger) llm.Generator {
	switch cfg.Provider {
	case config.ProviderHTTP:
		log.Info("Using HTTP text generation service", zap.String("url", cfg.Url))
		return llm.NewConnector(cfg, log)
	case config.ProviderOpenAI:
		log.Info("Using OpenAI text generation", zap.String("model", cfg.OpenAIModel))
		return llm.NewOpenAIConnector(cfg, log)
	default:
		log.Info("Using mock text generation")
		return llm.NewMockConnector(log)
	}
}

// loadCurriculum prefers content from dir and falls back to the bundled curricula
func loadCurriculum(dir string) (*curriculum.KnowledgeBase, error) {
	if dir == "" {
		return curriculum.Load()
	}
	return curriculum.LoadFS(os.DirFS(dir))
}
