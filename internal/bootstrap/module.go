package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"voltway/internal/bootstrap/config"
	"voltway/internal/bootstrap/database"
	"voltway/internal/bootstrap/logging"
	cacheinfra "voltway/internal/infrastructure/cache"
	openaiinfra "voltway/internal/infrastructure/llm/openai"
	sqliterepo "voltway/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "voltway/internal/infrastructure/persistence/sqlite/uow"
	"voltway/internal/ports"
	"voltway/internal/usecase/assistant"
	"voltway/internal/usecase/ingest"
	"voltway/internal/usecase/issues"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(provideClock),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewIssueRepository,
			fx.As(new(ports.IssueRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewEmailRepository,
			fx.As(new(ports.EmailRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewStockRepository,
			fx.As(new(ports.StockRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewOrderRepository,
			fx.As(new(ports.OrderRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewBOMRepository,
			fx.As(new(ports.BOMRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(
		fx.Annotate(
			cacheinfra.NewSQLiteCache,
			fx.As(new(ports.Cache)),
		),
	),
	fx.Provide(provideLLMConfig),
	fx.Provide(
		fx.Annotate(
			openaiinfra.NewClassifier,
			fx.As(new(ports.MessageClassifier)),
		),
	),
	fx.Provide(
		fx.Annotate(
			openaiinfra.NewToolSelector,
			fx.As(new(ports.ToolSelector)),
		),
	),
	fx.Provide(issues.NewService),
	fx.Provide(ingest.NewService),
	fx.Provide(provideAssistantOptions),
	fx.Provide(assistant.NewService),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}

func provideClock(cfg config.Config) (func() time.Time, error) {
	return cfg.Clock()
}

func provideLLMConfig(cfg config.Config) openaiinfra.Config {
	return openaiinfra.Config{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
		MaxAttempts: cfg.Retry.MaxAttempts,
		Delay:       cfg.Retry.Delay,
	}
}

func provideAssistantOptions(cfg config.Config) assistant.Options {
	return assistant.Options{
		MaxToolIterations: cfg.Assistant.MaxToolIterations,
		HistoryTurns:      cfg.Assistant.HistoryTurns,
		LowStockThreshold: cfg.Planning.LowStockThreshold,
		ServiceLevelZ:     cfg.Planning.ServiceLevelZ,
		SigmaCoefficient:  cfg.Planning.DemandSigmaCoefficient,
	}
}
