package di

import (
	"context"
	"fmt"

	"parts-assistant/internal/adapter/tool"
	"parts-assistant/internal/application/port/input"
	"parts-assistant/internal/application/port/output"
	"parts-assistant/internal/application/service"
	"parts-assistant/internal/infrastructure/llm/openrouter"
	"parts-assistant/internal/infrastructure/logger"
	"parts-assistant/internal/infrastructure/prompts"
	"parts-assistant/internal/infrastructure/salesdb"
	"parts-assistant/internal/infrastructure/store/postgres"
	"parts-assistant/internal/infrastructure/tracking"
	"parts-assistant/internal/server"
	"parts-assistant/internal/usecase/chat"
)

type Container struct {
	Logger output.LoggerPort
	LLM    output.LLMPort
	Tools  output.ToolRegistry
	Store  *postgres.DB
	Chat   input.ChatService
	Server *server.Server
}

type Config struct {
	OpenRouterAPIKey string
	OpenRouterModel  string
	DetrackAPIKey    string
	SalesDBDSN       string
	AppDBDSN         string
	JWTSecret        string
	LogLevel         string
}

func NewContainer(ctx context.Context, cfg Config) (*Container, error) {
	log, err := logger.NewLoggerAdapter(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	store, err := postgres.NewDB(ctx, cfg.AppDBDSN, log)
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to open application store: %w", err)
	}
	if err := store.EnsureTables(ctx); err != nil {
		store.Close()
		log.Close()
		return nil, fmt.Errorf("failed to prepare application store: %w", err)
	}

	salesConnector, err := salesdb.NewMySQLConnector(cfg.SalesDBDSN, log)
	if err != nil {
		store.Close()
		log.Close()
		return nil, fmt.Errorf("failed to configure sales database: %w", err)
	}

	trackingCfg := tracking.DefaultConfig(cfg.DetrackAPIKey)
	trackingCfg.Logger = log
	trackingClient := tracking.NewClient(trackingCfg)

	llmCfg := openrouter.DefaultConfig(cfg.OpenRouterAPIKey, cfg.OpenRouterModel)
	llmCfg.Logger = log
	llm := openrouter.NewOpenRouterAdapter(llmCfg)

	tools := service.NewToolRegistry()
	registerAssistantTools(tools, salesConnector, trackingClient, store, log)

	uc := chat.New(llm, tools, store, log, prompts.DefaultSystemPrompt)

	srv := server.New(server.Config{
		JWTSecret: cfg.JWTSecret,
		Chat:      uc,
		Users:     store,
		Drivers:   store,
		Settings:  store,
		Logger:    log,
	})

	return &Container{
		Logger: log,
		LLM:    llm,
		Tools:  tools,
		Store:  store,
		Chat:   uc,
		Server: srv,
	}, nil
}

func (c *Container) Close() {
	if c.Store != nil {
		c.Store.Close()
	}
	if c.Logger != nil {
		c.Logger.Close()
	}
}

func registerAssistantTools(
	registry *service.ToolRegistryImpl,
	connector salesdb.Connector,
	trackingClient *tracking.Client,
	drivers output.DriverStore,
	log output.LoggerPort,
) {
	registry.Register(tool.NewSQLQueryTool(connector, log))
	registry.Register(tool.NewTrackDeliveryTool(trackingClient, log))
	registry.Register(tool.NewTrackVehicleTool(trackingClient, log))
	registry.Register(tool.NewDriverDeliveriesTool(trackingClient, drivers, log))
}
