package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"nexus/internal/assistant"
	"nexus/internal/gateway/config"
	"nexus/internal/gateway/handler/rpc"
	"nexus/internal/gateway/repository/inbox"
	"nexus/internal/gateway/server"
	"nexus/internal/llmclient"
	"nexus/internal/portfolio"
)

type App struct {
	server  *server.Server
	stores  *gatewayStores
	llm     llmclient.Client
	log     *zap.Logger
	Catalog *portfolio.Controller
	Chat    *assistant.Store
	Inbox   inbox.Store
}

func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}

	// Dependencies
	llm, err := newLLMClient(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to init llm client: %w", err)
	}
	stores, err := initStores(cfg, log)
	if err != nil {
		_ = llm.Close()
		return nil, err
	}

	generator := portfolio.NewModelGenerator(llm, stores.images, log.Named("images"))
	catalog := portfolio.NewController(portfolio.DefaultCatalog(), generator, portfolio.Options{
		Timeout: cfg.GenerationTimeout,
		Logger:  log.Named("portfolio"),
	})
	advisor := assistant.NewModelAdvisor(llm, log.Named("advisor"))
	chat := assistant.NewStore(advisor, assistant.StoreOptions{
		MaxSessions:  cfg.Chat.MaxSessions,
		TTL:          cfg.Chat.SessionTTL,
		ReplyTimeout: cfg.Chat.ReplyTimeout,
		Logger:       log.Named("assistant"),
	})

	portfolioHandler := rpc.NewPortfolioHandler(catalog, log.Named("rpc.portfolio"))
	contactHandler := rpc.NewContactHandler(stores.submitter, log.Named("rpc.contact"))
	assistantHandler := rpc.NewAssistantHandler(chat, log.Named("rpc.assistant"))

	// Routing & Server
	router := server.NewRouter(portfolioHandler, contactHandler, assistantHandler, log.Named("http"))
	srv := server.New(cfg.Port, router, log)

	log.Info("gateway wired",
		zap.String("env", cfg.Env),
		zap.String("llm", llm.Name()),
		zap.String("images", stores.imagesLabel),
		zap.String("inbox", stores.inboxLabel),
	)
	return &App{
		server:  srv,
		stores:  stores,
		llm:     llm,
		log:     log,
		Catalog: catalog,
		Chat:    chat,
		Inbox:   stores.inbox,
	}, nil
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	a.Close()
	return err
}

// Close releases clients without touching the HTTP server.
func (a *App) Close() {
	if a.stores != nil {
		a.stores.close()
	}
	if a.llm != nil {
		_ = a.llm.Close()
	}
}

func newLLMClient(ctx context.Context, cfg *config.Config, log *zap.Logger) (llmclient.Client, error) {
	if cfg.LLM.Fake {
		log.Warn("using fake llm client; set GEMINI_API_KEY for real content")
		return llmclient.NewFakeClient(), nil
	}
	return llmclient.NewGeminiClient(ctx, llmclient.GeminiConfig{
		APIKey:     cfg.LLM.APIKey,
		TextModel:  cfg.LLM.TextModel,
		ImageModel: cfg.LLM.ImageModel,
	}, log.Named("gemini"))
}
