package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nsqio/go-nsq"

	"github.com/sidkoko/discord-copilot/internal/adapter/openai"
	"github.com/sidkoko/discord-copilot/internal/app"
	"github.com/sidkoko/discord-copilot/internal/config"
	"github.com/sidkoko/discord-copilot/internal/logger"
)

func main() {
	base := slog.NewJSONHandler(os.Stdout, nil)
	slog.SetDefault(slog.New(logger.NewContextHandler(base)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer deps.DB.Close()

	llm := openai.NewClient(
		cfg.OpenRouterAPIKey,
		cfg.OpenRouterBaseURL,
		cfg.ChatModel,
		cfg.EmbeddingModel,
		cfg.EmbeddingDimensions,
		time.Duration(cfg.ProviderTimeoutSeconds)*time.Second,
	)

	a, err := app.New(cfg, deps.DB, deps.VectorStore, deps.NSQProducer, llm)
	if err != nil {
		slog.Error("failed to build app", "error", err)
		os.Exit(1)
	}

	// Ingest worker
	consumer, err := nsq.NewConsumer(config.TopicIngestDocument, "backend", nsq.NewConfig())
	if err != nil {
		slog.Error("failed to create NSQ consumer", "error", err)
		os.Exit(1)
	}
	consumer.AddHandler(nsq.HandlerFunc(func(m *nsq.Message) error {
		return a.IngestConsumer.HandleMessage(m)
	}))
	if err := consumer.ConnectToNSQLookupd(cfg.NSQLookupd); err != nil {
		slog.Error("failed to connect to NSQLookupd", "error", err)
		os.Exit(1)
	}
	slog.Info("ingest consumer connected", "topic", config.TopicIngestDocument)

	defer consumer.Stop()

	if err := a.Run(ctx); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("shutdown complete")
}
