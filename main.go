package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nsqio/go-nsq"

	"papyrus/apps/backend/internal/adapter/gemini"
	"papyrus/apps/backend/internal/adapter/graphiti"
	"papyrus/apps/backend/internal/app"
	"papyrus/apps/backend/internal/config"
	"papyrus/apps/backend/internal/logger"
)

func main() {
	log := slog.New(logger.NewContextHandler(slog.NewJSONHandler(os.Stdout, nil)))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	deps, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		slog.Error("failed to bootstrap backends", "error", err)
		os.Exit(1)
	}
	defer deps.DB.Close()
	defer deps.NSQProducer.Stop()

	embedder, err := gemini.NewEmbedder(ctx, cfg.GeminiAPIKey, cfg.EmbeddingModel)
	if err != nil {
		slog.Error("failed to create embedding client", "error", err)
		os.Exit(1)
	}
	defer embedder.Close()

	graph := graphiti.NewClient(cfg.GraphServiceURL)

	application, err := app.New(cfg, deps.DB, deps.VectorStore, graph, embedder, deps.NSQProducer)
	if err != nil {
		slog.Error("failed to build application", "error", err)
		os.Exit(1)
	}

	// Result consumer: persists terminal processing results published on NSQ.
	consumer, err := nsq.NewConsumer(config.TopicIngestResult, "backend", nsq.NewConfig())
	if err != nil {
		slog.Error("failed to create NSQ result consumer", "error", err)
		os.Exit(1)
	}
	consumer.AddHandler(nsq.HandlerFunc(func(m *nsq.Message) error {
		return application.ResultConsumer.HandleMessage(m)
	}))
	if err := consumer.ConnectToNSQD(cfg.NSQDHost); err != nil {
		slog.Error("failed to connect result consumer to nsqd", "error", err)
		os.Exit(1)
	}
	defer consumer.Stop()

	if err := application.Run(ctx); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
