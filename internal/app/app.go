package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/sidkoko/discord-copilot/features/bot"
	"github.com/sidkoko/discord-copilot/features/channel"
	"github.com/sidkoko/discord-copilot/features/instructions"
	"github.com/sidkoko/discord-copilot/features/job"
	"github.com/sidkoko/discord-copilot/features/knowledge"
	"github.com/sidkoko/discord-copilot/features/memory"
	"github.com/sidkoko/discord-copilot/features/stats"
	"github.com/sidkoko/discord-copilot/internal/adapter/openai"
	"github.com/sidkoko/discord-copilot/internal/config"
	"github.com/sidkoko/discord-copilot/internal/middleware"
	"github.com/sidkoko/discord-copilot/internal/retrieval"
	"github.com/sidkoko/discord-copilot/internal/worker"
)

// TaskPublisher is the outbound side of NSQ.
type TaskPublisher interface {
	Publish(topic string, body []byte) error
}

// VectorStore is everything the app needs from Weaviate.
type VectorStore interface {
	StoreChunks(ctx context.Context, chunks []worker.Chunk) error
	DeleteChunksByDocumentID(ctx context.Context, documentID string) error
	Search(ctx context.Context, vector []float32, topK int) ([]retrieval.SearchRecord, error)
	CountChunks(ctx context.Context) (int, error)
	EnsureSchema(ctx context.Context) error
}

type App struct {
	Handler        http.Handler
	IngestConsumer *worker.IngestConsumer

	port int
}

func New(
	cfg *config.Config,
	db *sql.DB,
	vecStore VectorStore,
	taskPub TaskPublisher,
	llm *openai.Client,
) (*App, error) {

	// Feature: Knowledge
	knowledgeRepo := knowledge.NewPostgresRepo(db)
	knowledgeService := knowledge.NewService(knowledgeRepo, taskPub, vecStore)
	knowledgeHandler := knowledge.NewHandler(knowledgeService, cfg.UploadDir, cfg.MaxUploadSizeMB<<20)

	// Feature: Instructions
	instructionsRepo := instructions.NewPostgresRepo(db)
	instructionsService := instructions.NewService(instructionsRepo)
	instructionsHandler := instructions.NewHandler(instructionsService)

	// Feature: Channel allow-list
	channelRepo := channel.NewPostgresRepo(db)
	channelService := channel.NewService(channelRepo)
	channelHandler := channel.NewHandler(channelService)

	// Feature: Memory
	memoryRepo := memory.NewPostgresRepo(db)
	memoryService := memory.NewService(memoryRepo, llm)
	memoryHandler := memory.NewHandler(memoryService)

	// Feature: Job
	jobRepo := job.NewPostgresRepo(db)
	jobService := job.NewService(jobRepo, taskPub)
	jobHandler := job.NewHandler(jobService)

	// Feature: Stats
	statsHandler := stats.NewHandler(knowledgeRepo, channelRepo, jobRepo, vecStore)

	// Retrieval pipeline
	queryLogger, err := retrieval.NewFileQueryLogger(cfg.QueryLogPath)
	if err != nil {
		slog.Warn("failed to create query logger, falling back to stdout", "error", err)
		queryLogger = retrieval.NewQueryLogger(os.Stdout)
	}
	retrievalService := retrieval.NewService(llm, vecStore, queryLogger)

	// Feature: Bot
	botService := bot.NewService(channelService, instructionsService, memoryService, retrievalService, llm, cfg.TopKRetrieval, cfg.SimilarityThreshold)
	botHandler := bot.NewHandler(botService)

	// Middleware: CORS
	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	// Routes
	mux := http.NewServeMux()

	mux.Handle("POST /api/bot/query", middleware.CorrelationID(enableCORS(botHandler.Query)))
	mux.Handle("POST /api/bot/message", middleware.CorrelationID(enableCORS(botHandler.Message)))

	mux.Handle("GET /api/channels", middleware.CorrelationID(enableCORS(channelHandler.List)))
	mux.Handle("POST /api/channels", middleware.CorrelationID(enableCORS(channelHandler.Create)))
	mux.Handle("DELETE /api/channels/{id}", middleware.CorrelationID(enableCORS(channelHandler.Delete)))

	mux.Handle("GET /api/instructions", middleware.CorrelationID(enableCORS(instructionsHandler.Get)))
	mux.Handle("POST /api/instructions", middleware.CorrelationID(enableCORS(instructionsHandler.Set)))

	mux.Handle("GET /api/memory", middleware.CorrelationID(enableCORS(memoryHandler.Get)))
	mux.Handle("POST /api/memory", middleware.CorrelationID(enableCORS(memoryHandler.Update)))
	mux.Handle("DELETE /api/memory", middleware.CorrelationID(enableCORS(memoryHandler.Clear)))

	mux.Handle("GET /api/knowledge/list", middleware.CorrelationID(enableCORS(knowledgeHandler.List)))
	mux.Handle("POST /api/knowledge/upload", middleware.CorrelationID(enableCORS(knowledgeHandler.Upload)))
	mux.Handle("DELETE /api/knowledge/{id}", middleware.CorrelationID(enableCORS(knowledgeHandler.Delete)))

	mux.Handle("GET /api/jobs/failed", middleware.CorrelationID(enableCORS(jobHandler.List)))
	mux.Handle("POST /api/jobs/{id}/retry", middleware.CorrelationID(enableCORS(jobHandler.Retry)))

	mux.Handle("GET /api/stats", middleware.CorrelationID(enableCORS(statsHandler.GetStats)))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	ingestConsumer := worker.NewIngestConsumer(llm, vecStore, knowledgeRepo, jobService, cfg.ChunkSize, cfg.ChunkOverlap)

	return &App{
		Handler:        mux,
		IngestConsumer: ingestConsumer,
		port:           cfg.ServerPort,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.port),
		Handler: a.Handler,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "port", a.port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
