package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"papyrus/apps/backend/features/ingest"
	"papyrus/apps/backend/features/runs"
	"papyrus/apps/backend/features/search"
	"papyrus/apps/backend/internal/config"
	"papyrus/apps/backend/internal/document"
	"papyrus/apps/backend/internal/embedding"
	"papyrus/apps/backend/internal/extract"
	"papyrus/apps/backend/internal/middleware"
	"papyrus/apps/backend/internal/pipeline"
	"papyrus/apps/backend/internal/text"
	"papyrus/apps/backend/internal/worker"
)

// VectorStore is everything the application needs from the vector database.
type VectorStore interface {
	EnsureSchema(ctx context.Context) error
	UpsertChunks(ctx context.Context, chunks []document.Chunk) error
	Search(ctx context.Context, queryVector []float32, limit int) ([]document.ChunkResult, error)
	DeleteByDocument(ctx context.Context, documentID string) error
	CountChunks(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
}

// GraphStore is everything the application needs from the knowledge graph
// service.
type GraphStore interface {
	AddEpisode(ctx context.Context, ep document.Episode) (*document.EpisodeReceipt, error)
	Search(ctx context.Context, query string, limit int) ([]document.GraphResult, error)
	EntityRelationships(ctx context.Context, entityName string) ([]document.Relationship, error)
	Ping(ctx context.Context) error
}

// Embedder covers both the pipeline's batch path and search's single-query
// path.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

type App struct {
	Handler        http.Handler
	Pipeline       *pipeline.Pipeline
	IngestService  *ingest.Service
	ResultConsumer *worker.ResultConsumer

	port int
}

func New(
	cfg *config.Config,
	db *sql.DB,
	vecStore VectorStore,
	graph GraphStore,
	provider Embedder,
	taskPub worker.TaskPublisher,
) (*App, error) {

	// Processing pipeline
	segmenter := text.NewSegmenter(text.Config{
		ChunkSize:         cfg.ChunkSize,
		ChunkOverlap:      cfg.ChunkOverlap,
		MaxChunkSize:      cfg.MaxChunkSize,
		MinChunkSize:      cfg.MinChunkSize,
		PreserveStructure: cfg.PreserveStructure,
	})
	batcher := embedding.NewBatcher(provider, cfg.EmbedBatchSize, cfg.EmbeddingDims)
	progressPub := worker.NewProgressPublisher(taskPub)
	pipe := pipeline.New(extract.NewPDFExtractor(), segmenter, batcher, vecStore, graph, progressPub)

	// Feature: ingest
	ingestService := ingest.NewService(pipe, progressPub)
	ingestHandler := ingest.NewHandler(ingestService, cfg.UploadDir, cfg.MaxUploadSizeMB<<20)

	// Feature: search
	queryLogger, err := search.NewFileQueryLogger("data/logs/query.log")
	if err != nil {
		slog.Warn("failed to create query logger, falling back to stdout", "error", err)
		queryLogger = search.NewQueryLogger(os.Stdout)
	}
	searchService := search.NewService(provider, vecStore, graph, search.Defaults{
		VectorWeight: cfg.VectorWeight,
		GraphWeight:  cfg.GraphWeight,
		Limit:        cfg.SearchLimit,
	}, queryLogger)
	searchHandler := search.NewHandler(searchService)

	// Feature: runs
	runsRepo := runs.NewPostgresRepo(db)
	runsService := runs.NewService(runsRepo)
	runsHandler := runs.NewHandler(runsService, pipe.Stats(), vecStore)

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

	mux.Handle("POST /api/documents/upload", middleware.CorrelationID(enableCORS(ingestHandler.Upload)))
	mux.Handle("POST /api/documents/upload/batch", middleware.CorrelationID(enableCORS(ingestHandler.UploadBatch)))

	mux.Handle("POST /api/search", middleware.CorrelationID(enableCORS(searchHandler.Search)))
	mux.Handle("GET /api/search/entities/{name}/relationships", middleware.CorrelationID(enableCORS(searchHandler.EntityRelationships)))

	mux.Handle("GET /api/runs", middleware.CorrelationID(enableCORS(runsHandler.List)))
	mux.Handle("GET /api/runs/{jobId}", middleware.CorrelationID(enableCORS(runsHandler.Get)))
	mux.Handle("GET /api/stats", middleware.CorrelationID(enableCORS(runsHandler.GetStats)))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	mux.Handle("GET /health/ready", readinessHandler(pipe))

	return &App{
		Handler:        mux,
		Pipeline:       pipe,
		IngestService:  ingestService,
		ResultConsumer: worker.NewResultConsumer(runsService),
		port:           cfg.ServerPort,
	}, nil
}

// readinessHandler reports per-component health, 503 when any backend is
// unreachable.
func readinessHandler(pipe *pipeline.Pipeline) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		components := pipe.Validate(r.Context())
		status := http.StatusOK
		for _, healthy := range components {
			if !healthy {
				status = http.StatusServiceUnavailable
				break
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(map[string]interface{}{"components": components}); err != nil {
			slog.Error("failed to encode readiness response", "error", err)
		}
	})
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
		// Let background ingestion runs finish before the process exits.
		a.IngestService.Wait()
	}()

	slog.Info("server starting", "port", a.port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
