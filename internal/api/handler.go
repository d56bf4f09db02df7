package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"talent-match/internal/config"
	"talent-match/internal/embedding"
	"talent-match/internal/graph"
	"talent-match/internal/ingest"
	"talent-match/internal/llm"
	"talent-match/internal/matching"
	"talent-match/internal/moderation"
	"talent-match/internal/notify"
	"talent-match/internal/storage"
	"talent-match/internal/workflow"
)

type API struct {
	db         *storage.DB
	cfg        *config.Config
	graph      *graph.Store
	embedder   *embedding.Service
	llmService *llm.Service
	parser     *ingest.ResumeParser
	enricher   *ingest.Enricher
	filter     *moderation.Filter
	engine     *workflow.Engine
	notifier   *notify.Dispatcher

	stopProjector context.CancelFunc
}

func NewAPI(cfg *config.Config, db *storage.DB) *API {
	graphStore := graph.NewStore(db.GetConnection())
	embedder := embedding.NewService(cfg.OpenAIAPIKey, db.GetConnection())
	llmService := llm.NewService(cfg.LLMProvider, cfg.LLMAPIKey, cfg.LLMModel)

	engine := workflow.NewEngine(db, 100, 3)

	orchestrator := matching.NewOrchestrator(embedder, embedder, db, engine, cfg.MatchThreshold, 50)
	evaluator := matching.NewEvaluator(graphStore, embedder)

	mailer := notify.NewMailer(cfg.MailAPIToken, cfg.MailFrom)
	notifier := notify.NewDispatcher(db, mailer, cfg.PublicBaseURL)

	pipeline := workflow.NewPipeline(db, graphStore, embedder, orchestrator, evaluator, llmService, notifier)
	pipeline.RegisterEngine(engine)

	projector := workflow.NewProjector(db, 0, 0)
	pipeline.RegisterProjector(projector)

	projectorCtx, stopProjector := context.WithCancel(context.Background())

	api := &API{
		db:            db,
		cfg:           cfg,
		graph:         graphStore,
		embedder:      embedder,
		llmService:    llmService,
		parser:        ingest.NewResumeParser(cfg.UploadsDir),
		enricher:      ingest.NewEnricher(llmService, db, engine),
		filter:        moderation.NewDefaultFilter(),
		engine:        engine,
		notifier:      notifier,
		stopProjector: stopProjector,
	}

	engine.Start(4)
	projector.Start(projectorCtx)

	return api
}

// Shutdown stops the background machinery. In-flight runs finish first.
func (a *API) Shutdown() {
	a.stopProjector()
	a.engine.Stop()
	log.Println("[API] Background machinery stopped")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[API] Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
