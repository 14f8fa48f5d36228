package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/dogtuna/thoughtify/internal/api/handlers"
	mw "github.com/dogtuna/thoughtify/internal/api/middleware"
	"github.com/dogtuna/thoughtify/internal/buildconfig"
	"github.com/dogtuna/thoughtify/internal/config"
	"github.com/dogtuna/thoughtify/internal/domain"
	"github.com/dogtuna/thoughtify/internal/embedding"
	"github.com/dogtuna/thoughtify/internal/llm"
	"github.com/dogtuna/thoughtify/internal/service"
	"github.com/dogtuna/thoughtify/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// App holds the router plus request metrics.
type App struct {
	Router       *chi.Mux
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

func NewApp(db *pgxpool.Pool, logger *zap.Logger) *App {
	// Stores
	userStore := store.NewUserStore(db)
	initiativeStore := store.NewInitiativeStore(db)
	taskStore := store.NewTaskStore(db)
	questionStore := store.NewQuestionStore(db)
	messageStore := store.NewMessageStore(db)
	notificationStore := store.NewNotificationStore(db)
	embeddingStore := store.NewHypothesisEmbeddingStore(db)

	// External clients via provider factory
	var embeddingClient domain.EmbeddingClient
	var llmClient domain.LLMClient

	llmProvider := config.LLMProvider()
	embeddingProvider := config.EmbeddingProvider()

	var err error
	llmClient, err = llm.NewClient(llmProvider, config.LLMAPIKey())
	if err != nil {
		logger.Warn("LLM client initialization failed", zap.String("provider", llmProvider), zap.Error(err))
	} else {
		logger.Info("LLM client initialized", zap.String("provider", llmProvider))
	}

	embeddingClient, err = embedding.NewClient(embeddingProvider, config.EmbeddingAPIKey())
	if err != nil {
		logger.Warn("Embedding client initialization failed", zap.String("provider", embeddingProvider), zap.Error(err))
	} else {
		logger.Info("Embedding client initialized", zap.String("provider", embeddingProvider))
	}

	// Services
	scoring := service.ScoringProfile(config.ScoringProfile())
	answerSvc := service.NewAnswerService(initiativeStore, taskStore, questionStore, messageStore, notificationStore, llmClient, scoring, logger)
	hypothesisSvc := service.NewHypothesisService(initiativeStore, scoring, logger)

	if embeddingClient != nil {
		answerSvc.SetEmbeddingIndex(embeddingStore, embeddingClient, config.SimilarityThreshold())
		hypothesisSvc.SetEmbeddingIndex(embeddingStore, embeddingClient)
	}

	// Handlers
	userHandler := handlers.NewUserHandler(userStore)
	initiativeHandler := handlers.NewInitiativeHandler(initiativeStore, taskStore, questionStore)
	answerHandler := handlers.NewAnswerHandler(answerSvc)
	hypothesisHandler := handlers.NewHypothesisHandler(initiativeStore, hypothesisSvc)
	notificationHandler := handlers.NewNotificationHandler(initiativeStore, notificationStore)
	messageHandler := handlers.NewMessageHandler(initiativeStore, messageStore)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		startTime: time.Now(),
	}

	// Metrics collector for middleware
	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	// Health (no auth)
	r.Get("/health", healthHandler(db))

	// Metrics (no auth)
	r.Get("/metrics", app.metricsHandler())

	// User creation (no auth — bootstrap endpoint)
	r.Post("/v1/users", userHandler.Create)

	// Authenticated routes
	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(userStore))

		r.Route("/initiatives", func(r chi.Router) {
			r.Post("/", initiativeHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", initiativeHandler.Get)
				r.Get("/tasks", initiativeHandler.ListTasks)
				r.Get("/questions", initiativeHandler.ListQuestions)
				r.Get("/unread", initiativeHandler.UnreadCounts)
				r.Get("/notifications", notificationHandler.List)
				r.Post("/answers", answerHandler.Process)
				r.Get("/messages/{messageId}", messageHandler.Get)
				r.Route("/hypotheses", func(r chi.Router) {
					r.Get("/", hypothesisHandler.List)
					r.Post("/", hypothesisHandler.Create)
					r.Post("/suggested/{suggestedId}/promote", hypothesisHandler.Promote)
				})
			})
		})
	})

	return app
}

// NewRouter returns just the chi.Mux.
func NewRouter(db *pgxpool.Pool, logger *zap.Logger) *chi.Mux {
	return NewApp(db, logger).Router
}

func healthHandler(db *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"version":        buildconfig.Version(),
			"commit":         buildconfig.Commit(),
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure stores and clients satisfy interfaces at compile time.
var (
	_ domain.UserStore                = (*store.UserStore)(nil)
	_ domain.InitiativeStore          = (*store.InitiativeStore)(nil)
	_ domain.TaskStore                = (*store.TaskStore)(nil)
	_ domain.QuestionStore            = (*store.QuestionStore)(nil)
	_ domain.MessageStore             = (*store.MessageStore)(nil)
	_ domain.NotificationStore        = (*store.NotificationStore)(nil)
	_ domain.HypothesisEmbeddingStore = (*store.HypothesisEmbeddingStore)(nil)
	_ domain.EmbeddingClient          = (*embedding.OpenAIClient)(nil)
	_ domain.EmbeddingClient          = (*embedding.MockClient)(nil)
	_ domain.LLMClient                = (*llm.OpenAIClient)(nil)
	_ domain.LLMClient                = (*llm.AnthropicClient)(nil)
	_ domain.LLMClient                = (*llm.GeminiClient)(nil)
	_ domain.LLMClient                = (*llm.MockClient)(nil)
)
