package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/careerops-api/internal/config"
	"github.com/yourusername/careerops-api/internal/editor"
	"github.com/yourusername/careerops-api/internal/handler"
	"github.com/yourusername/careerops-api/internal/llm"
	"github.com/yourusername/careerops-api/internal/llm/anthropic"
	"github.com/yourusername/careerops-api/internal/llm/gemini"
	"github.com/yourusername/careerops-api/internal/llm/openai"
	"github.com/yourusername/careerops-api/internal/metrics"
	"github.com/yourusername/careerops-api/internal/middleware"
	"github.com/yourusername/careerops-api/internal/repository"
	"github.com/yourusername/careerops-api/internal/service"
	"github.com/yourusername/careerops-api/internal/storage"
	"github.com/yourusername/careerops-api/internal/storage/local"
	"github.com/yourusername/careerops-api/internal/storage/s3"
	"github.com/yourusername/careerops-api/internal/workspace"
)

func main() {
	// ── Logging ──────────────────────────────────────────
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// ── Config ───────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}
	log.Info().Str("env", cfg.Env).Str("port", cfg.Port).Msg("Starting CareerOps API")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// ── Repositories ─────────────────────────────────────
	var (
		catalog repository.JobCatalog
		saved   repository.SavedSessionStore
	)
	if cfg.DatabaseURL != "" {
		pool, err := repository.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer pool.Close()
		log.Info().Msg("Database connected")

		if err := repository.Migrate(ctx, pool, "up"); err != nil {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}
		jobRepo := repository.NewJobRepo(pool)
		if n, err := jobRepo.Seed(ctx, repository.SampleJobs()); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed job catalog")
		} else if n > 0 {
			log.Info().Int("jobs", n).Msg("Job catalog seeded")
		}
		catalog = jobRepo
		saved = repository.NewSavedSessionRepo(pool)
	} else {
		log.Warn().Msg("DATABASE_URL not set, saved sessions are kept in memory")
		catalog = repository.NewMemoryJobRepo(repository.SampleJobs())
		saved = repository.NewMemorySavedSessionRepo()
	}

	// ── Object storage ───────────────────────────────────
	var objects storage.ObjectStore
	switch cfg.ObjectStore {
	case config.StoreS3:
		objects, err = s3.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize S3 store")
		}
	default:
		objects = local.New(cfg.LocalStoreDir)
	}

	// ── Language models ──────────────────────────────────
	completer, vision, speech, err := buildLLM(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("provider", cfg.LLMProvider).Msg("Failed to initialize LLM provider")
	}

	svc := handler.Services{
		Parser:      service.NewResumeParser(completer, vision),
		Analyzer:    service.NewAnalyzer(completer),
		Matcher:     service.NewMatcher(completer),
		Jobs:        service.NewJobExtractor(completer, service.NewJobPageFetcher(nil)),
		Advisor:     service.NewAdvisor(completer),
		Interviewer: service.NewInterviewer(completer, speech, cfg.TTSVoice),
		Letters:     service.NewCoverLetterWriter(completer),
	}
	svc.Pipeline = service.NewPipeline(svc.Analyzer, svc.Matcher)

	// ── Live sessions ────────────────────────────────────
	store := workspace.NewStore(workspace.StoreConfig{
		TTL:         cfg.SessionTTL,
		Granularity: editor.ParseGranularity(cfg.DiffGranularity),
		Resume: func(chat *workspace.Timeline) editor.Interpreter {
			return service.NewResumeInterpreter(completer, chat)
		},
		Letter: func(chat *workspace.Timeline, resume func() string) editor.Interpreter {
			return service.NewCoverLetterInterpreter(completer, chat, resume)
		},
	})
	go store.Run(ctx, time.Minute)

	// ── Handlers ─────────────────────────────────────────
	sessionHandler := handler.NewSessionHandler(store, catalog, objects, svc, cfg.MaxUploadBytes)
	savedHandler := handler.NewSavedSessionHandler(store, saved, objects)
	jobHandler := handler.NewJobHandler(catalog)

	// ── Middleware ────────────────────────────────────────
	authMiddleware, err := middleware.NewAuthMiddleware(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Firebase auth")
	}
	rateLimiter := middleware.NewRateLimiter(ctx, cfg.RateLimitRPS)

	// ── Router ───────────────────────────────────────────
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(metrics.Middleware())

	// CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", middleware.GuestHeader, "X-Request-Id"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check and metrics (unauthenticated)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"service":  "careerops-api",
			"provider": cfg.LLMProvider,
			"sessions": store.Len(),
			"time":     time.Now().UTC(),
		})
	})
	r.GET("/metrics", metrics.Handler())

	// ── Authenticated Routes ─────────────────────────────
	api := r.Group("/", authMiddleware.Authenticate(), rateLimiter.Limit())
	handler.Register(api, sessionHandler, savedHandler, jobHandler)

	// ── Server ───────────────────────────────────────────
	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     r,
		ReadTimeout: 30 * time.Second,
		// Edits and interview scoring wait on the model.
		WriteTimeout: cfg.LLMTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	log.Info().Str("port", cfg.Port).Msg("CareerOps API server running")

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

// buildLLM wires every model client behind timeout, metrics and circuit
// breaker. Vision and speech need an OpenAI key and stay nil without one.
func buildLLM(ctx context.Context, cfg *config.Config) (llm.Completer, llm.Vision, llm.Speech, error) {
	var (
		chat   llm.Completer
		vision llm.Vision
		speech llm.Speech
	)

	var oa *openai.Client
	if cfg.OpenAIAPIKey != "" {
		c, err := openai.New(cfg.OpenAIAPIKey, modelFor(cfg, config.ProviderOpenAI))
		if err != nil {
			return nil, nil, nil, err
		}
		oa = c
		vision, speech = c, c
	}

	switch cfg.LLMProvider {
	case config.ProviderAnthropic:
		c, err := anthropic.New(cfg.AnthropicAPIKey, cfg.LLMModel)
		if err != nil {
			return nil, nil, nil, err
		}
		chat = c
	case config.ProviderGemini:
		c, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
		if err != nil {
			return nil, nil, nil, err
		}
		chat = c
	default:
		if oa == nil {
			return nil, nil, nil, fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
		chat = oa
	}

	if vision == nil {
		log.Warn().Msg("OPENAI_API_KEY not set, scanned resumes and interview audio are disabled")
	}

	breaker := llm.BreakerConfig{
		MaxRequests:      cfg.BreakerMaxRequests,
		Interval:         cfg.BreakerInterval,
		Timeout:          cfg.BreakerTimeout,
		MinRequests:      cfg.BreakerMinRequests,
		FailureThreshold: cfg.BreakerFailureThreshold,
	}
	return llm.Chain(cfg.LLMProvider, chat, cfg.LLMTimeout, breaker),
		llm.ChainVision(config.ProviderOpenAI, vision, cfg.LLMTimeout, breaker),
		llm.ChainSpeech(config.ProviderOpenAI, speech, cfg.LLMTimeout, breaker),
		nil
}

// modelFor applies LLM_MODEL only to the provider it was meant for.
func modelFor(cfg *config.Config, provider string) string {
	if cfg.LLMProvider == provider {
		return cfg.LLMModel
	}
	return ""
}
