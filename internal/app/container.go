package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kapu/influencer-insight-go/internal/config"
	"github.com/kapu/influencer-insight-go/internal/server"
	"github.com/kapu/influencer-insight-go/internal/service/ai"
	"github.com/kapu/influencer-insight-go/internal/service/cache"
	"github.com/kapu/influencer-insight-go/internal/service/preview"
	"github.com/kapu/influencer-insight-go/internal/service/report"
	"github.com/kapu/influencer-insight-go/internal/session"
	"github.com/redis/go-redis/v9"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

const janitorInterval = time.Minute

// Container bundles the assembled services of one process.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	Models     *ai.ModelManager
	Analyzer   *report.Analyzer
	Translator *report.Translator
	Sessions   *session.Controller
	Server     *server.Server

	memorySessions *session.MemoryStore
	memoryCache    *cache.MemoryService
	closers        []func()
}

// Build assembles all infrastructure services. Every connection made here is
// released by Close, or immediately if Build fails.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	c := &Container{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			c.Close()
		}
	}()

	var redisClient *redis.Client
	if cfg.NeedsRedis() {
		redisClient, err = cache.NewRedisClient(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis client: %w", err)
		}
		c.closers = append(c.closers, func() {
			_ = redisClient.Close()
		})
	}

	// AI
	models, err := ai.NewModelManager(ctx, ai.ModelManagerConfig{
		Provider:           cfg.AI.Provider,
		GeminiAPIKey:       cfg.Gemini.APIKey,
		GeminiBaseURL:      cfg.Gemini.BaseURL,
		OpenAIAPIKey:       cfg.OpenAI.APIKey,
		OpenAIBaseURL:      cfg.OpenAI.BaseURL,
		DefaultGeminiModel: cfg.Gemini.AnalyzeModel,
		DefaultOpenAIModel: cfg.OpenAI.Model,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create model manager: %w", err)
	}
	c.Models = models

	// Translation cache
	var translationCache cache.Service
	if cfg.Cache.Backend == cache.BackendRedis {
		translationCache = cache.NewRedisService(redisClient, logger)
	} else {
		c.memoryCache = cache.NewMemoryService()
		translationCache = c.memoryCache
	}

	// Report services
	var previewer report.PreviewFetcher
	if cfg.Preview.Enabled {
		previewer = preview.NewScraper(cfg.Preview.Timeout, logger)
	}

	analyzeModel, translateModel := cfg.Gemini.AnalyzeModel, cfg.Gemini.TranslateModel
	if cfg.AI.Provider == ai.ProviderOpenAI {
		analyzeModel, translateModel = cfg.OpenAI.Model, cfg.OpenAI.Model
	}

	c.Analyzer = report.NewAnalyzer(models, previewer, report.AnalyzerConfig{
		Model:          analyzeModel,
		ThinkingBudget: cfg.Gemini.ThinkingBudget,
		StrictSchema:   cfg.Gemini.StrictSchema,
		Timeout:        cfg.Server.AnalyzeTimeout,
	}, logger)
	c.Translator = report.NewTranslator(models, translationCache, report.TranslatorConfig{
		Model:    translateModel,
		Timeout:  cfg.Server.TranslateTimeout,
		CacheTTL: cfg.Cache.TranslationTTL,
	}, logger)

	// Sessions
	var store session.Store
	if cfg.Session.Store == session.StoreRedis {
		store = session.NewRedisStore(redisClient, cfg.Session.TTL, logger)
	} else {
		c.memorySessions = session.NewMemoryStore(cfg.Session.TTL, logger)
		store = c.memorySessions
	}
	c.Sessions = session.NewController(store, session.NewHub(logger), c.Analyzer, c.Translator, cfg.Language.Default, logger)

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	c.Server = server.New(cfg.Server.Addr, cfg.Language.Default, server.Dependencies{
		Analyzer:   c.Analyzer,
		Translator: c.Translator,
		Sessions:   c.Sessions,
		Status:     models,
	}, logger)

	logger.Info("Application assembled",
		zap.String("provider", models.ProviderName()),
		zap.Bool("credential", models.HasCredential()),
		zap.String("session_store", cfg.Session.Store),
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.Bool("preview", cfg.Preview.Enabled),
	)
	return c, nil
}

// Run serves HTTP and sweeps in-memory stores until ctx is cancelled or the
// server stops on its own, such as when the address cannot be bound.
func (c *Container) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var serveErr error

	var wg conc.WaitGroup
	wg.Go(func() {
		defer cancel()
		serveErr = c.Server.Run(ctx)
	})
	if c.memorySessions != nil {
		wg.Go(func() {
			c.memorySessions.RunJanitor(ctx, janitorInterval)
		})
	}
	if c.memoryCache != nil {
		wg.Go(func() {
			ticker := time.NewTicker(janitorInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					c.memoryCache.Sweep()
				}
			}
		})
	}
	wg.Wait()

	return serveErr
}

func (c *Container) Close() {
	if c == nil {
		return
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
