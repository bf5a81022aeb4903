package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/kapu/influencer-insight-go/internal/constants"
	"github.com/kapu/influencer-insight-go/internal/util"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// ModelManager routes generation requests to the configured provider behind
// a circuit breaker. It never retries: one request in, one answer or error out.
type ModelManager struct {
	primary        JSONProvider
	logger         *zap.Logger
	circuitBreaker *util.CircuitBreaker
}

type ModelManagerConfig struct {
	Provider           string
	GeminiAPIKey       string
	GeminiBaseURL      string
	OpenAIAPIKey       string
	OpenAIBaseURL      string
	DefaultGeminiModel string
	DefaultOpenAIModel string
	HTTPClient         *http.Client
}

func NewModelManager(ctx context.Context, cfg ModelManagerConfig, logger *zap.Logger) (*ModelManager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	defaultGemini := util.FirstNonEmpty(cfg.DefaultGeminiModel, constants.AIModels.GeminiAnalyze)
	defaultOpenAI := util.FirstNonEmpty(cfg.DefaultOpenAIModel, constants.AIModels.OpenAI)

	var primary JSONProvider
	switch strings.ToLower(util.FirstNonEmpty(cfg.Provider, ProviderGemini)) {
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			logger.Warn("GEMINI_API_KEY not set; analysis requests will report a credential error")
			break
		}
		clientCfg := &genai.ClientConfig{
			APIKey:     cfg.GeminiAPIKey,
			Backend:    genai.BackendGeminiAPI,
			HTTPClient: cfg.HTTPClient,
		}
		if cfg.GeminiBaseURL != "" {
			clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.GeminiBaseURL}
		}
		client, err := genai.NewClient(ctx, clientCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		primary = NewGeminiProvider(client, defaultGemini, logger)
		logger.Info("Gemini provider enabled", zap.String("model", defaultGemini))
	case ProviderOpenAI:
		if provider := NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, defaultOpenAI, logger); provider != nil {
			primary = provider
			logger.Info("OpenAI provider enabled", zap.String("model", defaultOpenAI))
		} else {
			logger.Warn("OPENAI_API_KEY not set; analysis requests will report a credential error")
		}
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}

	return NewModelManagerWithProvider(primary, logger), nil
}

// NewModelManagerWithProvider wires an already built provider. A nil provider
// yields a manager that reports ErrMissingCredential.
func NewModelManagerWithProvider(provider JSONProvider, logger *zap.Logger) *ModelManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModelManager{
		primary: provider,
		logger:  logger,
		circuitBreaker: util.NewCircuitBreaker(
			constants.CircuitBreakerConfig.FailureThreshold,
			constants.CircuitBreakerConfig.ResetTimeout,
			logger,
		),
	}
}

// HasCredential reports whether a provider could be built from the configured key.
func (mm *ModelManager) HasCredential() bool {
	return mm != nil && mm.primary != nil
}

func (mm *ModelManager) ProviderName() string {
	if !mm.HasCredential() {
		return "none"
	}
	return mm.primary.Name()
}

// Generate issues exactly one request to the primary provider.
func (mm *ModelManager) Generate(ctx context.Context, req GenerateRequest) (ProviderResult, error) {
	if !mm.HasCredential() {
		return ProviderResult{}, ErrMissingCredential
	}

	if !mm.circuitBreaker.Allow() {
		status := mm.circuitBreaker.Status()
		mm.logger.Error("AI service unavailable (Circuit OPEN)",
			zap.String("state", status.State.String()),
			zap.Int("failure_count", status.FailureCount),
		)
		return ProviderResult{}, ErrCircuitOpen
	}

	result, err := mm.primary.Generate(ctx, req)
	if err != nil {
		mm.recordFailure(err)
		return ProviderResult{}, fmt.Errorf("%s generation failed: %w", mm.primary.Name(), err)
	}

	mm.circuitBreaker.RecordSuccess()
	return result, nil
}

// GenerateJSON generates and decodes the reply into dest via ExtractJSON.
func (mm *ModelManager) GenerateJSON(ctx context.Context, req GenerateRequest, dest any) (*GenerateMetadata, error) {
	result, err := mm.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	metadata := &GenerateMetadata{
		Provider: mm.primary.Name(),
		Model:    result.Model,
		Sources:  result.Sources,
	}

	stage, err := ExtractJSON(result.Text, dest)
	metadata.Extraction = stage
	if err != nil {
		mm.logger.Error("Failed to decode JSON response",
			zap.String("provider", metadata.Provider),
			zap.String("model", metadata.Model),
			zap.Error(err),
			zap.String("response_preview", util.TruncateString(result.Text, constants.AIInputLimits.PreviewLogChars)),
		)
		return metadata, err
	}

	if stage == StageFallback {
		mm.logger.Debug("JSON recovered from surrounding text", zap.String("provider", metadata.Provider))
	}
	return metadata, nil
}

func (mm *ModelManager) recordFailure(err error) {
	if !IsServiceFailure(err) {
		mm.circuitBreaker.RecordNeutral()
		return
	}

	timeout := constants.CircuitBreakerConfig.ResetTimeout
	if IsRateLimitError(err) {
		timeout = constants.CircuitBreakerConfig.RateLimitTimeout
	}
	mm.circuitBreaker.RecordFailure(timeout)
}

func (mm *ModelManager) CircuitStatus() util.CircuitBreakerStatus {
	return mm.circuitBreaker.Status()
}

func (mm *ModelManager) ResetCircuit() {
	mm.circuitBreaker.Reset()
}
