package report

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kapu/influencer-insight-go/internal/constants"
	"github.com/kapu/influencer-insight-go/internal/domain"
	"github.com/kapu/influencer-insight-go/internal/prompt"
	"github.com/kapu/influencer-insight-go/internal/service/ai"
	"github.com/kapu/influencer-insight-go/internal/service/cache"
	"go.uber.org/zap"
)

var errShapeMismatch = errors.New("translated report shape differs from source")

// Outcome describes how Translate produced its result.
type Outcome struct {
	Translated bool   `json:"translated"`
	Cached     bool   `json:"cached"`
	Reason     string `json:"reason,omitempty"`
}

type TranslatorConfig struct {
	Model    string
	Timeout  time.Duration
	CacheTTL time.Duration
}

type Translator struct {
	generator Generator
	cache     cache.Service
	cfg       TranslatorConfig
	logger    *zap.Logger
}

// NewTranslator builds the report translator. cacheSvc may be nil.
func NewTranslator(generator Generator, cacheSvc cache.Service, cfg TranslatorConfig, logger *zap.Logger) *Translator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = constants.Timeouts.Translate
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = constants.CacheTTL.Translation
	}
	return &Translator{
		generator: generator,
		cache:     cacheSvc,
		cfg:       cfg,
		logger:    logger,
	}
}

// Translate rewrites the free text of src in lang. Figures and sources are
// always taken from src. On any failure the original report is returned,
// so Translate never errors; the Outcome tells the caller what happened.
func (t *Translator) Translate(ctx context.Context, src *domain.AnalysisReport, lang domain.Language) (*domain.AnalysisReport, Outcome) {
	if src == nil {
		return nil, Outcome{Reason: "no report"}
	}
	lang = domain.ParseLanguage(string(lang), domain.DefaultLanguage)

	payload := src.Clone()
	payload.Sources = nil
	reportJSON, err := json.Marshal(payload)
	if err != nil {
		return t.fallback(src, lang, "encode", err)
	}

	cacheKey := translationCacheKey(reportJSON, lang)
	if cached, ok := t.cached(ctx, cacheKey); ok {
		restoreInvariants(src, cached)
		t.logger.Debug("Translation cache hit", zap.String("language", string(lang)))
		return cached, Outcome{Translated: true, Cached: true}
	}

	if t.generator == nil || !t.generator.HasCredential() {
		return t.fallback(src, lang, "credential", ai.ErrMissingCredential)
	}

	userPrompt, err := prompt.BuildTranslate(lang, string(reportJSON))
	if err != nil {
		return t.fallback(src, lang, "prompt", err)
	}

	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	var translated domain.AnalysisReport
	meta, err := t.generator.GenerateJSON(ctx, ai.GenerateRequest{
		Prompt: userPrompt,
		Preset: ai.PresetBalanced,
		Model:  t.cfg.Model,
		Schema: ai.ReportSchema(),
	}, &translated)
	if err != nil {
		return t.fallback(src, lang, "generate", err)
	}
	if err := Validate(&translated); err != nil {
		return t.fallback(src, lang, "validate", err)
	}
	if err := sameShape(src, &translated); err != nil {
		return t.fallback(src, lang, "shape", err)
	}

	restoreInvariants(src, &translated)
	t.store(ctx, cacheKey, &translated)

	t.logger.Info("Report translated",
		zap.String("language", string(lang)),
		zap.String("provider", meta.Provider),
		zap.String("model", meta.Model),
	)
	return &translated, Outcome{Translated: true}
}

func (t *Translator) fallback(src *domain.AnalysisReport, lang domain.Language, reason string, err error) (*domain.AnalysisReport, Outcome) {
	t.logger.Warn("translation_fallback",
		zap.String("language", string(lang)),
		zap.String("reason", reason),
		zap.Error(err),
	)
	return src.Clone(), Outcome{Reason: reason}
}

func (t *Translator) cached(ctx context.Context, key string) (*domain.AnalysisReport, bool) {
	if t.cache == nil {
		return nil, false
	}
	var report domain.AnalysisReport
	found, err := t.cache.Get(ctx, key, &report)
	if err != nil {
		t.logger.Warn("Translation cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !found {
		return nil, false
	}
	return &report, true
}

func (t *Translator) store(ctx context.Context, key string, report *domain.AnalysisReport) {
	if t.cache == nil {
		return
	}
	entry := report.Clone()
	entry.Sources = nil
	if err := t.cache.Set(ctx, key, entry, t.cfg.CacheTTL); err != nil {
		t.logger.Warn("Translation cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func translationCacheKey(reportJSON []byte, lang domain.Language) string {
	h := sha256.New()
	h.Write(reportJSON)
	h.Write([]byte{0})
	h.Write([]byte(lang))
	return "translation:" + hex.EncodeToString(h.Sum(nil))
}

func sameShape(src, dst *domain.AnalysisReport) error {
	switch {
	case len(src.Metrics) != len(dst.Metrics):
		return fmt.Errorf("%w: metrics %d != %d", errShapeMismatch, len(dst.Metrics), len(src.Metrics))
	case len(src.ContentPillars) != len(dst.ContentPillars):
		return fmt.Errorf("%w: contentPillars %d != %d", errShapeMismatch, len(dst.ContentPillars), len(src.ContentPillars))
	case len(src.GrowthStrategy) != len(dst.GrowthStrategy):
		return fmt.Errorf("%w: growthStrategy %d != %d", errShapeMismatch, len(dst.GrowthStrategy), len(src.GrowthStrategy))
	}
	return nil
}

// restoreInvariants copies every figure and the sources from src into dst.
// dst must have the same shape as src.
func restoreInvariants(src, dst *domain.AnalysisReport) {
	dst.Score = src.Score
	dst.Sentiment.Positive = src.Sentiment.Positive
	dst.Sentiment.Neutral = src.Sentiment.Neutral
	dst.Sentiment.Negative = src.Sentiment.Negative

	for i := range dst.ContentPillars {
		dst.ContentPillars[i].Weight = src.ContentPillars[i].Weight
	}
	for i := range dst.Metrics {
		dst.Metrics[i].Value = src.Metrics[i].Value
		dst.Metrics[i].Percentage = src.Metrics[i].Percentage
		dst.Metrics[i].Trend = src.Metrics[i].Trend
	}

	if src.ProfileHeader != nil {
		header := *src.ProfileHeader
		dst.ProfileHeader = &header
	} else {
		dst.ProfileHeader = nil
	}

	dst.Sources = nil
	if src.Sources != nil {
		dst.Sources = append([]domain.GroundingSource{}, src.Sources...)
	}
}
