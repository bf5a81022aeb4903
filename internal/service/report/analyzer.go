package report

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/kapu/influencer-insight-go/internal/constants"
	"github.com/kapu/influencer-insight-go/internal/domain"
	"github.com/kapu/influencer-insight-go/internal/prompt"
	"github.com/kapu/influencer-insight-go/internal/service/ai"
	"github.com/kapu/influencer-insight-go/internal/service/preview"
	apperrors "github.com/kapu/influencer-insight-go/pkg/errors"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

// Generator is the slice of ai.ModelManager the report services need.
type Generator interface {
	HasCredential() bool
	GenerateJSON(ctx context.Context, req ai.GenerateRequest, dest any) (*ai.GenerateMetadata, error)
}

// PreviewFetcher reads page metadata for a profile URL.
type PreviewFetcher interface {
	Fetch(ctx context.Context, url string) (*preview.Metadata, error)
}

type AnalyzerConfig struct {
	Model          string
	ThinkingBudget int
	// StrictSchema attaches the response schema to the search-grounded
	// request instead of describing it in the system instruction.
	StrictSchema bool
	Timeout      time.Duration
}

type Analyzer struct {
	generator Generator
	preview   PreviewFetcher
	cfg       AnalyzerConfig
	logger    *zap.Logger
}

// NewAnalyzer builds the report fetcher. previewer may be nil.
func NewAnalyzer(generator Generator, previewer PreviewFetcher, cfg AnalyzerConfig, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = constants.Timeouts.Analyze
	}
	return &Analyzer{
		generator: generator,
		preview:   previewer,
		cfg:       cfg,
		logger:    logger,
	}
}

// Analyze produces a report for the profile at rawURL written in lang.
// It issues exactly one model request.
func (a *Analyzer) Analyze(ctx context.Context, rawURL string, lang domain.Language) (*domain.AnalysisReport, error) {
	lang = domain.ParseLanguage(string(lang), domain.DefaultLanguage)
	url := strings.TrimSpace(rawURL)

	if url == "" {
		return nil, apperrors.NewValidationError(domain.Message(domain.MessageURLRequired, lang), "url", rawURL)
	}
	if len(url) > constants.AIInputLimits.MaxURLLength {
		return nil, apperrors.NewValidationError("URL is too long", "url", len(url))
	}

	if a.generator == nil || !a.generator.HasCredential() {
		a.logger.Warn("Analysis requested without API credential", zap.String("url", url))
		return nil, apperrors.NewCredentialError(domain.Message(domain.MessageCredentialMissing, lang), true, ai.ErrMissingCredential)
	}

	req, err := a.buildRequest(url, lang)
	if err != nil {
		return nil, a.fail(url, lang, err)
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	start := time.Now()

	var (
		report domain.AnalysisReport
		meta   *ai.GenerateMetadata
		genErr error
		page   *preview.Metadata
	)

	var wg conc.WaitGroup
	wg.Go(func() {
		meta, genErr = a.generator.GenerateJSON(ctx, req, &report)
	})
	if a.preview != nil {
		wg.Go(func() {
			p, err := a.preview.Fetch(ctx, url)
			if err != nil {
				a.logger.Debug("Profile preview unavailable", zap.String("url", url), zap.Error(err))
				return
			}
			page = p
		})
	}
	wg.Wait()

	if genErr != nil {
		return nil, a.fail(url, lang, genErr)
	}
	if err := Validate(&report); err != nil {
		return nil, a.fail(url, lang, err)
	}

	report.Sources = DedupeSources(meta.Sources)
	if page != nil && page.Image != "" && report.ProfileHeader != nil && report.ProfileHeader.ImageURL == "" {
		report.ProfileHeader.ImageURL = page.Image
	}

	a.logger.Info("Influencer analysis completed",
		zap.String("url", url),
		zap.String("language", string(lang)),
		zap.String("provider", meta.Provider),
		zap.String("model", meta.Model),
		zap.String("extraction", string(meta.Extraction)),
		zap.Int("sources", len(report.Sources)),
		zap.Float64("score", report.Score),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &report, nil
}

func (a *Analyzer) buildRequest(url string, lang domain.Language) (ai.GenerateRequest, error) {
	userPrompt, err := prompt.BuildAnalyze(url, lang)
	if err != nil {
		return ai.GenerateRequest{}, err
	}

	schema := ai.ReportSchema()
	req := ai.GenerateRequest{
		Prompt:         userPrompt,
		Preset:         ai.PresetPrecise,
		Model:          a.cfg.Model,
		EnableSearch:   true,
		ThinkingBudget: a.cfg.ThinkingBudget,
	}

	inlineSchema := ai.SchemaJSON(schema)
	if a.cfg.StrictSchema {
		req.Schema = schema
		inlineSchema = ""
	}

	req.SystemInstruction, err = prompt.BuildAnalyzeSystem(inlineSchema)
	if err != nil {
		return ai.GenerateRequest{}, err
	}
	return req, nil
}

// fail converts any analysis failure into the single user-facing error.
func (a *Analyzer) fail(url string, lang domain.Language, err error) error {
	a.logger.Error("Influencer analysis failed",
		zap.String("url", url),
		zap.String("language", string(lang)),
		zap.Error(err),
	)

	if ai.IsCredentialFailure(err) {
		missing := errors.Is(err, ai.ErrMissingCredential)
		key := domain.MessageCredentialRejected
		if missing {
			key = domain.MessageCredentialMissing
		}
		return apperrors.NewCredentialError(domain.Message(key, lang), missing, err)
	}

	key := domain.MessageAnalysisFailed
	if errors.Is(err, ai.ErrCircuitOpen) {
		key = domain.MessageServiceUnavailable
	}
	return apperrors.NewAnalysisError(domain.Message(key, lang), string(lang), err)
}
