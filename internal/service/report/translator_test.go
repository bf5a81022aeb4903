package report

import (
	"context"
	"testing"

	"github.com/kapu/influencer-insight-go/internal/domain"
	"github.com/kapu/influencer-insight-go/internal/service/ai"
	"github.com/kapu/influencer-insight-go/internal/service/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// englishReply is a translation that also tampers with every figure.
func englishReply(t *testing.T) string {
	t.Helper()
	r := sampleReport()
	r.InfluencerName = "Kim Haneul"
	r.Niche = "Beauty"
	r.ProfileSummary = "Daily makeup creator"
	r.ProfileHeader = &domain.ProfileHeader{Posts: "1.2K", Followers: "123K", Following: "312", ImageURL: "https://evil.example/x.png"}
	r.Metrics[0].Label = "Engagement"
	r.Metrics[0].Value = "5%"
	r.Metrics[0].Trend = domain.TrendDown
	r.Metrics[1].Value = "5100"
	r.ContentPillars[0].Topic = "Makeup"
	r.ContentPillars[0].Weight = 10
	r.Sentiment = domain.Sentiment{Positive: 1, Neutral: 2, Negative: 3, Summary: "Very positive"}
	r.Score = 99
	r.Sources = []domain.GroundingSource{{Title: "made up", URI: "https://made.up"}}
	return mustJSON(t, r)
}

func TestTranslateKeepsFiguresAndSources(t *testing.T) {
	provider := &scriptedProvider{replies: []ai.ProviderResult{{Text: englishReply(t), Model: "gemini-2.5-flash"}}}
	translator := NewTranslator(newManager(provider), nil, TranslatorConfig{Model: "gemini-2.5-flash"}, zap.NewNop())
	src := sampleReport()

	got, outcome := translator.Translate(context.Background(), src, domain.LanguageEnglish)
	require.True(t, outcome.Translated)
	assert.False(t, outcome.Cached)

	assert.Equal(t, "Kim Haneul", got.InfluencerName)
	assert.Equal(t, "Engagement", got.Metrics[0].Label)
	assert.Equal(t, "Makeup", got.ContentPillars[0].Topic)
	assert.Equal(t, "Very positive", got.Sentiment.Summary)

	assert.Equal(t, src.Score, got.Score)
	assert.Equal(t, src.Sentiment.Positive, got.Sentiment.Positive)
	assert.Equal(t, src.Sentiment.Neutral, got.Sentiment.Neutral)
	assert.Equal(t, src.Sentiment.Negative, got.Sentiment.Negative)
	for i := range src.Metrics {
		assert.Equal(t, src.Metrics[i].Value, got.Metrics[i].Value)
		assert.Equal(t, src.Metrics[i].Percentage, got.Metrics[i].Percentage)
		assert.Equal(t, src.Metrics[i].Trend, got.Metrics[i].Trend)
	}
	for i := range src.ContentPillars {
		assert.Equal(t, src.ContentPillars[i].Weight, got.ContentPillars[i].Weight)
	}
	assert.Equal(t, src.ProfileHeader, got.ProfileHeader)
	assert.Equal(t, src.Sources, got.Sources)

	req := provider.calls[0]
	assert.False(t, req.EnableSearch)
	assert.NotNil(t, req.Schema)
	assert.Contains(t, req.Prompt, "Translate the following influencer report to English.")
	assert.NotContains(t, req.Prompt, "https://www.instagram.com/sky")
}

func TestTranslateSourcesPreservedWhenModelOmitsThem(t *testing.T) {
	reply := sampleReport()
	reply.Sources = nil
	provider := &scriptedProvider{replies: []ai.ProviderResult{{Text: mustJSON(t, reply)}}}
	translator := NewTranslator(newManager(provider), nil, TranslatorConfig{}, zap.NewNop())

	src := sampleReport()
	got, outcome := translator.Translate(context.Background(), src, domain.LanguageJapanese)
	require.True(t, outcome.Translated)
	assert.Equal(t, src.Sources, got.Sources)
}

func TestTranslateFallbacks(t *testing.T) {
	shorter := sampleReport()
	shorter.Metrics = shorter.Metrics[:1]

	invalid := sampleReport()
	invalid.InfluencerName = ""

	cases := map[string]struct {
		provider *scriptedProvider
		reason   string
	}{
		"malformed": {&scriptedProvider{replies: []ai.ProviderResult{{Text: "sorry"}}}, "generate"},
		"transport": {&scriptedProvider{errs: []error{ai.ErrEmptyResponse}}, "generate"},
		"shape":     {&scriptedProvider{replies: []ai.ProviderResult{{Text: mustJSON(t, shorter)}}}, "shape"},
		"validate":  {&scriptedProvider{replies: []ai.ProviderResult{{Text: mustJSON(t, invalid)}}}, "validate"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			translator := NewTranslator(newManager(tc.provider), nil, TranslatorConfig{}, zap.NewNop())
			src := sampleReport()

			got, outcome := translator.Translate(context.Background(), src, domain.LanguageEnglish)
			assert.False(t, outcome.Translated)
			assert.Equal(t, tc.reason, outcome.Reason)
			assert.Equal(t, src, got)
			assert.NotSame(t, src, got)
		})
	}
}

func TestTranslateWithoutCredentialReturnsOriginal(t *testing.T) {
	translator := NewTranslator(newManager(nil), nil, TranslatorConfig{}, zap.NewNop())
	src := sampleReport()

	got, outcome := translator.Translate(context.Background(), src, domain.LanguageEnglish)
	assert.False(t, outcome.Translated)
	assert.Equal(t, "credential", outcome.Reason)
	assert.Equal(t, src, got)
}

func TestTranslateNilReport(t *testing.T) {
	translator := NewTranslator(newManager(nil), nil, TranslatorConfig{}, zap.NewNop())
	got, outcome := translator.Translate(context.Background(), nil, domain.LanguageEnglish)
	assert.Nil(t, got)
	assert.False(t, outcome.Translated)
}

func TestTranslateUsesCache(t *testing.T) {
	provider := &scriptedProvider{replies: []ai.ProviderResult{{Text: englishReply(t)}}}
	translator := NewTranslator(newManager(provider), cache.NewMemoryService(), TranslatorConfig{}, zap.NewNop())
	src := sampleReport()

	first, outcome := translator.Translate(context.Background(), src, domain.LanguageEnglish)
	require.True(t, outcome.Translated)

	second, outcome := translator.Translate(context.Background(), src, domain.LanguageEnglish)
	require.True(t, outcome.Translated)
	assert.True(t, outcome.Cached)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, provider.callCount())

	_, outcome = translator.Translate(context.Background(), src, domain.LanguageThai)
	assert.False(t, outcome.Cached)
	assert.Equal(t, 2, provider.callCount())
}

func TestTranslationCacheKeyDependsOnLanguage(t *testing.T) {
	payload := []byte(`{"score":1}`)
	assert.NotEqual(t, translationCacheKey(payload, domain.LanguageEnglish), translationCacheKey(payload, domain.LanguageJapanese))
	assert.Equal(t, translationCacheKey(payload, domain.LanguageEnglish), translationCacheKey(payload, domain.LanguageEnglish))
}
