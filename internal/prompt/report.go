package prompt

import (
	"strings"

	"github.com/kapu/influencer-insight-go/internal/domain"
)

// BuildAnalyze renders the audit prompt for a profile URL.
func BuildAnalyze(url string, lang domain.Language) (string, error) {
	url = strings.TrimSpace(url)

	platform := domain.DetectPlatform(url)
	data := AnalyzePromptData{
		URL:          url,
		LanguageName: lang.DisplayName(),
	}
	if platform != domain.PlatformUnknown {
		data.Platform = string(platform)
	}

	return DefaultPromptBuilder().Render(TemplateAnalyze, data)
}

// BuildAnalyzeSystem renders the auditor system instruction. An empty
// schemaJSON leaves the schema out.
func BuildAnalyzeSystem(schemaJSON string) (string, error) {
	return DefaultPromptBuilder().Render(TemplateAnalyzeSystem, AnalyzeSystemData{SchemaJSON: schemaJSON})
}

// BuildTranslate renders the translation prompt around an already serialized report.
func BuildTranslate(lang domain.Language, reportJSON string) (string, error) {
	return DefaultPromptBuilder().Render(TemplateTranslate, TranslatePromptData{
		LanguageName: lang.DisplayName(),
		ReportJSON:   reportJSON,
	})
}
