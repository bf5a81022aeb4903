package domain

import "strings"

// Language is a supported display language code.
type Language string

const (
	LanguageKorean     Language = "ko"
	LanguageEnglish    Language = "en"
	LanguageJapanese   Language = "ja"
	LanguageChinese    Language = "zh"
	LanguageVietnamese Language = "vi"
	LanguageThai       Language = "th"
	LanguageIndonesian Language = "id"
)

// DefaultLanguage is the base language used for unrecognized codes.
const DefaultLanguage = LanguageKorean

var supportedLanguages = []Language{
	LanguageKorean,
	LanguageEnglish,
	LanguageJapanese,
	LanguageChinese,
	LanguageVietnamese,
	LanguageThai,
	LanguageIndonesian,
}

var languageDisplayNames = map[Language]string{
	LanguageKorean:     "Korean (한국어)",
	LanguageEnglish:    "English",
	LanguageJapanese:   "Japanese (日本語)",
	LanguageChinese:    "Chinese Simplified (简体中文)",
	LanguageVietnamese: "Vietnamese (Tiếng Việt)",
	LanguageThai:       "Thai (ภาษาไทย)",
	LanguageIndonesian: "Indonesian (Bahasa Indonesia)",
}

// SupportedLanguages returns every language the service can produce reports in.
func SupportedLanguages() []Language {
	out := make([]Language, len(supportedLanguages))
	copy(out, supportedLanguages)
	return out
}

// IsSupported reports whether l is a known language code.
func (l Language) IsSupported() bool {
	_, ok := languageDisplayNames[l]
	return ok
}

// DisplayName is the model-facing name used inside prompts.
func (l Language) DisplayName() string {
	if name, ok := languageDisplayNames[l]; ok {
		return name
	}
	return languageDisplayNames[LanguageEnglish]
}

func (l Language) String() string {
	return string(l)
}

// ParseLanguage normalizes a code ("KO", " ja-JP ") and falls back to fallback
// when the code is not supported. An unsupported fallback becomes DefaultLanguage.
func ParseLanguage(code string, fallback Language) Language {
	normalized := strings.ToLower(strings.TrimSpace(code))
	if idx := strings.IndexAny(normalized, "-_"); idx > 0 {
		normalized = normalized[:idx]
	}

	lang := Language(normalized)
	if lang.IsSupported() {
		return lang
	}
	if fallback.IsSupported() {
		return fallback
	}
	return DefaultLanguage
}
