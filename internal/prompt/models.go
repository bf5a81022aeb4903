package prompt

type AnalyzePromptData struct {
	URL          string
	Platform     string
	LanguageName string
}

type AnalyzeSystemData struct {
	// SchemaJSON is inlined when the request cannot carry a response schema.
	SchemaJSON string
}

type TranslatePromptData struct {
	LanguageName string
	ReportJSON   string
}
