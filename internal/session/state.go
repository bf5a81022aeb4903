package session

import (
	"strings"
	"time"

	"github.com/kapu/influencer-insight-go/internal/domain"
	apperrors "github.com/kapu/influencer-insight-go/pkg/errors"
)

// Phase is where a session is in the analyze/translate cycle.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseLoading     Phase = "loading"
	PhaseTranslating Phase = "translating"
	PhaseError       Phase = "error"
)

func (p Phase) String() string {
	return string(p)
}

// State is one client's view state. Transitions are the methods below; each
// one either applies completely or leaves the state untouched. Revision grows
// with every saved change so observers can order snapshots.
type State struct {
	ID         string                 `json:"id"`
	Phase      Phase                  `json:"phase"`
	Language   domain.Language        `json:"language"`
	URL        string                 `json:"url,omitempty"`
	Report     *domain.AnalysisReport `json:"report,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Generation uint64                 `json:"generation"`
	Revision   uint64                 `json:"revision"`
	UpdatedAt  time.Time              `json:"updatedAt"`
}

func NewState(id string, lang domain.Language) *State {
	return &State{
		ID:       id,
		Phase:    PhaseIdle,
		Language: domain.ParseLanguage(string(lang), domain.DefaultLanguage),
	}
}

// Busy reports whether a model request is outstanding.
func (s *State) Busy() bool {
	return s.Phase == PhaseLoading || s.Phase == PhaseTranslating
}

func (s *State) busyError() error {
	return apperrors.NewBusyError(domain.Message(domain.MessageBusy, s.Language), s.Phase.String())
}

// BeginAnalyze starts a new analysis and returns its generation.
func (s *State) BeginAnalyze(url string) (uint64, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return 0, apperrors.NewValidationError(domain.Message(domain.MessageURLRequired, s.Language), "url", url)
	}
	if s.Busy() {
		return 0, s.busyError()
	}

	s.URL = url
	s.Report = nil
	s.Error = ""
	s.Phase = PhaseLoading
	s.Generation++
	return s.Generation, nil
}

// CompleteAnalyze stores a finished report. Results for an older generation
// are dropped and false is returned.
func (s *State) CompleteAnalyze(gen uint64, report *domain.AnalysisReport) bool {
	if gen != s.Generation || s.Phase != PhaseLoading {
		return false
	}
	s.Report = report
	s.Error = ""
	s.Phase = PhaseIdle
	return true
}

func (s *State) FailAnalyze(gen uint64, message string) bool {
	if gen != s.Generation || s.Phase != PhaseLoading {
		return false
	}
	s.Report = nil
	s.Error = message
	s.Phase = PhaseError
	return true
}

// LanguageChange is the result of ChangeLanguage.
type LanguageChange struct {
	Changed bool
	// Translate is set when the current report must be re-translated.
	Translate  bool
	Generation uint64
	Source     *domain.AnalysisReport
}

func (s *State) ChangeLanguage(lang domain.Language) (LanguageChange, error) {
	lang = domain.ParseLanguage(string(lang), domain.DefaultLanguage)
	if lang == s.Language {
		return LanguageChange{}, nil
	}
	if s.Busy() {
		return LanguageChange{}, s.busyError()
	}

	s.Language = lang
	if s.Report == nil || s.Phase != PhaseIdle {
		return LanguageChange{Changed: true}, nil
	}

	s.Phase = PhaseTranslating
	s.Generation++
	return LanguageChange{
		Changed:    true,
		Translate:  true,
		Generation: s.Generation,
		Source:     s.Report,
	}, nil
}

// CompleteTranslate replaces the report with its translation.
func (s *State) CompleteTranslate(gen uint64, report *domain.AnalysisReport) bool {
	if gen != s.Generation || s.Phase != PhaseTranslating {
		return false
	}
	if report != nil {
		s.Report = report
	}
	s.Phase = PhaseIdle
	return true
}

// Reset returns to an empty idle state keeping only the language.
// Any in-flight request becomes stale.
func (s *State) Reset() {
	s.URL = ""
	s.Report = nil
	s.Error = ""
	s.Phase = PhaseIdle
	s.Generation++
}

func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	cloned := *s
	cloned.Report = s.Report.Clone()
	return &cloned
}
