package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kapu/influencer-insight-go/internal/domain"
	"github.com/kapu/influencer-insight-go/internal/service/ai"
	"github.com/kapu/influencer-insight-go/internal/session"
	apperrors "github.com/kapu/influencer-insight-go/pkg/errors"
	"go.uber.org/zap"
)

type analyzeRequest struct {
	URL      string `json:"url"`
	Language string `json:"language"`
}

type translateRequest struct {
	Report   *domain.AnalysisReport `json:"report" binding:"required"`
	Language string                 `json:"language" binding:"required"`
}

type translateResponse struct {
	Report     *domain.AnalysisReport `json:"report"`
	Translated bool                   `json:"translated"`
	Cached     bool                   `json:"cached"`
	Reason     string                 `json:"reason,omitempty"`
}

type createSessionRequest struct {
	Language string `json:"language"`
}

type sessionAnalyzeRequest struct {
	URL string `json:"url"`
}

type sessionLanguageRequest struct {
	Language string `json:"language" binding:"required"`
}

type languageInfo struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

func (s *Server) handleStatus(c *gin.Context) {
	if s.deps.Status == nil {
		c.JSON(http.StatusOK, gin.H{"credentialConfigured": false, "provider": "none"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"credentialConfigured": s.deps.Status.HasCredential(),
		"provider":             s.deps.Status.ProviderName(),
		"circuit":              s.deps.Status.CircuitStatus(),
		"defaultLanguage":      s.defaultLang,
	})
}

func (s *Server) handleLanguages(c *gin.Context) {
	langs := domain.SupportedLanguages()
	out := make([]languageInfo, 0, len(langs))
	for _, lang := range langs {
		out = append(out, languageInfo{Code: string(lang), Name: lang.DisplayName()})
	}
	c.JSON(http.StatusOK, gin.H{"languages": out, "default": s.defaultLang})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if !s.bind(c, &req) {
		return
	}

	lang := domain.ParseLanguage(req.Language, s.defaultLang)
	result, err := s.deps.Analyzer.Analyze(c.Request.Context(), req.URL, lang)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleTranslate(c *gin.Context) {
	var req translateRequest
	if !s.bind(c, &req) {
		return
	}

	lang := domain.ParseLanguage(req.Language, s.defaultLang)
	result, outcome := s.deps.Translator.Translate(c.Request.Context(), req.Report, lang)
	c.JSON(http.StatusOK, translateResponse{
		Report:     result,
		Translated: outcome.Translated,
		Cached:     outcome.Cached,
		Reason:     outcome.Reason,
	})
}

func (s *Server) handleCreateSession(c *gin.Context) {
	var req createSessionRequest
	if c.Request.ContentLength > 0 && !s.bind(c, &req) {
		return
	}

	state, err := s.deps.Sessions.Create(c.Request.Context(), domain.ParseLanguage(req.Language, s.defaultLang))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, state)
}

func (s *Server) handleGetSession(c *gin.Context) {
	state, err := s.deps.Sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (s *Server) handleSessionAnalyze(c *gin.Context) {
	var req sessionAnalyzeRequest
	if !s.bind(c, &req) {
		return
	}

	state, err := s.deps.Sessions.Analyze(c.Request.Context(), c.Param("id"), req.URL)
	if err != nil {
		s.writeErrorWithState(c, err, state)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (s *Server) handleSessionLanguage(c *gin.Context) {
	var req sessionLanguageRequest
	if !s.bind(c, &req) {
		return
	}

	state, err := s.deps.Sessions.ChangeLanguage(c.Request.Context(), c.Param("id"), domain.Language(req.Language))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (s *Server) handleSessionReset(c *gin.Context) {
	state, err := s.deps.Sessions.Reset(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (s *Server) bind(c *gin.Context, dest any) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		s.writeError(c, apperrors.NewValidationError("invalid request body: "+err.Error(), "body", nil))
		return false
	}
	return true
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeError(c *gin.Context, err error) {
	s.writeErrorWithState(c, err, nil)
}

// writeErrorWithState renders err as {error:{code,message}}; a non-nil state
// is included so clients can render the error phase without a second call.
func (s *Server) writeErrorWithState(c *gin.Context, err error, state *session.State) {
	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		s.logger.Warn("Request failed", zap.String("path", c.FullPath()), zap.Int("status", status), zap.Error(err))
	}

	payload := gin.H{"error": body}
	if state != nil {
		payload["session"] = state
	}
	c.JSON(status, payload)
}

func errorResponse(err error) (int, errorBody) {
	status := http.StatusInternalServerError
	body := errorBody{Code: apperrors.CodeAppError, Message: "internal server error"}

	if appErr, ok := apperrors.AsAppError(err); ok {
		if appErr.StatusCode > 0 {
			status = appErr.StatusCode
		}
		body.Code = appErr.Code
		body.Message = appErr.Message
	}
	if errors.Is(err, ai.ErrCircuitOpen) {
		status = http.StatusServiceUnavailable
	}
	return status, body
}
