package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/kapu/influencer-insight-go/internal/domain"
	"github.com/kapu/influencer-insight-go/internal/service/ai"
	"github.com/kapu/influencer-insight-go/internal/service/report"
	"github.com/kapu/influencer-insight-go/internal/session"
	apperrors "github.com/kapu/influencer-insight-go/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubAnalyzer struct {
	mu     sync.Mutex
	report *domain.AnalysisReport
	err    error
	langs  []domain.Language
}

func (s *stubAnalyzer) Analyze(_ context.Context, url string, lang domain.Language) (*domain.AnalysisReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.langs = append(s.langs, lang)
	if strings.TrimSpace(url) == "" {
		return nil, apperrors.NewValidationError(domain.Message(domain.MessageURLRequired, lang), "url", url)
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.report.Clone(), nil
}

func (s *stubAnalyzer) set(r *domain.AnalysisReport, err error) {
	s.mu.Lock()
	s.report, s.err = r, err
	s.mu.Unlock()
}

type stubTranslator struct {
	translate bool
}

func (s *stubTranslator) Translate(_ context.Context, src *domain.AnalysisReport, _ domain.Language) (*domain.AnalysisReport, report.Outcome) {
	out := src.Clone()
	if !s.translate {
		return out, report.Outcome{Reason: "generate"}
	}
	out.Niche = "Beauty"
	return out, report.Outcome{Translated: true}
}

func sample() *domain.AnalysisReport {
	return &domain.AnalysisReport{
		InfluencerName: "김하늘",
		PlatformName:   "Instagram",
		Niche:          "뷰티",
		ProfileSummary: "데일리 메이크업",
		Score:          82,
		Sources:        []domain.GroundingSource{{Title: "Profile", URI: "https://instagram.com/sky"}},
	}
}

type fixture struct {
	srv      *httptest.Server
	analyzer *stubAnalyzer
}

func newFixture(t *testing.T, translate bool) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	analyzer := &stubAnalyzer{report: sample()}
	translator := &stubTranslator{translate: translate}
	sessions := session.NewController(session.NewMemoryStore(time.Hour, nil), session.NewHub(nil), analyzer, translator, domain.LanguageKorean, zap.NewNop())

	s := New(":0", domain.LanguageKorean, Dependencies{
		Analyzer:   analyzer,
		Translator: translator,
		Sessions:   sessions,
		Status:     ai.NewModelManagerWithProvider(nil, zap.NewNop()),
	}, zap.NewNop())

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return &fixture{srv: srv, analyzer: analyzer}
}

func (f *fixture) do(t *testing.T, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, f.srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func errorCode(body map[string]any) string {
	errObj, _ := body["error"].(map[string]any)
	code, _ := errObj["code"].(string)
	return code
}

func TestHealthAndStatus(t *testing.T) {
	f := newFixture(t, true)

	status, body := f.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["ok"])

	status, body = f.do(t, http.MethodGet, "/api/status", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["credentialConfigured"])
	assert.Equal(t, "none", body["provider"])
	circuit, _ := body["circuit"].(map[string]any)
	assert.Equal(t, "CLOSED", circuit["state"])
}

func TestLanguages(t *testing.T) {
	f := newFixture(t, true)
	status, body := f.do(t, http.MethodGet, "/api/languages", nil)
	assert.Equal(t, http.StatusOK, status)
	langs, _ := body["languages"].([]any)
	assert.Len(t, langs, 7)
	assert.Equal(t, "ko", body["default"])
}

func TestStatelessAnalyze(t *testing.T) {
	f := newFixture(t, true)

	status, body := f.do(t, http.MethodPost, "/api/analyze", gin.H{"url": "https://instagram.com/sky", "language": "EN"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 82.0, body["score"])
	assert.Equal(t, []domain.Language{domain.LanguageEnglish}, f.analyzer.langs)

	status, body = f.do(t, http.MethodPost, "/api/analyze", gin.H{"url": "  "})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, apperrors.CodeValidation, errorCode(body))
}

func TestAnalyzeErrorStatuses(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"credential", apperrors.NewCredentialError("no key", true, ai.ErrMissingCredential), http.StatusUnauthorized, apperrors.CodeCredential},
		{"analysis", apperrors.NewAnalysisError("failed", "ko", errors.New("boom")), http.StatusBadGateway, apperrors.CodeAnalysis},
		{"circuit", apperrors.NewAnalysisError("unavailable", "ko", ai.ErrCircuitOpen), http.StatusServiceUnavailable, apperrors.CodeAnalysis},
		{"untyped", errors.New("boom"), http.StatusInternalServerError, apperrors.CodeAppError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, true)
			f.analyzer.set(nil, tc.err)

			status, body := f.do(t, http.MethodPost, "/api/analyze", gin.H{"url": "https://instagram.com/sky"})
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.code, errorCode(body))
		})
	}
}

func TestStatelessTranslate(t *testing.T) {
	f := newFixture(t, false)

	status, body := f.do(t, http.MethodPost, "/api/translate", gin.H{"report": sample(), "language": "en"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["translated"])
	translated, _ := body["report"].(map[string]any)
	assert.Equal(t, "뷰티", translated["niche"])

	status, _ = f.do(t, http.MethodPost, "/api/translate", gin.H{"language": "en"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSessionLifecycle(t *testing.T) {
	f := newFixture(t, true)

	status, created := f.do(t, http.MethodPost, "/api/sessions", nil)
	require.Equal(t, http.StatusCreated, status)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "idle", created["phase"])
	assert.Equal(t, "ko", created["language"])

	f.analyzer.set(nil, apperrors.NewAnalysisError("실시간 데이터 분석 중 오류가 발생했습니다.", "ko", errors.New("boom")))
	status, body := f.do(t, http.MethodPost, "/api/sessions/"+id+"/analyze", gin.H{"url": "https://instagram.com/sky"})
	assert.Equal(t, http.StatusBadGateway, status)
	failed, _ := body["session"].(map[string]any)
	assert.Equal(t, "error", failed["phase"])
	assert.Nil(t, failed["report"])

	f.analyzer.set(sample(), nil)
	status, body = f.do(t, http.MethodPost, "/api/sessions/"+id+"/analyze", gin.H{"url": "https://instagram.com/sky"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "idle", body["phase"])
	assert.NotNil(t, body["report"])

	status, body = f.do(t, http.MethodPut, "/api/sessions/"+id+"/language", gin.H{"language": "en"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "en", body["language"])
	translated, _ := body["report"].(map[string]any)
	assert.Equal(t, "Beauty", translated["niche"])
	assert.Equal(t, 82.0, translated["score"])

	status, body = f.do(t, http.MethodPost, "/api/sessions/"+id+"/reset", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Nil(t, body["report"])
	assert.Equal(t, "en", body["language"])

	status, body = f.do(t, http.MethodGet, "/api/sessions/"+id, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "idle", body["phase"])
}

func TestSessionNotFound(t *testing.T) {
	f := newFixture(t, true)

	status, body := f.do(t, http.MethodGet, "/api/sessions/nope", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, apperrors.CodeNotFound, errorCode(body))

	status, _ = f.do(t, http.MethodPut, "/api/sessions/nope/language", gin.H{"language": "en"})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSessionEventsStream(t *testing.T) {
	f := newFixture(t, true)

	_, created := f.do(t, http.MethodPost, "/api/sessions", gin.H{"language": "ja"})
	id, _ := created["id"].(string)

	wsURL := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/api/sessions/" + id + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first StateEvent
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "state", first.Type)
	assert.Equal(t, id, first.Session.ID)
	assert.Equal(t, domain.LanguageJapanese, first.Session.Language)

	status, _ := f.do(t, http.MethodPost, "/api/sessions/"+id+"/analyze", gin.H{"url": "https://instagram.com/sky"})
	require.Equal(t, http.StatusOK, status)

	var phases []session.Phase
	last := first.Session.Revision
	for len(phases) < 2 {
		var event StateEvent
		require.NoError(t, conn.ReadJSON(&event))
		require.Greater(t, event.Session.Revision, last)
		last = event.Session.Revision
		phases = append(phases, event.Session.Phase)
	}
	assert.Equal(t, []session.Phase{session.PhaseLoading, session.PhaseIdle}, phases)
}

func TestNewerThanDropsStaleSnapshots(t *testing.T) {
	assert.False(t, newerThan(nil, 0))
	assert.False(t, newerThan(&session.State{Revision: 3}, 3))
	assert.False(t, newerThan(&session.State{Revision: 2}, 3))
	assert.True(t, newerThan(&session.State{Revision: 4}, 3))
}

func TestSessionEventsUnknownSession(t *testing.T) {
	f := newFixture(t, true)
	wsURL := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/api/sessions/nope/events"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
