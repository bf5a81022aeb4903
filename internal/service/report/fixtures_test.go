package report

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/kapu/influencer-insight-go/internal/domain"
	"github.com/kapu/influencer-insight-go/internal/service/ai"
	"go.uber.org/zap"
)

// scriptedProvider replays canned replies and records every request.
type scriptedProvider struct {
	mu      sync.Mutex
	replies []ai.ProviderResult
	errs    []error
	calls   []ai.GenerateRequest
}

func (p *scriptedProvider) Name() string { return "Scripted" }

func (p *scriptedProvider) Generate(_ context.Context, req ai.GenerateRequest) (ai.ProviderResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx := len(p.calls)
	p.calls = append(p.calls, req)
	if idx < len(p.errs) && p.errs[idx] != nil {
		return ai.ProviderResult{}, p.errs[idx]
	}
	if idx < len(p.replies) {
		return p.replies[idx], nil
	}
	return ai.ProviderResult{}, ai.ErrEmptyResponse
}

func (p *scriptedProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func newManager(p ai.JSONProvider) *ai.ModelManager {
	return ai.NewModelManagerWithProvider(p, zap.NewNop())
}

func sampleReport() *domain.AnalysisReport {
	return &domain.AnalysisReport{
		InfluencerName: "김하늘",
		PlatformName:   "Instagram",
		Niche:          "뷰티",
		ProfileSummary: "데일리 메이크업 크리에이터",
		ProfileHeader: &domain.ProfileHeader{
			Posts:     "1,204",
			Followers: "12.3만",
			Following: "312",
		},
		Metrics: []domain.InfluencerMetric{
			{Label: "참여율", Value: "4.2%", Trend: domain.TrendUp, Percentage: "+0.3%"},
			{Label: "평균 좋아요", Value: "5,100", Trend: domain.TrendNeutral},
		},
		ContentPillars: []domain.ContentPillar{
			{Topic: "메이크업", Weight: 60, Description: "튜토리얼"},
			{Topic: "일상", Weight: 40, Description: "브이로그"},
		},
		Sentiment:        domain.Sentiment{Positive: 78, Neutral: 17, Negative: 5, Summary: "매우 긍정적"},
		BrandAffinity:    []string{"이니스프리"},
		Recommendations:  []string{"릴스 빈도 증가"},
		GrowthStrategy:   []domain.GrowthStep{{Title: "협업", Description: "브랜드 협업 확대"}},
		ScalabilityGuide: "주 3회 업로드",
		Score:            82,
		Sources: []domain.GroundingSource{
			{Title: "Instagram", URI: "https://www.instagram.com/sky"},
		},
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}
