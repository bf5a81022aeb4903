package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Trend is the direction of an influencer metric.
type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendNeutral Trend = "neutral"
)

// AnalysisReport is the structured audit produced for one profile URL.
type AnalysisReport struct {
	InfluencerName   string             `json:"influencerName" validate:"required"`
	PlatformName     string             `json:"platformName" validate:"required"`
	Niche            string             `json:"niche" validate:"required"`
	ProfileSummary   string             `json:"profileSummary" validate:"required"`
	ProfileHeader    *ProfileHeader     `json:"profileHeader,omitempty" validate:"required"`
	Metrics          []InfluencerMetric `json:"metrics" validate:"required,dive"`
	ContentPillars   []ContentPillar    `json:"contentPillars" validate:"required,dive"`
	Sentiment        Sentiment          `json:"sentiment"`
	BrandAffinity    []string           `json:"brandAffinity" validate:"required"`
	Recommendations  []string           `json:"recommendations" validate:"required"`
	GrowthStrategy   []GrowthStep       `json:"growthStrategy" validate:"required,dive"`
	ScalabilityGuide string             `json:"scalabilityGuide" validate:"required"`
	Score            float64            `json:"score" validate:"gte=0,lte=100"`
	Sources          []GroundingSource  `json:"sources,omitempty"`

	// scoreMissing is set when decoded JSON had no score key.
	scoreMissing bool
}

// UnmarshalJSON records whether the score key was present, since a zero
// score cannot be told apart from an absent one after decoding.
func (r *AnalysisReport) UnmarshalJSON(data []byte) error {
	type plain AnalysisReport
	aux := struct {
		*plain
		Score *float64 `json:"score"`
	}{plain: (*plain)(r)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	r.scoreMissing = aux.Score == nil
	r.Score = 0
	if aux.Score != nil {
		r.Score = *aux.Score
	}
	return nil
}

// MissingScore reports whether the report was decoded from JSON without a score.
func (r *AnalysisReport) MissingScore() bool {
	return r != nil && r.scoreMissing
}

// ProfileHeader holds the header counters exactly as the platform displays them.
type ProfileHeader struct {
	Posts     string `json:"posts" validate:"required"`
	Followers string `json:"followers" validate:"required"`
	Following string `json:"following" validate:"required"`
	ImageURL  string `json:"imageUrl,omitempty"`
}

type InfluencerMetric struct {
	Label      string     `json:"label" validate:"required"`
	Value      FlexString `json:"value" validate:"required"`
	Trend      Trend      `json:"trend" validate:"oneof=up down neutral"`
	Percentage FlexString `json:"percentage,omitempty"`
}

type ContentPillar struct {
	Topic       string  `json:"topic" validate:"required"`
	Weight      float64 `json:"weight" validate:"gte=0"`
	Description string  `json:"description" validate:"required"`
}

type Sentiment struct {
	Positive float64 `json:"positive" validate:"gte=0"`
	Neutral  float64 `json:"neutral" validate:"gte=0"`
	Negative float64 `json:"negative" validate:"gte=0"`
	Summary  string  `json:"summary" validate:"required"`
}

type GrowthStep struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// GroundingSource is a web page the model consulted while answering.
type GroundingSource struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// FlexString decodes either a JSON string or a JSON number into a string.
// Models are inconsistent about quoting metric values and percentages.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(f))
}

func (f FlexString) String() string {
	return string(f)
}

// Float reports the numeric value when the string holds a plain number.
func (f FlexString) Float() (float64, bool) {
	v, err := strconv.ParseFloat(string(f), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Clone returns a deep copy so callers can mutate the result freely.
func (r *AnalysisReport) Clone() *AnalysisReport {
	if r == nil {
		return nil
	}

	cloned := *r
	if r.ProfileHeader != nil {
		header := *r.ProfileHeader
		cloned.ProfileHeader = &header
	}
	cloned.Metrics = cloneSlice(r.Metrics)
	cloned.ContentPillars = cloneSlice(r.ContentPillars)
	cloned.BrandAffinity = cloneSlice(r.BrandAffinity)
	cloned.Recommendations = cloneSlice(r.Recommendations)
	cloned.GrowthStrategy = cloneSlice(r.GrowthStrategy)
	cloned.Sources = cloneSlice(r.Sources)
	return &cloned
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
