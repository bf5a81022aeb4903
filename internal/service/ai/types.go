package ai

import (
	"github.com/kapu/influencer-insight-go/internal/domain"
	"google.golang.org/genai"
)

// ModelPreset represents the model usage preset
type ModelPreset string

const (
	PresetCreative ModelPreset = "creative" // 창의적 응답
	PresetPrecise  ModelPreset = "precise"  // 정확한 응답
	PresetBalanced ModelPreset = "balanced" // 균형잡힌 응답
)

// ModelConfig holds sampling configuration for a preset.
type ModelConfig struct {
	Temperature     float32
	TopP            float32
	TopK            int
	MaxOutputTokens int
}

// GenerateRequest is one call to the generation backend.
type GenerateRequest struct {
	Prompt            string
	SystemInstruction string
	Preset            ModelPreset
	// Model overrides the provider default when set.
	Model string
	// Schema constrains the JSON reply when the provider supports it.
	Schema *genai.Schema
	// EnableSearch turns on web-search grounding.
	EnableSearch   bool
	ThinkingBudget int
}

// ProviderResult is the raw reply of a provider.
type ProviderResult struct {
	Text    string
	Model   string
	Sources []domain.GroundingSource
}

// GenerateMetadata contains metadata about the generation
type GenerateMetadata struct {
	Provider   string
	Model      string
	Extraction Stage
	Sources    []domain.GroundingSource
}

// GetPresetConfig returns the configuration for a preset
func GetPresetConfig(preset ModelPreset) ModelConfig {
	switch preset {
	case PresetCreative:
		return ModelConfig{
			Temperature:     0.7,
			TopP:            0.95,
			TopK:            40,
			MaxOutputTokens: 8192,
		}
	case PresetPrecise:
		return ModelConfig{
			Temperature:     0.1,
			TopP:            0.9,
			TopK:            20,
			MaxOutputTokens: 16384,
		}
	case PresetBalanced:
		return ModelConfig{
			Temperature:     0.3,
			TopP:            0.95,
			TopK:            40,
			MaxOutputTokens: 16384,
		}
	default:
		return GetPresetConfig(PresetBalanced)
	}
}
