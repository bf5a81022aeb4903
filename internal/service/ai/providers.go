package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/kapu/influencer-insight-go/internal/domain"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// JSONProvider is one generation backend.
type JSONProvider interface {
	Name() string
	Generate(ctx context.Context, req GenerateRequest) (ProviderResult, error)
}

// GeminiProvider wraps the Gemini client with preset-aware generation logic.
type GeminiProvider struct {
	client       *genai.Client
	defaultModel string
	logger       *zap.Logger
}

func NewGeminiProvider(client *genai.Client, defaultModel string, logger *zap.Logger) *GeminiProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeminiProvider{
		client:       client,
		defaultModel: defaultModel,
		logger:       logger,
	}
}

func (g *GeminiProvider) Name() string {
	return "Gemini"
}

func (g *GeminiProvider) DefaultModel() string {
	return g.defaultModel
}

func (g *GeminiProvider) Generate(ctx context.Context, req GenerateRequest) (ProviderResult, error) {
	if g.client == nil {
		return ProviderResult{}, fmt.Errorf("gemini client not initialized")
	}

	modelName := g.defaultModel
	if req.Model != "" {
		modelName = req.Model
	}

	genConfig := buildGeminiConfig(req)

	g.logger.Debug("Generating with Gemini",
		zap.String("model", modelName),
		zap.String("preset", string(req.Preset)),
		zap.Bool("search", req.EnableSearch),
		zap.Bool("schema", req.Schema != nil),
	)

	resp, err := g.client.Models.GenerateContent(ctx, modelName, []*genai.Content{
		{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: req.Prompt}},
		},
	}, genConfig)
	if err != nil {
		g.logger.Error("Gemini generation failed", zap.String("model", modelName), zap.Error(err))
		return ProviderResult{}, err
	}

	text := extractTextFromGeminiResponse(resp)
	if text == "" {
		return ProviderResult{}, fmt.Errorf("%w from Gemini", ErrEmptyResponse)
	}

	sources := extractGroundingSources(resp)

	g.logger.Debug("Gemini response received",
		zap.Int("length", len(text)),
		zap.Int("grounding_chunks", len(sources)),
	)
	return ProviderResult{Text: text, Model: modelName, Sources: sources}, nil
}

func buildGeminiConfig(req GenerateRequest) *genai.GenerateContentConfig {
	preset := GetPresetConfig(req.Preset)
	topK := float32(preset.TopK)

	genConfig := &genai.GenerateContentConfig{
		Temperature:     &preset.Temperature,
		TopP:            &preset.TopP,
		TopK:            &topK,
		MaxOutputTokens: int32(preset.MaxOutputTokens),
	}

	if req.SystemInstruction != "" {
		genConfig.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemInstruction}},
		}
	}

	if req.EnableSearch {
		genConfig.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	if req.Schema != nil {
		genConfig.ResponseMIMEType = "application/json"
		genConfig.ResponseSchema = req.Schema
	}

	if req.ThinkingBudget > 0 {
		budget := int32(req.ThinkingBudget)
		genConfig.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: &budget}
	}

	return genConfig
}

func extractTextFromGeminiResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return ""
	}

	var texts []string
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		if part.Text != "" {
			texts = append(texts, part.Text)
		}
	}

	return strings.Join(texts, "")
}

// extractGroundingSources returns web citations in response order, duplicates included.
func extractGroundingSources(resp *genai.GenerateContentResponse) []domain.GroundingSource {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return nil
	}

	metadata := resp.Candidates[0].GroundingMetadata
	if metadata == nil {
		return nil
	}

	sources := make([]domain.GroundingSource, 0, len(metadata.GroundingChunks))
	for _, chunk := range metadata.GroundingChunks {
		if chunk == nil || chunk.Web == nil {
			continue
		}
		sources = append(sources, domain.GroundingSource{
			Title: chunk.Web.Title,
			URI:   chunk.Web.URI,
		})
	}
	return sources
}

// OpenAIProvider wraps the OpenAI chat completion client. It cannot ground
// answers in web search, so results never carry sources.
type OpenAIProvider struct {
	client       *openai.Client
	defaultModel string
	logger       *zap.Logger
}

func NewOpenAIProvider(apiKey, baseURL, defaultModel string, logger *zap.Logger) *OpenAIProvider {
	if apiKey == "" {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(opts...)
	return &OpenAIProvider{
		client:       &client,
		defaultModel: defaultModel,
		logger:       logger,
	}
}

func (o *OpenAIProvider) Name() string {
	return "OpenAI"
}

func (o *OpenAIProvider) Generate(ctx context.Context, req GenerateRequest) (ProviderResult, error) {
	if o.client == nil {
		return ProviderResult{}, fmt.Errorf("OpenAI client not initialized")
	}

	modelName := o.defaultModel
	if req.Model != "" && !strings.HasPrefix(req.Model, "gemini") {
		modelName = req.Model
	}
	preset := GetPresetConfig(req.Preset)

	if req.EnableSearch {
		o.logger.Debug("OpenAI provider ignores search grounding", zap.String("model", modelName))
	}

	system := strings.TrimSpace(req.SystemInstruction)
	if system != "" {
		system += "\n\n"
	}
	system += "You must respond with valid JSON only. Do not include any text outside the JSON object."
	if req.Schema != nil {
		system += "\nThe JSON must follow this schema:\n" + SchemaJSON(req.Schema)
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(modelName),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(req.Prompt),
		},
		MaxCompletionTokens: openai.Int(int64(preset.MaxOutputTokens)),
	}
	if !strings.HasPrefix(modelName, "gpt-5") && !strings.HasPrefix(modelName, "o") {
		params.Temperature = openai.Float(float64(preset.Temperature))
		params.TopP = openai.Float(float64(preset.TopP))
	}

	o.logger.Debug("Generating with OpenAI",
		zap.String("model", modelName),
		zap.String("preset", string(req.Preset)),
	)

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		o.logger.Error("OpenAI generation failed", zap.String("model", modelName), zap.Error(err))
		return ProviderResult{}, err
	}

	if len(resp.Choices) == 0 {
		return ProviderResult{}, fmt.Errorf("%w: no choices in OpenAI response", ErrEmptyResponse)
	}

	text := resp.Choices[0].Message.Content

	o.logger.Info("OpenAI response received",
		zap.Int("length", len(text)),
		zap.Int64("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens),
	)

	return ProviderResult{Text: text, Model: modelName}, nil
}
