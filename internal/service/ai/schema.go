package ai

import (
	"encoding/json"

	"google.golang.org/genai"
)

func stringSchema() *genai.Schema {
	return &genai.Schema{Type: genai.TypeString}
}

func numberSchema() *genai.Schema {
	return &genai.Schema{Type: genai.TypeNumber}
}

func objectSchema(properties map[string]*genai.Schema, required ...string) *genai.Schema {
	return &genai.Schema{
		Type:       genai.TypeObject,
		Properties: properties,
		Required:   required,
	}
}

func arraySchema(items *genai.Schema) *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: items}
}

// ReportSchema is the response-shape contract for an analysis report. A new
// value is returned on each call so callers may adjust it.
func ReportSchema() *genai.Schema {
	return objectSchema(map[string]*genai.Schema{
		"influencerName": stringSchema(),
		"platformName":   stringSchema(),
		"niche":          stringSchema(),
		"profileSummary": stringSchema(),
		"profileHeader": objectSchema(map[string]*genai.Schema{
			"posts":     stringSchema(),
			"followers": stringSchema(),
			"following": stringSchema(),
			"imageUrl":  stringSchema(),
		}, "posts", "followers", "following"),
		"metrics": arraySchema(objectSchema(map[string]*genai.Schema{
			"label": stringSchema(),
			"value": stringSchema(),
			"trend": {
				Type: genai.TypeString,
				Enum: []string{"up", "down", "neutral"},
			},
			"percentage": stringSchema(),
		}, "label", "value", "trend")),
		"contentPillars": arraySchema(objectSchema(map[string]*genai.Schema{
			"topic":       stringSchema(),
			"weight":      numberSchema(),
			"description": stringSchema(),
		}, "topic", "weight", "description")),
		"sentiment": objectSchema(map[string]*genai.Schema{
			"positive": numberSchema(),
			"neutral":  numberSchema(),
			"negative": numberSchema(),
			"summary":  stringSchema(),
		}, "positive", "neutral", "negative", "summary"),
		"brandAffinity":   arraySchema(stringSchema()),
		"recommendations": arraySchema(stringSchema()),
		"growthStrategy": arraySchema(objectSchema(map[string]*genai.Schema{
			"title":       stringSchema(),
			"description": stringSchema(),
		}, "title", "description")),
		"scalabilityGuide": stringSchema(),
		"score":            numberSchema(),
	},
		"influencerName",
		"platformName",
		"niche",
		"profileSummary",
		"profileHeader",
		"metrics",
		"contentPillars",
		"sentiment",
		"brandAffinity",
		"recommendations",
		"growthStrategy",
		"scalabilityGuide",
		"score",
	)
}

// SchemaJSON renders a schema for inclusion in prompt text, for requests
// where the backend cannot enforce it directly.
func SchemaJSON(schema *genai.Schema) string {
	if schema == nil {
		return "{}"
	}
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}
