package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kapu/influencer-insight-go/internal/constants"
)

// Stage tells which decoding pass produced the value.
type Stage string

const (
	StageDirect   Stage = "direct"
	StageFallback Stage = "fallback"
)

// MalformedOutputError means the model did not return a JSON object at all,
// as opposed to returning JSON of the wrong shape.
type MalformedOutputError struct {
	Reason  string
	Preview string
}

func (e *MalformedOutputError) Error() string {
	return "malformed AI output: " + e.Reason
}

func (e *MalformedOutputError) Is(target error) bool {
	return target == ErrMalformedOutput
}

// ExtractJSON decodes a JSON object from text into dest. It first tries the
// whole text, then the span from the first '{' to the last '}'. The second
// pass is skipped for inputs larger than MaxExtractBytes. Valid JSON that is
// not an object (null, a string, an array) counts as malformed. An object of
// the wrong shape yields a decode error, not a MalformedOutputError.
func ExtractJSON(text string, dest any) (Stage, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", &MalformedOutputError{Reason: "empty response"}
	}

	if trimmed[0] == '{' && json.Valid([]byte(trimmed)) {
		if err := json.Unmarshal([]byte(trimmed), dest); err != nil {
			return StageDirect, fmt.Errorf("decode model JSON: %w", err)
		}
		return StageDirect, nil
	}

	preview := previewOf(trimmed)
	if len(trimmed) > constants.AIInputLimits.MaxExtractBytes {
		return "", &MalformedOutputError{
			Reason:  "response too large for fallback extraction",
			Preview: preview,
		}
	}

	start := strings.IndexByte(trimmed, '{')
	end := strings.LastIndexByte(trimmed, '}')
	if start < 0 || end <= start {
		return "", &MalformedOutputError{
			Reason:  "no JSON object found",
			Preview: preview,
		}
	}

	span := []byte(trimmed[start : end+1])
	if !json.Valid(span) {
		return "", &MalformedOutputError{
			Reason:  "JSON object span did not parse",
			Preview: preview,
		}
	}
	if err := json.Unmarshal(span, dest); err != nil {
		return StageFallback, fmt.Errorf("decode model JSON: %w", err)
	}
	return StageFallback, nil
}

func previewOf(s string) string {
	limit := constants.AIInputLimits.PreviewLogChars
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
