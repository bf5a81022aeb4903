package ai

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/openai/openai-go/v3"
)

var (
	ErrMissingCredential  = errors.New("ai: no API credential configured")
	ErrCircuitOpen        = errors.New("ai: service unavailable (circuit open)")
	ErrMalformedOutput    = errors.New("ai: malformed model output")
	ErrEmptyResponse      = errors.New("ai: empty response")
)

var (
	geminiStatusRegex = regexp.MustCompile(`Error (\d{3}),`)
	jsonCodeRegex     = regexp.MustCompile(`"code":\s*(\d{3})`)
	httpStatusRegex   = regexp.MustCompile(`": (\d{3}) `)
)

var credentialMarkers = []string{
	"Requested entity was not found",
	"API key not valid",
	"API_KEY_INVALID",
	"PERMISSION_DENIED",
	"invalid_api_key",
	"Incorrect API key",
}

// StatusCode extracts an upstream HTTP status from a provider error, or 0.
func StatusCode(err error) int {
	if err == nil {
		return 0
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode > 0 {
		return apiErr.StatusCode
	}

	msg := err.Error()
	for _, re := range []*regexp.Regexp{geminiStatusRegex, jsonCodeRegex, httpStatusRegex} {
		if matches := re.FindStringSubmatch(msg); len(matches) > 1 {
			if code, convErr := strconv.Atoi(matches[1]); convErr == nil {
				return code
			}
		}
	}
	return 0
}

// IsCredentialFailure reports whether the upstream rejected the API key.
func IsCredentialFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrMissingCredential) {
		return true
	}

	msg := err.Error()
	for _, marker := range credentialMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}

	code := StatusCode(err)
	return code == 401 || code == 403
}

func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	if StatusCode(err) == 429 {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "RESOURCE_EXHAUSTED") || strings.Contains(msg, "Rate limit")
}

// IsServiceFailure reports errors that say the upstream itself is unhealthy.
// These are the only failures the circuit breaker counts.
func IsServiceFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if IsRateLimitError(err) {
		return true
	}

	msg := err.Error()
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "ETIMEDOUT") || strings.Contains(msg, "connection refused") {
		return true
	}

	code := StatusCode(err)
	return code >= 500 && code < 600
}
