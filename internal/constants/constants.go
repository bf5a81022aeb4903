package constants

import "time"

var CacheTTL = struct {
	Translation time.Duration
	Session     time.Duration
}{
	Translation: 6 * time.Hour,    // 번역 결과
	Session:     60 * time.Minute, // 세션 상태
}

var RedisConfig = struct {
	ReadyTimeout time.Duration
	KeyPrefix    string
}{
	ReadyTimeout: 5 * time.Second,
	KeyPrefix:    "insight:",
}

var AIInputLimits = struct {
	MaxURLLength    int
	MaxExtractBytes int
	PreviewLogChars int
}{
	MaxURLLength:    2048,
	MaxExtractBytes: 1 << 20, // fallback JSON scan bound
	PreviewLogChars: 200,
}

var AIModels = struct {
	GeminiAnalyze   string
	GeminiTranslate string
	OpenAI          string
	ThinkingBudget  int
}{
	GeminiAnalyze:   "gemini-2.5-pro",
	GeminiTranslate: "gemini-2.5-flash",
	OpenAI:          "gpt-4.1",
	ThinkingBudget:  8000,
}

var CircuitBreakerConfig = struct {
	FailureThreshold int
	ResetTimeout     time.Duration
	RateLimitTimeout time.Duration
}{
	FailureThreshold: 3,                // 3회 연속 실패 시 Circuit OPEN
	ResetTimeout:     30 * time.Second, // 기본 재시도 대기 시간
	RateLimitTimeout: 5 * time.Minute,  // 429 전용 타임아웃
}

var Timeouts = struct {
	Analyze   time.Duration
	Translate time.Duration
	Preview   time.Duration
	Shutdown  time.Duration
}{
	Analyze:   180 * time.Second,
	Translate: 90 * time.Second,
	Preview:   8 * time.Second,
	Shutdown:  10 * time.Second,
}

var WebSocketConfig = struct {
	WriteTimeout time.Duration
	PingInterval time.Duration
	SendBuffer   int
}{
	WriteTimeout: 10 * time.Second,
	PingInterval: 30 * time.Second,
	SendBuffer:   8,
}
