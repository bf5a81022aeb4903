package domain

// MessageKey names a user-facing error message.
type MessageKey string

const (
	MessageAnalysisFailed     MessageKey = "analysis_failed"
	MessageCredentialMissing  MessageKey = "credential_missing"
	MessageCredentialRejected MessageKey = "credential_rejected"
	MessageServiceUnavailable MessageKey = "service_unavailable"
	MessageURLRequired        MessageKey = "url_required"
	MessageBusy               MessageKey = "busy"
)

var messageCatalog = map[MessageKey]map[Language]string{
	MessageAnalysisFailed: {
		LanguageKorean:     "실시간 데이터 분석 중 오류가 발생했습니다. URL이 정확한지 확인해 주세요.",
		LanguageEnglish:    "Error during real-time analysis. Please check that the URL is correct.",
		LanguageJapanese:   "リアルタイム分析中にエラーが発生しました。URLが正しいか確認してください。",
		LanguageChinese:    "实时分析过程中出错。请确认 URL 是否正确。",
		LanguageVietnamese: "Đã xảy ra lỗi trong quá trình phân tích. Vui lòng kiểm tra lại URL.",
		LanguageThai:       "เกิดข้อผิดพลาดระหว่างการวิเคราะห์ โปรดตรวจสอบ URL",
		LanguageIndonesian: "Terjadi kesalahan selama analisis. Periksa kembali URL Anda.",
	},
	MessageCredentialMissing: {
		LanguageKorean:     "API 키가 설정되지 않았습니다. API 키를 선택한 뒤 다시 시도해 주세요.",
		LanguageEnglish:    "No API key is configured. Please select an API key and try again.",
		LanguageJapanese:   "APIキーが設定されていません。APIキーを選択してから再度お試しください。",
		LanguageChinese:    "尚未配置 API 密钥。请选择 API 密钥后重试。",
		LanguageVietnamese: "Chưa cấu hình khóa API. Vui lòng chọn khóa API và thử lại.",
		LanguageThai:       "ยังไม่ได้ตั้งค่า API key โปรดเลือก API key แล้วลองอีกครั้ง",
		LanguageIndonesian: "Kunci API belum dikonfigurasi. Pilih kunci API lalu coba lagi.",
	},
	MessageCredentialRejected: {
		LanguageKorean:     "요청한 항목을 찾을 수 없습니다. API 키를 다시 선택해 주세요.",
		LanguageEnglish:    "Requested entity was not found. Please re-select your API key.",
		LanguageJapanese:   "リクエストされたエンティティが見つかりません。APIキーを再選択してください。",
		LanguageChinese:    "未找到请求的实体。请重新选择 API 密钥。",
		LanguageVietnamese: "Không tìm thấy thực thể được yêu cầu. Vui lòng chọn lại khóa API.",
		LanguageThai:       "ไม่พบเอนทิตีที่ร้องขอ โปรดเลือก API key ใหม่",
		LanguageIndonesian: "Entitas yang diminta tidak ditemukan. Pilih ulang kunci API Anda.",
	},
	MessageServiceUnavailable: {
		LanguageKorean:     "AI 서비스에 일시적인 문제가 발생했습니다. 잠시 후 다시 시도해 주세요.",
		LanguageEnglish:    "The AI service is temporarily unavailable. Please try again shortly.",
		LanguageJapanese:   "AIサービスに一時的な問題が発生しています。しばらくしてから再度お試しください。",
		LanguageChinese:    "AI 服务暂时不可用，请稍后重试。",
		LanguageVietnamese: "Dịch vụ AI tạm thời không khả dụng. Vui lòng thử lại sau.",
		LanguageThai:       "บริการ AI ไม่พร้อมใช้งานชั่วคราว โปรดลองอีกครั้งในภายหลัง",
		LanguageIndonesian: "Layanan AI sementara tidak tersedia. Silakan coba lagi nanti.",
	},
	MessageURLRequired: {
		LanguageKorean:  "URL을 입력하세요.",
		LanguageEnglish: "Please enter a URL.",
	},
	MessageBusy: {
		LanguageKorean:  "이미 요청을 처리하고 있습니다.",
		LanguageEnglish: "A request is already in progress.",
	},
}

// Message returns the localized text for key, falling back to English.
func Message(key MessageKey, lang Language) string {
	entries, ok := messageCatalog[key]
	if !ok {
		return string(key)
	}
	if msg, ok := entries[lang]; ok {
		return msg
	}
	return entries[LanguageEnglish]
}
