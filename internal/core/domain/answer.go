package domain

// Confidence is the calibrated reliability label attached to an answer.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Citation points at the FAQ evidence backing a claim in the answer.
type Citation struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	FAQID   string `json:"faq_id,omitempty"`
}

// Answer is the final user-facing payload produced by the pipeline.
type Answer struct {
	Answer     string     `json:"answer"`
	Steps      []string   `json:"steps"`
	Citations  []Citation `json:"citations"`
	Followups  []string   `json:"followups"`
	Confidence Confidence `json:"confidence"`
	Safety     string     `json:"safety,omitempty"`
}

// ModelAnswer is the structured generative output before formatting.
// Parsed is false when the model's reply could not be decoded as JSON and
// the raw text was carried through as the answer body.
type ModelAnswer struct {
	Answer     string
	Steps      []string
	Citations  []Citation
	Followups  []string
	Confidence Confidence
	Parsed     bool
}

// Intent categories form a closed set; anything else collapses to IntentOther.
const (
	IntentLogin       = "로그인"
	IntentTransfer    = "이체"
	IntentCertificate = "인증서"
	IntentErrorCode   = "오류코드"
	IntentSecurity    = "보안"
	IntentFee         = "수수료"
	IntentLimit       = "한도"
	IntentAccountReg  = "계좌등록"
	IntentOther       = "기타"
)

// IntentCategories lists every recognized intent label.
var IntentCategories = []string{
	IntentLogin,
	IntentTransfer,
	IntentCertificate,
	IntentErrorCode,
	IntentSecurity,
	IntentFee,
	IntentLimit,
	IntentAccountReg,
	IntentOther,
}

// KnownIntent reports whether label belongs to the closed category set.
func KnownIntent(label string) bool {
	for _, c := range IntentCategories {
		if c == label {
			return true
		}
	}
	return false
}
