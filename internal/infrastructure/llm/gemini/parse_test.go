package gemini

import (
	"reflect"
	"strings"
	"testing"

	"github.com/jaehyuk-choi/banking-faq-rag/internal/core/domain"
)

func TestParseModelAnswerJSON(t *testing.T) {
	raw := `{
		"answer": "공동인증서를 재발급하세요.",
		"steps": ["인증센터 접속", "재발급 선택"],
		"citations": [{"title": "인증서 재발급", "url": "https://bank.example/faq/1", "snippet": "재발급 절차"}],
		"confidence": "high",
		"followups": ["모바일에서도 가능한가요?"]
	}`

	got := parseModelAnswer(raw)
	if !got.Parsed {
		t.Fatal("expected Parsed to be set")
	}
	if got.Answer != "공동인증서를 재발급하세요." {
		t.Errorf("answer = %q", got.Answer)
	}
	if got.Confidence != domain.ConfidenceHigh {
		t.Errorf("confidence = %s", got.Confidence)
	}
	if len(got.Steps) != 2 || len(got.Citations) != 1 || len(got.Followups) != 1 {
		t.Errorf("unexpected payload: %+v", got)
	}
}

func TestParseModelAnswerStripsCodeFence(t *testing.T) {
	raw := "```json\n{\"answer\": \"안내\", \"confidence\": \"medium\"}\n```"

	got := parseModelAnswer(raw)
	if !got.Parsed {
		t.Fatalf("fenced JSON not parsed: %+v", got)
	}
	if got.Answer != "안내" {
		t.Errorf("answer = %q", got.Answer)
	}
}

func TestParseModelAnswerNewlineDelimitedSteps(t *testing.T) {
	raw := `{"answer": "안내", "steps": "1. 접속\n2. 로그인\n\n3. 확인"}`

	got := parseModelAnswer(raw)
	want := []string{"1. 접속", "2. 로그인", "3. 확인"}
	if !reflect.DeepEqual([]string(got.Steps), want) {
		t.Errorf("steps = %v, want %v", got.Steps, want)
	}
}

func TestParseModelAnswerRawFallback(t *testing.T) {
	raw := "죄송하지만 JSON이 아닌 평문 답변입니다."

	got := parseModelAnswer(raw)
	if got.Parsed {
		t.Fatal("plain text must not be marked as parsed")
	}
	if got.Answer != raw {
		t.Errorf("answer = %q, want the raw reply", got.Answer)
	}
	if got.Confidence != domain.ConfidenceMedium {
		t.Errorf("confidence = %s, want medium", got.Confidence)
	}
	if len(got.Steps) != 0 || len(got.Citations) != 0 || len(got.Followups) != 0 {
		t.Errorf("fallback should carry no structured fields: %+v", got)
	}
}

func TestNormalizeConfidence(t *testing.T) {
	cases := map[string]domain.Confidence{
		"high":    domain.ConfidenceHigh,
		"LOW":     domain.ConfidenceLow,
		" medium": domain.ConfidenceMedium,
		"":        domain.ConfidenceMedium,
		"확실":      domain.ConfidenceMedium,
	}
	for in, want := range cases {
		if got := normalizeConfidence(in); got != want {
			t.Errorf("normalizeConfidence(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestBuildAnswerPromptIncludesEvidence(t *testing.T) {
	evidence := []domain.ScoredResult{{
		Passage: domain.Passage{
			Title: "이체 한도",
			Text:  "이체 한도 증액 안내",
			URL:   "https://bank.example/faq/7",
		},
	}}

	prompt := buildAnswerPrompt("한도를 올리고 싶어요", "모바일 사용 중", evidence)
	for _, want := range []string{"[FAQ 1]", "이체 한도", "https://bank.example/faq/7", "상황: 모바일 사용 중"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
