package redact

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestRedactMasksPasswordValue(t *testing.T) {
	r := New()

	masked, warnings := r.Redact("비밀번호: abcdef1 로 로그인이 안 돼요")

	if strings.Contains(masked, "abcdef1") {
		t.Fatalf("masked text still contains the password: %q", masked)
	}
	if !strings.Contains(masked, "비밀번호: *******") {
		t.Fatalf("expected value replaced by 7 asterisks, got %q", masked)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d: %v", len(warnings), warnings)
	}
	if !strings.Contains(warnings[0], "비밀번호") {
		t.Errorf("unexpected warning: %q", warnings[0])
	}
}

func TestRedactPreservesValueRuneLength(t *testing.T) {
	r := New()

	cases := []struct {
		name  string
		input string
		value string
	}{
		{"resident number", "주민등록번호: 901231-1234567", "901231-1234567"},
		{"otp", "OTP 전체번호: 123456", "123456"},
		{"account", "계좌: 110-123-456789", "110-123-456789"},
	}
	for _, tc := range cases {
		masked, warnings := r.Redact(tc.input)
		want := strings.Repeat("*", utf8.RuneCountInString(tc.value))
		if !strings.Contains(masked, want) {
			t.Errorf("%s: expected %d-rune mask in %q", tc.name, utf8.RuneCountInString(tc.value), masked)
		}
		if strings.Contains(masked, tc.value) {
			t.Errorf("%s: value survived redaction: %q", tc.name, masked)
		}
		if len(warnings) == 0 {
			t.Errorf("%s: expected a warning", tc.name)
		}
	}
}

func TestRedactIsIdempotent(t *testing.T) {
	r := New()

	once, _ := r.Redact("비밀번호: hunter2x 그리고 계좌번호 전체: 110-123-456789")
	twice, _ := r.Redact(once)

	if once != twice {
		t.Fatalf("second pass changed the text:\nonce:  %q\ntwice: %q", once, twice)
	}
}

func TestRedactOneWarningPerCategory(t *testing.T) {
	r := New()

	_, warnings := r.Redact("비밀번호: abc123! 패스워드= qwerty99")

	if len(warnings) != 1 {
		t.Fatalf("expected a single de-duplicated warning, got %d: %v", len(warnings), warnings)
	}
}

func TestRedactMultipleCategories(t *testing.T) {
	r := New()

	masked, warnings := r.Redact("비밀번호: secret12 주민번호: 901231-1234567")

	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d: %v", len(warnings), warnings)
	}
	if strings.Contains(masked, "secret12") || strings.Contains(masked, "901231-1234567") {
		t.Fatalf("sensitive values survived: %q", masked)
	}
}

func TestRedactCleanTextUntouched(t *testing.T) {
	r := New()

	in := "이체 한도를 늘리고 싶어요"
	masked, warnings := r.Redact(in)

	if masked != in {
		t.Fatalf("clean text modified: %q", masked)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
}

func TestRedactEmptyText(t *testing.T) {
	r := New()

	masked, warnings := r.Redact("")
	if masked != "" || warnings != nil {
		t.Fatalf("expected no-op on empty input, got %q %v", masked, warnings)
	}
}
