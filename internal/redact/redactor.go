// Package redact masks sensitive banking values (passwords, full card and
// account numbers, resident registration numbers) in free text before it is
// logged, embedded, or sent to the generative model.
package redact

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

type rule struct {
	category string
	patterns []*regexp.Regexp
	warning  string
}

// Rules are checked in a fixed order so warning output is deterministic.
var rules = []rule{
	{
		category: "password",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)비밀번호\s*[:=]\s*[\w!@#$%^&*()_+\-=\[\]{};':"\\|,.<>/?]{6,}`),
			regexp.MustCompile(`(?i)패스워드\s*[:=]\s*[\w!@#$%^&*()_+\-=\[\]{};':"\\|,.<>/?]{6,}`),
		},
		warning: "비밀번호는 입력하지 마세요. 비밀번호 찾기 기능을 사용하세요.",
	},
	{
		category: "security_card_full",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)보안카드\s*(전체|번호|전체번호)\s*[:=]\s*[\d\s\-]{12,}`),
			regexp.MustCompile(`(?i)보안카드\s*[:=]\s*[\d\s\-]{12,}`),
		},
		warning: "보안카드 전체 번호는 입력하지 마세요. 화면에 표시된 좌표에 해당하는 번호만 입력하세요.",
	},
	{
		category: "otp_full",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)OTP\s*(전체|번호|전체번호)\s*[:=]\s*[\d]{6,}`),
			regexp.MustCompile(`(?i)일회용\s*비밀번호\s*(전체|번호)\s*[:=]\s*[\d]{6,}`),
		},
		warning: "OTP 전체 번호는 입력하지 마세요. OTP 앱에서 생성된 번호만 입력하세요.",
	},
	{
		category: "account_full",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)계좌번호\s*(전체|번호)\s*[:=]\s*[\d\s\-]{10,}`),
			regexp.MustCompile(`(?i)계좌\s*[:=]\s*[\d\s\-]{10,}`),
		},
		warning: "계좌번호 전체는 입력하지 마세요. 필요한 경우 마지막 4자리만 확인하세요.",
	},
	{
		category: "card_number",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)카드번호\s*(전체|번호)\s*[:=]\s*[\d\s\-]{13,}`),
			regexp.MustCompile(`(?i)신용카드\s*(전체|번호)\s*[:=]\s*[\d\s\-]{13,}`),
		},
		warning: "카드번호 전체는 입력하지 마세요.",
	},
	{
		category: "resident_number",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)주민등록번호\s*[:=]\s*[\d]{6}\s*[-]?\s*[\d]{7}`),
			regexp.MustCompile(`(?i)주민번호\s*[:=]\s*[\d]{6}\s*[-]?\s*[\d]{7}`),
		},
		warning: "주민등록번호는 입력하지 마세요.",
	},
	{
		category: "phone_full",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)전화번호\s*(전체|번호)\s*[:=]\s*[\d\s\-]{10,}`),
		},
		warning: "전화번호 전체는 입력하지 마세요.",
	},
}

// Redactor masks sensitive values and reports one warning per triggered
// category. The zero value is not usable; construct with New.
type Redactor struct{}

func New() *Redactor {
	return &Redactor{}
}

// Redact replaces the value part of every sensitive match with a '*' run of
// the same rune length. Warnings are de-duplicated per category and returned
// in rule order. Redact is pure and idempotent.
func (r *Redactor) Redact(text string) (string, []string) {
	if text == "" {
		return text, nil
	}

	masked := text
	var warnings []string
	for _, rl := range rules {
		hit := false
		for _, re := range rl.patterns {
			var ok bool
			masked, ok = maskAll(masked, re)
			hit = hit || ok
		}
		if hit {
			warnings = append(warnings, rl.warning)
		}
	}
	return masked, warnings
}

// maskAll collects the non-overlapping matches first, then rebuilds the text
// once, walking the spans from the last match backwards so earlier offsets
// stay valid.
func maskAll(text string, re *regexp.Regexp) (string, bool) {
	spans := re.FindAllStringIndex(text, -1)
	if len(spans) == 0 {
		return text, false
	}
	for i := len(spans) - 1; i >= 0; i-- {
		start, end := spans[i][0], spans[i][1]
		text = text[:start] + maskMatch(text[start:end]) + text[end:]
	}
	return text, true
}

var separator = regexp.MustCompile(`[:=]`)

func maskMatch(match string) string {
	loc := separator.FindStringIndex(match)
	if loc == nil {
		return strings.Repeat("*", utf8.RuneCountInString(match))
	}
	prefix := match[:loc[0]]
	sep := match[loc[0]:loc[1]]
	value := strings.TrimSpace(match[loc[1]:])
	return prefix + sep + " " + strings.Repeat("*", utf8.RuneCountInString(value))
}
