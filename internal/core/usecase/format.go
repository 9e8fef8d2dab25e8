package usecase

import (
	"strings"

	"github.com/jaehyuk-choi/banking-faq-rag/internal/core/domain"
)

const (
	maxSteps     = 7
	maxFollowups = 2

	noContextPrefix = "관련 FAQ를 찾지 못했습니다"
	noContextAnswer = "관련 FAQ를 찾지 못했습니다. 고객센터(1588-0000)로 문의하시거나 인터넷뱅킹 도움말을 참고하세요."
)

// formatAnswer turns the model payload into the final answer shape. When the
// model returned no citations they are synthesized from the top retrieval
// evidence so every grounded answer carries its sources.
func formatAnswer(ma domain.ModelAnswer, docs []domain.ScoredResult) *domain.Answer {
	citations := ma.Citations
	if len(citations) == 0 && len(docs) > 0 {
		limit := evidenceLimit
		if len(docs) < limit {
			limit = len(docs)
		}
		citations = make([]domain.Citation, 0, limit)
		for _, doc := range docs[:limit] {
			citations = append(citations, domain.Citation{
				Title:   doc.Passage.Title,
				URL:     doc.Passage.URL,
				Snippet: doc.Snippet,
				FAQID:   doc.Passage.FAQID,
			})
		}
	}

	steps := ma.Steps
	if len(steps) > maxSteps {
		steps = steps[:maxSteps]
	}
	followups := ma.Followups
	if len(followups) > maxFollowups {
		followups = followups[:maxFollowups]
	}

	confidence := ma.Confidence
	if confidence == "" {
		confidence = domain.ConfidenceMedium
	}

	// Empty slices instead of nil so the JSON payload renders [].
	if steps == nil {
		steps = []string{}
	}
	if followups == nil {
		followups = []string{}
	}
	if citations == nil {
		citations = []domain.Citation{}
	}

	return &domain.Answer{
		Answer:     ma.Answer,
		Steps:      steps,
		Citations:  citations,
		Followups:  followups,
		Confidence: confidence,
	}
}

// calibrate downgrades answers that ended up with no citations: confidence
// drops to low and the body is replaced by the no-context fallback unless it
// already is one.
func calibrate(a *domain.Answer) {
	if len(a.Citations) > 0 {
		return
	}
	a.Confidence = domain.ConfidenceLow
	if !strings.HasPrefix(a.Answer, noContextPrefix) {
		a.Answer = noContextAnswer
	}
}

// attachSafety joins the distinct redaction warnings behind a single 주의
// prefix, preserving first-seen order.
func attachSafety(a *domain.Answer, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	seen := make(map[string]struct{}, len(warnings))
	distinct := make([]string, 0, len(warnings))
	for _, w := range warnings {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		distinct = append(distinct, w)
	}
	a.Safety = "주의: " + strings.Join(distinct, " ")
}
