package gemini

import (
	"encoding/json"
	"strings"

	"github.com/jaehyuk-choi/banking-faq-rag/internal/core/domain"
)

// stringOrLines accepts either a JSON string array or a single
// newline-delimited string, which some model replies use for steps and
// followups.
type stringOrLines []string

func (s *stringOrLines) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	var lines []string
	for _, line := range strings.Split(single, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	*s = lines
	return nil
}

type answerPayload struct {
	Answer     string            `json:"answer"`
	Steps      stringOrLines     `json:"steps"`
	Citations  []domain.Citation `json:"citations"`
	Confidence string            `json:"confidence"`
	Followups  stringOrLines     `json:"followups"`
}

// parseModelAnswer decodes the model reply, tolerating markdown code fences.
// Undecodable replies fall back to the raw text with medium confidence and
// Parsed unset.
func parseModelAnswer(raw string) domain.ModelAnswer {
	var payload answerPayload
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &payload); err != nil {
		return domain.ModelAnswer{
			Answer:     raw,
			Confidence: domain.ConfidenceMedium,
		}
	}
	return domain.ModelAnswer{
		Answer:     payload.Answer,
		Steps:      payload.Steps,
		Citations:  payload.Citations,
		Followups:  payload.Followups,
		Confidence: normalizeConfidence(payload.Confidence),
		Parsed:     true,
	}
}

func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```json") {
		s = s[len("```json"):]
	}
	if strings.HasPrefix(s, "```") {
		s = s[3:]
	}
	if strings.HasSuffix(s, "```") {
		s = s[:len(s)-3]
	}
	return strings.TrimSpace(s)
}

func normalizeConfidence(raw string) domain.Confidence {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "high":
		return domain.ConfidenceHigh
	case "low":
		return domain.ConfidenceLow
	default:
		return domain.ConfidenceMedium
	}
}
