package usecase

import (
	"sort"

	"github.com/jaehyuk-choi/banking-faq-rag/internal/core/domain"
)

// resolveConflicts orders results newest-first by updated_at and keeps only
// the first chunk of each FAQ. Results with an unparseable date sort last;
// results without an faq_id are never deduplicated.
func resolveConflicts(docs []domain.ScoredResult) []domain.ScoredResult {
	ordered := make([]domain.ScoredResult, len(docs))
	copy(ordered, docs)
	sort.SliceStable(ordered, func(i, j int) bool {
		ti, oki := ordered[i].Passage.UpdatedTime()
		tj, okj := ordered[j].Passage.UpdatedTime()
		if oki != okj {
			return oki
		}
		if !oki {
			return false
		}
		return ti.After(tj)
	})

	seen := make(map[string]struct{}, len(ordered))
	unique := make([]domain.ScoredResult, 0, len(ordered))
	for _, doc := range ordered {
		faqID := doc.Passage.FAQID
		if faqID == "" {
			unique = append(unique, doc)
			continue
		}
		if _, dup := seen[faqID]; dup {
			continue
		}
		seen[faqID] = struct{}{}
		unique = append(unique, doc)
	}
	return unique
}
