package ports

import (
	"context"

	"github.com/jaehyuk-choi/banking-faq-rag/internal/core/domain"
)

// QuestionAnswerer is the inbound contract for the FAQ answering pipeline.
type QuestionAnswerer interface {
	Ask(ctx context.Context, req domain.AskRequest) (*domain.Answer, error)
}

// CorpusIndexer is the inbound contract for rebuilding the corpus snapshot
// and its indexes.
type CorpusIndexer interface {
	Reindex(ctx context.Context, passages []domain.Passage) error
}
