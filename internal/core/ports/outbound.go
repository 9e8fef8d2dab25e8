package ports

import (
	"context"

	"github.com/jaehyuk-choi/banking-faq-rag/internal/core/domain"
)

// Embedder builds vectors for passages and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// VectorIndex stores passage vectors and performs semantic search.
// Search returns neighbors in ascending distance order with the filter
// applied server-side.
type VectorIndex interface {
	Upsert(ctx context.Context, passages []domain.Passage, vectors [][]float32) error
	Search(ctx context.Context, queryVector []float32, limit int, filter domain.SearchFilter) ([]domain.SemanticHit, error)
}

// Retriever runs hybrid retrieval over the current corpus snapshot.
type Retriever interface {
	Search(ctx context.Context, query string, topK int, filter domain.SearchFilter) ([]domain.ScoredResult, error)
	Rerank(results []domain.ScoredResult, query string, topK int) []domain.ScoredResult
}

// ModelClient is the generative model behind intent classification, query
// rewriting and answer generation. Every method may fail; the orchestrator
// degrades rather than propagating these failures.
type ModelClient interface {
	ClassifyIntent(ctx context.Context, question string) (string, error)
	RewriteQuery(ctx context.Context, question, intent string) (string, error)
	GenerateAnswer(ctx context.Context, question, userContext string, evidence []domain.ScoredResult) (domain.ModelAnswer, error)
}

// PassageRepository persists the corpus snapshot.
type PassageRepository interface {
	ReplaceAll(ctx context.Context, passages []domain.Passage) error
	ListAll(ctx context.Context) ([]domain.Passage, error)
}

// ReindexQueue fans reindex notifications out to every running API instance.
type ReindexQueue interface {
	PublishReindexRequested(ctx context.Context, snapshotID string) error
	SubscribeReindexRequested(ctx context.Context, handler func(context.Context, string) error) error
}

// Redactor masks sensitive values in free text before it reaches any
// downstream component.
type Redactor interface {
	Redact(text string) (string, []string)
}
