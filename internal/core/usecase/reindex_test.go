package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/jaehyuk-choi/banking-faq-rag/internal/core/domain"
)

type fakePassageRepo struct {
	replaced []domain.Passage
	err      error
}

func (f *fakePassageRepo) ReplaceAll(_ context.Context, passages []domain.Passage) error {
	f.replaced = passages
	return f.err
}

func (f *fakePassageRepo) ListAll(context.Context) ([]domain.Passage, error) {
	return f.replaced, nil
}

type fakeEmbedder struct {
	dim   int
	err   error
	calls int
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, f.dim)
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	return make([]float32, f.dim), f.err
}

func (f *fakeEmbedder) Dimension() int { return f.dim }

type fakeVectorIndex struct {
	upserted int
	err      error
}

func (f *fakeVectorIndex) Upsert(_ context.Context, passages []domain.Passage, vectors [][]float32) error {
	if len(passages) != len(vectors) {
		return errors.New("length mismatch")
	}
	f.upserted += len(passages)
	return f.err
}

func (f *fakeVectorIndex) Search(context.Context, []float32, int, domain.SearchFilter) ([]domain.SemanticHit, error) {
	return nil, nil
}

type fakeQueue struct {
	published []string
	err       error
}

func (f *fakeQueue) PublishReindexRequested(_ context.Context, snapshotID string) error {
	f.published = append(f.published, snapshotID)
	return f.err
}

func (f *fakeQueue) SubscribeReindexRequested(context.Context, func(context.Context, string) error) error {
	return nil
}

func corpus(n int) []domain.Passage {
	passages := make([]domain.Passage, n)
	for i := range passages {
		passages[i] = domain.Passage{
			ChunkID: string(rune('a' + i)),
			Text:    "본문",
			Channel: domain.ChannelBoth,
		}
	}
	return passages
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestReindexPersistsEmbedsAndPublishes(t *testing.T) {
	repo := &fakePassageRepo{}
	embedder := &fakeEmbedder{dim: 4}
	vectors := &fakeVectorIndex{}
	queue := &fakeQueue{}
	uc := NewReindexUseCase(repo, embedder, vectors, queue, discardLogger(), 2)

	if err := uc.Reindex(context.Background(), corpus(5)); err != nil {
		t.Fatalf("Reindex: %v", err)
	}

	if len(repo.replaced) != 5 {
		t.Errorf("snapshot = %d passages, want 5", len(repo.replaced))
	}
	if vectors.upserted != 5 {
		t.Errorf("upserted = %d vectors, want 5", vectors.upserted)
	}
	if embedder.calls != 3 {
		t.Errorf("embed batches = %d, want 3 for batch size 2", embedder.calls)
	}
	if len(queue.published) != 1 || queue.published[0] == "" {
		t.Errorf("expected one published snapshot id, got %v", queue.published)
	}
}

func TestReindexRejectsEmptyCorpus(t *testing.T) {
	uc := NewReindexUseCase(&fakePassageRepo{}, &fakeEmbedder{dim: 4}, &fakeVectorIndex{}, &fakeQueue{}, discardLogger(), 0)

	err := uc.Reindex(context.Background(), nil)
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestReindexEmbedFailureStopsBeforePublish(t *testing.T) {
	queue := &fakeQueue{}
	uc := NewReindexUseCase(&fakePassageRepo{}, &fakeEmbedder{err: errors.New("quota")}, &fakeVectorIndex{}, queue, discardLogger(), 0)

	if err := uc.Reindex(context.Background(), corpus(3)); err == nil {
		t.Fatal("expected embed failure to propagate")
	}
	if len(queue.published) != 0 {
		t.Errorf("reindex event published despite failure: %v", queue.published)
	}
}

func TestReindexRepositoryFailure(t *testing.T) {
	repo := &fakePassageRepo{err: errors.New("db down")}
	vectors := &fakeVectorIndex{}
	uc := NewReindexUseCase(repo, &fakeEmbedder{dim: 4}, vectors, &fakeQueue{}, discardLogger(), 0)

	if err := uc.Reindex(context.Background(), corpus(2)); err == nil {
		t.Fatal("expected repository failure to propagate")
	}
	if vectors.upserted != 0 {
		t.Errorf("vectors upserted despite snapshot failure")
	}
}
