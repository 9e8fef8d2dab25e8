package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jaehyuk-choi/banking-faq-rag/internal/core/domain"
	"github.com/jaehyuk-choi/banking-faq-rag/internal/core/ports"
)

const defaultEmbedBatchSize = 64

// ReindexUseCase rebuilds the corpus snapshot: persist passages, embed them
// in batches, upsert the vectors, then notify running API instances.
type ReindexUseCase struct {
	repo     ports.PassageRepository
	embedder ports.Embedder
	vectors  ports.VectorIndex
	queue    ports.ReindexQueue
	logger   *slog.Logger

	batchSize int
}

func NewReindexUseCase(
	repo ports.PassageRepository,
	embedder ports.Embedder,
	vectors ports.VectorIndex,
	queue ports.ReindexQueue,
	logger *slog.Logger,
	batchSize int,
) *ReindexUseCase {
	if batchSize <= 0 {
		batchSize = defaultEmbedBatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReindexUseCase{
		repo:      repo,
		embedder:  embedder,
		vectors:   vectors,
		queue:     queue,
		logger:    logger,
		batchSize: batchSize,
	}
}

func (uc *ReindexUseCase) Reindex(ctx context.Context, passages []domain.Passage) error {
	if len(passages) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "reindex", errors.New("empty corpus"))
	}

	if err := uc.repo.ReplaceAll(ctx, passages); err != nil {
		return fmt.Errorf("replace corpus snapshot: %w", err)
	}

	if err := uc.indexVectors(ctx, passages); err != nil {
		return err
	}

	snapshotID := uuid.NewString()
	if err := uc.queue.PublishReindexRequested(ctx, snapshotID); err != nil {
		return fmt.Errorf("publish reindex event: %w", err)
	}

	uc.logger.Info("corpus reindexed",
		"passages", len(passages),
		"snapshot_id", snapshotID,
	)
	return nil
}

func (uc *ReindexUseCase) indexVectors(ctx context.Context, passages []domain.Passage) error {
	for start := 0; start < len(passages); start += uc.batchSize {
		end := start + uc.batchSize
		if end > len(passages) {
			end = len(passages)
		}
		batch := passages[start:end]

		texts := make([]string, len(batch))
		for i, p := range batch {
			texts[i] = p.Text
		}
		vectors, err := uc.embedder.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed batch at %d: %w", start, err)
		}
		if len(vectors) != len(batch) {
			return domain.WrapError(
				domain.ErrInvalidInput,
				"embed batch",
				fmt.Errorf("vectors/passages mismatch: %d/%d", len(vectors), len(batch)),
			)
		}
		if err := uc.vectors.Upsert(ctx, batch, vectors); err != nil {
			return fmt.Errorf("upsert vectors at %d: %w", start, err)
		}
	}
	return nil
}
