package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jaehyuk-choi/banking-faq-rag/internal/core/domain"
	"github.com/jaehyuk-choi/banking-faq-rag/internal/core/ports"
)

const (
	defaultTopK            = 10
	defaultRelaxMinResults = 3
	evidenceLimit          = 5

	generationFailedAnswer = "답변 생성 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요."
)

// PipelineObserver receives pipeline outcomes for metrics. Implementations
// must be safe for concurrent use.
type PipelineObserver interface {
	ObserveAsk(intent string, confidence domain.Confidence, retrieved int, duration time.Duration)
	RedactionWarnings(count int)
	RelaxedRetry()
	NoContextAnswer()
}

type nopObserver struct{}

func (nopObserver) ObserveAsk(string, domain.Confidence, int, time.Duration) {}
func (nopObserver) RedactionWarnings(int)                                    {}
func (nopObserver) RelaxedRetry()                                            {}
func (nopObserver) NoContextAnswer()                                         {}

// RetrieverSource returns the retriever built over the current corpus
// snapshot. Reindexing swaps the underlying retriever atomically, so the
// use case resolves it once per request.
type RetrieverSource interface {
	Retriever() ports.Retriever
}

// AskConfig tunes the pipeline. Zero values fall back to the defaults.
type AskConfig struct {
	TopK            int
	RelaxMinResults int
	Observer        PipelineObserver
}

// AskUseCase runs the staged question-answering pipeline: redact, classify
// intent, rewrite, retrieve, relax, resolve conflicts, generate, format,
// calibrate, attach safety.
type AskUseCase struct {
	redactor   ports.Redactor
	model      ports.ModelClient
	retrievers RetrieverSource
	logger     *slog.Logger
	observer   PipelineObserver

	topK     int
	relaxMin int
}

func NewAskUseCase(
	redactor ports.Redactor,
	model ports.ModelClient,
	retrievers RetrieverSource,
	logger *slog.Logger,
	cfg AskConfig,
) *AskUseCase {
	if cfg.TopK <= 0 {
		cfg.TopK = defaultTopK
	}
	if cfg.RelaxMinResults <= 0 {
		cfg.RelaxMinResults = defaultRelaxMinResults
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Observer == nil {
		cfg.Observer = nopObserver{}
	}
	return &AskUseCase{
		redactor:   redactor,
		model:      model,
		retrievers: retrievers,
		logger:     logger,
		observer:   cfg.Observer,
		topK:       cfg.TopK,
		relaxMin:   cfg.RelaxMinResults,
	}
}

func (uc *AskUseCase) Ask(ctx context.Context, req domain.AskRequest) (*domain.Answer, error) {
	start := time.Now()

	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ask", errors.New("empty question"))
	}

	cleanQuestion, warnings := uc.redactor.Redact(question)
	cleanContext := ""
	if req.UserContext != "" {
		var contextWarnings []string
		cleanContext, contextWarnings = uc.redactor.Redact(req.UserContext)
		warnings = append(warnings, contextWarnings...)
	}
	if len(warnings) > 0 {
		uc.observer.RedactionWarnings(len(warnings))
	}

	intent := uc.classifyIntent(ctx, cleanQuestion)
	query := uc.rewriteQuery(ctx, cleanQuestion, intent)

	filter := domain.SearchFilter{Channel: req.Channel}
	if intent != domain.IntentOther {
		filter.Category = intent
	}

	retriever := uc.retrievers.Retriever()

	docs, err := uc.retrieve(ctx, retriever, query, filter)
	if err != nil {
		return nil, err
	}

	if len(docs) < uc.relaxMin {
		uc.observer.RelaxedRetry()
		docs, err = uc.relaxAndRetry(ctx, retriever, query, req.Channel, docs)
		if err != nil {
			return nil, err
		}
	}

	docs = resolveConflicts(docs)

	evidence := docs
	if len(evidence) > evidenceLimit {
		evidence = evidence[:evidenceLimit]
	}

	modelAnswer := uc.generate(ctx, cleanQuestion, cleanContext, evidence)

	answer := formatAnswer(modelAnswer, docs)
	calibrate(answer)
	attachSafety(answer, warnings)

	if len(docs) == 0 {
		uc.observer.NoContextAnswer()
	}
	uc.observer.ObserveAsk(intent, answer.Confidence, len(docs), time.Since(start))
	return answer, nil
}

// classifyIntent is degradable: any failure or out-of-set label collapses to
// 기타, which drops the category filter downstream.
func (uc *AskUseCase) classifyIntent(ctx context.Context, question string) string {
	label, err := uc.model.ClassifyIntent(ctx, question)
	if err != nil {
		uc.logger.Warn("intent classification failed, defaulting", "error", err)
		return domain.IntentOther
	}
	if !domain.KnownIntent(label) {
		uc.logger.Warn("unrecognized intent label, defaulting", "label", label)
		return domain.IntentOther
	}
	return label
}

// rewriteQuery is degradable: any failure keeps the redacted question.
func (uc *AskUseCase) rewriteQuery(ctx context.Context, question, intent string) string {
	rewritten, err := uc.model.RewriteQuery(ctx, question, intent)
	if err != nil {
		uc.logger.Warn("query rewrite failed, using the original question", "error", err)
		return question
	}
	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" {
		return question
	}
	return rewritten
}

func (uc *AskUseCase) retrieve(ctx context.Context, retriever ports.Retriever, query string, filter domain.SearchFilter) ([]domain.ScoredResult, error) {
	results, err := retriever.Search(ctx, query, uc.topK, filter)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	if len(results) > uc.topK {
		results = retriever.Rerank(results, query, uc.topK)
	}
	return results, nil
}

// relaxAndRetry drops the category constraint and appends only candidates
// with chunk ids not already present, after the originals.
func (uc *AskUseCase) relaxAndRetry(
	ctx context.Context,
	retriever ports.Retriever,
	query string,
	channel domain.Channel,
	docs []domain.ScoredResult,
) ([]domain.ScoredResult, error) {
	relaxed, err := uc.retrieve(ctx, retriever, query, domain.SearchFilter{Channel: channel})
	if err != nil {
		return nil, err
	}

	existing := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		existing[doc.Passage.ChunkID] = struct{}{}
	}
	for _, doc := range relaxed {
		if _, ok := existing[doc.Passage.ChunkID]; ok {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// generate is degradable: a failing model yields a low-confidence error
// payload instead of propagating.
func (uc *AskUseCase) generate(ctx context.Context, question, userContext string, evidence []domain.ScoredResult) domain.ModelAnswer {
	answer, err := uc.model.GenerateAnswer(ctx, question, userContext, evidence)
	if err != nil {
		uc.logger.Error("answer generation failed", "error", err)
		return domain.ModelAnswer{
			Answer:     generationFailedAnswer,
			Confidence: domain.ConfidenceLow,
		}
	}
	return answer
}
