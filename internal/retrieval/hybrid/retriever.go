// Package hybrid fuses semantic vector search with BM25 lexical scoring over
// the corpus snapshot and reranks fused results by keyword overlap.
package hybrid

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jaehyuk-choi/banking-faq-rag/internal/core/domain"
	"github.com/jaehyuk-choi/banking-faq-rag/internal/core/ports"
	"github.com/jaehyuk-choi/banking-faq-rag/internal/retrieval/lexical"
)

const (
	DefaultVectorWeight = 0.7
	DefaultBM25Weight   = 0.3

	snippetMaxRunes = 200
)

// Config carries the fusion weights. Zero values fall back to the defaults.
type Config struct {
	VectorWeight float64
	BM25Weight   float64
}

// Retriever is immutable after construction; a reindex builds a new one.
type Retriever struct {
	embedder ports.Embedder
	index    ports.VectorIndex
	corpus   []domain.Passage
	lex      *lexical.Index

	vectorWeight float64
	bm25Weight   float64
}

// New builds a retriever over the given corpus snapshot. With an empty
// corpus the retriever runs in pure-semantic mode.
func New(embedder ports.Embedder, index ports.VectorIndex, corpus []domain.Passage, cfg Config) *Retriever {
	r := &Retriever{
		embedder:     embedder,
		index:        index,
		corpus:       corpus,
		vectorWeight: cfg.VectorWeight,
		bm25Weight:   cfg.BM25Weight,
	}
	if r.vectorWeight == 0 && r.bm25Weight == 0 {
		r.vectorWeight = DefaultVectorWeight
		r.bm25Weight = DefaultBM25Weight
	}
	if len(corpus) > 0 {
		texts := make([]string, len(corpus))
		for i, p := range corpus {
			texts[i] = p.Text
		}
		r.lex = lexical.New(texts)
	}
	return r
}

func (r *Retriever) Search(ctx context.Context, query string, topK int, filter domain.SearchFilter) ([]domain.ScoredResult, error) {
	if topK <= 0 {
		return nil, nil
	}

	queryVector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	// Over-fetch so fusion has candidates beyond the final cut.
	hits, err := r.index.Search(ctx, queryVector, topK*3, filter)
	if err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}

	if r.lex == nil {
		return r.semanticOnly(hits, topK), nil
	}
	return r.fuse(query, hits, topK, filter), nil
}

func (r *Retriever) semanticOnly(hits []domain.SemanticHit, topK int) []domain.ScoredResult {
	results := make([]domain.ScoredResult, 0, len(hits))
	for _, h := range hits {
		results = append(results, domain.ScoredResult{
			Passage: h.Passage,
			Score:   1.0 / (1.0 + h.Distance),
			Snippet: snippet(h.Passage.Text),
		})
	}
	sortByScore(results)
	return truncate(results, topK)
}

type fusedRecord struct {
	passage     domain.Passage
	vectorScore float64
	bm25Score   float64
}

func (r *Retriever) fuse(query string, hits []domain.SemanticHit, topK int, filter domain.SearchFilter) []domain.ScoredResult {
	records := make(map[string]*fusedRecord, len(hits))
	for _, h := range hits {
		if h.Passage.ChunkID == "" {
			continue
		}
		records[h.Passage.ChunkID] = &fusedRecord{
			passage:     h.Passage,
			vectorScore: 1.0 / (1.0 + h.Distance),
		}
	}

	lexScores := r.lex.ScoreAll(lexical.Tokenize(query))
	var maxLex float64
	for _, s := range lexScores {
		if s > maxLex {
			maxLex = s
		}
	}

	for i, p := range r.corpus {
		if p.ChunkID == "" {
			continue
		}
		var normalized float64
		if maxLex > 0 {
			normalized = lexScores[i] / maxLex
		}
		if rec, ok := records[p.ChunkID]; ok {
			rec.bm25Score = normalized
			continue
		}
		// Lexical-only candidates never went through the vector index, so
		// the metadata filter applies here.
		if !filter.Matches(p) {
			continue
		}
		records[p.ChunkID] = &fusedRecord{passage: p, bm25Score: normalized}
	}

	results := make([]domain.ScoredResult, 0, len(records))
	for _, rec := range records {
		results = append(results, domain.ScoredResult{
			Passage: rec.passage,
			Score:   r.vectorWeight*rec.vectorScore + r.bm25Weight*rec.bm25Score,
			Snippet: snippet(rec.passage.Text),
		})
	}
	sortByScore(results)
	return truncate(results, topK)
}

// Rerank boosts results whose title or text contains the query tokens:
// +2 per token found in the title, +1 per token found in the text. The sort
// is stable, so equal rerank scores keep their fused order.
func (r *Retriever) Rerank(results []domain.ScoredResult, query string, topK int) []domain.ScoredResult {
	tokens := uniqueTokens(query)

	reranked := make([]domain.ScoredResult, len(results))
	copy(reranked, results)
	sort.SliceStable(reranked, func(i, j int) bool {
		return overlapScore(reranked[i].Passage, tokens) > overlapScore(reranked[j].Passage, tokens)
	})
	return truncate(reranked, topK)
}

func uniqueTokens(query string) []string {
	seen := make(map[string]struct{})
	var tokens []string
	for _, tok := range lexical.Tokenize(query) {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		tokens = append(tokens, tok)
	}
	return tokens
}

func overlapScore(p domain.Passage, tokens []string) int {
	title := strings.ToLower(p.Title)
	text := strings.ToLower(p.Text)
	score := 0
	for _, tok := range tokens {
		if strings.Contains(title, tok) {
			score += 2
		}
		if strings.Contains(text, tok) {
			score++
		}
	}
	return score
}

func sortByScore(results []domain.ScoredResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Passage.ChunkID < results[j].Passage.ChunkID
	})
}

func truncate(results []domain.ScoredResult, topK int) []domain.ScoredResult {
	if len(results) > topK {
		return results[:topK]
	}
	return results
}

func snippet(text string) string {
	runes := []rune(text)
	if len(runes) <= snippetMaxRunes {
		return text
	}
	return string(runes[:snippetMaxRunes]) + "..."
}
