// Package lexical provides the BM25 index built over the corpus snapshot.
// The index is immutable after construction and safe for concurrent readers.
package lexical

import (
	"math"
	"regexp"
	"strings"
)

const (
	k1      = 1.5
	b       = 0.75
	epsilon = 0.25
)

var wordRun = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Tokenize lower-cases the text and splits it into letter/digit/underscore
// runs. Hangul syllables count as letters.
func Tokenize(text string) []string {
	return wordRun.FindAllString(strings.ToLower(text), -1)
}

// Index scores queries against a fixed document list with BM25 Okapi.
type Index struct {
	termFreqs []map[string]int
	docLens   []float64
	avgLen    float64
	idf       map[string]float64
}

// New builds the index from the documents in corpus order. ScoreAll output
// stays aligned 1:1 with this order.
func New(docs []string) *Index {
	idx := &Index{
		termFreqs: make([]map[string]int, len(docs)),
		docLens:   make([]float64, len(docs)),
		idf:       make(map[string]float64),
	}

	docFreq := make(map[string]int)
	var totalLen float64
	for i, doc := range docs {
		tokens := Tokenize(doc)
		tf := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			tf[tok]++
		}
		idx.termFreqs[i] = tf
		idx.docLens[i] = float64(len(tokens))
		totalLen += idx.docLens[i]
		for term := range tf {
			docFreq[term]++
		}
	}
	if len(docs) > 0 {
		idx.avgLen = totalLen / float64(len(docs))
	}

	// Okapi idf can go negative for terms present in most documents; those
	// are floored to epsilon times the average idf so scores stay
	// non-negative.
	n := float64(len(docs))
	var idfSum float64
	var negative []string
	for term, df := range docFreq {
		idf := math.Log((n - float64(df) + 0.5) / (float64(df) + 0.5))
		idx.idf[term] = idf
		idfSum += idf
		if idf < 0 {
			negative = append(negative, term)
		}
	}
	if len(docFreq) > 0 {
		floor := epsilon * (idfSum / float64(len(docFreq)))
		for _, term := range negative {
			idx.idf[term] = floor
		}
	}

	return idx
}

// Len reports the number of indexed documents.
func (idx *Index) Len() int {
	return len(idx.termFreqs)
}

// ScoreAll returns one BM25 score per indexed document, aligned with corpus
// order. Unknown query tokens contribute nothing.
func (idx *Index) ScoreAll(queryTokens []string) []float64 {
	scores := make([]float64, len(idx.termFreqs))
	for _, tok := range queryTokens {
		idf, ok := idx.idf[tok]
		if !ok {
			continue
		}
		for i, tf := range idx.termFreqs {
			f := float64(tf[tok])
			if f == 0 {
				continue
			}
			norm := 1 - b + b*idx.docLens[i]/idx.avgLen
			scores[i] += idf * f * (k1 + 1) / (f + k1*norm)
		}
	}
	return scores
}
