package usecase

import (
	"testing"

	"github.com/jaehyuk-choi/banking-faq-rag/internal/core/domain"
)

func TestResolveConflictsNewestFirst(t *testing.T) {
	docs := []domain.ScoredResult{
		doc("a", "faq-a", "2023-05-01"),
		doc("b", "faq-b", "2024-02-01"),
		doc("c", "faq-c", "2023-12-31"),
	}

	got := resolveConflicts(docs)
	wantOrder := []string{"b", "c", "a"}
	for i, want := range wantOrder {
		if got[i].Passage.ChunkID != want {
			t.Errorf("position %d = %s, want %s", i, got[i].Passage.ChunkID, want)
		}
	}
}

func TestResolveConflictsKeepsNewestChunkPerFAQ(t *testing.T) {
	docs := []domain.ScoredResult{
		doc("old", "faq-1", "2023-01-01"),
		doc("new", "faq-1", "2024-01-01"),
		doc("other", "faq-2", "2023-06-01"),
	}

	got := resolveConflicts(docs)
	if len(got) != 2 {
		t.Fatalf("got %d results, want 2", len(got))
	}
	if got[0].Passage.ChunkID != "new" {
		t.Errorf("kept chunk = %s, want the newest", got[0].Passage.ChunkID)
	}
}

func TestResolveConflictsUnparseableDatesSortLast(t *testing.T) {
	docs := []domain.ScoredResult{
		doc("nodate", "faq-1", ""),
		doc("bad", "faq-2", "작년"),
		doc("dated", "faq-3", "2020-01-01"),
	}

	got := resolveConflicts(docs)
	if got[0].Passage.ChunkID != "dated" {
		t.Fatalf("dated result should sort first, got %s", got[0].Passage.ChunkID)
	}
	// Equal (unparseable) keys keep their incoming order.
	if got[1].Passage.ChunkID != "nodate" || got[2].Passage.ChunkID != "bad" {
		t.Errorf("unparseable order changed: %s, %s", got[1].Passage.ChunkID, got[2].Passage.ChunkID)
	}
}

func TestResolveConflictsEmptyFAQIDNeverDeduplicated(t *testing.T) {
	docs := []domain.ScoredResult{
		doc("a", "", "2024-01-01"),
		doc("b", "", "2024-01-01"),
		doc("c", "faq-1", "2024-01-01"),
		doc("d", "faq-1", "2024-01-01"),
	}

	got := resolveConflicts(docs)
	if len(got) != 3 {
		t.Fatalf("got %d results, want 3 (both anonymous chunks kept)", len(got))
	}
}
