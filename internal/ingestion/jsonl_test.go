package ingestion

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jaehyuk-choi/banking-faq-rag/internal/core/domain"
)

func TestLoadFAQJSONL(t *testing.T) {
	src := strings.Join([]string{
		`{"faq_id":"faq1","title":"로그인 오류","body":"본문","category":"로그인","channel":"web"}`,
		``,
		`{"faq_id":"faq2","title":"이체 한도","body":"본문","url":"https://bank.example/faq/2"}`,
	}, "\n")

	items, err := LoadFAQJSONL(strings.NewReader(src))
	if err != nil {
		t.Fatalf("LoadFAQJSONL: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Channel != domain.ChannelWeb {
		t.Errorf("first channel = %q", items[0].Channel)
	}
	if items[1].Channel != domain.ChannelBoth {
		t.Errorf("missing channel should default to both, got %q", items[1].Channel)
	}
}

func TestLoadFAQJSONLRejectsMissingID(t *testing.T) {
	_, err := LoadFAQJSONL(strings.NewReader(`{"title":"제목 없음"}`))
	if err == nil || !strings.Contains(err.Error(), "faq_id") {
		t.Fatalf("err = %v, want missing faq_id error", err)
	}
}

func TestLoadFAQJSONLRejectsBadJSON(t *testing.T) {
	_, err := LoadFAQJSONL(strings.NewReader("{broken"))
	if err == nil || !strings.Contains(err.Error(), "line 1") {
		t.Fatalf("err = %v, want parse error naming line 1", err)
	}
}

func TestWriteChunksJSONLRoundTrips(t *testing.T) {
	passages := []domain.Passage{
		{ChunkID: "faq1_chunk_0", FAQID: "faq1", Title: "제목", Text: "본문", Channel: domain.ChannelBoth},
	}
	var buf bytes.Buffer
	if err := WriteChunksJSONL(&buf, passages); err != nil {
		t.Fatalf("WriteChunksJSONL: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"chunk_id":"faq1_chunk_0"`) {
		t.Errorf("output missing chunk id: %s", out)
	}
	if strings.Count(out, "\n") != 1 {
		t.Errorf("want one line per passage, got %q", out)
	}
}
