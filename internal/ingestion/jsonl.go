package ingestion

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jaehyuk-choi/banking-faq-rag/internal/core/domain"
)

// maxJSONLLineBytes bounds a single jsonl record; FAQ bodies are short but
// exported dumps occasionally embed long HTML.
const maxJSONLLineBytes = 1 << 20

// LoadFAQJSONL reads raw FAQ entries, one JSON object per line. Blank lines
// are skipped; entries without a faq_id are rejected.
func LoadFAQJSONL(r io.Reader) ([]FAQItem, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxJSONLLineBytes)

	var items []FAQItem
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		var item FAQItem
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			return nil, fmt.Errorf("parse faq jsonl line %d: %w", line, err)
		}
		if item.FAQID == "" {
			return nil, fmt.Errorf("faq jsonl line %d: missing faq_id", line)
		}
		if item.Channel == "" {
			item.Channel = domain.ChannelBoth
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read faq jsonl: %w", err)
	}
	return items, nil
}

// WriteChunksJSONL dumps a corpus snapshot, one passage per line, for
// offline inspection of the processed chunks.
func WriteChunksJSONL(w io.Writer, passages []domain.Passage) error {
	enc := json.NewEncoder(w)
	for _, p := range passages {
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("encode chunk %s: %w", p.ChunkID, err)
		}
	}
	return nil
}
