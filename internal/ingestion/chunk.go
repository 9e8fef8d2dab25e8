package ingestion

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jaehyuk-choi/banking-faq-rag/internal/core/domain"
)

// FAQItem is one raw FAQ entry as loaded from a source file, before
// cleaning and chunking.
type FAQItem struct {
	FAQID     string         `json:"faq_id"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	Category  string         `json:"category"`
	URL       string         `json:"url"`
	UpdatedAt string         `json:"updated_at"`
	Channel   domain.Channel `json:"channel"`
}

const (
	DefaultMaxChunkRunes = 900
	DefaultOverlapRunes  = 100
)

// Chunker cleans FAQ entries and splits long bodies into overlapping
// passages. Short entries become a single passage carrying title and body
// together.
type Chunker struct {
	MaxRunes int
	Overlap  int
}

func NewChunker(maxRunes, overlap int) *Chunker {
	if maxRunes <= 0 {
		maxRunes = DefaultMaxChunkRunes
	}
	if overlap < 0 || overlap >= maxRunes {
		overlap = DefaultOverlapRunes
	}
	return &Chunker{MaxRunes: maxRunes, Overlap: overlap}
}

// Chunk produces the passages for one FAQ entry. Chunk IDs are derived from
// the FAQ ID so re-ingesting the same corpus yields the same IDs.
func (c *Chunker) Chunk(item FAQItem) []domain.Passage {
	title := CleanText(item.Title)
	body := CleanText(item.Body)
	if title == "" && body == "" {
		return nil
	}

	channel := item.Channel
	if channel == "" {
		channel = domain.ChannelBoth
	}

	full := joinTitleBody(title, body)
	if utf8.RuneCountInString(full) <= c.MaxRunes {
		return []domain.Passage{c.passage(item, channel, 0, full)}
	}

	var passages []domain.Passage
	for i, window := range splitRunes(body, c.MaxRunes, c.Overlap) {
		passages = append(passages, c.passage(item, channel, i, joinTitleBody(title, window)))
	}
	return passages
}

// ChunkAll flattens a batch of FAQ entries into one corpus snapshot.
func (c *Chunker) ChunkAll(items []FAQItem) []domain.Passage {
	var passages []domain.Passage
	for _, item := range items {
		passages = append(passages, c.Chunk(item)...)
	}
	return passages
}

func (c *Chunker) passage(item FAQItem, channel domain.Channel, index int, text string) domain.Passage {
	return domain.Passage{
		ChunkID:   fmt.Sprintf("%s_chunk_%d", item.FAQID, index),
		FAQID:     item.FAQID,
		Title:     CleanText(item.Title),
		Text:      text,
		Category:  strings.TrimSpace(item.Category),
		URL:       strings.TrimSpace(item.URL),
		UpdatedAt: strings.TrimSpace(item.UpdatedAt),
		Channel:   channel,
	}
}

func joinTitleBody(title, body string) string {
	switch {
	case title == "":
		return body
	case body == "":
		return title
	default:
		return title + "\n\n" + body
	}
}

// splitRunes cuts text into rune windows of at most size runes, each window
// starting overlap runes before the end of the previous one.
func splitRunes(text string, size, overlap int) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= size {
		return []string{text}
	}

	step := size - overlap
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return chunks
}
