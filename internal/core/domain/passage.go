package domain

import "time"

// Channel identifies which banking surface an FAQ entry applies to.
type Channel string

const (
	ChannelWeb    Channel = "web"
	ChannelMobile Channel = "mobile"
	ChannelBoth   Channel = "both"
)

// Passage is one immutable FAQ chunk from the corpus snapshot.
// UpdatedAt is kept as the source "YYYY-MM-DD" string; entries with an
// unparseable date sort last during conflict resolution.
type Passage struct {
	ChunkID   string  `json:"chunk_id"`
	FAQID     string  `json:"faq_id"`
	Title     string  `json:"title"`
	Text      string  `json:"text"`
	Category  string  `json:"category"`
	URL       string  `json:"url"`
	UpdatedAt string  `json:"updated_at"`
	Channel   Channel `json:"channel"`
}

// UpdatedTime parses UpdatedAt; ok is false for missing or malformed dates.
func (p Passage) UpdatedTime() (time.Time, bool) {
	t, err := time.Parse("2006-01-02", p.UpdatedAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// SearchFilter narrows retrieval by category and/or channel. Empty fields
// match everything; channel "both" on a passage always passes.
type SearchFilter struct {
	Category string
	Channel  Channel
}

// Matches reports whether the passage satisfies the filter.
func (f SearchFilter) Matches(p Passage) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Channel != "" && p.Channel != f.Channel && p.Channel != ChannelBoth {
		return false
	}
	return true
}

// ScoredResult is a retrieved passage with its fused relevance score.
type ScoredResult struct {
	Passage Passage
	Score   float64
	Snippet string
}

// SemanticHit is a raw vector-index neighbor; Distance ascends with
// dissimilarity.
type SemanticHit struct {
	Passage  Passage
	Distance float64
}

// AskRequest is the inbound question contract.
type AskRequest struct {
	Question    string  `json:"question"`
	Channel     Channel `json:"channel,omitempty"`
	UserContext string  `json:"user_context,omitempty"`
}
