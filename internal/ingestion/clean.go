// Package ingestion turns raw FAQ sources (jsonl dumps, xlsx workbooks, pdf
// attachments) into the corpus snapshot of passages.
package ingestion

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	// Hangul, word characters, whitespace and basic punctuation survive;
	// everything else is noise from the source CMS.
	disallowedChars = regexp.MustCompile(`[^\w\s가-힣.,!?;:()\[\]{}"'-]`)
)

// StripHTML drops tags and returns the visible text. Script and style
// bodies are excluded. Input that is not parseable HTML comes back as-is.
func StripHTML(raw string) string {
	if raw == "" {
		return ""
	}
	root, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return raw
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)
	return b.String()
}

// NormalizeWhitespace collapses whitespace runs to single spaces and trims.
func NormalizeWhitespace(text string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}

// CleanText is the full cleaning pass applied to FAQ titles and bodies.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	text = StripHTML(text)
	text = NormalizeWhitespace(text)
	text = disallowedChars.ReplaceAllString(text, "")
	return NormalizeWhitespace(text)
}
