package ingestion

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jaehyuk-choi/banking-faq-rag/internal/core/domain"
)

// LoadFAQWorkbook reads FAQ entries from the first sheet of an xlsx export.
// The first row is a header; columns are matched by name (faq_id, title,
// body, category, url, updated_at, channel) so column order does not matter.
func LoadFAQWorkbook(path string) ([]FAQItem, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	columns := map[string]int{}
	for i, name := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := columns["faq_id"]; !ok {
		return nil, fmt.Errorf("workbook %s: header row has no faq_id column", path)
	}

	cell := func(row []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var items []FAQItem
	for n, row := range rows[1:] {
		item := FAQItem{
			FAQID:     cell(row, "faq_id"),
			Title:     cell(row, "title"),
			Body:      cell(row, "body"),
			Category:  cell(row, "category"),
			URL:       cell(row, "url"),
			UpdatedAt: cell(row, "updated_at"),
			Channel:   domain.Channel(cell(row, "channel")),
		}
		if item.FAQID == "" && item.Title == "" && item.Body == "" {
			continue
		}
		if item.FAQID == "" {
			return nil, fmt.Errorf("workbook %s row %d: missing faq_id", path, n+2)
		}
		if item.Channel == "" {
			item.Channel = domain.ChannelBoth
		}
		items = append(items, item)
	}
	return items, nil
}
