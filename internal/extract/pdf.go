package extract

import (
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF concatenates the text of every page in order, one line per text
// row. Pages that yield no text contribute nothing.
func (e *Extractor) extractPDF(path string) (Result, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	var b strings.Builder
	pages := r.NumPage()
	for i := 1; i <= pages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return Result{}, err
		}
		var pageText strings.Builder
		for _, row := range rows {
			for j, word := range row.Content {
				if j > 0 {
					pageText.WriteString(" ")
				}
				pageText.WriteString(word.S)
			}
			pageText.WriteString("\n")
		}
		if strings.TrimSpace(pageText.String()) == "" {
			continue
		}
		b.WriteString(pageText.String())
		b.WriteString("\n")
	}

	return Result{Text: b.String(), Pages: pages}, nil
}
