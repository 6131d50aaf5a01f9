// Package pdf extracts ordered pages of raw text from PDF files.
package pdf

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/hoangvum/pdf-chat-assistant/internal/core/domain"
)

type Extractor struct{}

func NewExtractor() *Extractor { return &Extractor{} }

// LoadPages returns one entry per PDF page, in page order, each tagged
// with the source path. Pages that yield no text are kept so page
// numbering stays aligned with the source.
func (e *Extractor) LoadPages(ctx context.Context, path string) ([]domain.Page, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "open pdf", err)
		}
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer file.Close()

	total := reader.NumPage()
	pages := make([]domain.Page, 0, total)
	for num := 1; num <= total; num++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(num)
		if page.V.IsNull() {
			pages = append(pages, domain.Page{Source: path, Number: num})
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract page %d: %w", num, err)
		}
		pages = append(pages, domain.Page{
			Text:   strings.TrimRight(text, "\n"),
			Source: path,
			Number: num,
		})
	}
	return pages, nil
}
