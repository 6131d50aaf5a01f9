// Package plaintext loads UTF-8 text files as single-page documents.
package plaintext

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/hoangvum/pdf-chat-assistant/internal/core/domain"
)

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) LoadPages(ctx context.Context, path string) ([]domain.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "load text file", err)
		}
		return nil, fmt.Errorf("read text file: %w", err)
	}

	if !utf8.Valid(raw) {
		return nil, domain.WrapError(domain.ErrInvalidInput, "load text file", fmt.Errorf("not valid utf-8: %s", path))
	}

	return []domain.Page{{Text: string(raw), Source: path, Number: 1}}, nil
}
