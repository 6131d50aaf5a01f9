// Package extractor routes source files to a format-specific page
// loader by file extension.
package extractor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hoangvum/pdf-chat-assistant/internal/core/domain"
	"github.com/hoangvum/pdf-chat-assistant/internal/core/ports"
	"github.com/hoangvum/pdf-chat-assistant/internal/infrastructure/extractor/pdf"
	"github.com/hoangvum/pdf-chat-assistant/internal/infrastructure/extractor/plaintext"
)

type Mux struct {
	byExt map[string]ports.PageLoader
}

// NewMux wires the default loaders: PDF plus plain text and markdown.
func NewMux() *Mux {
	return &Mux{byExt: map[string]ports.PageLoader{
		".pdf": pdf.NewExtractor(),
		".txt": plaintext.NewExtractor(),
		".md":  plaintext.NewExtractor(),
	}}
}

func (m *Mux) Supports(path string) bool {
	_, ok := m.byExt[strings.ToLower(filepath.Ext(path))]
	return ok
}

func (m *Mux) LoadPages(ctx context.Context, path string) ([]domain.Page, error) {
	loader, ok := m.byExt[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, domain.WrapError(domain.ErrInvalidInput, "load pages",
			fmt.Errorf("unsupported file type %q", filepath.Ext(path)))
	}
	return loader.LoadPages(ctx, path)
}
