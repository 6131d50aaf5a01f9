// Package archive stores the full normalized text of each ingested
// document as one plain-text file per document id. Files are written
// once at ingestion time and never mutated; context expansion reads
// them back.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hoangvum/pdf-chat-assistant/internal/core/domain"
)

type Archive struct {
	root string
}

func New(root string) (*Archive, error) {
	if root == "" {
		root = "./data/original_text"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	return &Archive{root: root}, nil
}

// FileNameFor derives the archive file name from a chunk's recorded
// source path: directory and extension stripped, .txt appended.
func FileNameFor(sourcePath string) string {
	base := filepath.Base(sourcePath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return base + ".txt"
}

func (a *Archive) pathFor(documentID string) string {
	return filepath.Join(a.root, documentID+".txt")
}

func (a *Archive) Exists(documentID string) bool {
	_, err := os.Stat(a.pathFor(documentID))
	return err == nil
}

// Write persists the document text. An existing archive for the same id
// is left untouched.
func (a *Archive) Write(documentID, text string) error {
	path := a.pathFor(documentID)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write archive file: %w", err)
	}
	return nil
}

func (a *Archive) Read(documentID string) (string, error) {
	raw, err := os.ReadFile(a.pathFor(documentID))
	if err != nil {
		if os.IsNotExist(err) {
			return "", domain.WrapError(domain.ErrDocumentNotFound, "read archive", err)
		}
		return "", fmt.Errorf("read archive file: %w", err)
	}
	return string(raw), nil
}
