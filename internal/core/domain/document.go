package domain

import (
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusDuplicate  DocumentStatus = "duplicate"
	StatusFailed     DocumentStatus = "failed"
)

type Document struct {
	ID          string         `json:"id"`
	DocumentID  string         `json:"document_id,omitempty"`
	Filename    string         `json:"filename"`
	MimeType    string         `json:"mime_type"`
	StoragePath string         `json:"storage_path"`
	Hash        string         `json:"hash,omitempty"`
	Chunks      int            `json:"chunks,omitempty"`
	Status      DocumentStatus `json:"status"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Page is one page of raw text extracted from a source document.
type Page struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Number int    `json:"number"`
}

// Chunk is the atomic unit embedded and indexed.
type Chunk struct {
	DocumentID string `json:"document_id"`
	Text       string `json:"text"`
	Ordinal    int    `json:"ordinal"`
	Source     string `json:"source"`
}

type IngestResult struct {
	DocumentID string `json:"document_id"`
	Hash       string `json:"hash"`
	Chunks     int    `json:"chunks"`
	Duplicate  bool   `json:"duplicate"`
}

var diacriticsStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeDocumentID derives the stable index key for a source file:
// base name without extension, diacritics stripped, exotic runes folded
// to underscores. Differently accented spellings of the same name
// resolve to the same id.
func NormalizeDocumentID(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	stripped, _, err := transform.String(diacriticsStripper, base)
	if err == nil {
		base = stripped
	}

	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, base)

	base = strings.Trim(base, "_")
	if base == "" {
		return "document"
	}
	return base
}
