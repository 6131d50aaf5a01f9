package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hoangvum/pdf-chat-assistant/internal/core/domain"
)

func TestWriteThenReadRoundTrip(t *testing.T) {
	arc, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	text := "Báo cáo tài chính quý 3.\nDoanh thu tăng 12%."
	if err := arc.Write("bao_cao", text); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := arc.Read("bao_cao")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != text {
		t.Fatalf("Read returned %q, want %q", got, text)
	}
	if !arc.Exists("bao_cao") {
		t.Fatal("Exists = false after Write")
	}
}

func TestWriteIsWriteOnce(t *testing.T) {
	root := t.TempDir()
	arc, err := New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := arc.Write("doc", "first version"); err != nil {
		t.Fatalf("first Write: %v", err)
	}
	if err := arc.Write("doc", "second version"); err != nil {
		t.Fatalf("second Write: %v", err)
	}

	got, err := arc.Read("doc")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != "first version" {
		t.Fatalf("archive overwritten: got %q", got)
	}
}

func TestReadMissingDocumentIsNotFound(t *testing.T) {
	arc, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = arc.Read("nope")
	if !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("Read missing id: got %v, want document-not-found kind", err)
	}
	if arc.Exists("nope") {
		t.Fatal("Exists = true for missing id")
	}
}

func TestNewCreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "original_text")
	if _, err := New(root); err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := os.Stat(root); err != nil {
		t.Fatalf("root not created: %v", err)
	}
}

func TestFileNameFor(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"báo cáo.pdf", "báo cáo.txt"},
		{"/staging/uuid_report.pdf", "uuid_report.txt"},
		{"notes.txt", "notes.txt"},
		{"plain", "plain.txt"},
	}
	for _, tc := range cases {
		if got := FileNameFor(tc.in); got != tc.want {
			t.Errorf("FileNameFor(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
