// Package fingerprint computes content hashes for uploaded documents and
// keeps the registry that maps known hashes to their source files.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/hoangvum/pdf-chat-assistant/internal/core/domain"
)

const hashBlockSize = 4096

type Fingerprinter struct{}

func New() *Fingerprinter { return &Fingerprinter{} }

// Hash reads the file in fixed-size blocks and returns the hex SHA-256
// digest of its byte stream. The result depends on content only, never
// on the file name.
func (f *Fingerprinter) Hash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", domain.WrapError(domain.ErrDocumentNotFound, "hash file", err)
		}
		return "", fmt.Errorf("open file for hashing: %w", err)
	}
	defer file.Close()

	hasher := sha256.New()
	buf := make([]byte, hashBlockSize)
	for {
		n, readErr := file.Read(buf)
		if n > 0 {
			hasher.Write(buf[:n])
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return "", fmt.Errorf("read file for hashing: %w", readErr)
		}
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
