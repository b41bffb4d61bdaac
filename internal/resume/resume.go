// Package resume reads a resume from disk and detects its type from the content.
package resume

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spigell/resume-matcher/internal/analysis"

	"github.com/gabriel-vasile/mimetype"
)

// Load reads the file at path. The MIME type comes from the content, not the extension.
func Load(path string) (*analysis.File, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("resume path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading resume %q: %w", path, err)
	}

	return FromBytes(filepath.Base(path), data), nil
}

// FromBytes wraps already loaded content.
func FromBytes(name string, data []byte) *analysis.File {
	mtype := mimetype.Detect(data)

	return &analysis.File{
		Name:     name,
		MIMEType: baseType(mtype.String()),
		Data:     data,
	}
}

// baseType drops parameters such as charset.
func baseType(mime string) string {
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = mime[:idx]
	}
	return strings.TrimSpace(mime)
}
