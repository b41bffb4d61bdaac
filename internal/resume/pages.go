package resume

import (
	"bytes"
	"fmt"

	"github.com/spigell/resume-matcher/internal/analysis"

	"github.com/ledongthuc/pdf"
)

// PageCount reads the page tree of a PDF resume. It is informational only:
// a file the parser cannot read may still be accepted by the scoring service.
func PageCount(file *analysis.File) (pages int, err error) {
	if file == nil || len(file.Data) == 0 {
		return 0, fmt.Errorf("resume is empty")
	}

	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			pages, err = 0, fmt.Errorf("reading pdf structure: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(file.Data), int64(len(file.Data)))
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}

	return r.NumPage(), nil
}
