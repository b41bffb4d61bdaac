// Package gate decides whether a resume and a skill list may be submitted.
package gate

import (
	"errors"

	"github.com/spigell/resume-matcher/internal/analysis"
	"github.com/spigell/resume-matcher/internal/skills"
)

// PDFMimeType is the only accepted resume type.
const PDFMimeType = "application/pdf"

var (
	ErrNoFile   = errors.New("resume file is required")
	ErrNotPDF   = errors.New("please upload a PDF file")
	ErrNoSkills = errors.New("at least one target skill is required")
)

// Request is a validated submission. The only way to get one is NewRequest.
type Request struct {
	file   *analysis.File
	skills []string
}

// NewRequest validates the inputs and builds a request from them.
func NewRequest(file *analysis.File, rawSkills string) (*Request, error) {
	if err := CheckFile(file); err != nil {
		return nil, err
	}

	targets, err := CheckSkills(rawSkills)
	if err != nil {
		return nil, err
	}

	return &Request{file: file, skills: targets}, nil
}

func (r *Request) File() *analysis.File { return r.file }

// Skills returns a copy of the target skills.
func (r *Request) Skills() []string {
	out := make([]string, len(r.skills))
	copy(out, r.skills)
	return out
}

// CheckFile reports why the file cannot be submitted, if it cannot.
func CheckFile(file *analysis.File) error {
	if file == nil {
		return ErrNoFile
	}
	if file.MIMEType != PDFMimeType {
		return ErrNotPDF
	}
	return nil
}

// CheckSkills parses raw and fails when nothing is left.
func CheckSkills(raw string) ([]string, error) {
	targets := skills.Parse(raw)
	if len(targets) == 0 {
		return nil, ErrNoSkills
	}
	return targets, nil
}

// CanSubmit is the side-effect free form of NewRequest.
func CanSubmit(file *analysis.File, rawSkills string) bool {
	_, err := NewRequest(file, rawSkills)
	return err == nil
}
