package cmd

import (
	"testing"

	"github.com/spigell/resume-matcher/internal/scorer"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func TestNewSessionReadsFlags(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		auto   bool
		resume string
		skills string
	}{
		{name: "defaults", args: nil},
		{name: "long flags", args: []string{"--auto", "--resume", " cv.pdf ", "--skills", "Python, SQL"}, auto: true, resume: "cv.pdf", skills: "Python, SQL"},
		{name: "short flags", args: []string{"-y", "-r", "cv.pdf", "-s", "Go"}, auto: true, resume: "cv.pdf", skills: "Go"},
		{name: "explicit false", args: []string{"--auto=false"}, auto: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{Use: "analyze"}
			addAnalyzeFlags(cmd)
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatalf("parsing flags: %v", err)
			}

			s, err := newSession(cmd, &Config{}, scorer.New(zap.NewNop(), ""), zap.NewNop())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if s.auto != tt.auto || s.resumePath != tt.resume || s.skillsText != tt.skills {
				t.Fatalf("unexpected session: auto=%v resume=%q skills=%q", s.auto, s.resumePath, s.skillsText)
			}
		})
	}
}

func TestNewSessionWithoutFlags(t *testing.T) {
	if _, err := newSession(&cobra.Command{Use: "bare"}, &Config{}, nil, zap.NewNop()); err == nil {
		t.Fatalf("expected error when flags are not registered")
	}
}
