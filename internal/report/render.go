package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/spigell/resume-matcher/internal/analysis"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

const (
	FormatHuman = "human"
	FormatJSON  = "json"
	FormatYAML  = "yaml"

	ruleWidth      = 80
	missingMessage = "No analysis data found. Redirecting to the analyzer..."
)

// Render writes what the view currently shows.
func (v *View) Render(w io.Writer, format string) error {
	v.mu.Lock()
	state := v.state
	result := v.result
	v.mu.Unlock()

	if state != Showing || result == nil {
		_, err := fmt.Fprintln(w, color.YellowString(missingMessage))
		return err
	}

	return Render(w, result, format)
}

// Render formats the result as human readable text, JSON or YAML.
func Render(w io.Writer, result *analysis.Result, format string) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, result)
	case FormatYAML:
		return renderYAML(w, result)
	case FormatHuman, "":
		return renderHuman(w, result)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

func renderJSON(w io.Writer, result *analysis.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func renderYAML(w io.Writer, result *analysis.Result) error {
	output, err := yaml.Marshal(result)
	if err != nil {
		return err
	}
	_, err = w.Write(output)
	return err
}

func renderHuman(w io.Writer, result *analysis.Result) error {
	cyan := color.New(color.FgCyan, color.Bold)
	white := color.New(color.FgWhite, color.Bold)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	var b strings.Builder

	fmt.Fprintln(&b)
	bandColor(result.Band).Fprintf(&b, "MATCH SCORE: %d%%  %s\n", result.Score, result.Band.Label())
	fmt.Fprintln(&b, strings.Repeat("─", ruleWidth))

	white.Fprintln(&b, "CANDIDATE")
	fmt.Fprintf(&b, "   Name:  %s\n", result.Name)
	if result.Email != "" {
		fmt.Fprintf(&b, "   Email: %s\n", result.Email)
	}
	fmt.Fprintln(&b)

	white.Fprintln(&b, "EDUCATION")
	if len(result.EducationLevels) == 0 {
		fmt.Fprintf(&b, "   %s\n", color.HiBlackString("none detected"))
	}
	for _, level := range result.EducationLevels {
		fmt.Fprintf(&b, "   • %s\n", level)
	}
	fmt.Fprintln(&b)

	cyan.Fprintf(&b, "MATCHED SKILLS (%d)\n", len(result.ResumeSkills))
	writeList(&b, result.ResumeSkills, green)

	cyan.Fprintf(&b, "MISSING SKILLS (%d)\n", len(result.MissingSkills))
	writeList(&b, result.MissingSkills, red)

	if result.Projects != "" {
		white.Fprintln(&b, "PROJECTS")
		fmt.Fprintln(&b, wrapText(result.Projects, ruleWidth, "   "))
		fmt.Fprintln(&b)
	}

	if len(result.CodingProfiles) > 0 {
		white.Fprintln(&b, "CODING PROFILES")
		for _, p := range result.CodingProfiles {
			fmt.Fprintf(&b, "   %s: %s\n", p.Platform, color.CyanString(p.URL))
			if p.Details != "" {
				fmt.Fprintf(&b, "      %s\n", p.Details)
			}
		}
		fmt.Fprintln(&b)
	}

	fmt.Fprintln(&b, strings.Repeat("─", ruleWidth))

	_, err := io.WriteString(w, b.String())
	return err
}

func writeList(b *strings.Builder, items []string, c *color.Color) {
	if len(items) == 0 {
		fmt.Fprintf(b, "   %s\n\n", color.HiBlackString("none"))
		return
	}
	for _, item := range items {
		fmt.Fprintf(b, "   %s\n", c.Sprint(item))
	}
	fmt.Fprintln(b)
}

func bandColor(band analysis.Band) *color.Color {
	switch band {
	case analysis.BandHigh:
		return color.New(color.FgGreen, color.Bold)
	case analysis.BandMid:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

// wrapText breaks text on word boundaries so no line is wider than width runes,
// counting the indent. Blank lines in text are kept; a single word longer than
// the width gets a line of its own.
func wrapText(text string, width int, indent string) string {
	var lines []string
	indentWidth := utf8.RuneCountInString(indent)

	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		line := indent + words[0]
		lineWidth := indentWidth + utf8.RuneCountInString(words[0])
		for _, word := range words[1:] {
			wordWidth := utf8.RuneCountInString(word)
			if lineWidth+1+wordWidth > width {
				lines = append(lines, line)
				line, lineWidth = indent+word, indentWidth+wordWidth
				continue
			}
			line += " " + word
			lineWidth += 1 + wordWidth
		}
		lines = append(lines, line)
	}

	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}
