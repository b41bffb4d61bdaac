package analysis

import "slices"

const (
	// UnidentifiedName replaces a missing or empty candidate name.
	UnidentifiedName = "UNIDENTIFIED"

	highBandThreshold = 70
	midBandThreshold  = 40
)

// Band is a coarse bucket derived from the score. It is never transmitted by the service.
type Band string

const (
	BandHigh Band = "HIGH"
	BandMid  Band = "MID"
	BandLow  Band = "LOW"
)

// BandFor returns the match band for the score. Both thresholds are inclusive.
func BandFor(score int) Band {
	switch {
	case score >= highBandThreshold:
		return BandHigh
	case score >= midBandThreshold:
		return BandMid
	default:
		return BandLow
	}
}

// Label is the headline shown next to the score.
func (b Band) Label() string {
	switch b {
	case BandHigh:
		return "ELITE MATCH"
	case BandMid:
		return "QUALIFIED"
	default:
		return "OUTSIDE RANGE"
	}
}

// File is a resume selected by the user.
type File struct {
	Name     string
	MIMEType string
	Data     []byte
}

type CodingProfile struct {
	Platform string `json:"platform" yaml:"platform" mapstructure:"platform"`
	URL      string `json:"url" yaml:"url" mapstructure:"url"`
	Details  string `json:"details,omitempty" yaml:"details,omitempty" mapstructure:"details"`
}

// Result is the canonical match report. Use Normalize to build one from a service response.
type Result struct {
	Name            string          `json:"name" yaml:"name"`
	Email           string          `json:"email,omitempty" yaml:"email,omitempty"`
	ResumeSkills    []string        `json:"resume_skills" yaml:"resume_skills"`
	MissingSkills   []string        `json:"missing_skills" yaml:"missing_skills"`
	EducationLevels []string        `json:"education_level" yaml:"education_level"`
	Score           int             `json:"resume_score" yaml:"resume_score"`
	Projects        string          `json:"projects,omitempty" yaml:"projects,omitempty"`
	CodingProfiles  []CodingProfile `json:"coding_profiles" yaml:"coding_profiles"`
	Band            Band            `json:"match_band" yaml:"match_band"`
}

// Clone returns a deep copy so the receiver can be handed to another owner.
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}

	c := *r
	c.ResumeSkills = cloneStrings(r.ResumeSkills)
	c.MissingSkills = cloneStrings(r.MissingSkills)
	c.EducationLevels = cloneStrings(r.EducationLevels)
	c.CodingProfiles = slices.Clone(r.CodingProfiles)
	if c.CodingProfiles == nil {
		c.CodingProfiles = []CodingProfile{}
	}

	return &c
}

// Raw converts the result back into the shape of a service response.
func (r *Result) Raw() map[string]any {
	profiles := make([]any, 0, len(r.CodingProfiles))
	for _, p := range r.CodingProfiles {
		entry := map[string]any{
			"platform": p.Platform,
			"url":      p.URL,
		}
		if p.Details != "" {
			entry["details"] = p.Details
		}
		profiles = append(profiles, entry)
	}

	raw := map[string]any{
		"name":            r.Name,
		"resume_skills":   stringsToAny(r.ResumeSkills),
		"missing_skills":  stringsToAny(r.MissingSkills),
		"education_level": stringsToAny(r.EducationLevels),
		"resume_score":    float64(r.Score),
		"coding_profiles": profiles,
	}
	if r.Email != "" {
		raw["email"] = r.Email
	}
	if r.Projects != "" {
		raw["projects"] = r.Projects
	}

	return raw
}

func cloneStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}

func stringsToAny(s []string) []any {
	out := make([]any, 0, len(s))
	for _, v := range s {
		out = append(out, v)
	}
	return out
}
