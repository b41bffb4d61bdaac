package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// ErrNoResponse is returned when there is no response payload at all.
var ErrNoResponse = errors.New("no response from the scoring service")

// Normalize maps an arbitrary decoded response into a canonical Result.
// Missing or malformed fields fall back to their defaults; only a nil payload is an error.
// Normalizing the Raw form of a canonical result yields the same result.
func Normalize(raw any) (*Result, error) {
	var fields map[string]any

	switch v := raw.(type) {
	case nil:
		return nil, ErrNoResponse
	case *Result:
		if v == nil {
			return nil, ErrNoResponse
		}
		fields = v.Raw()
	case Result:
		fields = v.Raw()
	case map[string]any:
		fields = v
	default:
		// Not an object: every field is absent.
		fields = map[string]any{}
	}

	score := roundHalfUp(numberValue(fields["resume_score"]))

	name := truthyString(fields["name"])
	if name == "" {
		name = UnidentifiedName
	}

	return &Result{
		Name:            name,
		Email:           truthyString(fields["email"]),
		ResumeSkills:    stringSlice(fields["resume_skills"]),
		MissingSkills:   stringSlice(fields["missing_skills"]),
		EducationLevels: stringSlice(fields["education_level"]),
		Score:           score,
		Projects:        truthyString(fields["projects"]),
		CodingProfiles:  codingProfiles(fields["coding_profiles"]),
		Band:            BandFor(score),
	}, nil
}

// numberValue returns 0 for absent, null or non-numeric values.
func numberValue(v any) float64 {
	var f float64

	switch typed := v.(type) {
	case float64:
		f = typed
	case float32:
		f = float64(typed)
	case int:
		f = float64(typed)
	case int64:
		f = float64(typed)
	case int32:
		f = float64(typed)
	case json.Number:
		parsed, err := typed.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}

	return f
}

// roundHalfUp rounds .5 towards positive infinity, so 69.5 becomes 70 and -0.5 becomes 0.
// Values outside the int range saturate instead of wrapping.
func roundHalfUp(f float64) int {
	r := math.Floor(f + 0.5)
	switch {
	case r >= float64(math.MaxInt):
		return math.MaxInt
	case r <= float64(math.MinInt):
		return math.MinInt
	}
	return int(r)
}

// truthyString renders v as text, treating null, false, zero and "" as absent.
func truthyString(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return typed
	case bool:
		if !typed {
			return ""
		}
		return "true"
	case float64:
		if typed == 0 || math.IsNaN(typed) {
			return ""
		}
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case int:
		if typed == 0 {
			return ""
		}
		return strconv.Itoa(typed)
	case fmt.Stringer:
		return typed.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// stringSlice returns an empty slice unless v is array shaped.
func stringSlice(v any) []string {
	switch typed := v.(type) {
	case []string:
		return cloneStrings(typed)
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			out = append(out, valueAsString(item))
		}
		return out
	default:
		return []string{}
	}
}

func valueAsString(v any) string {
	if v == nil {
		return "null"
	}

	switch typed := v.(type) {
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case fmt.Stringer:
		return typed.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func codingProfiles(v any) []CodingProfile {
	var items []any

	switch typed := v.(type) {
	case []any:
		items = typed
	case []map[string]any:
		items = make([]any, 0, len(typed))
		for _, item := range typed {
			items = append(items, item)
		}
	case []CodingProfile:
		return cloneProfiles(typed)
	default:
		return []CodingProfile{}
	}

	profiles := make([]CodingProfile, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}

		var profile CodingProfile
		cfg := &mapstructure.DecoderConfig{
			Result:           &profile,
			TagName:          "mapstructure",
			WeaklyTypedInput: true,
		}
		decoder, err := mapstructure.NewDecoder(cfg)
		if err != nil {
			continue
		}
		if err := decoder.Decode(entry); err != nil {
			continue
		}

		profiles = append(profiles, profile)
	}

	return profiles
}

func cloneProfiles(p []CodingProfile) []CodingProfile {
	out := make([]CodingProfile, len(p))
	copy(out, p)
	return out
}
