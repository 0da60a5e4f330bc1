// Package analysis holds the tolerant shape of a model's posting analysis and
// maps it onto the canonical types.AnalyzedRecord.
package analysis

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jonathan/job-hunter/internal/types"
)

// SkillsGap is the tolerant form of types.SkillsGap
type SkillsGap struct {
	Matching []string `json:"matching,omitempty"`
	Missing  []string `json:"missing,omitempty"`
}

// Analysis is what a model returns for one posting. Every field is optional;
// defaults are applied by Normalize. Fields that carry a value of an
// unexpected type are treated as absent rather than failing the whole object.
type Analysis struct {
	Title            *string            `json:"title,omitempty"`
	Company          *types.CompanyInfo `json:"company,omitempty"`
	CompanyName      *string            `json:"company_name,omitempty"`
	Description      *string            `json:"description,omitempty"`
	SalaryNormalized *float64           `json:"salary_normalized,omitempty"`
	RedFlags         []string           `json:"red_flags,omitempty"`
	SkillsAnalysis   *SkillsGap         `json:"skills_analysis,omitempty"`
	Requirements     []string           `json:"requirements,omitempty"`
	Responsibilities []string           `json:"responsibilities,omitempty"`
	Skills           []string           `json:"skills,omitempty"`
	Location         *string            `json:"location,omitempty"`
	IsRemote         *bool              `json:"is_remote,omitempty"`
	JobType          *string            `json:"job_type,omitempty"`
	ExperienceLevel  *string            `json:"experience_level,omitempty"`
	MatchScore       *float64           `json:"match_score,omitempty"`
	MatchReasons     []string           `json:"match_reasons,omitempty"`
}

// Parse reads a decoded object into an Analysis. It only fails when raw is
// not a JSON object.
func Parse(raw json.RawMessage) (*Analysis, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("analysis is not an object: %w", err)
	}
	if fields == nil {
		return nil, fmt.Errorf("analysis is null")
	}

	a := &Analysis{
		Title:            textField(fields["title"]),
		CompanyName:      textField(fields["company_name"]),
		Description:      textField(fields["description"]),
		SalaryNormalized: numberField(fields["salary_normalized"]),
		RedFlags:         listField(fields["red_flags"]),
		Requirements:     listField(fields["requirements"]),
		Responsibilities: listField(fields["responsibilities"]),
		Skills:           listField(fields["skills"]),
		Location:         textField(fields["location"]),
		IsRemote:         boolField(fields["is_remote"]),
		JobType:          textField(fields["job_type"]),
		ExperienceLevel:  textField(fields["experience_level"]),
		MatchScore:       numberField(fields["match_score"]),
		MatchReasons:     listField(fields["match_reasons"]),
	}
	a.Company, a.CompanyName = companyField(fields["company"], a.CompanyName)

	if gap := objectField(fields["skills_analysis"]); gap != nil {
		a.SkillsAnalysis = &SkillsGap{
			Matching: listField(gap["matching"]),
			Missing:  listField(gap["missing"]),
		}
	}
	return a, nil
}

func isNull(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null"
}

func textField(raw json.RawMessage) *string {
	if isNull(raw) {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return &s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		s = n.String()
		return &s
	}
	return nil
}

func numberField(raw json.RawMessage) *float64 {
	if isNull(raw) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return &f
		}
	}
	return nil
}

func boolField(raw json.RawMessage) *bool {
	if isNull(raw) {
		return nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return &b
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "yes", "remote":
			b = true
			return &b
		case "false", "no", "onsite", "on-site":
			b = false
			return &b
		}
	}
	return nil
}

// listField accepts an array of strings or numbers, or a single string
func listField(raw json.RawMessage) []string {
	if isNull(raw) {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		if s := textField(raw); s != nil && strings.TrimSpace(*s) != "" {
			return []string{*s}
		}
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := textField(item); s != nil && strings.TrimSpace(*s) != "" {
			out = append(out, *s)
		}
	}
	return out
}

func objectField(raw json.RawMessage) map[string]json.RawMessage {
	if isNull(raw) {
		return nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}
	return obj
}

// companyField reads "company" as an object, or as a bare name when it is a
// string. A bare name only fills company_name when that is absent.
func companyField(raw json.RawMessage, name *string) (*types.CompanyInfo, *string) {
	if obj := objectField(raw); obj != nil {
		nameText := textField(obj["name"])
		if nameText == nil || strings.TrimSpace(*nameText) == "" {
			return nil, name
		}
		return &types.CompanyInfo{
			Name:        *nameText,
			Description: textField(obj["description"]),
			Industry:    textField(obj["industry"]),
			Size:        textField(obj["size"]),
			Website:     textField(obj["website"]),
			LinkedInURL: textField(obj["linkedin_url"]),
		}, name
	}
	if name == nil {
		if s := textField(raw); s != nil {
			return nil, s
		}
	}
	return nil, name
}
