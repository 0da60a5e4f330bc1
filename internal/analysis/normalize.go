package analysis

import (
	"math"
	"strings"

	"github.com/jonathan/job-hunter/internal/types"
)

// Defaults applied when the model leaves a field out
const (
	DefaultTitle    = "(untitled)"
	DefaultLocation = "Remote"
)

// Normalize maps a tolerant analysis onto the canonical record for raw.
// The result always carries raw's ID, URL and source, and a match score in [0,1].
func Normalize(a *Analysis, raw types.RawRecord, criteria *types.Criteria) types.AnalyzedRecord {
	if a == nil {
		a = &Analysis{}
	}

	rec := types.AnalyzedRecord{
		ID:               raw.ID,
		Title:            textOr(a.Title, DefaultTitle),
		Company:          company(a),
		Description:      textOr(a.Description, ""),
		SalaryNormalized: a.SalaryNormalized,
		RedFlags:         listOrEmpty(a.RedFlags),
		Requirements:     listOrEmpty(a.Requirements),
		Responsibilities: listOrEmpty(a.Responsibilities),
		Skills:           listOrEmpty(a.Skills),
		Location:         textOr(a.Location, DefaultLocation),
		IsRemote:         true,
		JobType:          types.DefaultJobType,
		ExperienceLevel:  types.LevelAny,
		URL:              raw.URL,
		Source:           raw.Source,
		MatchScore:       0,
		MatchReasons:     listOrEmpty(a.MatchReasons),
		SkillsAnalysis:   types.SkillsGap{Matching: []string{}, Missing: []string{}},
	}

	if a.SkillsAnalysis != nil {
		rec.SkillsAnalysis = types.SkillsGap{
			Matching: listOrEmpty(a.SkillsAnalysis.Matching),
			Missing:  listOrEmpty(a.SkillsAnalysis.Missing),
		}
	}
	if a.IsRemote != nil {
		rec.IsRemote = *a.IsRemote
	}
	if a.JobType != nil {
		if jt, ok := types.ParseJobType(*a.JobType); ok {
			rec.JobType = jt
		}
	}
	if criteria != nil && criteria.ExperienceLevel != "" {
		rec.ExperienceLevel = criteria.ExperienceLevel
	}
	if a.ExperienceLevel != nil {
		if lvl, ok := types.ParseExperienceLevel(*a.ExperienceLevel); ok {
			rec.ExperienceLevel = lvl
		}
	}
	if a.MatchScore != nil {
		rec.MatchScore = ClampScore(*a.MatchScore)
	}
	return rec
}

// ClampScore bounds a score to [0,1]. NaN maps to 0.
func ClampScore(score float64) float64 {
	if math.IsNaN(score) {
		return 0
	}
	return math.Max(0, math.Min(1, score))
}

// company prefers the structured object, then a non-blank bare name
func company(a *Analysis) *types.CompanyInfo {
	if a.Company != nil {
		c := *a.Company
		return &c
	}
	if a.CompanyName != nil && strings.TrimSpace(*a.CompanyName) != "" {
		return &types.CompanyInfo{Name: strings.TrimSpace(*a.CompanyName)}
	}
	return nil
}

func textOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

func listOrEmpty(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
