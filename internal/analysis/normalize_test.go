package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-hunter/internal/types"
)

func rawRecord(id string) types.RawRecord {
	return types.RawRecord{
		ID:          id,
		Source:      types.SourceRemoteOK,
		URL:         "https://remoteok.com/jobs/" + id,
		Content:     "Senior Go Engineer at Acme",
		CollectedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func mustParse(t *testing.T, text string) *Analysis {
	t.Helper()
	a, err := Parse(json.RawMessage(text))
	require.NoError(t, err)
	return a
}

func TestNormalize_Defaults(t *testing.T) {
	criteria := &types.Criteria{ExperienceLevel: types.LevelSenior}
	rec := Normalize(mustParse(t, `{}`), rawRecord("r1"), criteria)

	assert.Equal(t, "r1", rec.ID)
	assert.Equal(t, DefaultTitle, rec.Title)
	assert.Equal(t, "", rec.Description)
	assert.Nil(t, rec.Company)
	assert.Nil(t, rec.SalaryNormalized)
	assert.Equal(t, DefaultLocation, rec.Location)
	assert.True(t, rec.IsRemote)
	assert.Equal(t, types.JobFullTime, rec.JobType)
	assert.Equal(t, types.LevelSenior, rec.ExperienceLevel)
	assert.Equal(t, 0.0, rec.MatchScore)
	assert.Equal(t, "https://remoteok.com/jobs/r1", rec.URL)
	assert.Equal(t, types.SourceRemoteOK, rec.Source)

	assert.NotNil(t, rec.RedFlags)
	assert.Empty(t, rec.RedFlags)
	assert.NotNil(t, rec.Requirements)
	assert.NotNil(t, rec.Responsibilities)
	assert.NotNil(t, rec.Skills)
	assert.NotNil(t, rec.MatchReasons)
	assert.NotNil(t, rec.SkillsAnalysis.Matching)
	assert.NotNil(t, rec.SkillsAnalysis.Missing)
}

func TestNormalize_NilAnalysisAndCriteria(t *testing.T) {
	rec := Normalize(nil, rawRecord("r2"), nil)
	assert.Equal(t, "r2", rec.ID)
	assert.Equal(t, types.LevelAny, rec.ExperienceLevel)
}

func TestNormalize_FullAnalysis(t *testing.T) {
	a := mustParse(t, `{
		"title": "Platform Engineer",
		"company": {"name": "Acme", "industry": "Fintech"},
		"company_name": "Ignored Inc",
		"description": "Build things",
		"salary_normalized": "120000",
		"red_flags": ["unpaid trial"],
		"skills_analysis": {"matching": ["go"], "missing": ["k8s"]},
		"requirements": "5 years of Go",
		"skills": ["go", 42],
		"location": "Berlin",
		"is_remote": "no",
		"job_type": "Contract",
		"experience_level": "Lead",
		"match_score": "0.75",
		"match_reasons": ["strong Go"]
	}`)
	rec := Normalize(a, rawRecord("r3"), &types.Criteria{ExperienceLevel: types.LevelJunior})

	assert.Equal(t, "Platform Engineer", rec.Title)
	require.NotNil(t, rec.Company)
	assert.Equal(t, "Acme", rec.Company.Name)
	require.NotNil(t, rec.Company.Industry)
	assert.Equal(t, "Fintech", *rec.Company.Industry)
	require.NotNil(t, rec.SalaryNormalized)
	assert.Equal(t, 120000.0, *rec.SalaryNormalized)
	assert.Equal(t, []string{"unpaid trial"}, rec.RedFlags)
	assert.Equal(t, types.SkillsGap{Matching: []string{"go"}, Missing: []string{"k8s"}}, rec.SkillsAnalysis)
	assert.Equal(t, []string{"5 years of Go"}, rec.Requirements)
	assert.Equal(t, []string{"go", "42"}, rec.Skills)
	assert.Equal(t, "Berlin", rec.Location)
	assert.False(t, rec.IsRemote)
	assert.Equal(t, types.JobContract, rec.JobType)
	assert.Equal(t, types.LevelLead, rec.ExperienceLevel)
	assert.Equal(t, 0.75, rec.MatchScore)
	assert.Equal(t, []string{"strong Go"}, rec.MatchReasons)
}

func TestNormalize_Company(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantName string
	}{
		{name: "object preferred", input: `{"company": {"name": "Obj"}, "company_name": "Name"}`, wantName: "Obj"},
		{name: "name only", input: `{"company_name": "  Name Co  "}`, wantName: "Name Co"},
		{name: "bare string company", input: `{"company": "Stringy"}`, wantName: "Stringy"},
		{name: "blank name", input: `{"company_name": "   "}`},
		{name: "object without name falls back", input: `{"company": {"industry": "x"}, "company_name": "Fallback"}`, wantName: "Fallback"},
		{name: "nothing", input: `{"company": null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Normalize(mustParse(t, tt.input), rawRecord("c"), nil)
			if tt.wantName == "" {
				assert.Nil(t, rec.Company)
				return
			}
			require.NotNil(t, rec.Company)
			assert.Equal(t, tt.wantName, rec.Company.Name)
		})
	}
}

func TestNormalize_UnrecognizedVocabularyFallsBack(t *testing.T) {
	a := mustParse(t, `{"job_type": "gig", "experience_level": "wizard"}`)
	rec := Normalize(a, rawRecord("v"), &types.Criteria{ExperienceLevel: types.LevelMid})
	assert.Equal(t, types.JobFullTime, rec.JobType)
	assert.Equal(t, types.LevelMid, rec.ExperienceLevel)
}

func TestNormalize_ScoreAlwaysClamped(t *testing.T) {
	scores := []string{"-5", "-0.01", "0", "0.5", "1", "1.4", "99", "1e308", `"7"`, `"abc"`, "null"}
	for i, s := range scores {
		t.Run(s, func(t *testing.T) {
			id := fmt.Sprintf("id-%d", i)
			rec := Normalize(mustParse(t, `{"match_score": `+s+`}`), rawRecord(id), nil)
			assert.GreaterOrEqual(t, rec.MatchScore, 0.0)
			assert.LessOrEqual(t, rec.MatchScore, 1.0)
			assert.Equal(t, id, rec.ID)
		})
	}
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 1.0, ClampScore(1.4))
	assert.Equal(t, 0.0, ClampScore(-0.2))
	assert.Equal(t, 0.3, ClampScore(0.3))
	assert.Equal(t, 0.0, ClampScore(math.NaN()))
	assert.Equal(t, 1.0, ClampScore(math.Inf(1)))
	assert.Equal(t, 0.0, ClampScore(math.Inf(-1)))
}
