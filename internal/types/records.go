package types

import (
	"strings"
	"time"
)

// RawRecord is one posting as produced by a collector
type RawRecord struct {
	ID          string    `json:"id"`
	Source      JobSource `json:"source"`
	URL         string    `json:"url"`
	Content     string    `json:"content"`
	CollectedAt time.Time `json:"collected_at"`
}

// JobType is the employment type of a posting
type JobType string

// Job types
const (
	JobFullTime   JobType = "full_time"
	JobPartTime   JobType = "part_time"
	JobContract   JobType = "contract"
	JobFreelance  JobType = "freelance"
	JobInternship JobType = "internship"
)

// DefaultJobType is used when the model gives no recognizable job type
const DefaultJobType = JobFullTime

// ParseJobType maps free text onto the job type vocabulary
func ParseJobType(s string) (JobType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fulltime", "full_time", "full-time", "full time":
		return JobFullTime, true
	case "parttime", "part_time", "part-time", "part time":
		return JobPartTime, true
	case "contract", "contractor":
		return JobContract, true
	case "freelance":
		return JobFreelance, true
	case "internship", "intern":
		return JobInternship, true
	default:
		return "", false
	}
}

// CompanyInfo describes the employer of a posting
type CompanyInfo struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Industry    *string `json:"industry,omitempty"`
	Size        *string `json:"size,omitempty"`
	Website     *string `json:"website,omitempty"`
	LinkedInURL *string `json:"linkedin_url,omitempty"`
}

// SkillsGap pairs the candidate skills a posting matches with the ones it lacks
type SkillsGap struct {
	Matching []string `json:"matching"`
	Missing  []string `json:"missing"`
}

// AnalyzedRecord is the canonical evaluation of one RawRecord.
// ID always equals the ID of the RawRecord it was derived from.
type AnalyzedRecord struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	Company          *CompanyInfo    `json:"company,omitempty"`
	Description      string          `json:"description"`
	SalaryNormalized *float64        `json:"salary_normalized,omitempty"`
	RedFlags         []string        `json:"red_flags"`
	SkillsAnalysis   SkillsGap       `json:"skills_analysis"`
	Requirements     []string        `json:"requirements"`
	Responsibilities []string        `json:"responsibilities"`
	Skills           []string        `json:"skills"`
	Location         string          `json:"location"`
	IsRemote         bool            `json:"is_remote"`
	JobType          JobType         `json:"job_type"`
	ExperienceLevel  ExperienceLevel `json:"experience_level"`
	URL              string          `json:"url"`
	Source           JobSource       `json:"source"`
	MatchScore       float64         `json:"match_score"`
	MatchReasons     []string        `json:"match_reasons"`
}
