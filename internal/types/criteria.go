// Package types provides type definitions for structured data used throughout the job-hunter system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// JobSource identifies where a raw record was collected from
type JobSource string

// Known job sources
const (
	SourceRemoteOK       JobSource = "remoteok"
	SourceWeWorkRemotely JobSource = "weworkremotely"
	SourceArbeitnow      JobSource = "arbeitnow"
	SourceHimalayas      JobSource = "himalayas"
	SourceJobspresso     JobSource = "jobspresso"
	SourceRemotive       JobSource = "remotive"
	SourceJobicy         JobSource = "jobicy"
)

// Defaults applied when a run carries no settings for a source
const (
	DefaultSourceDelay     = 1200 * time.Millisecond
	DefaultSourceUserAgent = "Mozilla/5.0"
)

// ExperienceLevel is the seniority a posting targets or a run filters on
type ExperienceLevel string

// Experience levels
const (
	LevelEntry  ExperienceLevel = "entry"
	LevelJunior ExperienceLevel = "junior"
	LevelMid    ExperienceLevel = "mid"
	LevelSenior ExperienceLevel = "senior"
	LevelLead   ExperienceLevel = "lead"
	LevelAny    ExperienceLevel = "any"
)

// ParseExperienceLevel maps free text onto the experience vocabulary.
// The second return value is false when the text is not recognized.
func ParseExperienceLevel(s string) (ExperienceLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "entry", "entry-level", "entry_level":
		return LevelEntry, true
	case "junior", "jr":
		return LevelJunior, true
	case "mid", "middle", "mid-level", "intermediate":
		return LevelMid, true
	case "senior", "sr":
		return LevelSenior, true
	case "lead", "principal", "staff":
		return LevelLead, true
	case "any":
		return LevelAny, true
	default:
		return "", false
	}
}

// SourceSettings holds the per-source collection settings for one run
type SourceSettings struct {
	Source     JobSource `json:"source" mapstructure:"source" validate:"required"`
	Enabled    bool      `json:"enabled" mapstructure:"enabled"`
	DelayMS    int       `json:"delay_ms" mapstructure:"delay_ms" validate:"gte=0"`
	UserAgent  string    `json:"user_agent" mapstructure:"user_agent"`
	UseBrowser bool      `json:"use_browser,omitempty" mapstructure:"use_browser"`
}

// Delay returns the configured pause before the source is contacted
func (s SourceSettings) Delay() time.Duration {
	return time.Duration(s.DelayMS) * time.Millisecond
}

// Criteria is the immutable configuration of one run. It is created once by
// the scheduler and shared read-only by every worker invocation of the run.
type Criteria struct {
	Keywords         []string         `json:"keywords" mapstructure:"keywords"`
	ExperienceLevel  ExperienceLevel  `json:"experience_level" mapstructure:"experience_level" validate:"required,oneof=entry junior mid senior lead any"`
	Sources          []SourceSettings `json:"sources" mapstructure:"sources" validate:"dive"`
	CandidateProfile string           `json:"candidate_profile,omitempty" mapstructure:"candidate_profile"`
}

// Validate checks the criteria using the struct tags
func (c *Criteria) Validate() error {
	if c == nil {
		return fmt.Errorf("criteria is nil")
	}
	validate := validator.New()
	return validate.Struct(c)
}

// SettingsFor returns the settings configured for source, or the defaults
// (enabled, 1200ms delay, generic user agent) when none are configured.
func (c *Criteria) SettingsFor(source JobSource) SourceSettings {
	if c != nil {
		for _, s := range c.Sources {
			if s.Source == source {
				if s.UserAgent == "" {
					s.UserAgent = DefaultSourceUserAgent
				}
				return s
			}
		}
	}
	return SourceSettings{
		Source:    source,
		Enabled:   true,
		DelayMS:   int(DefaultSourceDelay / time.Millisecond),
		UserAgent: DefaultSourceUserAgent,
	}
}

// HasProfile reports whether a candidate profile is attached to the run
func (c *Criteria) HasProfile() bool {
	return c != nil && strings.TrimSpace(c.CandidateProfile) != ""
}
