package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCriteria_Validate(t *testing.T) {
	tests := []struct {
		name     string
		criteria *Criteria
		wantErr  bool
	}{
		{
			name:     "valid minimal",
			criteria: &Criteria{ExperienceLevel: LevelSenior},
		},
		{
			name: "valid with sources",
			criteria: &Criteria{
				Keywords:        []string{"go", "rust"},
				ExperienceLevel: LevelAny,
				Sources:         []SourceSettings{{Source: SourceRemoteOK, Enabled: true, DelayMS: 0}},
			},
		},
		{
			name:     "missing level",
			criteria: &Criteria{Keywords: []string{"go"}},
			wantErr:  true,
		},
		{
			name:     "unknown level",
			criteria: &Criteria{ExperienceLevel: "wizard"},
			wantErr:  true,
		},
		{
			name: "negative delay",
			criteria: &Criteria{
				ExperienceLevel: LevelMid,
				Sources:         []SourceSettings{{Source: SourceArbeitnow, DelayMS: -5}},
			},
			wantErr: true,
		},
		{
			name:     "nil criteria",
			criteria: nil,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.criteria.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCriteria_SettingsFor(t *testing.T) {
	c := &Criteria{
		ExperienceLevel: LevelSenior,
		Sources: []SourceSettings{
			{Source: SourceRemoteOK, Enabled: false, DelayMS: 10},
			{Source: SourceArbeitnow, Enabled: true, DelayMS: 0, UserAgent: "bot/1.0"},
		},
	}

	remote := c.SettingsFor(SourceRemoteOK)
	assert.False(t, remote.Enabled)
	assert.Equal(t, 10*time.Millisecond, remote.Delay())
	assert.Equal(t, DefaultSourceUserAgent, remote.UserAgent)

	arbeit := c.SettingsFor(SourceArbeitnow)
	assert.True(t, arbeit.Enabled)
	assert.Equal(t, "bot/1.0", arbeit.UserAgent)

	// Unconfigured sources fall back to defaults
	def := c.SettingsFor(SourceHimalayas)
	assert.True(t, def.Enabled)
	assert.Equal(t, DefaultSourceDelay, def.Delay())
	assert.Equal(t, SourceHimalayas, def.Source)

	var nilCriteria *Criteria
	require.True(t, nilCriteria.SettingsFor(SourceJobicy).Enabled)
}

func TestParseExperienceLevel(t *testing.T) {
	tests := []struct {
		input string
		want  ExperienceLevel
		ok    bool
	}{
		{"Senior", LevelSenior, true},
		{"  middle ", LevelMid, true},
		{"JUNIOR", LevelJunior, true},
		{"principal", LevelLead, true},
		{"entry", LevelEntry, true},
		{"any", LevelAny, true},
		{"guru", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseExperienceLevel(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCriteria_HasProfile(t *testing.T) {
	assert.False(t, (&Criteria{}).HasProfile())
	assert.False(t, (&Criteria{CandidateProfile: "   "}).HasProfile())
	assert.True(t, (&Criteria{CandidateProfile: "Go developer"}).HasProfile())
}
