package enricher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-hunter/internal/logger"
	"github.com/jonathan/job-hunter/internal/types"
)

func strPtr(s string) *string { return &s }

func TestGuessWebsite(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "Acme Corp", want: "https://www.acmecorp.com"},
		{name: "  Big   Data\tInc ", want: "https://www.bigdatainc.com"},
		{name: "GitLab", want: "https://www.gitlab.com"},
		{name: "   ", want: ""},
		{name: "---", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GuessWebsite(tt.name))
		})
	}
}

func TestEnricher_Process(t *testing.T) {
	e := New(logger.NewTest(t))
	assert.Equal(t, Name, e.Name())

	in := types.EnrichBatch{Records: []types.AnalyzedRecord{
		{ID: "1", MatchScore: 0.4, Company: &types.CompanyInfo{Name: "Acme Corp"}},
		{ID: "2", Company: &types.CompanyInfo{Name: "Known", Website: strPtr("https://known.io")}},
		{ID: "3"},
	}}

	out, err := e.Process(context.Background(), in)
	require.NoError(t, err)

	batch, ok := out.(types.EnrichedBatch)
	require.True(t, ok)
	require.Len(t, batch.Records, 3)

	assert.Equal(t, "1", batch.Records[0].ID)
	assert.Equal(t, 0.4, batch.Records[0].MatchScore)
	require.NotNil(t, batch.Records[0].Company.Website)
	assert.Equal(t, "https://www.acmecorp.com", *batch.Records[0].Company.Website)

	assert.Equal(t, "https://known.io", *batch.Records[1].Company.Website)
	assert.Nil(t, batch.Records[2].Company)
}

func TestEnricher_UnexpectedMessage(t *testing.T) {
	_, err := New(nil).Process(context.Background(), types.BeginRun{})
	require.Error(t, err)
	assert.Equal(t, types.CodeUnexpectedMessage, types.CodeOf(err))
}
