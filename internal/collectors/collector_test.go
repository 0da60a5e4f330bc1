package collectors

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/jonathan/job-hunter/internal/logger"
	"github.com/jonathan/job-hunter/internal/types"
)

type stubScraper struct {
	postings []Posting
	err      error
	calls    int
	settings types.SourceSettings
}

func (s *stubScraper) Source() types.JobSource { return types.SourceRemotive }

func (s *stubScraper) Scrape(_ context.Context, settings types.SourceSettings, _ *rate.Limiter) ([]Posting, error) {
	s.calls++
	s.settings = settings
	return s.postings, s.err
}

func TestCollector_Process(t *testing.T) {
	stub := &stubScraper{postings: []Posting{
		{URL: "https://a", Content: "first"},
		{URL: "https://b", Content: "second"},
	}}
	c := New(stub, logger.NewTest(t))
	assert.Equal(t, "collector_remotive", c.Name())

	criteria := &types.Criteria{Sources: []types.SourceSettings{
		{Source: types.SourceRemotive, Enabled: true, UserAgent: "ua"},
	}}
	out, err := c.Process(context.Background(), types.BeginRun{Criteria: criteria})
	require.NoError(t, err)

	batch, ok := out.(types.RawBatch)
	require.True(t, ok)
	require.Len(t, batch.Records, 2)
	assert.NotEqual(t, batch.Records[0].ID, batch.Records[1].ID)
	assert.Equal(t, types.SourceRemotive, batch.Records[0].Source)
	assert.Equal(t, "https://a", batch.Records[0].URL)
	assert.Equal(t, "second", batch.Records[1].Content)
	assert.False(t, batch.Records[0].CollectedAt.IsZero())
	assert.Equal(t, "ua", stub.settings.UserAgent)
}

func TestCollector_DisabledSource(t *testing.T) {
	stub := &stubScraper{}
	criteria := &types.Criteria{Sources: []types.SourceSettings{
		{Source: types.SourceRemotive, Enabled: false},
	}}
	out, err := New(stub, nil).Process(context.Background(), types.BeginRun{Criteria: criteria})
	require.NoError(t, err)
	assert.Equal(t, types.RawBatch{}, out)
	assert.Zero(t, stub.calls)
}

func TestCollector_DefaultsWhenUnconfigured(t *testing.T) {
	stub := &stubScraper{}
	_, err := New(stub, nil).Process(context.Background(), types.BeginRun{Criteria: &types.Criteria{}})
	require.NoError(t, err)
	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, types.DefaultSourceUserAgent, stub.settings.UserAgent)
	assert.Equal(t, types.DefaultSourceDelay, stub.settings.Delay())
}

func TestCollector_Failure(t *testing.T) {
	stub := &stubScraper{err: errors.New("connection reset")}
	_, err := New(stub, nil).Process(context.Background(), types.BeginRun{Criteria: &types.Criteria{}})
	require.Error(t, err)
	assert.Equal(t, types.CodeCollectionFailure, types.CodeOf(err))
	assert.Contains(t, err.Error(), "connection reset")
}

func TestCollector_UnexpectedMessage(t *testing.T) {
	_, err := New(&stubScraper{}, nil).Process(context.Background(), types.Shutdown{})
	assert.Equal(t, types.CodeUnexpectedMessage, types.CodeOf(err))
}

func TestNewPacer(t *testing.T) {
	p := NewPacer(0)
	start := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, p.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)

	p = NewPacer(30 * time.Millisecond)
	start = time.Now()
	require.NoError(t, p.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond, "the first wait already applies the delay")

	p = NewPacer(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, p.Wait(ctx))
}

func TestDefaults(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range Defaults(nil) {
		names[c.Name()] = true
	}
	for _, source := range []types.JobSource{
		types.SourceRemoteOK, types.SourceArbeitnow, types.SourceHimalayas, types.SourceRemotive,
		types.SourceJobicy, types.SourceWeWorkRemotely, types.SourceJobspresso,
	} {
		assert.True(t, names[NamePrefix+string(source)], source)
	}
	assert.Len(t, names, 7)
}
