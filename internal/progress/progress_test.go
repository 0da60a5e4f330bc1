package progress

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jonathan/job-hunter/internal/types"
)

func TestChannel_NeverBlocks(t *testing.T) {
	c := NewChannel(2)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			c.Log(LevelInfo, "tick")
		}
		c.RecordAnalyzed(types.AnalyzedRecord{ID: "r"})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sink blocked with a full buffer")
	}

	assert.Len(t, c.Events(), 2)
	assert.Equal(t, int64(99), c.Dropped())

	first := <-c.Events()
	assert.Equal(t, KindLog, first.Kind)
	assert.Equal(t, "tick", first.Message)
}

func TestChannel_Unbuffered(t *testing.T) {
	c := NewChannel(-1)
	c.Log(LevelWarn, "nobody listening")
	assert.Equal(t, int64(1), c.Dropped())
}

func TestFunc(t *testing.T) {
	var mu sync.Mutex
	var got []Event
	sink := Func(func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, e)
	})

	sink.Log(LevelSuccess, "done")
	sink.RecordAnalyzed(types.AnalyzedRecord{ID: "abc", MatchScore: 0.5})

	require.Len(t, got, 2)
	assert.Equal(t, LevelSuccess, got[0].Level)
	assert.Equal(t, KindRecordAnalyzed, got[1].Kind)
	require.NotNil(t, got[1].Record)
	assert.Equal(t, "abc", got[1].Record.ID)
}

func TestMultiAndNop(t *testing.T) {
	a, b := NewChannel(4), NewChannel(4)
	m := Multi(a, nil, b, Nop)
	m.Log(LevelInfo, "x")
	m.RecordAnalyzed(types.AnalyzedRecord{ID: "y"})

	assert.Len(t, a.Events(), 2)
	assert.Len(t, b.Events(), 2)
	assert.Equal(t, Nop, OrNop(nil))
	assert.Equal(t, Sink(a), OrNop(a))
}

func TestZap(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	sink := Zap{Logger: zap.New(core)}

	sink.Log(LevelError, "bad")
	sink.Log(LevelWarn, "meh")
	sink.Log(LevelSuccess, "good")
	sink.RecordAnalyzed(types.AnalyzedRecord{ID: "r1", Title: "T"})

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, zap.ErrorLevel, entries[0].Level)
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, zap.InfoLevel, entries[2].Level)
	assert.Equal(t, "r1", entries[3].ContextMap()["record_id"])
}
