package budget

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-hunter/internal/types"
)

func TestBudget_CheckAndRecord(t *testing.T) {
	b := New(2)
	require.NoError(t, b.Check())

	b.Record(1)
	require.NoError(t, b.Check())
	assert.Equal(t, int64(1), b.Remaining())

	b.Record(1)
	err := b.Check()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExceeded))
	assert.Equal(t, types.CodeBudgetExceeded, types.CodeOf(err))
	assert.Equal(t, int64(0), b.Remaining())

	var exceeded *ExceededError
	require.True(t, errors.As(err, &exceeded))
	assert.Equal(t, int64(2), exceeded.Used)
	assert.Equal(t, int64(2), exceeded.Limit)
}

func TestBudget_Defaults(t *testing.T) {
	assert.Equal(t, int64(DefaultMaxCalls), New(0).Limit())
	assert.Equal(t, int64(DefaultMaxCalls), New(-3).Limit())

	b := New(1)
	b.Record(0)
	b.Record(-1)
	assert.Equal(t, int64(0), b.Used())
}

func TestBudget_NilAllowsEverything(t *testing.T) {
	var b *Budget
	assert.NoError(t, b.Check())
	b.Record(5)
	assert.Equal(t, int64(0), b.Used())
}

func TestBudget_ConcurrentRecord(t *testing.T) {
	b := New(1000)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				b.Record(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(500), b.Used())
}

func TestContext(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))

	b := New(3)
	ctx := NewContext(context.Background(), b)
	assert.Same(t, b, FromContext(ctx))

	// Runs keep separate billing state
	other := New(3)
	otherCtx := NewContext(context.Background(), other)
	FromContext(ctx).Record(3)
	assert.Error(t, FromContext(ctx).Check())
	assert.NoError(t, FromContext(otherCtx).Check())
}
