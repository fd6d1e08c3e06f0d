package swrcache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_MissThenHit(t *testing.T) {
	c := New[string](time.Minute)
	var calls int32

	producer := func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "v1", nil
	}

	v, err := c.Get(context.Background(), "k", producer)
	require.NoError(t, err)
	assert.Equal(t, "v1", v)

	v, err = c.Get(context.Background(), "k", producer)
	require.NoError(t, err)
	assert.Equal(t, "v1", v)

	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	assert.EqualValues(t, 1, c.Stats().Misses())
	assert.EqualValues(t, 1, c.Stats().Hits())
}

func TestCache_StaleServesImmediatelyAndRefreshesOnce(t *testing.T) {
	c := New[string](50 * time.Millisecond)
	var calls int32
	release := make(chan struct{})

	producer := func(ctx context.Context) (string, error) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			return "v1", nil
		}
		<-release
		return "v2", nil
	}

	v, err := c.Get(context.Background(), "k", producer)
	require.NoError(t, err)
	assert.Equal(t, "v1", v)

	time.Sleep(60 * time.Millisecond)

	var wg sync.WaitGroup
	results := make([]string, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.Get(context.Background(), "k", producer)
			require.NoError(t, err)
			results[i] = v
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, "v1", r, "stale reads must return immediately without waiting on the refresh")
	}

	close(release)
	require.Eventually(t, func() bool {
		v, _ := c.Get(context.Background(), "k", producer)
		return v == "v2"
	}, time.Second, time.Millisecond)

	assert.EqualValues(t, 2, atomic.LoadInt32(&calls), "ten concurrent stale reads must trigger exactly one refresh")
}

func TestCache_ConcurrentMissesCoalesce(t *testing.T) {
	c := New[string](time.Minute)
	var calls int32
	ready := make(chan struct{})

	producer := func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		<-ready
		return "v1", nil
	}

	var wg sync.WaitGroup
	results := make([]string, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.Get(context.Background(), "k", producer)
			require.NoError(t, err)
			results[i] = v
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(ready)
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, "v1", r)
	}
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls), "twenty concurrent cold misses must coalesce into a single producer call")
}

func TestCache_MissPropagatesProducerError(t *testing.T) {
	c := New[string](time.Minute)
	wantErr := errors.New("upstream unreachable")

	_, err := c.Get(context.Background(), "k", func(ctx context.Context) (string, error) {
		return "", wantErr
	})

	assert.ErrorIs(t, err, wantErr)
	assert.EqualValues(t, 0, c.Size(), "a failed first miss must not populate the cache")
	assert.EqualValues(t, 1, c.Stats().Errors())
}

func TestCache_ContextCancellationReturnsEarlyWithoutAbortingProducer(t *testing.T) {
	c := New[string](time.Minute)
	release := make(chan struct{})

	producer := func(ctx context.Context) (string, error) {
		<-release
		return "v1", nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.Get(ctx, "k", producer)
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Get did not return after context cancellation")
	}

	close(release)
	require.Eventually(t, func() bool {
		return c.Size() == 1
	}, time.Second, time.Millisecond, "producer result must still populate the cache after the caller gave up")
}

func TestCache_Stats_Summary(t *testing.T) {
	c := New[int](time.Minute)
	_, _ = c.Get(context.Background(), "a", func(ctx context.Context) (int, error) { return 1, nil })
	_, _ = c.Get(context.Background(), "a", func(ctx context.Context) (int, error) { return 1, nil })

	summary := c.Stats().Summary()
	assert.EqualValues(t, 1, summary.Misses)
	assert.EqualValues(t, 1, summary.Hits)
	assert.InDelta(t, 0.5, summary.HitRatio, 0.001)
	assert.EqualValues(t, 1, summary.Size)
}
