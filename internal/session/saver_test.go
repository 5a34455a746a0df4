package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDebouncerSingleCall(t *testing.T) {
	var called int32
	d := NewDebouncer(20 * time.Millisecond)
	d.Debounce(func() { atomic.AddInt32(&called, 1) })

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&called) == 1 }, time.Second, 5*time.Millisecond)
}

func TestDebouncerRapidCalls(t *testing.T) {
	var called, last int32
	d := NewDebouncer(30 * time.Millisecond)
	for i := int32(1); i <= 5; i++ {
		v := i
		d.Debounce(func() {
			atomic.StoreInt32(&last, v)
			atomic.AddInt32(&called, 1)
		})
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&called))
	assert.Equal(t, int32(5), atomic.LoadInt32(&last))
}

func TestDebouncerCancel(t *testing.T) {
	var called int32
	d := NewDebouncer(20 * time.Millisecond)
	d.Debounce(func() { atomic.AddInt32(&called, 1) })
	assert.True(t, d.Cancel())
	assert.False(t, d.Cancel())

	d.Debounce(func() { atomic.AddInt32(&called, 10) })

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(10), atomic.LoadInt32(&called))
}

type recorder struct {
	mu     sync.Mutex
	writes []int
	fail   error
}

func (r *recorder) write(_ context.Context, v int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.writes = append(r.writes, v)
	return nil
}

func (r *recorder) got() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.writes...)
}

func TestSaverCoalescesToLatestSnapshot(t *testing.T) {
	rec := &recorder{}
	s := NewSaver("test", 20*time.Millisecond, nil, rec.write)
	for i := 1; i <= 4; i++ {
		s.Schedule(i)
	}

	assert.Eventually(t, func() bool { return len(rec.got()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []int{4}, rec.got())
	assert.False(t, s.Pending())
}

func TestSaverFlushWritesImmediately(t *testing.T) {
	rec := &recorder{}
	s := NewSaver("test", time.Hour, nil, rec.write)
	s.Schedule(7)
	require.True(t, s.Pending())

	require.NoError(t, s.Flush(context.Background()))
	assert.Equal(t, []int{7}, rec.got())
	require.NoError(t, s.Flush(context.Background()), "nothing pending")
	assert.Equal(t, []int{7}, rec.got())
}

func TestSaverKeepsError(t *testing.T) {
	rec := &recorder{fail: errors.New("offline")}
	s := NewSaver("test", time.Hour, nil, rec.write)
	s.Schedule(1)

	err := s.Flush(context.Background())
	assert.EqualError(t, err, "offline")
	assert.EqualError(t, s.Err(), "offline")

	rec.fail = nil
	s.Schedule(2)
	require.NoError(t, s.Flush(context.Background()))
	assert.NoError(t, s.Err())
	assert.Equal(t, []int{2}, rec.got())
}

func TestSaverSkipsStaleSnapshot(t *testing.T) {
	rec := &recorder{}
	s := NewSaver("test", time.Hour, nil, rec.write)

	s.Schedule(1)
	s.mu.Lock()
	stale := s.pending
	s.pending = nil
	s.mu.Unlock()

	s.Schedule(2)
	require.NoError(t, s.Flush(context.Background()))

	s.mu.Lock()
	s.pending = stale
	s.mu.Unlock()
	require.NoError(t, s.Flush(context.Background()))

	assert.Equal(t, []int{2}, rec.got(), "an older snapshot never lands after a newer one")
}

func TestSaverConcurrentFlushesEndOnNewest(t *testing.T) {
	rec := &recorder{}
	s := NewSaver("test", time.Hour, nil, rec.write)

	s.inflight.Lock()
	var wg sync.WaitGroup
	for i := 1; i <= 2; i++ {
		s.Schedule(i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Flush(context.Background())
		}()
		require.Eventually(t, func() bool { return !s.Pending() }, time.Second, time.Millisecond)
	}
	s.inflight.Unlock()
	wg.Wait()

	got := rec.got()
	require.NotEmpty(t, got)
	assert.Equal(t, 2, got[len(got)-1])
}

func TestSaverStopDropsPending(t *testing.T) {
	rec := &recorder{}
	s := NewSaver("test", 10*time.Millisecond, nil, rec.write)
	s.Schedule(1)
	s.Stop()

	time.Sleep(40 * time.Millisecond)
	assert.Empty(t, rec.got())
	assert.False(t, s.Pending())
}
