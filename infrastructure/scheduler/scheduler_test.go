package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDispatcher struct {
	calls int
	limit int
	err   error
}

func (f *fakeDispatcher) DispatchDue(_ context.Context, limit int) (int, error) {
	f.calls++
	f.limit = limit
	return 2, f.err
}

func TestDispatchDueJob(t *testing.T) {
	d := &fakeDispatcher{}
	job := DispatchDueJob(d, 25)
	require.NoError(t, job(context.Background()))
	assert.Equal(t, 1, d.calls)
	assert.Equal(t, 25, d.limit)

	d.err = errors.New("boom")
	require.Error(t, job(context.Background()))
}

func TestAddJobRejectsBadSpec(t *testing.T) {
	s := New(nil)
	err := s.AddJob("bad", "not a cron spec", func(context.Context) error { return nil })
	require.Error(t, err)
}

func TestAddDispatchJobSchedulesNextRun(t *testing.T) {
	s := New(time.UTC)
	require.NoError(t, s.AddDispatchJob("@every 1m", 10, &fakeDispatcher{}))
	s.Start()
	defer s.Stop()

	next, ok := s.NextRun("dispatch-due")
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), next, 5*time.Second)

	_, ok = s.NextRun("unknown")
	assert.False(t, ok)
}

func TestRunNow(t *testing.T) {
	s := New(time.UTC)
	called := false
	require.NoError(t, s.RunNow(context.Background(), "x", func(context.Context) error {
		called = true
		return nil
	}))
	assert.True(t, called)
}
