package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPoolRunsJobAndDeliversResult(t *testing.T) {
	p := New(2)
	err := p.Submit(context.Background(), Job{
		ID: "job-1", Kind: KindAnalytics,
		Run: func(ctx context.Context) (any, error) { return 42, nil },
	})
	require.NoError(t, err)

	select {
	case res := <-p.Results():
		require.Equal(t, "job-1", res.ID)
		require.True(t, res.OK)
		require.Equal(t, 42, res.Data)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for result")
	}
}

func TestPoolReportsJobError(t *testing.T) {
	p := New(1)
	wantErr := errors.New("boom")
	err := p.Submit(context.Background(), Job{
		ID: "job-2", Kind: KindImport,
		Run: func(ctx context.Context) (any, error) { return nil, wantErr },
	})
	require.NoError(t, err)

	res := <-p.Results()
	require.False(t, res.OK)
	require.ErrorIs(t, res.Err, wantErr)
}

func TestCancelSignalsJobContext(t *testing.T) {
	p := New(1)
	started := make(chan struct{})
	err := p.Submit(context.Background(), Job{
		ID: "job-3", Kind: KindAnalytics,
		Run: func(ctx context.Context) (any, error) {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		},
	})
	require.NoError(t, err)

	<-started
	require.True(t, p.Cancel("job-3"))

	res := <-p.Results()
	require.False(t, res.OK)
	require.ErrorIs(t, res.Err, context.Canceled)
}

func TestPoolLimitsConcurrency(t *testing.T) {
	p := New(1)
	release := make(chan struct{})
	err := p.Submit(context.Background(), Job{
		ID: "a", Kind: KindAnalytics,
		Run: func(ctx context.Context) (any, error) { <-release; return nil, nil },
	})
	require.NoError(t, err)

	submitted := make(chan struct{})
	go func() {
		_ = p.Submit(context.Background(), Job{
			ID: "b", Kind: KindAnalytics,
			Run: func(ctx context.Context) (any, error) { return nil, nil },
		})
		close(submitted)
	}()

	select {
	case <-submitted:
		t.Fatal("second job should not have acquired a slot yet")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	<-submitted
	<-p.Results()
	<-p.Results()
}
