package progress

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/pathwise/internal/logger"
	"github.com/abhisek/pathwise/internal/store"
)

func newRedisTracker(t *testing.T) (*RedisTracker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisTrackerFromClient(client, "test"), mr
}

func TestRedisTracker_Record(t *testing.T) {
	tr, mr := newRedisTracker(t)
	ctx := context.Background()

	require.NoError(t, tr.Record(ctx, "sorting", 100, store.StatusCompleted))
	require.NoError(t, tr.Record(ctx, "sorting", 100, store.StatusCompleted))
	require.NoError(t, tr.Record(ctx, "graphs", 40, "in_progress"))

	p, err := tr.Get(ctx, "sorting")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 100, p.Percentage)
	assert.Equal(t, 2, p.Completions)
	assert.False(t, p.UpdatedAt.IsZero())

	assert.Equal(t, "in_progress", mr.HGet("test:progress:graphs", "status"))

	done, err := tr.Completed(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"sorting"}, done)

	missing, err := tr.Get(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRedisTracker_Reset(t *testing.T) {
	tr, mr := newRedisTracker(t)
	ctx := context.Background()
	require.NoError(t, tr.Record(ctx, "a", 100, store.StatusCompleted))
	require.NoError(t, tr.Record(ctx, "b", 100, store.StatusCompleted))

	require.NoError(t, tr.Reset(ctx, "a"))
	assert.False(t, mr.Exists("test:progress:a"))
	done, _ := tr.Completed(ctx)
	assert.Equal(t, []string{"b"}, done)

	require.NoError(t, tr.Reset(ctx, ""))
	assert.Empty(t, mr.Keys())
}

func TestNewRedisTracker(t *testing.T) {
	mr := miniredis.RunT(t)
	tr, err := NewRedisTracker(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	defer tr.Close()
	require.NoError(t, tr.Record(context.Background(), "g", 100, store.StatusCompleted))
	assert.True(t, mr.Exists("pathwise:progress:g"))

	_, err = NewRedisTracker(context.Background(), "")
	assert.Error(t, err)
	_, err = NewRedisTracker(context.Background(), "not a url")
	assert.Error(t, err)
}

type failingTracker struct{ calls int }

func (f *failingTracker) Record(context.Context, string, int, string) error {
	f.calls++
	return errors.New("unreachable")
}

func TestFanout_ContinuesPastFailures(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "progress.db"))
	require.NoError(t, err)
	defer st.Close()

	bad := &failingTracker{}
	rt, _ := newRedisTracker(t)
	f := Fanout(bad, nil, st.ProgressRepo(), rt)

	err = f.Record(context.Background(), "g", 100, store.StatusCompleted)
	require.Error(t, err)
	assert.Equal(t, 1, bad.calls)

	row, err := st.ProgressRepo().Get(context.Background(), "g")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, 1, row.Completions)

	mirrored, err := rt.Get(context.Background(), "g")
	require.NoError(t, err)
	require.NotNil(t, mirrored)
}

func TestReporter_SwallowsErrors(t *testing.T) {
	bad := &failingTracker{}
	r := FireAndForget(bad, logger.Nop())
	r.Record(context.Background(), "g", 100, store.StatusCompleted)
	assert.Equal(t, 1, bad.calls)

	var nilReporter *Reporter
	nilReporter.Record(context.Background(), "g", 100, store.StatusCompleted)
}
