package notify

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func next[T any](t *testing.T, ch <-chan Result[T]) Result[T] {
	t.Helper()
	select {
	case r, ok := <-ch:
		require.True(t, ok, "stream closed unexpectedly")
		return r
	case <-time.After(time.Second):
		t.Fatal("no element received")
	}
	return Result[T]{}
}

func TestWatch_EmitsCurrentThenOnChange(t *testing.T) {
	n := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var v atomic.Int64
	v.Store(1)
	stream := Watch(ctx, n, TableTopic("users"), func(context.Context) (int64, error) {
		return v.Load(), nil
	})

	assert.Equal(t, int64(1), next(t, stream).Value)

	v.Store(2)
	n.Publish(TableTopic("users"))
	assert.Equal(t, int64(2), next(t, stream).Value)
}

func TestWatch_ErrorIsAnElement(t *testing.T) {
	n := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	boom := errors.New("boom")
	var calls atomic.Int32
	stream := Watch(ctx, n, "t", func(context.Context) (string, error) {
		if calls.Add(1) == 1 {
			return "", boom
		}
		return "ok", nil
	})

	assert.ErrorIs(t, next(t, stream).Err, boom)

	n.Publish("t")
	r := next(t, stream)
	require.NoError(t, r.Err)
	assert.Equal(t, "ok", r.Value)
}

func TestWatch_CancelClosesAndUnsubscribes(t *testing.T) {
	n := New()
	ctx, cancel := context.WithCancel(context.Background())

	stream := Watch(ctx, n, "t", func(context.Context) (bool, error) { return true, nil })
	next(t, stream)
	require.Equal(t, 1, n.Subscribers("t"))

	cancel()

	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-stream:
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return n.Subscribers("t") == 0 }, time.Second, 10*time.Millisecond)
}

func TestWatch_NilNotifierEmitsOnce(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var n *Notifier

	stream := Watch(ctx, n, "t", func(context.Context) (int, error) { return 7, nil })
	assert.Equal(t, 7, next(t, stream).Value)
	n.Publish("t")

	cancel()
	assert.Eventually(t, func() bool {
		_, ok := <-stream
		return !ok
	}, time.Second, 10*time.Millisecond)
}
