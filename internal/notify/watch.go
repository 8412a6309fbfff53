package notify

import "context"

// Result is one element of a reactive read stream.
type Result[T any] struct {
	Value T
	Err   error
}

// Watch emits load's result once, then again after every signal on topic.
// A failed load is delivered as an element and the stream stays open. The
// stream is closed, and the subscription dropped, once ctx is done.
func Watch[T any](ctx context.Context, n *Notifier, topic string, load func(context.Context) (T, error)) <-chan Result[T] {
	// Subscribe before the first load so a write racing with it still
	// produces a re-read.
	return Stream(ctx, n.Subscribe(ctx, topic), load)
}

// Stream is Watch over an arbitrary signal channel. It stops when signals is
// closed or ctx is done.
func Stream[T any](ctx context.Context, signals <-chan struct{}, load func(context.Context) (T, error)) <-chan Result[T] {
	out := make(chan Result[T])

	go func() {
		defer close(out)
		for {
			v, err := load(ctx)
			select {
			case out <- Result[T]{Value: v, Err: err}:
			case <-ctx.Done():
				return
			}

			select {
			case _, ok := <-signals:
				if !ok {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
