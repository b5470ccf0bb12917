package service

import (
	"sync"

	"choreboard/internal/store"
)

// forward adapts a raw store subscription into a typed snapshot stream.
// The output channel closes when the subscription ends; stop tears the
// subscription down and is safe to call more than once.
func forward[T any](sub store.Subscription, decode func([]store.Document) []T) (<-chan []T, func()) {
	out := make(chan []T, 1)
	done := make(chan struct{})
	var once sync.Once
	stop := func() {
		once.Do(func() {
			sub.Stop()
			close(done)
		})
	}

	go func() {
		defer close(out)
		for {
			select {
			case docs, ok := <-sub.Snapshots():
				if !ok {
					return
				}
				select {
				case out <- decode(docs):
				case <-done:
					return
				}
			case <-done:
				return
			}
		}
	}()

	return out, stop
}
