package cart

import "sync"

// Dispatcher runs background sync calls.
type Dispatcher interface {
	Go(fn func())
	// Wait blocks until every dispatched fn has returned.
	Wait()
}

type asyncDispatcher struct {
	wg sync.WaitGroup
}

// NewAsyncDispatcher runs each call on its own goroutine.
func NewAsyncDispatcher() Dispatcher {
	return &asyncDispatcher{}
}

func (d *asyncDispatcher) Go(fn func()) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		fn()
	}()
}

func (d *asyncDispatcher) Wait() {
	d.wg.Wait()
}
