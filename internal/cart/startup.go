package cart

import "context"

// ReadySignal is the host's "UI mounted" notification. telegram.Host
// satisfies it.
type ReadySignal interface {
	Ready() <-chan struct{}
}

// RunStartupSync waits for the host to become ready and then reconciles the
// cart once. It returns ctx.Err() when ctx ends first.
func RunStartupSync(ctx context.Context, host ReadySignal, c *Controller) error {
	select {
	case <-host.Ready():
	case <-ctx.Done():
		return ctx.Err()
	}
	c.SyncWithBackend(ctx)
	return nil
}
