package cart

import (
	"context"
	"time"

	"github.com/angelmondragon/jewelry-miniapp/pkg/types"
)

const syncFlightKey = "cart.sync"

// SyncWithBackend reconciles the device cart with the backend once.
//
// A non-empty backend cart replaces the local lines. An empty backend cart
// gets every local line pushed through add, one at a time and best effort,
// followed by a refetch whose result replaces the local lines when non-empty.
// If the first fetch fails the local lines stay the working set.
//
// Overlapping callers share one pass: a caller arriving while a pass is in
// flight waits for it instead of pushing the local lines a second time.
func (c *Controller) SyncWithBackend(ctx context.Context) {
	_, _, _ = c.syncFlight.Do(syncFlightKey, func() (any, error) {
		c.reconcile(ctx)
		return nil, nil
	})
}

func (c *Controller) reconcile(ctx context.Context) {
	c.setSyncing(true)
	defer c.setSyncing(false)

	ctx = c.logg.WithOperation(ctx, "cart.sync")

	seq := c.currentSeq()
	remote, ok := c.fetch(ctx)
	if !ok {
		return
	}
	if len(remote.Items) > 0 {
		c.applyRemote(seq, remote.Items)
		return
	}

	local := c.Items()
	if len(local) == 0 {
		return
	}
	for _, line := range local {
		c.push(ctx, line)
	}

	seq = c.currentSeq()
	remote, ok = c.fetch(ctx)
	if !ok || len(remote.Items) == 0 {
		return
	}
	c.applyRemote(seq, remote.Items)
}

func (c *Controller) fetch(ctx context.Context) (*types.Cart, bool) {
	callCtx, cancel := context.WithTimeout(ctx, c.syncTimeout)
	defer cancel()

	ev := SyncEvent{Operation: OpFetch}
	started := time.Now()
	remote, err := c.remote.GetCart(callCtx)
	ev.Duration = time.Since(started)
	if err != nil {
		c.observer.OnSyncFailure(ctx, ev, err)
		return nil, false
	}
	if remote == nil {
		remote = &types.Cart{}
	}
	c.observer.OnSyncSuccess(ctx, ev)
	return remote, true
}

func (c *Controller) push(ctx context.Context, line types.CartLine) {
	callCtx, cancel := context.WithTimeout(ctx, c.syncTimeout)
	defer cancel()

	ev := SyncEvent{Operation: OpAdd, LineID: line.ID, ProductID: line.Product.ID}
	started := time.Now()
	_, err := c.remote.AddToCart(callCtx, line.Product.ID, line.Quantity, line.Size)
	ev.Duration = time.Since(started)
	if err != nil {
		c.observer.OnSyncFailure(ctx, ev, err)
		return
	}
	c.observer.OnSyncSuccess(ctx, ev)
}

func (c *Controller) currentSeq() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mutations
}

func (c *Controller) setSyncing(syncing bool) {
	c.mu.Lock()
	c.isSyncing = syncing
	c.revision++
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
}
