package cart

import (
	"context"
	"sync"
	"time"

	"github.com/angelmondragon/jewelry-miniapp/pkg/enums"
	pkgerrors "github.com/angelmondragon/jewelry-miniapp/pkg/errors"
	"github.com/angelmondragon/jewelry-miniapp/pkg/kvstore"
	"github.com/angelmondragon/jewelry-miniapp/pkg/logger"
	"github.com/angelmondragon/jewelry-miniapp/pkg/types"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

const defaultSyncTimeout = 15 * time.Second

// Params groups dependencies for the cart controller.
type Params struct {
	Store       kvstore.Store
	Remote      Remote
	Observer    SyncObserver
	Logger      *logger.Logger
	Policy      enums.ReconcilePolicy
	Dispatcher  Dispatcher
	SyncTimeout time.Duration
}

// Snapshot is an immutable view of the cart handed to readers and subscribers.
type Snapshot struct {
	Items      []types.CartLine
	Total      decimal.Decimal
	ItemsCount int
	IsOpen     bool
	IsSyncing  bool
	// Revision increases on every state change; subscribers may drop
	// snapshots older than one they already rendered.
	Revision uint64
}

// Controller owns the device cart. Mutations commit locally, persist, and
// return immediately; the matching backend call runs in the background and
// its authoritative cart replaces the local lines on success.
type Controller struct {
	mu        sync.Mutex
	items     []types.CartLine
	isOpen    bool
	isSyncing bool
	nextLocal types.LineID
	mutations uint64
	revision  uint64

	syncFlight singleflight.Group

	subMu       sync.Mutex
	subscribers map[int]func(Snapshot)
	nextSubID   int

	baseCtx     context.Context
	store       kvstore.Store
	remote      Remote
	observer    SyncObserver
	logg        *logger.Logger
	policy      enums.ReconcilePolicy
	dispatcher  Dispatcher
	syncTimeout time.Duration
}

// NewController builds a controller and restores the persisted lines. ctx
// scopes persistence and background calls; cancelling it does not abort
// calls already in flight.
func NewController(ctx context.Context, params Params) (*Controller, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart store is required")
	}
	if params.Remote == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart remote is required")
	}
	policy := params.Policy
	if policy == "" {
		policy = enums.ReconcileSequence
	}
	if !policy.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported reconcile policy").
			WithDetails(map[string]any{"policy": policy.String()})
	}

	c := &Controller{
		nextLocal:   -1,
		subscribers: map[int]func(Snapshot){},
		baseCtx:     context.WithoutCancel(ctx),
		store:       params.Store,
		remote:      params.Remote,
		observer:    params.Observer,
		logg:        params.Logger,
		policy:      policy,
		dispatcher:  params.Dispatcher,
		syncTimeout: params.SyncTimeout,
	}
	if c.observer == nil {
		c.observer = nopObserver{}
	}
	if c.logg == nil {
		c.logg = logger.Nop()
	}
	if c.dispatcher == nil {
		c.dispatcher = NewAsyncDispatcher()
	}
	if c.syncTimeout <= 0 {
		c.syncTimeout = defaultSyncTimeout
	}

	c.restore(ctx)
	return c, nil
}

func (c *Controller) restore(ctx context.Context) {
	ctx = c.logg.WithField(ctx, "namespace", Namespace)
	items, err := loadState(ctx, c.store)
	if err != nil {
		c.logg.WarnErr(ctx, "ignoring persisted cart", err)
		return
	}
	c.items = mergeLines(items)
	c.reserveLocalIDs()
	if len(c.items) > 0 {
		c.logg.Debug(c.logg.WithField(ctx, "lines", len(c.items)), "restored persisted cart")
	}
}

// AddItem merges quantity units of product in size into the cart. Quantities
// below one are ignored.
func (c *Controller) AddItem(product types.Product, quantity int, size string) {
	if quantity < 1 {
		return
	}
	size = types.CanonicalSize(size)
	key := types.NewLineKey(product.ID, size)

	c.mu.Lock()
	var lineID types.LineID
	if idx := c.indexOfKey(key); idx >= 0 {
		c.items[idx].Quantity += quantity
		lineID = c.items[idx].ID
	} else {
		lineID = c.allocLocalID()
		c.items = append(c.items, types.CartLine{
			ID:       lineID,
			Product:  product.Clone(),
			Quantity: quantity,
			Size:     size,
		})
	}
	seq, snap := c.commitLocked()
	c.mu.Unlock()
	c.notify(snap)

	ev := SyncEvent{Operation: OpAdd, LineID: lineID, ProductID: product.ID}
	c.dispatch(ev, seq, true, func(ctx context.Context) (*types.Cart, error) {
		return c.remote.AddToCart(ctx, product.ID, quantity, size)
	})
}

// RemoveItem drops the line with id. Unknown ids are ignored and never
// reach the backend.
func (c *Controller) RemoveItem(id types.LineID) {
	c.mu.Lock()
	idx := c.indexOfID(id)
	if idx < 0 {
		c.mu.Unlock()
		return
	}
	productID := c.items[idx].Product.ID
	c.items = append(c.items[:idx:idx], c.items[idx+1:]...)
	seq, snap := c.commitLocked()
	c.mu.Unlock()
	c.notify(snap)

	ev := SyncEvent{Operation: OpRemove, LineID: id, ProductID: productID}
	c.dispatch(ev, seq, true, func(ctx context.Context) (*types.Cart, error) {
		return c.remote.RemoveCartItem(ctx, id)
	})
}

// UpdateQuantity sets the quantity of line id. A non-positive quantity
// removes the line.
func (c *Controller) UpdateQuantity(id types.LineID, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(id)
		return
	}

	c.mu.Lock()
	idx := c.indexOfID(id)
	if idx < 0 {
		c.mu.Unlock()
		return
	}
	productID := c.items[idx].Product.ID
	c.items[idx].Quantity = quantity
	seq, snap := c.commitLocked()
	c.mu.Unlock()
	c.notify(snap)

	ev := SyncEvent{Operation: OpUpdate, LineID: id, ProductID: productID}
	c.dispatch(ev, seq, true, func(ctx context.Context) (*types.Cart, error) {
		return c.remote.UpdateCartItem(ctx, id, quantity)
	})
}

// ClearCart empties the cart. The backend reply is not written back.
func (c *Controller) ClearCart() {
	c.mu.Lock()
	c.items = nil
	seq, snap := c.commitLocked()
	c.mu.Unlock()
	c.notify(snap)

	c.dispatch(SyncEvent{Operation: OpClear}, seq, false, func(ctx context.Context) (*types.Cart, error) {
		return c.remote.ClearCart(ctx)
	})
}

func (c *Controller) OpenCart()  { c.setOpen(true) }
func (c *Controller) CloseCart() { c.setOpen(false) }

func (c *Controller) setOpen(open bool) {
	c.mu.Lock()
	if c.isOpen == open {
		c.mu.Unlock()
		return
	}
	c.isOpen = open
	c.revision++
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
}

func (c *Controller) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isOpen
}

// IsSyncing reports whether startup reconciliation is running.
func (c *Controller) IsSyncing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isSyncing
}

func (c *Controller) Items() []types.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneLines(c.items)
}

// Total is the sum of price x quantity over all lines.
func (c *Controller) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	total, _ := types.CartTotals(c.items)
	return total
}

// ItemsCount is the sum of quantities over all lines.
func (c *Controller) ItemsCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, count := types.CartTotals(c.items)
	return count
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Wait blocks until every background call dispatched so far has settled.
func (c *Controller) Wait() {
	c.dispatcher.Wait()
}

// Subscribe registers fn for every state change and returns its cancel func.
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	if fn == nil {
		return func() {}
	}
	c.subMu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	c.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.subMu.Lock()
			delete(c.subscribers, id)
			c.subMu.Unlock()
		})
	}
}

func (c *Controller) notify(snap Snapshot) {
	c.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

// dispatch runs call in the background. When apply is set, a successful
// response replaces the local lines subject to the reconcile policy.
func (c *Controller) dispatch(ev SyncEvent, seq uint64, apply bool, call func(context.Context) (*types.Cart, error)) {
	c.dispatcher.Go(func() {
		ctx, cancel := context.WithTimeout(c.baseCtx, c.syncTimeout)
		defer cancel()

		started := time.Now()
		remote, err := call(ctx)
		ev.Duration = time.Since(started)
		if err != nil {
			c.observer.OnSyncFailure(ctx, ev, err)
			return
		}
		if apply && remote != nil {
			ev.Stale = !c.applyRemote(seq, remote.Items)
		}
		c.observer.OnSyncSuccess(ctx, ev)
	})
}

// applyRemote replaces the local lines with an authoritative list. Under the
// sequence policy the list is dropped when a local mutation happened after
// the call carrying seq was issued.
func (c *Controller) applyRemote(seq uint64, lines []types.CartLine) bool {
	c.mu.Lock()
	if c.policy == enums.ReconcileSequence && seq != c.mutations {
		c.mu.Unlock()
		return false
	}
	c.items = mergeLines(lines)
	c.reserveLocalIDs()
	c.revision++
	c.persistLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
	return true
}

// commitLocked records a local mutation and writes the lines through to the
// store. It returns the mutation sequence and a snapshot for subscribers.
func (c *Controller) commitLocked() (uint64, Snapshot) {
	c.mutations++
	c.revision++
	c.persistLocked()
	return c.mutations, c.snapshotLocked()
}

func (c *Controller) persistLocked() {
	raw, err := encodeState(c.items)
	if err == nil {
		err = c.store.Save(c.baseCtx, Namespace, raw)
	}
	if err != nil {
		ctx := c.logg.WithField(c.baseCtx, "namespace", Namespace)
		c.logg.WarnErr(ctx, "persisting cart failed", err)
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	total, count := types.CartTotals(c.items)
	return Snapshot{
		Items:      cloneLines(c.items),
		Total:      total,
		ItemsCount: count,
		IsOpen:     c.isOpen,
		IsSyncing:  c.isSyncing,
		Revision:   c.revision,
	}
}

func (c *Controller) indexOfKey(key types.LineKey) int {
	for i, line := range c.items {
		if line.Key() == key {
			return i
		}
	}
	return -1
}

func (c *Controller) indexOfID(id types.LineID) int {
	for i, line := range c.items {
		if line.ID == id {
			return i
		}
	}
	return -1
}

func (c *Controller) allocLocalID() types.LineID {
	id := c.nextLocal
	c.nextLocal--
	return id
}

// reserveLocalIDs moves the local id counter below every id in the cart.
func (c *Controller) reserveLocalIDs() {
	for _, line := range c.items {
		if line.ID <= c.nextLocal {
			c.nextLocal = line.ID - 1
		}
	}
}

// mergeLines canonicalizes sizes and folds lines sharing a key into the first
// occurrence. Non-positive quantities are dropped.
func mergeLines(lines []types.CartLine) []types.CartLine {
	out := make([]types.CartLine, 0, len(lines))
	index := make(map[types.LineKey]int, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		line.Size = types.CanonicalSize(line.Size)
		if i, ok := index[line.Key()]; ok {
			out[i].Quantity += line.Quantity
			continue
		}
		index[line.Key()] = len(out)
		out = append(out, line)
	}
	return out
}

func cloneLines(lines []types.CartLine) []types.CartLine {
	out := make([]types.CartLine, len(lines))
	copy(out, lines)
	return out
}
