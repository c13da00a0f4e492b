package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/angelmondragon/jewelry-miniapp/pkg/enums"
	"github.com/angelmondragon/jewelry-miniapp/pkg/kvstore"
	"github.com/angelmondragon/jewelry-miniapp/pkg/types"
	"github.com/shopspring/decimal"
)

var errOffline = errors.New("network unreachable")

type remoteCall struct {
	Op        Operation
	LineID    types.LineID
	ProductID int64
	Quantity  int
	Size      string
}

// stubRemote is an in-memory backend cart. Responses are computed when the
// call arrives; a hold registered for a quantity delays the reply until the
// channel is closed.
type stubRemote struct {
	mu      sync.Mutex
	lines   []types.CartLine
	nextID  types.LineID
	calls   []remoteCall
	errs    map[Operation]error
	addErrs map[int64]error
	holds   map[int]chan struct{}
	catalog map[int64]types.Product
}

func newStubRemote(products ...types.Product) *stubRemote {
	r := &stubRemote{
		nextID:  100,
		errs:    map[Operation]error{},
		addErrs: map[int64]error{},
		holds:   map[int]chan struct{}{},
		catalog: map[int64]types.Product{},
	}
	for _, p := range products {
		r.catalog[p.ID] = p
	}
	return r
}

func (r *stubRemote) record(call remoteCall) (chan struct{}, error) {
	r.calls = append(r.calls, call)
	return r.holds[call.Quantity], r.errs[call.Op]
}

func (r *stubRemote) reply(hold chan struct{}) *types.Cart {
	cart := r.snapshotLocked()
	r.mu.Unlock()
	if hold != nil {
		<-hold
	}
	return cart
}

func (r *stubRemote) snapshotLocked() *types.Cart {
	items := make([]types.CartLine, len(r.lines))
	copy(items, r.lines)
	total, count := types.CartTotals(items)
	return &types.Cart{ID: 1, Items: items, Total: total, ItemsCount: count}
}

func (r *stubRemote) GetCart(ctx context.Context) (*types.Cart, error) {
	r.mu.Lock()
	hold, err := r.record(remoteCall{Op: OpFetch})
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	return r.reply(hold), nil
}

func (r *stubRemote) AddToCart(ctx context.Context, productID int64, quantity int, size string) (*types.Cart, error) {
	r.mu.Lock()
	hold, err := r.record(remoteCall{Op: OpAdd, ProductID: productID, Quantity: quantity, Size: size})
	if err == nil {
		err = r.addErrs[productID]
	}
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	key := types.NewLineKey(productID, size)
	for i := range r.lines {
		if r.lines[i].Key() == key {
			r.lines[i].Quantity += quantity
			return r.reply(hold), nil
		}
	}
	product, ok := r.catalog[productID]
	if !ok {
		product = types.Product{ID: productID}
	}
	r.lines = append(r.lines, types.CartLine{ID: r.nextID, Product: product, Quantity: quantity, Size: size})
	r.nextID++
	return r.reply(hold), nil
}

func (r *stubRemote) UpdateCartItem(ctx context.Context, id types.LineID, quantity int) (*types.Cart, error) {
	r.mu.Lock()
	hold, err := r.record(remoteCall{Op: OpUpdate, LineID: id, Quantity: quantity})
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	for i := range r.lines {
		if r.lines[i].ID == id {
			r.lines[i].Quantity = quantity
			return r.reply(hold), nil
		}
	}
	r.mu.Unlock()
	return nil, errors.New("status 404: Element topilmadi")
}

func (r *stubRemote) RemoveCartItem(ctx context.Context, id types.LineID) (*types.Cart, error) {
	r.mu.Lock()
	hold, err := r.record(remoteCall{Op: OpRemove, LineID: id})
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	for i := range r.lines {
		if r.lines[i].ID == id {
			r.lines = append(r.lines[:i:i], r.lines[i+1:]...)
			return r.reply(hold), nil
		}
	}
	r.mu.Unlock()
	return nil, errors.New("status 404: Element topilmadi")
}

func (r *stubRemote) ClearCart(ctx context.Context) (*types.Cart, error) {
	r.mu.Lock()
	hold, err := r.record(remoteCall{Op: OpClear})
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	r.lines = nil
	return r.reply(hold), nil
}

func (r *stubRemote) failAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, op := range []Operation{OpFetch, OpAdd, OpUpdate, OpRemove, OpClear} {
		r.errs[op] = errOffline
	}
}

func (r *stubRemote) seed(lines ...types.CartLine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, lines...)
}

func (r *stubRemote) callsFor(op Operation) []remoteCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []remoteCall
	for _, c := range r.calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func (r *stubRemote) hold(quantity int) chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch := make(chan struct{})
	r.holds[quantity] = ch
	return ch
}

type observedEvent struct {
	SyncEvent
	Err error
}

type recordingObserver struct {
	mu     sync.Mutex
	events []observedEvent
	ch     chan observedEvent
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{ch: make(chan observedEvent, 64)}
}

func (o *recordingObserver) OnSyncSuccess(_ context.Context, ev SyncEvent) {
	o.add(observedEvent{SyncEvent: ev})
}

func (o *recordingObserver) OnSyncFailure(_ context.Context, ev SyncEvent, err error) {
	o.add(observedEvent{SyncEvent: ev, Err: err})
}

func (o *recordingObserver) add(ev observedEvent) {
	o.mu.Lock()
	o.events = append(o.events, ev)
	o.mu.Unlock()
	select {
	case o.ch <- ev:
	default:
	}
}

func (o *recordingObserver) failures() []observedEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []observedEvent
	for _, ev := range o.events {
		if ev.Err != nil {
			out = append(out, ev)
		}
	}
	return out
}

type failingStore struct {
	kvstore.Store
}

func (failingStore) Save(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func product(id int64, price int64) types.Product {
	return types.Product{ID: id, Name: "Product", Price: decimal.NewFromInt(price), InStock: true}
}

type harness struct {
	ctrl     *Controller
	remote   *stubRemote
	store    *kvstore.Memory
	observer *recordingObserver
}

func newHarness(t *testing.T, policy enums.ReconcilePolicy, setup func(h *harness)) *harness {
	t.Helper()
	h := &harness{
		remote:   newStubRemote(),
		store:    kvstore.NewMemory(),
		observer: newRecordingObserver(),
	}
	if setup != nil {
		setup(h)
	}
	ctrl, err := NewController(context.Background(), Params{
		Store:    h.store,
		Remote:   h.remote,
		Observer: h.observer,
		Policy:   policy,
	})
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	h.ctrl = ctrl
	t.Cleanup(ctrl.Wait)
	return h
}

func newOfflineHarness(t *testing.T) *harness {
	t.Helper()
	return newHarness(t, enums.ReconcileSequence, func(h *harness) { h.remote.failAll() })
}

func persistLines(t *testing.T, store kvstore.Store, lines ...types.CartLine) {
	t.Helper()
	raw, err := encodeState(lines)
	if err != nil {
		t.Fatalf("encode state: %v", err)
	}
	if err := store.Save(context.Background(), Namespace, raw); err != nil {
		t.Fatalf("save state: %v", err)
	}
}
