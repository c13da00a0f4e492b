package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	pkgerrors "github.com/angelmondragon/jewelry-miniapp/pkg/errors"
	"github.com/angelmondragon/jewelry-miniapp/pkg/kvstore"
	"github.com/angelmondragon/jewelry-miniapp/pkg/logger"
	"github.com/angelmondragon/jewelry-miniapp/pkg/types"
)

// Namespace is the persistence slot holding the favorites list.
const Namespace = "jewelry-favorites"

const stateVersion = 1

type envelope struct {
	Version int `json:"version"`
	State   struct {
		Items []types.Product `json:"items"`
	} `json:"state"`
}

// Params groups dependencies for the favorites controller.
type Params struct {
	Store  kvstore.Store
	Logger *logger.Logger
}

// Controller owns the device-local favorites set. It never talks to the
// backend; every change is written through to the store.
type Controller struct {
	mu    sync.Mutex
	items []types.Product

	subMu       sync.Mutex
	subscribers map[int]func([]types.Product)
	nextSubID   int

	ctx   context.Context
	store kvstore.Store
	logg  *logger.Logger
}

func NewController(ctx context.Context, params Params) (*Controller, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "favorites store is required")
	}
	c := &Controller{
		subscribers: map[int]func([]types.Product){},
		ctx:         context.WithoutCancel(ctx),
		store:       params.Store,
		logg:        params.Logger,
	}
	if c.logg == nil {
		c.logg = logger.Nop()
	}
	c.restore(ctx)
	return c, nil
}

func (c *Controller) restore(ctx context.Context) {
	ctx = c.logg.WithField(ctx, "namespace", Namespace)
	raw, err := c.store.Load(ctx, Namespace)
	if errors.Is(err, kvstore.ErrNotFound) {
		return
	}
	if err == nil {
		var items []types.Product
		items, err = decode(raw)
		if err == nil {
			c.items = dedupe(items)
			return
		}
	}
	c.logg.WarnErr(ctx, "ignoring persisted favorites", err)
}

func decode(raw []byte) ([]types.Product, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode persisted favorites: %w", err)
	}
	if env.Version != stateVersion {
		return nil, fmt.Errorf("unsupported persisted favorites version %d", env.Version)
	}
	return env.State.Items, nil
}

// AddItem inserts product unless an entry with its id already exists.
func (c *Controller) AddItem(product types.Product) {
	c.mu.Lock()
	if c.indexOf(product.ID) >= 0 {
		c.mu.Unlock()
		return
	}
	c.items = append(c.items, product.Clone())
	snap := c.commitLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// RemoveItem drops the entry for productID if present.
func (c *Controller) RemoveItem(productID int64) {
	c.mu.Lock()
	idx := c.indexOf(productID)
	if idx < 0 {
		c.mu.Unlock()
		return
	}
	c.items = append(c.items[:idx:idx], c.items[idx+1:]...)
	snap := c.commitLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// ToggleItem flips membership of product and reports whether it is now a
// favorite.
func (c *Controller) ToggleItem(product types.Product) bool {
	c.mu.Lock()
	idx := c.indexOf(product.ID)
	added := idx < 0
	if added {
		c.items = append(c.items, product.Clone())
	} else {
		c.items = append(c.items[:idx:idx], c.items[idx+1:]...)
	}
	snap := c.commitLocked()
	c.mu.Unlock()
	c.notify(snap)
	return added
}

func (c *Controller) IsFavorite(productID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.indexOf(productID) >= 0
}

func (c *Controller) ClearAll() {
	c.mu.Lock()
	c.items = nil
	snap := c.commitLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// Items returns the favorites in insertion order.
func (c *Controller) Items() []types.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneProducts(c.items)
}

func (c *Controller) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Subscribe registers fn for every change and returns its cancel func.
func (c *Controller) Subscribe(fn func([]types.Product)) func() {
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

func (c *Controller) notify(items []types.Product) {
	c.subMu.Lock()
	fns := make([]func([]types.Product), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()
	for _, fn := range fns {
		fn(items)
	}
}

func (c *Controller) commitLocked() []types.Product {
	var env envelope
	env.Version = stateVersion
	env.State.Items = c.items
	if env.State.Items == nil {
		env.State.Items = []types.Product{}
	}
	raw, err := json.Marshal(env)
	if err == nil {
		err = c.store.Save(c.ctx, Namespace, raw)
	}
	if err != nil {
		c.logg.WarnErr(c.logg.WithField(c.ctx, "namespace", Namespace), "persisting favorites failed", err)
	}
	return cloneProducts(c.items)
}

func (c *Controller) indexOf(productID int64) int {
	for i, p := range c.items {
		if p.ID == productID {
			return i
		}
	}
	return -1
}

func dedupe(items []types.Product) []types.Product {
	seen := make(map[int64]struct{}, len(items))
	out := make([]types.Product, 0, len(items))
	for _, p := range items {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}

func cloneProducts(items []types.Product) []types.Product {
	out := make([]types.Product, len(items))
	copy(out, items)
	return out
}
