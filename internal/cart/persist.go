package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/angelmondragon/jewelry-miniapp/pkg/kvstore"
	"github.com/angelmondragon/jewelry-miniapp/pkg/types"
)

const (
	// Namespace is the persistence slot holding the cart line items.
	Namespace = "jewelry-cart"

	stateVersion = 1
)

var errUnsupportedVersion = errors.New("unsupported persisted cart version")

type persistedState struct {
	Items []types.CartLine `json:"items"`
}

type envelope struct {
	Version int            `json:"version"`
	State   persistedState `json:"state"`
}

func encodeState(items []types.CartLine) ([]byte, error) {
	if items == nil {
		items = []types.CartLine{}
	}
	return json.Marshal(envelope{Version: stateVersion, State: persistedState{Items: items}})
}

func decodeState(raw []byte) ([]types.CartLine, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode persisted cart: %w", err)
	}
	if env.Version != stateVersion {
		return nil, fmt.Errorf("%w: %d", errUnsupportedVersion, env.Version)
	}
	return env.State.Items, nil
}

// loadState returns the persisted lines, or nil when nothing usable was saved.
func loadState(ctx context.Context, store kvstore.Store) ([]types.CartLine, error) {
	raw, err := store.Load(ctx, Namespace)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeState(raw)
}
