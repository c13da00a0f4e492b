package telegram

import (
	"sync"
)

// Host models the WebApp container the client runs in. Ready fires once the
// host signals that the UI is mounted; startup sync waits on it.
type Host struct {
	mu       sync.RWMutex
	initData InitData
	ready    chan struct{}
	once     sync.Once
}

// NewHost builds a host from the raw init data. An empty or malformed payload
// yields a browser-mode host with no user.
func NewHost(raw string) *Host {
	h := &Host{ready: make(chan struct{})}
	if parsed, err := ParseInitData(raw); err == nil {
		h.initData = parsed
	}
	return h
}

// Ready is closed after MarkReady.
func (h *Host) Ready() <-chan struct{} {
	return h.ready
}

// MarkReady signals readiness. Extra calls are no-ops.
func (h *Host) MarkReady() {
	h.once.Do(func() { close(h.ready) })
}

func (h *Host) IsReady() bool {
	select {
	case <-h.ready:
		return true
	default:
		return false
	}
}

// SetInitData replaces the launch payload, e.g. when the WebApp hands it over
// after the process started.
func (h *Host) SetInitData(raw string) error {
	parsed, err := ParseInitData(raw)
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.initData = parsed
	h.mu.Unlock()
	return nil
}

// InitData returns the raw payload to forward to the backend.
func (h *Host) InitData() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.initData.Raw
}

// User returns the launching user, if any.
func (h *Host) User() *User {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.initData.User == nil {
		return nil
	}
	u := *h.initData.User
	return &u
}

// IsTelegram reports whether the client was launched inside Telegram.
func (h *Host) IsTelegram() bool {
	return h.InitData() != ""
}
