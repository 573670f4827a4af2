package sdk

import (
	"context"
	"sync"
)

// Decompiler turns machine code at an address into pseudo source.
//
// DecompileAt is asynchronous: it returns immediately and the result
// arrives through the finished subscribers. Implementations run one
// request at a time; a DecompileAt issued while a run is in flight is
// dropped.
type Decompiler interface {
	// ID is the stable identifier, e.g. "pdc".
	ID() string

	// DisplayName is the human-readable name shown in pickers.
	DisplayName() string

	// IsAvailable reports whether the backend can service requests.
	IsAvailable(ctx context.Context) bool

	// DecompileAt starts decompilation of the function at addr.
	DecompileAt(addr uint64)

	// SubscribeFinished registers fn to receive results. The returned
	// function cancels the subscription.
	SubscribeFinished(fn func(*Code)) func()
}

// Emitter delivers finished results to subscribers. Embed it to get
// the SubscribeFinished half of Decompiler.
//
// The zero value is ready to use.
type Emitter struct {
	mu       sync.Mutex
	handlers []func(*Code)
}

// SubscribeFinished implements the subscription side of Decompiler.
func (e *Emitter) SubscribeFinished(fn func(*Code)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.handlers = append(e.handlers, fn)
	i := len(e.handlers) - 1

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			e.handlers[i] = nil
		})
	}
}

// EmitFinished hands code to every live subscriber in subscription
// order. Subscribers added during delivery are not called for this
// emission.
func (e *Emitter) EmitFinished(code *Code) {
	e.mu.Lock()
	snapshot := make([]func(*Code), len(e.handlers))
	copy(snapshot, e.handlers)
	e.mu.Unlock()

	for _, fn := range snapshot {
		if fn != nil {
			emitOne(fn, code)
		}
	}
}

// emitOne keeps a panicking subscriber from breaking delivery to the
// rest.
func emitOne(fn func(*Code), code *Code) {
	defer func() {
		_ = recover()
	}()
	fn(code)
}
