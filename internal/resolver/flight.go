package resolver

import "context"

// inflight tracks the callers waiting on one shared series resolution. The
// shared context is cancelled once every waiter has gone.
type inflight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// joinFlight registers the caller as a waiter for key and returns the context
// the shared resolution runs under. It keeps the first caller's values but
// not its cancellation.
func (e *Engine) joinFlight(ctx context.Context, key string) context.Context {
	e.flightMu.Lock()
	defer e.flightMu.Unlock()
	if f, ok := e.inflights[key]; ok {
		f.waiters++
		return f.ctx
	}
	flightCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	e.inflights[key] = &inflight{ctx: flightCtx, cancel: cancel, waiters: 1}
	return flightCtx
}

// leaveFlight drops a waiter. The last one out cancels the shared context and
// forgets the call so later callers start a fresh resolution.
func (e *Engine) leaveFlight(key string) {
	e.flightMu.Lock()
	defer e.flightMu.Unlock()
	f, ok := e.inflights[key]
	if !ok {
		return
	}
	f.waiters--
	if f.waiters > 0 {
		return
	}
	f.cancel()
	delete(e.inflights, key)
	e.flight.Forget(key)
}
