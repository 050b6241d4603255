package train

import "sync"

// broadcastEvent is a manually-reset broadcast signal: set wakes every
// goroutine currently blocked in wait, and clear arms it again for the
// next iteration. It plays the role of the process-shared value_event
// and policy_event flags, implemented here as a channel that gets closed
// to broadcast and replaced to reset, since Go has no native resettable
// broadcast primitive.
type broadcastEvent struct {
	mu sync.Mutex
	ch chan struct{}
}

func newBroadcastEvent() *broadcastEvent {
	return &broadcastEvent{ch: make(chan struct{})}
}

// wait returns the channel to block on. Callers must re-fetch it on every
// iteration rather than caching the result, since set+clear replaces it.
func (e *broadcastEvent) wait() <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ch
}

func (e *broadcastEvent) set() {
	e.mu.Lock()
	defer e.mu.Unlock()
	close(e.ch)
}

func (e *broadcastEvent) clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ch = make(chan struct{})
}
