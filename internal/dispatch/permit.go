package dispatch

import "context"

// Permit is the counted semaphore bounding in-flight logical requests: held
// for the duration of one logical request, including retries.
type Permit struct {
	sem chan struct{}
}

// NewPermit creates a Permit allowing up to max concurrent holders.
func NewPermit(max int) *Permit {
	if max <= 0 {
		max = 1
	}
	return &Permit{sem: make(chan struct{}, max)}
}

// Acquire blocks until a slot is free or ctx is done. Suspension here is one
// of the four allowed suspension points.
func (p *Permit) Acquire(ctx context.Context) error {
	select {
	case p.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees the held slot. Safe to call at most once per successful
// Acquire.
func (p *Permit) Release() {
	<-p.sem
}

// InFlight returns the current number of held permits, for diagnostics.
func (p *Permit) InFlight() int {
	return len(p.sem)
}
