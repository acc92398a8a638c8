package services

import (
	"sync"
	"time"
)

// AdGate simulates a rewarded ad: a fixed countdown that must reach zero
// before the viewer may dismiss it. The gate never auto-dismisses, and the
// completion signal fires at most once, on the explicit dismiss.
type AdGate struct {
	mu        sync.Mutex
	ticksLeft int
	ready     bool
	dismissed bool
	stopChan  chan struct{}
	startedAt time.Time

	interval time.Duration
	onTick   func(ticksLeft int)
	onReady  func()
}

func NewAdGate(ticks int, interval time.Duration, onTick func(ticksLeft int), onReady func()) *AdGate {
	return &AdGate{
		ticksLeft: ticks,
		interval:  interval,
		onTick:    onTick,
		onReady:   onReady,
		stopChan:  make(chan struct{}),
		startedAt: time.Now(),
	}
}

// Start runs the countdown. A gate with zero ticks is ready immediately.
func (g *AdGate) Start() {
	g.mu.Lock()
	if g.ticksLeft <= 0 {
		g.ready = true
		g.mu.Unlock()
		if g.onReady != nil {
			g.onReady()
		}
		return
	}
	g.mu.Unlock()

	go g.run()
}

func (g *AdGate) run() {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.mu.Lock()
			g.ticksLeft--
			left := g.ticksLeft
			done := left <= 0
			if done {
				g.ready = true
			}
			g.mu.Unlock()

			if g.onTick != nil {
				g.onTick(left)
			}
			if done {
				if g.onReady != nil {
					g.onReady()
				}
				return
			}

		case <-g.stopChan:
			return
		}
	}
}

// Dismiss consumes the gate. It fails while the countdown is still running
// and on any second call.
func (g *AdGate) Dismiss() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.ready || g.dismissed {
		return false
	}

	g.dismissed = true
	return true
}

func (g *AdGate) Ready() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ready
}

func (g *AdGate) TicksLeft() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ticksLeft < 0 {
		return 0
	}
	return g.ticksLeft
}

func (g *AdGate) StartedAt() time.Time {
	return g.startedAt
}

// Stop abandons the countdown without completing it. Used by the stale-gate
// sweeper.
func (g *AdGate) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.ready || g.dismissed {
		return
	}

	close(g.stopChan)
	g.dismissed = true
}
