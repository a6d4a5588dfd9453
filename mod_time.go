package lightdemo

import (
	"time"
)

// Time is the per-frame clock resource. Dt is the last frame's duration and
// Now the monotonic time since the app started, both in seconds.
type Time struct {
	Dt    float32
	Now   float64
	Frame uint64

	clock Clock
}

// Clock yields the duration of the next frame in seconds.
type Clock interface {
	Tick() float64
}

// RealClock measures wall time between ticks.
type RealClock struct {
	last time.Time
}

func NewRealClock() *RealClock {
	return &RealClock{last: time.Now()}
}

func (c *RealClock) Tick() float64 {
	now := time.Now()
	dt := now.Sub(c.last).Seconds()
	c.last = now
	return dt
}

// FixedClock advances by Step every tick. Runs driven by it are
// reproducible.
type FixedClock struct {
	Step float64
}

func (c FixedClock) Tick() float64 {
	return c.Step
}

type TimeModule struct {
	// Clock defaults to a RealClock.
	Clock Clock
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	clock := mod.Clock
	if clock == nil {
		clock = NewRealClock()
	}
	cmd.AddResources(&Time{clock: clock})
	app.UseSystem(
		System(timeSystem).
			InStage(Prelude),
	)
}

func timeSystem(t *Time) {
	dt := t.clock.Tick()
	if dt < 0 {
		dt = 0
	}
	t.Dt = float32(dt)
	t.Now += dt
	t.Frame++
}
