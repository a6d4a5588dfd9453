package lightdemo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backwardsClock struct{}

func (backwardsClock) Tick() float64 { return -1 }

func TestTime_FixedClockAccumulates(t *testing.T) {
	app := NewAppBuilder().UseModule(TimeModule{Clock: FixedClock{Step: 0.25}}).Build()
	cmd := app.Commands()

	app.Run(3)

	tm := GetResource[Time](cmd)
	require.NotNil(t, tm)
	assert.Equal(t, float32(0.25), tm.Dt)
	assert.InDelta(t, 0.75, tm.Now, 1e-9)
	assert.Equal(t, uint64(3), tm.Frame)
	assert.Equal(t, uint64(3), app.Frame())
}

func TestTime_NegativeTickIsClamped(t *testing.T) {
	app := NewAppBuilder().UseModule(TimeModule{Clock: backwardsClock{}}).Build()

	app.Step()

	tm := GetResource[Time](app.Commands())
	assert.Zero(t, tm.Dt)
	assert.Zero(t, tm.Now)
}

func TestTime_DefaultsToRealClock(t *testing.T) {
	app := NewAppBuilder().UseModule(TimeModule{}).Build()

	app.Step()
	app.Step()

	tm := GetResource[Time](app.Commands())
	assert.IsType(t, &RealClock{}, tm.clock)
	assert.GreaterOrEqual(t, tm.Dt, float32(0))
	assert.GreaterOrEqual(t, tm.Now, 0.0)
}
