package lightdemo

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type loggerModule struct {
	logger Logger
}

func (m loggerModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(m.logger)
}

func newObservedLogger(debug bool) (*DefaultLogger, *observer.ObservedLogs) {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	core, logs := observer.New(level)
	l := newZapLogger(zap.New(core), level)
	l.SetDebug(debug)
	return l, logs
}

func TestDefaultLogger_Levels(t *testing.T) {
	l, logs := newObservedLogger(false)

	assert.False(t, l.DebugEnabled())
	l.Debugf("hidden %d", 1)
	l.Infof("shown %d", 2)
	l.Warnf("careful")
	l.Errorf("broken: %v", "disk")

	entries := logs.TakeAll()
	require.Len(t, entries, 3)
	assert.Equal(t, "shown 2", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "broken: disk", entries[2].Message)

	l.SetDebug(true)
	assert.True(t, l.DebugEnabled())
	l.Debugf("now visible")
	assert.Equal(t, 1, logs.FilterMessage("now visible").Len())
}

func TestNewDefaultLogger(t *testing.T) {
	l := NewDefaultLogger("test", true)
	assert.True(t, l.DebugEnabled())

	var _ Logger = l
	assert.NotPanics(t, func() { _ = l.Sync() })
}

func TestLogging_RigLogsLightCreation(t *testing.T) {
	l, logs := newObservedLogger(true)
	app := newLightsApp(loggerModule{logger: l})
	spawnTestRig(app, NewTransform(mgl32.Vec3{}), NewLightRigComponent(3))

	app.Step()

	created := logs.FilterMessageSnippet("created spot light")
	assert.Equal(t, 3, created.Len())
	for _, e := range created.All() {
		assert.Equal(t, zapcore.DebugLevel, e.Level)
	}
}

func TestLogging_LightReport(t *testing.T) {
	l, logs := newObservedLogger(true)
	app := newLightsApp(loggerModule{logger: l}, ReportModule{Every: 2})
	spawnTestRig(app, NewTransform(mgl32.Vec3{}), NewLightRigComponent(2))

	app.Step()
	app.Step()

	periodic := logs.FilterMessageSnippet("cone=")
	assert.Equal(t, 2, periodic.Len(), "one line per light on the second frame")
	for _, e := range periodic.All() {
		assert.Equal(t, zapcore.DebugLevel, e.Level)
	}

	logs.TakeAll()
	LogLightReport(app.Commands())
	final := logs.FilterMessageSnippet("cone=").FilterLevelExact(zapcore.InfoLevel)
	assert.Equal(t, 2, final.Len())
}

func TestLogging_ReportSilentWithoutDebug(t *testing.T) {
	l, logs := newObservedLogger(false)
	app := newLightsApp(loggerModule{logger: l}, ReportModule{Every: 1})
	spawnTestRig(app, NewTransform(mgl32.Vec3{}), NewLightRigComponent(2))

	app.Run(3)

	assert.Zero(t, logs.FilterMessageSnippet("cone=").Len())
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.SetDebug(true)

	assert.False(t, l.DebugEnabled())
	assert.NotPanics(t, func() {
		l.Debugf("a %d", 1)
		l.Infof("b")
		l.Warnf("c")
		l.Errorf("d")
	})
	assert.IsType(t, &nopLogger{}, NewAppBuilder().Build().Logger())
}
