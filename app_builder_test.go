package lightdemo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type MockModule struct {
	installed bool
	spawned   EntityId
}

type mockTag struct{}

func (m *MockModule) Install(app *App, commands *Commands) {
	m.installed = true
	m.spawned = commands.AddEntity(&mockTag{})
}

func TestAppBuilder_DefaultStages(t *testing.T) {
	app := NewAppBuilder().Build()

	names := make([]string, 0, len(app.stages))
	for _, s := range app.stages {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"Prelude", "PreUpdate", "Update", "PostUpdate", "PreRender", "Render", "PostRender", "Finale"}, names)
}

func TestAppBuilder_UseModule(t *testing.T) {
	builder := NewAppBuilder()
	builder.UseModule(&MockModule{})

	if len(builder.modules) != 1 {
		t.Errorf("Expected modules to contain 1 module, got %v", len(builder.modules))
	}
}

func TestAppBuilder_Build_WithMultipleModules(t *testing.T) {
	module1 := &MockModule{}
	module2 := &MockModule{}

	app := NewAppBuilder().
		UseModule(module1).
		UseModule(module2).
		Build()

	if !module1.installed {
		t.Errorf("Expected Install to be called on the module 1, but it was not")
	}
	if !module2.installed {
		t.Errorf("Expected Install to be called on the module 2, but it was not")
	}

	cmd := app.Commands()
	assert.True(t, cmd.HasEntity(module1.spawned), "Build flushes entities spawned by modules")
	assert.True(t, cmd.HasEntity(module2.spawned))
}
