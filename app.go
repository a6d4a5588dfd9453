package lightdemo

import (
	"fmt"
	"reflect"
	"runtime"
)

type systemFn any

type Module interface {
	Install(app *App, cmd *Commands)
}

// App owns the ECS, the resources and the per-stage system lists. Systems
// are plain functions whose arguments are pointers to resources or
// *Commands; they are resolved by type when called.
type App struct {
	running bool
	stopped bool
	frame   uint64

	stages    []Stage
	systems   map[string][]systemFn
	resources map[reflect.Type]any
	ecs       *Ecs

	// Command buffering
	pendingAdditions    []pendingAdd
	pendingRemovals     []EntityId
	pendingCompAdds     []pendingCompChange
	pendingCompRemovals []pendingCompChange
}

type pendingAdd struct {
	eid        EntityId
	components []any
}

type pendingCompChange struct {
	eid        EntityId
	components []any
}

func (app *App) Commands() *Commands {
	return &Commands{app: app}
}

// Frame returns the number of frames stepped so far.
func (app *App) Frame() uint64 {
	return app.frame
}

// Step runs every stage once.
func (app *App) Step() {
	app.running = true
	app.callSystems()
	app.frame++
}

// Run steps frames until Stop is called or, when frames > 0, until that
// many frames have run.
func (app *App) Run(frames uint64) {
	app.stopped = false
	for n := uint64(0); frames == 0 || n < frames; n++ {
		app.Step()
		if app.stopped {
			break
		}
	}
	app.running = false
}

// Stop ends Run after the current frame.
func (app *App) Stop() {
	app.stopped = true
}

func (app *App) callSystems() {
	for _, stage := range app.stages {
		for _, system := range app.systems[stage.Name] {
			app.callSystem(system)
		}
		app.FlushCommands()
	}
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if resourceType.Kind() != reflect.Pointer {
			panic(fmt.Sprintf("resource %s must be a pointer", resourceType))
		}
		if _, ok := app.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}

		app.resources[resourceType.Elem()] = resource
	}
	return app
}

func (app *App) hasResource(resourceType reflect.Type) bool {
	_, ok := app.resources[resourceType]
	return ok
}

func resourceOf[T any](app *App) *T {
	r, ok := app.resources[reflect.TypeFor[T]()]
	if !ok {
		return nil
	}
	return r.(*T)
}

var typeOfCommands = reflect.TypeOf(Commands{})

func (app *App) callSystem(system systemFn) {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)

	args := make([]reflect.Value, systemType.NumIn())
	for i := 0; i < systemType.NumIn(); i++ {
		argType := systemType.In(i)

		if argType.Kind() == reflect.Pointer && argType.Elem() == typeOfCommands {
			args[i] = reflect.ValueOf(&Commands{app: app})
		} else if argType.Kind() != reflect.Pointer {
			panic(app.unresolved(systemValue, systemType, argType))
		} else if resource, ok := app.resources[argType.Elem()]; ok {
			args[i] = reflect.ValueOf(resource)
		} else {
			panic(app.unresolved(systemValue, systemType, argType))
		}
	}
	systemValue.Call(args)
}

func (app *App) unresolved(systemValue reflect.Value, systemType, argType reflect.Type) string {
	msg := fmt.Sprintf("Unable to resolve System dependency.\nSystem: %s\nSystem type: %s\nDependency: %s",
		runtime.FuncForPC(systemValue.Pointer()).Name(),
		systemType,
		argType,
	)
	app.Logger().Errorf("%s", msg)
	return msg
}

// FlushCommands applies buffered structural changes: removals, then
// additions, then component writes and component removals. An entity
// added and removed in the same window is never inserted.
func (app *App) FlushCommands() {
	if len(app.pendingAdditions) == 0 && len(app.pendingRemovals) == 0 &&
		len(app.pendingCompAdds) == 0 && len(app.pendingCompRemovals) == 0 {
		return
	}

	removed := make(set[EntityId], len(app.pendingRemovals))
	for _, eid := range app.pendingRemovals {
		removed[eid] = struct{}{}
		app.ecs.removeEntity(eid)
	}
	app.pendingRemovals = app.pendingRemovals[:0]

	for _, add := range app.pendingAdditions {
		if _, gone := removed[add.eid]; gone {
			continue
		}
		app.ecs.insertEntity(add.eid, add.components...)
	}
	app.pendingAdditions = app.pendingAdditions[:0]

	for _, change := range app.pendingCompAdds {
		app.ecs.addComponents(change.eid, change.components...)
	}
	app.pendingCompAdds = app.pendingCompAdds[:0]

	for _, change := range app.pendingCompRemovals {
		app.ecs.removeComponents(change.eid, change.components...)
	}
	app.pendingCompRemovals = app.pendingCompRemovals[:0]
}
