package lightdemo

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addWanderLight(cmd *Commands, owner EntityId, ownerTr TransformComponent, local mgl32.Vec3) EntityId {
	lt := identityLocal(local)
	var world TransformComponent
	world.Position, world.Rotation, world.Scale = composeTransform(ownerTr, *lt)
	return cmd.AddEntity(&Parent{Entity: owner}, lt, &world, &SpotLightComponent{ConeOuter: 5, Color: White})
}

func spawnWanderScene(app *App, ownerTr TransformComponent, w *LightWanderComponent, locals ...mgl32.Vec3) (EntityId, []EntityId) {
	cmd := app.Commands()
	owner := cmd.AddEntity(&ownerTr, w)
	lights := make([]EntityId, 0, len(locals))
	for _, local := range locals {
		lights = append(lights, addWanderLight(cmd, owner, ownerTr, local))
	}
	app.FlushCommands()
	return owner, lights
}

func TestLightWander_NewLightsGetTargetsOnFirstUpdate(t *testing.T) {
	app := newLightsApp()
	cmd := app.Commands()
	ownerTr := NewTransform(mgl32.Vec3{})
	owner, lights := spawnWanderScene(app, ownerTr, NewLightWanderComponent(), mgl32.Vec3{}, mgl32.Vec3{20, 0, 0})

	w := GetComponent[LightWanderComponent](cmd, owner)
	for _, id := range lights {
		_, ok := w.Target(id)
		require.False(t, ok)
	}

	app.Step()

	w = GetComponent[LightWanderComponent](cmd, owner)
	for _, id := range lights {
		target, ok := w.Target(id)
		require.True(t, ok, "light %d has no target", id)
		assert.GreaterOrEqual(t, target.ConeAngle, float32(1.5))
		assert.LessOrEqual(t, target.ConeAngle, float32(9))
		assert.True(t, w.Bounds.Contains(target.Position), "target %v outside bounds", target.Position)
	}

	// A light that shows up later is picked up on the frame it appears.
	late := addWanderLight(cmd, owner, ownerTr, mgl32.Vec3{0, 30, 0})
	app.FlushCommands()
	app.Step()

	_, ok := GetComponent[LightWanderComponent](cmd, owner).Target(late)
	assert.True(t, ok)
	assert.Equal(t, 3, GetComponent[LightWanderComponent](cmd, owner).TrackedLights())
}

func TestLightWander_IgnoresLightsOutsideSubtree(t *testing.T) {
	app := newLightsApp()
	cmd := app.Commands()
	owner, _ := spawnWanderScene(app, NewTransform(mgl32.Vec3{}), NewLightWanderComponent(), mgl32.Vec3{})

	strayTr := NewTransform(mgl32.Vec3{1000, 0, 0})
	stray := cmd.AddEntity(&strayTr, &SpotLightComponent{ConeOuter: 5})
	app.FlushCommands()

	app.Step()

	_, ok := GetComponent[LightWanderComponent](cmd, owner).Target(stray)
	assert.False(t, ok)
	assert.Equal(t, mgl32.Vec3{1000, 0, 0}, GetComponent[TransformComponent](cmd, stray).Position)
}

func TestLightWander_InterpolatesTowardTarget(t *testing.T) {
	app := newLightsApp()
	cmd := app.Commands()
	owner, lights := spawnWanderScene(app, NewTransform(mgl32.Vec3{}), NewLightWanderComponent(), mgl32.Vec3{})
	light := lights[0]

	app.Step()

	target, ok := GetComponent[LightWanderComponent](cmd, owner).Target(light)
	require.True(t, ok)
	pos := GetComponent[TransformComponent](cmd, light).Position
	cone := GetComponent[SpotLightComponent](cmd, light).ConeOuter

	app.Step()

	dt := float32(testStep)
	wantPos := pos.Add(target.Position.Sub(pos).Mul(dt))
	wantCone := cone + (target.ConeAngle-cone)*3*dt

	assert.InDelta(t, 0, GetComponent[TransformComponent](cmd, light).Position.Sub(wantPos).Len(), 1e-3)
	assert.InDelta(t, wantCone, GetComponent[SpotLightComponent](cmd, light).ConeOuter, 1e-5)
}

func TestLightWander_ArrivalPicksNewTarget(t *testing.T) {
	app := newLightsApp()
	cmd := app.Commands()
	owner, lights := spawnWanderScene(app, NewTransform(mgl32.Vec3{}), NewLightWanderComponent(), mgl32.Vec3{})
	light := lights[0]

	app.Step()

	for i := 0; i < 20; i++ {
		before, _ := GetComponent[LightWanderComponent](cmd, owner).Target(light)
		require.True(t, SetWorldPosition(cmd, light, before.Position.Add(mgl32.Vec3{3, 0, 0})))

		app.Step()

		after, ok := GetComponent[LightWanderComponent](cmd, owner).Target(light)
		require.True(t, ok)
		assert.NotEqual(t, before, after, "iteration %d", i)
		assert.GreaterOrEqual(t, after.ConeAngle, float32(1.5))
		assert.LessOrEqual(t, after.ConeAngle, float32(9))
	}
}

func TestLightWander_KeepsTargetUntilArrival(t *testing.T) {
	app := newLightsApp()
	cmd := app.Commands()
	w := NewLightWanderComponent()
	owner, lights := spawnWanderScene(app, NewTransform(mgl32.Vec3{}), w, mgl32.Vec3{})
	light := lights[0]

	app.Step()

	target, _ := GetComponent[LightWanderComponent](cmd, owner).Target(light)
	// Park the light on the far side of the box so it cannot arrive in one frame.
	far := target.Position.Mul(-1).Add(mgl32.Vec3{400, 0, 0})
	require.True(t, SetWorldPosition(cmd, light, far))

	app.Step()

	again, _ := GetComponent[LightWanderComponent](cmd, owner).Target(light)
	assert.Equal(t, target, again)
}

func TestLightWander_StaysInsideBounds(t *testing.T) {
	app := newLightsApp()
	cmd := app.Commands()
	w := NewLightWanderComponent()
	w.Bounds = BBox{Mins: mgl32.Vec3{-20, -20, -20}, Maxs: mgl32.Vec3{20, 20, 20}}
	ownerTr := NewTransform(mgl32.Vec3{0, 0, 100})
	_, lights := spawnWanderScene(app, ownerTr, w, mgl32.Vec3{}, mgl32.Vec3{10, 10, 10})

	eps := mgl32.Vec3{1e-3, 1e-3, 1e-3}
	loose := BBox{Mins: w.Bounds.Mins.Sub(eps), Maxs: w.Bounds.Maxs.Add(eps)}
	for frame := 0; frame < 600; frame++ {
		app.Step()
		for _, id := range lights {
			local := ownerTr.PointToLocal(GetComponent[TransformComponent](cmd, id).Position)
			require.True(t, loose.Contains(local), "frame %d: light %d at %v", frame, id, local)
		}
	}
}

func TestLightWander_ResetTargetRanges(t *testing.T) {
	rng := NewRandom(99)
	w := NewLightWanderComponent()
	w.Bounds = BBox{Mins: mgl32.Vec3{-5, 0, 10}, Maxs: mgl32.Vec3{5, 2, 30}}
	owner := NewTransform(mgl32.Vec3{100, 0, 0})

	for i := 0; i < 1000; i++ {
		target := w.ResetTarget(owner, EntityId(i%3), rng)
		assert.GreaterOrEqual(t, target.ConeAngle, float32(1.5))
		assert.LessOrEqual(t, target.ConeAngle, float32(9))
		assert.True(t, w.Bounds.Contains(target.Position.Sub(owner.Position)), "target %v", target.Position)
	}
	assert.Equal(t, 3, w.TrackedLights())

	var zero LightWanderComponent
	assert.NotPanics(t, func() { zero.ResetTarget(owner, 1, rng) })
}

func TestLightWander_StaleTargets(t *testing.T) {
	for _, prune := range []bool{false, true} {
		app := newLightsApp()
		cmd := app.Commands()
		w := NewLightWanderComponent()
		w.PruneStale = prune
		owner, lights := spawnWanderScene(app, NewTransform(mgl32.Vec3{}), w, mgl32.Vec3{}, mgl32.Vec3{5, 5, 5})

		app.Step()
		require.Equal(t, 2, GetComponent[LightWanderComponent](cmd, owner).TrackedLights())

		cmd.RemoveEntity(lights[1])
		app.FlushCommands()
		app.Step()

		w = GetComponent[LightWanderComponent](cmd, owner)
		if prune {
			assert.Equal(t, 1, w.TrackedLights())
			_, ok := w.Target(lights[1])
			assert.False(t, ok)
		} else {
			assert.Equal(t, 2, w.TrackedLights(), "entries for destroyed lights are kept")
		}
	}
}

func TestLightWander_DrawsBounds(t *testing.T) {
	app := newLightsApp()
	cmd := app.Commands()
	ownerTr := NewTransform(mgl32.Vec3{7, 0, 0})
	w := NewLightWanderComponent()
	spawnWanderScene(app, ownerTr, w)

	app.Step()

	shapes := GetResource[Gizmos](cmd).Shapes()
	require.Len(t, shapes, 1)
	assert.Equal(t, GizmoCube, shapes[0].Type)
	assert.Equal(t, w.Bounds.Mins, shapes[0].P1)
	assert.Equal(t, w.Bounds.Maxs, shapes[0].P2)
	assert.Equal(t, ownerTr.ObjectToWorld(), shapes[0].ModelMatrix)
}

func TestLightWander_OwnerLightStaysPut(t *testing.T) {
	app := newLightsApp()
	cmd := app.Commands()
	ownerTr := NewTransform(mgl32.Vec3{})
	owner := cmd.AddEntity(&ownerTr, NewLightWanderComponent(), &SpotLightComponent{ConeOuter: 5, Color: White})
	child := addWanderLight(cmd, owner, ownerTr, mgl32.Vec3{})
	app.FlushCommands()

	bounds := NewLightWanderComponent().Bounds
	for frame := 0; frame < 600; frame++ {
		app.Step()
	}

	w := GetComponent[LightWanderComponent](cmd, owner)
	_, tracked := w.Target(owner)
	assert.False(t, tracked)
	assert.Equal(t, 1, w.TrackedLights())
	assert.Equal(t, mgl32.Vec3{}, GetComponent[TransformComponent](cmd, owner).Position)
	assert.Equal(t, float32(5), GetComponent[SpotLightComponent](cmd, owner).ConeOuter)

	eps := mgl32.Vec3{1e-3, 1e-3, 1e-3}
	loose := BBox{Mins: bounds.Mins.Sub(eps), Maxs: bounds.Maxs.Add(eps)}
	assert.True(t, loose.Contains(GetComponent[TransformComponent](cmd, child).Position))
}

func TestLightWanderModule_InstallsRandomWhenMissing(t *testing.T) {
	app := NewAppBuilder().UseModule(
		TimeModule{Clock: FixedClock{Step: testStep}},
		HierarchyModule{},
		LightWanderModule{},
	).Build()
	cmd := app.Commands()
	require.NotNil(t, GetResource[Random](cmd))

	owner, lights := spawnWanderScene(app, NewTransform(mgl32.Vec3{}), NewLightWanderComponent(), mgl32.Vec3{})
	require.NotPanics(t, app.Step)

	_, ok := GetComponent[LightWanderComponent](cmd, owner).Target(lights[0])
	assert.True(t, ok)
}
