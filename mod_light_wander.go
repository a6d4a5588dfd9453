package lightdemo

import (
	"github.com/go-gl/mathgl/mgl32"
)

const (
	wanderArriveDistance = 10
	wanderConeMin        = 1.5
	wanderConeMax        = 9
	wanderConeLerpRate   = 3
)

// WanderTarget is where a wandering light is heading.
type WanderTarget struct {
	Position  mgl32.Vec3
	ConeAngle float32
}

// LightWanderComponent makes every spot light below its entity in the
// hierarchy drift toward random points inside Bounds, given in the
// entity's local space. A light on the entity itself is left alone.
// Targets are kept per light. Lights that leave the subtree keep their
// entry unless PruneStale is set.
type LightWanderComponent struct {
	Bounds     BBox
	PruneStale bool

	targets map[EntityId]WanderTarget
}

func NewLightWanderComponent() *LightWanderComponent {
	return &LightWanderComponent{
		Bounds:  BBoxFromPositionAndSize(mgl32.Vec3{}, 300),
		targets: make(map[EntityId]WanderTarget),
	}
}

// Target returns the light's current target.
func (w *LightWanderComponent) Target(light EntityId) (WanderTarget, bool) {
	t, ok := w.targets[light]
	return t, ok
}

// TrackedLights is the number of lights with a stored target.
func (w *LightWanderComponent) TrackedLights() int {
	return len(w.targets)
}

// ResetTarget picks a new cone angle in [1.5, 9] and a random point of
// Bounds mapped to world space by owner.
func (w *LightWanderComponent) ResetTarget(owner TransformComponent, light EntityId, rng *Random) WanderTarget {
	if w.targets == nil {
		w.targets = make(map[EntityId]WanderTarget)
	}
	t := WanderTarget{
		ConeAngle: rng.Range(wanderConeMin, wanderConeMax),
		Position:  owner.PointToWorld(w.Bounds.RandomPointInside(rng)),
	}
	w.targets[light] = t
	return t
}

func (w *LightWanderComponent) updateLight(cmd *Commands, owner TransformComponent, light EntityId, dt float32, rng *Random) {
	tr := GetComponent[TransformComponent](cmd, light)
	spot := GetComponent[SpotLightComponent](cmd, light)
	if tr == nil || spot == nil {
		return
	}

	target, ok := w.targets[light]
	if !ok {
		target = w.ResetTarget(owner, light, rng)
	}

	position := lerpVec3(tr.Position, target.Position, dt)
	SetWorldPosition(cmd, light, position)
	spot.ConeOuter = lerpFloat(spot.ConeOuter, target.ConeAngle, dt*wanderConeLerpRate)

	if position.Sub(target.Position).Len() < wanderArriveDistance {
		w.ResetTarget(owner, light, rng)
	}
}

func (w *LightWanderComponent) prune(seen set[EntityId]) int {
	pruned := 0
	for light := range w.targets {
		if _, ok := seen[light]; !ok {
			delete(w.targets, light)
			pruned++
		}
	}
	return pruned
}

type LightWanderModule struct{}

func (LightWanderModule) Install(app *App, cmd *Commands) {
	ensureGizmos(app, cmd)
	ensureRandom(app, cmd)
	app.UseSystem(
		System(lightWanderSystem).
			InStage(Update),
	)
	app.UseSystem(
		System(lightWanderGizmoSystem).
			InStage(Render),
	)
}

func lightWanderSystem(cmd *Commands, t *Time, rng *Random) {
	hierarchy := childIndex(cmd)
	MakeQuery2[LightWanderComponent, TransformComponent](cmd).Map(func(eid EntityId, w *LightWanderComponent, owner *TransformComponent) bool {
		seen := make(set[EntityId])
		for _, id := range hierarchy.subtree(eid)[1:] {
			if GetComponent[SpotLightComponent](cmd, id) == nil {
				continue
			}
			seen[id] = struct{}{}
			w.updateLight(cmd, *owner, id, t.Dt, rng)
		}
		if w.PruneStale {
			if n := w.prune(seen); n > 0 {
				cmd.Logger().Debugf("light wander %d pruned %d stale targets", eid, n)
			}
		}
		return true
	})
}

func lightWanderGizmoSystem(cmd *Commands, g *Gizmos) {
	if !g.Enabled {
		return
	}
	MakeQuery2[LightWanderComponent, TransformComponent](cmd).Map(func(eid EntityId, w *LightWanderComponent, owner *TransformComponent) bool {
		g.Transform = owner.ObjectToWorld()
		g.Color = [4]float32{1, 1, 1, 1}
		g.LineBBox(w.Bounds)
		return true
	})
	g.Transform = mgl32.Ident4()
}
