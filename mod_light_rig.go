package lightdemo

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
)

var ErrNotLightRig = errors.New("entity is not a light rig")

// LightRigComponent spins a ring of spot lights around its entity in the
// entity's local Y/Z plane. The rig owns the lights it creates.
type LightRigComponent struct {
	Radius         float32
	RPM            float32 // degrees added to every light's angle per second
	LerpSpeed      float32
	ShadowsEnabled bool
	ConeOuter      float32
	MaxDistance    float32
	Attenuation    float32

	// Enabled is the desired state; the lifecycle system creates or
	// destroys lights when it differs from the current one.
	Enabled bool

	lightCount int
	active     bool
	lights     []EntityId
}

// RigLightComponent marks a light created by a rig.
type RigLightComponent struct {
	Rig   EntityId
	Index int
}

func NewLightRigComponent(lightCount int) *LightRigComponent {
	return &LightRigComponent{
		Radius:      20,
		RPM:         60,
		LerpSpeed:   3,
		ConeOuter:   10,
		MaxDistance: 500,
		Attenuation: 1,
		Enabled:     true,
		lightCount:  max(lightCount, 0),
	}
}

func (r *LightRigComponent) LightCount() int { return r.lightCount }

func (r *LightRigComponent) Active() bool { return r.active }

func (r *LightRigComponent) Lights() []EntityId { return slices.Clone(r.lights) }

// SetLightRigActive enables or disables a rig right away. Activation
// deletes the rig's lights and creates LightCount new white ones at the
// rig's position; deactivation deletes them all.
func SetLightRigActive(cmd *Commands, rig EntityId, active bool) error {
	r := GetComponent[LightRigComponent](cmd, rig)
	if r == nil {
		return fmt.Errorf("%w: %d", ErrNotLightRig, rig)
	}
	r.Enabled = active
	r.setActive(cmd, rig, active)
	return nil
}

// SetLightRigCount sets the number of lights, floored at zero. A running,
// active rig rebuilds its whole light set at the new count.
func SetLightRigCount(cmd *Commands, rig EntityId, n int) error {
	r := GetComponent[LightRigComponent](cmd, rig)
	if r == nil {
		return fmt.Errorf("%w: %d", ErrNotLightRig, rig)
	}
	r.lightCount = max(n, 0)
	if r.active && cmd.IsRunning() {
		r.createLights(cmd, rig)
	}
	return nil
}

func (r *LightRigComponent) setActive(cmd *Commands, rig EntityId, active bool) {
	if active {
		r.createLights(cmd, rig)
	} else {
		r.destroyLights(cmd)
	}
	r.active = active
	cmd.Logger().Debugf("light rig %d active=%v lights=%d", rig, active, len(r.lights))
}

func (r *LightRigComponent) createLights(cmd *Commands, rig EntityId) {
	r.destroyLights(cmd)

	var at mgl32.Vec3
	if tr := GetComponent[TransformComponent](cmd, rig); tr != nil {
		at = tr.Position
	}

	scene := NewSceneLights(cmd)
	for i := 0; i < r.lightCount; i++ {
		r.lights = append(r.lights, scene.CreateSpotLight(at, White, &RigLightComponent{Rig: rig, Index: i}))
	}
}

func (r *LightRigComponent) destroyLights(cmd *Commands) {
	scene := NewSceneLights(cmd)
	for _, light := range r.lights {
		scene.DeleteSpotLight(light)
	}
	r.lights = nil
}

// OrbitAngle is the angle in degrees, wrapped to [0, 360), of light index
// out of count at time now.
func OrbitAngle(index, count int, rpm float32, now float64) float32 {
	if count <= 0 {
		return 0
	}
	base := 360 / float64(count) * float64(index)
	angle := float32(WrapDegrees(base + float64(rpm)*now))
	if angle >= 360 {
		// float32 rounding of values just below 360
		angle = 0
	}
	return angle
}

// OrbitOffset is the rig-local position for an angle on the Y/Z circle.
func OrbitOffset(angle, radius float32) mgl32.Vec3 {
	rad := float64(mgl32.DegToRad(angle))
	return mgl32.Vec3{0, radius * float32(math.Cos(rad)), radius * float32(math.Sin(rad))}
}

func (r *LightRigComponent) update(cmd *Commands, rigTr TransformComponent, dt float32, now float64) {
	count := len(r.lights)
	for i, id := range r.lights {
		tr := GetComponent[TransformComponent](cmd, id)
		light := GetComponent[SpotLightComponent](cmd, id)
		if tr == nil || light == nil {
			continue
		}

		angle := OrbitAngle(i, count, r.RPM, now)
		target := rigTr.PointToWorld(OrbitOffset(angle, r.Radius))
		tr.Position = lerpVec3(tr.Position, target, dt*r.LerpSpeed)
		tr.Rotation = rigTr.Rotation

		light.Color = HueColor(float64(angle))
		light.ShadowsEnabled = r.ShadowsEnabled
		light.ConeOuter = r.ConeOuter
		light.ConeInner = r.ConeOuter * 0.8
		light.Range = r.MaxDistance
		light.QuadraticAttenuation = r.Attenuation
	}
}

type LightRigModule struct{}

func (LightRigModule) Install(app *App, cmd *Commands) {
	ensureGizmos(app, cmd)
	app.UseSystem(
		System(lightRigLifecycleSystem).
			InStage(PreUpdate),
	)
	app.UseSystem(
		System(lightRigUpdateSystem).
			InStage(Update),
	)
	app.UseSystem(
		System(lightRigGizmoSystem).
			InStage(Render),
	)
}

// lightRigLifecycleSystem applies Enabled changes, keeps the light count
// in step and deletes rig lights their rig no longer owns, whether the rig
// entity is gone or its component was replaced.
func lightRigLifecycleSystem(cmd *Commands) {
	MakeQuery1[LightRigComponent](cmd).Map(func(eid EntityId, r *LightRigComponent) bool {
		if r.Enabled != r.active {
			r.setActive(cmd, eid, r.Enabled)
		} else if r.active && len(r.lights) != r.lightCount {
			r.createLights(cmd, eid)
		}
		return true
	})

	scene := NewSceneLights(cmd)
	MakeQuery1[RigLightComponent](cmd).Map(func(eid EntityId, rl *RigLightComponent) bool {
		rig := GetComponent[LightRigComponent](cmd, rl.Rig)
		if rig == nil || !slices.Contains(rig.lights, eid) {
			scene.DeleteSpotLight(eid)
		}
		return true
	})
}

func lightRigUpdateSystem(cmd *Commands, t *Time) {
	MakeQuery2[LightRigComponent, TransformComponent](cmd).Map(func(eid EntityId, r *LightRigComponent, tr *TransformComponent) bool {
		r.update(cmd, *tr, t.Dt, t.Now)
		return true
	})
}

func lightRigGizmoSystem(cmd *Commands, g *Gizmos) {
	if !g.Enabled {
		return
	}
	MakeQuery2[LightRigComponent, TransformComponent](cmd).Map(func(eid EntityId, r *LightRigComponent, rigTr *TransformComponent) bool {
		g.Transform = rigTr.ObjectToWorld()
		for _, id := range r.lights {
			tr := GetComponent[TransformComponent](cmd, id)
			light := GetComponent[SpotLightComponent](cmd, id)
			if tr == nil || light == nil {
				continue
			}
			g.Color = rgba(light.Color)
			g.LineSphere(rigTr.PointToLocal(tr.Position), 2)
		}
		return true
	})
	g.Transform = mgl32.Ident4()
}
