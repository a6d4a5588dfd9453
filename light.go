package lightdemo

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"
)

type LightType uint32

const (
	LightTypePoint       LightType = 0
	LightTypeDirectional LightType = 1
	LightTypeSpot        LightType = 2
	LightTypeAmbient     LightType = 3
)

// SpotLightComponent is a cone light. Angles are in degrees.
type SpotLightComponent struct {
	Color                [3]float32 `gekko:"light" usage:"color"` // RGB
	ConeOuter            float32    `gekko:"light" usage:"cone_outer"`
	ConeInner            float32    `gekko:"light" usage:"cone_inner"`
	Range                float32    `gekko:"light" usage:"range"`
	QuadraticAttenuation float32    `gekko:"light" usage:"attenuation"`
	ShadowsEnabled       bool       `gekko:"light" usage:"shadows"`
}

func (l SpotLightComponent) Type() LightType { return LightTypeSpot }

var White = [3]float32{1, 1, 1}

// SceneLights creates and deletes spot light entities. Whoever creates a
// light through it owns the light and must delete it.
type SceneLights struct {
	cmd *Commands
}

func NewSceneLights(cmd *Commands) SceneLights {
	return SceneLights{cmd: cmd}
}

func (s SceneLights) CreateSpotLight(position mgl32.Vec3, color [3]float32, extra ...any) EntityId {
	tr := NewTransform(position)
	components := append([]any{&tr, &SpotLightComponent{
		Color:                color,
		ConeOuter:            45,
		ConeInner:            36,
		Range:                500,
		QuadraticAttenuation: 1,
	}}, extra...)
	eid := s.cmd.AddEntity(components...)
	s.cmd.Logger().Debugf("created spot light %d at %v", eid, position)
	return eid
}

func (s SceneLights) DeleteSpotLight(eid EntityId) {
	s.cmd.RemoveEntity(eid)
	s.cmd.Logger().Debugf("deleted spot light %d", eid)
}

// WrapDegrees folds an angle into [0, 360).
func WrapDegrees(angle float64) float64 {
	a := math.Mod(angle, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360 {
		a = 0
	}
	return a
}

// HueColor is the fully saturated, full value color whose hue is the given
// angle in degrees.
func HueColor(angle float64) [3]float32 {
	c := colorful.Hsv(WrapDegrees(angle), 1, 1)
	return [3]float32{float32(c.R), float32(c.G), float32(c.B)}
}

// ParseColor reads "#rrggbb" or "#rgb" into sRGB floats in [0, 1].
func ParseColor(hex string) ([3]float32, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return [3]float32{}, err
	}
	return [3]float32{float32(c.R), float32(c.G), float32(c.B)}, nil
}

func lerpVec3(from, to mgl32.Vec3, frac float32) mgl32.Vec3 {
	frac = mgl32.Clamp(frac, 0, 1)
	return from.Add(to.Sub(from).Mul(frac))
}

func lerpFloat(from, to, frac float32) float32 {
	frac = mgl32.Clamp(frac, 0, 1)
	return from + (to-from)*frac
}
