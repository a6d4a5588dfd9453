package lightdemo

import (
	"github.com/go-gl/mathgl/mgl32"
)

// TransformComponent is an entity's world transform.
type TransformComponent struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

// LocalTransformComponent is the transform relative to the Parent entity.
type LocalTransformComponent struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

type Parent struct {
	Entity EntityId
}

func NewTransform(position mgl32.Vec3) TransformComponent {
	return TransformComponent{
		Position: position,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

func (t TransformComponent) ObjectToWorld() mgl32.Mat4 {
	// M = T * R * S
	translate := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	rotate := t.Rotation.Normalize().Mat4()
	scale := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())

	return translate.Mul4(rotate).Mul4(scale)
}

func (t TransformComponent) WorldToObject() mgl32.Mat4 {
	// inv(M) = inv(S) * inv(R) * inv(T)
	invScale := mgl32.Scale3D(safeInv(t.Scale.X()), safeInv(t.Scale.Y()), safeInv(t.Scale.Z()))
	invRotate := t.Rotation.Normalize().Conjugate().Mat4()
	invTranslate := mgl32.Translate3D(-t.Position.X(), -t.Position.Y(), -t.Position.Z())

	return invScale.Mul4(invRotate).Mul4(invTranslate)
}

// PointToWorld maps a point in this transform's local space to world space.
func (t TransformComponent) PointToWorld(local mgl32.Vec3) mgl32.Vec3 {
	return mgl32.TransformCoordinate(local, t.ObjectToWorld())
}

// PointToLocal maps a world-space point into this transform's local space.
func (t TransformComponent) PointToLocal(world mgl32.Vec3) mgl32.Vec3 {
	return mgl32.TransformCoordinate(world, t.WorldToObject())
}

func safeInv(v float32) float32 {
	if v == 0 {
		return 0
	}
	return 1 / v
}
