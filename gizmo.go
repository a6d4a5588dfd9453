package lightdemo

import "github.com/go-gl/mathgl/mgl32"

type GizmoType int

const (
	GizmoLine GizmoType = iota
	GizmoCube
	GizmoSphere
)

// GizmoShape is one wireframe debug primitive. Geometry is in the space
// that ModelMatrix maps to world space.
type GizmoShape struct {
	Type        GizmoType
	Color       [4]float32
	ModelMatrix mgl32.Mat4

	// Sphere: P1 is the center. Cube: P1 and P2 are the corners.
	// Line: P1 is the start and P2 the end.
	P1, P2 mgl32.Vec3
	Radius float32
}

// Gizmos is an immediate-mode debug draw buffer. Systems draw into it every
// frame; it is cleared at the start of the next frame.
type Gizmos struct {
	Enabled bool

	Color     [4]float32
	Transform mgl32.Mat4

	shapes []GizmoShape
}

func NewGizmos(enabled bool) *Gizmos {
	return &Gizmos{
		Enabled:   enabled,
		Color:     [4]float32{1, 1, 1, 1},
		Transform: mgl32.Ident4(),
	}
}

// Shapes returns what was drawn during the current frame.
func (g *Gizmos) Shapes() []GizmoShape {
	return g.shapes
}

func (g *Gizmos) Clear() {
	g.shapes = g.shapes[:0]
	g.Color = [4]float32{1, 1, 1, 1}
	g.Transform = mgl32.Ident4()
}

func (g *Gizmos) LineSphere(center mgl32.Vec3, radius float32) {
	g.shapes = append(g.shapes, GizmoShape{
		Type:        GizmoSphere,
		Color:       g.Color,
		ModelMatrix: g.Transform,
		P1:          center,
		Radius:      radius,
	})
}

func (g *Gizmos) LineBBox(box BBox) {
	g.shapes = append(g.shapes, GizmoShape{
		Type:        GizmoCube,
		Color:       g.Color,
		ModelMatrix: g.Transform,
		P1:          box.Mins,
		P2:          box.Maxs,
	})
}

func (g *Gizmos) Line(start, end mgl32.Vec3) {
	g.shapes = append(g.shapes, GizmoShape{
		Type:        GizmoLine,
		Color:       g.Color,
		ModelMatrix: g.Transform,
		P1:          start,
		P2:          end,
	})
}

type GizmoModule struct {
	Enabled bool
}

func (m GizmoModule) Install(app *App, cmd *Commands) {
	ensureGizmos(app, cmd).Enabled = m.Enabled
}

// ensureGizmos returns the Gizmos resource, installing a disabled one and
// its clear system on first use.
func ensureGizmos(app *App, cmd *Commands) *Gizmos {
	if g := resourceOf[Gizmos](app); g != nil {
		return g
	}
	g := NewGizmos(false)
	cmd.AddResources(g)
	app.UseSystem(
		System(gizmoClearSystem).
			InStage(Prelude),
	)
	return g
}

func gizmoClearSystem(g *Gizmos) {
	g.Clear()
}

func rgba(c [3]float32) [4]float32 {
	return [4]float32{c[0], c[1], c[2], 1}
}
