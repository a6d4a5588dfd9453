package lightdemo

import (
	"github.com/go-gl/mathgl/mgl32"
)

type HierarchyModule struct{}

func (HierarchyModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(TransformHierarchySystem).
			InStage(PostUpdate),
	)
}

// TransformHierarchySystem recomputes world transforms of parented
// entities from their local transforms. Roots are authoritative: their
// TransformComponent is mirrored into the local one when present.
func TransformHierarchySystem(cmd *Commands) {
	MakeQuery2[LocalTransformComponent, TransformComponent](cmd).Without(Parent{}).Map(func(eid EntityId, local *LocalTransformComponent, tr *TransformComponent) bool {
		local.Position = tr.Position
		local.Rotation = tr.Rotation
		local.Scale = tr.Scale
		return true
	})

	// Iterative passes; each one settles one more level of depth.
PassLoop:
	for pass := 0; pass < 8; pass++ {
		changed := false
		MakeQuery3[LocalTransformComponent, Parent, TransformComponent](cmd).Map(func(eid EntityId, local *LocalTransformComponent, parent *Parent, world *TransformComponent) bool {
			parentWorld := GetComponent[TransformComponent](cmd, parent.Entity)
			if parentWorld == nil {
				return true
			}

			newPos, newRot, newScale := composeTransform(*parentWorld, *local)
			if newPos != world.Position || newRot != world.Rotation || newScale != world.Scale {
				world.Position = newPos
				world.Rotation = newRot
				world.Scale = newScale
				changed = true
			}
			return true
		})
		if !changed {
			break PassLoop
		}
	}
}

func composeTransform(parentWorld TransformComponent, local LocalTransformComponent) (mgl32.Vec3, mgl32.Quat, mgl32.Vec3) {
	// WorldPos = ParentPos + ParentRot * (ParentScale * LocalPos)
	scaledLocalPos := mgl32.Vec3{
		local.Position.X() * parentWorld.Scale.X(),
		local.Position.Y() * parentWorld.Scale.Y(),
		local.Position.Z() * parentWorld.Scale.Z(),
	}
	pos := parentWorld.Position.Add(parentWorld.Rotation.Rotate(scaledLocalPos))
	rot := parentWorld.Rotation.Mul(local.Rotation).Normalize()
	scale := mgl32.Vec3{
		parentWorld.Scale.X() * local.Scale.X(),
		parentWorld.Scale.Y() * local.Scale.Y(),
		parentWorld.Scale.Z() * local.Scale.Z(),
	}
	return pos, rot, scale
}

// SetWorldPosition moves an entity in world space. For parented entities
// the local position is rewritten too, so the next hierarchy pass keeps it.
func SetWorldPosition(cmd *Commands, eid EntityId, position mgl32.Vec3) bool {
	tr := GetComponent[TransformComponent](cmd, eid)
	if tr == nil {
		return false
	}
	tr.Position = position

	parent := GetComponent[Parent](cmd, eid)
	local := GetComponent[LocalTransformComponent](cmd, eid)
	if parent == nil || local == nil {
		return true
	}
	if parentWorld := GetComponent[TransformComponent](cmd, parent.Entity); parentWorld != nil {
		local.Position = parentWorld.PointToLocal(position)
	}
	return true
}

// Subtree returns root followed by all of its descendants.
func Subtree(cmd *Commands, root EntityId) []EntityId {
	return childIndex(cmd).subtree(root)
}

type hierarchyIndex map[EntityId][]EntityId

func childIndex(cmd *Commands) hierarchyIndex {
	children := make(hierarchyIndex)
	MakeQuery1[Parent](cmd).Map(func(eid EntityId, parent *Parent) bool {
		children[parent.Entity] = append(children[parent.Entity], eid)
		return true
	})
	return children
}

func (h hierarchyIndex) subtree(root EntityId) []EntityId {
	res := []EntityId{root}
	visited := set[EntityId]{root: {}}
	for i := 0; i < len(res); i++ {
		for _, child := range h[res[i]] {
			if _, seen := visited[child]; seen {
				continue
			}
			visited[child] = struct{}{}
			res = append(res, child)
		}
	}
	return res
}
