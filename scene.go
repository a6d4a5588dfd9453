package lightdemo

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"
)

// SceneIndex maps scene object names to the entities spawned for them.
type SceneIndex struct {
	Rigs      map[string]EntityId
	Wanderers map[string]EntityId

	// light lists each wanderer was last spawned with
	wanderLights map[string][]SpotLightConfig
}

func NewSceneIndex() *SceneIndex {
	return &SceneIndex{
		Rigs:         make(map[string]EntityId),
		Wanderers:    make(map[string]EntityId),
		wanderLights: make(map[string][]SpotLightConfig),
	}
}

// SpawnScene queues entities for every rig and wander volume in cfg and
// records them in idx.
func SpawnScene(cmd *Commands, cfg *SceneConfig, idx *SceneIndex) {
	for _, rig := range cfg.Rigs {
		idx.Rigs[rig.Name] = spawnRig(cmd, rig)
	}
	for _, w := range cfg.Wanderers {
		idx.Wanderers[w.Name] = spawnWanderer(cmd, w)
		idx.wanderLights[w.Name] = slices.Clone(w.Lights)
	}
}

func spawnRig(cmd *Commands, c RigConfig) EntityId {
	tr := c.Transform.toTransform()
	rig := NewLightRigComponent(c.LightCount)
	c.applyTo(rig)
	rig.Enabled = c.Enabled
	return cmd.AddEntity(&tr, rig)
}

func spawnWanderer(cmd *Commands, c WanderConfig) EntityId {
	tr := c.Transform.toTransform()
	w := NewLightWanderComponent()
	c.applyTo(w)
	owner := cmd.AddEntity(&tr, w)
	spawnWanderLights(cmd, owner, tr, c.Lights)
	return owner
}

func spawnWanderLights(cmd *Commands, owner EntityId, ownerTr TransformComponent, lights []SpotLightConfig) {
	for _, light := range lights {
		local := LocalTransformComponent{
			Position: light.Position,
			Rotation: mgl32.QuatIdent(),
			Scale:    mgl32.Vec3{1, 1, 1},
		}
		var world TransformComponent
		world.Position, world.Rotation, world.Scale = composeTransform(ownerTr, local)
		spot := light.component()
		cmd.AddEntity(&Parent{Entity: owner}, &local, &world, &spot)
	}
}

// despawnWanderLights removes the spot lights parented directly to owner.
func despawnWanderLights(cmd *Commands, owner EntityId) {
	for _, id := range Subtree(cmd, owner)[1:] {
		parent := GetComponent[Parent](cmd, id)
		if parent == nil || parent.Entity != owner || GetComponent[SpotLightComponent](cmd, id) == nil {
			continue
		}
		for _, sub := range Subtree(cmd, id) {
			cmd.RemoveEntity(sub)
		}
	}
}

// ApplyScene updates already spawned objects to match cfg. Rig property
// changes go through the rig setters, so a new light count rebuilds the
// rig's lights. A wanderer whose light list changed gets its spot light
// children respawned from the new list. Objects new to cfg are spawned;
// objects missing from it are torn down.
func ApplyScene(cmd *Commands, cfg *SceneConfig, idx *SceneIndex) {
	if g := GetResource[Gizmos](cmd); g != nil {
		g.Enabled = cfg.Gizmos
	}

	keepRigs := make(set[string])
	for _, c := range cfg.Rigs {
		keepRigs[c.Name] = struct{}{}
		eid, ok := idx.Rigs[c.Name]
		rig := GetComponent[LightRigComponent](cmd, eid)
		if !ok || rig == nil {
			idx.Rigs[c.Name] = spawnRig(cmd, c)
			continue
		}

		c.applyTo(rig)
		if tr := GetComponent[TransformComponent](cmd, eid); tr != nil {
			*tr = c.Transform.toTransform()
		}
		if rig.LightCount() != c.LightCount {
			_ = SetLightRigCount(cmd, eid, c.LightCount)
		}
		if rig.Enabled != c.Enabled {
			_ = SetLightRigActive(cmd, eid, c.Enabled)
		}
	}
	for name, eid := range idx.Rigs {
		if _, keep := keepRigs[name]; keep {
			continue
		}
		_ = SetLightRigActive(cmd, eid, false)
		cmd.RemoveEntity(eid)
		delete(idx.Rigs, name)
	}

	keepWanderers := make(set[string])
	for _, c := range cfg.Wanderers {
		keepWanderers[c.Name] = struct{}{}
		eid, ok := idx.Wanderers[c.Name]
		w := GetComponent[LightWanderComponent](cmd, eid)
		if !ok || w == nil {
			idx.Wanderers[c.Name] = spawnWanderer(cmd, c)
			idx.wanderLights[c.Name] = slices.Clone(c.Lights)
			continue
		}

		c.applyTo(w)
		tr := c.Transform.toTransform()
		if cur := GetComponent[TransformComponent](cmd, eid); cur != nil {
			*cur = tr
		}
		if !slices.Equal(idx.wanderLights[c.Name], c.Lights) {
			despawnWanderLights(cmd, eid)
			spawnWanderLights(cmd, eid, tr, c.Lights)
			idx.wanderLights[c.Name] = slices.Clone(c.Lights)
			cmd.Logger().Debugf("wanderer %q respawned %d lights", c.Name, len(c.Lights))
		}
	}
	for name, eid := range idx.Wanderers {
		if _, keep := keepWanderers[name]; keep {
			continue
		}
		for _, id := range Subtree(cmd, eid) {
			cmd.RemoveEntity(id)
		}
		delete(idx.Wanderers, name)
		delete(idx.wanderLights, name)
	}
}

// SceneModule spawns a scene and publishes its SceneIndex as a resource.
type SceneModule struct {
	Config *SceneConfig
}

func (m SceneModule) Install(app *App, cmd *Commands) {
	idx := NewSceneIndex()
	cmd.AddResources(idx)
	if m.Config == nil {
		return
	}
	SpawnScene(cmd, m.Config, idx)
	app.Logger().Infof("scene spawned: %d rigs, %d wanderers", len(idx.Rigs), len(idx.Wanderers))
}
