package lightdemo

// Commands is handed to systems and modules. Structural changes are
// buffered and applied when the current stage finishes.
type Commands struct {
	app *App
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

// AddEntity reserves an id right away; the entity becomes visible to
// queries after the next flush.
func (cmd *Commands) AddEntity(components ...any) EntityId {
	eid := cmd.app.ecs.nextEntityId()
	cmd.app.pendingAdditions = append(cmd.app.pendingAdditions, pendingAdd{
		eid:        eid,
		components: components,
	})
	return eid
}

func (cmd *Commands) AddComponents(entityId EntityId, components ...any) {
	cmd.app.pendingCompAdds = append(cmd.app.pendingCompAdds, pendingCompChange{
		eid:        entityId,
		components: components,
	})
}

func (cmd *Commands) RemoveComponents(entityId EntityId, components ...any) {
	cmd.app.pendingCompRemovals = append(cmd.app.pendingCompRemovals, pendingCompChange{
		eid:        entityId,
		components: components,
	})
}

func (cmd *Commands) RemoveEntity(entityId EntityId) {
	cmd.app.pendingRemovals = append(cmd.app.pendingRemovals, entityId)
}

// HasEntity reports whether the entity has been flushed into the store.
func (cmd *Commands) HasEntity(entityId EntityId) bool {
	return cmd.app.ecs.hasEntity(entityId)
}

// IsRunning is true while the app is stepping frames.
func (cmd *Commands) IsRunning() bool {
	return cmd.app.running
}

func (cmd *Commands) Logger() Logger {
	return cmd.app.Logger()
}

// GetComponent returns a mutable pointer to the entity's component, or nil
// when the entity does not have one. Do not hold it across a flush.
func GetComponent[T any](cmd *Commands, entityId EntityId) *T {
	return getComponent[T](cmd.app.ecs, entityId)
}

// GetResource returns the resource of type T, or nil.
func GetResource[T any](cmd *Commands) *T {
	return resourceOf[T](cmd.app)
}
