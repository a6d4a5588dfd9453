package lightdemo

import (
	"encoding/binary"
	"fmt"
	"reflect"
	"slices"

	"github.com/cespare/xxhash/v2"
)

type EntityId uint64
type archetypeId uint64
type archetypeKey []componentId
type componentId uint32
type row int
type set[T comparable] = map[T]struct{}

// Ecs is an archetype store. Every archetype keeps one typed slice per
// component and hands out rows to entities; removed rows are recycled.
// It is not safe for concurrent use: systems run one after another.
type Ecs struct {
	archetypes  map[archetypeId]*archetype
	entityIndex map[EntityId]archetypeId

	entityIdCounter EntityId

	componentTypeIdMap map[reflect.Type]componentId
	componentIdTypeMap []reflect.Type
}

func MakeEcs() Ecs {
	return Ecs{
		archetypes:         make(map[archetypeId]*archetype),
		entityIndex:        make(map[EntityId]archetypeId),
		componentTypeIdMap: make(map[reflect.Type]componentId),
	}
}

type archetype struct {
	id            archetypeId
	key           archetypeKey
	entities      map[EntityId]row
	componentData map[componentId]any // []T for the component's type
	recycled      []row
}

func (ecs *Ecs) addEntity(components ...any) EntityId {
	return ecs.insertEntity(ecs.nextEntityId(), components...)
}

func (ecs *Ecs) insertEntity(entityId EntityId, components ...any) EntityId {
	archId, arch := ecs.getOrMakeArchetype(ecs.getArchetypeKey(components...))

	row := ecs.archetypeReserveRow(arch)
	for _, component := range components {
		ecs.writeComponent(arch, row, component)
	}

	arch.entities[entityId] = row
	ecs.entityIndex[entityId] = archId
	return entityId
}

func (ecs *Ecs) hasEntity(entityId EntityId) bool {
	_, ok := ecs.entityIndex[entityId]
	return ok
}

// removeEntity is a no-op for entities the store does not know.
func (ecs *Ecs) removeEntity(entityId EntityId) {
	if !ecs.hasEntity(entityId) {
		return
	}
	ecs.recycleEntity(entityId)
}

// addComponents moves the entity into the archetype that also holds the
// given components. Components already present are overwritten.
func (ecs *Ecs) addComponents(entityId EntityId, components ...any) {
	srcArchId, ok := ecs.entityIndex[entityId]
	if !ok {
		return
	}
	srcArch := ecs.archetypes[srcArchId]
	srcRow := srcArch.entities[entityId]

	dstKey := dedupAndSortArchetypeKey(append(slices.Clone(srcArch.key), ecs.getArchetypeKey(components...)...))
	dstArchId, dstArch := ecs.getOrMakeArchetype(dstKey)

	if dstArchId == srcArchId {
		for _, component := range components {
			ecs.writeComponent(srcArch, srcRow, component)
		}
		return
	}

	dstRow := ecs.archetypeReserveRow(dstArch)
	ecs.moveComponents(srcArch, srcRow, dstArch, dstRow)
	for _, component := range components {
		ecs.writeComponent(dstArch, dstRow, component)
	}

	ecs.recycleEntity(entityId)
	dstArch.entities[entityId] = dstRow
	ecs.entityIndex[entityId] = dstArchId
}

func (ecs *Ecs) removeComponents(entityId EntityId, components ...any) {
	srcArchId, ok := ecs.entityIndex[entityId]
	if !ok {
		return
	}
	srcArch := ecs.archetypes[srcArchId]
	srcRow := srcArch.entities[entityId]

	removeSet := make(set[componentId])
	for _, c := range components {
		removeSet[ecs.getComponentId(componentType(c))] = struct{}{}
	}

	var dstKey archetypeKey
	for _, compId := range srcArch.key {
		if _, drop := removeSet[compId]; !drop {
			dstKey = append(dstKey, compId)
		}
	}

	dstArchId, dstArch := ecs.getOrMakeArchetype(dstKey)
	if dstArchId == srcArchId {
		return
	}
	dstRow := ecs.archetypeReserveRow(dstArch)

	ecs.moveComponents(srcArch, srcRow, dstArch, dstRow)
	ecs.recycleEntity(entityId)

	dstArch.entities[entityId] = dstRow
	ecs.entityIndex[entityId] = dstArchId
}

// moveComponents copies the components both archetypes share.
func (ecs *Ecs) moveComponents(srcArch *archetype, srcRow row, dstArch *archetype, dstRow row) {
	for _, id := range srcArch.key {
		dstData, ok := dstArch.componentData[id]
		if !ok {
			continue
		}
		value := reflect.ValueOf(srcArch.componentData[id]).Index(int(srcRow))
		reflect.ValueOf(dstData).Index(int(dstRow)).Set(value)
	}
}

func (ecs *Ecs) writeComponent(dstArch *archetype, dstRow row, component any) {
	value := reflect.ValueOf(component)
	if value.Kind() == reflect.Pointer {
		value = value.Elem()
	}
	id := ecs.getComponentId(value.Type())
	reflect.ValueOf(dstArch.componentData[id]).Index(int(dstRow)).Set(value)
}

func (ecs *Ecs) recycleEntity(entityId EntityId) {
	arch := ecs.archetypes[ecs.entityIndex[entityId]]

	arch.recycled = append(arch.recycled, arch.entities[entityId])
	delete(arch.entities, entityId)
	delete(ecs.entityIndex, entityId)
}

func (ecs *Ecs) getOrMakeArchetype(key archetypeKey) (archetypeId, *archetype) {
	id := getArchetypeId(key)
	if arch, ok := ecs.archetypes[id]; ok {
		return id, arch
	}

	arch := &archetype{
		id:            id,
		key:           key,
		entities:      make(map[EntityId]row),
		componentData: make(map[componentId]any, len(key)),
	}
	for _, compId := range key {
		arch.componentData[compId] = reflect.MakeSlice(reflect.SliceOf(ecs.componentIdTypeMap[compId]), 0, 1).Interface()
	}

	ecs.archetypes[id] = arch
	return id, arch
}

func (ecs *Ecs) archetypeReserveRow(arch *archetype) row {
	if n := len(arch.recycled); n > 0 {
		r := arch.recycled[n-1]
		arch.recycled = arch.recycled[:n-1]
		for compId, data := range arch.componentData {
			reflect.ValueOf(data).Index(int(r)).Set(reflect.Zero(ecs.componentIdTypeMap[compId]))
		}
		return r
	}

	r := row(len(arch.entities))
	for compId, data := range arch.componentData {
		arch.componentData[compId] = reflect.Append(
			reflect.ValueOf(data),
			reflect.Zero(ecs.componentIdTypeMap[compId]),
		).Interface()
	}
	return r
}

// getArchetypeKey returns the sorted, deduplicated component ids for a set
// of component values. Components must be structs or pointers to structs.
func (ecs *Ecs) getArchetypeKey(components ...any) archetypeKey {
	res := make(archetypeKey, 0, len(components))
	for _, component := range components {
		res = append(res, ecs.getComponentId(componentType(component)))
	}
	return dedupAndSortArchetypeKey(res)
}

func componentType(component any) reflect.Type {
	t := reflect.TypeOf(component)
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		panic(fmt.Errorf("expected component to be a struct or a pointer to a struct, got %v", reflect.TypeOf(component)))
	}
	return t
}

func dedupAndSortArchetypeKey(key archetypeKey) archetypeKey {
	res := slices.Clone(key)
	slices.Sort(res)
	return slices.Compact(res)
}

// getArchetypeId hashes the key. Ids can collide in theory; keys cannot.
func getArchetypeId(key archetypeKey) archetypeId {
	hash := xxhash.New()
	b := make([]byte, 4)
	for _, compId := range key {
		binary.LittleEndian.PutUint32(b, uint32(compId))
		_, _ = hash.Write(b)
	}
	return archetypeId(hash.Sum64())
}

func (ecs *Ecs) nextEntityId() EntityId {
	id := ecs.entityIdCounter
	ecs.entityIdCounter++
	return id
}

func (ecs *Ecs) getComponentId(t reflect.Type) componentId {
	if id, ok := ecs.componentTypeIdMap[t]; ok {
		return id
	}
	id := componentId(len(ecs.componentIdTypeMap))
	ecs.componentTypeIdMap[t] = id
	ecs.componentIdTypeMap = append(ecs.componentIdTypeMap, t)
	return id
}

func (ecs *Ecs) getComponentType(id componentId) reflect.Type {
	if int(id) < len(ecs.componentIdTypeMap) {
		return ecs.componentIdTypeMap[id]
	}
	panic("ComponentID not registered")
}

// getComponent returns a pointer into the entity's storage row, or nil.
// The pointer is valid until the next structural change to the store.
func getComponent[T any](ecs *Ecs, entityId EntityId) *T {
	archId, ok := ecs.entityIndex[entityId]
	if !ok {
		return nil
	}
	arch := ecs.archetypes[archId]

	var zero T
	data, ok := arch.componentData[ecs.getComponentId(reflect.TypeOf(zero))]
	if !ok {
		return nil
	}
	return &data.([]T)[arch.entities[entityId]]
}
