package catalog

import (
	"sync"

	"github.com/google/uuid"
)

// ObjectDetacher releases an entity from the unit of work that loaded it.
type ObjectDetacher interface {
	Detach(entity EntityWithValues)
}

type identityKey struct {
	kind EntityKind
	id   uuid.UUID
}

// IdentityMap tracks the entities loaded by a batch step so they can be
// released once processed. Batch runners track every loaded entity and detach
// it after use, keeping memory flat across large exports.
type IdentityMap struct {
	mu       sync.Mutex
	entities map[identityKey]EntityWithValues
}

// NewIdentityMap creates an empty identity map.
func NewIdentityMap() *IdentityMap {
	return &IdentityMap{entities: make(map[identityKey]EntityWithValues)}
}

// Track registers the entity, returning the instance already tracked under the
// same identity when there is one.
func (m *IdentityMap) Track(entity EntityWithValues) EntityWithValues {
	if entity == nil {
		return nil
	}
	key := identityKey{kind: entity.EntityKind(), id: entity.EntityID()}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.entities[key]; ok {
		return existing
	}
	m.entities[key] = entity
	return entity
}

// Detach forgets the entity. Unknown entities are ignored.
func (m *IdentityMap) Detach(entity EntityWithValues) {
	if entity == nil {
		return
	}
	key := identityKey{kind: entity.EntityKind(), id: entity.EntityID()}
	m.mu.Lock()
	delete(m.entities, key)
	m.mu.Unlock()
}

// Contains reports whether the entity is tracked.
func (m *IdentityMap) Contains(entity EntityWithValues) bool {
	if entity == nil {
		return false
	}
	key := identityKey{kind: entity.EntityKind(), id: entity.EntityID()}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entities[key]
	return ok
}

// Len returns the number of tracked entities.
func (m *IdentityMap) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entities)
}

// Clear detaches every tracked entity.
func (m *IdentityMap) Clear() {
	m.mu.Lock()
	m.entities = make(map[identityKey]EntityWithValues)
	m.mu.Unlock()
}
