package physkit

import (
	"go.uber.org/zap"
)

// ShapeCache owns every collision shape this layer creates and deduplicates
// geometrically identical requests into one shared, reference-counted shape.
// Shapes are destroyed exactly when their count reaches zero; nothing outside
// the cache may destroy a shape.
//
// Not safe for concurrent use. The owning world serializes access (a release
// racing an acquire could destroy shared state mid-handoff).
type ShapeCache struct {
	sim     Simulator
	log     *zap.Logger
	entries map[shapeKey]*shapeEntry
}

type shapeEntry struct {
	shape CollisionShape
	refs  int
}

func NewShapeCache(sim Simulator, log *zap.Logger) *ShapeCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &ShapeCache{
		sim:     sim,
		log:     log,
		entries: make(map[shapeKey]*shapeEntry),
	}
}

// Acquire returns the shared shape for the descriptor, constructing it on
// first request. Returns nil when the simulator rejects the geometry
// (degenerate or out-of-range extents); nothing is cached in that case.
func (c *ShapeCache) Acquire(desc ShapeDescriptor) CollisionShape {
	key := desc.key()
	if entry, ok := c.entries[key]; ok {
		entry.refs++
		return entry.shape
	}

	he := desc.HalfExtents()
	if he.X() <= 0 || he.Y() <= 0 || he.Z() <= 0 {
		c.log.Debug("rejected degenerate shape", zap.Any("halfExtents", he))
		return nil
	}
	shape := c.sim.NewBoxShape(he)
	if shape == nil {
		c.log.Debug("simulator rejected shape", zap.Any("halfExtents", he))
		return nil
	}
	c.entries[key] = &shapeEntry{shape: shape, refs: 1}
	return shape
}

// Release drops one reference to the descriptor's shape, destroying it on the
// last release. Returns false when no matching entry exists; that is a
// lifecycle bug in the caller (released something never acquired), logged at
// error level rather than panicking.
func (c *ShapeCache) Release(desc ShapeDescriptor) bool {
	key := desc.key()
	entry, ok := c.entries[key]
	if !ok {
		c.log.Error("shape release with no matching entry",
			zap.Any("halfExtents", desc.HalfExtents()))
		return false
	}
	entry.refs--
	if entry.refs <= 0 {
		entry.shape.Destroy()
		delete(c.entries, key)
	}
	return true
}

// ReleaseShape releases by live shape handle, for paths that no longer hold
// the original descriptor.
func (c *ShapeCache) ReleaseShape(shape CollisionShape) bool {
	return c.Release(DescriptorFromShape(shape))
}

// RefCount reports the current reference count for a descriptor, zero when
// uncached.
func (c *ShapeCache) RefCount(desc ShapeDescriptor) int {
	if entry, ok := c.entries[desc.key()]; ok {
		return entry.refs
	}
	return 0
}

// Len reports the number of distinct cached shapes.
func (c *ShapeCache) Len() int {
	return len(c.entries)
}
