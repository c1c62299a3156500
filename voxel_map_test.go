package physkit

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVoxelMap(origin mgl32.Vec3) (*VoxelMap, *ShapeCache, *BasicSimulator) {
	sim := NewBasicSimulator()
	cache := NewShapeCache(sim, nil)
	return NewVoxelMap(sim, cache, origin, nil), cache, sim
}

func TestVoxelAddRemoveIdempotent(t *testing.T) {
	voxels, _, sim := newTestVoxelMap(mgl32.Vec3{})

	origin := mgl32.Vec3{0, 0, 0}
	assert.True(t, voxels.Add(origin, 1))
	assert.False(t, voxels.Add(origin, 1), "occupied center must be a no-op")
	assert.Equal(t, 1, voxels.Len())
	assert.Len(t, sim.objects, 1)

	assert.True(t, voxels.Remove(origin, 1))
	assert.False(t, voxels.Remove(origin, 1), "repeated remove must be safe")
	assert.Equal(t, 0, voxels.Len())
	assert.Len(t, sim.objects, 0)
}

func TestVoxelRoundTripShapeNeutral(t *testing.T) {
	voxels, cache, _ := newTestVoxelMap(mgl32.Vec3{})

	// Hold an outside reference to the same box geometry so the entry
	// survives the voxel round trip.
	desc := BoxDescriptor(mgl32.Vec3{0.5, 0.5, 0.5})
	require.NotNil(t, cache.Acquire(desc))
	before := cache.RefCount(desc)

	require.True(t, voxels.Add(mgl32.Vec3{2, 0, 0}, 1))
	assert.Equal(t, before+1, cache.RefCount(desc))
	require.True(t, voxels.Remove(mgl32.Vec3{2, 0, 0}, 1))
	assert.Equal(t, before, cache.RefCount(desc), "add/remove must not leak or steal references")
}

func TestVoxelCanonicalization(t *testing.T) {
	voxels, _, _ := newTestVoxelMap(mgl32.Vec3{})

	require.True(t, voxels.Add(mgl32.Vec3{0.3, 1.2, -4.5}, 1))
	// Jitter well below the canonical grid must land on the same record.
	assert.False(t, voxels.Add(mgl32.Vec3{0.3 + 1e-7, 1.2, -4.5 - 1e-7}, 1))
	assert.True(t, voxels.Remove(mgl32.Vec3{0.3 - 1e-7, 1.2 + 1e-7, -4.5}, 1))
	assert.Equal(t, 0, voxels.Len())
}

func TestVoxelRejectedShapeHasNoSideEffects(t *testing.T) {
	voxels, cache, sim := newTestVoxelMap(mgl32.Vec3{})

	assert.False(t, voxels.Add(mgl32.Vec3{0, 0, 0}, 0), "zero scale is degenerate")
	assert.False(t, voxels.Add(mgl32.Vec3{0, 0, 0}, 5000), "oversized scale is rejected")
	assert.Equal(t, 0, voxels.Len())
	assert.Equal(t, 0, cache.Len())
	assert.Len(t, sim.objects, 0)

	// The rejected adds must not have poisoned the key.
	assert.True(t, voxels.Add(mgl32.Vec3{0, 0, 0}, 1))
}

func TestVoxelOriginOffset(t *testing.T) {
	voxels, _, sim := newTestVoxelMap(mgl32.Vec3{10, 0, -10})

	require.True(t, voxels.Add(mgl32.Vec3{0, 0, 0}, 1))
	require.Len(t, sim.objects, 1)

	got := sim.objects[0].transform.Position
	assert.Equal(t, mgl32.Vec3{-9.5, 0.5, 10.5}, got, "collider is placed in the simulation frame")

	// Keys stay in world space: removal uses the same nominal position.
	assert.True(t, voxels.Remove(mgl32.Vec3{0, 0, 0}, 1))
}

func TestVoxelScenario(t *testing.T) {
	voxels, _, _ := newTestVoxelMap(mgl32.Vec3{})

	assert.True(t, voxels.Add(mgl32.Vec3{0, 0, 0}, 1))
	assert.False(t, voxels.Add(mgl32.Vec3{0, 0, 0}, 1))
	assert.True(t, voxels.Remove(mgl32.Vec3{0, 0, 0}, 1))
	assert.False(t, voxels.Remove(mgl32.Vec3{0, 0, 0}, 1))
}
