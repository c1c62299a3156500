package physkit

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Voxel centers are canonicalized on a fine grid before hashing so that the
// same nominal (position, scale) pair always lands on the same key, however
// it was computed.
const voxelQuantum = 1.0 / 1024.0

// VoxelMap tracks the static box colliders backing a voxel terrain. Keys are
// hashes of the canonicalized true center of each voxel, so add and remove
// agree on identity despite floating-point jitter in the inputs.
//
// Not safe for concurrent use; the owning world serializes access.
type VoxelMap struct {
	sim    Simulator
	shapes *ShapeCache
	log    *zap.Logger

	// World-space to simulation-space translation, applied when placing
	// colliders into the simulator. Keys are always world-space.
	originOffset mgl32.Vec3

	voxels map[uint64]voxelRecord
}

type voxelRecord struct {
	center mgl32.Vec3
	object CollisionObject
}

func NewVoxelMap(sim Simulator, shapes *ShapeCache, originOffset mgl32.Vec3, log *zap.Logger) *VoxelMap {
	if log == nil {
		log = zap.NewNop()
	}
	return &VoxelMap{
		sim:          sim,
		shapes:       shapes,
		log:          log,
		originOffset: originOffset,
		voxels:       make(map[uint64]voxelRecord),
	}
}

// Add inserts a static box collider for the voxel whose minimum corner is at
// position with the given edge length. Returns false when a voxel already
// occupies that center or the shape cache rejects the size; neither case has
// side effects.
func (m *VoxelMap) Add(position mgl32.Vec3, scale float32) bool {
	halfExtents := mgl32.Vec3{0.5 * scale, 0.5 * scale, 0.5 * scale}
	trueCenter := position.Add(halfExtents)
	key := positionKey(trueCenter)
	if _, ok := m.voxels[key]; ok {
		return false
	}

	shape := m.shapes.Acquire(BoxDescriptor(halfExtents))
	if shape == nil {
		return false
	}

	// Shift the center into the simulation's frame.
	shiftedCenter := position.Sub(m.originOffset).Add(halfExtents)
	transform := IdentityTransform()
	transform.Position = shiftedCenter

	object := m.sim.NewCollisionObject(shape, transform)
	m.voxels[key] = voxelRecord{center: trueCenter, object: object}
	m.sim.AddCollisionObject(object)
	return true
}

// Remove deletes the voxel collider previously added with the same nominal
// (position, scale) pair. Returns false when no voxel exists at that center;
// repeated removal is safe.
func (m *VoxelMap) Remove(position mgl32.Vec3, scale float32) bool {
	halfExtents := mgl32.Vec3{0.5 * scale, 0.5 * scale, 0.5 * scale}
	trueCenter := position.Add(halfExtents)
	key := positionKey(trueCenter)
	record, ok := m.voxels[key]
	if !ok {
		return false
	}

	m.sim.RemoveCollisionObject(record.object)
	if !m.shapes.Release(BoxDescriptor(halfExtents)) {
		m.log.Error("voxel shape missing from cache on remove",
			zap.Any("center", trueCenter))
	}
	record.object.Destroy()
	delete(m.voxels, key)
	return true
}

// Len reports the number of live voxel colliders.
func (m *VoxelMap) Len() int {
	return len(m.voxels)
}

// clear removes every voxel collider from the simulator. Used at world
// teardown only; individual removal goes through Remove.
func (m *VoxelMap) clear() {
	for key, record := range m.voxels {
		m.sim.RemoveCollisionObject(record.object)
		m.shapes.ReleaseShape(record.object.Shape())
		record.object.Destroy()
		delete(m.voxels, key)
	}
}

// positionKey hashes a canonicalized position into a map key.
func positionKey(center mgl32.Vec3) uint64 {
	var buf [12]byte
	binary.LittleEndian.PutUint32(buf[0:], uint32(quantizePos(center.X())))
	binary.LittleEndian.PutUint32(buf[4:], uint32(quantizePos(center.Y())))
	binary.LittleEndian.PutUint32(buf[8:], uint32(quantizePos(center.Z())))
	return xxhash.Sum64(buf[:])
}

func quantizePos(v float32) int32 {
	// Same rounding as shape keys; voxel grids are far coarser than the
	// quantum so jitter cannot straddle a boundary.
	return int32(math.Round(float64(v) / voxelQuantum))
}
