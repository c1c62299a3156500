// Package physkit is the bookkeeping layer between an entity system and a
// discrete dynamics simulator: shared shape caching, voxel collider
// tracking, and the hard/easy update protocol that mutates live simulation
// bodies without corrupting the simulator's internal acceleration
// structures.
//
// A World, its ShapeCache, its VoxelMap and the simulator handle form one
// unit of mutual exclusion. Every entry point is a synchronous, bounded-time
// call; callers driving the world from more than one goroutine must
// serialize all of them externally.
package physkit

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

var zeroVec3 = mgl32.Vec3{}

// World is the facade over the simulator. It owns every simulator body and
// shape it creates; proxies only hold non-owning back-references.
type World struct {
	cfg    Config
	sim    Simulator
	shapes *ShapeCache
	voxels *VoxelMap
	log    *zap.Logger

	// Permanent fixtures (ground slab) live until Close; they are never
	// individually removable.
	fixtures []CollisionObject

	lastStep time.Time
	now      func() time.Time

	closed bool
}

// NewWorld wraps a simulator. The world becomes the sole owner of the
// handle; Close tears it down exactly once. A nil logger disables logging.
func NewWorld(sim Simulator, cfg Config, log *zap.Logger) *World {
	if log == nil {
		log = zap.NewNop()
	}
	cfg.applyDefaults()

	w := &World{
		cfg:    cfg,
		sim:    sim,
		shapes: NewShapeCache(sim, log),
		log:    log,
		now:    time.Now,
	}
	w.voxels = NewVoxelMap(sim, w.shapes, cfg.OriginOffsetVec(), log)
	w.lastStep = w.now()

	if cfg.GroundEnabled {
		w.initGround()
	}
	return w
}

// initGround installs the permanent floor slab. It bypasses the shape cache
// on purpose: the fixture is never shared and is freed wholesale at Close.
func (w *World) initGround() {
	half := mgl32.Vec3{w.cfg.GroundHalfSide, w.cfg.GroundHalfHeight, w.cfg.GroundHalfSide}
	shape := w.sim.NewBoxShape(half)
	if shape == nil {
		w.log.Warn("ground fixture rejected by simulator",
			zap.Float32("halfSide", w.cfg.GroundHalfSide))
		return
	}
	transform := IdentityTransform()
	transform.Position = mgl32.Vec3{w.cfg.GroundHalfSide, -w.cfg.GroundHalfHeight, w.cfg.GroundHalfSide}

	ground := w.sim.NewCollisionObject(shape, transform)
	w.sim.AddCollisionObject(ground)
	w.fixtures = append(w.fixtures, ground)
}

// Close removes all remaining voxels and fixtures and shuts the simulator
// down. Registered entities must be removed by their owners first; Close
// does not chase proxies it has no references to. Idempotent.
func (w *World) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	w.voxels.clear()
	for _, fixture := range w.fixtures {
		w.sim.RemoveCollisionObject(fixture)
		fixture.Shape().Destroy()
		fixture.Destroy()
	}
	w.fixtures = nil
	return w.sim.Close()
}

// AddEntity registers a proxy, building and inserting its simulator body.
// Returns false when the proxy is already registered or its geometry is
// rejected.
func (w *World) AddEntity(proxy MotionState) bool {
	if proxy.Body() != nil {
		w.log.Warn("addEntity on already registered proxy")
		return false
	}
	shape := w.shapes.Acquire(proxy.ShapeInfo())
	if shape == nil {
		return false
	}

	motionType := proxy.MotionType()
	var mass float32
	inertia := zeroVec3
	if motionType == MotionDynamic {
		mass = proxy.Mass()
		inertia = shape.CalculateLocalInertia(mass)
	}

	body := w.sim.NewRigidBody(mass, proxy, shape, inertia)
	profile := profileFor(motionType)
	flags := body.CollisionFlags()
	flags |= profile.setFlags
	flags &^= profile.clearFlags
	body.SetCollisionFlags(flags)
	if profile.activation != ActivationActive {
		body.ForceActivationState(profile.activation)
	}
	body.UpdateInertiaTensor()
	if motionType == MotionDynamic {
		proxy.ApplyVelocities(body)
		proxy.ApplyGravity(body)
	}
	body.SetRestitution(proxy.Restitution())
	body.SetFriction(proxy.Friction())

	proxy.SetBody(body)
	w.sim.AddRigidBody(body)
	w.log.Debug("entity added", zap.Stringer("motionType", motionType))
	return true
}

// RemoveEntity unregisters a proxy, removing and destroying its body and
// releasing its shape. Returns false when the proxy has no body.
func (w *World) RemoveEntity(proxy MotionState) bool {
	body := proxy.Body()
	if body == nil {
		return false
	}
	shape := body.Shape()
	w.sim.RemoveRigidBody(body)
	w.shapes.ReleaseShape(shape)
	body.Destroy()
	proxy.SetBody(nil)
	return true
}

// UpdateEntity syncs the body with the proxy according to flags. Hard bits
// (shape, mass, or a classification change relative to the body's current
// flags) route through the remove/mutate/reinsert path; easy bits are
// applied in place. Empty flags with no classification change is a valid
// no-op. Returns false when the proxy has no body or the flag combination
// violates the Shape-implies-Mass contract.
func (w *World) UpdateEntity(proxy MotionState, flags UpdateFlags) bool {
	body := proxy.Body()
	if body == nil {
		return false
	}
	if !flags.Valid() {
		w.log.Error("invalid update flags", zap.Stringer("flags", flags))
		return false
	}

	if flags.Has(UpdateHard) || MotionTypeFromFlags(body.CollisionFlags()) != proxy.MotionType() {
		w.updateEntityHard(body, proxy, flags)
	} else if flags.Has(UpdateEasy) {
		w.updateEntityEasy(body, proxy, flags)
	}
	return true
}

// updateEntityHard pulls the body out of the simulator, mutates it, and
// reinserts it. Shape and classification changes alter properties the
// simulator caches at insertion time (inertia tensor, broadphase bounds);
// mutating them in place corrupts those caches.
func (w *World) updateEntityHard(body RigidBody, proxy MotionState, flags UpdateFlags) {
	oldType := MotionTypeFromFlags(body.CollisionFlags())
	newType := proxy.MotionType()

	w.sim.RemoveRigidBody(body)

	if flags.Has(UpdateShape) {
		oldShape := body.Shape()
		newShape := w.shapes.Acquire(proxy.ShapeInfo())
		switch {
		case newShape == nil:
			// Geometry rejected; keep the old shape.
			w.log.Warn("shape update rejected, keeping previous shape")
		case newShape != oldShape:
			body.SetShape(newShape)
			w.shapes.ReleaseShape(oldShape)
		default:
			// Unchanged after all; drop the reference the lookup took.
			w.shapes.ReleaseShape(newShape)
		}
	}
	easyRan := flags.Has(UpdateEasy)
	if easyRan {
		w.updateEntityEasy(body, proxy, flags)
	}

	// Mass was already recomputed if the easy steps ran with the mass bit.
	applyProfile(body, profileFor(newType), proxy, easyRan && flags.Has(UpdateMass))

	w.sim.AddRigidBody(body)
	// Force activation so a static-to-dynamic transition is not missed by
	// the sleep heuristic.
	body.Activate(true)

	if oldType != newType {
		w.log.Debug("classification changed",
			zap.Stringer("from", oldType), zap.Stringer("to", newType))
	}
}

// updateEntityEasy applies in-place changes to a live body. Restitution and
// friction are refreshed unconditionally: they are cheap scalar writes and
// keeping them current costs less than tracking them.
func (w *World) updateEntityEasy(body RigidBody, proxy MotionState, flags UpdateFlags) {
	if flags.Has(UpdatePosition) {
		body.SetWorldTransform(proxy.WorldTransform())
	}
	if flags.Has(UpdateVelocity) {
		proxy.ApplyVelocities(body)
		proxy.ApplyGravity(body)
	}
	body.SetRestitution(proxy.Restitution())
	body.SetFriction(proxy.Friction())

	if flags.Has(UpdateMass) {
		mass := proxy.Mass()
		inertia := body.Shape().CalculateLocalInertia(mass)
		body.SetMassProps(mass, inertia)
		body.UpdateInertiaTensor()
	}
	body.Activate(true)
}

// AddVoxel inserts a static box collider; see VoxelMap.Add.
func (w *World) AddVoxel(position mgl32.Vec3, scale float32) bool {
	return w.voxels.Add(position, scale)
}

// RemoveVoxel removes a static box collider; see VoxelMap.Remove.
func (w *World) RemoveVoxel(position mgl32.Vec3, scale float32) bool {
	return w.voxels.Remove(position, scale)
}

// StepSimulation advances the simulator by the wall-clock time elapsed since
// the previous call, clamped to MaxTimestep, using the configured fixed
// substep and catch-up bound. Call at most once per logical frame; not
// reentrant.
func (w *World) StepSimulation() {
	now := w.now()
	dt := float32(now.Sub(w.lastStep).Seconds())
	w.lastStep = now

	timeStep := dt
	if timeStep > w.cfg.MaxTimestep {
		timeStep = w.cfg.MaxTimestep
	}
	w.sim.Step(timeStep, w.cfg.MaxSubsteps, w.cfg.FixedSubstep)
}

// Shapes exposes the shape cache for inspection.
func (w *World) Shapes() *ShapeCache { return w.shapes }

// Voxels exposes the voxel map for inspection.
func (w *World) Voxels() *VoxelMap { return w.voxels }
