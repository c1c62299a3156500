package physkit

import (
	"github.com/go-gl/mathgl/mgl32"
)

// CollisionFlags mirror the bit encoding used by discrete dynamics engines
// for object classification. Callers outside this package should not inspect
// individual bits; MotionTypeFromFlags translates them.
type CollisionFlags uint32

const (
	FlagStaticObject CollisionFlags = 1 << iota
	FlagKinematicObject
	FlagNoContactResponse
)

// ActivationState controls the simulator's sleep heuristic for a body.
type ActivationState int

const (
	// ActivationActive is the normal simulated state.
	ActivationActive ActivationState = iota
	// ActivationDisableDeactivation keeps a body permanently awake
	// (kinematic bodies must never be put to sleep by the solver).
	ActivationDisableDeactivation
	// ActivationDisableSimulation removes a body from integration entirely
	// (static bodies).
	ActivationDisableSimulation
)

// Transform is a rigid placement in simulation space.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
}

func IdentityTransform() Transform {
	return Transform{Rotation: mgl32.QuatIdent()}
}

// CollisionShape is a simulator-native collision geometry handle. Shapes are
// shared between bodies and owned exclusively by the ShapeCache; nothing
// outside the cache may call Destroy.
type CollisionShape interface {
	Kind() ShapeKind
	// HalfExtents reports the box half-extents the shape was built from.
	// Used to reconstruct a ShapeDescriptor from a live body.
	HalfExtents() mgl32.Vec3
	// CalculateLocalInertia computes the inertia vector for the given mass.
	CalculateLocalInertia(mass float32) mgl32.Vec3
	Destroy()
}

// RigidBody is a simulator-native dynamic/kinematic/static body handle.
type RigidBody interface {
	CollisionFlags() CollisionFlags
	SetCollisionFlags(flags CollisionFlags)

	ActivationState() ActivationState
	// ForceActivationState overrides the sleep heuristic unconditionally.
	ForceActivationState(state ActivationState)
	// Activate wakes the body; force bypasses the deactivation timer.
	Activate(force bool)

	Shape() CollisionShape
	SetShape(shape CollisionShape)

	WorldTransform() Transform
	SetWorldTransform(t Transform)

	LinearVelocity() mgl32.Vec3
	SetLinearVelocity(v mgl32.Vec3)
	AngularVelocity() mgl32.Vec3
	SetAngularVelocity(v mgl32.Vec3)
	SetGravity(g mgl32.Vec3)

	Mass() float32
	// SetMassProps installs mass and local inertia; zero mass marks the
	// body immovable to the solver.
	SetMassProps(mass float32, inertia mgl32.Vec3)
	// UpdateInertiaTensor must be called after any mass or shape change.
	UpdateInertiaTensor()

	SetRestitution(r float32)
	SetFriction(f float32)

	// Destroy releases the simulator-native body. The body must already be
	// removed from the simulation and must not be used afterwards.
	Destroy()
}

// CollisionObject is a non-dynamic simulator collider (voxels, fixtures).
type CollisionObject interface {
	Shape() CollisionShape
	WorldTransform() Transform
	Destroy()
}

// Simulator is the external discrete dynamics engine this layer drives. The
// world facade is the sole owner of the handle and tears it down exactly
// once. Implementations are not required to be safe for concurrent use; see
// the package documentation for the serialization contract.
type Simulator interface {
	// NewBoxShape builds a box collision shape, or returns nil when the
	// requested half-extents are out of the engine's supported range.
	NewBoxShape(halfExtents mgl32.Vec3) CollisionShape

	// NewRigidBody builds a body bound to a motion state. Zero mass and
	// zero inertia produce a non-dynamic body.
	NewRigidBody(mass float32, motion MotionState, shape CollisionShape, inertia mgl32.Vec3) RigidBody

	// NewCollisionObject builds a static collider with no motion state.
	NewCollisionObject(shape CollisionShape, transform Transform) CollisionObject

	AddRigidBody(body RigidBody)
	RemoveRigidBody(body RigidBody)
	AddCollisionObject(obj CollisionObject)
	RemoveCollisionObject(obj CollisionObject)

	// Step advances the simulation by timeStep using a fixed substep,
	// performing at most maxSubsteps catch-up iterations. Returns the
	// number of substeps actually simulated.
	Step(timeStep float32, maxSubsteps int, fixedSubstep float32) int

	Close() error
}
