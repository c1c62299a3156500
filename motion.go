package physkit

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// MotionType classifies how a body participates in the simulation.
type MotionType int

const (
	// MotionStatic bodies never move.
	MotionStatic MotionType = iota
	// MotionKinematic bodies are moved by the owning entity system, not by
	// the solver.
	MotionKinematic
	// MotionDynamic bodies are integrated by the solver.
	MotionDynamic
)

func (t MotionType) String() string {
	switch t {
	case MotionStatic:
		return "static"
	case MotionKinematic:
		return "kinematic"
	case MotionDynamic:
		return "dynamic"
	}
	return "unknown"
}

// MotionState is the per-entity adapter between the owning entity system and
// the simulation layer. It exposes the entity's current kinematic intent to
// the world facade, and receives simulated results back from the simulator
// after each step.
//
// The Body back-reference is non-owning: the world writes it on AddEntity and
// clears it on RemoveEntity. A proxy has a non-nil body exactly while it is
// registered with a world.
type MotionState interface {
	// ShapeInfo computes the descriptor for the entity's current geometry.
	ShapeInfo() ShapeDescriptor
	MotionType() MotionType
	Mass() float32

	// WorldTransform reports the target placement for the body.
	WorldTransform() Transform
	// SetWorldTransform receives a simulated result from the simulator.
	SetWorldTransform(t Transform)

	// ApplyVelocities writes the proxy's linear/angular velocity onto the
	// body.
	ApplyVelocities(body RigidBody)
	// ApplyGravity writes the proxy's local gravity override onto the body.
	ApplyGravity(body RigidBody)

	Restitution() float32
	Friction() float32

	Body() RigidBody
	SetBody(body RigidBody)
}

// EntityMotionState is the standard MotionState implementation backed by
// plain fields. The owning system mutates the fields and then tells the
// world what changed via UpdateFlags.
type EntityMotionState struct {
	ID uuid.UUID

	Type            MotionType
	MassKg          float32
	HalfExtents     mgl32.Vec3
	Position        mgl32.Vec3
	Rotation        mgl32.Quat
	Velocity        mgl32.Vec3
	AngularVelocity mgl32.Vec3
	Gravity         mgl32.Vec3
	RestitutionC    float32
	FrictionC       float32

	body RigidBody
}

func NewEntityMotionState() *EntityMotionState {
	return &EntityMotionState{
		ID:       uuid.New(),
		Rotation: mgl32.QuatIdent(),
	}
}

func (m *EntityMotionState) ShapeInfo() ShapeDescriptor {
	return BoxDescriptor(m.HalfExtents)
}

func (m *EntityMotionState) MotionType() MotionType { return m.Type }
func (m *EntityMotionState) Mass() float32          { return m.MassKg }

func (m *EntityMotionState) WorldTransform() Transform {
	return Transform{Position: m.Position, Rotation: m.Rotation}
}

func (m *EntityMotionState) SetWorldTransform(t Transform) {
	m.Position = t.Position
	m.Rotation = t.Rotation
}

func (m *EntityMotionState) ApplyVelocities(body RigidBody) {
	body.SetLinearVelocity(m.Velocity)
	body.SetAngularVelocity(m.AngularVelocity)
}

func (m *EntityMotionState) ApplyGravity(body RigidBody) {
	body.SetGravity(m.Gravity)
}

func (m *EntityMotionState) Restitution() float32 { return m.RestitutionC }
func (m *EntityMotionState) Friction() float32    { return m.FrictionC }

func (m *EntityMotionState) Body() RigidBody        { return m.body }
func (m *EntityMotionState) SetBody(body RigidBody) { m.body = body }
