package physkit

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// BasicSimulator is a boxes-only discrete dynamics engine implementing the
// Simulator interfaces: semi-implicit Euler integration, per-body gravity,
// axis-aligned overlap resolution against non-dynamic colliders, restitution
// and friction, and a sleep heuristic. It exists so the bookkeeping layer is
// usable and testable end to end without a native engine binding; it is not
// a solver-quality target.
type BasicSimulator struct {
	bodies  []*basicBody
	objects []*basicObject

	// Catch-up remainder between Step calls.
	localTime float32

	SleepThreshold float32
	SleepTime      float32
}

// Shape size limits. Requests outside this range are rejected, which
// surfaces as a nil result from NewBoxShape.
const (
	minHalfExtent = 0.001
	maxHalfExtent = 1000.0
)

func NewBasicSimulator() *BasicSimulator {
	return &BasicSimulator{
		SleepThreshold: 0.05,
		SleepTime:      1.0,
	}
}

type basicShape struct {
	halfExtents mgl32.Vec3
	destroyed   bool
}

func (s *basicShape) Kind() ShapeKind         { return ShapeKindBox }
func (s *basicShape) HalfExtents() mgl32.Vec3 { return s.halfExtents }

func (s *basicShape) CalculateLocalInertia(mass float32) mgl32.Vec3 {
	if mass <= 0 {
		return mgl32.Vec3{}
	}
	// Solid box inertia from full extents.
	x := 2 * s.halfExtents.X()
	y := 2 * s.halfExtents.Y()
	z := 2 * s.halfExtents.Z()
	k := mass / 12.0
	return mgl32.Vec3{k * (y*y + z*z), k * (x*x + z*z), k * (x*x + y*y)}
}

func (s *basicShape) Destroy() { s.destroyed = true }

type basicBody struct {
	flags      CollisionFlags
	activation ActivationState
	shape      *basicShape
	motion     MotionState

	transform Transform
	velocity  mgl32.Vec3
	angular   mgl32.Vec3
	gravity   mgl32.Vec3

	mass        float32
	inertia     mgl32.Vec3
	restitution float32
	friction    float32

	sleeping bool
	idleTime float32
	inWorld  bool
}

func (b *basicBody) CollisionFlags() CollisionFlags         { return b.flags }
func (b *basicBody) SetCollisionFlags(flags CollisionFlags) { b.flags = flags }

func (b *basicBody) ActivationState() ActivationState { return b.activation }

// ForceActivationState overrides the current state unconditionally.
func (b *basicBody) ForceActivationState(state ActivationState) {
	b.activation = state
	if state == ActivationDisableSimulation {
		b.sleeping = false
	}
}

// setActivationState latches: the two override states only yield to
// ForceActivationState.
func (b *basicBody) setActivationState(state ActivationState) {
	if b.activation == ActivationDisableDeactivation || b.activation == ActivationDisableSimulation {
		return
	}
	b.activation = state
}

func (b *basicBody) Activate(force bool) {
	if !force && b.flags&(FlagStaticObject|FlagKinematicObject) != 0 {
		return
	}
	b.setActivationState(ActivationActive)
	b.sleeping = false
	b.idleTime = 0
}

func (b *basicBody) Shape() CollisionShape { return b.shape }

func (b *basicBody) SetShape(shape CollisionShape) {
	b.shape = shape.(*basicShape)
}

func (b *basicBody) WorldTransform() Transform     { return b.transform }
func (b *basicBody) SetWorldTransform(t Transform) { b.transform = t }

func (b *basicBody) LinearVelocity() mgl32.Vec3      { return b.velocity }
func (b *basicBody) SetLinearVelocity(v mgl32.Vec3)  { b.velocity = v }
func (b *basicBody) AngularVelocity() mgl32.Vec3     { return b.angular }
func (b *basicBody) SetAngularVelocity(v mgl32.Vec3) { b.angular = v }
func (b *basicBody) SetGravity(g mgl32.Vec3)         { b.gravity = g }

func (b *basicBody) Mass() float32 { return b.mass }

func (b *basicBody) SetMassProps(mass float32, inertia mgl32.Vec3) {
	b.mass = mass
	b.inertia = inertia
}

func (b *basicBody) UpdateInertiaTensor() {
	// Diagonal inertia only; nothing to derive beyond the stored vector.
}

func (b *basicBody) SetRestitution(r float32) { b.restitution = r }
func (b *basicBody) SetFriction(f float32)    { b.friction = f }

func (b *basicBody) Destroy() {
	b.shape = nil
	b.motion = nil
}

func (b *basicBody) dynamic() bool {
	return b.flags&(FlagStaticObject|FlagKinematicObject) == 0 && b.mass > 0
}

type basicObject struct {
	shape     *basicShape
	transform Transform
	inWorld   bool
}

func (o *basicObject) Shape() CollisionShape     { return o.shape }
func (o *basicObject) WorldTransform() Transform { return o.transform }
func (o *basicObject) Destroy()                  { o.shape = nil }

func (s *BasicSimulator) NewBoxShape(halfExtents mgl32.Vec3) CollisionShape {
	for i := 0; i < 3; i++ {
		if halfExtents[i] < minHalfExtent || halfExtents[i] > maxHalfExtent {
			return nil
		}
	}
	return &basicShape{halfExtents: halfExtents}
}

func (s *BasicSimulator) NewRigidBody(mass float32, motion MotionState, shape CollisionShape, inertia mgl32.Vec3) RigidBody {
	body := &basicBody{
		shape:   shape.(*basicShape),
		motion:  motion,
		mass:    mass,
		inertia: inertia,
	}
	if motion != nil {
		body.transform = motion.WorldTransform()
	}
	return body
}

func (s *BasicSimulator) NewCollisionObject(shape CollisionShape, transform Transform) CollisionObject {
	return &basicObject{shape: shape.(*basicShape), transform: transform}
}

func (s *BasicSimulator) AddRigidBody(body RigidBody) {
	b := body.(*basicBody)
	if b.inWorld {
		return
	}
	b.inWorld = true
	s.bodies = append(s.bodies, b)
}

func (s *BasicSimulator) RemoveRigidBody(body RigidBody) {
	b := body.(*basicBody)
	for i, other := range s.bodies {
		if other == b {
			s.bodies = append(s.bodies[:i], s.bodies[i+1:]...)
			b.inWorld = false
			return
		}
	}
}

func (s *BasicSimulator) AddCollisionObject(obj CollisionObject) {
	o := obj.(*basicObject)
	if o.inWorld {
		return
	}
	o.inWorld = true
	s.objects = append(s.objects, o)
}

func (s *BasicSimulator) RemoveCollisionObject(obj CollisionObject) {
	o := obj.(*basicObject)
	for i, other := range s.objects {
		if other == o {
			s.objects = append(s.objects[:i], s.objects[i+1:]...)
			o.inWorld = false
			return
		}
	}
}

// Step advances by timeStep using fixed substeps with catch-up, then pushes
// simulated transforms back into the motion states of dynamic bodies.
func (s *BasicSimulator) Step(timeStep float32, maxSubsteps int, fixedSubstep float32) int {
	if fixedSubstep <= 0 || maxSubsteps <= 0 {
		return 0
	}
	s.localTime += timeStep
	substeps := int(s.localTime / fixedSubstep)
	if substeps <= 0 {
		return 0
	}
	s.localTime -= float32(substeps) * fixedSubstep
	if substeps > maxSubsteps {
		substeps = maxSubsteps
	}

	for i := 0; i < substeps; i++ {
		s.substep(fixedSubstep)
	}

	for _, b := range s.bodies {
		if b.dynamic() && !b.sleeping && b.motion != nil {
			b.motion.SetWorldTransform(b.transform)
		}
	}
	return substeps
}

func (s *BasicSimulator) substep(dt float32) {
	for _, b := range s.bodies {
		if !b.dynamic() || b.sleeping || b.activation == ActivationDisableSimulation {
			continue
		}

		b.velocity = b.velocity.Add(b.gravity.Mul(dt))
		b.velocity = b.velocity.Mul(0.99)
		b.angular = b.angular.Mul(0.98)

		b.transform.Position = b.transform.Position.Add(b.velocity.Mul(dt))
		if b.angular.Len() > 0 {
			spin := mgl32.Quat{W: 0, V: b.angular.Mul(0.5 * dt)}
			b.transform.Rotation = b.transform.Rotation.Add(spin.Mul(b.transform.Rotation)).Normalize()
		}

		s.resolveCollisions(b)

		// Sleep heuristic.
		if b.activation != ActivationDisableDeactivation &&
			b.velocity.Len() < s.SleepThreshold && b.angular.Len() < s.SleepThreshold {
			b.idleTime += dt
			if b.idleTime > s.SleepTime {
				b.sleeping = true
				b.velocity = mgl32.Vec3{}
				b.angular = mgl32.Vec3{}
			}
		} else {
			b.idleTime = 0
		}
	}
}

// resolveCollisions pushes a dynamic body out of every non-dynamic collider
// it overlaps, treating all boxes as axis-aligned.
func (s *BasicSimulator) resolveCollisions(b *basicBody) {
	for _, o := range s.objects {
		s.resolveAgainst(b, o.transform.Position, o.shape.halfExtents)
	}
	for _, other := range s.bodies {
		if other == b || other.dynamic() {
			continue
		}
		s.resolveAgainst(b, other.transform.Position, other.shape.halfExtents)
	}
}

func (s *BasicSimulator) resolveAgainst(b *basicBody, center mgl32.Vec3, halfExtents mgl32.Vec3) {
	d := b.transform.Position.Sub(center)
	he := b.shape.halfExtents

	var overlap [3]float32
	for i := 0; i < 3; i++ {
		overlap[i] = he[i] + halfExtents[i] - float32(math.Abs(float64(d[i])))
		if overlap[i] <= 0 {
			return
		}
	}

	// Resolve along the axis of least penetration.
	axis := 0
	for i := 1; i < 3; i++ {
		if overlap[i] < overlap[axis] {
			axis = i
		}
	}
	sign := float32(1)
	if d[axis] < 0 {
		sign = -1
	}
	b.transform.Position[axis] += sign * overlap[axis]

	// Bounce on the contact normal, drag on the tangents.
	if b.velocity[axis]*sign < 0 {
		b.velocity[axis] = -b.velocity[axis] * b.restitution
		drag := 1 - b.friction
		if drag < 0 {
			drag = 0
		}
		for i := 0; i < 3; i++ {
			if i != axis {
				b.velocity[i] *= drag
			}
		}
	}
	b.sleeping = false
}

func (s *BasicSimulator) Close() error {
	s.bodies = nil
	s.objects = nil
	return nil
}
