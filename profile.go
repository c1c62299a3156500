package physkit

// This file is the only place that maps between MotionType and the
// simulator's collision-flag bit encoding. The world facade works in terms
// of motionProfile values; it never tests flag bits directly.

// MotionTypeFromFlags translates a body's collision flags back into its
// classification. Static wins over kinematic when both bits are set, which
// matches how discrete engines resolve the combination.
func MotionTypeFromFlags(flags CollisionFlags) MotionType {
	switch {
	case flags&FlagStaticObject != 0:
		return MotionStatic
	case flags&FlagKinematicObject != 0:
		return MotionKinematic
	default:
		return MotionDynamic
	}
}

// motionProfile is the canonical flag/activation/mass configuration for a
// target classification.
type motionProfile struct {
	setFlags   CollisionFlags
	clearFlags CollisionFlags
	activation ActivationState
	// dynamicMass: mass and inertia come from shape+proxy; otherwise both
	// are forced to zero.
	dynamicMass bool
	// zeroVelocities: linear and angular velocity are cleared when the
	// profile is applied.
	zeroVelocities bool
	// forceActivate: wake the body immediately after applying.
	forceActivate bool
}

func profileFor(t MotionType) motionProfile {
	switch t {
	case MotionKinematic:
		return motionProfile{
			setFlags:   FlagKinematicObject,
			clearFlags: FlagStaticObject,
			activation: ActivationDisableDeactivation,
		}
	case MotionDynamic:
		return motionProfile{
			clearFlags:    FlagStaticObject | FlagKinematicObject,
			activation:    ActivationActive,
			dynamicMass:   true,
			forceActivate: true,
		}
	default:
		return motionProfile{
			setFlags:       FlagStaticObject,
			clearFlags:     FlagKinematicObject,
			activation:     ActivationDisableSimulation,
			zeroVelocities: true,
		}
	}
}

// applyProfile writes a profile onto a detached body. massDone tells it that
// mass properties were already recomputed earlier in the same hard update,
// so a dynamic profile must not redo them.
func applyProfile(body RigidBody, p motionProfile, proxy MotionState, massDone bool) {
	flags := body.CollisionFlags()
	flags |= p.setFlags
	flags &^= p.clearFlags
	body.SetCollisionFlags(flags)
	body.ForceActivationState(p.activation)

	if p.dynamicMass {
		if !massDone {
			mass := proxy.Mass()
			inertia := body.Shape().CalculateLocalInertia(mass)
			body.SetMassProps(mass, inertia)
			body.UpdateInertiaTensor()
		}
	} else {
		body.SetMassProps(0, zeroVec3)
		body.UpdateInertiaTensor()
	}

	if p.zeroVelocities {
		body.SetLinearVelocity(zeroVec3)
		body.SetAngularVelocity(zeroVec3)
	}
	if p.forceActivate {
		body.Activate(true)
	}
}
