package physkit

import (
	"fmt"
)

// UpdateFlags describe what changed on a proxy since its last sync. Easy
// bits can be applied to a live, in-simulation body; hard bits require
// removing the body, mutating it, and reinserting it.
type UpdateFlags uint32

const (
	UpdatePosition UpdateFlags = 1 << iota
	UpdateVelocity
	UpdateMass
	UpdateShape
)

const (
	// UpdateEasy are the bits applicable in place.
	UpdateEasy = UpdatePosition | UpdateVelocity
	// UpdateHard are the bits that force removal and reinsertion. A
	// classification change is also hard but is detected from the proxy,
	// not carried as a bit.
	UpdateHard = UpdateMass | UpdateShape

	updateKnown = UpdateEasy | UpdateHard
)

// MakeUpdateFlags validates a flag combination at construction time. Shape
// without Mass is rejected: changing geometry invalidates inertia, so the
// two must travel together.
func MakeUpdateFlags(bits UpdateFlags) (UpdateFlags, error) {
	if bits&^updateKnown != 0 {
		return 0, fmt.Errorf("unknown update flag bits 0x%x", uint32(bits&^updateKnown))
	}
	if bits&UpdateShape != 0 && bits&UpdateMass == 0 {
		return 0, fmt.Errorf("shape update without mass update")
	}
	return bits, nil
}

func (f UpdateFlags) Has(bits UpdateFlags) bool { return f&bits != 0 }

// Valid reports whether the combination would pass MakeUpdateFlags.
func (f UpdateFlags) Valid() bool {
	_, err := MakeUpdateFlags(f)
	return err == nil
}

func (f UpdateFlags) String() string {
	if f == 0 {
		return "none"
	}
	s := ""
	add := func(bit UpdateFlags, name string) {
		if f&bit != 0 {
			if s != "" {
				s += "|"
			}
			s += name
		}
	}
	add(UpdatePosition, "position")
	add(UpdateVelocity, "velocity")
	add(UpdateMass, "mass")
	add(UpdateShape, "shape")
	return s
}
