package physkit

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type ShapeKind int

const (
	ShapeKindBox ShapeKind = iota
)

// Dimension quantization for canonical shape keys. Two descriptors whose
// extents differ by less than half a quantum collapse to one cache entry.
const shapeQuantum = 1.0 / 1024.0

// ShapeDescriptor is a value description of collision geometry, used as the
// lookup key for shared shapes. Immutable once constructed.
type ShapeDescriptor struct {
	kind        ShapeKind
	halfExtents mgl32.Vec3
}

// BoxDescriptor describes an axis-aligned box by its half-extents.
func BoxDescriptor(halfExtents mgl32.Vec3) ShapeDescriptor {
	return ShapeDescriptor{kind: ShapeKindBox, halfExtents: halfExtents}
}

// DescriptorFromShape reconstructs the descriptor of a live simulator shape.
// The result produces the same canonical key as the descriptor the shape was
// built from, so removal paths that only hold a shape handle can still find
// the cache entry.
func DescriptorFromShape(shape CollisionShape) ShapeDescriptor {
	return ShapeDescriptor{kind: shape.Kind(), halfExtents: shape.HalfExtents()}
}

func (d ShapeDescriptor) Kind() ShapeKind         { return d.kind }
func (d ShapeDescriptor) HalfExtents() mgl32.Vec3 { return d.halfExtents }

// shapeKey is the canonical, quantized map key for a descriptor.
type shapeKey struct {
	kind    ShapeKind
	x, y, z int32
}

func quantize(v float32) int32 {
	return int32(math.Round(float64(v) / shapeQuantum))
}

func (d ShapeDescriptor) key() shapeKey {
	return shapeKey{
		kind: d.kind,
		x:    quantize(d.halfExtents.X()),
		y:    quantize(d.halfExtents.Y()),
		z:    quantize(d.halfExtents.Z()),
	}
}
