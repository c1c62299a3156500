package physkit

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeCacheDeduplicates(t *testing.T) {
	cache := NewShapeCache(NewBasicSimulator(), nil)

	desc := BoxDescriptor(mgl32.Vec3{0.5, 0.5, 0.5})
	first := cache.Acquire(desc)
	require.NotNil(t, first)

	for i := 0; i < 4; i++ {
		again := cache.Acquire(desc)
		assert.Same(t, first, again, "repeated acquire must return the shared shape")
	}
	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, 5, cache.RefCount(desc))
}

func TestShapeCacheQuantizesKeys(t *testing.T) {
	cache := NewShapeCache(NewBasicSimulator(), nil)

	a := cache.Acquire(BoxDescriptor(mgl32.Vec3{0.5, 0.5, 0.5}))
	b := cache.Acquire(BoxDescriptor(mgl32.Vec3{0.5 + 1e-6, 0.5, 0.5 - 1e-6}))
	require.NotNil(t, a)
	assert.Same(t, a, b, "float jitter below the quantum must collapse to one entry")
	assert.Equal(t, 1, cache.Len())
}

func TestShapeCacheReleaseLifecycle(t *testing.T) {
	cache := NewShapeCache(NewBasicSimulator(), nil)
	desc := BoxDescriptor(mgl32.Vec3{1, 2, 3})

	const n = 3
	var shape CollisionShape
	for i := 0; i < n; i++ {
		shape = cache.Acquire(desc)
		require.NotNil(t, shape)
	}

	for i := 0; i < n-1; i++ {
		assert.True(t, cache.Release(desc))
		assert.Equal(t, 1, cache.Len(), "shape must survive until the last release")
	}
	assert.True(t, cache.Release(desc))
	assert.Equal(t, 0, cache.Len(), "last release destroys the shape")
	assert.True(t, shape.(*basicShape).destroyed)

	assert.False(t, cache.Release(desc), "release past zero must report failure")
}

func TestShapeCacheReleaseByShape(t *testing.T) {
	cache := NewShapeCache(NewBasicSimulator(), nil)
	desc := BoxDescriptor(mgl32.Vec3{0.25, 0.5, 0.75})

	shape := cache.Acquire(desc)
	require.NotNil(t, shape)

	assert.True(t, cache.ReleaseShape(shape), "release via the live shape handle must find the entry")
	assert.Equal(t, 0, cache.Len())
}

func TestShapeCacheRejectsGeometry(t *testing.T) {
	cache := NewShapeCache(NewBasicSimulator(), nil)

	assert.Nil(t, cache.Acquire(BoxDescriptor(mgl32.Vec3{0, 0.5, 0.5})), "degenerate extents")
	assert.Nil(t, cache.Acquire(BoxDescriptor(mgl32.Vec3{-1, 1, 1})), "negative extents")
	assert.Nil(t, cache.Acquire(BoxDescriptor(mgl32.Vec3{2000, 1, 1})), "oversized extents")
	assert.Equal(t, 0, cache.Len(), "rejected geometry must cache nothing")
}
