package physkit

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicSimShapeLimits(t *testing.T) {
	sim := NewBasicSimulator()

	assert.Nil(t, sim.NewBoxShape(mgl32.Vec3{0, 1, 1}))
	assert.Nil(t, sim.NewBoxShape(mgl32.Vec3{1, 1, 1500}))
	assert.NotNil(t, sim.NewBoxShape(mgl32.Vec3{0.5, 0.5, 0.5}))
}

func TestBasicSimBoxInertia(t *testing.T) {
	sim := NewBasicSimulator()
	shape := sim.NewBoxShape(mgl32.Vec3{0.5, 0.5, 0.5})

	inertia := shape.CalculateLocalInertia(6)
	// Unit cube, mass 6: I = 6/12 * (1+1) = 1 on every axis.
	assert.InDelta(t, 1.0, float64(inertia.X()), 1e-5)
	assert.InDelta(t, 1.0, float64(inertia.Y()), 1e-5)
	assert.InDelta(t, 1.0, float64(inertia.Z()), 1e-5)
	assert.Equal(t, mgl32.Vec3{}, shape.CalculateLocalInertia(0))
}

func TestBasicSimSubstepCatchup(t *testing.T) {
	sim := NewBasicSimulator()

	// A full second against a 1/60 substep wants 60 substeps; the bound
	// caps it at 2.
	assert.Equal(t, 2, sim.Step(1.0, 2, 1.0/60.0))

	// Less than one substep of elapsed time simulates nothing and carries
	// the remainder forward.
	fresh := NewBasicSimulator()
	assert.Equal(t, 0, fresh.Step(0.001, 2, 1.0/60.0))
	assert.Equal(t, 1, fresh.Step(0.016, 2, 1.0/60.0), "carried remainder tips over into one substep")
}

func TestBasicSimGravityAndWriteBack(t *testing.T) {
	world := NewWorld(NewBasicSimulator(), bareConfig(), nil)
	defer world.Close()

	proxy := dynamicProxy(1)
	proxy.Position = mgl32.Vec3{0, 10, 0}
	require.True(t, world.AddEntity(proxy))

	sim := world.sim.(*BasicSimulator)
	for i := 0; i < 30; i++ {
		sim.Step(1.0/60.0, 2, 1.0/60.0)
	}

	assert.Less(t, float64(proxy.Position.Y()), 10.0, "simulated fall is written back into the proxy")
	body := proxy.Body()
	assert.Less(t, float64(body.LinearVelocity().Y()), 0.0)
}

func TestBasicSimBodyRestsOnVoxels(t *testing.T) {
	world := NewWorld(NewBasicSimulator(), bareConfig(), nil)
	defer world.Close()

	// 3x3 voxel floor around the origin, top face at y=1.
	for x := -1; x <= 1; x++ {
		for z := -1; z <= 1; z++ {
			require.True(t, world.AddVoxel(mgl32.Vec3{float32(x), 0, float32(z)}, 1))
		}
	}

	proxy := dynamicProxy(1)
	proxy.Position = mgl32.Vec3{0, 3, 0}
	require.True(t, world.AddEntity(proxy))

	sim := world.sim.(*BasicSimulator)
	for i := 0; i < 240; i++ {
		sim.Step(1.0/60.0, 2, 1.0/60.0)
	}

	// Floor top at 1.0 plus the half-extent 0.5.
	assert.InDelta(t, 1.5, float64(proxy.Position.Y()), 0.1, "body settles on the voxel floor")
}

func TestBasicSimStaticBodiesDoNotMove(t *testing.T) {
	world := NewWorld(NewBasicSimulator(), bareConfig(), nil)
	defer world.Close()

	proxy := NewEntityMotionState()
	proxy.Type = MotionStatic
	proxy.HalfExtents = mgl32.Vec3{1, 1, 1}
	proxy.Position = mgl32.Vec3{0, 5, 0}
	proxy.Gravity = mgl32.Vec3{0, -9.81, 0}
	require.True(t, world.AddEntity(proxy))

	sim := world.sim.(*BasicSimulator)
	for i := 0; i < 60; i++ {
		sim.Step(1.0/60.0, 2, 1.0/60.0)
	}
	assert.Equal(t, mgl32.Vec3{0, 5, 0}, proxy.Position)
}

func TestBasicSimRemovedBodyIsNotStepped(t *testing.T) {
	sim := NewBasicSimulator()
	shape := sim.NewBoxShape(mgl32.Vec3{0.5, 0.5, 0.5})
	require.NotNil(t, shape)

	proxy := dynamicProxy(1)
	body := sim.NewRigidBody(1, proxy, shape, shape.CalculateLocalInertia(1))
	sim.AddRigidBody(body)
	sim.RemoveRigidBody(body)

	before := body.WorldTransform().Position
	body.SetGravity(mgl32.Vec3{0, -9.81, 0})
	sim.Step(1.0/60.0, 2, 1.0/60.0)
	assert.Equal(t, before, body.WorldTransform().Position)
}
