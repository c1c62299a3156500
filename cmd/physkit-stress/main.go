// Stress and smoke harness for the physkit world facade: builds a voxel
// floor, spawns falling dynamic boxes, churns hard/easy updates, and steps
// the reference simulator for a fixed duration.
package main

import (
	"math/rand"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gekko3d/physkit"
)

var (
	configPath string
	entities   int
	floorSide  int
	duration   time.Duration
	seed       int64
	verbose    bool
)

func main() {
	root := &cobra.Command{
		Use:   "physkit-stress",
		Short: "Spawn boxes over a voxel floor and step the world",
		RunE:  run,
	}
	root.Flags().StringVarP(&configPath, "config", "c", "", "world config YAML (defaults when empty)")
	root.Flags().IntVarP(&entities, "entities", "n", 200, "dynamic boxes to spawn")
	root.Flags().IntVar(&floorSide, "floor", 16, "voxel floor side length")
	root.Flags().DurationVarP(&duration, "duration", "d", 5*time.Second, "how long to run")
	root.Flags().Int64Var(&seed, "seed", 42, "spawn RNG seed")
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logger, err := buildLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	cfg := physkit.DefaultConfig()
	if configPath != "" {
		cfg, err = physkit.LoadConfig(configPath)
		if err != nil {
			return err
		}
	}

	world := physkit.NewWorld(physkit.NewBasicSimulator(), cfg, logger)
	defer world.Close()

	placed := 0
	for x := 0; x < floorSide; x++ {
		for z := 0; z < floorSide; z++ {
			if world.AddVoxel(mgl32.Vec3{float32(x), 0, float32(z)}, 1) {
				placed++
			}
		}
	}
	logger.Info("floor built", zap.Int("voxels", placed))

	rng := rand.New(rand.NewSource(seed))
	proxies := make([]*physkit.EntityMotionState, 0, entities)
	for i := 0; i < entities; i++ {
		proxy := physkit.NewEntityMotionState()
		proxy.Type = physkit.MotionDynamic
		proxy.MassKg = 0.5 + rng.Float32()*4
		proxy.HalfExtents = mgl32.Vec3{0.5, 0.5, 0.5}
		proxy.Position = mgl32.Vec3{
			rng.Float32() * float32(floorSide),
			3 + rng.Float32()*20,
			rng.Float32() * float32(floorSide),
		}
		proxy.Gravity = cfg.GravityVec()
		proxy.FrictionC = 0.5
		proxy.RestitutionC = rng.Float32() * 0.5
		if world.AddEntity(proxy) {
			proxies = append(proxies, proxy)
		}
	}
	logger.Info("entities spawned", zap.Int("count", len(proxies)))

	ticker := time.NewTicker(time.Second / 60)
	defer ticker.Stop()
	deadline := time.Now().Add(duration)

	frames := 0
	for now := range ticker.C {
		if now.After(deadline) {
			break
		}
		world.StepSimulation()
		frames++

		// Churn the update protocol: occasionally flip a body's
		// classification or nudge its velocity.
		if frames%30 == 0 && len(proxies) > 0 {
			proxy := proxies[rng.Intn(len(proxies))]
			switch rng.Intn(3) {
			case 0:
				if proxy.Type == physkit.MotionDynamic {
					proxy.Type = physkit.MotionStatic
				} else {
					proxy.Type = physkit.MotionDynamic
				}
				world.UpdateEntity(proxy, 0)
			case 1:
				proxy.Velocity = mgl32.Vec3{0, 5 + rng.Float32()*5, 0}
				world.UpdateEntity(proxy, physkit.UpdateVelocity)
			default:
				proxy.MassKg = 0.5 + rng.Float32()*4
				world.UpdateEntity(proxy, physkit.UpdateMass)
			}
		}
	}

	for _, proxy := range proxies {
		world.RemoveEntity(proxy)
	}
	logger.Info("done",
		zap.Int("frames", frames),
		zap.Int("cachedShapes", world.Shapes().Len()),
		zap.Int("voxels", world.Voxels().Len()))
	return nil
}

func buildLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
