package physkit

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// Config tunes the step loop and world placement. Zero values are filled in
// from DefaultConfig by NewWorld, so a partially specified file is fine.
type Config struct {
	// MaxTimestep clamps a single step's wall-clock delta, so a stall does
	// not produce one destabilizing giant step.
	MaxTimestep float32 `yaml:"max_timestep"`
	// FixedSubstep is the solver's fixed integration step.
	FixedSubstep float32 `yaml:"fixed_substep"`
	// MaxSubsteps bounds catch-up iterations per step.
	MaxSubsteps int `yaml:"max_substeps"`

	// Gravity is the default local gravity handed to newly spawned
	// proxies by callers; the world itself applies whatever each proxy
	// reports.
	Gravity [3]float32 `yaml:"gravity"`

	// OriginOffset translates world space into simulation space whenever
	// objects are placed into the simulator.
	OriginOffset [3]float32 `yaml:"origin_offset"`

	// Ground fixture: a permanent static slab registered at world
	// creation and freed at Close.
	GroundEnabled    bool    `yaml:"ground_enabled"`
	GroundHalfSide   float32 `yaml:"ground_half_side"`
	GroundHalfHeight float32 `yaml:"ground_half_height"`
}

func DefaultConfig() Config {
	return Config{
		MaxTimestep:      1.0 / 30.0,
		FixedSubstep:     1.0 / 60.0,
		MaxSubsteps:      2,
		Gravity:          [3]float32{0, -9.81, 0},
		GroundEnabled:    true,
		GroundHalfSide:   200,
		GroundHalfHeight: 1,
	}
}

// LoadConfig reads a YAML config file, filling unset step-tuning fields with
// defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg := Config{}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.MaxTimestep <= 0 {
		c.MaxTimestep = def.MaxTimestep
	}
	if c.FixedSubstep <= 0 {
		c.FixedSubstep = def.FixedSubstep
	}
	if c.MaxSubsteps <= 0 {
		c.MaxSubsteps = def.MaxSubsteps
	}
	if c.GroundEnabled && c.GroundHalfSide <= 0 {
		c.GroundHalfSide = def.GroundHalfSide
	}
	if c.GroundEnabled && c.GroundHalfHeight <= 0 {
		c.GroundHalfHeight = def.GroundHalfHeight
	}
}

func (c Config) GravityVec() mgl32.Vec3 {
	return mgl32.Vec3{c.Gravity[0], c.Gravity[1], c.Gravity[2]}
}

func (c Config) OriginOffsetVec() mgl32.Vec3 {
	return mgl32.Vec3{c.OriginOffset[0], c.OriginOffset[1], c.OriginOffset[2]}
}
