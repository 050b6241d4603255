package config

import (
	"fmt"
	"os"

	"github.com/niceyeti/gridagent/geometry"
)

// TrainConfig holds every setting a training run needs. Zero value is
// never valid on its own; use NewTrainConfig for spec defaults, then
// apply WithXxx calls and/or ParseTrainConfig.
type TrainConfig struct {
	MapSize            geometry.Vec2D
	Obstacles          []geometry.Obstacle
	PolicyPath         string
	AgentDensityParams [4]float64 // chosen, right, opposite, left

	MaxIter                    int
	ValueTolerance             float64
	ActionsTolerance           int
	ActionsPercentageTolerance float64
	Discount                   float64
	Processes                  int
	UseFloat                   bool // true: 32-bit value buffers; false (default): 64-bit
	SparseReward               bool // true: sparse reward; false (default): dense

	frozen map[string]bool
}

// NewTrainConfig returns a TrainConfig seeded with the spec's defaults.
func NewTrainConfig() *TrainConfig {
	return &TrainConfig{
		AgentDensityParams:         [4]float64{0.9, 0.05, 0.0, 0.05},
		MaxIter:                    10000,
		ValueTolerance:             1e-4,
		ActionsTolerance:           0,
		ActionsPercentageTolerance: 0,
		Discount:                   0.9,
		Processes:                  1,
		frozen:                     make(map[string]bool),
	}
}

func (c *TrainConfig) freeze(field string, apply func()) *TrainConfig {
	apply()
	c.frozen[field] = true
	return c
}

func (c *TrainConfig) WithMapSize(n, m int) *TrainConfig {
	return c.freeze("mapsize", func() { c.MapSize = geometry.Vec2D{X: n, Y: m} })
}

// WithObstacle appends an obstacle. Obstacles always accumulate from
// both caller calls and file directives; there is no single field to
// freeze.
func (c *TrainConfig) WithObstacle(o geometry.Obstacle) *TrainConfig {
	c.Obstacles = append(c.Obstacles, o)
	return c
}

func (c *TrainConfig) WithPolicyPath(path string) *TrainConfig {
	return c.freeze("policy", func() { c.PolicyPath = path })
}

func (c *TrainConfig) WithAgentDensity(chosen, right, opposite, left float64) *TrainConfig {
	return c.freeze("ddmtd", func() { c.AgentDensityParams = [4]float64{chosen, right, opposite, left} })
}

func (c *TrainConfig) WithMaxIter(n int) *TrainConfig {
	return c.freeze("maxiter", func() { c.MaxIter = n })
}

func (c *TrainConfig) WithValueTolerance(v float64) *TrainConfig {
	return c.freeze("valuetolerance", func() { c.ValueTolerance = v })
}

func (c *TrainConfig) WithActionsTolerance(n int) *TrainConfig {
	return c.freeze("actiontolerance", func() { c.ActionsTolerance = n })
}

func (c *TrainConfig) WithActionsPercentageTolerance(v float64) *TrainConfig {
	return c.freeze("actionperctolerance", func() { c.ActionsPercentageTolerance = v })
}

func (c *TrainConfig) WithDiscount(v float64) *TrainConfig {
	return c.freeze("discount", func() { c.Discount = v })
}

func (c *TrainConfig) WithProcesses(n int) *TrainConfig {
	return c.freeze("processes", func() { c.Processes = n })
}

func (c *TrainConfig) WithUseFloat(useFloat bool) *TrainConfig {
	return c.freeze("usefloat", func() { c.UseFloat = useFloat })
}

func (c *TrainConfig) WithSparseReward(sparse bool) *TrainConfig {
	return c.freeze("reward", func() { c.SparseReward = sparse })
}

// ParseTrainConfig applies every directive in the file at path to cfg,
// skipping any field the caller already froze, and forwarding anything
// it doesn't recognize to hook (a nil hook silently ignores them).
func ParseTrainConfig(path string, cfg *TrainConfig, hook ExtensionHook) error {
	if hook == nil {
		hook = noopHook
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	return scanDirectives(f, func(_ int, tag string, args []string) error {
		return applyTrainDirective(cfg, tag, args, hook)
	})
}

func applyTrainDirective(cfg *TrainConfig, tag string, args []string, hook ExtensionHook) error {
	switch tag {
	case "mapsize":
		if cfg.frozen["mapsize"] {
			return nil
		}
		v, err := parseVec2D(args)
		if err != nil {
			return fmt.Errorf("mapsize: %w", err)
		}
		cfg.MapSize = v
	case "obstacle":
		o, err := parseObstacle(args)
		if err != nil {
			return err
		}
		cfg.Obstacles = append(cfg.Obstacles, o)
	case "policy":
		if cfg.frozen["policy"] {
			return nil
		}
		if len(args) != 1 {
			return fmt.Errorf("policy: expected 1 argument, got %d", len(args))
		}
		cfg.PolicyPath = args[0]
	case "ddmtd":
		if len(args) != 5 || args[0] != "agent" {
			return fmt.Errorf(`ddmtd: a training config only recognizes "ddmtd agent <4 probabilities>"`)
		}
		if cfg.frozen["ddmtd"] {
			return nil
		}
		probs, err := parseFloats(args[1:])
		if err != nil {
			return fmt.Errorf("ddmtd agent: %w", err)
		}
		copy(cfg.AgentDensityParams[:], probs)
	case "maxiter":
		if cfg.frozen["maxiter"] {
			return nil
		}
		n, err := parseInt(args)
		if err != nil {
			return fmt.Errorf("maxiter: %w", err)
		}
		cfg.MaxIter = n
	case "valuetolerance":
		if cfg.frozen["valuetolerance"] {
			return nil
		}
		v, err := parseFloat(args)
		if err != nil {
			return fmt.Errorf("valuetolerance: %w", err)
		}
		cfg.ValueTolerance = v
	case "actiontolerance":
		if cfg.frozen["actiontolerance"] {
			return nil
		}
		n, err := parseInt(args)
		if err != nil {
			return fmt.Errorf("actiontolerance: %w", err)
		}
		cfg.ActionsTolerance = n
	case "actionperctolerance":
		if cfg.frozen["actionperctolerance"] {
			return nil
		}
		v, err := parseFloat(args)
		if err != nil {
			return fmt.Errorf("actionperctolerance: %w", err)
		}
		cfg.ActionsPercentageTolerance = v
	case "discount":
		if cfg.frozen["discount"] {
			return nil
		}
		v, err := parseFloat(args)
		if err != nil {
			return fmt.Errorf("discount: %w", err)
		}
		cfg.Discount = v
	case "processes":
		if cfg.frozen["processes"] {
			return nil
		}
		n, err := parseInt(args)
		if err != nil {
			return fmt.Errorf("processes: %w", err)
		}
		cfg.Processes = n
	case "usefloat":
		if !cfg.frozen["usefloat"] {
			cfg.UseFloat = true
		}
	case "usedouble":
		if !cfg.frozen["usefloat"] {
			cfg.UseFloat = false
		}
	case "densereward":
		if !cfg.frozen["reward"] {
			cfg.SparseReward = false
		}
	case "sparsereward":
		if !cfg.frozen["reward"] {
			cfg.SparseReward = true
		}
	case "agent", "target", "opponent":
		// Game-only starting-position directives; harmless in a file
		// that also doubles as the corresponding game's config.
	default:
		return hook(tag, args)
	}
	return nil
}

// Validate runs the eager validation checks required before learning
// starts.
func (c *TrainConfig) Validate() error {
	if c.MapSize.X <= 0 || c.MapSize.Y <= 0 {
		return fmt.Errorf("config: grid dimensions must be positive, got %v", c.MapSize)
	}
	for _, o := range c.Obstacles {
		if !o.WithinMap(c.MapSize) {
			return fmt.Errorf("config: obstacle %+v is out of bounds for map %v", o, c.MapSize)
		}
	}
	sum := 0.0
	for _, p := range c.AgentDensityParams {
		if p < 0 {
			return fmt.Errorf("config: agent transition density probabilities must be non-negative, got %v", c.AgentDensityParams)
		}
		sum += p
	}
	if d := sum - 1.0; d < -1e-9 || d > 1e-9 {
		return fmt.Errorf("config: agent transition density probabilities must sum to 1, got %v", c.AgentDensityParams)
	}
	if c.MaxIter <= 0 {
		return fmt.Errorf("config: maxiter must be positive, got %d", c.MaxIter)
	}
	if c.Discount <= 0 || c.Discount > 1 {
		return fmt.Errorf("config: discount must be in (0,1], got %v", c.Discount)
	}
	if c.ValueTolerance < 0 || c.ActionsTolerance < 0 || c.ActionsPercentageTolerance < 0 {
		return fmt.Errorf("config: tolerances must be non-negative")
	}
	if c.Processes <= 0 {
		return fmt.Errorf("config: processes must be positive, got %d", c.Processes)
	}
	return nil
}

// ValidateSpace rejects a valid state space too small to train over. It
// is a separate, later check from Validate because space_size depends on
// obstacles and the map's actual filtered geometry (vss.Build), not
// anything derivable from the config fields alone.
func ValidateSpace(spaceLen int) error {
	if spaceLen < 3 {
		return fmt.Errorf("config: valid state space has only %d states, need at least 3", spaceLen)
	}
	return nil
}
