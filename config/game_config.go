package config

import (
	"fmt"
	"os"
	"time"

	"github.com/niceyeti/gridagent/geometry"
)

// GameConfig holds every setting a single-episode simulation needs.
type GameConfig struct {
	MapSize    geometry.Vec2D
	Obstacles  []geometry.Obstacle
	PolicyPath string

	AgentStart, TargetStart, OpponentStart geometry.Vec2D

	AgentDensityParams, TargetDensityParams, OpponentDensityParams [4]float64

	TimeStep time.Duration
	Manual   bool

	frozen map[string]bool
}

// NewGameConfig returns a GameConfig seeded with the spec's defaults.
func NewGameConfig() *GameConfig {
	defaultDensity := [4]float64{0.9, 0.05, 0.0, 0.05}
	return &GameConfig{
		AgentDensityParams:    defaultDensity,
		TargetDensityParams:   defaultDensity,
		OpponentDensityParams: defaultDensity,
		TimeStep:              500 * time.Millisecond,
		frozen:                make(map[string]bool),
	}
}

func (c *GameConfig) freeze(field string, apply func()) *GameConfig {
	apply()
	c.frozen[field] = true
	return c
}

func (c *GameConfig) WithMapSize(n, m int) *GameConfig {
	return c.freeze("mapsize", func() { c.MapSize = geometry.Vec2D{X: n, Y: m} })
}

func (c *GameConfig) WithObstacle(o geometry.Obstacle) *GameConfig {
	c.Obstacles = append(c.Obstacles, o)
	return c
}

func (c *GameConfig) WithPolicyPath(path string) *GameConfig {
	return c.freeze("policy", func() { c.PolicyPath = path })
}

func (c *GameConfig) WithAgentStart(p geometry.Vec2D) *GameConfig {
	return c.freeze("agent", func() { c.AgentStart = p })
}

func (c *GameConfig) WithTargetStart(p geometry.Vec2D) *GameConfig {
	return c.freeze("target", func() { c.TargetStart = p })
}

func (c *GameConfig) WithOpponentStart(p geometry.Vec2D) *GameConfig {
	return c.freeze("opponent", func() { c.OpponentStart = p })
}

func (c *GameConfig) WithTimeStep(d time.Duration) *GameConfig {
	return c.freeze("time_step", func() { c.TimeStep = d })
}

func (c *GameConfig) WithManual(manual bool) *GameConfig {
	return c.freeze("manual", func() { c.Manual = manual })
}

// ParseGameConfig applies every directive in the file at path to cfg.
func ParseGameConfig(path string, cfg *GameConfig, hook ExtensionHook) error {
	if hook == nil {
		hook = noopHook
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	return scanDirectives(f, func(_ int, tag string, args []string) error {
		return applyGameDirective(cfg, tag, args, hook)
	})
}

func applyGameDirective(cfg *GameConfig, tag string, args []string, hook ExtensionHook) error {
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
		if len(args) != 5 {
			return fmt.Errorf("ddmtd: expected an actor name and 4 probabilities, got %d arguments", len(args))
		}
		probs, err := parseFloats(args[1:])
		if err != nil {
			return fmt.Errorf("ddmtd %s: %w", args[0], err)
		}
		switch args[0] {
		case "agent":
			if cfg.frozen["ddmtd agent"] {
				return nil
			}
			copy(cfg.AgentDensityParams[:], probs)
		case "target":
			if cfg.frozen["ddmtd target"] {
				return nil
			}
			copy(cfg.TargetDensityParams[:], probs)
		case "opponent":
			if cfg.frozen["ddmtd opponent"] {
				return nil
			}
			copy(cfg.OpponentDensityParams[:], probs)
		default:
			return fmt.Errorf("ddmtd: unrecognized actor %q", args[0])
		}
	case "agent":
		if cfg.frozen["agent"] {
			return nil
		}
		p, err := parseVec2D(args)
		if err != nil {
			return fmt.Errorf("agent: %w", err)
		}
		cfg.AgentStart = p
	case "target":
		if cfg.frozen["target"] {
			return nil
		}
		p, err := parseVec2D(args)
		if err != nil {
			return fmt.Errorf("target: %w", err)
		}
		cfg.TargetStart = p
	case "opponent":
		if cfg.frozen["opponent"] {
			return nil
		}
		p, err := parseVec2D(args)
		if err != nil {
			return fmt.Errorf("opponent: %w", err)
		}
		cfg.OpponentStart = p
	case "maxiter", "valuetolerance", "actiontolerance", "actionperctolerance",
		"discount", "processes", "usefloat", "usedouble", "densereward", "sparsereward":
		// Training-only directives; harmless in a file that also
		// doubles as the corresponding training run's config.
	default:
		return hook(tag, args)
	}
	return nil
}

// Validate runs the eager validation checks required before a game
// starts.
func (c *GameConfig) Validate() error {
	if c.MapSize.X <= 0 || c.MapSize.Y <= 0 {
		return fmt.Errorf("config: grid dimensions must be positive, got %v", c.MapSize)
	}
	for _, o := range c.Obstacles {
		if !o.WithinMap(c.MapSize) {
			return fmt.Errorf("config: obstacle %+v is out of bounds for map %v", o, c.MapSize)
		}
	}
	starts := map[string]geometry.Vec2D{
		"agent": c.AgentStart, "target": c.TargetStart, "opponent": c.OpponentStart,
	}
	for name, p := range starts {
		if p.X < 0 || p.X >= c.MapSize.X || p.Y < 0 || p.Y >= c.MapSize.Y {
			return fmt.Errorf("config: %s start %v is out of bounds for map %v", name, p, c.MapSize)
		}
		for _, o := range c.Obstacles {
			if o.Contains(p) {
				return fmt.Errorf("config: %s start %v is inside obstacle %+v", name, p, o)
			}
		}
	}
	if c.AgentStart == c.TargetStart || c.AgentStart == c.OpponentStart || c.TargetStart == c.OpponentStart {
		return fmt.Errorf("config: agent, target, and opponent must not share a starting position")
	}
	for name, probs := range map[string][4]float64{
		"agent": c.AgentDensityParams, "target": c.TargetDensityParams, "opponent": c.OpponentDensityParams,
	} {
		sum := 0.0
		for _, p := range probs {
			if p < 0 {
				return fmt.Errorf("config: %s transition density probabilities must be non-negative, got %v", name, probs)
			}
			sum += p
		}
		if d := sum - 1.0; d < -1e-9 || d > 1e-9 {
			return fmt.Errorf("config: %s transition density probabilities must sum to 1, got %v", name, probs)
		}
	}
	return nil
}
