// Command gridagent-game simulates one episode against a trained policy
// (or a uniform random fallback) and replays it to the console.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/niceyeti/gridagent/asciiview"
	"github.com/niceyeti/gridagent/config"
	"github.com/niceyeti/gridagent/density"
	"github.com/niceyeti/gridagent/geometry"
	"github.com/niceyeti/gridagent/policytable"
	"github.com/niceyeti/gridagent/simulate"
	"github.com/niceyeti/gridagent/vss"
)

// vec2DFlag parses the CLI's "(x,y)" start-position syntax into a
// geometry.Vec2D.
type vec2DFlag struct {
	set bool
	geometry.Vec2D
}

func (v *vec2DFlag) String() string {
	return fmt.Sprintf("(%d,%d)", v.X, v.Y)
}

func (v *vec2DFlag) Set(s string) error {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return fmt.Errorf("expected (x,y), got %q", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return fmt.Errorf("expected an integer x, got %q", parts[0])
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return fmt.Errorf("expected an integer y, got %q", parts[1])
	}
	v.X, v.Y, v.set = x, y, true
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	policyPath := flag.String("policy", "", "trained policy file; falls back to a uniform random agent if omitted")
	var agentStart, targetStart, opponentStart vec2DFlag
	flag.Var(&agentStart, "agent_start", "agent starting position (x,y)")
	flag.Var(&targetStart, "target_start", "target starting position (x,y)")
	flag.Var(&opponentStart, "opponent_start", "opponent starting position (x,y)")
	timeStep := flag.Duration("time_step", 0, "delay between ticks when not in manual mode")
	manual := flag.Bool("manual", false, "wait for Enter between ticks instead of sleeping time_step")
	ascii := flag.Bool("ascii", true, "replay the episode as an ASCII console view after it completes")
	flag.Parse()

	if flag.NArg() != 1 {
		return fmt.Errorf("usage: gridagent-game [flags] <configs path>")
	}

	cfg := config.NewGameConfig()
	if agentStart.set {
		cfg.WithAgentStart(agentStart.Vec2D)
	}
	if targetStart.set {
		cfg.WithTargetStart(targetStart.Vec2D)
	}
	if opponentStart.set {
		cfg.WithOpponentStart(opponentStart.Vec2D)
	}
	if *policyPath != "" {
		cfg.WithPolicyPath(*policyPath)
	}
	if *timeStep > 0 {
		cfg.WithTimeStep(*timeStep)
	}
	if *manual {
		cfg.WithManual(true)
	}

	if err := config.ParseGameConfig(flag.Arg(0), cfg, nil); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	space := vss.Build(cfg.MapSize, cfg.Obstacles)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	agentPolicy := simulate.UniformPolicy(rng)
	if cfg.PolicyPath != "" {
		table, err := policytable.Load(cfg.PolicyPath)
		if err != nil {
			fmt.Printf("warning: could not load policy %s (%v); falling back to a uniform random agent\n", cfg.PolicyPath, err)
		} else if table.Len() != space.Len() {
			fmt.Printf("warning: policy %s has %d entries but this map has %d valid states; falling back to a uniform random agent\n",
				cfg.PolicyPath, table.Len(), space.Len())
		} else {
			agentPolicy = simulate.TabularPolicy(table, space)
		}
	} else {
		fmt.Println("warning: no policy file given; the agent will move uniformly at random")
	}

	agentDensity, err := density.NewDiscreteDistribution(
		cfg.AgentDensityParams[0], cfg.AgentDensityParams[1], cfg.AgentDensityParams[2], cfg.AgentDensityParams[3])
	if err != nil {
		return err
	}
	targetDensity, err := density.NewDiscreteDistribution(
		cfg.TargetDensityParams[0], cfg.TargetDensityParams[1], cfg.TargetDensityParams[2], cfg.TargetDensityParams[3])
	if err != nil {
		return err
	}
	opponentDensity, err := density.NewDiscreteDistribution(
		cfg.OpponentDensityParams[0], cfg.OpponentDensityParams[1], cfg.OpponentDensityParams[2], cfg.OpponentDensityParams[3])
	if err != nil {
		return err
	}

	var renderer *asciiview.Renderer
	if *ascii {
		renderer = asciiview.New(cfg.MapSize, cfg.Obstacles)
	}

	gm := simulate.New(simulate.Config{
		Space: space,
		StartState: geometry.State{
			Agent:    cfg.AgentStart,
			Target:   cfg.TargetStart,
			Opponent: cfg.OpponentStart,
		},
		AgentPolicy:     agentPolicy,
		TargetPolicy:    simulate.UniformPolicy(rng),
		OpponentPolicy:  simulate.UniformPolicy(rng),
		AgentDensity:    agentDensity,
		TargetDensity:   targetDensity,
		OpponentDensity: opponentDensity,
		Rng:             rng,
	})
	if renderer != nil {
		gm.RegisterCallback(renderer.Callback())
	}

	result := gm.Start()
	fmt.Println("result:", result)

	if renderer == nil {
		return nil
	}
	if cfg.Manual {
		renderer.StartManual()
	} else {
		renderer.StartAuto(cfg.TimeStep)
	}
	return nil
}
