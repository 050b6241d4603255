// Command gridagent-train runs policy iteration to convergence (or to
// max_iter) over the map and stop criteria described by a config file,
// and writes the resulting policy to disk.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/niceyeti/gridagent/config"
	"github.com/niceyeti/gridagent/density"
	"github.com/niceyeti/gridagent/geometry"
	"github.com/niceyeti/gridagent/policytable"
	"github.com/niceyeti/gridagent/reward"
	"github.com/niceyeti/gridagent/server"
	"github.com/niceyeti/gridagent/server/cell_views"
	"github.com/niceyeti/gridagent/train"
	"github.com/niceyeti/gridagent/valuefunc"
	"github.com/niceyeti/gridagent/vss"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	policyPath := flag.String("policy", "", "policy output path, overrides the config file's policy directive")
	processes := flag.Int("processes", 0, "number of worker goroutines; 1 selects the sequential path")
	useFloat := flag.Bool("use_float", false, "use 32-bit value buffers instead of the 64-bit default")
	dryRun := flag.Bool("dry_run", false, "run training but skip writing the policy file")
	maxIter := flag.Int("max_iter", 0, "iteration cap")
	valueTol := flag.Float64("value_function_tolerance", -1, "stop once max value delta falls at or below this")
	actionsTol := flag.Int("changed_actions_tolerance", -1, "stop once changed actions falls at or below this")
	actionsPctTol := flag.Float64("changed_actions_percentage_tolerance", -1, "stop once the changed-actions fraction falls at or below this")
	hyperparams := flag.String("config", "", "optional YAML hyperparameter overlay")
	serve := flag.Bool("serve", false, "serve a live browser visualization of the value function while training")
	addr := flag.String("addr", ":8080", "address for --serve")
	flag.Parse()

	if flag.NArg() != 1 {
		return fmt.Errorf("usage: gridagent-train [flags] <configs path>")
	}

	cfg := config.NewTrainConfig()
	if *policyPath != "" {
		cfg.WithPolicyPath(*policyPath)
	}
	if *processes > 0 {
		cfg.WithProcesses(*processes)
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "use_float" {
			cfg.WithUseFloat(*useFloat)
		}
	})
	if *maxIter > 0 {
		cfg.WithMaxIter(*maxIter)
	}
	if *valueTol >= 0 {
		cfg.WithValueTolerance(*valueTol)
	}
	if *actionsTol >= 0 {
		cfg.WithActionsTolerance(*actionsTol)
	}
	if *actionsPctTol >= 0 {
		cfg.WithActionsPercentageTolerance(*actionsPctTol)
	}

	if err := config.ParseTrainConfig(flag.Arg(0), cfg, nil); err != nil {
		return err
	}
	if *hyperparams != "" {
		overrides, err := config.LoadHyperParamOverrides(*hyperparams)
		if err != nil {
			return err
		}
		overrides.Apply(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.PolicyPath == "" {
		return fmt.Errorf("gridagent-train: no policy output path given (--policy or the config's `policy` directive)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.UseFloat {
		return runTrain[float32](ctx, cfg, *dryRun, *serve, *addr)
	}
	return runTrain[float64](ctx, cfg, *dryRun, *serve, *addr)
}

func runTrain[T valuefunc.Float](ctx context.Context, cfg *config.TrainConfig, dryRun, serve bool, addr string) error {
	space := vss.Build(cfg.MapSize, cfg.Obstacles)
	fmt.Printf("built valid state space: %d states\n", space.Len())
	if err := config.ValidateSpace(space.Len()); err != nil {
		return err
	}

	agentDensity, err := density.NewDiscreteDistribution(
		cfg.AgentDensityParams[0], cfg.AgentDensityParams[1],
		cfg.AgentDensityParams[2], cfg.AgentDensityParams[3])
	if err != nil {
		return err
	}

	var rewardFn reward.Function = reward.Dense{}
	if cfg.SparseReward {
		rewardFn = reward.Sparse{}
	}

	policy := policytable.New(space.Len(), geometry.Up)
	values := valuefunc.New[T](space.Len(), 0)

	trainer, err := train.New(train.Config[T]{
		Space:    space,
		Policy:   policy,
		Values:   values,
		Reward:   rewardFn,
		Density:  agentDensity,
		Discount: T(cfg.Discount),

		Processes: cfg.Processes,
		Stop: train.StopCriteria{
			MaxIter:                    cfg.MaxIter,
			ValueTolerance:             cfg.ValueTolerance,
			ActionsTolerance:           cfg.ActionsTolerance,
			ActionsPercentageTolerance: cfg.ActionsPercentageTolerance,
		},
		PolicyFilePath: cfg.PolicyPath,
		DryRun:         dryRun,
	})
	if err != nil {
		return err
	}

	trainer.RegisterCallback(func(d train.TrainData) {
		if d.Iteration%100 == 1 {
			fmt.Printf("iteration %d: mean value %.4f, max delta %.6f, changed actions %d (%.2f%%)\n",
				d.Iteration, d.MeanValue, d.MaxValueDiff, d.ChangedActions, 100*d.ChangedActionsPercentage)
		}
	})

	if serve {
		reference := geometry.Vec2D{X: cfg.MapSize.X - 1, Y: cfg.MapSize.Y - 1}
		initial := cell_views.BuildSnapshot(space, values, policy, cfg.MapSize, reference, reference)
		updates := server.PublishSnapshots(ctx, space, values, policy, cfg.MapSize, reference, reference, 500*time.Millisecond)
		srv, err := server.NewServer(ctx, addr, initial, updates)
		if err != nil {
			return err
		}
		go func() {
			if err := srv.Serve(); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
		}()
	}

	return trainer.Run(ctx)
}
