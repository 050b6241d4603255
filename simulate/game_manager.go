package simulate

import (
	"math/rand"

	"github.com/niceyeti/gridagent/density"
	"github.com/niceyeti/gridagent/geometry"
	"github.com/niceyeti/gridagent/vss"
)

// Result is the outcome of one episode.
type Result int

const (
	Fail Result = iota
	Success
	Waiting
)

func (r Result) String() string {
	switch r {
	case Fail:
		return "Fail"
	case Success:
		return "Success"
	case Waiting:
		return "Waiting"
	default:
		return "Unknown"
	}
}

// GameData is the per-tick snapshot handed to a registered callback: the
// joint state the actors moved from, and the action each chose that
// tick. A sentinel of geometry.NumActions marks an actor that did not
// move this tick (the target's and opponent's actions on a tick whose
// agent move ends the episode, and every action field on the single
// final snapshot emitted after the episode ends).
type GameData struct {
	State          geometry.State
	AgentAction    geometry.Action
	TargetAction   geometry.Action
	OpponentAction geometry.Action
}

func noActionGameData(state geometry.State) GameData {
	return GameData{
		State:          state,
		AgentAction:    geometry.NumActions,
		TargetAction:   geometry.NumActions,
		OpponentAction: geometry.NumActions,
	}
}

// Config assembles everything one episode needs: the valid state space
// it runs over, the starting joint state, and a policy plus transition
// density for each of the three actors.
type Config struct {
	Space      *vss.ValidStateSpace
	StartState geometry.State

	AgentPolicy, TargetPolicy, OpponentPolicy             Policy
	AgentDensity, TargetDensity, OpponentDensity          density.TransitionDensity

	Rng *rand.Rand
}

// GameManager runs a single episode to completion: the agent moves
// first; if it now coincides with the target the episode ends in
// Success, with the opponent it ends in Fail. Otherwise the target and
// opponent move in turn, each forbidden from landing on the other.
type GameManager struct {
	space  *vss.ValidStateSpace
	state  geometry.State
	agent  *movingEntity
	target *movingEntity
	opponent *movingEntity

	result   Result
	callback func(GameData)
}

// New builds a GameManager ready to Start.
func New(cfg Config) *GameManager {
	gm := &GameManager{
		space:    cfg.Space,
		state:    cfg.StartState,
		result:   Waiting,
		callback: func(GameData) {},
	}
	gm.agent = newMovingEntity(&gm.state.Agent, cfg.AgentPolicy, cfg.AgentDensity, cfg.Rng)
	gm.target = newMovingEntity(&gm.state.Target, cfg.TargetPolicy, cfg.TargetDensity, cfg.Rng)
	gm.opponent = newMovingEntity(&gm.state.Opponent, cfg.OpponentPolicy, cfg.OpponentDensity, cfg.Rng)
	return gm
}

// RegisterCallback installs fn to receive a GameData snapshot on every
// tick, plus one final snapshot (with no-op actions) once the episode
// ends.
func (gm *GameManager) RegisterCallback(fn func(GameData)) {
	gm.callback = fn
}

// Start runs the episode to a terminal Result, invoking the registered
// callback once per tick.
func (gm *GameManager) Start() Result {
	for gm.result == Waiting {
		gd := noActionGameData(gm.state)
		gm.nextIteration(&gd)
		gm.callback(gd)
	}
	gm.callback(noActionGameData(gm.state))
	return gm.result
}

func (gm *GameManager) nextIteration(gd *GameData) {
	gd.AgentAction = gm.agent.move(&gm.state, gm.space, nil, false)
	if gm.checkResult() {
		return
	}
	gd.TargetAction = gm.target.move(&gm.state, gm.space, &gm.state.Opponent, true)
	gd.OpponentAction = gm.opponent.move(&gm.state, gm.space, &gm.state.Target, true)
	gm.checkResult()
}

func (gm *GameManager) checkResult() bool {
	switch {
	case gm.state.Agent == gm.state.Target:
		gm.result = Success
		return true
	case gm.state.Agent == gm.state.Opponent:
		gm.result = Fail
		return true
	default:
		return false
	}
}
