// Package asciiview renders a recorded game session to the console: a
// magnified grid of the map with obstacle, actor, and action glyphs,
// replayed tick by tick either on a fixed interval or by waiting for
// Enter between ticks.
package asciiview

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/niceyeti/gridagent/geometry"
	"github.com/niceyeti/gridagent/simulate"
)

const (
	voidChar     = ' '
	unknownChar  = '?'
	freeSpace    = ' '
	obstacleChar = 'X'
	agentChar    = 'A'
	targetChar   = 'T'
	opponentChar = 'E'
	winChar      = 'W'
	loseChar     = 'L'
	upChar       = '^'
	rightChar    = '>'
	downChar     = 'v'
	leftChar     = '<'

	horizontalBorderChar = '='
	verticalBorderChar   = '‖'
	horizontalBorderSize = 1
	verticalBorderSize   = 1

	gridHorizontalFactor = 6
	gridHorizontalShift  = 2
	gridVerticalFactor   = 3
	gridVerticalShift    = 1
)

// Renderer magnifies an N×M map by a fixed factor so every cell has room
// for both an actor glyph and an adjacent action arrow, then replays a
// recorded sequence of simulate.GameData snapshots over it.
type Renderer struct {
	gridSize  geometry.Vec2D
	grid      []rune
	snapshots []simulate.GameData
}

// New builds a Renderer for a map of the given size and obstacles.
func New(mapSize geometry.Vec2D, obstacles []geometry.Obstacle) *Renderer {
	r := &Renderer{
		gridSize: geometry.Vec2D{X: gridHorizontalFactor * mapSize.X, Y: gridVerticalFactor * mapSize.Y},
	}
	r.grid = make([]rune, r.gridSize.X*r.gridSize.Y)
	for i := range r.grid {
		r.grid[i] = voidChar
	}
	r.addFreeSpace(mapSize)
	r.addObstacles(obstacles)
	return r
}

// Callback returns a function suitable for simulate.GameManager's
// RegisterCallback; it only records each tick, replayed later by
// StartAuto or StartManual. The game therefore always runs to
// completion before anything is drawn, exactly like recording a replay.
func (r *Renderer) Callback() func(simulate.GameData) {
	return func(gd simulate.GameData) {
		r.snapshots = append(r.snapshots, gd)
	}
}

func (r *Renderer) addFreeSpace(mapSize geometry.Vec2D) {
	for x := 0; x < mapSize.X; x++ {
		for y := 0; y < mapSize.Y; y++ {
			r.grid[r.posToGridIndex(geometry.Vec2D{X: x, Y: y})] = freeSpace
		}
	}
}

func (r *Renderer) addObstacles(obstacles []geometry.Obstacle) {
	for _, o := range obstacles {
		for x := o.Origin.X; x < o.Origin.X+o.Extent.X; x++ {
			for y := o.Origin.Y; y < o.Origin.Y+o.Extent.Y; y++ {
				r.grid[r.posToGridIndex(geometry.Vec2D{X: x, Y: y})] = obstacleChar
			}
		}
	}
}

func (r *Renderer) posToGridIndex(pos geometry.Vec2D) int {
	return (gridHorizontalShift + gridHorizontalFactor*pos.X) +
		(r.gridSize.Y-(gridVerticalShift+gridVerticalFactor*pos.Y)-1)*r.gridSize.X
}

func (r *Renderer) actionToGridIndex(pos geometry.Vec2D, a geometry.Action) int {
	idx := r.posToGridIndex(pos)
	switch a {
	case geometry.Up:
		idx -= r.gridSize.X
	case geometry.Right:
		idx += 2
	case geometry.Down:
		idx += r.gridSize.X
	case geometry.Left:
		idx -= 2
	}
	return idx
}

func actionGlyph(a geometry.Action) rune {
	switch a {
	case geometry.Up:
		return upChar
	case geometry.Right:
		return rightChar
	case geometry.Down:
		return downChar
	case geometry.Left:
		return leftChar
	default:
		return unknownChar
	}
}

// StartAuto replays the recorded session, pausing interval between ticks.
func (r *Renderer) StartAuto(interval time.Duration) {
	r.start(func() { time.Sleep(interval) })
}

// StartManual replays the recorded session, waiting for Enter on stdin
// between ticks.
func (r *Renderer) StartManual() {
	scanner := bufio.NewScanner(os.Stdin)
	r.start(func() {
		fmt.Println("Press 'Enter' to continue")
		scanner.Scan()
	})
}

func (r *Renderer) start(betweenTicks func()) {
	var last *simulate.GameData
	for i := range r.snapshots {
		gd := r.snapshots[i]
		r.updateGrid(gd, last)
		r.printGrid()
		last = &r.snapshots[i]
		switch {
		case gd.State.Agent == gd.State.Target:
			fmt.Println("Win!")
		case gd.State.Agent == gd.State.Opponent:
			fmt.Println("Lost")
		default:
			betweenTicks()
		}
	}
}

func (r *Renderer) updateGrid(gd simulate.GameData, last *simulate.GameData) {
	if last != nil {
		r.clean(*last)
	}
	switch {
	case gd.State.Agent == gd.State.Target:
		r.drawWin(gd)
	case gd.State.Agent == gd.State.Opponent:
		r.drawLoss(gd)
	default:
		r.draw(gd)
	}
}

func (r *Renderer) clean(gd simulate.GameData) {
	r.grid[r.posToGridIndex(gd.State.Agent)] = freeSpace
	r.grid[r.posToGridIndex(gd.State.Target)] = freeSpace
	r.grid[r.posToGridIndex(gd.State.Opponent)] = freeSpace
	r.grid[r.actionToGridIndex(gd.State.Agent, gd.AgentAction)] = voidChar
	r.grid[r.actionToGridIndex(gd.State.Target, gd.TargetAction)] = voidChar
	r.grid[r.actionToGridIndex(gd.State.Opponent, gd.OpponentAction)] = voidChar
}

func (r *Renderer) draw(gd simulate.GameData) {
	r.grid[r.posToGridIndex(gd.State.Agent)] = agentChar
	r.grid[r.posToGridIndex(gd.State.Target)] = targetChar
	r.grid[r.posToGridIndex(gd.State.Opponent)] = opponentChar
	r.grid[r.actionToGridIndex(gd.State.Agent, gd.AgentAction)] = actionGlyph(gd.AgentAction)
	r.grid[r.actionToGridIndex(gd.State.Target, gd.TargetAction)] = actionGlyph(gd.TargetAction)
	r.grid[r.actionToGridIndex(gd.State.Opponent, gd.OpponentAction)] = actionGlyph(gd.OpponentAction)
}

func (r *Renderer) drawWin(gd simulate.GameData) {
	r.grid[r.posToGridIndex(gd.State.Agent)] = winChar
	r.grid[r.posToGridIndex(gd.State.Opponent)] = opponentChar
}

func (r *Renderer) drawLoss(gd simulate.GameData) {
	r.grid[r.posToGridIndex(gd.State.Agent)] = loseChar
	r.grid[r.posToGridIndex(gd.State.Target)] = targetChar
}

func (r *Renderer) printGrid() {
	border := string(repeatRune(horizontalBorderChar, r.gridSize.X+verticalBorderSize*2))
	fmt.Println(border)
	for y := 0; y < r.gridSize.Y; y++ {
		start := y * r.gridSize.X
		end := start + r.gridSize.X
		line := string(r.grid[start:end])
		fmt.Println(string(verticalBorderChar) + line + string(verticalBorderChar))
	}
	fmt.Println(border)
}

func repeatRune(c rune, n int) []rune {
	out := make([]rune, n)
	for i := range out {
		out[i] = c
	}
	return out
}
