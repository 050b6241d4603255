package server

import (
	"context"
	"time"

	"github.com/niceyeti/gridagent/geometry"
	"github.com/niceyeti/gridagent/policytable"
	"github.com/niceyeti/gridagent/server/cell_views"
	"github.com/niceyeti/gridagent/valuefunc"
	"github.com/niceyeti/gridagent/vss"
)

// PublishSnapshots polls a training run's value buffers and policy every
// interval and emits a GridSnapshot reflecting their current state, for as
// long as ctx stays alive. The returned channel is closed when ctx is
// done, after the sender goroutine exits.
func PublishSnapshots[T valuefunc.Float](
	ctx context.Context,
	space *vss.ValidStateSpace,
	values *valuefunc.Buffers[T],
	policy *policytable.Policy,
	mapSize geometry.Vec2D,
	targetPos, opponentPos geometry.Vec2D,
	interval time.Duration,
) <-chan cell_views.GridSnapshot {
	out := make(chan cell_views.GridSnapshot)
	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				snapshot := cell_views.BuildSnapshot(space, values, policy, mapSize, targetPos, opponentPos)
				select {
				case out <- snapshot:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
