package main

import (
	"sync"
)

// pathRequest asks a worker to resolve a route for one enemy. roomGen pins
// the request to the room generation that issued it; results for older
// generations are discarded instead of being applied to reset or freed state.
type pathRequest struct {
	room    *Room
	roomGen uint64
	enemyID uint64
	from    vec2
	to      vec2
	goal    tile
}

type pathResult struct {
	enemyID uint64
	roomGen uint64
	goal    tile
	path    []vec2
	ok      bool
}

// Pathfinder runs grid searches off the tick loop. Workers only read the
// immutable Grid and post results onto the owning room's buffered channel;
// they never touch room state directly.
type Pathfinder struct {
	grid     *Grid
	requests chan pathRequest
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func newPathfinder(grid *Grid, workers int) *Pathfinder {
	if workers <= 0 {
		workers = 2
	}
	p := &Pathfinder{
		grid:     grid,
		requests: make(chan pathRequest, 128),
		stop:     make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Submit queues a request without blocking. A full queue drops the request;
// the enemy simply keeps wandering and retries after its request cooldown.
func (p *Pathfinder) Submit(req pathRequest) bool {
	select {
	case <-p.stop:
		return false
	default:
	}
	select {
	case p.requests <- req:
		return true
	default:
		return false
	}
}

func (p *Pathfinder) Close() {
	p.stopOnce.Do(func() { close(p.stop) })
	p.wg.Wait()
}

func (p *Pathfinder) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stop:
			return
		case req := <-p.requests:
			path, ok := p.grid.findPath(req.from, req.to)
			req.room.deliverPathResult(pathResult{
				enemyID: req.enemyID,
				roomGen: req.roomGen,
				goal:    req.goal,
				path:    path,
				ok:      ok,
			})
		}
	}
}
