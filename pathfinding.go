package main

import (
	"container/heap"
	"math"
)

type navNeighbor struct {
	col      int
	row      int
	cost     float64
	diagonal bool
}

var navNeighborOffsets = [...]navNeighbor{
	{col: 0, row: -1, cost: 1, diagonal: false},
	{col: 1, row: 0, cost: 1, diagonal: false},
	{col: 0, row: 1, cost: 1, diagonal: false},
	{col: -1, row: 0, cost: 1, diagonal: false},
	{col: 1, row: -1, cost: math.Sqrt2, diagonal: true},
	{col: 1, row: 1, cost: math.Sqrt2, diagonal: true},
	{col: -1, row: 1, cost: math.Sqrt2, diagonal: true},
	{col: -1, row: -1, cost: math.Sqrt2, diagonal: true},
}

// canTraverseDiagonal rejects diagonal steps that would cut a blocked corner.
func (g *Grid) canTraverseDiagonal(current tile, delta navNeighbor) bool {
	if !delta.diagonal {
		return true
	}
	horiz := tile{Col: current.Col + delta.col, Row: current.Row}
	vert := tile{Col: current.Col, Row: current.Row + delta.row}
	return g.Walkable(horiz) && g.Walkable(vert)
}

func (g *Grid) heuristic(a, b tile) float64 {
	dx := math.Abs(float64(a.Col - b.Col))
	dy := math.Abs(float64(a.Row - b.Row))
	if dx > dy {
		return dx + (math.Sqrt2-1)*dy
	}
	return dy + (math.Sqrt2-1)*dx
}

type pathNode struct {
	point  tile
	g      float64
	f      float64
	index  int
	parent *pathNode
}

type pathQueue []*pathNode

func (pq pathQueue) Len() int { return len(pq) }

func (pq pathQueue) Less(i, j int) bool { return pq[i].f < pq[j].f }

func (pq pathQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *pathQueue) Push(x any) {
	n := len(*pq)
	item := x.(*pathNode)
	item.index = n
	*pq = append(*pq, item)
}

func (pq *pathQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}

// astar searches from start to goal and returns the tile sequence including
// both endpoints. The search gives up after expanding budget nodes so a
// hopeless request cannot stall a pathfinder worker.
func (g *Grid) astar(start, goal tile, budget int) ([]tile, bool) {
	open := &pathQueue{}
	heap.Init(open)
	heap.Push(open, &pathNode{point: start, g: 0, f: g.heuristic(start, goal)})
	gScore := map[int]float64{g.index(start): 0}
	closed := make(map[int]struct{})
	expanded := 0

	for open.Len() > 0 {
		current := heap.Pop(open).(*pathNode)
		currIdx := g.index(current.point)
		if _, seen := closed[currIdx]; seen {
			continue
		}
		closed[currIdx] = struct{}{}
		if current.point == goal {
			return reconstructPath(current), true
		}
		expanded++
		if budget > 0 && expanded > budget {
			return nil, false
		}

		for _, delta := range navNeighborOffsets {
			if delta.diagonal && !g.canTraverseDiagonal(current.point, delta) {
				continue
			}
			next := tile{Col: current.point.Col + delta.col, Row: current.point.Row + delta.row}
			if !g.Walkable(next) {
				continue
			}
			idx := g.index(next)
			if _, seen := closed[idx]; seen {
				continue
			}
			tentativeG := current.g + delta.cost
			if prev, ok := gScore[idx]; ok && tentativeG >= prev {
				continue
			}
			gScore[idx] = tentativeG
			heap.Push(open, &pathNode{
				point:  next,
				g:      tentativeG,
				f:      tentativeG + g.heuristic(next, goal),
				parent: current,
			})
		}
	}
	return nil, false
}

func (g *Grid) index(t tile) int { return t.Row*g.cols + t.Col }

func reconstructPath(end *pathNode) []tile {
	if end == nil {
		return nil
	}
	path := make([]tile, 0)
	for node := end; node != nil; node = node.parent {
		path = append(path, node.point)
	}
	for i := 0; i < len(path)/2; i++ {
		j := len(path) - 1 - i
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// findPath resolves a world-space path request into waypoint centers. Start
// and goal are clamped into bounds; a blocked start falls back to the nearest
// walkable tile while a blocked goal fails outright.
func (g *Grid) findPath(from, to vec2) ([]vec2, bool) {
	start := g.tileAt(from.X, from.Y)
	goal := g.tileAt(to.X, to.Y)
	if g.Blocked(start) {
		adjusted, ok := g.closestWalkable(start)
		if !ok {
			return nil, false
		}
		start = adjusted
	}
	if g.Blocked(goal) {
		return nil, false
	}
	nodes, ok := g.astar(start, goal, pathSearchBudget)
	if !ok || len(nodes) == 0 {
		return nil, false
	}
	if len(nodes) == 1 {
		return []vec2{to}, true
	}
	path := make([]vec2, 0, len(nodes)-1)
	for i := 1; i < len(nodes); i++ {
		path = append(path, g.tileCenter(nodes[i]))
	}
	last := path[len(path)-1]
	if math.Hypot(last.X-to.X, last.Y-to.Y) > 1 {
		path = append(path, to)
	} else {
		path[len(path)-1] = to
	}
	return path, true
}

// closestWalkable breadth-first searches for the nearest open tile.
func (g *Grid) closestWalkable(start tile) (tile, bool) {
	if !g.inBounds(start) {
		return tile{}, false
	}
	visited := map[int]struct{}{g.index(start): {}}
	queue := []tile{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if g.Walkable(current) {
			return current, true
		}
		for _, delta := range navNeighborOffsets {
			next := tile{Col: current.Col + delta.col, Row: current.Row + delta.row}
			if !g.inBounds(next) {
				continue
			}
			idx := g.index(next)
			if _, seen := visited[idx]; seen {
				continue
			}
			visited[idx] = struct{}{}
			queue = append(queue, next)
		}
	}
	return tile{}, false
}
