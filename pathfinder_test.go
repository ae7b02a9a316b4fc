package main

import (
	"testing"
	"time"
)

func TestPathfinderDeliversResult(t *testing.T) {
	hub := newTestHub(t, 0)
	room := emptyRoom(t, hub)

	submitted := hub.pathfinder.Submit(pathRequest{
		room:    room,
		roomGen: room.generation,
		enemyID: 1,
		from:    vec2{X: 24, Y: 24},
		to:      vec2{X: 200, Y: 200},
		goal:    hub.grid.tileAt(200, 200),
	})
	if !submitted {
		t.Fatal("Submit should accept while the queue has room")
	}

	select {
	case result := <-room.pathResults:
		if !result.ok || len(result.path) == 0 {
			t.Errorf("expected a resolved path, got %+v", result)
		}
		if result.enemyID != 1 {
			t.Errorf("result enemy id %d", result.enemyID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("worker never delivered the result")
	}
}

func TestPathfinderReportsFailure(t *testing.T) {
	collision := [][]int{
		{0, 1, 0},
		{0, 1, 0},
	}
	grid := gridFromCollision(t, collision)
	pf := newPathfinder(grid, 1)
	t.Cleanup(pf.Close)
	hub := newHub(grid, pf, fixedDifficulty(0), nil, nil)
	room := emptyRoom(t, hub)

	pf.Submit(pathRequest{
		room:    room,
		roomGen: room.generation,
		enemyID: 2,
		from:    grid.tileCenter(tile{Col: 0, Row: 0}),
		to:      grid.tileCenter(tile{Col: 2, Row: 0}),
		goal:    tile{Col: 2, Row: 0},
	})

	select {
	case result := <-room.pathResults:
		if result.ok {
			t.Errorf("walled-off goal should fail, got %+v", result)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("worker never delivered the result")
	}
}

func TestPathfinderSubmitAfterClose(t *testing.T) {
	grid := openGrid(t, 4, 4)
	pf := newPathfinder(grid, 1)
	pf.Close()
	if pf.Submit(pathRequest{}) {
		t.Error("Submit after Close should refuse")
	}
}
