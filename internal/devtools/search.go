package devtools

import (
	"container/heap"

	"pathgrid/internal/maze"
)

// board is the solver's view of a maze: walls and the two markers.
type board struct {
	rows  int
	cols  int
	walls [][]bool
	start maze.Coord
	end   maze.Coord
}

func newBoard(grid [][]bool, start, end [2]int) board {
	b := board{walls: grid, start: maze.FromPair(start), end: maze.FromPair(end)}
	b.rows = len(grid)
	if b.rows > 0 {
		b.cols = len(grid[0])
	}
	return b
}

func (b board) open(c maze.Coord) bool {
	if c.Row < 0 || c.Row >= b.rows || c.Col < 0 || c.Col >= b.cols {
		return false
	}
	return !b.walls[c.Row][c.Col]
}

// neighbors in up, right, down, left order.
func (b board) neighbors(c maze.Coord) []maze.Coord {
	out := make([]maze.Coord, 0, 4)
	for _, d := range [4][2]int{{-1, 0}, {0, 1}, {1, 0}, {0, -1}} {
		n := maze.At(c.Row+d[0], c.Col+d[1])
		if b.open(n) {
			out = append(out, n)
		}
	}
	return out
}

func manhattan(a, b maze.Coord) int {
	dr := a.Row - b.Row
	dc := a.Col - b.Col
	if dr < 0 {
		dr = -dr
	}
	if dc < 0 {
		dc = -dc
	}
	return dr + dc
}

type searchFunc func(b board) (path, visited []maze.Coord)

var searches = map[string]searchFunc{
	"bfs":           breadthFirst,
	"dfs":           depthFirst,
	"dijkstra":      func(b board) ([]maze.Coord, []maze.Coord) { return bestFirst(b, 1, 0) },
	"astar":         func(b board) ([]maze.Coord, []maze.Coord) { return bestFirst(b, 1, 1) },
	"greedy":        func(b board) ([]maze.Coord, []maze.Coord) { return bestFirst(b, 0, 1) },
	"jps":           func(b board) ([]maze.Coord, []maze.Coord) { return bestFirst(b, 1, 1) },
	"bidirectional": bidirectional,
}

func walkBack(from map[maze.Coord]maze.Coord, start, end maze.Coord) []maze.Coord {
	path := []maze.Coord{end}
	for at := end; at != start; {
		at = from[at]
		path = append(path, at)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func breadthFirst(b board) ([]maze.Coord, []maze.Coord) {
	from := map[maze.Coord]maze.Coord{}
	seen := map[maze.Coord]bool{b.start: true}
	queue := []maze.Coord{b.start}
	var visited []maze.Coord
	for len(queue) > 0 {
		at := queue[0]
		queue = queue[1:]
		visited = append(visited, at)
		if at == b.end {
			return walkBack(from, b.start, b.end), visited
		}
		for _, n := range b.neighbors(at) {
			if seen[n] {
				continue
			}
			seen[n] = true
			from[n] = at
			queue = append(queue, n)
		}
	}
	return nil, visited
}

func depthFirst(b board) ([]maze.Coord, []maze.Coord) {
	from := map[maze.Coord]maze.Coord{}
	done := map[maze.Coord]bool{}
	stack := []maze.Coord{b.start}
	var visited []maze.Coord
	for len(stack) > 0 {
		at := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if done[at] {
			continue
		}
		done[at] = true
		visited = append(visited, at)
		if at == b.end {
			return walkBack(from, b.start, b.end), visited
		}
		ns := b.neighbors(at)
		for i := len(ns) - 1; i >= 0; i-- {
			n := ns[i]
			if done[n] {
				continue
			}
			from[n] = at
			stack = append(stack, n)
		}
	}
	return nil, visited
}

type queueItem struct {
	cell  maze.Coord
	cost  int
	score int
	order int
	index int
}

type priorityQueue []*queueItem

func (q priorityQueue) Len() int { return len(q) }
func (q priorityQueue) Less(i, j int) bool {
	if q[i].score != q[j].score {
		return q[i].score < q[j].score
	}
	return q[i].order < q[j].order
}
func (q priorityQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}
func (q *priorityQueue) Push(x any) {
	item := x.(*queueItem)
	item.index = len(*q)
	*q = append(*q, item)
}
func (q *priorityQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// bestFirst scores cells by costWeight*g + heuristicWeight*h, which covers
// Dijkstra (1,0), A* (1,1) and greedy best-first (0,1).
func bestFirst(b board, costWeight, heuristicWeight int) ([]maze.Coord, []maze.Coord) {
	from := map[maze.Coord]maze.Coord{}
	best := map[maze.Coord]int{b.start: 0}
	closed := map[maze.Coord]bool{}
	open := &priorityQueue{}
	order := 0
	heap.Push(open, &queueItem{cell: b.start, score: heuristicWeight * manhattan(b.start, b.end)})
	var visited []maze.Coord
	for open.Len() > 0 {
		item := heap.Pop(open).(*queueItem)
		if closed[item.cell] {
			continue
		}
		closed[item.cell] = true
		visited = append(visited, item.cell)
		if item.cell == b.end {
			return walkBack(from, b.start, b.end), visited
		}
		for _, n := range b.neighbors(item.cell) {
			if closed[n] {
				continue
			}
			g := item.cost + 1
			if prev, ok := best[n]; ok && prev <= g {
				continue
			}
			best[n] = g
			from[n] = item.cell
			order++
			heap.Push(open, &queueItem{
				cell:  n,
				cost:  g,
				score: costWeight*g + heuristicWeight*manhattan(n, b.end),
				order: order,
			})
		}
	}
	return nil, visited
}

// bidirectional grows breadth-first frontiers from both markers one layer
// at a time until they touch.
func bidirectional(b board) ([]maze.Coord, []maze.Coord) {
	if b.start == b.end {
		return []maze.Coord{b.start}, []maze.Coord{b.start}
	}
	fromStart := map[maze.Coord]maze.Coord{}
	fromEnd := map[maze.Coord]maze.Coord{}
	seenStart := map[maze.Coord]bool{b.start: true}
	seenEnd := map[maze.Coord]bool{b.end: true}
	frontStart := []maze.Coord{b.start}
	frontEnd := []maze.Coord{b.end}
	visited := []maze.Coord{b.start, b.end}

	expand := func(front []maze.Coord, seen, other map[maze.Coord]bool, from map[maze.Coord]maze.Coord) ([]maze.Coord, *maze.Coord) {
		var next []maze.Coord
		for _, at := range front {
			for _, n := range b.neighbors(at) {
				if seen[n] {
					continue
				}
				seen[n] = true
				from[n] = at
				visited = append(visited, n)
				if other[n] {
					meet := n
					return nil, &meet
				}
				next = append(next, n)
			}
		}
		return next, nil
	}

	for len(frontStart) > 0 && len(frontEnd) > 0 {
		var meet *maze.Coord
		frontStart, meet = expand(frontStart, seenStart, seenEnd, fromStart)
		if meet == nil {
			frontEnd, meet = expand(frontEnd, seenEnd, seenStart, fromEnd)
		}
		if meet != nil {
			head := walkBack(fromStart, b.start, *meet)
			tail := walkBack(fromEnd, b.end, *meet)
			for i := len(tail) - 2; i >= 0; i-- {
				head = append(head, tail[i])
			}
			return head, visited
		}
	}
	return nil, visited
}
