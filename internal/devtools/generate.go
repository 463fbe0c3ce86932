package devtools

import (
	"math/rand"
)

const generateAttempts = 10

// randomGrid scatters walls with the given density and retries until
// breadth-first search connects the corners. The last attempt is returned
// even when it is unsolvable.
func randomGrid(rng *rand.Rand, rows, cols int, density float64) [][]bool {
	start := [2]int{0, 0}
	end := [2]int{rows - 1, cols - 1}
	var grid [][]bool
	for attempt := 0; attempt < generateAttempts; attempt++ {
		grid = make([][]bool, rows)
		for r := range grid {
			grid[r] = make([]bool, cols)
			for c := range grid[r] {
				grid[r][c] = rng.Float64() < density
			}
		}
		grid[0][0] = false
		grid[rows-1][cols-1] = false
		if path, _ := breadthFirst(newBoard(grid, start, end)); path != nil {
			break
		}
	}
	return grid
}

// disjointSet is a union-find forest over maze cells.
type disjointSet struct {
	parent []int
	rank   []int
}

func newDisjointSet(n int) *disjointSet {
	s := &disjointSet{parent: make([]int, n), rank: make([]int, n)}
	for i := range s.parent {
		s.parent[i] = i
	}
	return s
}

func (s *disjointSet) find(i int) int {
	for s.parent[i] != i {
		s.parent[i] = s.parent[s.parent[i]]
		i = s.parent[i]
	}
	return i
}

func (s *disjointSet) union(a, b int) bool {
	ra, rb := s.find(a), s.find(b)
	if ra == rb {
		return false
	}
	switch {
	case s.rank[ra] < s.rank[rb]:
		s.parent[ra] = rb
	case s.rank[ra] > s.rank[rb]:
		s.parent[rb] = ra
	default:
		s.parent[rb] = ra
		s.rank[ra]++
	}
	return true
}

// perfectGrid carves a spanning-tree maze with randomized Kruskal. Cells of
// the tree sit on odd coordinates and the passages between them on the
// cells in between; everything else is wall. Grids need at least 3x3.
func perfectGrid(rng *rand.Rand, rows, cols int) ([][]bool, [2]int, [2]int) {
	grid := make([][]bool, rows)
	for r := range grid {
		grid[r] = make([]bool, cols)
		for c := range grid[r] {
			grid[r][c] = true
		}
	}
	h := (rows - 1) / 2
	w := (cols - 1) / 2
	if h < 1 || w < 1 {
		for r := range grid {
			for c := range grid[r] {
				grid[r][c] = false
			}
		}
		return grid, [2]int{0, 0}, [2]int{rows - 1, cols - 1}
	}

	type edge struct{ a, b, dir int }
	var edges []edge
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			grid[2*y+1][2*x+1] = false
			i := y*w + x
			if x+1 < w {
				edges = append(edges, edge{a: i, b: i + 1, dir: 0})
			}
			if y+1 < h {
				edges = append(edges, edge{a: i, b: i + w, dir: 1})
			}
		}
	}
	rng.Shuffle(len(edges), func(i, j int) { edges[i], edges[j] = edges[j], edges[i] })

	sets := newDisjointSet(h * w)
	for _, e := range edges {
		if !sets.union(e.a, e.b) {
			continue
		}
		y, x := e.a/w, e.a%w
		if e.dir == 0 {
			grid[2*y+1][2*x+2] = false
		} else {
			grid[2*y+2][2*x+1] = false
		}
	}
	return grid, [2]int{1, 1}, [2]int{2*h - 1, 2*w - 1}
}
