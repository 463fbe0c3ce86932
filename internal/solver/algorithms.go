package solver

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Algorithms lists the solver's algorithm ids in cycling order.
var Algorithms = []string{"astar", "bfs", "dfs", "dijkstra", "greedy", "bidirectional", "jps"}

var algorithmLabels = map[string]string{
	"astar":         "A* Search",
	"bfs":           "Breadth-First Search",
	"dfs":           "Depth-First Search",
	"dijkstra":      "Dijkstra",
	"greedy":        "Greedy Best-First",
	"bidirectional": "Bidirectional Search",
	"jps":           "Jump Point Search",
}

func Label(id string) string {
	if label, ok := algorithmLabels[id]; ok {
		return label
	}
	return id
}

// CanonicalAlgorithm normalizes name to a known id. Unknown names fail with
// the closest known id as a suggestion.
func CanonicalAlgorithm(name string) (string, error) {
	id := strings.ToLower(strings.TrimSpace(name))
	switch id {
	case "a*", "a-star":
		id = "astar"
	}
	for _, known := range Algorithms {
		if known == id {
			return id, nil
		}
	}
	if s := Suggest(id); s != "" {
		return "", fmt.Errorf("%w %q (did you mean %s?)", ErrUnknownAlgorithm, name, s)
	}
	return "", fmt.Errorf("%w %q", ErrUnknownAlgorithm, name)
}

// Suggest returns the known id closest to name, or "" when nothing is close.
func Suggest(name string) string {
	best := ""
	bestDist := 0
	for _, known := range Algorithms {
		d := levenshtein.ComputeDistance(name, known)
		if best == "" || d < bestDist {
			best, bestDist = known, d
		}
	}
	if bestDist > 3 {
		return ""
	}
	return best
}

// NextAlgorithm returns the id after current, wrapping around.
func NextAlgorithm(current string) string {
	for i, id := range Algorithms {
		if id == current {
			return Algorithms[(i+1)%len(Algorithms)]
		}
	}
	return Algorithms[0]
}
