package app

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"pathgrid/internal/solver"
	"pathgrid/internal/state"
	"pathgrid/internal/ui"
)

type algorithmNotes struct {
	summary  string
	frontier string
	shortest bool
	weighted bool
}

var notes = map[string]algorithmNotes{
	"astar": {
		summary:  "Expands the cell with the lowest cost so far plus Manhattan distance to the end.",
		frontier: "priority queue ordered by g + h",
		shortest: true,
	},
	"bfs": {
		summary:  "Expands cells in rings of equal distance from the start.",
		frontier: "FIFO queue",
		shortest: true,
	},
	"dfs": {
		summary:  "Follows one corridor as deep as it goes before backtracking.",
		frontier: "LIFO stack",
	},
	"dijkstra": {
		summary:  "Expands the cheapest known cell first. On a uniform grid it behaves like BFS.",
		frontier: "priority queue ordered by g",
		shortest: true,
		weighted: true,
	},
	"greedy": {
		summary:  "Always expands the cell closest to the end and ignores the cost so far.",
		frontier: "priority queue ordered by h",
	},
	"bidirectional": {
		summary:  "Grows one search from each marker and stops when they meet.",
		frontier: "two FIFO queues",
	},
	"jps": {
		summary:  "A* that jumps along straight corridors and only stops at forced neighbours.",
		frontier: "priority queue over jump points",
		shortest: true,
	},
}

// buildExplainMarkdown describes algo and, when there is one, the last run
// drawn on the grid.
func buildExplainMarkdown(algo string, last *solver.Result, stats ui.StatsRow) string {
	n, ok := notes[algo]
	if !ok {
		return fmt.Sprintf("# %s\n\nNo notes for this algorithm.", solver.Label(algo))
	}

	var b strings.Builder
	b.WriteString("# " + solver.Label(algo) + "\n\n")
	b.WriteString(n.summary + "\n\n")
	b.WriteString("- Frontier: " + n.frontier + "\n")
	if n.shortest {
		b.WriteString("- Finds a shortest path on this grid\n")
	} else {
		b.WriteString("- May return a longer path than necessary\n")
	}
	if n.weighted {
		b.WriteString("- Handles weighted cells\n")
	}

	if last == nil {
		b.WriteString("\nPress **space** to run it on the current maze.\n")
		return strings.TrimSpace(b.String())
	}

	b.WriteString("\n## Last run\n\n")
	b.WriteString("| | |\n|---|---|\n")
	b.WriteString(fmt.Sprintf("| Algorithm | %s |\n", solver.Label(last.Algorithm)))
	b.WriteString(fmt.Sprintf("| Nodes visited | %s |\n", humanize.Comma(int64(stats.NodesVisited))))
	b.WriteString(fmt.Sprintf("| Path length | %s |\n", humanize.Comma(int64(stats.PathLength))))
	b.WriteString(fmt.Sprintf("| Solver time | %s ms |\n", humanize.FormatFloat("#,###.##", stats.TimeTakenMS)))

	switch stats.Outcome {
	case state.OutcomeUnreachable:
		b.WriteString("\nThe end is walled off. The shaded cells are everything the search could reach.\n")
	case state.OutcomeFound:
		if stats.PathLength > 0 && stats.NodesVisited > 0 {
			ratio := float64(stats.NodesVisited) / float64(stats.PathLength)
			b.WriteString(fmt.Sprintf("\nIt expanded %.1f cells for every cell on the path.", ratio))
			if !n.shortest {
				b.WriteString(" Compare with A* or BFS to see whether the path is optimal.")
			}
			b.WriteString("\n")
		}
	}
	return strings.TrimSpace(b.String())
}
