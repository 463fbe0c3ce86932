package maze

import (
	"fmt"

	"github.com/mitchellh/hashstructure/v2"
)

type snapshot struct {
	Rows  int
	Cols  int
	Start [2]int
	End   [2]int
	Walls [][2]int
}

// Fingerprint identifies the maze layout so solve runs over the same maze
// can be grouped. Two models with equal dimensions, markers and walls share
// a fingerprint.
func (m *Model) Fingerprint() (string, error) {
	walls := m.Walls()
	snap := snapshot{
		Rows:  m.rows,
		Cols:  m.cols,
		Start: m.start.Pair(),
		End:   m.end.Pair(),
		Walls: make([][2]int, 0, len(walls)),
	}
	for _, w := range walls {
		snap.Walls = append(snap.Walls, w.Pair())
	}
	h, err := hashstructure.Hash(snap, hashstructure.FormatV2, nil)
	if err != nil {
		return "", fmt.Errorf("fingerprint maze: %w", err)
	}
	return fmt.Sprintf("%016x", h), nil
}
