package maze

// ResizeReport describes what a Resize had to discard or repair.
type ResizeReport struct {
	DroppedWalls int
	StartClamped bool
	EndClamped   bool
	// WallsUnderMarkers counts retained walls removed because a clamped
	// marker landed on them.
	WallsUnderMarkers int
	// EndRelocated is set when both markers clamped onto the same cell and
	// end had to move to a free cell.
	EndRelocated bool
}

// Resize remaps the maze onto rows x cols. Markers are clamped
// componentwise into the new bounds and walls outside them are dropped.
// Afterwards the marker invariants are repaired: a marker wins over a wall
// it lands on, and if both markers clamp to the same cell end moves to the
// last free cell in row-major order.
func (m *Model) Resize(rows, cols int) (ResizeReport, error) {
	var report ResizeReport
	if err := checkDims(rows, cols); err != nil {
		return report, err
	}

	kept := make(map[Coord]struct{}, len(m.walls))
	for c := range m.walls {
		if c.Row < rows && c.Col < cols {
			kept[c] = struct{}{}
			continue
		}
		report.DroppedWalls++
	}

	start := clamp(m.start, rows, cols)
	end := clamp(m.end, rows, cols)
	report.StartClamped = start != m.start
	report.EndClamped = end != m.end

	m.rows, m.cols = rows, cols
	m.walls = kept
	m.start, m.end = start, end

	if _, ok := m.walls[m.start]; ok {
		delete(m.walls, m.start)
		report.WallsUnderMarkers++
	}
	if _, ok := m.walls[m.end]; ok {
		delete(m.walls, m.end)
		report.WallsUnderMarkers++
	}
	if m.start == m.end {
		m.end = m.lastFreeCell()
		report.EndRelocated = true
	}
	return report, nil
}

// lastFreeCell scans backwards from the bottom-right corner for a cell that
// is neither start nor a wall. When the grid has none the first non-start
// cell from the corner is freed.
func (m *Model) lastFreeCell() Coord {
	var fallback *Coord
	for r := m.rows - 1; r >= 0; r-- {
		for c := m.cols - 1; c >= 0; c-- {
			cell := Coord{Row: r, Col: c}
			if cell == m.start {
				continue
			}
			if fallback == nil {
				fc := cell
				fallback = &fc
			}
			if !m.IsWall(cell) {
				return cell
			}
		}
	}
	delete(m.walls, *fallback)
	return *fallback
}

func clamp(c Coord, rows, cols int) Coord {
	if c.Row > rows-1 {
		c.Row = rows - 1
	}
	if c.Col > cols-1 {
		c.Col = cols - 1
	}
	return c
}
