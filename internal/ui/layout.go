package ui

const (
	// sidebarWidth is the panel beside the board in the wide layout.
	sidebarWidth = 36
	// stackedPanelHeight is the panel under the board in the stacked layout.
	stackedPanelHeight = 7
	// chrome is the header and status lines.
	chrome = 2
)

// BoardSize is the board panel size in terminal cells, border included.
// Every grid cell is two characters wide.
func BoardSize(gridRows, gridCols int) (width, height int) {
	return gridCols*2 + 2, gridRows + 2
}

// DetermineLayoutMode picks how the board and its side panel share the
// terminal.
func DetermineLayoutMode(termCols, termRows, gridRows, gridCols int) LayoutMode {
	boardW, boardH := BoardSize(gridRows, gridCols)
	if termCols >= boardW+sidebarWidth && termRows >= max(boardH, 18)+chrome {
		return LayoutWide
	}
	if termCols >= max(boardW, 40) && termRows >= boardH+stackedPanelHeight+chrome {
		return LayoutStacked
	}
	return LayoutTooSmall
}
