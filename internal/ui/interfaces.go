package ui

import (
	"time"

	"pathgrid/internal/render"
)

// Controller is the command side of the app. Every method runs on the
// event loop.
type Controller interface {
	Board() *render.Surface
	RunAlgorithm(algo string) error
	GenerateMaze() error
	ClearPath()
	ClearWalls() error
	ResetGrid() error
	Resize(rows, cols int) error
	CycleAlgorithm() string
	AdjustSpeed(steps int) time.Duration
	LoadPreset(id string) error
	ExportMaze() error
	ValidateMaze() error
	Explain()
	LoadHistory()
	Panel() PanelState
	Quit()
}

type View interface {
	Run() error
	Stop()
	// Post runs fn on the event loop. It must not be called from the loop.
	Post(fn func())
	SetController(Controller)
	FlashStatus(level Level, msg string)
	SetInfo(title, markdown string, open bool)
}

type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

type LayoutMode int

const (
	LayoutWide LayoutMode = iota
	LayoutStacked
	LayoutTooSmall
)

// PanelState is what the sidebar shows; the view pulls it every frame.
type PanelState struct {
	Algorithm      string
	AlgorithmLabel string
	Rows           int
	Cols           int
	MinDim         int
	MaxDim         int
	Delay          time.Duration
	Walls          int
	EditState      string
	Busy           bool
	Animating      bool
	Progress       float64
	Stats          StatsRow
	Transport      string
	Presets        []PresetItem
	History        HistoryState
}

type StatsRow struct {
	NodesVisited int
	PathLength   int
	TimeTakenMS  float64
	Outcome      string
}

type PresetItem struct {
	ID      string
	Name    string
	Builtin bool
}

type HistoryState struct {
	Loaded      bool
	Runs        int
	Found       int
	Unreachable int
	Failed      int
	BestPath    map[string]int
	Recent      []HistoryRow
}

type HistoryRow struct {
	Algorithm    string
	Outcome      string
	Rows         int
	Cols         int
	NodesVisited int
	PathLength   int
	TimeTakenMS  float64
	When         time.Time
}
