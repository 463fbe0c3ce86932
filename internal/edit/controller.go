package edit

import (
	"pathgrid/internal/maze"
	"pathgrid/internal/render"
)

// State is the drag mode of the current pointer session.
type State uint8

const (
	Idle State = iota
	DraggingStart
	DraggingEnd
	PaintingWalls
	ErasingWalls
)

func (s State) String() string {
	switch s {
	case DraggingStart:
		return "dragging_start"
	case DraggingEnd:
		return "dragging_end"
	case PaintingWalls:
		return "painting_walls"
	case ErasingWalls:
		return "erasing_walls"
	default:
		return "idle"
	}
}

// Overlay is the animation side the controllers need: dropping the drawn
// visualization and invalidating a run in flight.
type Overlay interface {
	ClearOverlay()
	Cancel() bool
}

// Controller turns pointer events into maze mutations. A session that
// starts on an empty cell only ever adds walls and one that starts on a
// wall only ever removes them. Refused edits are dropped silently.
type Controller struct {
	model   *maze.Model
	backend render.Backend
	overlay Overlay
	state   State
	onEdit  func()
}

func NewController(model *maze.Model, backend render.Backend, overlay Overlay) *Controller {
	return &Controller{model: model, backend: backend, overlay: overlay}
}

// Attach subscribes the controller to the backend's pointer events.
func (c *Controller) Attach() {
	c.backend.OnPointer(c.HandlePointer)
}

// OnEdit sets a hook invoked after every applied mutation.
func (c *Controller) OnEdit(fn func()) {
	c.onEdit = fn
}

func (c *Controller) State() State { return c.state }

// Reset ends any drag session without mutating the maze.
func (c *Controller) Reset() { c.state = Idle }

func (c *Controller) HandlePointer(ev render.PointerEvent) {
	switch ev.Kind {
	case render.PointerDown:
		c.state = Idle
		if !c.model.InBounds(ev.Cell) {
			return
		}
		c.begin(ev.Cell)
	case render.PointerMove:
		if c.state == Idle || !c.model.InBounds(ev.Cell) {
			return
		}
		c.extend(ev.Cell)
	case render.PointerUp, render.PointerLeave:
		c.state = Idle
	}
}

func (c *Controller) begin(at maze.Coord) {
	switch c.model.Classify(at) {
	case maze.CellStart:
		c.state = DraggingStart
		return
	case maze.CellEnd:
		c.state = DraggingEnd
		return
	}
	if c.overlay != nil {
		c.overlay.ClearOverlay()
	}
	if c.model.IsWall(at) {
		c.state = ErasingWalls
		c.clearWall(at)
		return
	}
	c.state = PaintingWalls
	c.setWall(at)
}

func (c *Controller) extend(at maze.Coord) {
	switch c.state {
	case DraggingStart:
		c.moveMarker(at, c.model.Start, c.model.MoveStart, render.TokenStart)
	case DraggingEnd:
		c.moveMarker(at, c.model.End, c.model.MoveEnd, render.TokenEnd)
	case PaintingWalls:
		if c.model.Classify(at) == maze.CellEmpty {
			c.setWall(at)
		}
	case ErasingWalls:
		if c.model.IsWall(at) {
			c.clearWall(at)
		}
	}
}

func (c *Controller) setWall(at maze.Coord) {
	if err := c.model.SetWall(at); err != nil {
		return
	}
	c.backend.Place(at, render.TokenWall)
	c.edited()
}

func (c *Controller) clearWall(at maze.Coord) {
	if err := c.model.ClearWall(at); err != nil {
		return
	}
	c.backend.Clear(at)
	c.edited()
}

func (c *Controller) moveMarker(at maze.Coord, current func() maze.Coord, move func(maze.Coord) error, token render.Token) {
	old := current()
	if old == at {
		return
	}
	if err := move(at); err != nil {
		return
	}
	render.PaintCell(c.backend, c.model, old)
	c.backend.Place(at, token)
	c.edited()
}

func (c *Controller) edited() {
	if c.onEdit != nil {
		c.onEdit()
	}
}
