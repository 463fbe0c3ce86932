package ui

import (
	"fmt"
	"os"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/progress"
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/harmonica"
	clog "github.com/charmbracelet/log"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"pathgrid/internal/maze"
	"pathgrid/internal/render"
)

const (
	flashTTL = 3 * time.Second
	// Screen position of cell (0,0): the header line, then the board border.
	boardOriginX = 1
	boardOriginY = 2
	drawerWidth  = 44
)

type applyMsg struct {
	fn func()
}

type clockMsg time.Time
type animateMsg time.Time

type boardKeyMap struct {
	Run        key.Binding
	Algorithm  key.Binding
	Faster     key.Binding
	Slower     key.Binding
	ClearPath  key.Binding
	ClearWalls key.Binding
	Reset      key.Binding
	Generate   key.Binding
	Validate   key.Binding
	RowsUp     key.Binding
	RowsDown   key.Binding
	ColsUp     key.Binding
	ColsDown   key.Binding
	Presets    key.Binding
	Stats      key.Binding
	Info       key.Binding
	Export     key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func (k boardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Run, k.Algorithm, k.Faster, k.ClearPath, k.Reset, k.Generate, k.Presets, k.Help, k.Quit}
}

func (k boardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Run, k.Algorithm, k.Faster, k.Slower, k.Validate},
		{k.ClearPath, k.ClearWalls, k.Reset, k.Generate},
		{k.RowsUp, k.RowsDown, k.ColsUp, k.ColsDown},
		{k.Presets, k.Stats, k.Info, k.Export, k.Help, k.Quit},
	}
}

func defaultKeyMap() boardKeyMap {
	return boardKeyMap{
		Run:        key.NewBinding(key.WithKeys("space"), key.WithHelp("space", "solve")),
		Algorithm:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "algorithm")),
		Faster:     key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "speed")),
		Slower:     key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "slower")),
		ClearPath:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear path")),
		ClearWalls: key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "clear walls")),
		Reset:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Generate:   key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "generate")),
		Validate:   key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "validate")),
		RowsUp:     key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "more rows")),
		RowsDown:   key.NewBinding(key.WithKeys("["), key.WithHelp("[", "fewer rows")),
		ColsUp:     key.NewBinding(key.WithKeys("}"), key.WithHelp("}", "more cols")),
		ColsDown:   key.NewBinding(key.WithKeys("{"), key.WithHelp("{", "fewer cols")),
		Presets:    key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "presets")),
		Stats:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stats")),
		Info:       key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "info")),
		Export:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "export")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+q", "ctrl+c"), key.WithHelp("ctrl+q", "quit")),
	}
}

// Root is the bubbletea model hosting the maze board. Controller calls and
// the FlashStatus/SetInfo setters run on the program's event loop; other
// goroutines reach it through Post.
type Root struct {
	theme        Theme
	ascii        bool
	debug        bool
	ctrl         Controller
	styleVariant string
	motionLevel  string
	now          func() time.Time

	mu      sync.Mutex
	program *tea.Program
	running bool

	layout LayoutMode
	cols   int
	rows   int

	flash      string
	flashLevel Level
	flashAt    time.Time

	infoTitle   string
	infoLines   []string
	infoOpen    bool
	infoScroll  int
	presetsOpen bool
	presetIndex int
	statsOpen   bool

	// dragging is set between a press on the board and its release.
	dragging bool

	help       help.Model
	keymap     boardKeyMap
	progress   progress.Model
	solveSpin  spinner.Model
	markdown   *glamour.TermRenderer
	logger     *clog.Logger
	drawerPos  float64
	drawerVel  float64
	spring     harmonica.Spring
	lastInput  string
}

type Options struct {
	ASCIIOnly    bool
	Debug        bool
	StyleVariant string
	MotionLevel  string
}

func New(opts Options) *Root {
	logger := clog.NewWithOptions(os.Stderr, clog.Options{Prefix: "pathgrid-ui", Level: clog.WarnLevel})
	if opts.Debug {
		logger.SetLevel(clog.DebugLevel)
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(64),
	)
	if err != nil {
		logger.Warn("ui.markdown_unavailable", "error", err)
		renderer = nil
	}

	h := help.New()
	h.Styles = help.DefaultDarkStyles()
	motionLevel := normalizeMotionLevel(opts.MotionLevel)
	styleVariant := normalizeStyleVariant(opts.StyleVariant)
	theme := ThemeForVariant(styleVariant)
	spring := harmonica.NewSpring(harmonica.FPS(60), 10.0, 0.8)
	switch motionLevel {
	case "reduced":
		spring = harmonica.NewSpring(harmonica.FPS(30), 9.0, 0.92)
	case "off":
		spring = harmonica.NewSpring(harmonica.FPS(60), 1000.0, 1.0)
	}
	bar := progress.New(
		progress.WithWidth(20),
		progress.WithColors(lipgloss.Color("#5EC2FF"), lipgloss.Color("#79E6A6"), lipgloss.Color("#F2D16B")),
		progress.WithScaled(true),
	)
	if motionLevel == "off" {
		bar.SetSpringOptions(1000.0, 1.0)
	}
	solveSpin := spinner.New(
		spinner.WithSpinner(spinner.MiniDot),
		spinner.WithStyle(theme.Accent),
	)

	return &Root{
		theme:        theme,
		ascii:        opts.ASCIIOnly,
		debug:        opts.Debug,
		styleVariant: styleVariant,
		motionLevel:  motionLevel,
		now:          time.Now,
		layout:       LayoutWide,
		cols:         120,
		rows:         30,
		help:         h,
		keymap:       defaultKeyMap(),
		progress:     bar,
		solveSpin:    solveSpin,
		markdown:     renderer,
		logger:       logger,
		spring:       spring,
	}
}

func (r *Root) Init() tea.Cmd {
	return tea.Batch(clockTickCmd(), spinnerTickCmd(r.solveSpin))
}

func (r *Root) Update(msg tea.Msg) (model tea.Model, cmd tea.Cmd) {
	defer func() {
		if rec := recover(); rec != nil {
			r.onModelPanic("update", rec, msg)
			model = r
			cmd = nil
		}
	}()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.cols = msg.Width
		r.rows = msg.Height
		r.help.SetWidth(msg.Width)
		return r, nil
	case applyMsg:
		if msg.fn != nil {
			msg.fn()
		}
		return r, r.animateIfNeeded()
	case clockMsg:
		if r.flash != "" && r.now().Sub(r.flashAt) >= flashTTL {
			r.flash = ""
		}
		return r, clockTickCmd()
	case animateMsg:
		target := r.drawerTarget()
		r.drawerPos, r.drawerVel = r.spring.Update(r.drawerPos, r.drawerVel, target)
		if r.shouldAnimate(target) {
			return r, animateTickCmd()
		}
		r.drawerPos = target
		r.drawerVel = 0
		return r, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		r.solveSpin, cmd = r.solveSpin.Update(msg)
		return r, cmd
	case tea.MouseClickMsg:
		return r.handleMouseClick(msg)
	case tea.MouseMotionMsg:
		return r.handleMouseMotion(msg)
	case tea.MouseReleaseMsg:
		return r.handleMouseRelease(msg)
	case tea.KeyPressMsg:
		return r.handleKey(msg)
	}
	return r, nil
}

func (r *Root) View() (view tea.View) {
	defer func() {
		if rec := recover(); rec != nil {
			r.onModelPanic("view", rec, nil)
			width := max(1, r.cols)
			msg := "UI recovered from a rendering panic. Check logs."
			view = tea.NewView(r.theme.Fail.Width(width).Render(trimForWidth(msg, max(1, width-1))))
		}
	}()

	v := tea.NewView(r.frame())
	v.AltScreen = true
	v.MouseMode = r.currentMouseMode()
	return v
}

// frame renders the whole screen, modals included.
func (r *Root) frame() string {
	if r.cols < 1 {
		r.cols = 120
	}
	if r.rows < 1 {
		r.rows = 30
	}
	base := r.renderScreen()
	if overlay := r.renderOverlay(); overlay != "" {
		base = composeOverlay(base, overlay, r.cols, r.rows)
	}
	return base
}

func (r *Root) Run() error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}
	p := tea.NewProgram(r)
	r.program = p
	r.running = true
	r.mu.Unlock()

	_, err := p.Run()

	r.mu.Lock()
	r.program = nil
	r.running = false
	r.mu.Unlock()
	return err
}

// Stop asks the program to quit. It is safe to call from the event loop.
func (r *Root) Stop() {
	r.mu.Lock()
	p := r.program
	r.mu.Unlock()
	if p != nil {
		go p.Quit()
	}
}

func (r *Root) SetController(c Controller) {
	r.ctrl = c
}

// Post hands fn to the event loop. Callbacks posted while no program is
// running are dropped.
func (r *Root) Post(fn func()) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	p := r.program
	running := r.running
	r.mu.Unlock()
	if !running || p == nil {
		r.logger.Debug("ui.post_dropped")
		return
	}
	p.Send(applyMsg{fn: fn})
}

func (r *Root) FlashStatus(level Level, msg string) {
	r.flash = msg
	r.flashLevel = level
	r.flashAt = r.now()
}

// SetInfo renders markdown for the info modal and opens or closes it.
func (r *Root) SetInfo(title, markdown string, open bool) {
	r.infoTitle = title
	r.infoLines = r.renderMarkdown(markdown)
	r.infoScroll = 0
	r.infoOpen = open
	if open {
		r.presetsOpen = false
	}
}

func (r *Root) renderMarkdown(md string) []string {
	out := md
	if r.markdown != nil && !r.ascii {
		if rendered, err := r.markdown.Render(md); err == nil {
			out = rendered
		} else {
			r.logger.Warn("ui.markdown_failed", "error", err)
		}
	}
	return strings.Split(strings.Trim(out, "\n"), "\n")
}

func (r *Root) panel() PanelState {
	if r.ctrl == nil {
		return PanelState{}
	}
	return r.ctrl.Panel()
}

func (r *Root) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	r.recordInputEvent(fmt.Sprintf("key:%s", msg.String()))

	if key.Matches(msg, r.keymap.Quit) {
		if r.ctrl != nil {
			r.ctrl.Quit()
		}
		return r, tea.Quit
	}
	if r.overlayActive() {
		return r.handleOverlayKey(msg)
	}
	if r.ctrl == nil {
		return r, nil
	}

	c := r.ctrl
	p := c.Panel()
	switch {
	case key.Matches(msg, r.keymap.Run):
		_ = c.RunAlgorithm("")
	case key.Matches(msg, r.keymap.Algorithm):
		c.CycleAlgorithm()
	case key.Matches(msg, r.keymap.Faster):
		d := c.AdjustSpeed(1)
		r.FlashStatus(LevelInfo, "Delay "+d.String()+" per step")
	case key.Matches(msg, r.keymap.Slower):
		d := c.AdjustSpeed(-1)
		r.FlashStatus(LevelInfo, "Delay "+d.String()+" per step")
	case key.Matches(msg, r.keymap.ClearPath):
		c.ClearPath()
	case key.Matches(msg, r.keymap.ClearWalls):
		_ = c.ClearWalls()
	case key.Matches(msg, r.keymap.Reset):
		_ = c.ResetGrid()
	case key.Matches(msg, r.keymap.Generate):
		_ = c.GenerateMaze()
	case key.Matches(msg, r.keymap.Validate):
		_ = c.ValidateMaze()
	case key.Matches(msg, r.keymap.RowsUp):
		_ = c.Resize(p.Rows+1, p.Cols)
	case key.Matches(msg, r.keymap.RowsDown):
		_ = c.Resize(p.Rows-1, p.Cols)
	case key.Matches(msg, r.keymap.ColsUp):
		_ = c.Resize(p.Rows, p.Cols+1)
	case key.Matches(msg, r.keymap.ColsDown):
		_ = c.Resize(p.Rows, p.Cols-1)
	case key.Matches(msg, r.keymap.Presets):
		r.presetsOpen = len(p.Presets) > 0
		r.presetIndex = 0
		if !r.presetsOpen {
			r.FlashStatus(LevelInfo, "No presets available")
		}
	case key.Matches(msg, r.keymap.Stats):
		r.statsOpen = !r.statsOpen
		if r.statsOpen {
			c.LoadHistory()
		}
		return r, r.animateIfNeeded()
	case key.Matches(msg, r.keymap.Info):
		c.Explain()
	case key.Matches(msg, r.keymap.Export):
		_ = c.ExportMaze()
	case key.Matches(msg, r.keymap.Help):
		r.help.ShowAll = !r.help.ShowAll
	case msg.Code == tea.KeyEscape && r.statsOpen:
		r.statsOpen = false
		return r, r.animateIfNeeded()
	}
	return r, nil
}

func (r *Root) handleOverlayKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if msg.Code == tea.KeyEscape || (msg.Mod == 0 && (msg.Code == 'q' || msg.Code == 'Q')) ||
		(r.topOverlay() == "help" && key.Matches(msg, r.keymap.Help)) {
		r.closeTopOverlay()
		return r, nil
	}

	switch r.topOverlay() {
	case "presets":
		items := r.panel().Presets
		switch msg.Code {
		case tea.KeyUp, 'k':
			r.presetIndex = wrapIndex(r.presetIndex-1, len(items))
		case tea.KeyDown, tea.KeyTab, 'j':
			r.presetIndex = wrapIndex(r.presetIndex+1, len(items))
		case tea.KeyEnter:
			if r.presetIndex < len(items) && r.ctrl != nil {
				if err := r.ctrl.LoadPreset(items[r.presetIndex].ID); err == nil {
					r.presetsOpen = false
				}
			}
		}
	case "info":
		switch msg.Code {
		case tea.KeyUp, 'k':
			r.infoScroll = max(0, r.infoScroll-1)
		case tea.KeyDown, 'j':
			r.infoScroll = min(max(0, len(r.infoLines)-1), r.infoScroll+1)
		case tea.KeyEnter:
			r.infoOpen = false
		}
	}
	return r, nil
}

// cellAt maps a screen position to a board cell.
func (r *Root) cellAt(x, y int) (maze.Coord, bool) {
	if r.ctrl == nil || r.layout == LayoutTooSmall || x < boardOriginX || y < boardOriginY {
		return maze.Coord{}, false
	}
	b := r.ctrl.Board()
	at := maze.At(y-boardOriginY, (x-boardOriginX)/2)
	if at.Row >= b.Rows() || at.Col >= b.Cols() {
		return maze.Coord{}, false
	}
	return at, true
}

func (r *Root) handleMouseClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	m := msg.Mouse()
	r.recordInputEvent(fmt.Sprintf("mouse_click:%d,%d button:%v", m.X, m.Y, m.Button))
	if m.Button != tea.MouseLeft || r.overlayActive() {
		return r, nil
	}
	at, ok := r.cellAt(m.X, m.Y)
	if !ok {
		return r, nil
	}
	r.dragging = true
	r.ctrl.Board().Dispatch(render.PointerEvent{Kind: render.PointerDown, Cell: at})
	return r, nil
}

func (r *Root) handleMouseMotion(msg tea.MouseMotionMsg) (tea.Model, tea.Cmd) {
	if !r.dragging {
		return r, nil
	}
	m := msg.Mouse()
	at, ok := r.cellAt(m.X, m.Y)
	if !ok {
		r.dragging = false
		r.ctrl.Board().Dispatch(render.PointerEvent{Kind: render.PointerLeave})
		return r, nil
	}
	r.ctrl.Board().Dispatch(render.PointerEvent{Kind: render.PointerMove, Cell: at})
	return r, nil
}

func (r *Root) handleMouseRelease(msg tea.MouseReleaseMsg) (tea.Model, tea.Cmd) {
	if !r.dragging {
		return r, nil
	}
	r.dragging = false
	m := msg.Mouse()
	at, _ := r.cellAt(m.X, m.Y)
	r.ctrl.Board().Dispatch(render.PointerEvent{Kind: render.PointerUp, Cell: at})
	return r, nil
}

func (r *Root) renderScreen() string {
	w, h := r.cols, r.rows
	if r.ctrl == nil {
		return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, "Starting...")
	}
	p := r.ctrl.Panel()
	mode := DetermineLayoutMode(w, h, p.Rows, p.Cols)
	r.layout = mode

	if mode == LayoutTooSmall {
		boardW, boardH := BoardSize(p.Rows, p.Cols)
		msg := []string{
			"Terminal too small",
			fmt.Sprintf("Current: %dx%d", w, h),
			fmt.Sprintf("Board needs: %dx%d", boardW, boardH+chrome+stackedPanelHeight),
			"Enlarge the terminal or shrink the grid with [ and {.",
		}
		panel := r.drawPanel("Resize Required", msg, min(60, w), min(8, h))
		return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, panel)
	}

	header := r.headerText(p)
	status := r.statusText(p)
	bodyH := max(3, h-chrome)
	board := r.renderBoard()
	_, boardH := BoardSize(p.Rows, p.Cols)

	var body string
	if mode == LayoutWide {
		side := r.drawPanel("Controls", r.sidebarLines(p), sidebarWidth, max(boardH, min(bodyH, 24)))
		body = lipgloss.JoinHorizontal(lipgloss.Top, board, side)
	} else {
		boardW, _ := BoardSize(p.Rows, p.Cols)
		summary := r.drawPanel("Controls", r.compactLines(p), max(boardW, 40), stackedPanelHeight)
		body = lipgloss.JoinVertical(lipgloss.Left, board, summary)
	}
	body = lipgloss.NewStyle().Width(w).Height(bodyH).MaxHeight(bodyH).Render(body)

	base := header + "\n" + body + "\n" + status
	if drawer := r.renderStatsDrawer(p, bodyH); drawer != "" {
		drawW := lipgloss.Width(strings.SplitN(drawer, "\n", 2)[0])
		base = composeOverlayAt(base, drawer, w, h, 1, w-drawW)
	}
	return base
}

func (r *Root) renderBoard() string {
	b := r.ctrl.Board()
	lines := make([]string, 0, b.Rows())
	for row := 0; row < b.Rows(); row++ {
		var sb strings.Builder
		for col := 0; col < b.Cols(); col++ {
			tok := b.Token(maze.At(row, col))
			sb.WriteString(r.theme.Cell(tok).Render(r.glyph(tok)))
		}
		lines = append(lines, sb.String())
	}
	w, h := BoardSize(b.Rows(), b.Cols())
	return r.drawPanel("Maze", lines, w, h)
}

// glyph is the two-character picture of a cell.
func (r *Root) glyph(t render.Token) string {
	if r.ascii {
		c := render.Glyph(t)
		if t == render.TokenStart || t == render.TokenEnd {
			return string(c) + " "
		}
		return string([]byte{c, c})
	}
	switch t {
	case render.TokenWall:
		return "██"
	case render.TokenStart:
		return "S "
	case render.TokenEnd:
		return "E "
	case render.TokenVisited:
		return "░░"
	case render.TokenFinalPath:
		return "▓▓"
	default:
		return "  "
	}
}

func (r *Root) headerText(p PanelState) string {
	width := max(1, r.cols-2)
	parts := []string{"pathgrid", p.AlgorithmLabel, fmt.Sprintf("%dx%d", p.Rows, p.Cols), "Solver: " + firstNonEmptyStr(p.Transport, "none")}
	txt := trimForWidth(strings.Join(parts, " | "), width)
	if r.debug {
		txt = trimForWidth(fmt.Sprintf("%s | %dx%d %v | %s", txt, r.cols, r.rows, r.layout, r.lastInput), width)
	}
	return r.theme.Header.Width(max(1, r.cols)).Render(txt)
}

func (r *Root) statusText(p PanelState) string {
	line := r.help.ShortHelpView(r.keymap.ShortHelp())
	if p.Busy {
		line = r.theme.Accent.Render(strings.TrimSpace(r.solveSpin.View())+" Solving...") + " | " + line
	}
	if r.flash != "" {
		line = r.theme.Flash(r.flashLevel).Render(r.flash) + " | " + line
	}
	line = ansi.Truncate(line, max(1, r.cols-2), "…")
	return r.theme.Status.Width(max(1, r.cols)).Render(line)
}

func (r *Root) sidebarLines(p PanelState) []string {
	lines := []string{
		r.theme.PanelTitle.Render("Solver"),
		"Algorithm  " + p.AlgorithmLabel,
		"Speed      " + p.Delay.String() + " per step",
		"",
		r.theme.PanelTitle.Render("Grid"),
		fmt.Sprintf("Size       %d x %d (%d..%d)", p.Rows, p.Cols, p.MinDim, p.MaxDim),
		"Walls      " + humanize.Comma(int64(p.Walls)),
		"Editing    " + p.EditState,
		"",
		r.theme.PanelTitle.Render("Last run"),
	}
	lines = append(lines, r.statsLines(p.Stats)...)
	lines = append(lines, "", r.activityLine(p, sidebarWidth-4))
	return lines
}

func (r *Root) compactLines(p PanelState) []string {
	s := p.Stats
	return []string{
		fmt.Sprintf("%s | %s/step | %dx%d", p.AlgorithmLabel, p.Delay, p.Rows, p.Cols),
		fmt.Sprintf("Visited %s  Path %s  %s ms", humanize.Comma(int64(s.NodesVisited)), humanize.Comma(int64(s.PathLength)), humanize.FormatFloat("#,###.##", s.TimeTakenMS)),
		"Outcome " + firstNonEmptyStr(s.Outcome, "-"),
		r.activityLine(p, 30),
	}
}

func (r *Root) statsLines(s StatsRow) []string {
	outcome := firstNonEmptyStr(s.Outcome, "-")
	switch s.Outcome {
	case "found":
		outcome = r.theme.Pass.Render(outcome)
	case "failed":
		outcome = r.theme.Fail.Render(outcome)
	case "unreachable", "solving":
		outcome = r.theme.Pending.Render(outcome)
	}
	return []string{
		"Visited    " + humanize.Comma(int64(s.NodesVisited)),
		"Path       " + humanize.Comma(int64(s.PathLength)),
		"Time       " + humanize.FormatFloat("#,###.##", s.TimeTakenMS) + " ms",
		"Outcome    " + outcome,
	}
}

// activityLine shows the spinner while the solver works and the animation
// progress while the answer is drawn.
func (r *Root) activityLine(p PanelState, width int) string {
	switch {
	case p.Busy:
		return r.theme.Accent.Render(strings.TrimSpace(r.solveSpin.View()) + " waiting for solver")
	case p.Animating:
		bar := r.progress
		bar.SetWidth(max(8, width))
		return bar.ViewAs(p.Progress)
	default:
		return r.theme.Muted.Render("Drag to draw walls, move S and E")
	}
}

func (r *Root) renderStatsDrawer(p PanelState, bodyH int) string {
	pos := r.drawerPos
	if r.statsOpen && pos < 0.2 {
		pos = 0.2
	}
	if !r.statsOpen && pos < 0.05 {
		return ""
	}
	drawW := min(int(float64(drawerWidth)*pos), r.cols)
	if drawW < 18 {
		return ""
	}
	lines := r.historyLines(p.History)
	lines = append(lines, "", "s or Esc closes")
	return r.drawPanel("History", lines, drawW, bodyH)
}

func (r *Root) historyLines(h HistoryState) []string {
	if !h.Loaded {
		return []string{"Loading..."}
	}
	lines := []string{
		fmt.Sprintf("Runs %s  found %s", humanize.Comma(int64(h.Runs)), humanize.Comma(int64(h.Found))),
		fmt.Sprintf("Unreachable %d  failed %d", h.Unreachable, h.Failed),
	}
	if len(h.BestPath) > 0 {
		lines = append(lines, "", "Shortest path found")
		algos := make([]string, 0, len(h.BestPath))
		for a := range h.BestPath {
			algos = append(algos, a)
		}
		sort.Strings(algos)
		for _, a := range algos {
			lines = append(lines, fmt.Sprintf("  %-13s %d", a, h.BestPath[a]))
		}
	}
	if len(h.Recent) > 0 {
		lines = append(lines, "", "Recent")
		for _, row := range h.Recent {
			lines = append(lines, fmt.Sprintf("  %-8s %-11s %s", row.Algorithm, row.Outcome, humanize.Time(row.When)))
		}
	}
	return lines
}

func (r *Root) renderOverlay() string {
	top := r.topOverlay()
	if top == "" {
		return ""
	}
	w := min(max(48, r.cols-20), r.cols)
	h := min(max(10, r.rows/2), max(8, r.rows-4))

	var title string
	var lines []string
	switch top {
	case "presets":
		title = "Presets"
		for i, item := range r.panel().Presets {
			prefix := "  "
			if i == r.presetIndex {
				prefix = "> "
			}
			origin := "local"
			if item.Builtin {
				origin = "built-in"
			}
			lines = append(lines, fmt.Sprintf("%s%-24s %s", prefix, item.Name, origin))
		}
		lines = append(lines, "", "Enter: Load  Esc: Close")
	case "info":
		title = firstNonEmptyStr(r.infoTitle, "Info")
		start := min(r.infoScroll, max(0, len(r.infoLines)-1))
		lines = append(lines, r.infoLines[start:]...)
		lines = append(lines, "", "Up/Down: Scroll  Esc: Close")
	case "help":
		title = "Keys"
		lines = strings.Split(r.help.FullHelpView(r.keymap.FullHelp()), "\n")
		lines = append(lines, "", "Mouse: drag on empty cells to draw walls, on walls to erase,", "on S or E to move them.", "", "?/Esc: Close")
	}
	if needH := len(lines) + 2; needH > h {
		h = min(needH, max(8, r.rows-4))
	}
	if len(lines) > h-2 {
		// keep the key hints visible
		lines = append(lines[:h-4], lines[len(lines)-2:]...)
	}
	return r.drawPanel(title, lines, w, h)
}

func (r *Root) topOverlay() string {
	switch {
	case r.infoOpen:
		return "info"
	case r.presetsOpen:
		return "presets"
	case r.help.ShowAll:
		return "help"
	}
	return ""
}

func (r *Root) overlayActive() bool {
	return r.topOverlay() != ""
}

func (r *Root) closeTopOverlay() {
	switch r.topOverlay() {
	case "info":
		r.infoOpen = false
	case "presets":
		r.presetsOpen = false
	case "help":
		r.help.ShowAll = false
	}
}

func (r *Root) drawPanel(title string, lines []string, width, height int) string {
	width = max(4, width)
	height = max(3, height)
	innerW := width - 2
	innerH := height - 2

	h := "─"
	v := "│"
	tl := "┌"
	tr := "┐"
	bl := "└"
	br := "┘"
	if r.ascii {
		h = "-"
		v = "|"
		tl, tr, bl, br = "+", "+", "+", "+"
	}

	top := tl + strings.Repeat(h, innerW) + tr
	if title != "" && innerW > 2 {
		t := " " + title + " "
		runes := []rune(top)
		start := 1
		for i, ch := range []rune(t) {
			pos := start + i
			if pos >= len(runes)-1 {
				break
			}
			runes[pos] = ch
		}
		top = string(runes)
	}

	out := make([]string, 0, height)
	out = append(out, r.theme.PanelBorder.Render(top))
	for row := 0; row < innerH; row++ {
		line := ""
		if row < len(lines) {
			line = lines[row]
		}
		line = padVisible(line, innerW)
		out = append(out, r.theme.PanelBorder.Render(v)+r.theme.PanelBody.Render(line)+r.theme.PanelBorder.Render(v))
	}
	out = append(out, r.theme.PanelBorder.Render(bl+strings.Repeat(h, innerW)+br))
	return strings.Join(out, "\n")
}

func (r *Root) drawerTarget() float64 {
	if r.statsOpen {
		return 1
	}
	return 0
}

func (r *Root) animateIfNeeded() tea.Cmd {
	if r.shouldAnimate(r.drawerTarget()) {
		return animateTickCmd()
	}
	return nil
}

func (r *Root) shouldAnimate(target float64) bool {
	if r.motionLevel == "off" {
		r.drawerPos = target
		return false
	}
	if target > 0 {
		return r.drawerPos < 0.999 || abs(r.drawerVel) > 0.001
	}
	return r.drawerPos > 0.001 || abs(r.drawerVel) > 0.001
}

func (r *Root) currentMouseMode() tea.MouseMode {
	if r.overlayActive() {
		return tea.MouseModeNone
	}
	return tea.MouseModeCellMotion
}

func clockTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return clockMsg(t) })
}

func animateTickCmd() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return animateMsg(t) })
}

func spinnerTickCmd(model spinner.Model) tea.Cmd {
	return func() tea.Msg {
		return model.Tick()
	}
}

func firstNonEmptyStr(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}

func wrapIndex(i, n int) int {
	if n <= 0 {
		return 0
	}
	if i < 0 {
		i = n - 1
	}
	if i >= n {
		i = 0
	}
	return i
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func padRune(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(strings.ReplaceAll(s, "\t", "    "))
	if len(r) > width {
		r = r[:width]
	}
	if len(r) < width {
		r = append(r, []rune(strings.Repeat(" ", width-len(r)))...)
	}
	return string(r)
}

// padVisible pads or cuts s to width terminal cells, ignoring escape codes.
func padVisible(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = strings.ReplaceAll(s, "\t", "    ")
	if ansi.StringWidth(s) > width {
		s = ansi.Truncate(s, width, "")
	}
	if w := ansi.StringWidth(s); w < width {
		s += strings.Repeat(" ", width-w)
	}
	return s
}

func composeOverlay(base, overlay string, cols, rows int) string {
	overlayLines := strings.Split(strings.TrimRight(ansi.Strip(overlay), "\n"), "\n")
	ow := 1
	for _, line := range overlayLines {
		ow = max(ow, len([]rune(line)))
	}
	oh := min(len(overlayLines), rows)
	return composeOverlayAt(base, overlay, cols, rows, (rows-oh)/2, max(0, (cols-min(ow, cols))/2))
}

func composeOverlayAt(base, overlay string, cols, rows, startRow, startCol int) string {
	if cols <= 0 || rows <= 0 {
		return base
	}
	base = ansi.Strip(base)
	overlay = ansi.Strip(overlay)
	baseLines := strings.Split(base, "\n")
	if len(baseLines) < rows {
		pad := make([]string, rows-len(baseLines))
		baseLines = append(baseLines, pad...)
	}
	for i := 0; i < rows; i++ {
		baseLines[i] = padRune(baseLines[i], cols)
	}

	overlayLines := strings.Split(strings.TrimRight(overlay, "\n"), "\n")
	if len(overlayLines) == 0 {
		return strings.Join(baseLines[:rows], "\n")
	}
	ow := 1
	for _, line := range overlayLines {
		ow = max(ow, len([]rune(line)))
	}
	ow = min(ow, cols)
	startRow = max(0, startRow)
	startCol = max(0, startCol)

	for i, line := range overlayLines {
		row := startRow + i
		if row >= rows {
			break
		}
		dst := []rune(baseLines[row])
		src := []rune(line)
		if len(src) > ow {
			src = src[:ow]
		}
		for j := 0; j < ow && startCol+j < len(dst); j++ {
			dst[startCol+j] = ' '
		}
		for j := 0; j < len(src) && startCol+j < len(dst); j++ {
			dst[startCol+j] = src[j]
		}
		baseLines[row] = string(dst)
	}
	return strings.Join(baseLines[:rows], "\n")
}

func trimForWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(strings.ReplaceAll(ansi.Strip(s), "\n", " "))
	if len(r) <= width {
		return string(r)
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}

func normalizeStyleVariant(v string) string {
	switch strings.TrimSpace(v) {
	case "cozy_clean", "retro_terminal", "modern_arcade":
		return strings.TrimSpace(v)
	default:
		return "modern_arcade"
	}
}

func normalizeMotionLevel(v string) string {
	switch strings.TrimSpace(v) {
	case "off", "reduced", "full":
		return strings.TrimSpace(v)
	default:
		return "full"
	}
}

func (r *Root) recordInputEvent(event string) {
	r.lastInput = trimForWidth(strings.TrimSpace(event), 160)
}

func (r *Root) onModelPanic(where string, recovered any, msg tea.Msg) {
	r.FlashStatus(LevelError, "Recovered UI panic")
	msgType := ""
	if msg != nil {
		msgType = fmt.Sprintf("%T", msg)
	}
	r.logger.Error("ui.panic_recovered",
		"where", where,
		"panic", fmt.Sprintf("%v", recovered),
		"message_type", msgType,
		"layout", r.layout,
		"cols", r.cols,
		"rows", r.rows,
		"overlay", r.topOverlay(),
		"last_input", r.lastInput,
		"stack", string(debug.Stack()),
	)
}

var _ tea.Model = (*Root)(nil)
var _ View = (*Root)(nil)
