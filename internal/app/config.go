package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"pathgrid/internal/solver"
)

const (
	MinDelay  = 10 * time.Millisecond
	MaxDelay  = 200 * time.Millisecond
	DelayStep = 10 * time.Millisecond
)

// Config controls runtime behavior for the TUI app.
type Config struct {
	Rows          int           `env:"ROWS"`
	Cols          int           `env:"COLS"`
	MinDim        int           `env:"MIN_DIM"`
	MaxDim        int           `env:"MAX_DIM"`
	Algorithm     string        `env:"ALGORITHM"`
	DelayMS       int           `env:"DELAY_MS"`
	BatchSize     int           `env:"BATCH_SIZE"`
	Density       float64       `env:"DENSITY"`
	SolverURL     string        `env:"SOLVER_URL"`
	SolverCmd     string        `env:"SOLVER_CMD"`
	SolverTimeout time.Duration `env:"SOLVER_TIMEOUT"`
	MockSolver    bool          `env:"MOCK_SOLVER"`
	MockScenario  string        `env:"MOCK_SCENARIO"`
	MockStyle     string        `env:"MOCK_STYLE"`
	DataDir       string        `env:"DATA_DIR"`
	LogPath       string        `env:"LOG_PATH"`
	PresetDir     string        `env:"PRESET_DIR"`
	Load          string        `env:"LOAD"`
	ASCIIOnly     bool          `env:"ASCII"`
	Debug         bool          `env:"DEBUG"`
	UI            UIConfig

	// pinned holds setting keys chosen by env or flags; persisted settings
	// never override them.
	pinned map[string]bool
}

type UIConfig struct {
	StyleVariant string `env:"STYLE"`
	MotionLevel  string `env:"MOTION"`
}

func DefaultConfig() Config {
	return Config{
		Rows:          20,
		Cols:          30,
		MinDim:        10,
		MaxDim:        50,
		Algorithm:     "astar",
		DelayMS:       50,
		BatchSize:     3,
		Density:       0.3,
		SolverURL:     "http://127.0.0.1:5000",
		SolverTimeout: 10 * time.Second,
		MockScenario:  "normal",
		MockStyle:     "random",
		UI: UIConfig{
			StyleVariant: "modern_arcade",
			MotionLevel:  "full",
		},
	}
}

// LoadEnv overlays PATHGRID_* variables onto c and pins every key it set.
func LoadEnv(c *Config) error {
	return env.ParseWithOptions(c, env.Options{
		Prefix: "PATHGRID_",
		OnSet: func(tag string, value any, isDefault bool) {
			if isDefault || fmt.Sprint(value) == "" {
				return
			}
			c.Pin(strings.ToLower(strings.TrimPrefix(tag, "PATHGRID_")))
		},
	})
}

// Pin marks key as explicitly chosen.
func (c *Config) Pin(key string) {
	if c.pinned == nil {
		c.pinned = map[string]bool{}
	}
	c.pinned[key] = true
}

func (c *Config) Pinned(key string) bool { return c.pinned[key] }

func (c *Config) Delay() time.Duration {
	return time.Duration(c.DelayMS) * time.Millisecond
}

func (c *Config) Validate() error {
	if c.MinDim <= 0 {
		c.MinDim = 10
	}
	if c.MaxDim <= 0 {
		c.MaxDim = 50
	}
	if c.MinDim < 2 || c.MinDim > c.MaxDim {
		return fmt.Errorf("invalid dimension bounds %d..%d", c.MinDim, c.MaxDim)
	}
	if c.Rows == 0 {
		c.Rows = 20
	}
	if c.Cols == 0 {
		c.Cols = 30
	}
	if c.Rows < c.MinDim || c.Rows > c.MaxDim || c.Cols < c.MinDim || c.Cols > c.MaxDim {
		return fmt.Errorf("grid %dx%d outside %d..%d", c.Rows, c.Cols, c.MinDim, c.MaxDim)
	}

	if c.Algorithm == "" {
		c.Algorithm = "astar"
	}
	algo, err := solver.CanonicalAlgorithm(c.Algorithm)
	if err != nil {
		return err
	}
	c.Algorithm = algo

	if c.DelayMS == 0 {
		c.DelayMS = 50
	}
	c.DelayMS = int(clampDelay(c.Delay()) / time.Millisecond)
	if c.BatchSize <= 0 {
		c.BatchSize = 3
	}
	if c.Density < 0 || c.Density > 1 {
		return fmt.Errorf("invalid density %v", c.Density)
	}
	if c.SolverTimeout <= 0 {
		c.SolverTimeout = 10 * time.Second
	}
	if !c.MockSolver && strings.TrimSpace(c.SolverURL) == "" && strings.TrimSpace(c.SolverCmd) == "" {
		return errors.New("no solver configured: set a solver url, a solver command or the mock solver")
	}

	switch c.MockScenario {
	case "", "normal", "slow", "unreachable", "broken", "garbage":
	default:
		return fmt.Errorf("invalid mock scenario %q", c.MockScenario)
	}
	switch c.MockStyle {
	case "", "random", "perfect":
	default:
		return fmt.Errorf("invalid mock maze style %q", c.MockStyle)
	}
	if c.MockStyle == "" {
		c.MockStyle = "random"
	}

	switch c.UI.StyleVariant {
	case "", "modern_arcade", "cozy_clean", "retro_terminal":
	default:
		return fmt.Errorf("invalid ui style variant %q", c.UI.StyleVariant)
	}
	if c.UI.StyleVariant == "" {
		c.UI.StyleVariant = "modern_arcade"
	}
	switch c.UI.MotionLevel {
	case "", "off", "reduced", "full":
	default:
		return fmt.Errorf("invalid ui motion level %q", c.UI.MotionLevel)
	}
	if c.UI.MotionLevel == "" {
		c.UI.MotionLevel = "full"
	}

	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return errors.New("cannot resolve user home directory")
		}
		c.DataDir = filepath.Join(home, ".local", "share", "pathgrid")
	}
	if c.PresetDir == "" {
		c.PresetDir = filepath.Join(c.DataDir, "presets")
	}
	return nil
}

// Setting keys persisted between sessions.
const (
	settingAlgorithm = "algorithm"
	settingDelay     = "delay_ms"
	settingStyle     = "style"
)

// ApplySettings overlays persisted values onto keys nobody pinned. Bad
// values are skipped.
func (c *Config) ApplySettings(values map[string]string) {
	if v, ok := values[settingAlgorithm]; ok && !c.Pinned(settingAlgorithm) {
		if algo, err := solver.CanonicalAlgorithm(v); err == nil {
			c.Algorithm = algo
		}
	}
	if v, ok := values[settingDelay]; ok && !c.Pinned(settingDelay) {
		if ms, err := strconv.Atoi(v); err == nil {
			c.DelayMS = int(clampDelay(time.Duration(ms)*time.Millisecond) / time.Millisecond)
		}
	}
	if v, ok := values[settingStyle]; ok && !c.Pinned(settingStyle) {
		switch v {
		case "modern_arcade", "cozy_clean", "retro_terminal":
			c.UI.StyleVariant = v
		}
	}
}

func (c *Config) Settings() map[string]string {
	return map[string]string{
		settingAlgorithm: c.Algorithm,
		settingDelay:     strconv.Itoa(c.DelayMS),
		settingStyle:     c.UI.StyleVariant,
	}
}
