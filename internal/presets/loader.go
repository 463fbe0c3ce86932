package presets

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

var ErrNotFound = errors.New("preset not found")

type Loader struct{}

func NewLoader() *Loader { return &Loader{} }

func (l *Loader) LoadBuiltin() ([]Preset, error) {
	out, err := readDir(builtinFS, "builtin")
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Builtin = true
	}
	return out, nil
}

// LoadDir reads every *.yaml preset directly under root. A missing root
// yields no presets.
func (l *Loader) LoadDir(ctx context.Context, root string) ([]Preset, error) {
	if root == "" {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	out, err := readDir(os.DirFS(root), ".")
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Path = filepath.Join(root, out[i].Path)
	}
	return out, nil
}

// LoadAll merges built-in presets with those under root. A file preset
// replaces a built-in one with the same id.
func (l *Loader) LoadAll(ctx context.Context, root string) ([]Preset, error) {
	builtin, err := l.LoadBuiltin()
	if err != nil {
		return nil, err
	}
	local, err := l.LoadDir(ctx, root)
	if err != nil {
		return nil, err
	}
	byID := map[string]Preset{}
	for _, p := range builtin {
		byID[p.ID] = p
	}
	for _, p := range local {
		byID[p.ID] = p
	}
	out := make([]Preset, 0, len(byID))
	for _, p := range byID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func Find(presets []Preset, id string) (Preset, error) {
	for _, p := range presets {
		if p.ID == id {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("%w: %q", ErrNotFound, id)
}

func readDir(fsys fs.FS, dir string) ([]Preset, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	out := make([]Preset, 0, len(entries))
	seen := map[string]string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !(strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")) {
			continue
		}
		rel := filepath.ToSlash(filepath.Join(dir, name))
		if dir == "." {
			rel = name
		}
		b, err := fs.ReadFile(fsys, rel)
		if err != nil {
			return nil, err
		}
		var p Preset
		if err := yaml.Unmarshal(b, &p); err != nil {
			return nil, fmt.Errorf("load preset %s: %w", name, err)
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if prev, ok := seen[p.ID]; ok {
			return nil, fmt.Errorf("duplicate preset id %q in %s and %s", p.ID, prev, name)
		}
		seen[p.ID] = name
		p.Path = name
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
