// Package agent loads team participant definitions and runs a single
// participant's tool loop.
package agent

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iamsorenl/Autogen-Chat-Demo/logger"
)

//go:embed builtin/*.md
var builtinFS embed.FS

// Def is one participant definition: front matter plus a system message body.
type Def struct {
	Name          string
	Description   string
	Provider      string // empty selects the team default
	Model         string // empty selects the provider default
	Tools         []string
	SystemMessage string
	Path          string // empty for built-ins
}

// Prompt renders the system message, replacing {{TOOLS}} and {{TIME}}.
func (d *Def) Prompt(toolNames []string, now time.Time) string {
	tools := "none"
	if len(toolNames) > 0 {
		tools = strings.Join(toolNames, ", ")
	}
	prompt := strings.ReplaceAll(d.SystemMessage, "{{TOOLS}}", tools)
	prompt = strings.ReplaceAll(prompt, "{{TIME}}", now.Format("2006-01-02 15:04 (Monday)"))
	return strings.TrimSpace(prompt)
}

// Registry holds participant definitions. Files in the agents directory
// override built-ins with the same name.
type Registry struct {
	agentsDir string
	defs      map[string]*Def
	mu        sync.RWMutex
}

// NewRegistry creates a registry backed by agentsDir and loads it.
func NewRegistry(agentsDir string) *Registry {
	r := &Registry{agentsDir: agentsDir}
	r.load()
	return r
}

func (r *Registry) load() {
	next := make(map[string]*Def)

	entries, _ := fs.ReadDir(builtinFS, "builtin")
	for _, entry := range entries {
		raw, err := fs.ReadFile(builtinFS, path.Join("builtin", entry.Name()))
		if err != nil {
			continue
		}
		def, err := parseDef(entry.Name(), string(raw))
		if err != nil {
			logger.Error("invalid built-in participant", "file", entry.Name(), "err", err)
			continue
		}
		next[def.Name] = def
	}

	if r.agentsDir != "" {
		dirEntries, err := os.ReadDir(r.agentsDir)
		if err != nil {
			logger.Debug("agents directory not found", "dir", r.agentsDir)
		}
		for _, entry := range dirEntries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
				continue
			}
			p := filepath.Join(r.agentsDir, entry.Name())
			raw, err := os.ReadFile(p)
			if err != nil {
				logger.Warn("failed to read participant file", "path", p, "err", err)
				continue
			}
			def, err := parseDef(entry.Name(), string(raw))
			if err != nil {
				logger.Warn("invalid participant file", "path", p, "err", err)
				continue
			}
			def.Path = p
			next[def.Name] = def
			logger.Debug("loaded participant definition", "name", def.Name)
		}
	}

	r.mu.Lock()
	r.defs = next
	r.mu.Unlock()
}

func parseDef(fileName, content string) (*Def, error) {
	meta, body, _, err := parseTemplate(content)
	if err != nil {
		return nil, fmt.Errorf("parse front matter: %w", err)
	}

	name := strings.TrimSpace(meta.Name)
	if name == "" {
		name = strings.TrimSuffix(fileName, ".md")
	}
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("participant %s has an empty system message", name)
	}

	return &Def{
		Name:          name,
		Description:   strings.TrimSpace(meta.Description),
		Provider:      strings.TrimSpace(meta.Provider),
		Model:         strings.TrimSpace(meta.Model),
		Tools:         meta.Tools,
		SystemMessage: body,
	}, nil
}

// Get returns a definition by name.
func (r *Registry) Get(name string) (*Def, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[name]
	return def, ok
}

// List returns every definition sorted by name.
func (r *Registry) List() []*Def {
	r.mu.RLock()
	defs := make([]*Def, 0, len(r.defs))
	for _, def := range r.defs {
		defs = append(defs, def)
	}
	r.mu.RUnlock()

	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Reload re-reads definitions from disk.
func (r *Registry) Reload() {
	r.load()
}

// WriteBuiltins copies the built-in definitions into dir. Existing files are
// kept unless overwrite is set. Returns the paths written.
func WriteBuiltins(dir string, overwrite bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create agents dir: %w", err)
	}

	entries, err := fs.ReadDir(builtinFS, "builtin")
	if err != nil {
		return nil, err
	}

	var written []string
	for _, entry := range entries {
		dst := filepath.Join(dir, entry.Name())
		if !overwrite {
			if _, err := os.Stat(dst); err == nil {
				continue
			}
		}
		raw, err := fs.ReadFile(builtinFS, path.Join("builtin", entry.Name()))
		if err != nil {
			return written, err
		}
		if err := os.WriteFile(dst, raw, 0644); err != nil {
			return written, fmt.Errorf("write %s: %w", dst, err)
		}
		written = append(written, dst)
	}
	return written, nil
}
