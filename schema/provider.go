package schema

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Kind identifies the record kind a Definition belongs to.
type Kind string

const (
	KindProposal           Kind = "proposal"
	KindBrochure           Kind = "brochure"
	KindExtra              Kind = "extra"
	KindSnippet            Kind = "snippet"
	KindWebsitePackage     Kind = "website_package"
	KindHostingPackage     Kind = "hosting_package"
	KindMaintenancePackage Kind = "maintenance_package"
)

// PackageKind maps a package_type column value to its schema kind.
func PackageKind(packageType string) Kind {
	switch packageType {
	case "hosting":
		return KindHostingPackage
	case "maintenance":
		return KindMaintenancePackage
	}
	return KindWebsitePackage
}

// ErrUnknownKind is returned by SchemaFor for kinds without a definition.
var ErrUnknownKind = errors.New("schema: unknown kind")

//go:embed definitions/*.yaml
var builtin embed.FS

// Provider serves definitions by kind. Built-in definitions are embedded;
// files named <kind>.yaml, <kind>.yml or <kind>.json in an override
// directory replace them.
type Provider struct {
	mu   sync.RWMutex
	defs map[Kind]*Definition
}

// NewProvider loads the built-in definitions and then overrideDir, if set.
func NewProvider(overrideDir string) (*Provider, error) {
	p := &Provider{defs: make(map[Kind]*Definition)}
	if err := p.loadFS(builtin, "definitions"); err != nil {
		return nil, err
	}
	if overrideDir != "" {
		if err := p.loadFS(os.DirFS(overrideDir), "."); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Provider) loadFS(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("schema: read %s: %w", dir, err)
	}
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != ".yaml" && ext != ".yml" && ext != ".json") {
			continue
		}
		data, err := fs.ReadFile(fsys, filepath.ToSlash(filepath.Join(dir, e.Name())))
		if err != nil {
			return fmt.Errorf("schema: read %s: %w", e.Name(), err)
		}
		def, err := Parse(data)
		if err != nil {
			return fmt.Errorf("%s: %w", e.Name(), err)
		}
		p.Register(Kind(strings.TrimSuffix(e.Name(), ext)), def)
	}
	return nil
}

// Register installs def for kind, replacing any previous definition.
func (p *Provider) Register(kind Kind, def *Definition) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.defs[kind] = def
}

// SchemaFor returns the definition registered for kind.
func (p *Provider) SchemaFor(kind Kind) (*Definition, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	def, ok := p.defs[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return def, nil
}

// Kinds lists the registered kinds in lexical order.
func (p *Provider) Kinds() []Kind {
	p.mu.RLock()
	defer p.mu.RUnlock()
	kinds := make([]Kind, 0, len(p.defs))
	for k := range p.defs {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
