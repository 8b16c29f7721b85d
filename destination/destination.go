// Package destination manages the set of install destinations a host
// knows about: named roots, each with its own info directory and status
// file (spec.md §3 "Install destination"). The registry itself is data
// (not CLI configuration), so it's persisted as a small TOML document
// under an operator-supplied config directory and shared across
// invocations.
package destination

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// Destination is one named install root.
type Destination struct {
	Name       string `toml:"name"`
	Root       string `toml:"root"`
	InfoDir    string `toml:"info_dir"`
	StatusFile string `toml:"status_file"`
}

// StatusPath returns d's status file, defaulting to <info_dir>/status when
// StatusFile isn't set explicitly.
func (d Destination) StatusPath() string {
	if d.StatusFile != "" {
		return d.StatusFile
	}
	return filepath.Join(d.InfoDir, "status")
}

type registryDoc struct {
	Destinations []Destination `toml:"destination"`
}

// Registry is the in-memory set of known destinations, keyed by name.
type Registry struct {
	byName map[string]Destination
	order  []string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Destination)}
}

// Add registers d, overwriting any existing destination of the same name.
func (r *Registry) Add(d Destination) {
	if _, exists := r.byName[d.Name]; !exists {
		r.order = append(r.order, d.Name)
	}
	r.byName[d.Name] = d
}

// Remove deletes the named destination, if present.
func (r *Registry) Remove(name string) {
	if _, ok := r.byName[name]; !ok {
		return
	}
	delete(r.byName, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Get returns the named destination, if known.
func (r *Registry) Get(name string) (Destination, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// All returns every registered destination in registration order.
func (r *Registry) All() []Destination {
	out := make([]Destination, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Load reads a destinations.toml document from path. A missing file is
// treated as an empty registry (first run).
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewRegistry(), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "destination: reading registry")
	}

	var doc registryDoc
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "destination: parsing registry")
	}

	reg := NewRegistry()
	for _, d := range doc.Destinations {
		reg.Add(d)
	}
	return reg, nil
}

// Save writes r to path as TOML, via write-temp-fsync-rename so a crash
// mid-write never corrupts the registry (same discipline as the status
// file, spec.md §4.6).
func (r *Registry) Save(path string) error {
	doc := registryDoc{Destinations: r.All()}
	data, err := toml.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "destination: marshaling registry")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "destination: creating config dir")
	}
	tmp := filepath.Join(dir, "."+filepath.Base(path)+".tmp")

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrap(err, "destination: creating temp file")
	}
	defer os.Remove(tmp)

	if _, err := f.Write(data); err != nil {
		f.Close()
		return errors.Wrap(err, "destination: writing temp file")
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return errors.Wrap(err, "destination: fsync temp file")
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "destination: closing temp file")
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrap(err, "destination: renaming temp file")
	}
	return nil
}
