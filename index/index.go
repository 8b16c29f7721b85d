package index

import (
	"sort"

	"github.com/armon/go-radix"
)

// pkgTrie and abstractTrie are typed wrappers around a radix tree, in the
// same style as the teacher's typed_radix.go: avoid type assertions
// everywhere else in the package.
type pkgTrie struct{ t *radix.Tree }

func newPkgTrie() pkgTrie { return pkgTrie{t: radix.New()} }

func (t pkgTrie) Get(name string) ([]*Package, bool) {
	v, ok := t.t.Get(name)
	if !ok {
		return nil, false
	}
	return v.([]*Package), true
}

func (t pkgTrie) Insert(name string, pkgs []*Package) {
	t.t.Insert(name, pkgs)
}

// PrefixMatch returns every concrete name in the index starting with
// prefix, in lexical order.
func (t pkgTrie) PrefixMatch(prefix string) []string {
	var names []string
	t.t.WalkPrefix(prefix, func(s string, _ interface{}) bool {
		names = append(names, s)
		return false
	})
	return names
}

type abstractTrie struct{ t *radix.Tree }

func newAbstractTrie() abstractTrie { return abstractTrie{t: radix.New()} }

func (t abstractTrie) Get(name string) (*AbstractPackage, bool) {
	v, ok := t.t.Get(name)
	if !ok {
		return nil, false
	}
	return v.(*AbstractPackage), true
}

func (t abstractTrie) Insert(name string, ap *AbstractPackage) {
	t.t.Insert(name, ap)
}

func (t abstractTrie) Len() int { return t.t.Len() }

// Index is the package database: pkg_hash (concrete packages by name) and
// abstract_hash (abstract packages by name), exactly as spec §4.3.
type Index struct {
	pkgHash      pkgTrie
	abstractHash abstractTrie
}

// New returns an empty Index.
func New() *Index {
	return &Index{pkgHash: newPkgTrie(), abstractHash: newAbstractTrie()}
}

// Packages returns every concrete package recorded under name, sorted
// descending by (version, arch priority) — pkg_hash's lookup order (spec
// §4.3: "sorted by descending (version, arch_priority) in lookup.
// Insertion appends; sorting is lazy.").
func (idx *Index) Packages(name string) []*Package {
	pkgs, ok := idx.pkgHash.Get(name)
	if !ok {
		return nil
	}
	sorted := make([]*Package, len(pkgs))
	copy(sorted, pkgs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if c := versionCompare(sorted[i], sorted[j]); c != 0 {
			return c > 0
		}
		return sorted[i].ArchPriority > sorted[j].ArchPriority
	})
	return sorted
}

func versionCompare(a, b *Package) int {
	return compareVersions(a.Version, b.Version)
}

// Abstract returns the abstract package named name, creating and indexing
// an empty one if absent so forward references in dependency strings
// resolve cleanly (spec §4.4: "creating an empty abstract entry if
// absent").
func (idx *Index) Abstract(name string) *AbstractPackage {
	if ap, ok := idx.abstractHash.Get(name); ok {
		return ap
	}
	ap := &AbstractPackage{Name: name}
	idx.abstractHash.Insert(name, ap)
	return ap
}

// LookupAbstract returns the abstract package named name without creating
// one, for callers that must distinguish "known but empty" from "never
// referenced".
func (idx *Index) LookupAbstract(name string) (*AbstractPackage, bool) {
	return idx.abstractHash.Get(name)
}

// AllPackages returns every concrete package currently indexed, in no
// particular order. Used by callers that persist the whole database (the
// status file) rather than looking up a single name.
func (idx *Index) AllPackages() []*Package {
	var all []*Package
	idx.pkgHash.t.Walk(func(_ string, v interface{}) bool {
		all = append(all, v.([]*Package)...)
		return false
	})
	return all
}

// AbstractNames returns every abstract package name currently indexed.
func (idx *Index) AbstractNames() []string {
	var names []string
	idx.abstractHash.t.Walk(func(s string, _ interface{}) bool {
		names = append(names, s)
		return false
	})
	sort.Strings(names)
	return names
}

// Insert adds pkg to pkg_hash and registers it as a provider of its own
// abstract package before any name in its Provides list (spec §3: "A
// concrete package always provides its own name as its first provider
// entry"). If an existing package shares pkg's (name, version, revision,
// architecture, src) identity, the two records are merged per the §4.3
// merge contract instead of duplicating the entry, and the merged record
// takes the old record's place in every providers list.
func (idx *Index) Insert(pkg *Package) *Package {
	existing, ok := idx.pkgHash.Get(pkg.Name)
	if ok {
		for i, old := range existing {
			if sameIdentity(old, pkg) {
				merged := Merge(old, pkg)
				existing[i] = merged
				idx.pkgHash.Insert(pkg.Name, existing)
				for _, name := range append([]string{old.Name}, old.Provides...) {
					ap := idx.Abstract(name)
					for j, p := range ap.Providers {
						if p == old {
							ap.Providers[j] = merged
						}
					}
				}
				idx.reindexProvides(merged)
				return merged
			}
		}
	}
	idx.pkgHash.Insert(pkg.Name, append(existing, pkg))
	idx.reindexProvides(pkg)
	return pkg
}

func sameIdentity(a, b *Package) bool {
	return a.Name == b.Name &&
		compareVersions(a.Version, b.Version) == 0 &&
		a.Architecture == b.Architecture &&
		a.Source == b.Source
}

// reindexProvides ensures pkg is registered as a provider of its own name
// and of every name in its Provides list.
func (idx *Index) reindexProvides(pkg *Package) {
	idx.Abstract(pkg.Name).AddProvider(pkg)
	for _, name := range pkg.Provides {
		idx.Abstract(name).AddProvider(pkg)
	}
}

// RegisterDependant records pkg as depending on the abstract package named
// name, used by the resolver (package depexpr's consumer) when it expands a
// possibility (spec §4.4: "The concrete package is then registered on each
// possibility's abstract entry's dependants list.").
func (idx *Index) RegisterDependant(name string, pkg *Package) {
	idx.Abstract(name).AddDependant(pkg)
}
