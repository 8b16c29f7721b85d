package index

// ResolveDependencies expands pkg's already-parsed dependency possibilities
// against the abstract-name universe: each possibility's name is looked up
// (or created, for forward references) in abstract_hash, and pkg is
// registered as a dependant of it. It is a no-op if pkg's dependencies were
// already checked, so large repositories are not fully expanded up front
// (spec §4.4: "runs lazily per abstract package, guarded by
// dependencies_checked").
func (idx *Index) ResolveDependencies(pkg *Package) {
	if pkg.DependenciesChecked() {
		return
	}
	for _, cd := range pkg.Depends {
		for _, poss := range cd.Possibilities {
			idx.RegisterDependant(poss.Name, pkg)
		}
	}
	pkg.SetDependenciesChecked()
}

// ResolveAll runs ResolveDependencies over every concrete package currently
// indexed.
func (idx *Index) ResolveAll() {
	idx.forEachPackage(func(pkg *Package) {
		idx.ResolveDependencies(pkg)
	})
}

func (idx *Index) forEachPackage(fn func(*Package)) {
	idx.pkgHash.t.Walk(func(_ string, v interface{}) bool {
		for _, pkg := range v.([]*Package) {
			fn(pkg)
		}
		return false
	})
}
