package solver

import "github.com/opkg-project/opkg/depexpr"

// orderPlan topologically sorts the accepted candidates so every
// Pre-Depends and Depends target precedes its dependent (spec §4.5 "On
// success the plan is topologically sorted so Pre-Depends precede their
// dependents, and configures run only after all unpacks of their
// Pre-Depends have completed"), then emits Install actions in that order, Configure actions
// in the same order, and finally Remove actions for whatever was scheduled
// for removal (spec §5: "Removals run after all replacing unpacks").
func (s *solveState) orderPlan() Plan {
	topo := s.topoSortPreDepends()

	plan := make(Plan, 0, 2*len(topo)+len(s.scheduledRemoval))
	for _, name := range topo {
		pkg := s.tentative[name]
		if s.world.isInstalled(pkg) {
			continue
		}
		plan = append(plan, Action{Package: pkg, Kind: Install})
	}
	for _, name := range topo {
		pkg := s.tentative[name]
		if s.world.isInstalled(pkg) {
			continue
		}
		plan = append(plan, Action{Package: pkg, Kind: Configure})
	}
	for name := range s.scheduledRemoval {
		if pkg, ok := s.world.Installed[name]; ok {
			plan = append(plan, Action{Package: pkg, Kind: Remove})
		}
	}
	return plan
}

// topoSortPreDepends runs Kahn's algorithm over the Pre-Depends and Depends
// edges among tentatively-accepted packages, breaking ties by acceptance order so the
// result stays deterministic and close to s.order when there's no
// constraint between two packages.
func (s *solveState) topoSortPreDepends() []string {
	indegree := make(map[string]int, len(s.order))
	edges := make(map[string][]string) // dependency -> dependents that must follow it
	for _, name := range s.order {
		indegree[name] = 0
	}

	for _, name := range s.order {
		pkg := s.tentative[name]
		for _, cd := range pkg.Depends {
			if cd.Kind != depexpr.PreDepend && cd.Kind != depexpr.Depend {
				continue
			}
			for _, poss := range cd.Possibilities {
				dep, ok := s.tentative[poss.Name]
				if !ok || dep.Name == pkg.Name {
					continue
				}
				edges[dep.Name] = append(edges[dep.Name], pkg.Name)
				indegree[pkg.Name]++
			}
		}
	}

	var ready []string
	for _, name := range s.order {
		if indegree[name] == 0 {
			ready = append(ready, name)
		}
	}

	var out []string
	visited := make(map[string]bool)
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		if visited[name] {
			continue
		}
		visited[name] = true
		out = append(out, name)
		for _, next := range edges[name] {
			indegree[next]--
			if indegree[next] == 0 {
				ready = append(ready, next)
			}
		}
	}

	// Anything left (a dependency cycle) is appended in acceptance order
	// rather than dropped.
	for _, name := range s.order {
		if !visited[name] {
			out = append(out, name)
		}
	}
	return out
}
