package solver

import (
	"log"
	"sort"

	"github.com/pkg/errors"

	"github.com/opkg-project/opkg/depexpr"
	"github.com/opkg-project/opkg/index"
	"github.com/opkg-project/opkg/version"
)

// Params bundles the solver's tracing knobs in the teacher's SolveParameters
// style: Trace is false by default, and a TraceLogger is only consulted
// when it's true.
type Params struct {
	Trace       bool
	TraceLogger *log.Logger
}

// workItem is one compound dependency still to satisfy, tagged with the
// package that introduced it so failures can report a blocking chain.
type workItem struct {
	depender string
	cd       depexpr.CompoundDepend
}

type solveState struct {
	world  *World
	policy Policy
	params Params

	// tentative maps an abstract/concrete name to the package accepted
	// for it in this tentative solution.
	tentative        map[string]*index.Package
	scheduledRemoval map[string]bool
	order            []string // names in the order their candidate was accepted
	queue            []workItem
	chain            BlockingChain
}

// Solve computes an ordered action plan satisfying goals against world,
// using policy to bias recommendation/pin behavior (spec §4.5).
func Solve(world *World, goals []Goal, policy Policy, params Params) (Plan, error) {
	s := &solveState{
		world:            world,
		policy:           policy,
		params:           params,
		tentative:        make(map[string]*index.Package),
		scheduledRemoval: make(map[string]bool),
	}

	for _, g := range goals {
		if err := s.seed(g); err != nil {
			return nil, err
		}
	}

	for len(s.queue) > 0 {
		item := s.queue[0]
		s.queue = s.queue[1:]
		if err := s.satisfy(item); err != nil {
			return nil, err
		}
	}

	return s.orderPlan(), nil
}

func (s *solveState) trace(format string, args ...interface{}) {
	if s.params.Trace && s.params.TraceLogger != nil {
		s.params.TraceLogger.Printf(format, args...)
	}
}

func (s *solveState) seed(g Goal) error {
	switch g.Kind {
	case GoalRemove:
		return s.seedRemove(g.Name)
	case GoalInstall, GoalUpgrade:
		return s.seedInstall(g)
	default:
		return nil
	}
}

func (s *solveState) seedRemove(name string) error {
	if s.world.Essential[name] && !s.policy.ForceRemovalOfEssential {
		return &EssentialRemovalError{Name: name}
	}
	s.scheduledRemoval[name] = true
	return nil
}

func (s *solveState) seedInstall(g Goal) error {
	names := g.Names
	if len(names) == 0 {
		names = []string{g.Name}
	}

	var possibilities []depexpr.Possibility
	for _, name := range names {
		poss := depexpr.Possibility{Name: name, Op: version.None}
		if g.Version != nil && len(names) == 1 {
			v, err := version.Parse(*g.Version)
			if err != nil {
				return errors.Wrapf(err, "solver: goal %s", name)
			}
			poss.Op = version.EQ
			poss.Ver = v
		}
		possibilities = append(possibilities, poss)
	}

	cd := depexpr.CompoundDepend{Kind: depexpr.Depend, Possibilities: possibilities}
	s.queue = append(s.queue, workItem{depender: "(goal)", cd: cd})
	return nil
}

// satisfy picks a candidate for one compound dependency: candidates from
// every possibility in the pipe are pooled and ranked together by
// (prefer flag, installed, highest version, highest arch priority) per spec
// §4.5 step 2, and the winner's own unmet Pre-Depends/Depends (and
// Recommends, if policy allows) are enqueued per step 3.
func (s *solveState) satisfy(item workItem) error {
	names := possibilityNames(item.cd)
	s.chain = append(s.chain, BlockingEdge{Depender: item.depender, Name: names})
	defer func() {
		if len(s.chain) > 0 {
			s.chain = s.chain[:len(s.chain)-1]
		}
	}()

	for _, poss := range item.cd.Possibilities {
		if already, ok := s.tentative[poss.Name]; ok && (poss.Op == version.None || poss.Satisfies(poss.Name, already.Version)) {
			return nil
		}
	}

	// Candidates are gathered across every possibility in the compound and
	// ranked together, so a `prefer`-flagged package later in the pipe can
	// still win over an earlier, unpreferred alternative (spec §4.5 step 2's
	// ranking tuple takes precedence over raw pipe order).
	var candidates []*index.Package
	for _, poss := range item.cd.Possibilities {
		if _, ok := s.tentative[poss.Name]; ok {
			continue
		}
		candidates = append(candidates, s.rankedCandidates(poss)...)
	}
	sort.SliceStable(candidates, func(i, j int) bool { return s.less(candidates[i], candidates[j]) })

	for _, cand := range candidates {
		if s.accept(cand, item) {
			return nil
		}
	}

	return &UnsatisfiableError{Name: names, Chain: append(BlockingChain{}, s.chain...)}
}

// rankedCandidates returns every provider of poss.Name satisfying its
// version constraint and architecture support, ranked by
// (prefer flag, installed, highest version, highest arch priority),
// most-preferred first. Held packages are filtered out unless they already
// satisfy the constraint (spec §4.5 step 2).
func (s *solveState) rankedCandidates(poss depexpr.Possibility) []*index.Package {
	ap := s.world.Index.Abstract(poss.Name)
	var cands []*index.Package
	for _, p := range ap.Providers {
		if p.ArchPriority <= 0 {
			continue
		}
		if poss.Op != version.None && !version.Satisfied(poss.Op, p.Version, poss.Ver) {
			continue
		}
		if s.world.isHeld(p.Name) && !s.world.isInstalled(p) {
			continue
		}
		cands = append(cands, p)
	}

	sort.SliceStable(cands, func(i, j int) bool { return s.less(cands[i], cands[j]) })
	return cands
}

// less orders candidates most-preferred-first by
// (prefer flag, installed, highest version, highest arch priority), spec
// §4.5 step 2's ranking tuple.
func (s *solveState) less(a, b *index.Package) bool {
	if pa, pb := s.preferScore(a), s.preferScore(b); pa != pb {
		return pa > pb
	}
	if ia, ib := s.world.isInstalled(a), s.world.isInstalled(b); ia != ib {
		return ia
	}
	if c := version.Compare(a.Version, b.Version); c != 0 {
		return c > 0
	}
	return a.ArchPriority > b.ArchPriority
}

func (s *solveState) preferScore(p *index.Package) int {
	score := 0
	if p.StateFlag&index.FlagPrefer != 0 {
		score++
	}
	if pin, ok := s.policy.PinPriority[p.Name]; ok {
		score += pin
	}
	return score
}

// accept tries to tentatively schedule cand for item's dependency. It
// returns false (without mutating solver state) if cand conflicts with an
// installed-and-not-removed package per spec §4.5 steps 4-5.
func (s *solveState) accept(cand *index.Package, item workItem) bool {
	var displaced []string
	for _, conflict := range conflictRelations(cand) {
		for _, poss := range conflict.Possibilities {
			inst, ok := s.world.Installed[poss.Name]
			if !ok || s.scheduledRemoval[poss.Name] {
				continue
			}
			if !poss.Satisfies(poss.Name, inst.Version) {
				continue
			}
			if replaces(cand, poss.Name) {
				displaced = append(displaced, inst.Name)
				continue
			}
			return false
		}
	}
	for _, name := range displaced {
		s.scheduledRemoval[name] = true
	}

	s.tentative[cand.Name] = cand
	// Also register cand under every possibility name in item.cd that it
	// actually satisfies (its own name, or a Provides it carries), so a
	// later work item referencing the same abstract/virtual name through a
	// different possibility's constraints short-circuits onto this same
	// candidate instead of accepting a second provider (spec §4.5 step 2:
	// exactly one provider per abstract dependency).
	for _, poss := range item.cd.Possibilities {
		if poss.Name == cand.Name {
			continue
		}
		if providesName(cand, poss.Name) && (poss.Op == version.None || poss.Satisfies(poss.Name, cand.Version)) {
			s.tentative[poss.Name] = cand
		}
	}
	s.order = append(s.order, cand.Name)
	s.trace("accepted %s %s for %s", cand.Name, cand.Version, item.depender)

	for _, cd := range cand.Depends {
		switch cd.Kind {
		case depexpr.PreDepend, depexpr.Depend:
			s.queue = append(s.queue, workItem{depender: cand.Name, cd: cd})
		case depexpr.Recommend:
			if s.policy.AddRecommends {
				s.queue = append(s.queue, workItem{depender: cand.Name, cd: cd})
			}
		}
	}
	return true
}

func providesName(pkg *index.Package, name string) bool {
	for _, p := range pkg.Provides {
		if p == name {
			return true
		}
	}
	return false
}

func conflictRelations(pkg *index.Package) []depexpr.CompoundDepend {
	var out []depexpr.CompoundDepend
	for _, cd := range pkg.Depends {
		if cd.Kind == depexpr.Conflict {
			out = append(out, cd)
		}
	}
	return out
}

func replaces(pkg *index.Package, name string) bool {
	for _, cd := range pkg.Depends {
		if cd.Kind != depexpr.Replace {
			continue
		}
		for _, poss := range cd.Possibilities {
			if poss.Name == name {
				return true
			}
		}
	}
	return false
}

func possibilityNames(cd depexpr.CompoundDepend) string {
	names := cd.Names()
	out := names[0]
	for _, n := range names[1:] {
		out += " | " + n
	}
	return out
}
