package index

import (
	"github.com/opkg-project/opkg/depexpr"
	"github.com/opkg-project/opkg/version"
)

func compareVersions(a, b version.Version) int { return version.Compare(a, b) }

// Merge implements the asymmetric merge contract of spec §4.3: for each
// scalar field, keep existing if non-empty else take new; for dependency
// arrays, keep existing if it already has any pre-depends/depends/
// recommends/suggests (Conflicts and Replaces don't count towards that
// check, per spec's depends_count+pre_depends_count+recommends_count+
// suggests_count sum); for Provides, keep existing if it has more than the
// trivial self-entry; Conffiles and UserFields keep existing if non-empty.
// Package carries no installed-files list, so Merge has no installed-files
// state to move.
//
// The rule is intentionally asymmetric and must be preserved exactly: spec
// §9 calls out that info_fields and the update/autoinstall regression tests
// depend on the documented winner, not a symmetric field-by-field merge.
func Merge(existing, incoming *Package) *Package {
	out := *existing

	out.Architecture = firstNonEmpty(existing.Architecture, incoming.Architecture)
	out.Maintainer = firstNonEmpty(existing.Maintainer, incoming.Maintainer)
	out.Section = firstNonEmpty(existing.Section, incoming.Section)
	out.Description = firstNonEmpty(existing.Description, incoming.Description)
	out.Priority = firstNonEmpty(existing.Priority, incoming.Priority)
	out.MD5Sum = firstNonEmpty(existing.MD5Sum, incoming.MD5Sum)
	out.SHA256Sum = firstNonEmpty(existing.SHA256Sum, incoming.SHA256Sum)
	out.Source = firstNonEmpty(existing.Source, incoming.Source)
	out.Filename = firstNonEmpty(existing.Filename, incoming.Filename)

	if existing.InstalledSize == 0 {
		out.InstalledSize = incoming.InstalledSize
	}
	if existing.DownloadSize == 0 {
		out.DownloadSize = incoming.DownloadSize
	}
	if existing.InstalledTime == 0 {
		out.InstalledTime = incoming.InstalledTime
	}
	if len(existing.Tags) == 0 {
		out.Tags = incoming.Tags
	}

	if countedRelations(existing.Depends) == 0 {
		out.Depends = incoming.Depends
	}

	if !hasRealProvider(existing.Provides) {
		out.Provides = incoming.Provides
	}

	if len(existing.Conffiles) == 0 {
		out.Conffiles = incoming.Conffiles
	}
	if len(existing.UserFields) == 0 {
		out.UserFields = incoming.UserFields
	}

	return &out
}

func firstNonEmpty(existing, incoming string) string {
	if existing != "" {
		return existing
	}
	return incoming
}

func hasRealProvider(provides []string) bool { return len(provides) > 0 }

// countedRelations counts only the PreDepend/Depend/Recommend/Suggest
// entries of depends, mirroring spec §4.3's literal
// depends_count+pre_depends_count+recommends_count+suggests_count sum.
// Conflict and Replace are deliberately excluded: since this repo collapses
// all six relation kinds into one Depends slice, counting them here would
// let a conflicts/replaces-only existing record block a newer record's real
// Depends from ever winning.
func countedRelations(depends []depexpr.CompoundDepend) int {
	n := 0
	for _, cd := range depends {
		switch cd.Kind {
		case depexpr.PreDepend, depexpr.Depend, depexpr.Recommend, depexpr.Suggest:
			n++
		}
	}
	return n
}
