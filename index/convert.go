package index

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/opkg-project/opkg/control"
	"github.com/opkg-project/opkg/depexpr"
	"github.com/opkg-project/opkg/version"
)

// relationFields maps a control field name to the depexpr.Kind it encodes,
// in the order spec §6 lists them.
var relationFields = []struct {
	field string
	kind  depexpr.Kind
}{
	{"Pre-Depends", depexpr.PreDepend},
	{"Depends", depexpr.Depend},
	{"Recommends", depexpr.Recommend},
	{"Suggests", depexpr.Suggest},
	{"Conflicts", depexpr.Conflict},
	{"Replaces", depexpr.Replace},
}

// recognisedFields is the field set spec §6 enumerates; anything else in a
// Record is preserved as a UserField when keepUserFields is set (spec §4.2
// addendum).
var recognisedFields = map[string]bool{
	"Package": true, "Version": true, "Depends": true, "Recommends": true,
	"Suggests": true, "Pre-Depends": true, "Conflicts": true, "Replaces": true,
	"Provides": true, "Status": true, "Section": true, "Essential": true,
	"Architecture": true, "Maintainer": true, "MD5sum": true, "SHA256sum": true,
	"Size": true, "Installed-Size": true, "Installed-Time": true, "Filename": true,
	"Conffiles": true, "Source": true, "Description": true, "Tags": true,
	"Priority": true, "Auto-Installed": true,
}

// FromRecord converts one parsed control.Record into a concrete Package.
// Dependency fields are parsed into depexpr.CompoundDepends but not yet
// resolved against the index (that's ResolveDependencies' job, run lazily
// per spec §4.4). keepUserFields preserves unrecognised fields verbatim,
// matching "--verbose status" per spec §4.2.
func FromRecord(rec control.Record, keepUserFields bool) (*Package, error) {
	name := rec.Get("Package")
	if name == "" {
		return nil, errors.New("index: control record has no Package field")
	}
	ver, err := version.Parse(rec.Get("Version"))
	if err != nil {
		return nil, errors.Wrapf(err, "index: package %s", name)
	}

	pkg := &Package{
		Name:          name,
		Version:       ver,
		Architecture:  rec.Get("Architecture"),
		Maintainer:    rec.Get("Maintainer"),
		Section:       rec.Get("Section"),
		Description:   rec.Get("Description"),
		Priority:      rec.Get("Priority"),
		MD5Sum:        rec.Get("MD5sum"),
		SHA256Sum:     rec.Get("SHA256sum"),
		Source:        rec.Get("Source"),
		Filename:      rec.Get("Filename"),
		AutoInstalled: rec.Get("Auto-Installed") == "yes",
	}

	if sz := rec.Get("Size"); sz != "" {
		n, err := strconv.ParseInt(sz, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "index: package %s Size", name)
		}
		pkg.DownloadSize = n
	}
	if sz := rec.Get("Installed-Size"); sz != "" {
		n, err := strconv.ParseInt(sz, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "index: package %s Installed-Size", name)
		}
		pkg.InstalledSize = n
	}
	if t := rec.Get("Installed-Time"); t != "" {
		n, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "index: package %s Installed-Time", name)
		}
		pkg.InstalledTime = n
	}
	if tags := rec.Get("Tags"); tags != "" {
		for _, t := range strings.Split(tags, ",") {
			pkg.Tags = append(pkg.Tags, strings.TrimSpace(t))
		}
	}

	for _, rf := range relationFields {
		cds, err := depexpr.ParseField(rf.kind, rec.Get(rf.field))
		if err != nil {
			return nil, errors.Wrapf(err, "index: package %s", name)
		}
		pkg.Depends = append(pkg.Depends, cds...)
	}

	if provides := rec.Get("Provides"); provides != "" {
		for _, p := range strings.Split(provides, ",") {
			if p = strings.TrimSpace(p); p != "" {
				pkg.Provides = append(pkg.Provides, p)
			}
		}
	}

	if cf := rec.Get("Conffiles"); cf != "" {
		for _, line := range strings.Split(cf, "\n") {
			fields := strings.Fields(line)
			if len(fields) == 0 {
				continue
			}
			c := Conffile{Path: fields[0]}
			if len(fields) > 1 {
				c.MD5 = fields[1]
			}
			pkg.Conffiles = append(pkg.Conffiles, c)
		}
	}

	if keepUserFields {
		for _, field := range rec.Order {
			if recognisedFields[field] {
				continue
			}
			if pkg.UserFields == nil {
				pkg.UserFields = make(map[string]string)
			}
			pkg.UserFields[field] = rec.Get(field)
		}
	}

	return pkg, nil
}
