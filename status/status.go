// Package status reads and writes the Debian-compatible status file: one
// RFC-822 block per installed/known package, blank-line separated, with a
// `Status: <want> <flag[,flag…]> <status>` line encoding the state triple
// (spec §6).
package status

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/opkg-project/opkg/control"
	"github.com/opkg-project/opkg/index"
)

// ParseLine decodes a `Status:` field value into its three components.
func ParseLine(s string) (index.StateWant, index.StateFlag, index.StateStatus, error) {
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return 0, 0, 0, errors.Errorf("status: malformed Status line %q", s)
	}

	want, err := parseWant(fields[0])
	if err != nil {
		return 0, 0, 0, err
	}
	flag, err := parseFlags(fields[1])
	if err != nil {
		return 0, 0, 0, err
	}
	st, err := parseStatus(fields[2])
	if err != nil {
		return 0, 0, 0, err
	}
	return want, flag, st, nil
}

// FormatLine renders the state triple back into `<want> <flag[,flag…]>
// <status>`, emitting "ok" when the non-volatile flag set is empty (spec
// §6).
func FormatLine(want index.StateWant, flag index.StateFlag, st index.StateStatus) string {
	return fmt.Sprintf("%s %s %s", want, strings.Join(flag.Names(), ","), st)
}

var wantNames = map[string]index.StateWant{
	"unknown": index.WantUnknown, "install": index.WantInstall,
	"deinstall": index.WantDeinstall, "purge": index.WantPurge,
}

func parseWant(s string) (index.StateWant, error) {
	w, ok := wantNames[s]
	if !ok {
		return 0, errors.Errorf("status: unknown want %q", s)
	}
	return w, nil
}

var flagBits = map[string]index.StateFlag{
	"ok": 0, "reinstreq": index.FlagReinstreq, "hold": index.FlagHold,
	"replace": index.FlagReplace, "noprune": index.FlagNoprune,
	"prefer": index.FlagPrefer, "obsolete": index.FlagObsolete,
	"user": index.FlagUser, "filelist-changed": index.FlagFilelistChanged,
}

func parseFlags(s string) (index.StateFlag, error) {
	var flag index.StateFlag
	for _, name := range strings.Split(s, ",") {
		bit, ok := flagBits[name]
		if !ok {
			return 0, errors.Errorf("status: unknown flag %q", name)
		}
		flag |= bit
	}
	return flag, nil
}

var statusNames = map[string]index.StateStatus{
	"not-installed": index.StatusNotInstalled, "unpacked": index.StatusUnpacked,
	"half-configured": index.StatusHalfConfigured, "installed": index.StatusInstalled,
	"half-installed": index.StatusHalfInstalled, "config-files": index.StatusConfigFiles,
	"post-inst-failed": index.StatusPostInstFailed, "removal-failed": index.StatusRemovalFailed,
}

func parseStatus(s string) (index.StateStatus, error) {
	st, ok := statusNames[s]
	if !ok {
		return 0, errors.Errorf("status: unknown status %q", s)
	}
	return st, nil
}

// ReadAll decodes every package block in r, applying each block's `Status:`
// line to the resulting index.Package. Malformed blocks are skipped and
// collected, matching control.ParseAll's skip-and-continue behavior (spec
// §7).
func ReadAll(r io.Reader) ([]*index.Package, []error) {
	recs, errs := control.ParseAll(r)
	pkgs := make([]*index.Package, 0, len(recs))
	for _, rec := range recs {
		pkg, err := index.FromRecord(rec, true)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if line := rec.Get("Status"); line != "" {
			want, flag, st, err := ParseLine(line)
			if err != nil {
				errs = append(errs, errors.Wrapf(err, "status: package %s", pkg.Name))
				continue
			}
			pkg.StateWant, pkg.StateFlag, pkg.StateStatus = want, flag, st
		}
		pkgs = append(pkgs, pkg)
	}
	return pkgs, errs
}

// Render serializes pkgs into the status-file wire format, one block per
// package, each terminated by a blank line, in the order given.
func Render(pkgs []*index.Package) []byte {
	var buf bytes.Buffer
	for _, pkg := range pkgs {
		writeField(&buf, "Package", pkg.Name)
		writeField(&buf, "Status", FormatLine(pkg.StateWant, pkg.StateFlag, pkg.StateStatus))
		writeField(&buf, "Version", pkg.Version.String())
		writeField(&buf, "Architecture", pkg.Architecture)
		writeField(&buf, "Maintainer", pkg.Maintainer)
		writeField(&buf, "Section", pkg.Section)
		writeField(&buf, "Priority", pkg.Priority)
		writeField(&buf, "Source", pkg.Source)
		if pkg.InstalledSize > 0 {
			writeField(&buf, "Installed-Size", strconv.FormatInt(pkg.InstalledSize, 10))
		}
		if pkg.AutoInstalled {
			writeField(&buf, "Auto-Installed", "yes")
		}
		writeDescription(&buf, pkg.Description)
		writeConffiles(&buf, pkg.Conffiles)
		for field, value := range pkg.UserFields {
			writeField(&buf, field, value)
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func writeField(buf *bytes.Buffer, name, value string) {
	if value == "" {
		return
	}
	buf.WriteString(name)
	buf.WriteString(": ")
	buf.WriteString(value)
	buf.WriteByte('\n')
}

// writeConffiles emits one continuation line per conffile, matching the
// Debian Conffiles: convention (field value empty, entries indented below
// it) so control.Decoder's continuation-stripping round-trips them back
// into index.FromRecord unchanged.
func writeConffiles(buf *bytes.Buffer, conffiles []index.Conffile) {
	if len(conffiles) == 0 {
		return
	}
	buf.WriteString("Conffiles:\n")
	for _, c := range conffiles {
		buf.WriteByte(' ')
		buf.WriteString(c.Path)
		if c.MD5 != "" {
			buf.WriteByte(' ')
			buf.WriteString(c.MD5)
		}
		buf.WriteByte('\n')
	}
}

func writeDescription(buf *bytes.Buffer, desc string) {
	if desc == "" {
		return
	}
	lines := strings.Split(desc, "\n")
	buf.WriteString("Description: ")
	buf.WriteString(lines[0])
	buf.WriteByte('\n')
	for _, line := range lines[1:] {
		if line == "" {
			buf.WriteString(" .\n")
			continue
		}
		buf.WriteByte(' ')
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
}
