// Package version implements Debian-style package version parsing and
// comparison: epoch:upstream-revision triples compared with the canonical
// verrevcmp algorithm.
package version

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// Version is a parsed epoch:upstream-revision triple.
//
// The upstream and revision fields are stored separately; unlike the
// original C implementation they never alias the same backing storage.
type Version struct {
	Epoch    uint
	Upstream string
	Revision string
}

// Zero reports whether v is the unparsed zero value.
func (v Version) Zero() bool {
	return v.Epoch == 0 && v.Upstream == "" && v.Revision == ""
}

// String renders v back into epoch:upstream-revision form, omitting the
// epoch when it is zero and the revision when it is empty.
func (v Version) String() string {
	var b strings.Builder
	if v.Epoch > 0 {
		b.WriteString(strconv.FormatUint(uint64(v.Epoch), 10))
		b.WriteByte(':')
	}
	b.WriteString(v.Upstream)
	if v.Revision != "" {
		b.WriteByte('-')
		b.WriteString(v.Revision)
	}
	return b.String()
}

// Parse splits s into epoch, upstream, and revision components.
//
// A missing epoch defaults to 0; a missing revision defaults to "". The
// upstream component must begin with a digit, matching dpkg's own
// requirement.
func Parse(s string) (Version, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Version{}, errors.New("version: empty version string")
	}
	if strings.IndexFunc(trimmed, unicode.IsSpace) != -1 {
		return Version{}, errors.Errorf("version: %q contains embedded whitespace", s)
	}

	var v Version
	rest := trimmed
	if i := strings.IndexByte(rest, ':'); i != -1 {
		epoch, err := strconv.ParseUint(rest[:i], 10, 32)
		if err != nil {
			return Version{}, errors.Wrapf(err, "version: invalid epoch in %q", s)
		}
		v.Epoch = uint(epoch)
		rest = rest[i+1:]
	}

	if rest == "" {
		return Version{}, errors.Errorf("version: nothing after epoch in %q", s)
	}
	if i := strings.LastIndexByte(rest, '-'); i != -1 {
		v.Upstream, v.Revision = rest[:i], rest[i+1:]
	} else {
		v.Upstream = rest
	}

	if v.Upstream == "" || !unicode.IsDigit(rune(v.Upstream[0])) {
		return Version{}, errors.Errorf("version: upstream version %q does not start with a digit", v.Upstream)
	}
	if i := strings.IndexFunc(v.Upstream, invalidUpstreamRune); i != -1 {
		return Version{}, errors.Errorf("version: invalid character %q in upstream version %q", v.Upstream[i], v.Upstream)
	}
	if i := strings.IndexFunc(v.Revision, invalidRevisionRune); i != -1 {
		return Version{}, errors.Errorf("version: invalid character %q in revision %q", v.Revision[i], v.Revision)
	}

	return v, nil
}

// MustParse is like Parse but panics on error. It exists for tests and
// static tables.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

func invalidUpstreamRune(r rune) bool {
	return !isAlnum(r) && r != '.' && r != '-' && r != '+' && r != '~' && r != ':'
}

func invalidRevisionRune(r rune) bool {
	return !isAlnum(r) && r != '.' && r != '+' && r != '~'
}

func isAlnum(r rune) bool {
	return unicode.IsDigit(r) || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// Compare returns a negative number if a < b, zero if a == b, and a positive
// number if a > b. Comparison proceeds epoch, then upstream, then revision.
func Compare(a, b Version) int {
	if a.Epoch != b.Epoch {
		if a.Epoch < b.Epoch {
			return -1
		}
		return 1
	}
	if c := verrevcmp(a.Upstream, b.Upstream); c != 0 {
		return c
	}
	return verrevcmp(a.Revision, b.Revision)
}

// Less reports whether a sorts strictly before b.
func Less(a, b Version) bool { return Compare(a, b) < 0 }

// Equal reports whether a and b compare as identical versions.
func Equal(a, b Version) bool { return Compare(a, b) == 0 }

// verrevcmp implements the canonical Debian version-component comparison:
// alternating runs of non-digits (compared by order()) and digits (compared
// numerically, ignoring leading zeroes).
func verrevcmp(a, b string) int {
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		var firstDiff int

		for (i < len(a) && !isDigit(a[i])) || (j < len(b) && !isDigit(b[j])) {
			var ac, bc int
			if i < len(a) {
				ac = order(rune(a[i]))
			}
			if j < len(b) {
				bc = order(rune(b[j]))
			}
			if ac != bc {
				return ac - bc
			}
			if i < len(a) {
				i++
			}
			if j < len(b) {
				j++
			}
		}

		for i < len(a) && a[i] == '0' {
			i++
		}
		for j < len(b) && b[j] == '0' {
			j++
		}

		for i < len(a) && isDigit(a[i]) && j < len(b) && isDigit(b[j]) {
			if firstDiff == 0 {
				firstDiff = int(a[i]) - int(b[j])
			}
			i++
			j++
		}

		if i < len(a) && isDigit(a[i]) {
			return 1
		}
		if j < len(b) && isDigit(b[j]) {
			return -1
		}
		if firstDiff != 0 {
			return firstDiff
		}
	}
	return 0
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// order assigns the comparison weight used for non-digit runs: '~' sorts
// before end-of-string, end-of-string/digits sort before letters, and
// letters sort before everything else.
func order(r rune) int {
	switch {
	case r == '~':
		return -1
	case unicode.IsDigit(r):
		return 0
	case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		return int(r)
	case r == 0:
		return 0
	default:
		return int(r) + 256
	}
}
