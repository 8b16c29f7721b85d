package depexpr

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/opkg-project/opkg/version"
)

// ParseField parses a whole Depends:-style field value (comma-separated
// compound terms) into CompoundDepends tagged with kind.
//
// compound := possibility ( '|' possibility )*
// possibility := NAME ( '(' OP VERSION ')' )?
func ParseField(kind Kind, field string) ([]CompoundDepend, error) {
	if strings.TrimSpace(field) == "" {
		return nil, nil
	}

	var out []CompoundDepend
	for _, raw := range strings.Split(field, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		cd, err := parseCompound(kind, raw)
		if err != nil {
			return nil, errors.Wrapf(err, "depexpr: parsing %s term %q", kind, raw)
		}
		out = append(out, cd)
	}
	return out, nil
}

func parseCompound(kind Kind, s string) (CompoundDepend, error) {
	cd := CompoundDepend{Kind: kind}
	for _, raw := range strings.Split(s, "|") {
		p, err := parsePossibility(strings.TrimSpace(raw))
		if err != nil {
			return CompoundDepend{}, err
		}
		cd.Possibilities = append(cd.Possibilities, p)
	}
	return cd, nil
}

func parsePossibility(s string) (Possibility, error) {
	r := bufio.NewReader(bytes.NewReader([]byte(s)))

	var name strings.Builder
	for {
		c, _, err := r.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Possibility{}, err
		}
		if c == '(' {
			break
		}
		if c == ' ' || c == '\t' {
			continue
		}
		name.WriteRune(c)
	}

	p := Possibility{Name: name.String()}
	if p.Name == "" {
		return Possibility{}, errors.Errorf("depexpr: empty package name in possibility %q", s)
	}

	rest, err := io.ReadAll(r)
	if err != nil {
		return Possibility{}, err
	}
	expr := strings.TrimSpace(string(rest))
	if expr == "" {
		return p, nil
	}
	expr = strings.TrimSuffix(expr, ")")

	op, vs, err := version.ParseOp(expr)
	if err != nil {
		return Possibility{}, errors.Wrapf(err, "depexpr: version constraint in %q", s)
	}
	v, err := version.Parse(strings.TrimSpace(vs))
	if err != nil {
		return Possibility{}, errors.Wrapf(err, "depexpr: version constraint in %q", s)
	}
	p.Op, p.Ver = op, v
	return p, nil
}
