package control

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Decoder reads successive Records from a control stream.
type Decoder struct {
	r    *bufio.Reader
	line int
}

// NewDecoder wraps r for sequential Record reads.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// ParseError carries the source line at which a malformed record was
// detected, so callers can report filename:line (spec §7).
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("control: line %d: %s", e.Line, e.Msg)
}

// descriptionLikeFields keep continuation-line leading whitespace verbatim;
// every other field has it stripped. Description is the canonical example
// (its second and further lines carry meaningful indentation), matching
// spec §4.2.
var descriptionLikeFields = map[string]bool{
	"Description": true,
}

// Next reads and returns the next Record, or io.EOF when the stream is
// exhausted. A malformed record (duplicate field, garbage line) is
// reported as a *ParseError; the decoder's position afterward is
// undefined for that record, so callers that want to skip-and-continue
// should treat a *ParseError as terminal for this Record and move on to
// re-synchronize at the next blank line, which Next already does once an
// error triggers an internal resync.
func (d *Decoder) Next() (*Record, error) {
	rec, err := d.next()
	if err != nil && err != io.EOF {
		d.resync()
	}
	return rec, err
}

func (d *Decoder) next() (*Record, error) {
	rec := newRecord()
	var lastField string
	seen := map[string]bool{}
	sawAny := false

	for {
		d.line++
		line, err := d.r.ReadString('\n')
		atEOF := err == io.EOF

		trimmedLine := strings.TrimRight(line, "\r\n")

		if trimmedLine == "" {
			if !sawAny {
				if atEOF {
					return nil, io.EOF
				}
				continue
			}
			return rec, nil
		}

		if trimmedLine[0] == ' ' || trimmedLine[0] == '\t' {
			if lastField == "" {
				return nil, &ParseError{Line: d.line, Msg: "continuation line before any field"}
			}
			cont := trimmedLine[1:]
			if !descriptionLikeFields[lastField] {
				cont = strings.TrimSpace(cont)
			}
			if cont == "." {
				cont = ""
			}
			rec.Fields[lastField] += "\n" + cont
		} else {
			colon := strings.IndexByte(trimmedLine, ':')
			if colon < 0 {
				return nil, &ParseError{Line: d.line, Msg: fmt.Sprintf("malformed line %q", trimmedLine)}
			}
			field := strings.TrimSpace(trimmedLine[:colon])
			value := strings.TrimSpace(trimmedLine[colon+1:])

			if seen[field] {
				return nil, &ParseError{Line: d.line, Msg: fmt.Sprintf("duplicate field %q", field)}
			}
			seen[field] = true
			rec.set(field, value)
			lastField = field
			sawAny = true
		}

		if atEOF {
			if sawAny {
				return rec, nil
			}
			return nil, io.EOF
		}
	}
}

// resync discards the remainder of a malformed block so the next call to
// Next starts cleanly at the following record.
func (d *Decoder) resync() {
	for {
		d.line++
		line, err := d.r.ReadString('\n')
		if strings.TrimRight(line, "\r\n") == "" {
			return
		}
		if err == io.EOF {
			return
		}
	}
}

// ParseAll decodes every record in r. A malformed record does not abort
// the whole stream (spec §7): it is skipped, and its error is collected
// and returned alongside whatever valid records were parsed.
func ParseAll(r io.Reader) ([]Record, []error) {
	d := NewDecoder(r)
	var recs []Record
	var errs []error

	for {
		rec, err := d.Next()
		if err == io.EOF {
			return recs, errs
		}
		if err != nil {
			errs = append(errs, errors.WithStack(err))
			continue
		}
		recs = append(recs, *rec)
	}
}
