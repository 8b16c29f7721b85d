package control_test

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opkg-project/opkg/control"
)

func TestDecoderSingleRecord(t *testing.T) {
	src := "Package: libfoo\nVersion: 1.0-1\nDepends: libc6 (>= 2.17)\n"
	d := control.NewDecoder(strings.NewReader(src))

	rec, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, "libfoo", rec.Get("Package"))
	assert.Equal(t, "1.0-1", rec.Get("Version"))
	assert.Equal(t, []string{"Package", "Version", "Depends"}, rec.Order)

	_, err = d.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecoderMultipleBlocks(t *testing.T) {
	src := "Package: a\nVersion: 1\n\nPackage: b\nVersion: 2\n"
	recs, errs := control.ParseAll(strings.NewReader(src))
	require.Empty(t, errs)
	require.Len(t, recs, 2)
	assert.Equal(t, "a", recs[0].Get("Package"))
	assert.Equal(t, "b", recs[1].Get("Package"))
}

func TestDecoderContinuationLineFolded(t *testing.T) {
	src := "Package: a\nDepends: libc6,\n libfoo\n"
	d := control.NewDecoder(strings.NewReader(src))
	rec, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, "libc6,\nlibfoo", rec.Get("Depends"))
}

func TestDecoderDescriptionPreservesIndentation(t *testing.T) {
	src := "Package: a\nDescription: short summary\n A longer paragraph.\n .\n Another paragraph, indented.\n"
	d := control.NewDecoder(strings.NewReader(src))
	rec, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t,
		"short summary\nA longer paragraph.\n\nAnother paragraph, indented.",
		rec.Get("Description"))
}

func TestDecoderDuplicateFieldIsMalformed(t *testing.T) {
	src := "Package: a\nPackage: b\n\nPackage: c\nVersion: 1\n"
	recs, errs := control.ParseAll(strings.NewReader(src))
	require.Len(t, errs, 1)

	var perr *control.ParseError
	require.ErrorAs(t, errs[0], &perr)

	require.Len(t, recs, 1)
	assert.Equal(t, "c", recs[0].Get("Package"))
}

func TestDecoderResyncsAfterMalformedBlock(t *testing.T) {
	src := "Package: a\nPackage: a-dup\nStray: trailing line\n\nPackage: b\nVersion: 2\n"
	recs, errs := control.ParseAll(strings.NewReader(src))
	require.Len(t, errs, 1)
	require.Len(t, recs, 1)
	assert.Equal(t, "b", recs[0].Get("Package"))
	assert.Equal(t, "2", recs[0].Get("Version"))
}

func TestDecoderContinuationBeforeAnyFieldIsMalformed(t *testing.T) {
	src := " stray continuation\nPackage: a\n"
	_, errs := control.ParseAll(strings.NewReader(src))
	require.Len(t, errs, 1)
}

func TestDecoderEmptyStreamYieldsNoRecords(t *testing.T) {
	recs, errs := control.ParseAll(strings.NewReader(""))
	assert.Empty(t, recs)
	assert.Empty(t, errs)
}
