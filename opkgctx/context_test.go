package opkgctx_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/opkg-project/opkg/destination"
	"github.com/opkg-project/opkg/opkgctx"
)

func TestNewHasEmptyRegistryAndStderrLog(t *testing.T) {
	ctx := opkgctx.New()
	assert.Empty(t, ctx.Registry.All())
	assert.NotNil(t, ctx.Log)
}

func TestWithLogWriterRedirectsWithoutMutatingOriginal(t *testing.T) {
	ctx := opkgctx.New()
	var buf bytes.Buffer
	redirected := ctx.WithLogWriter(&buf)

	redirected.Log.Logln("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.NotSame(t, ctx.Log, redirected.Log, "the original context keeps its own logger")

	redirected.Registry.Add(destination.Destination{Name: "root"})
	assert.NotEmpty(t, ctx.Registry.All(), "registry is shared by pointer across a shallow copy")
}
