package unpack_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-mhtml/unpack"
)

const twinImages = `Content-Type: multipart/related; boundary=B

--B
Content-Type: text/html
Content-Location: https://example.com/

<img src="a.jpg"><img src="b.jpg"><a href="more.html#part-2">more</a>
--B
Content-Type: image/jpeg
Content-Location: https://example.com/a.jpg
Content-Transfer-Encoding: base64

SlBFR0RBVEE=
--B
Content-Type: image/jpeg
Content-Location: https://example.com/b.jpg

JPEGDATA
--B
Content-Type: text/html
Content-Location: https://example.com/more.html

<h1 id="part-2">More</h1>
--B--
`

func dirRenderer(t *testing.T, src string) (*unpack.Renderer, string) {
	t.Helper()

	dir := t.TempDir()
	idx := unpack.NewIndex(parse(t, src))
	return unpack.NewRenderer(idx, &unpack.Directory{Dir: dir}, unpack.WithLogger(quiet)), dir
}

func TestDirectory_Embed(t *testing.T) {
	t.Parallel()

	msg := parse(t, twinImages)
	r, dir := dirRenderer(t, twinImages)

	res, err := r.RenderRoot(msg.GetParts()[0])
	require.NoError(t, err)

	blob := "blob=" + unpack.Digest([]byte("JPEGDATA")) + ".jpg"
	more := "blob=" + unpack.Digest([]byte(`<h1 id="part-2">More</h1>`)) + ".html"

	doc := string(res.Data)
	assert.Contains(t, doc, `<img src="`+blob+`"/><img src="`+blob+`"/>`)
	assert.Contains(t, doc, `<a href="`+more+`#part-2">`)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	assert.ElementsMatch(t, []string{blob, more}, names)

	b, err := os.ReadFile(filepath.Join(dir, blob))
	require.NoError(t, err)
	assert.Equal(t, "JPEGDATA", string(b))

	b, err = os.ReadFile(filepath.Join(dir, more))
	require.NoError(t, err)
	assert.Contains(t, string(b), `<h1 id="part-2">More</h1>`)
}

func TestDirectory_Embed_Existing(t *testing.T) {
	t.Parallel()

	msg := parse(t, twinImages)
	r, dir := dirRenderer(t, twinImages)

	blob := "blob=" + unpack.Digest([]byte("JPEGDATA")) + ".jpg"
	require.NoError(t, os.WriteFile(filepath.Join(dir, blob), []byte("cached"), 0o644))

	res, err := r.RenderRoot(msg.GetParts()[0])
	require.NoError(t, err)
	assert.Contains(t, string(res.Data), `<img src="`+blob+`"/>`)

	b, err := os.ReadFile(filepath.Join(dir, blob))
	require.NoError(t, err)
	assert.Equal(t, "cached", string(b))
}

func TestDirectory_Embed_Cycle(t *testing.T) {
	t.Parallel()

	msg := parse(t, cycle)
	r, dir := dirRenderer(t, cycle)

	res, err := r.RenderRoot(msg.GetParts()[0])
	require.NoError(t, err)

	b := "blob=" + unpack.Digest([]byte(`<p><a href="a.html">to a</a></p>`)) + ".html"
	assert.Contains(t, string(res.Data), `<a href="`+b+`">to b</a>`)

	out, err := os.ReadFile(filepath.Join(dir, b))
	require.NoError(t, err)
	assert.Contains(t, string(out), `<a href="a.html">to a</a>`)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDirectory_Embed_NoDir(t *testing.T) {
	t.Parallel()

	msg := parse(t, page)
	idx := unpack.NewIndex(msg)
	dir := filepath.Join(t.TempDir(), "missing")
	r := unpack.NewRenderer(idx, &unpack.Directory{Dir: dir}, unpack.WithLogger(quiet))

	_, err := r.RenderRoot(msg.GetParts()[0])
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestInline_Embed_Seen(t *testing.T) {
	t.Parallel()

	msg := parse(t, page)
	r, _ := inlineRenderer(t, page)

	d := r.Describe(msg.GetParts()[1], "")

	ref, ok, err := unpack.Inline{}.Embed(r, d, (*unpack.Seen)(nil).With(d.Digest))
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "", ref)

	ref, ok, err = unpack.Inline{}.Embed(r, d, nil)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "data:image/jpeg;base64,SlBFR0RBVEE=", ref)
}
