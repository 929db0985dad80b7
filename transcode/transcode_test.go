package transcode_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"image/jpeg"
	"io"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-mhtml/transcode"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

const script = `
// add one
function addOne ( value ) {
    var result = value + 1;
    return result;
}
`

const style = `
body {
    margin : 0px ;
    color  : #ffffff ;
}
`

func noisyJPEG(t *testing.T, w, h int) []byte {
	t.Helper()

	rnd := rand.New(rand.NewSource(1))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(rnd.Intn(256)), uint8(x), uint8(y), 255})
		}
	}

	buf := &bytes.Buffer{}
	require.NoError(t, jpeg.Encode(buf, img, &jpeg.Options{Quality: 100}))
	return buf.Bytes()
}

func TestRegistry_Compress_EmptyType(t *testing.T) {
	t.Parallel()

	r := transcode.New(transcode.WithLogger(quiet))
	data := []byte(script)
	out, mt, err := r.Compress(data, "")
	assert.NoError(t, err)
	assert.Equal(t, data, out)
	assert.Equal(t, "", mt)
}

func TestRegistry_Compress_Unregistered(t *testing.T) {
	t.Parallel()

	r := transcode.New(transcode.WithLogger(quiet))
	data := []byte("some words   with   space")
	out, mt, err := r.Compress(data, "text/plain; charset=utf-8")
	assert.NoError(t, err)
	assert.Equal(t, data, out)
	assert.Equal(t, "text/plain; charset=utf-8", mt)
}

func TestRegistry_Compress_Minify(t *testing.T) {
	t.Parallel()

	r := transcode.New(transcode.WithLogger(quiet))

	for _, mt := range transcode.ScriptTypes {
		out, outType, err := r.Compress([]byte(script), mt)
		assert.NoError(t, err)
		assert.Less(t, len(out), len(script))
		assert.Contains(t, string(out), "function addOne(")
		assert.Equal(t, mt, outType)
	}

	out, outType, err := r.Compress([]byte(style), "Text/CSS;charset=utf8")
	assert.NoError(t, err)
	assert.Less(t, len(out), len(style))
	assert.Contains(t, string(out), "margin:0")
	assert.Equal(t, "Text/CSS;charset=utf8", outType)
}

func TestRegistry_Compress_WithoutMinifier(t *testing.T) {
	t.Parallel()

	r := transcode.New(transcode.WithLogger(quiet), transcode.WithMinifier(nil))
	out, outType, err := r.Compress([]byte(style), "text/css")
	assert.NoError(t, err)
	assert.Equal(t, style, string(out))
	assert.Equal(t, "text/css", outType)
}

func TestRegistry_Compress_NeverGrows(t *testing.T) {
	t.Parallel()

	bigger := func(data []byte, _ string) ([]byte, string, error) {
		return append(append([]byte{}, data...), data...), "application/x-bigger", nil
	}
	same := func(data []byte, _ string) ([]byte, string, error) {
		return []byte("xxxx"), "application/x-same", nil
	}

	r := transcode.New(
		transcode.WithLogger(quiet),
		transcode.WithTranscoder("application/x-test", bigger),
		transcode.WithTranscoder("application/x-four", same),
	)

	out, mt, err := r.Compress([]byte("abc"), "application/x-test")
	assert.NoError(t, err)
	assert.Equal(t, "abc", string(out))
	assert.Equal(t, "application/x-test", mt)

	// equal length is not an improvement
	out, mt, err = r.Compress([]byte("abcd"), "application/x-four")
	assert.NoError(t, err)
	assert.Equal(t, "abcd", string(out))
	assert.Equal(t, "application/x-four", mt)
}

func TestRegistry_Compress_Error(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	r := transcode.New(
		transcode.WithLogger(quiet),
		transcode.WithTranscoder("image/png", func([]byte, string) ([]byte, string, error) {
			return nil, "", boom
		}),
	)

	out, mt, err := r.Compress([]byte("not really a png"), "image/png")
	assert.Nil(t, out)
	assert.Equal(t, "", mt)

	var terr *transcode.Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "image/png", terr.MediaType)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "image/png")
}

func TestRegistry_Compress_Image(t *testing.T) {
	t.Parallel()

	r := transcode.New(transcode.WithLogger(quiet))
	data := noisyJPEG(t, 1200, 600)

	out, mt, err := r.Compress(data, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mt)
	assert.Less(t, len(out), len(data))

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 1024, cfg.Width)
	assert.Equal(t, 512, cfg.Height)
}

func TestImageShrinker_Transcode_Paletted(t *testing.T) {
	t.Parallel()

	img := image.NewPaletted(image.Rect(0, 0, 40, 20), palette.Plan9)
	for x := 0; x < 40; x++ {
		img.SetColorIndex(x, x%20, uint8(x))
	}

	buf := &bytes.Buffer{}
	require.NoError(t, gif.Encode(buf, img, nil))

	s := &transcode.ImageShrinker{MaxDimension: 16, Quality: 30}
	out, mt, err := s.Transcode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "image/png", mt)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 16, cfg.Width)
	assert.Equal(t, 8, cfg.Height)
}

func TestImageShrinker_Transcode_NotAnImage(t *testing.T) {
	t.Parallel()

	s := &transcode.ImageShrinker{MaxDimension: 16, Quality: 30}
	data := []byte("GIF89a but not really")
	out, mt, err := s.Transcode(data)
	assert.NoError(t, err)
	assert.Equal(t, data, out)
	assert.Equal(t, "", mt)
}

func TestImageShrinker_Size(t *testing.T) {
	t.Parallel()

	s := &transcode.ImageShrinker{MaxDimension: 1024}

	tests := []struct {
		w, h         int
		wantW, wantH int
	}{
		{800, 600, 800, 600},
		{3000, 1500, 1024, 512},
		{1500, 3000, 512, 1024},
		{2048, 2048, 1024, 1024},
		{5000, 1, 1024, 1},
		{1, 5000, 1, 1024},
	}

	for _, tt := range tests {
		w, h := s.Size(tt.w, tt.h)
		assert.Equal(t, tt.wantW, w, "%dx%d", tt.w, tt.h)
		assert.Equal(t, tt.wantH, h, "%dx%d", tt.w, tt.h)
	}

	unlimited := &transcode.ImageShrinker{}
	w, h := unlimited.Size(5000, 4000)
	assert.Equal(t, 5000, w)
	assert.Equal(t, 4000, h)
}
