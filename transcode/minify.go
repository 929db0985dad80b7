package transcode

import (
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/js"
)

// Minifier is the default TextMinifier.
type Minifier struct {
	m *minify.M
}

// NewMinifier returns a Minifier that handles every type in ScriptTypes and
// StyleTypes.
func NewMinifier() *Minifier {
	m := minify.New()
	for _, mt := range ScriptTypes {
		m.AddFunc(mt, js.Minify)
	}
	for _, mt := range StyleTypes {
		m.AddFunc(mt, css.Minify)
	}
	return &Minifier{m}
}

// Minify minifies data. It fails with minify.ErrNotExist for media types it
// does not handle.
func (mf *Minifier) Minify(mediaType string, data []byte) ([]byte, error) {
	return mf.m.Bytes(baseType(mediaType), data)
}
