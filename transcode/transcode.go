// Package transcode shrinks the payloads embedded in a converted archive.
// Scripts and stylesheets are minified and raster images are scaled down and
// recompressed. A result is only used when it comes out smaller than what
// went in.
package transcode

import (
	"fmt"
	"log/slog"
	"strings"
)

// Default settings for the ImageShrinker used by New.
const (
	DefaultMaxDimension = 1024
	DefaultQuality      = 30
)

// These are the media types handled by the TextMinifier.
var (
	ScriptTypes = []string{"text/javascript", "application/javascript", "application/x-javascript"}
	StyleTypes  = []string{"text/css", "application/css"}
)

// ImageTypes are the media types handled by the ImageTranscoder.
var ImageTypes = []string{"image/jpeg", "image/png", "image/gif"}

// TextMinifier shrinks textual content of the given media type.
type TextMinifier interface {
	Minify(mediaType string, data []byte) ([]byte, error)
}

// ImageTranscoder recodes an image. It returns the new bytes and the media
// type of the new bytes. An empty media type means the type is unchanged.
type ImageTranscoder interface {
	Transcode(data []byte) ([]byte, string, error)
}

// Transcoder is the form every registered capability takes inside the
// Registry.
type Transcoder func(data []byte, mediaType string) ([]byte, string, error)

// Error is returned by Compress when a transcoder fails.
type Error struct {
	MediaType string // the type being transcoded
	Err       error  // the cause
}

// Error returns the error message.
func (err *Error) Error() string {
	return fmt.Sprintf("unable to transcode %s: %v", err.MediaType, err.Err)
}

// Unwrap returns the cause.
func (err *Error) Unwrap() error {
	return err.Err
}

// Registry maps base media types to transcoders. It holds no state that
// changes after construction, so one Registry may serve any number of
// concurrent conversions.
type Registry struct {
	transcoders map[string]Transcoder
	logger      *slog.Logger
}

type config struct {
	minifier TextMinifier
	images   ImageTranscoder
	logger   *slog.Logger
	extra    map[string]Transcoder
}

// Option modifies the Registry built by New.
type Option func(c *config)

// WithMinifier replaces the default TextMinifier. Passing nil leaves scripts
// and stylesheets untouched.
func WithMinifier(m TextMinifier) Option {
	return func(c *config) { c.minifier = m }
}

// WithImageTranscoder replaces the default ImageTranscoder. Passing nil
// leaves images untouched.
func WithImageTranscoder(t ImageTranscoder) Option {
	return func(c *config) { c.images = t }
}

// WithTranscoder registers a transcoder for the given base media type,
// replacing any other transcoder for that type.
func WithTranscoder(mediaType string, t Transcoder) Option {
	return func(c *config) {
		if c.extra == nil {
			c.extra = make(map[string]Transcoder, 1)
		}
		c.extra[strings.ToLower(mediaType)] = t
	}
}

// WithLogger sets the logger used to report failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// New builds a Registry. Without options it minifies with NewMinifier and
// shrinks images with an ImageShrinker using DefaultMaxDimension and
// DefaultQuality.
func New(opts ...Option) *Registry {
	c := &config{
		minifier: NewMinifier(),
		images: &ImageShrinker{
			MaxDimension: DefaultMaxDimension,
			Quality:      DefaultQuality,
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	r := &Registry{
		transcoders: make(map[string]Transcoder, 8),
		logger:      c.logger,
	}

	if r.logger == nil {
		r.logger = slog.Default()
	}

	if c.minifier != nil {
		m := c.minifier
		minify := func(data []byte, mediaType string) ([]byte, string, error) {
			out, err := m.Minify(mediaType, data)
			return out, "", err
		}
		for _, mt := range ScriptTypes {
			r.transcoders[mt] = minify
		}
		for _, mt := range StyleTypes {
			r.transcoders[mt] = minify
		}
	}

	if c.images != nil {
		img := c.images
		recode := func(data []byte, _ string) ([]byte, string, error) {
			return img.Transcode(data)
		}
		for _, mt := range ImageTypes {
			r.transcoders[mt] = recode
		}
	}

	for mt, t := range c.extra {
		r.transcoders[mt] = t
	}

	return r
}

// baseType drops any parameters from the media type and lower cases it.
func baseType(mediaType string) string {
	if i := strings.IndexByte(mediaType, ';'); i > -1 {
		mediaType = mediaType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

// Compress returns a smaller rendition of data if a transcoder is registered
// for the media type and it manages to produce one. Otherwise, data and
// mediaType are returned unchanged. An empty mediaType returns the data with
// an empty type.
//
// A failing transcoder is logged and returned as an *Error.
func (r *Registry) Compress(data []byte, mediaType string) ([]byte, string, error) {
	if mediaType == "" {
		return data, "", nil
	}

	bt := baseType(mediaType)
	t, found := r.transcoders[bt]
	if !found {
		return data, mediaType, nil
	}

	out, outType, err := t(data, bt)
	if err != nil {
		r.logger.Error("error while compressing",
			"content_type", mediaType,
			"error", err)
		return nil, "", &Error{MediaType: mediaType, Err: err}
	}

	if outType == "" {
		outType = mediaType
	}

	if len(out) < len(data) {
		return out, outType, nil
	}

	return data, mediaType, nil
}
