package unpack

import (
	"mime"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
)

// Guesser returns a file extension, leading dot included, for a media type or
// an empty string if it has none to offer.
type Guesser func(mediaType string) string

// GuessExtension is the default Guesser. It asks the mimetype registry first
// and then the system MIME tables.
func GuessExtension(mediaType string) string {
	if m := mimetype.Lookup(mediaType); m != nil && m.Extension() != "" {
		return m.Extension()
	}

	exts, err := mime.ExtensionsByType(mediaType)
	if err == nil && len(exts) > 0 {
		return exts[0]
	}

	return ""
}

// DefaultExtensions are the entries every ExtensionTable starts with.
var DefaultExtensions = map[string]string{
	"text/html":                ".html",
	"text/plain":               ".txt",
	"text/javascript":          ".js",
	"application/javascript":   ".js",
	"application/x-javascript": ".js",
	"text/css":                 ".css",
	"application/css":          ".css",
	"application/octet-stream": ".data",
	"image/jpeg":               ".jpg",
}

// ExtensionTable maps media types to file extensions. Types missing from the
// table are handed to the Guesser once and the answer, even an empty one, is
// remembered. It is safe for concurrent use.
type ExtensionTable struct {
	mu    sync.Mutex
	exts  map[string]string
	guess Guesser
}

// NewExtensionTable returns a table holding DefaultExtensions. A nil guess
// means GuessExtension.
func NewExtensionTable(guess Guesser) *ExtensionTable {
	if guess == nil {
		guess = GuessExtension
	}

	exts := make(map[string]string, len(DefaultExtensions))
	for mt, ext := range DefaultExtensions {
		exts[mt] = ext
	}

	return &ExtensionTable{exts: exts, guess: guess}
}

// Find returns the extension for the media type.
func (t *ExtensionTable) Find(mediaType string) string {
	mediaType = strings.ToLower(mediaType)

	t.mu.Lock()
	defer t.mu.Unlock()

	if ext, found := t.exts[mediaType]; found {
		return ext
	}

	ext := t.guess(mediaType)
	t.exts[mediaType] = ext

	return ext
}
