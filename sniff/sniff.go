// Package sniff guesses the media type of a payload from its leading bytes.
package sniff

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Sniffer detects the media type of some content. Sniff returns the media
// type without parameters, in lower case, or an empty string when nothing
// can be said about the content.
type Sniffer interface {
	Sniff(data []byte) string
}

// Func adapts a plain function into a Sniffer.
type Func func(data []byte) string

// Sniff calls f.
func (f Func) Sniff(data []byte) string {
	return f(data)
}

// Magic is a Sniffer that matches magic numbers and markup signatures.
type Magic struct{}

// Sniff reports the detected media type. Empty content yields an empty
// string rather than a guess.
func (Magic) Sniff(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	mt := mimetype.Detect(data).String()
	if i := strings.IndexByte(mt, ';'); i > -1 {
		mt = mt[:i]
	}

	return strings.ToLower(strings.TrimSpace(mt))
}
