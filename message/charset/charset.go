// Package charset converts text parts of an archive into UTF-8. It loads all
// the encodings provided with:
//
// * golang.org/x/text/encoding/ianaindex
// * golang.org/x/text/encoding/htmlindex
//
// This will make the size of your compiled binaries considerably larger. But it
// will also give your code the ability to decode pretty much any character set
// a saved web page might declare.
package charset

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
)

// Lookup finds the encoding for a charset label. The MIME names are tried
// first, then the full IANA registry and finally the WHATWG labels browsers
// accept.
func Lookup(label string) (encoding.Encoding, error) {
	label = strings.Trim(strings.TrimSpace(label), `"'`)

	if e, err := ianaindex.MIME.Encoding(label); err == nil && e != nil {
		return e, nil
	}

	if e, err := ianaindex.IANA.Encoding(label); err == nil && e != nil {
		return e, nil
	}

	if e, err := htmlindex.Get(label); err == nil && e != nil {
		return e, nil
	}

	return nil, fmt.Errorf("no encoding found for charset %q", label)
}

// IsUTF8 returns true for the labels that need no conversion.
func IsUTF8(label string) bool {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "utf-8", "utf8", "us-ascii", "ascii":
		return true
	}
	return false
}

// ToUTF8 converts the given bytes from the named charset to UTF-8. It returns
// an error if the charset is unknown or the bytes cannot be decoded.
func ToUTF8(label string, b []byte) ([]byte, error) {
	if IsUTF8(label) {
		return b, nil
	}

	e, err := Lookup(label)
	if err != nil {
		return nil, err
	}

	eb, err := e.NewDecoder().Bytes(b)
	if err != nil {
		return nil, fmt.Errorf("unable to decode %s text: %w", label, err)
	}

	return eb, nil
}
