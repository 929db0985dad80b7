package transfer

import (
	"encoding/base64"
	"io"
)

// spaceSkipper drops every byte of base64 input that is not part of the
// alphabet. The encoding/base64 decoder only tolerates CR and LF, but
// archives in the wild contain spaces, tabs and the occasional stray
// character as well.
type spaceSkipper struct {
	r io.Reader
}

func isBase64Byte(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return true
	case c == '+', c == '/', c == '=':
		return true
	}
	return false
}

func (s *spaceSkipper) Read(p []byte) (int, error) {
	for {
		n, err := s.r.Read(p)
		j := 0
		for _, c := range p[:n] {
			if isBase64Byte(c) {
				p[j] = c
				j++
			}
		}

		// only return zero bytes once the underlying reader has nothing left
		if j > 0 || err != nil {
			return j, err
		}
	}
}

// NewBase64Decoder will translate all bytes read from the given io.Reader as
// base64 and return the binary data to the returned io.Reader.
func NewBase64Decoder(r io.Reader) io.Reader {
	return base64.NewDecoder(base64.StdEncoding, &spaceSkipper{r})
}
