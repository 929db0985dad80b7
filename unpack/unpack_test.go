package unpack_test

import (
	"encoding/base64"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zostay/go-mhtml/message"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// page is the two part archive: a document showing one image.
const page = `MIME-Version: 1.0
Content-Type: multipart/related; boundary="BOUNDARY"; type="text/html"

--BOUNDARY
Content-Type: text/html; charset=utf-8
Content-Location: https://example.com/index.html

<html><img src="cid:img1"></html>
--BOUNDARY
Content-Type: image/jpeg
Content-ID: <img1>
Content-Transfer-Encoding: base64

SlBFR0RBVEE=
--BOUNDARY--
`

// cycle holds two documents linking to each other.
const cycle = `Content-Type: multipart/related; boundary=B

--B
Content-Type: text/html
Content-Location: https://example.com/a.html

<p><a href="b.html">to b</a></p>
--B
Content-Type: text/html
Content-Location: https://example.com/b.html

<p><a href="a.html">to a</a></p>
--B--
`

// selfRef is a document linking to itself by Content-ID.
const selfRef = `Content-Type: multipart/related; boundary=B; start="<self>"

--B
Content-Type: text/html
Content-ID: <self>

<p><a href="cid:self">me</a></p>
--B--
`

func parse(t *testing.T, src string) message.Generic {
	t.Helper()

	msg, err := message.Parse(strings.NewReader(src))
	require.NoError(t, err)
	return msg
}

var dataURI = regexp.MustCompile(`data:([^;,"]+(?:;charset=utf8)?);base64,([A-Za-z0-9+/=]*)`)

// inlined finds every data: URI in the document and returns the decoded
// contents keyed by position.
func inlined(t *testing.T, doc string) []string {
	t.Helper()

	var out []string
	for _, m := range dataURI.FindAllStringSubmatch(doc, -1) {
		b, err := base64.StdEncoding.DecodeString(m[2])
		require.NoError(t, err)
		out = append(out, string(b))
	}
	return out
}
