package header_test

import (
	"bufio"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-message/textproto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-mhtml/message/header"
)

func parseHeader(t *testing.T, s string) *header.Header {
	t.Helper()

	th, err := textproto.ReadHeader(bufio.NewReader(strings.NewReader(s)))
	require.NoError(t, err)

	return header.New(th)
}

const archiveHeader = "From: <Saved by Blink>\r\n" +
	"Subject: =?utf-8?Q?Caf=C3=A9_menu?=\r\n" +
	"Date: Tue, 14 Mar 2023 10:20:30 -0700\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/related;\r\n" +
	"\ttype=\"text/html\";\r\n" +
	"\tstart=\"<root123>\";\r\n" +
	"\tboundary=\"----MultipartBoundary--abc----\"\r\n" +
	"\r\n"

func TestHeader_GetMediaType(t *testing.T) {
	t.Parallel()

	h := parseHeader(t, archiveHeader)

	mt, err := h.GetMediaType()
	assert.NoError(t, err)
	assert.Equal(t, "multipart/related", mt)

	start, err := h.GetStart()
	assert.NoError(t, err)
	assert.Equal(t, "<root123>", start)

	b, err := h.GetBoundary()
	assert.NoError(t, err)
	assert.Equal(t, "----MultipartBoundary--abc----", b)

	_, err = h.GetCharset()
	assert.ErrorIs(t, err, header.ErrNoSuchFieldParameter)
}

func TestHeader_GetMediaType_Missing(t *testing.T) {
	t.Parallel()

	h := parseHeader(t, "Content-ID: <img1>\r\n\r\n")

	mt, err := h.GetMediaType()
	assert.ErrorIs(t, err, header.ErrNoSuchField)
	assert.Equal(t, "", mt)

	_, err = h.GetStart()
	assert.ErrorIs(t, err, header.ErrNoSuchField)
}

func TestHeader_GetMediaType_Uppercase(t *testing.T) {
	t.Parallel()

	h := parseHeader(t, "Content-Type: TEXT/HTML; charset=ISO-8859-1\r\n\r\n")

	mt, err := h.GetMediaType()
	assert.NoError(t, err)
	assert.Equal(t, "text/html", mt)

	cs, err := h.GetCharset()
	assert.NoError(t, err)
	assert.Equal(t, "ISO-8859-1", cs)
}

func TestHeader_ReferenceFields(t *testing.T) {
	t.Parallel()

	h := parseHeader(t, "Content-ID: <img1@example.com>\r\n"+
		"Content-Location:\r\n https://example.com/images/\r\n logo.png\r\n"+
		"Content-Base: https://example.com/\r\n"+
		"Content-Transfer-Encoding: BASE64\r\n\r\n")

	cid, err := h.GetContentID()
	assert.NoError(t, err)
	assert.Equal(t, "<img1@example.com>", cid)

	loc, err := h.GetContentLocation()
	assert.NoError(t, err)
	assert.Equal(t, "https://example.com/images/logo.png", loc)

	base, err := h.GetContentBase()
	assert.NoError(t, err)
	assert.Equal(t, "https://example.com/", base)

	cte, err := h.GetTransferEncoding()
	assert.NoError(t, err)
	assert.Equal(t, "base64", cte)
}

func TestHeader_Get_Many(t *testing.T) {
	t.Parallel()

	h := parseHeader(t, "Content-ID: <a>\r\nContent-ID: <b>\r\n\r\n")

	cid, err := h.GetContentID()
	assert.ErrorIs(t, err, header.ErrManyFields)
	assert.NotEmpty(t, cid)
}

func TestHeader_Summary(t *testing.T) {
	t.Parallel()

	h := parseHeader(t, archiveHeader)

	s, err := h.GetSubject()
	assert.NoError(t, err)
	assert.Equal(t, "Café menu", s)

	d, err := h.GetDate()
	assert.NoError(t, err)
	assert.True(t, d.Equal(time.Date(2023, 3, 14, 17, 20, 30, 0, time.UTC)))

	from, err := h.GetFrom()
	assert.NoError(t, err)
	assert.Len(t, from, 1)
}

func TestParseTime(t *testing.T) {
	t.Parallel()

	for _, s := range []string{
		"Tue, 14 Mar 2023 10:20:30 -0700",
		"2023-03-14 17:20:30",
		"Tue Mar 14 17:20:30 2023 UTC",
	} {
		tm, err := header.ParseTime(s)
		assert.NoError(t, err, s)
		assert.Equal(t, 2023, tm.Year(), s)
	}

	_, err := header.ParseTime("not a date at all")
	assert.Error(t, err)
}

func TestParseAddressList(t *testing.T) {
	t.Parallel()

	al := header.ParseAddressList("Sterling <sterling@example.com>")
	if assert.Len(t, al, 1) {
		assert.Equal(t, "sterling@example.com", al[0].Address())
	}
}
