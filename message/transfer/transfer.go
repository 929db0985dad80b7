package transfer

import (
	"io"
	"strings"

	"github.com/zostay/go-mhtml/message/header"
)

const (
	None            = ""                 // bytes will be left as-is
	Bit7            = "7bit"             // bytes will be left as-is
	Bit8            = "8bit"             // bytes will be left as-is
	Binary          = "binary"           // bytes will be left as-is
	QuotedPrintable = "quoted-printable" // bytes will be transformed from quoted-printable to binary data
	Base64          = "base64"           // bytes will be transformed from base64 to binary data
	UUEncode        = "x-uuencode"       // bytes will be transformed from uuencode to binary data
)

// Decoder returns an io.Reader, which will read from the given io.Reader
// when read and decode the encoded data back into binary form.
type Decoder func(io.Reader) io.Reader

// Decoders defines the supported Content-transfer-encodings and how to
// decode them. It can be modified to change the global handling of transfer
// encodings.
var Decoders = map[string]Decoder{
	None:            NewAsIsDecoder,
	Bit7:            NewAsIsDecoder,
	Bit8:            NewAsIsDecoder,
	Binary:          NewAsIsDecoder,
	QuotedPrintable: NewQuotedPrintableDecoder,
	Base64:          NewBase64Decoder,
	UUEncode:        NewUUDecoder,
	"uuencode":      NewUUDecoder,
	"x-uue":         NewUUDecoder,
	"uue":           NewUUDecoder,
}

// ApplyTransferDecoding returns an io.Reader that will modify incoming bytes
// according to the transfer encoding detected from the given header. (Or the
// io.Reader will leave the bytes as is if there's no transfer encoding or the
// transfer encoding is one that is interpreted as-is).
func ApplyTransferDecoding(h *header.Header, r io.Reader) io.Reader {
	// check to see if the content-type is permitted to have
	// content-transfer-encoding, it's allowed if:
	// |-> Content-type is missing or unreadable
	// |-> Content-type is not a "multipart/*" type
	mt, err := h.GetMediaType()
	if err == nil && strings.HasPrefix(mt, "multipart/") {
		return r
	}

	// check to see if content-transfer-encoding is set and readable, if not
	// don't continue
	cte, err := h.GetTransferEncoding()
	if err != nil {
		return r
	}

	// check to see if we have a decoder for it and build and return it if we do
	if dec, hasCode := Decoders[cte]; hasCode {
		return dec(r)
	}

	return r
}
