package unpack

import (
	"crypto/sha256"
	"encoding/base64"
	"io"

	"github.com/zostay/go-mhtml/message"
	"github.com/zostay/go-mhtml/message/transfer"
	"github.com/zostay/go-mhtml/sniff"
)

// Descriptor is what the Renderer needs to know about one part.
type Descriptor struct {
	// Part is the part described.
	Part message.Part

	// ContentType is the resolved media type, without parameters. It may be
	// empty.
	ContentType string

	// Charset is the charset parameter of the declared Content-type, if any.
	Charset string

	// Payload is the body of the part with the transfer encoding removed.
	Payload []byte

	// Extension is the file extension for ContentType. It may be empty.
	Extension string

	// Digest identifies the payload. Parts with equal payloads have equal
	// digests no matter what their headers say.
	Digest string
}

// Digest returns the SHA-256 of the payload encoded as unpadded URL-safe
// base64.
func Digest(payload []byte) string {
	sum := sha256.Sum256(payload)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// suspect reports media types that usually mean nobody knew better.
func suspect(mediaType string) bool {
	switch mediaType {
	case "", "text/plain", "application/octet-stream":
		return true
	}
	return false
}

// Describer builds Descriptors.
type Describer struct {
	// Sniffer is consulted when the declared type is suspect. It may be nil.
	Sniffer sniff.Sniffer

	// Extensions supplies file extensions.
	Extensions *ExtensionTable
}

// NewDescriber returns a Describer. A nil table gets a fresh ExtensionTable.
func NewDescriber(s sniff.Sniffer, exts *ExtensionTable) *Describer {
	if exts == nil {
		exts = NewExtensionTable(nil)
	}
	return &Describer{Sniffer: s, Extensions: exts}
}

// payload reads the body of the part, decoding the transfer encoding if it
// is still applied. Whatever was read before an error is kept.
func payload(part message.Part) []byte {
	r := part.GetReader()
	if r == nil {
		return []byte{}
	}

	if part.IsEncoded() {
		r = transfer.ApplyTransferDecoding(part.GetHeader(), r)
	}

	b, _ := io.ReadAll(r)
	if b == nil {
		b = []byte{}
	}

	return b
}

// Describe resolves the content type, payload, digest, and extension of the
// part. The declared Content-type is preferred. When it is missing, text/plain,
// or application/octet-stream, the payload is sniffed and, failing that, the
// recommended type is used. Nothing here fails; the worst case is an empty
// content type.
func (d *Describer) Describe(part message.Part, recommended string) *Descriptor {
	h := part.GetHeader()
	mt, _ := h.GetMediaType()
	cs, _ := h.GetCharset()
	body := payload(part)

	if suspect(mt) && d.Sniffer != nil {
		if sniffed := d.Sniffer.Sniff(body); sniffed != "" {
			mt = sniffed
		}
	}

	if suspect(mt) && recommended != "" {
		mt = recommended
	}

	desc := &Descriptor{
		Part:        part,
		ContentType: mt,
		Charset:     cs,
		Payload:     body,
		Digest:      Digest(body),
	}

	if d.Extensions != nil {
		desc.Extension = d.Extensions.Find(mt)
	}

	return desc
}
