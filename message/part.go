package message

import (
	"bytes"
	"io"

	"github.com/zostay/go-mhtml/message/header"
)

// Part is an interface define the parts of a Multipart. Each Part is
// either a branch or a leaf.
//
// A branch Part is one that has sub-parts. In this case, the IsMultipart()
// method will return true. The GetParts() method is available, but the
// GetReader() method returns nil.
//
// A leaf Part is one that contains content. In this case, the IsMultipart()
// method will return false and GetParts() returns nil. However, the
// GetReader() method will return a reader for reading the content of the
// part.
type Part interface {
	// IsMultipart will return true if this Part is a branch with nested
	// parts.
	IsMultipart() bool

	// IsEncoded will return true if the bytes returned by the io.Reader from
	// GetReader() still carry the Content-transfer-encoding. This does not
	// indicate whether any Content-transfer-encoding header is present.
	//
	// This method must return false if IsMultipart() returns true.
	IsEncoded() bool

	// GetHeader is available on all Part objects.
	GetHeader() *header.Header

	// GetReader provides the content of the part, but only if IsMultipart()
	// returns false. Every call returns a new io.Reader positioned at the
	// start of the content. This returns nil for multipart parts and for
	// leaves without content.
	GetReader() io.Reader

	// GetParts provides the sub-parts of a multipart part. This must return
	// nil if IsMultipart() is false.
	GetParts() []Part
}

// Generic is just an alias for Part, which is intended to convey
// additional semantics:
//
// 1. The message returned is not necessarily a sub-part of a message.
//
// 2. The returned message is guaranteed to either be a *Opaque or a
// *Multipart. Therefore, it is safe to use this in a type-switch
// and only look for either of those two objects.
type Generic = Part

// Opaque is a leaf part: a header and the body bytes.
type Opaque struct {
	// Header will contain the header of the part.
	header.Header

	// body is nil when the part had no content.
	body []byte

	// encoded tracks whether the body still has the
	// content-transfer-encoding applied.
	encoded bool
}

// NewOpaque builds a leaf part from a header and body. Set encoded to true if
// the body still carries the Content-transfer-encoding named in the header.
func NewOpaque(h *header.Header, body []byte, encoded bool) *Opaque {
	m := &Opaque{body: body, encoded: encoded}
	if h != nil {
		m.Header = *h
	}
	if len(m.body) == 0 {
		m.body = nil
	}
	return m
}

// IsMultipart always returns false.
func (m *Opaque) IsMultipart() bool {
	return false
}

// IsEncoded returns true if the Content-transfer-encoding has not been decoded
// for the bytes returned by the associated io.Reader.
func (m *Opaque) IsEncoded() bool {
	return m.encoded
}

// GetHeader returns the header for the part.
func (m *Opaque) GetHeader() *header.Header {
	return &m.Header
}

// GetReader returns a new reader over the body of the part, or nil if the
// body is empty.
func (m *Opaque) GetReader() io.Reader {
	if m.body == nil {
		return nil
	}
	return bytes.NewReader(m.body)
}

// GetParts always returns nil.
func (m *Opaque) GetParts() []Part {
	return nil
}

// Len returns the number of body bytes held, encoded or not.
func (m *Opaque) Len() int {
	return len(m.body)
}

// Multipart is a multipart MIME message. The MIME type set in the
// Content-type header always starts with multipart/*.
type Multipart struct {
	// Header is the header for the message.
	header.Header

	// parts holds this layer's parts
	parts []Part
}

// NewMultipart builds a branch part from a header and its sub-parts.
func NewMultipart(h *header.Header, parts ...Part) *Multipart {
	m := &Multipart{parts: parts}
	if h != nil {
		m.Header = *h
	}
	return m
}

// IsMultipart always returns true.
func (mm *Multipart) IsMultipart() bool {
	return true
}

// IsEncoded always returns false.
func (mm *Multipart) IsEncoded() bool {
	return false
}

// GetHeader returns the header for the message.
func (mm *Multipart) GetHeader() *header.Header {
	return &mm.Header
}

// GetReader always returns nil.
func (mm *Multipart) GetReader() io.Reader {
	return nil
}

// GetParts returns the sub-parts of this message or nil if there aren't any.
func (mm *Multipart) GetParts() []Part {
	return mm.parts
}
