// Package transfer contains utilities related to decoding transfer encodings,
// which interpret the Content-transfer-encoding header. If a
// Content-transfer-encoding is present, only the values of quoted-printable,
// base64 and the old x-uuencode family will actually result in changes to the
// bytes read. Other settings such as binary, 7bit, or 8bit will result in the
// bytes being left as-is.
//
// Archives are written by browsers and mail clients of every vintage, so the
// decoders here are forgiving: whitespace inside base64 is skipped and
// unknown encodings are read as-is.
package transfer
