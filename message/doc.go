// Package message is the bottom of this library. It provides objects for
// reading a web archive (an RFC 2557 MIME message) as a tree of parts. The
// tree is read-only: the rest of the module looks things up in it and renders
// new documents from it, but never changes it.
//
// Any message is either an Opaque part, which holds a header and the body
// bytes, or a Multipart part, which holds a header and the sub-parts. Parse
// reads a message into that tree:
//
//	f, err := os.Open("page.mht")
//	if err != nil {
//	  panic(err)
//	}
//
//	msg, err := message.Parse(f)
//	if err != nil {
//	  panic(err)
//	}
//
// By default, the bodies keep their Content-transfer-encoding and IsEncoded
// reports true. Use transfer.ApplyTransferDecoding on the reader to get at the
// original bytes, or parse with the DecodeTransferEncoding option.
package message
