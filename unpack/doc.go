// Package unpack turns a parsed MHTML archive into a single renderable
// document.
//
// An Index is built over every part of the archive, SelectRoot picks the part
// to start from, and a Renderer walks the references found in each HTML part,
// replacing every reference it can resolve to another part of the archive with
// whatever the configured Embedder hands back. The Inline embedder produces
// data: URIs, so the result stands on its own. The Directory embedder writes
// each referenced part to a file named after the digest of its content and
// refers to that instead.
//
// Reference cycles are broken with a Seen chain holding the digests of the
// parts being rendered on the current path. A reference back to one of those
// parts is left as it was written.
package unpack
