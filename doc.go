// Package mhtml converts MHTML web archives, the .mht and .mhtml files browsers
// write when asked to save a complete page, into documents any browser can
// open.
//
// An archive is a multipart/related MIME message. One part holds the page and
// the rest hold the images, stylesheets, scripts, and frames it refers to,
// each labeled with a Content-ID, a Content-Location, or both. The Converter
// parses the archive with message.Parse, indexes the parts with
// unpack.NewIndex, picks the page with unpack.SelectRoot, and renders it with
// an unpack.Renderer. Every reference the renderer can match to a part of the
// archive is replaced.
//
// In Inline mode, the default, each referenced part becomes a data: URI, so
// the output is a single self-contained HTML file. In Directory mode, each
// referenced part is written next to the output as blob=<digest><extension>
// and referred to by that name. Parts with identical content share one file.
//
// Along the way, scripts and stylesheets are minified and images are scaled
// down and recompressed by a transcode.Registry. Parts that declare no useful
// Content-type are identified by sniffing their content with sniff.Magic.
//
// The command line front end lives in tools/mhtml.
package mhtml
