package unpack

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/zostay/go-mhtml/message"
	mcharset "github.com/zostay/go-mhtml/message/charset"
)

// HTML is the media type of the documents whose references are rewritten.
const HTML = "text/html"

// Result is a rendered part.
type Result struct {
	Data        []byte
	ContentType string
}

// Compressor shrinks rendered data before it is embedded. The
// transcode.Registry is the usual implementation.
type Compressor interface {
	Compress(data []byte, mediaType string) ([]byte, string, error)
}

// Renderer renders the parts of one archive.
type Renderer struct {
	index      *Index
	embedder   Embedder
	describer  *Describer
	compressor Compressor
	logger     *slog.Logger
}

// Option configures a Renderer.
type Option func(r *Renderer)

// WithDescriber sets the Describer. The default sniffs nothing and uses a
// private ExtensionTable.
func WithDescriber(d *Describer) Option {
	return func(r *Renderer) { r.describer = d }
}

// WithCompressor sets the Compressor used by the embedders. Without one,
// rendered data is embedded as is.
func WithCompressor(c Compressor) Option {
	return func(r *Renderer) { r.compressor = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) { r.logger = l }
}

// NewRenderer returns a Renderer resolving references through idx and
// embedding them with e.
func NewRenderer(idx *Index, e Embedder, opts ...Option) *Renderer {
	r := &Renderer{index: idx, embedder: e}
	for _, opt := range opts {
		opt(r)
	}

	if r.describer == nil {
		r.describer = NewDescriber(nil, nil)
	}

	if r.logger == nil {
		r.logger = slog.Default()
	}

	return r
}

// Describe describes a part with the Renderer's Describer.
func (r *Renderer) Describe(part message.Part, recommended string) *Descriptor {
	return r.describer.Describe(part, recommended)
}

// Compress runs the data through the Compressor, if there is one.
func (r *Renderer) Compress(data []byte, mediaType string) ([]byte, string, error) {
	if r.compressor == nil {
		return data, mediaType, nil
	}
	return r.compressor.Compress(data, mediaType)
}

// RenderPart describes the part and renders it.
func (r *Renderer) RenderPart(part message.Part, seen *Seen) (*Result, error) {
	return r.Render(r.Describe(part, ""), seen)
}

// RenderRoot renders the root document of an archive. The part is assumed to
// be HTML if it does not say otherwise, and it counts as seen, so references
// back to the document itself are left alone.
func (r *Renderer) RenderRoot(part message.Part) (*Result, error) {
	d := r.Describe(part, HTML)
	return r.Render(d, (*Seen)(nil).With(d.Digest))
}

// Render renders a described part. HTML has its references rewritten and is
// returned as UTF-8. Other text with a declared charset is converted to
// UTF-8. Everything else is returned as is.
func (r *Renderer) Render(d *Descriptor, seen *Seen) (*Result, error) {
	switch {
	case d.ContentType == HTML:
		return r.renderHTML(d, seen)
	case strings.HasPrefix(d.ContentType, "text/") && d.Charset != "":
		return renderText(d), nil
	default:
		return &Result{Data: d.Payload, ContentType: d.ContentType}, nil
	}
}

// renderText converts text to UTF-8. When the charset is unknown, the
// payload is returned unchanged.
func renderText(d *Descriptor) *Result {
	b, err := mcharset.ToUTF8(d.Charset, d.Payload)
	if err != nil {
		return &Result{Data: d.Payload, ContentType: d.ContentType}
	}
	return &Result{Data: b, ContentType: d.ContentType + ";charset=utf8"}
}

// elements lists the element nodes of the document in document order.
func elements(doc *html.Node) []*html.Node {
	var els []*html.Node
	stack := []*html.Node{doc}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if n.Type == html.ElementNode {
			els = append(els, n)
		}

		for c := n.LastChild; c != nil; c = c.PrevSibling {
			stack = append(stack, c)
		}
	}
	return els
}

// attr returns the value of the named attribute or an empty string.
func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

// declareUTF8 makes a meta charset declaration agree with the output.
func declareUTF8(n *html.Node) {
	httpEquiv := strings.EqualFold(strings.TrimSpace(attr(n, "http-equiv")), "content-type")
	for i := range n.Attr {
		a := &n.Attr[i]
		switch {
		case a.Namespace != "":
		case a.Key == "charset":
			a.Val = "utf-8"
		case a.Key == "content" && httpEquiv:
			a.Val = "text/html; charset=utf-8"
		}
	}
}

// baseURI finds the URI relative references in the document are resolved
// against.
func baseURI(d *Descriptor, els []*html.Node) string {
	h := d.Part.GetHeader()
	cb, _ := h.GetContentBase()
	loc, _ := h.GetContentLocation()
	self := JoinURI(cb, loc)

	for _, n := range els {
		if n.Data != "base" {
			continue
		}

		if href := strings.TrimSpace(attr(n, "href")); href != "" {
			return JoinURI(self, href)
		}
	}

	if self != "" {
		return self
	}

	return cb
}

// renderHTML rewrites every reference in the document that resolves to a
// part of the archive.
func (r *Renderer) renderHTML(d *Descriptor, seen *Seen) (*Result, error) {
	ct := HTML
	if d.Charset != "" {
		ct += "; charset=" + d.Charset
	}

	in, err := charset.NewReader(bytes.NewReader(d.Payload), ct)
	if err != nil {
		return nil, fmt.Errorf("unable to decode HTML: %w", err)
	}

	doc, err := html.Parse(in)
	if err != nil {
		return nil, fmt.Errorf("unable to parse HTML: %w", err)
	}

	els := elements(doc)
	base := baseURI(d, els)

	for _, n := range els {
		if n.Data == "meta" {
			declareUTF8(n)
			continue
		}

		keys, found := References[n.Data]
		if !found {
			continue
		}

		hint := strings.ToLower(strings.TrimSpace(attr(n, "type")))
		for _, key := range keys {
			if err := r.rewrite(n, key, hint, base, seen); err != nil {
				return nil, err
			}
		}
	}

	buf := &bytes.Buffer{}
	if err := html.Render(buf, doc); err != nil {
		return nil, fmt.Errorf("unable to render HTML: %w", err)
	}

	return &Result{Data: buf.Bytes(), ContentType: "text/html;charset=utf8"}, nil
}

// rewrite replaces the value of the attribute with the embedded form of the
// part it refers to.
func (r *Renderer) rewrite(n *html.Node, key, hint, base string, seen *Seen) error {
	for i := range n.Attr {
		a := &n.Attr[i]
		if a.Namespace != "" || a.Key != key {
			continue
		}

		ref := strings.TrimSpace(a.Val)
		if ref == "" {
			continue
		}

		part, fragment := r.index.Resolve(base, ref)
		if part == nil {
			continue
		}

		d := r.Describe(part, hint)
		embedded, ok, err := r.embedder.Embed(r, d, seen)
		if err != nil {
			return err
		}

		if !ok {
			r.logger.Debug("leaving cyclic reference",
				"ref", ref,
				"digest", d.Digest)
			continue
		}

		if !strings.HasPrefix(embedded, "data:") {
			embedded += fragment
		}

		a.Val = embedded
	}

	return nil
}
