package message

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-message/textproto"

	"github.com/zostay/go-mhtml/message/header"
	"github.com/zostay/go-mhtml/message/transfer"
)

// Constants related to Parse() options.
const (
	// DefaultMaxMultipartDepth is the default depth the parser will recurse
	// into a message.
	DefaultMaxMultipartDepth = 10

	// DefaultMaxPartLength is the default maximum byte length of a single
	// leaf part. Saved pages embed video now and then, so this is generous.
	DefaultMaxPartLength = 256 << 20
)

// Errors that occur during parsing.
var (
	// ErrNoBoundary is recorded in the ParseError when a multipart
	// Content-type has no boundary parameter. The part is kept as an Opaque
	// part.
	ErrNoBoundary = errors.New("the boundary parameter is missing from Content-type")

	// ErrLargePart is returned by Parse when a part is longer than the
	// configured WithMaxPartLength option (or the default,
	// DefaultMaxPartLength).
	ErrLargePart = errors.New("a message part exceeds the maximum parse length")
)

// ParseError is returned when one or more recoverable errors occur while
// parsing a message. It collects all the errors and returns them as a group.
// When Parse returns a ParseError, it returns the message as far as it could
// be parsed as well.
type ParseError struct {
	Errs []error // the list of errors that occurred during parsing
}

// Error returns the list of errors encountered while parsing a message.
func (err *ParseError) Error() string {
	errs := make([]string, len(err.Errs))
	for i, e := range err.Errs {
		errs[i] = e.Error()
	}
	return "error parsing MIME message: " + strings.Join(errs, ", ")
}

// Unwrap returns the collected errors so errors.Is can look inside.
func (err *ParseError) Unwrap() []error {
	return err.Errs
}

type parser struct {
	maxPartLen int64
	maxDepth   int
	decode     bool

	errs []error
}

func (pr *parser) clone() *parser {
	p := *pr
	p.errs = nil
	return &p
}

var defaultParser = &parser{
	maxPartLen: DefaultMaxPartLength,
	maxDepth:   DefaultMaxMultipartDepth,
	decode:     false,
}

// ParseOption refers to options that may be passed to the Parse function to
// modify how the parser works.
type ParseOption func(pr *parser)

// WithMaxPartLength is a ParseOption that sets the maximum size of the body of
// any leaf part. If a part gets too large, Parse will fail with an
// ErrLargePart error. Setting this to a value less than or equal to 0 removes
// the limit.
func WithMaxPartLength(n int64) ParseOption {
	return func(pr *parser) { pr.maxPartLen = n }
}

// DecodeTransferEncoding is a ParseOption that enables the decoding of
// Content-transfer-encoding while parsing. Every Opaque part will then report
// false from IsEncoded().
func DecodeTransferEncoding() ParseOption {
	return func(pr *parser) { pr.decode = true }
}

// WithMaxDepth is a ParseOption that controls how deep the parser will go in
// recursively parsing a multipart message. This is set to
// DefaultMaxMultipartDepth by default.
func WithMaxDepth(maxDepth int) ParseOption {
	return func(pr *parser) { pr.maxDepth = maxDepth }
}

// WithoutMultipart is a ParseOption that will not allow parsing of any
// multipart messages. The message returned from Parse() will always be *Opaque.
func WithoutMultipart() ParseOption {
	return func(pr *parser) { pr.maxDepth = 0 }
}

// WithUnlimitedRecursion is a ParseOption that will allow the parser to parse
// sub-parts of any depth.
func WithUnlimitedRecursion() ParseOption {
	return func(pr *parser) { pr.maxDepth = -1 }
}

// Parse will parse the given input into a tree of parts. A message or part
// with a multipart/* Content-type and a boundary becomes a *Multipart, and
// everything else becomes an *Opaque holding the body bytes.
//
// Parsing is forgiving. Problems that still leave a usable tree, such as a
// missing boundary parameter or a truncated final part, are collected into a
// *ParseError that is returned alongside the message. Any other error means
// the returned message is nil.
func Parse(r io.Reader, opts ...ParseOption) (Generic, error) {
	pr := defaultParser.clone()
	for _, opt := range opts {
		opt(pr)
	}

	br := bufio.NewReader(r)
	th, err := textproto.ReadHeader(br)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unable to read message header: %w", err)
	}

	msg, err := pr.parse(header.New(th), br, 0)
	if err != nil {
		return nil, err
	}

	if len(pr.errs) > 0 {
		return msg, &ParseError{Errs: pr.errs}
	}

	return msg, nil
}

// canDescend returns true if parts at the given depth may still be split.
func (pr *parser) canDescend(depth int) bool {
	return pr.maxDepth < 0 || depth < pr.maxDepth
}

// parse turns one header and body into a part, recursing into multipart
// bodies.
func (pr *parser) parse(h *header.Header, body io.Reader, depth int) (Part, error) {
	mt, _ := h.GetMediaType()
	if !strings.HasPrefix(mt, "multipart/") || !pr.canDescend(depth) {
		return pr.parseOpaque(h, body)
	}

	boundary, err := h.GetBoundary()
	if err != nil || boundary == "" {
		pr.errs = append(pr.errs, ErrNoBoundary)
		return pr.parseOpaque(h, body)
	}

	mm := &Multipart{Header: *h}
	mr := textproto.NewMultipartReader(body, boundary)
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			pr.errs = append(pr.errs, fmt.Errorf("multipart %s: %w", mt, err))
			break
		}

		part, err := pr.parse(header.New(p.Header), p, depth+1)
		if err != nil {
			return nil, err
		}

		mm.parts = append(mm.parts, part)
	}

	return mm, nil
}

// parseOpaque reads the body of a leaf part.
func (pr *parser) parseOpaque(h *header.Header, body io.Reader) (Part, error) {
	r := body
	if pr.maxPartLen > 0 {
		r = io.LimitReader(body, pr.maxPartLen+1)
	}

	encoded := true
	if pr.decode {
		r = transfer.ApplyTransferDecoding(h, r)
		encoded = false
	}

	b, err := io.ReadAll(r)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		pr.errs = append(pr.errs, fmt.Errorf("truncated part: %w", err))
	} else if err != nil {
		if !pr.decode {
			return nil, fmt.Errorf("unable to read part body: %w", err)
		}

		// a broken transfer encoding keeps whatever decoded cleanly
		pr.errs = append(pr.errs, fmt.Errorf("unable to decode part body: %w", err))
	}

	if pr.maxPartLen > 0 && int64(len(b)) > pr.maxPartLen {
		return nil, ErrLargePart
	}

	return NewOpaque(h, b, encoded), nil
}
