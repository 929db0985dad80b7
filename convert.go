package mhtml

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/zostay/go-mhtml/message"
	"github.com/zostay/go-mhtml/sniff"
	"github.com/zostay/go-mhtml/transcode"
	"github.com/zostay/go-mhtml/unpack"
)

// DefaultSuffix replaces the extension of an archive to name its output.
const DefaultSuffix = ".conv.html"

// Mode selects how referenced parts are embedded.
type Mode int

const (
	// Inline embeds referenced parts as data: URIs.
	Inline Mode = iota

	// Directory writes referenced parts to blob files beside the output.
	Directory
)

// ErrUnknownMode is returned by ParseMode.
var ErrUnknownMode = errors.New("unknown conversion mode")

// ParseMode reads a Mode from its name.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "inline":
		return Inline, nil
	case "directory", "dir", "files":
		return Directory, nil
	}
	return Inline, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// String returns the name of the mode.
func (m Mode) String() string {
	if m == Directory {
		return "directory"
	}
	return "inline"
}

// Converter turns archives into HTML. A Converter may be used for any number
// of conversions, concurrently if desired.
type Converter struct {
	mode       Mode
	suffix     string
	sniffer    sniff.Sniffer
	compressor unpack.Compressor
	customComp bool
	extensions *unpack.ExtensionTable
	parseOpts  []message.ParseOption
	logger     *slog.Logger
}

// Option configures a Converter.
type Option func(c *Converter)

// WithMode sets the embedding mode. The default is Inline.
func WithMode(m Mode) Option {
	return func(c *Converter) { c.mode = m }
}

// WithSuffix sets the suffix used by OutputPath. The default is DefaultSuffix.
func WithSuffix(suffix string) Option {
	return func(c *Converter) { c.suffix = suffix }
}

// WithSniffer sets the Sniffer used on parts with an unhelpful Content-type.
// The default is sniff.Magic. A nil Sniffer turns sniffing off.
func WithSniffer(s sniff.Sniffer) Option {
	return func(c *Converter) { c.sniffer = s }
}

// WithCompressor sets what shrinks embedded parts. The default is a
// transcode.Registry built by transcode.New. A nil Compressor embeds parts as
// they are.
func WithCompressor(comp unpack.Compressor) Option {
	return func(c *Converter) {
		c.compressor = comp
		c.customComp = true
	}
}

// WithExtensionTable shares an ExtensionTable with the Converter.
func WithExtensionTable(t *unpack.ExtensionTable) Option {
	return func(c *Converter) { c.extensions = t }
}

// WithParseOptions passes options through to message.Parse.
func WithParseOptions(opts ...message.ParseOption) Option {
	return func(c *Converter) { c.parseOpts = append(c.parseOpts, opts...) }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) { c.logger = l }
}

// New returns a Converter.
func New(opts ...Option) *Converter {
	c := &Converter{
		mode:    Inline,
		suffix:  DefaultSuffix,
		sniffer: sniff.Magic{},
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if !c.customComp {
		c.compressor = transcode.New(transcode.WithLogger(c.logger))
	}

	if c.extensions == nil {
		c.extensions = unpack.NewExtensionTable(nil)
	}

	return c
}

// Mode returns the embedding mode.
func (c *Converter) Mode() Mode {
	return c.mode
}

// OutputPath names the output for the archive at path: the path with its
// extension replaced by the suffix.
func (c *Converter) OutputPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + c.suffix
}

// Convert renders the archive read from r. In Directory mode, blob files are
// written to dir.
//
// Problems parsing the archive are logged and the conversion carries on with
// whatever could be parsed. It fails with unpack.ErrRootNotFound when the
// archive has no document in it.
func (c *Converter) Convert(r io.Reader, dir string) (*unpack.Result, error) {
	msg, err := message.Parse(r, c.parseOpts...)
	var perr *message.ParseError
	if errors.As(err, &perr) {
		for _, e := range perr.Errs {
			c.logger.Warn("problem parsing archive", "error", e)
		}
	} else if err != nil {
		return nil, err
	}

	idx := unpack.NewIndex(msg)
	root, err := unpack.SelectRoot(idx, msg)
	if err != nil {
		return nil, err
	}

	var embedder unpack.Embedder = unpack.Inline{}
	if c.mode == Directory {
		embedder = &unpack.Directory{Dir: dir}
	}

	renderer := unpack.NewRenderer(idx, embedder,
		unpack.WithDescriber(unpack.NewDescriber(c.sniffer, c.extensions)),
		unpack.WithCompressor(c.compressor),
		unpack.WithLogger(c.logger),
	)

	return renderer.RenderRoot(root)
}

// ConvertFile converts the archive at path and writes the result to output,
// or to OutputPath(path) when output is empty. It returns the name of the file
// written.
func (c *Converter) ConvertFile(path, output string) (string, error) {
	if output == "" {
		output = c.OutputPath(path)
	}

	c.logger.Info("handling archive", "path", path)

	in, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("unable to open archive: %w", err)
	}
	defer func() { _ = in.Close() }()

	res, err := c.Convert(in, filepath.Dir(output))
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}

	if err := os.WriteFile(output, res.Data, 0o644); err != nil {
		return "", fmt.Errorf("unable to write output: %w", err)
	}

	c.logger.Info("wrote document",
		"path", path,
		"output", output,
		"bytes", len(res.Data))

	return output, nil
}

// ConvertFiles converts every archive, writing each to its OutputPath, with
// at most jobs conversions running at once. Zero or less means one per
// processor. A failed archive does not stop the others. Every failure is
// logged and all of them are returned joined together.
func (c *Converter) ConvertFiles(ctx context.Context, paths []string, jobs int) error {
	errs := make([]error, len(paths))

	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	g := &errgroup.Group{}
	g.SetLimit(jobs)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}

			if _, err := c.ConvertFile(path, ""); err != nil {
				c.logger.Error("unable to convert archive",
					"path", path,
					"error", err)
				errs[i] = err
			}

			return nil
		})
	}

	_ = g.Wait()

	return errors.Join(errs...)
}
