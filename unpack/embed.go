package unpack

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Embedder decides how a referenced part appears in the document referring to
// it. Embed returns the new value of the reference. When ok is false, the part
// is already being rendered further up the chain and the reference must be
// left alone.
type Embedder interface {
	Embed(r *Renderer, d *Descriptor, seen *Seen) (ref string, ok bool, err error)
}

// renderEmbedded renders the part with its digest added to the chain and
// compresses the result.
func renderEmbedded(r *Renderer, d *Descriptor, seen *Seen) ([]byte, string, error) {
	res, err := r.Render(d, seen.With(d.Digest))
	if err != nil {
		return nil, "", err
	}

	return r.Compress(res.Data, res.ContentType)
}

// Inline embeds parts as base64 data: URIs.
type Inline struct{}

// Embed returns a data: URI holding the rendered part.
func (Inline) Embed(r *Renderer, d *Descriptor, seen *Seen) (string, bool, error) {
	if seen.Has(d.Digest) {
		return "", false, nil
	}

	data, ct, err := renderEmbedded(r, d, seen)
	if err != nil {
		return "", false, err
	}

	return "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(data), true, nil
}

// Directory writes parts to files named blob=<digest><extension> in Dir and
// refers to them by name. A file that already exists is assumed to hold the
// part and is not written again.
type Directory struct {
	Dir string
}

// BlobName returns the name of the file holding the part.
func BlobName(d *Descriptor) string {
	return "blob=" + d.Digest + d.Extension
}

// Embed writes the rendered part to its blob file, unless the file exists,
// and returns the name of the file.
func (e *Directory) Embed(r *Renderer, d *Descriptor, seen *Seen) (string, bool, error) {
	name := BlobName(d)
	path := filepath.Join(e.Dir, name)

	if _, err := os.Stat(path); err == nil {
		return name, true, nil
	}

	if seen.Has(d.Digest) {
		return "", false, nil
	}

	// an empty file claims the name while the part renders
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return name, true, nil
	} else if err != nil {
		return "", false, fmt.Errorf("unable to create %s: %w", path, err)
	}

	data, _, err := renderEmbedded(r, d, seen)
	if err != nil {
		_ = f.Close()
		return "", false, err
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return "", false, fmt.Errorf("unable to write %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return "", false, fmt.Errorf("unable to write %s: %w", path, err)
	}

	return name, true, nil
}
