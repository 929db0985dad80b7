package transcode

import (
	"bytes"
	"image"
	_ "image/gif" // register the GIF decoder
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
)

// ImageShrinker is the default ImageTranscoder. Images with a palette are
// written as PNG and everything else as JPEG.
type ImageShrinker struct {
	// MaxDimension bounds the width and height of the output. Zero or less
	// disables scaling.
	MaxDimension int

	// Quality is the JPEG quality, from 1 to 100.
	Quality int
}

// constrain scales the short side by the same factor that brings the longer
// side down to limit.
func constrain(longer, short, limit int) (int, int) {
	if longer <= limit {
		return longer, short
	}

	short = short * limit / longer
	if short < 1 {
		short = 1
	}

	return limit, short
}

// Size returns the dimensions an image of the given size will be scaled to.
func (s *ImageShrinker) Size(width, height int) (int, int) {
	if s.MaxDimension <= 0 {
		return width, height
	}

	if width > height {
		return constrain(width, height, s.MaxDimension)
	}

	h, w := constrain(height, width, s.MaxDimension)
	return w, h
}

// Transcode decodes the image, scales it down if it is too large, and encodes
// it again. Data that cannot be decoded as an image is returned unchanged.
func (s *ImageShrinker) Transcode(data []byte) ([]byte, string, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data, "", nil
	}

	_, paletted := src.(*image.Paletted)

	b := src.Bounds()
	w, h := s.Size(b.Dx(), b.Dy())
	if w != b.Dx() || h != b.Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
		src = dst
	}

	buf := &bytes.Buffer{}
	if paletted {
		enc := &png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(buf, src); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "image/png", nil
	}

	q := s.Quality
	if q <= 0 {
		q = jpeg.DefaultQuality
	}

	if err := jpeg.Encode(buf, src, &jpeg.Options{Quality: q}); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), "image/jpeg", nil
}
