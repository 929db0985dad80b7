package transfer

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
)

// uuDecoder decodes the whole body on the first read. Bodies with no begin
// line are passed through untouched.
type uuDecoder struct {
	r   io.Reader
	out *bytes.Reader
	err error
}

// NewUUDecoder will read uuencoded data from the given io.Reader and return
// the binary data through the returned io.Reader.
func NewUUDecoder(r io.Reader) io.Reader {
	return &uuDecoder{r: r}
}

func (d *uuDecoder) Read(p []byte) (int, error) {
	if d.out == nil {
		b, err := decodeUU(d.r)
		d.out, d.err = bytes.NewReader(b), err
	}

	n, err := d.out.Read(p)
	if errors.Is(err, io.EOF) && d.err != nil {
		return n, d.err
	}
	return n, err
}

func decodeUU(r io.Reader) ([]byte, error) {
	var (
		raw     bytes.Buffer
		out     bytes.Buffer
		started bool
	)

	sc := bufio.NewScanner(io.TeeReader(r, &raw))
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if !started {
			started = strings.HasPrefix(line, "begin ")
			continue
		}

		if line == "end" {
			break
		}

		if line == "" {
			continue
		}

		n := int((line[0] - ' ') & 0x3f)
		if n == 0 {
			continue
		}

		chars := line[1:]
		var dec []byte
		for i := 0; i < len(chars) && len(dec) < n; i += 4 {
			var c [4]byte
			for j := range c {
				if i+j < len(chars) {
					c[j] = (chars[i+j] - ' ') & 0x3f
				}
			}
			dec = append(dec,
				c[0]<<2|c[1]>>4,
				c[1]<<4|c[2]>>2,
				c[2]<<6|c[3],
			)
		}

		if len(dec) > n {
			dec = dec[:n]
		}
		out.Write(dec)
	}

	if err := sc.Err(); err != nil {
		return out.Bytes(), err
	}

	if !started {
		return raw.Bytes(), nil
	}

	return out.Bytes(), nil
}
