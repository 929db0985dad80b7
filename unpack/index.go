package unpack

import (
	"errors"
	"net/url"
	"slices"
	"strings"

	"github.com/zostay/go-mhtml/message"
	"github.com/zostay/go-mhtml/message/header"
	"github.com/zostay/go-mhtml/message/walker"
)

// Index holds lookup tables over every part of an archive. When two parts
// share a key, the later part in walk order wins.
type Index struct {
	// ByLocation maps Content-Location, resolved against Content-Base, to
	// the part.
	ByLocation map[string]message.Part

	// ByID maps Content-ID to the part. Every ID is stored as written and
	// with the angle brackets stripped.
	ByID map[string]message.Part

	// Starts lists the start parameters of multipart/related parts in the
	// order found, without duplicates.
	Starts []string
}

// JoinURI resolves ref against base. Every URI used as a key in the Index
// and every URI looked up goes through here, so both come out in the same
// form: dot segments removed from absolute URIs and non-ASCII characters
// percent-encoded. A ref that cannot be parsed is returned as is. An empty
// ref returns base.
func JoinURI(base, ref string) string {
	ru, err := url.Parse(ref)
	if err != nil {
		return ref
	}

	if base == "" {
		return normalURI(ru)
	}

	bu, err := url.Parse(base)
	if err != nil {
		return normalURI(ru)
	}

	joined := bu.ResolveReference(ru).String()

	// ResolveReference roots paths joined onto a relative base
	if !isAbsURI(bu) && !isAbsURI(ru) &&
		!strings.HasPrefix(bu.Path, "/") && !strings.HasPrefix(ru.Path, "/") {
		joined = strings.TrimPrefix(joined, "/")
	}

	return joined
}

// isAbsURI reports whether u names a scheme or a host.
func isAbsURI(u *url.URL) bool {
	return u.Scheme != "" || u.Host != ""
}

// normalURI returns u the way ResolveReference would write it.
func normalURI(u *url.URL) string {
	if !isAbsURI(u) {
		return u.String()
	}
	return (&url.URL{}).ResolveReference(u).String()
}

// usable reports whether a header value came back. A repeated field still
// yields its first value.
func usable(err error) bool {
	return err == nil || errors.Is(err, header.ErrManyFields)
}

// NewIndex walks the message once and indexes every part.
func NewIndex(msg message.Generic) *Index {
	idx := &Index{
		ByLocation: map[string]message.Part{},
		ByID:       map[string]message.Part{},
	}

	var indexer walker.Parts = func(_, _ int, part message.Part) error {
		h := part.GetHeader()

		if start, err := h.GetStart(); err == nil && !slices.Contains(idx.Starts, start) {
			idx.Starts = append(idx.Starts, start)
		}

		base, _ := h.GetContentBase()
		if loc, err := h.GetContentLocation(); usable(err) {
			idx.ByLocation[JoinURI(base, loc)] = part
		}

		if cid, err := h.GetContentID(); usable(err) {
			idx.ByID[cid] = part
			idx.ByID[strings.Trim(cid, "<>")] = part
		}

		return nil
	}

	_ = indexer.Walk(msg)

	return idx
}

// Resolve finds the part a reference found in a document points to. A cid:
// reference is looked up by Content-ID. Anything else is resolved against
// base and looked up by location, first with and then without its fragment.
// When the fragment had to be dropped to find the part, it is returned so the
// caller can put it back.
func (idx *Index) Resolve(base, ref string) (message.Part, string) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, ""
	}

	if strings.EqualFold(u.Scheme, "cid") {
		id := u.Opaque
		if id == "" {
			id = u.Path
		}

		if part, found := idx.ByID[id]; found {
			return part, ""
		}

		if unesc, err := url.PathUnescape(id); err == nil {
			if part, found := idx.ByID[unesc]; found {
				return part, ""
			}
		}

		return nil, ""
	}

	abs := JoinURI(base, ref)
	if part, found := idx.ByLocation[abs]; found {
		return part, ""
	}

	if i := strings.IndexByte(abs, '#'); i > -1 {
		if part, found := idx.ByLocation[abs[:i]]; found {
			return part, abs[i:]
		}
	}

	return nil, ""
}
