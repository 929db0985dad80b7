package header

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	gomessage "github.com/emersion/go-message"
	"github.com/emersion/go-message/textproto"
	"github.com/zostay/go-addr/pkg/addr"
)

// Errors returned by various header methods and functions.
var (
	// ErrNoSuchField is returned by Header methods when the operation
	// being performed failed because the header named does not exist.
	ErrNoSuchField = errors.New("no such header field")

	// ErrNoSuchFieldParameter is returned by Header methods when the
	// operation being performed failed because the header exists, but a
	// sub-field of the header does not exist.
	ErrNoSuchFieldParameter = errors.New("no such header field parameter")

	// ErrManyFields is returned by Header methods when the operation
	// being performed failed because the there are multiple fields with the
	// given name.
	ErrManyFields = errors.New("many header fields found")
)

// These are the header fields an MHTML archive relies upon, plus the few
// RFC 5322 fields worth reporting about an archive.
const (
	ContentBase             = "Content-base"
	ContentID               = "Content-id"
	ContentLocation         = "Content-location"
	ContentTransferEncoding = "Content-transfer-encoding"
	ContentType             = "Content-type"
	Date                    = "Date"
	From                    = "From"
	Subject                 = "Subject"
)

// Parameters of the Content-type field.
const (
	ParamBoundary = "boundary"
	ParamCharset  = "charset"
	ParamStart    = "start"
)

// Even more custom date formats, built from those seen in the wild that the
// usual parsers have trouble with.
const (
	// UnixDateWithEarlyYear is a weird one, eh?
	UnixDateWithEarlyYear = "Mon Jan 02 15:04:05 2006 MST"
)

// mediaType is the parsed form of the Content-type field kept in the value
// cache.
type mediaType struct {
	value  string
	params map[string]string
}

// Header wraps the go-message header, which does the actual storage and
// low-level field manipulation. This provides the typed getters the rest of
// this module uses and some caching for complex values parsed from header
// fields.
//
// The getter methods of this object will return an error if the field being
// fetched has not been set on the header. The error returned will be
// ErrNoSuchField.
type Header struct {
	gomessage.Header

	// valueCache holds the semantic value for a header. Only immutable values
	// may be stored here.
	valueCache map[string]any
}

// New wraps a header read by the go-message textproto reader.
func New(h textproto.Header) *Header {
	return &Header{Header: gomessage.Header{Header: h}}
}

// getValue retrieves the cached value. The first value is the cached value
// (which may be nil). The second value is a boolean that returns true if the
// cache value was set.
func (h *Header) getValue(name string) (any, bool) {
	v, found := h.valueCache[strings.ToLower(name)]
	return v, found
}

// setValue replaces the cached value for the given name.
func (h *Header) setValue(name string, value any) {
	if h.valueCache == nil {
		h.valueCache = make(map[string]any, 4)
	}
	h.valueCache[strings.ToLower(name)] = value
}

// Get retrieves the string value of the named field. Folded values are
// unfolded and surrounding whitespace is trimmed.
//
// If the named field is not set in the header, it will return an empty string
// with ErrNoSuchField. If there are multiple headers for the given named field,
// it will return the first value found and return ErrManyFields.
func (h *Header) Get(name string) (string, error) {
	if !h.Has(name) {
		return "", ErrNoSuchField
	}

	b := unfold(h.Header.Get(name))

	n := 0
	fs := h.FieldsByKey(name)
	for fs.Next() {
		n++
	}
	if n > 1 {
		return b, ErrManyFields
	}

	return b, nil
}

// unfold removes line breaks left behind by folding.
func unfold(v string) string {
	if strings.ContainsAny(v, "\r\n") {
		v = strings.NewReplacer("\r\n", "", "\r", "", "\n", "").Replace(v)
	}
	return strings.TrimSpace(v)
}

// getMediaType parses the Content-type field and caches the result.
func (h *Header) getMediaType() (*mediaType, error) {
	if v, found := h.getValue(ContentType); found {
		if mt, isMT := v.(*mediaType); isMT {
			return mt, nil
		}
	}

	if !h.Has(ContentType) {
		return nil, ErrNoSuchField
	}

	v, params, err := h.Header.ContentType()
	if err != nil {
		// keep the type itself when only the parameters are broken
		base, _, _ := strings.Cut(h.Header.Get(ContentType), ";")
		base = strings.TrimSpace(base)
		if !strings.Contains(base, "/") {
			return nil, fmt.Errorf("unable to parse %s: %w", ContentType, err)
		}
		v, params = base, map[string]string{}
	}

	mt := &mediaType{strings.ToLower(v), params}
	h.setValue(ContentType, mt)

	return mt, nil
}

// GetMediaType returns the MIME type set in the Content-type header (other
// parameters will not be returned). The value is always lower case.
//
// It returns an empty string and ErrNoSuchField if the field is not set on
// the header. It will return an error if there is a problem parsing the media
// type information out of the header.
func (h *Header) GetMediaType() (string, error) {
	mt, err := h.getMediaType()
	if err != nil {
		return "", err
	}
	return mt.value, nil
}

// GetParam returns the named parameter of the Content-type header.
//
// It returns an empty string with ErrNoSuchField if the field is not set,
// and ErrNoSuchFieldParameter if the field is set without the parameter.
func (h *Header) GetParam(p string) (string, error) {
	mt, err := h.getMediaType()
	if err != nil {
		return "", err
	}

	v, found := mt.params[p]
	if !found {
		return "", ErrNoSuchFieldParameter
	}

	return v, nil
}

// GetCharset gets the charset from the Content-type header field.
func (h *Header) GetCharset() (string, error) {
	return h.GetParam(ParamCharset)
}

// GetBoundary gets the boundary from the Content-type header field.
func (h *Header) GetBoundary() (string, error) {
	return h.GetParam(ParamBoundary)
}

// GetStart gets the start parameter of a multipart/related Content-type. It
// names the Content-ID of the root part of the related set (RFC 2387).
func (h *Header) GetStart() (string, error) {
	return h.GetParam(ParamStart)
}

// GetContentID returns the Content-ID field exactly as written, angle brackets
// included.
func (h *Header) GetContentID() (string, error) {
	return h.Get(ContentID)
}

// GetContentLocation returns the Content-Location field. Encoded words are
// decoded, as some archivers encode non-ASCII URLs that way. RFC 2557 allows
// long URLs to be folded, so all whitespace is removed.
func (h *Header) GetContentLocation() (string, error) {
	return h.getURI(ContentLocation)
}

// GetContentBase returns the Content-Base field (RFC 2110). It was dropped from
// RFC 2557, but older archives still carry it.
func (h *Header) GetContentBase() (string, error) {
	return h.getURI(ContentBase)
}

// getURI is getText with all whitespace squeezed out.
func (h *Header) getURI(name string) (string, error) {
	v, err := h.getText(name)
	return strings.Join(strings.Fields(v), ""), err
}

// GetTransferEncoding returns the Content-transfer-encoding in lower case.
func (h *Header) GetTransferEncoding() (string, error) {
	v, err := h.Get(ContentTransferEncoding)
	return strings.ToLower(v), err
}

// GetSubject returns the Subject with any encoded words decoded.
func (h *Header) GetSubject() (string, error) {
	return h.getText(Subject)
}

// getText is Get with RFC 2047 decoding. Undecodable values are returned
// as they are.
func (h *Header) getText(name string) (string, error) {
	raw, err := h.Get(name)
	if err != nil && !errors.Is(err, ErrManyFields) {
		return raw, err
	}

	if t, terr := h.Header.Text(name); terr == nil {
		return unfold(t), err
	}

	return raw, err
}

// ParseTime is a function that provides the time parsing used by GetTime() and
// GetDate() to parse dates to be used on any field body. This will attempt to
// parse the date using the format specified by RFC 5322 first and fallback to
// parsing it in many other formats.
//
// It either returns a parsed time or the parse error.
func ParseTime(body string) (time.Time, error) {
	t, err := mail.ParseDate(body)
	if err == nil {
		return t, nil
	}

	t, err = dateparse.ParseAny(body)
	if err == nil {
		return t, nil
	}

	t, err = time.Parse(UnixDateWithEarlyYear, body)
	if err == nil {
		return t, nil
	}

	return t, fmt.Errorf("time string %q cannot be parsed", body)
}

// GetTime gets the given date header field as a time.Time. It will attempt to
// parse the date in many formats, not just the format specified by RFC 5322
// (though, it will try that first).
//
// It will return the zero value and ErrNoSuchField if the header does not
// exist.
func (h *Header) GetTime(name string) (time.Time, error) {
	if v, found := h.getValue(name); found {
		if t, isTime := v.(time.Time); isTime {
			return t, nil
		}
	}

	body, err := h.Get(name)
	if err != nil && !errors.Is(err, ErrManyFields) {
		return time.Time{}, err
	}

	t, err := ParseTime(body)
	if err != nil {
		return t, err
	}

	h.setValue(name, t)

	return t, nil
}

// GetDate returns the Date field as a time.Time.
func (h *Header) GetDate() (time.Time, error) {
	return h.GetTime(Date)
}

// ParseAddressList will parse an address list from the given string. This
// works hard to return something. If the strict parser gives up, every
// comma-separated chunk is stuffed into a mailbox as-is, the display name
// being everything before the last word.
func ParseAddressList(body string) addr.AddressList {
	al, err := addr.ParseEmailAddressList(body)
	if err == nil {
		return al
	}

	mbs := strings.Split(body, ",")
	al = make(addr.AddressList, 0, len(mbs))
	for _, orig := range mbs {
		words := strings.Fields(orig)
		if len(words) == 0 {
			continue
		}

		email := strings.Trim(words[len(words)-1], "<>")
		dn := strings.Trim(strings.Join(words[:len(words)-1], " "), `"`)

		local, domain := email, ""
		if i := strings.LastIndex(email, "@"); i > -1 {
			local, domain = email[:i], email[i+1:]
		}

		spec := addr.NewAddrSpecParsed(local, domain, email)
		mb, err := addr.NewMailboxParsed(dn, spec, "", orig)
		if err != nil {
			continue
		}

		al = append(al, mb)
	}

	return al
}

// GetAddressList will return an addr.AddressList for the named field.
//
// It will return nil and ErrNoSuchField if the field is not set on the header.
func (h *Header) GetAddressList(name string) (addr.AddressList, error) {
	if v, found := h.getValue(name); found {
		if al, isAddrList := v.(addr.AddressList); isAddrList {
			return al, nil
		}
	}

	body, err := h.getText(name)
	if err != nil && !errors.Is(err, ErrManyFields) {
		return nil, err
	}

	al := ParseAddressList(body)
	h.setValue(name, al)

	return al, nil
}

// GetFrom returns the From field as an address list. Browsers usually write
// something like "Saved by Blink" here.
func (h *Header) GetFrom() (addr.AddressList, error) {
	return h.GetAddressList(From)
}
