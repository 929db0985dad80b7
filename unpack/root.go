package unpack

import (
	"errors"

	"github.com/zostay/go-mhtml/message"
	"github.com/zostay/go-mhtml/message/walker"
)

// ErrRootNotFound is returned by SelectRoot when the archive has no part that
// could serve as the document.
var ErrRootNotFound = errors.New("unable to find the root part")

// errFound stops the walk in SelectRoot.
var errFound = errors.New("found")

// SelectRoot picks the part to render. The first start parameter that names a
// Content-ID in the index wins. Otherwise, the first leaf part in depth first
// order is used, which may be the message itself.
func SelectRoot(idx *Index, msg message.Generic) (message.Part, error) {
	for _, start := range idx.Starts {
		if part, found := idx.ByID[start]; found {
			return part, nil
		}
	}

	if msg == nil {
		return nil, ErrRootNotFound
	}

	var root message.Part
	var first walker.Parts = func(_, _ int, part message.Part) error {
		root = part
		return errFound
	}

	_ = first.WalkOpaque(msg)
	if root == nil {
		return nil, ErrRootNotFound
	}

	return root, nil
}
