package unpack

// Seen is the chain of part digests being rendered along the current path of
// references. A nil *Seen is the empty chain and is ready to use. A Seen is
// never modified, so sibling references never observe each other.
type Seen struct {
	parent *Seen
	digest string
}

// With returns a new chain extending s with digest.
func (s *Seen) With(digest string) *Seen {
	return &Seen{parent: s, digest: digest}
}

// Has returns true if digest is anywhere on the chain.
func (s *Seen) Has(digest string) bool {
	for ; s != nil; s = s.parent {
		if s.digest == digest {
			return true
		}
	}
	return false
}
