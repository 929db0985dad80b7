package mhtml

// Version is the release of this module, a semantic version without the
// leading v.
const Version = "0.1.0"
