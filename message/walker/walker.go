// Package walker visits every part of a message tree, depth first, starting
// with the message itself.
package walker

import (
	"github.com/zostay/go-mhtml/message"
)

// Parts is a function that can be processed for each part of a message. The
// depth is 0 for the message itself and i is the position of the part among
// its siblings.
type Parts func(depth, i int, part message.Part) error

// Walk performs a depth first search for all the parts of a message starting
// with the message itself. It calls the Parts function for each part of the
// message. If the function returns an error, then processing stops
// immediately and the error is returned.
func (w Parts) Walk(msg message.Generic) error {
	type part struct {
		depth int
		i     int
		part  message.Part
	}

	openStack := make([]part, 0, 10)

	pushStack := func(depth int, msg message.Part) {
		parts := msg.GetParts()
		for i := len(parts) - 1; i >= 0; i-- {
			openStack = append(openStack, part{depth, i, parts[i]})
		}
	}

	popStack := func() part {
		end := len(openStack) - 1
		p := openStack[end]
		openStack = openStack[:end]
		return p
	}

	openStack = append(openStack, part{0, 0, msg})
	for len(openStack) > 0 {
		p := popStack()
		if err := w(p.depth, p.i, p.part); err != nil {
			return err
		}
		pushStack(p.depth+1, p.part)
	}

	return nil
}

// WalkOpaque will call the Parts function for each leaf part using a depth
// first traversal. It will terminate the walk immediately if the function
// returns an error and will return the error.
func (w Parts) WalkOpaque(msg message.Generic) error {
	var opw Parts = func(depth, i int, part message.Part) error {
		if !part.IsMultipart() {
			return w(depth, i, part)
		}
		return nil
	}
	return opw.Walk(msg)
}

// WalkMultipart will call the Parts function for each multipart branch using
// a depth first traversal. It will terminate the walk immediately if the
// function returns an error and will return that error.
func (w Parts) WalkMultipart(msg message.Generic) error {
	var mlw Parts = func(depth, i int, part message.Part) error {
		if part.IsMultipart() {
			return w(depth, i, part)
		}
		return nil
	}
	return mlw.Walk(msg)
}
