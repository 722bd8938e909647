// Package buffer provides the immutable, versioned text buffer the editing
// engine works against.
//
// A Buffer never changes after construction. Replace returns a new Buffer
// whose version is exactly one greater than the receiver's, so a version
// number uniquely identifies the text a span or suggestion was computed for.
//
// All offsets are character offsets counted in runes:
//
//	buf := buffer.New("Teh cat sat")
//	next, _ := buf.Replace(span.New(0, 3), "The")
//	next.Text()    // "The cat sat"
//	next.Version() // 2
package buffer
