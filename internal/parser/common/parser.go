package common

// Parser is the capability every format-specific implementation provides:
// given a path and options, produce the event stream described in
// spec.md §4.2. The chatlabjson and chatlabjsonl parsers and the
// line-oriented TXT parsers read their input incrementally and hold at most
// one batch of messages; the wechat, instagram and discord parsers decode
// the whole JSON document into memory before emitting batches.
type Parser interface {
	// FormatID identifies which format.Descriptor this parser implements.
	FormatID() string
	// Parse runs synchronously, sending events to out until Done or Error,
	// then closing out. Callers should run it in its own goroutine.
	Parse(path string, opts Options, out chan<- Event)
}
