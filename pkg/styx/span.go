package styx

import "fmt"

// Span is a byte range [Start, End) into the original source. A synthetic
// span of (-1, -1) marks a node that has no corresponding source text: the
// implicit root key of an explicit root object, and unit keys synthesized
// when an object appears in key position.
type Span struct {
	Start int
	End   int
}

// synthetic is the span recorded for nodes that do not occur in source.
var synthetic = Span{Start: -1, End: -1}

func (s Span) String() string {
	return fmt.Sprintf("[%d, %d]", s.Start, s.End)
}

// IsSynthetic reports whether s is the (-1, -1) marker span.
func (s Span) IsSynthetic() bool {
	return s.Start < 0 && s.End < 0
}
