package styx

import (
	"fmt"
	"strings"
)

// Dump renders doc as the bit-stable S-expression format consumed by the
// compliance harness. The indent unit is two spaces.
func Dump(doc *Document) string {
	if len(doc.Entries) == 0 {
		return "(document [-1, -1]\n)"
	}
	lines := make([]string, len(doc.Entries))
	for i, e := range doc.Entries {
		lines[i] = dumpEntry(e, 1)
	}
	return "(document [-1, -1]\n" + strings.Join(lines, "\n") + "\n)"
}

// DumpError renders err as the error S-expression format. Only
// backslashes in the message are escaped, matching the reference
// compliance renderer's format_error (which does not escape quotes or
// control characters here, unlike scalar text below).
func DumpError(err *ParseError) string {
	msg := strings.ReplaceAll(err.Message, "\\", "\\\\")
	return fmt.Sprintf("(error %s \"parse error at %d-%d: %s\")", err.Span, err.Span.Start, err.Span.End, msg)
}

func escapeString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}

func indentOf(depth int) string {
	return strings.Repeat("  ", depth)
}

func dumpEntry(e Entry, depth int) string {
	prefix := indentOf(depth)
	return prefix + "(entry\n" +
		prefix + "  " + dumpValue(e.Key, depth+1) + "\n" +
		prefix + "  " + dumpValue(e.Value, depth+1) + ")"
}

func dumpValue(v Value, depth int) string {
	prefix := indentOf(depth)

	switch {
	case v.Tag == nil && v.Payload == nil:
		return "(unit " + v.Span.String() + ")"
	case v.Tag != nil && v.Payload == nil:
		return "(tag " + v.Span.String() + " \"" + v.Tag.Name + "\")"
	case v.Tag != nil && v.Payload != nil:
		return "(tag " + v.Span.String() + " \"" + v.Tag.Name + "\"\n" +
			prefix + "  " + dumpPayload(*v.Payload, depth+1) + ")"
	default:
		return dumpPayload(*v.Payload, depth)
	}
}

func dumpPayload(p Payload, depth int) string {
	prefix := indentOf(depth)

	switch {
	case p.Scalar != nil:
		return "(scalar " + p.Scalar.Span.String() + " " + p.Scalar.Kind.String() +
			" \"" + escapeString(p.Scalar.Text) + "\")"

	case p.Sequence != nil:
		if len(p.Sequence.Items) == 0 {
			return "(sequence " + p.Sequence.Span.String() + ")"
		}
		items := make([]string, len(p.Sequence.Items))
		for i, item := range p.Sequence.Items {
			items[i] = prefix + "  " + dumpValue(item, depth+1)
		}
		return "(sequence " + p.Sequence.Span.String() + "\n" + strings.Join(items, "\n") + ")"

	case p.Object != nil:
		if len(p.Object.Entries) == 0 {
			return "(object " + p.Object.Span.String() + ")"
		}
		entries := make([]string, len(p.Object.Entries))
		for i, e := range p.Object.Entries {
			entries[i] = dumpEntry(e, depth+1)
		}
		return "(object " + p.Object.Span.String() + "\n" + strings.Join(entries, "\n") + "\n" + prefix + ")"
	}

	return "(unknown)"
}
