package styx

import "strings"

// pathValueKind distinguishes a path that only exists to hold further
// nested paths (object) from one that has actually been assigned a
// scalar, sequence, or tag-only value (terminal).
type pathValueKind int

const (
	pathTerminal pathValueKind = iota
	pathObject
)

type pathAssignment struct {
	kind pathValueKind
	span Span
}

// pathState is the document-level namespace tracker: it fuses nested
// object keys and dotted-path keys into a
// single namespace so that `a.b = 1` followed by `a.c = 2` is accepted
// (both extend the still-open path `a`) while `a.b = 1` followed by
// `a.b.c = 2` is rejected (`a.b` was already assigned a terminal value).
//
// It is explicit state threaded through document-level parsing by the
// caller, not implicit process state.
type pathState struct {
	currentPath   []string
	closedPaths   map[string]bool
	assignedPaths map[string]pathAssignment
}

func newPathState() *pathState {
	return &pathState{
		closedPaths:   make(map[string]bool),
		assignedPaths: make(map[string]pathAssignment),
	}
}

func joinPath(path []string) string {
	return strings.Join(path, ".")
}

// checkAndUpdate validates path against the tracker's invariants and, if
// valid, records it. It panics with a *ParseError on any violation.
func (ps *pathState) checkAndUpdate(path []string, span Span, kind pathValueKind) {
	full := joinPath(path)

	if existing, ok := ps.assignedPaths[full]; ok {
		if existing.kind == pathTerminal {
			panic(newError(span, "duplicate key"))
		}
		panic(newError(span, "cannot reopen path `%s` after sibling appeared", full))
	}

	for i := 1; i < len(path); i++ {
		prefix := joinPath(path[:i])
		if ps.closedPaths[prefix] {
			panic(newError(span, "cannot reopen path `%s` after sibling appeared", prefix))
		}
		if pa, ok := ps.assignedPaths[prefix]; ok && pa.kind == pathTerminal {
			panic(newError(span, "cannot nest into `%s` which has a terminal value", prefix))
		}
	}

	commonLen := 0
	for i := 0; i < len(path) && i < len(ps.currentPath); i++ {
		if path[i] != ps.currentPath[i] {
			break
		}
		commonLen++
	}
	for i := commonLen; i < len(ps.currentPath); i++ {
		ps.closedPaths[joinPath(ps.currentPath[:i+1])] = true
	}

	for i := 0; i < len(path)-1; i++ {
		prefix := joinPath(path[:i+1])
		if _, ok := ps.assignedPaths[prefix]; !ok {
			ps.assignedPaths[prefix] = pathAssignment{kind: pathObject, span: span}
		}
	}

	ps.assignedPaths[full] = pathAssignment{kind: kind, span: span}
	ps.currentPath = append([]string(nil), path...)
}
