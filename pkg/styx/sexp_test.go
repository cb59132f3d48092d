package styx

import (
	"strings"
	"testing"

	"github.com/kylelemons/godebug/pretty"
)

func TestDumpEmptyDocument(t *testing.T) {
	doc := mustParse(t, "")
	got := Dump(doc)
	want := "(document [-1, -1]\n)"
	if got != want {
		t.Errorf("Dump(empty) = %q, want %q", got, want)
	}
}

func TestDumpSimpleEntry(t *testing.T) {
	doc := mustParse(t, "a 1\n")
	got := Dump(doc)
	want := "(document [-1, -1]\n" +
		"  (entry\n" +
		"    (scalar [0, 1] bare \"a\")\n" +
		"    (scalar [2, 3] bare \"1\"))\n" +
		")"
	if got != want {
		t.Errorf("Dump mismatch:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestDumpEscapesScalarText(t *testing.T) {
	doc := mustParse(t, "a \"x\ty\"\n")
	got := Dump(doc)
	if !strings.Contains(got, `\t`) {
		t.Errorf("Dump output %q, want an escaped tab", got)
	}
}

func TestDumpEmptyObjectAndSequence(t *testing.T) {
	doc := mustParse(t, "a {}\nb ()\n")
	got := Dump(doc)
	if !strings.Contains(got, "(object [2, 4])") {
		t.Errorf("Dump output %q, want an empty object rendered inline", got)
	}
	if !strings.Contains(got, "(sequence [7, 9])") {
		t.Errorf("Dump output %q, want an empty sequence rendered inline", got)
	}
}

// TestDumpWholeDocumentAcceptance diffs a multi-entry document's rendered
// form against a fixed golden sexp string, the way marshal_test.go diffs
// rendered YANG output against golden text.
func TestDumpWholeDocumentAcceptance(t *testing.T) {
	doc := mustParse(t, "server host>localhost port>8080\nfeature @enabled\n")
	got := Dump(doc)
	want := "(document [-1, -1]\n" +
		"  (entry\n" +
		"    (scalar [0, 6] bare \"server\")\n" +
		"    (object [7, 31]\n" +
		"      (entry\n" +
		"        (scalar [7, 11] bare \"host\")\n" +
		"        (scalar [12, 21] bare \"localhost\"))\n" +
		"      (entry\n" +
		"        (scalar [22, 26] bare \"port\")\n" +
		"        (scalar [27, 31] bare \"8080\"))\n" +
		"    ))\n" +
		"  (entry\n" +
		"    (scalar [32, 39] bare \"feature\")\n" +
		"    (tag [40, 48] \"enabled\"))\n" +
		")"
	if diff := pretty.Compare(got, want); diff != "" {
		t.Errorf("Dump diff (-got +want):\n%s", diff)
	}
}

func TestDumpError(t *testing.T) {
	pe := mustFail(t, "a 1\na 2\n")
	got := DumpError(pe)
	want := "(error [4, 5] \"parse error at 4-5: duplicate key\")"
	if got != want {
		t.Errorf("DumpError = %q, want %q", got, want)
	}
}

func TestDumpErrorEscapesOnlyBackslash(t *testing.T) {
	pe := &ParseError{Message: `bad "quote" and \backslash`, Span: Span{0, 1}}
	got := DumpError(pe)
	want := `(error [0, 1] "parse error at 0-1: bad "quote" and \\backslash")`
	if got != want {
		t.Errorf("DumpError = %q, want %q", got, want)
	}
}
