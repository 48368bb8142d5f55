package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	pscal "github.com/emkey1/pscal-sub005/src"
	"github.com/emkey1/pscal-sub005/src/pkg/decl"
)

func newTestShell(t *testing.T) (*shell, *bytes.Buffer) {
	t.Helper()
	var logOut, logErr, out bytes.Buffer
	rt := pscal.NewWithLogger(pscal.DefaultConfig(), pscal.NewLoggerWithWriters(false, &logOut, &logErr))
	return newShell(rt, &out), &out
}

// run executes commands in order, failing on the first error
func run(t *testing.T, sh *shell, lines ...string) {
	t.Helper()
	for _, line := range lines {
		if err := sh.execute(line); err != nil {
			t.Fatalf("%q: %v", line, err)
		}
	}
}

func TestShellScalars(t *testing.T) {
	sh, out := newTestShell(t)
	run(t, sh,
		"var n : integer",
		"set n := 3 + 4",
		"show n",
		"var s : string[5]",
		"set s = 'abcdefgh'",
		"show s",
		"set s[1] := 'X'",
		"show s",
	)
	if got, want := out.String(), "7\nabcde\nXbcde\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestShellPointers(t *testing.T) {
	sh, out := newTestShell(t)
	run(t, sh,
		"var p : ^real",
		"var q : ^real",
		"new p",
		"set p^ := 2.5",
		"set q := p",
		"show q^",
		"heap",
		"dispose p",
		"show q",
		"heap",
	)
	want := "2.5\n1 live cell(s)\n  @1 real = 2.5\nNIL\n0 live cell(s)\n"
	if got := out.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestShellWithDeclarations(t *testing.T) {
	sh, out := newTestShell(t)
	doc, err := decl.Parse([]byte(`
types:
  PNode: ^TNode
  TNode:
    record:
      val: integer
      next: PNode
vars:
  head: PNode
`), "list.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if err := doc.Apply(sh.rt, sh.chain); err != nil {
		t.Fatal(err)
	}
	run(t, sh,
		"new head",
		"set head^.val := 1",
		"new head^.next",
		"set head^.next^.val := head^.val + 1",
		"show head^.next^.val",
		"dump head^",
	)
	got := out.String()
	if !strings.HasPrefix(got, "2\n") {
		t.Errorf("show output = %q", got)
	}
	if !strings.Contains(got, "pscal.Value") {
		t.Errorf("dump output = %q", got)
	}
}

func TestShellScopes(t *testing.T) {
	sh, out := newTestShell(t)
	run(t, sh,
		"var g : integer",
		"push proc",
		"var t : boolean",
		"vars",
		"pop",
	)
	if got := out.String(); !strings.Contains(got, "var global.g: INTEGER = 0") || !strings.Contains(got, "var proc.t: BOOLEAN = FALSE") {
		t.Errorf("vars output = %q", got)
	}
	if err := sh.execute("show t"); !errors.Is(err, pscal.ErrUndeclared) {
		t.Errorf("after pop: %v", err)
	}
	if err := sh.execute("pop"); err == nil {
		t.Error("pop without a local scope should fail")
	}
}

func TestShellErrors(t *testing.T) {
	sh, _ := newTestShell(t)
	run(t, sh, "var n : integer", "# a comment", "")

	tests := []struct {
		line string
		want error
	}{
		{"show missing", pscal.ErrUndeclared},
		{"new n", pscal.ErrNotPointer},
		{"set n[1] := 2", pscal.ErrNotArray},
	}
	for _, tt := range tests {
		if err := sh.execute(tt.line); !errors.Is(err, tt.want) {
			t.Errorf("%q: error = %v, want %v", tt.line, err, tt.want)
		}
	}

	for _, line := range []string{"set n", "var x", "type T", "frobnicate", "show", "show n +"} {
		if err := sh.execute(line); err == nil {
			t.Errorf("%q should fail", line)
		}
	}
	if err := sh.execute("QUIT"); !errors.Is(err, errQuit) {
		t.Errorf("quit returned %v", err)
	}
}

func TestSplitAssignment(t *testing.T) {
	tests := []struct {
		in       string
		lhs, rhs string
		ok       bool
	}{
		{"a := 1", "a", "1", true},
		{"a = 1", "a", "1", true},
		{"a[i = 1] := b <= c", "a[i = 1]", "b <= c", true},
		{"s := 'x=y'", "s", "'x=y'", true},
		{"p^.next := nil", "p^.next", "nil", true},
		{"a", "", "", false},
		{":= 1", "", "1", false},
		{"a :=", "a", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			lhs, rhs, ok := splitAssignment(tt.in)
			if lhs != tt.lhs || rhs != tt.rhs || ok != tt.ok {
				t.Errorf("got (%q, %q, %v), want (%q, %q, %v)", lhs, rhs, ok, tt.lhs, tt.rhs, tt.ok)
			}
		})
	}
}

func TestRunScript(t *testing.T) {
	sh, out := newTestShell(t)
	code := runScript(sh, strings.NewReader("var n : integer\nset n := 5\nshow n\nquit\nshow n\n"), "ok.vsh")
	if code != 0 || out.String() != "5\n" {
		t.Errorf("code = %d, output = %q", code, out.String())
	}

	sh, _ = newTestShell(t)
	if code := runScript(sh, strings.NewReader("var n : integer\nshow m\nshow n\n"), "bad.vsh"); code != 1 {
		t.Errorf("failing script exit code = %d", code)
	}
}

func TestShellWidthTruncation(t *testing.T) {
	sh, out := newTestShell(t)
	sh.width = 10
	sh.println("0123456789abcdef")
	if got := out.String(); got != "0123456...\n" {
		t.Errorf("truncated line = %q", got)
	}
}
