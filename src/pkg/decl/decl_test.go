package decl

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	pscal "github.com/emkey1/pscal-sub005/src"
)

func newRuntime() *pscal.Runtime {
	var out, errOut bytes.Buffer
	return pscal.NewWithLogger(pscal.DefaultConfig(), pscal.NewLoggerWithWriters(false, &out, &errOut))
}

func TestParseExprShapes(t *testing.T) {
	tests := []struct {
		src  string
		kind pscal.NodeKind
	}{
		{"a", pscal.NodeVariable},
		{"a[1, 2].x", pscal.NodeFieldAccess},
		{"p^", pscal.NodeDereference},
		{"p^.next^.val", pscal.NodeFieldAccess},
		{"s[3]", pscal.NodeArrayAccess},
		{"N - 1", pscal.NodeBinaryOp},
		{"-N", pscal.NodeUnaryOp},
		{"'x'", pscal.NodeString},
		{"#65", pscal.NodeString},
		{"3.5", pscal.NodeNumber},
		{"nil", pscal.NodeNil},
		{"not done", pscal.NodeUnaryOp},
		{"c in s", pscal.NodeBinaryOp},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			node, err := ParseExpr(tt.src)
			if err != nil {
				t.Fatalf("ParseExpr: %v", err)
			}
			if node.Kind != tt.kind {
				t.Errorf("kind = %s, want %s", node.Kind, tt.kind)
			}
		})
	}
}

func TestParseExprStructure(t *testing.T) {
	node, err := ParseExpr("grid[i + 1, 2].cell")
	if err != nil {
		t.Fatal(err)
	}
	if node.Token != "cell" || node.Left.Kind != pscal.NodeArrayAccess {
		t.Fatalf("unexpected tree: %s %s", node.Kind, node.Left.Kind)
	}
	access := node.Left
	if len(access.Children) != 2 || access.Children[0].Kind != pscal.NodeBinaryOp || access.Left.Token != "grid" {
		t.Errorf("array access = %+v", access)
	}

	lit, _ := ParseExpr("'it''s'")
	if lit.Token != "it's" {
		t.Errorf("quoted literal = %q", lit.Token)
	}
	code, _ := ParseExpr("#65")
	if code.Token != "A" {
		t.Errorf("#65 = %q", code.Token)
	}

	// precedence: 1 + 2 * 3
	sum, _ := ParseExpr("1 + 2 * 3")
	if sum.Token != "+" || sum.Right.Token != "*" {
		t.Errorf("precedence: root %q right %q", sum.Token, sum.Right.Token)
	}
}

func TestParseExprErrors(t *testing.T) {
	for _, src := range []string{"", "a[1", "a.", "'open", "1 +", "a b", "#300", "@"} {
		_, err := ParseExpr(src)
		var serr *SyntaxError
		if !errors.As(err, &serr) {
			t.Errorf("ParseExpr(%q) error = %v, want *SyntaxError", src, err)
		}
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		src  string
		kind pscal.NodeKind
	}{
		{"integer", pscal.NodeVariable},
		{"TNode", pscal.NodeTypeReference},
		{"string", pscal.NodeVariable},
		{"string[10]", pscal.NodeVariable},
		{"^TNode", pscal.NodePointerType},
		{"set of char", pscal.NodeSetType},
		{"array[1..3, 0..N-1] of real", pscal.NodeArrayType},
		{"array[TColor] of boolean", pscal.NodeArrayType},
		{"(red, green, blue)", pscal.NodeEnumType},
		{"1..10", pscal.NodeSubrange},
		{"'a'..'z'", pscal.NodeSubrange},
		{"Lo..Hi", pscal.NodeSubrange},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			node, err := ParseType(tt.src)
			if err != nil {
				t.Fatalf("ParseType: %v", err)
			}
			if node.Kind != tt.kind {
				t.Errorf("kind = %s, want %s", node.Kind, tt.kind)
			}
		})
	}

	arr, _ := ParseType("array[1..3, 0..N-1] of string[8]")
	if len(arr.Children) != 2 || arr.Right.Right == nil {
		t.Errorf("array type = %+v", arr)
	}
	if _, err := ParseType("array[1..3] real"); err == nil {
		t.Error("missing 'of' should fail")
	}
}

const sampleDoc = `
consts:
  MaxLen: 10
  Greeting: hello
  Ratio: 0.5
  Debugging: false
  Last: {expr: "MaxLen - 1"}
types:
  TColor: {enum: [red, green, blue]}
  PNode: ^TNode
  TNode:
    record:
      val: integer
      next: PNode
  TName: string[MaxLen]
vars:
  head: PNode
  name: TName
  grid: array[1..3, 0..Last] of real
  color: TColor
  point:
    record:
      x: real
      y: real
  count: {type: integer, init: "MaxLen * 2"}
`

func TestParseAndApply(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc), "sample.yaml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(doc.Consts) != 5 || len(doc.Types) != 4 || len(doc.Vars) != 6 {
		t.Fatalf("parsed %d consts, %d types, %d vars", len(doc.Consts), len(doc.Types), len(doc.Vars))
	}
	if doc.Vars[2].Name != "grid" {
		t.Errorf("declaration order lost: %s", doc.Vars[2].Name)
	}

	rt := newRuntime()
	chain := pscal.NewScopeChain()
	if err := doc.Apply(rt, chain); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if v := chain.Lookup("Ratio").Value; v.Type != pscal.TypeReal || v.Real.F64 != 0.5 {
		t.Errorf("Ratio = %s", pscal.Format(v))
	}
	if v := chain.Lookup("Debugging").Value; v.Type != pscal.TypeBoolean {
		t.Errorf("Debugging type = %s", v.Type)
	}
	if v := chain.Lookup("Last").Value; v.I != 9 || !chain.Lookup("Last").IsConst {
		t.Errorf("Last = %d", v.I)
	}
	if v := chain.Lookup("name").Value; v.MaxLength != 10 {
		t.Errorf("name MaxLength = %d", v.MaxLength)
	}
	if v := chain.Lookup("grid").Value; v.Dimensions != 2 || len(v.Elems) != 30 {
		t.Errorf("grid = %d dims, %d elems", v.Dimensions, len(v.Elems))
	}
	if got := pscal.Format(chain.Lookup("color").Value); got != "red" {
		t.Errorf("color = %s", got)
	}
	if v := chain.Lookup("point").Value; v.Type != pscal.TypeRecord {
		t.Errorf("point type = %s", v.Type)
	}
	if v := chain.Lookup("count").Value; v.I != 20 {
		t.Errorf("count = %d", v.I)
	}

	// the parsed lvalues drive the engine end to end
	if err := rt.New(chain, mustExpr(t, "head")); err != nil {
		t.Fatalf("new(head): %v", err)
	}
	if err := rt.New(chain, mustExpr(t, "head^.next")); err != nil {
		t.Fatalf("new(head^.next): %v", err)
	}
	val := pscal.MakeInt(7)
	if err := rt.AssignValueToLValue(chain, mustExpr(t, "head^.next^.val"), &val); err != nil {
		t.Fatalf("assign: %v", err)
	}
	got, err := rt.Eval(chain, mustExpr(t, "head^.next^.val + 1"))
	if err != nil || got.I != 8 {
		t.Errorf("head^.next^.val + 1 = %d, %v", got.I, err)
	}
}

func mustExpr(t *testing.T, src string) *pscal.Node {
	t.Helper()
	node, err := ParseExpr(src)
	if err != nil {
		t.Fatalf("ParseExpr(%q): %v", src, err)
	}
	return node
}

func TestParseErrorsCarryPosition(t *testing.T) {
	_, err := Parse([]byte("types:\n  Bad: array[1..3] real\n"), "bad.yaml")
	var serr *SyntaxError
	if !errors.As(err, &serr) {
		t.Fatalf("want *SyntaxError, got %v", err)
	}
	if serr.Position == nil || serr.Position.Line != 2 || serr.Position.Filename != "bad.yaml" {
		t.Errorf("position = %+v", serr.Position)
	}

	for _, src := range []string{"- a\n- b\n", "widgets:\n  a: 1\n", "types:\n  T: {nothing: 1}\n", "types:\n  T: {enum: []}\n"} {
		if _, err := Parse([]byte(src), ""); err == nil {
			t.Errorf("Parse(%q) should fail", src)
		}
	}
}

func TestParseEmpty(t *testing.T) {
	doc, err := Parse(nil, "")
	if err != nil {
		t.Fatalf("Parse(nil): %v", err)
	}
	if len(doc.Consts)+len(doc.Types)+len(doc.Vars) != 0 {
		t.Error("empty document produced declarations")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decl.yaml")
	if err := os.WriteFile(path, []byte("vars:\n  n: integer\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	rt := newRuntime()
	chain := pscal.NewScopeChain()
	if _, err := Load(path, rt, chain); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if chain.Lookup("n") == nil {
		t.Error("n not declared")
	}

	_, err := Load(filepath.Join(t.TempDir(), "none.yaml"), rt, chain)
	if err == nil || !strings.Contains(err.Error(), "reading declarations") {
		t.Errorf("missing file error = %v", err)
	}
}
