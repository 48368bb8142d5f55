package pscal

import (
	"errors"
	"testing"
)

// listFixture declares PNode = ^TNode; TNode = record val: integer; next: PNode end
func listFixture(t *testing.T, rt *Runtime) *ScopeChain {
	t.Helper()
	chain := NewScopeChain()
	rt.DeclareType(chain, "PNode", PointerType(TypeRef("TNode", nil)))
	rt.DeclareType(chain, "TNode", RecordType(
		Field{Names: []string{"val"}, TypeDef: Ident("integer")},
		Field{Names: []string{"next"}, TypeDef: TypeRef("PNode", nil)},
	))
	for _, name := range []string{"a", "b"} {
		if _, err := rt.DeclareVar(chain, name, TypeRef("PNode", nil)); err != nil {
			t.Fatalf("DeclareVar %s: %v", name, err)
		}
	}
	return chain
}

func TestNewAllocatesPointee(t *testing.T) {
	rt, _ := newTestRuntime(t, nil)
	chain := listFixture(t, rt)

	if err := rt.New(chain, Ident("a")); err != nil {
		t.Fatalf("New: %v", err)
	}
	a := chain.Lookup("a").Value
	if a.Ptr == 0 {
		t.Fatal("a is still nil")
	}
	node, err := rt.Deref(a)
	if err != nil {
		t.Fatalf("Deref: %v", err)
	}
	if node.Type != TypeRecord || findField(node, "next") == nil {
		t.Errorf("pointee = %s", rt.Format(node))
	}

	// New never disposes the previous pointee
	if err := rt.New(chain, Ident("a")); err != nil {
		t.Fatalf("second New: %v", err)
	}
	if rt.Heap().Live() != 2 {
		t.Errorf("live cells = %d, want 2", rt.Heap().Live())
	}
}

func TestPointeeAssignmentAndLinking(t *testing.T) {
	rt, _ := newTestRuntime(t, nil)
	chain := listFixture(t, rt)

	if err := rt.New(chain, Ident("a")); err != nil {
		t.Fatal(err)
	}
	val := MakeInt(42)
	if err := rt.AssignValueToLValue(chain, FieldAccess(Deref(Ident("a")), "val"), &val); err != nil {
		t.Fatalf("a^.val := 42: %v", err)
	}
	next := FieldAccess(Deref(Ident("a")), "next")
	if err := rt.New(chain, next); err != nil {
		t.Fatalf("new(a^.next): %v", err)
	}
	nine := MakeInt(9)
	if err := rt.AssignValueToLValue(chain, FieldAccess(Deref(next), "val"), &nine); err != nil {
		t.Fatalf("a^.next^.val := 9: %v", err)
	}

	got, err := rt.Eval(chain, FieldAccess(Deref(next), "val"))
	if err != nil || got.I != 9 {
		t.Errorf("a^.next^.val = %v, %v", got.I, err)
	}
	got, _ = rt.Eval(chain, FieldAccess(Deref(Ident("a")), "val"))
	if got.I != 42 {
		t.Errorf("a^.val = %d", got.I)
	}
}

func TestDisposeNullifiesAliases(t *testing.T) {
	rt, _ := newTestRuntime(t, nil)
	chain := listFixture(t, rt)

	if err := rt.New(chain, Ident("a")); err != nil {
		t.Fatal(err)
	}
	alias, _ := rt.Eval(chain, Ident("a"))
	if err := rt.AssignValueToLValue(chain, Ident("b"), &alias); err != nil {
		t.Fatal(err)
	}

	chain.PushLocal("proc")
	if _, err := rt.DeclareVar(chain, "local", TypeRef("PNode", nil)); err != nil {
		t.Fatal(err)
	}
	if err := rt.AssignValueToLValue(chain, Ident("local"), &alias); err != nil {
		t.Fatal(err)
	}

	if err := rt.Dispose(chain, Ident("a")); err != nil {
		t.Fatalf("Dispose: %v", err)
	}
	for _, name := range []string{"a", "b", "local"} {
		if p := chain.Lookup(name).Value.Ptr; p != 0 {
			t.Errorf("%s still holds @%d", name, p)
		}
	}
	if rt.Heap().Live() != 0 {
		t.Errorf("live cells = %d, want 0", rt.Heap().Live())
	}
	if _, err := rt.Deref(&alias); !errors.Is(err, ErrDanglingPointer) {
		t.Errorf("deref of a released address: got %v", err)
	}
}

func TestDisposeNilAndNonPointer(t *testing.T) {
	rt, _ := newTestRuntime(t, nil)
	chain := listFixture(t, rt)
	if _, err := rt.DeclareVar(chain, "n", Ident("integer")); err != nil {
		t.Fatal(err)
	}

	if err := rt.Dispose(chain, Ident("a")); err != nil {
		t.Errorf("dispose(nil) should be a no-op, got %v", err)
	}
	if err := rt.Dispose(chain, Ident("n")); !errors.Is(err, ErrNotPointer) {
		t.Errorf("dispose(integer): got %v, want ErrNotPointer", err)
	}
	if err := rt.New(chain, Ident("n")); !errors.Is(err, ErrNotPointer) {
		t.Errorf("new(integer): got %v, want ErrNotPointer", err)
	}
}

func TestNestedAliasSweep(t *testing.T) {
	setup := func(t *testing.T, config *Config) (*Runtime, *ScopeChain) {
		rt, _ := newTestRuntime(t, config)
		chain := listFixture(t, rt)
		if _, err := rt.DeclareVar(chain, "holder", TypeRef("TNode", nil)); err != nil {
			t.Fatal(err)
		}
		if err := rt.New(chain, Ident("a")); err != nil {
			t.Fatal(err)
		}
		alias, _ := rt.Eval(chain, Ident("a"))
		if err := rt.AssignValueToLValue(chain, FieldAccess(Ident("holder"), "next"), &alias); err != nil {
			t.Fatal(err)
		}
		if err := rt.Dispose(chain, Ident("a")); err != nil {
			t.Fatal(err)
		}
		return rt, chain
	}

	t.Run("top-level only by default", func(t *testing.T) {
		rt, chain := setup(t, nil)
		nested := findField(chain.Lookup("holder").Value, "next").Value
		if nested.Ptr == 0 {
			t.Fatal("nested alias should survive the default sweep")
		}
		if _, err := rt.Deref(&nested); !errors.Is(err, ErrDanglingPointer) {
			t.Errorf("deref of stale nested alias: got %v", err)
		}
		err := rt.Dispose(chain, FieldAccess(Ident("holder"), "next"))
		if !errors.Is(err, ErrDanglingPointer) {
			t.Errorf("second dispose through stale alias: got %v", err)
		}
	})

	t.Run("nested sweep enabled", func(t *testing.T) {
		config := DefaultConfig()
		config.SweepNestedPointers = true
		_, chain := setup(t, config)
		if p := findField(chain.Lookup("holder").Value, "next").Value.Ptr; p != 0 {
			t.Errorf("holder.next still holds @%d", p)
		}
	})
}

func TestNewDefaultPointee(t *testing.T) {
	t.Run("integer", func(t *testing.T) {
		rt, _ := newTestRuntime(t, nil)
		chain := NewScopeChain()
		if _, err := rt.DeclareVar(chain, "p", Ident("pointer")); err != nil {
			t.Fatal(err)
		}
		if err := rt.New(chain, Ident("p")); err != nil {
			t.Fatal(err)
		}
		p := chain.Lookup("p").Value
		target, err := rt.Deref(p)
		if err != nil || target.Type != TypeInteger {
			t.Errorf("pointee = %v, %v", target, err)
		}
		if p.BaseTypeNode == nil {
			t.Error("base type not recorded on the pointer")
		}
	})

	t.Run("configured", func(t *testing.T) {
		config := DefaultConfig()
		config.DefaultPointee = "real"
		rt, _ := newTestRuntime(t, config)
		chain := NewScopeChain()
		if _, err := rt.DeclareVar(chain, "p", Ident("pointer")); err != nil {
			t.Fatal(err)
		}
		if err := rt.New(chain, Ident("p")); err != nil {
			t.Fatal(err)
		}
		target, _ := rt.Deref(chain.Lookup("p").Value)
		if target == nil || target.Type != TypeReal {
			t.Errorf("pointee = %v", target)
		}
	})

	t.Run("builtin base name", func(t *testing.T) {
		rt, _ := newTestRuntime(t, nil)
		chain := NewScopeChain()
		if _, err := rt.DeclareVar(chain, "p", PointerType(TypeRef("real", nil))); err != nil {
			t.Fatal(err)
		}
		if err := rt.New(chain, Ident("p")); err != nil {
			t.Fatal(err)
		}
		target, _ := rt.Deref(chain.Lookup("p").Value)
		if target == nil || target.Type != TypeReal {
			t.Errorf("pointee = %v", target)
		}
		if name := rt.Heap().TypeName(chain.Lookup("p").Value.Ptr); name != "real" {
			t.Errorf("heap type name = %q", name)
		}
	})
}

func TestNewObj(t *testing.T) {
	rt, _ := newTestRuntime(t, nil)
	chain := listFixture(t, rt)

	p, err := rt.NewObj(chain, "TNode")
	if err != nil {
		t.Fatalf("NewObj: %v", err)
	}
	target, err := rt.Deref(&p)
	if err != nil || target.Type != TypeRecord {
		t.Errorf("pointee = %v, %v", target, err)
	}
	if rt.Heap().TypeName(p.Ptr) != "TNode" {
		t.Errorf("heap type name = %q", rt.Heap().TypeName(p.Ptr))
	}
	if _, err := rt.NewObj(chain, "Nothing"); !errors.Is(err, ErrUndeclared) {
		t.Errorf("unknown type: got %v", err)
	}
}

func TestDerefNil(t *testing.T) {
	rt, _ := newTestRuntime(t, nil)
	chain := listFixture(t, rt)
	_, err := rt.Eval(chain, Deref(Ident("a")))
	if !errors.Is(err, ErrNilPointer) {
		t.Errorf("got %v, want ErrNilPointer", err)
	}
}
