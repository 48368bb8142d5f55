package main

// This is an example of using pscal as a library in a Go application

import (
	"errors"
	"fmt"
	"os"

	"github.com/emkey1/pscal-sub005"
)

func main() {
	config := pscal.DefaultConfig()
	config.Debug = true
	config.LogCategories = []string{"pointer", "memory"}
	rt := pscal.New(config)
	chain := rt.Scopes

	// type PNode = ^TNode; TNode = record val: integer; next: PNode end;
	rt.DeclareType(chain, "PNode", pscal.PointerType(pscal.TypeRef("TNode", nil)))
	rt.DeclareType(chain, "TNode", pscal.RecordType(
		pscal.Field{Names: []string{"val"}, TypeDef: pscal.Ident("integer")},
		pscal.Field{Names: []string{"next"}, TypeDef: pscal.TypeRef("PNode", nil)},
	))

	// var head, alias: PNode; grid: array[1..2, 1..3] of real;
	for _, name := range []string{"head", "alias"} {
		if _, err := rt.DeclareVar(chain, name, pscal.TypeRef("PNode", nil)); err != nil {
			fail(err)
		}
	}
	gridType := pscal.ArrayType(pscal.Ident("real"),
		pscal.Subrange(pscal.Number(1), pscal.Number(2)),
		pscal.Subrange(pscal.Number(1), pscal.Number(3)))
	if _, err := rt.DeclareVar(chain, "grid", gridType); err != nil {
		fail(err)
	}

	// grid[2, 3] := 1.5
	cell := pscal.ArrayAccess(pscal.Ident("grid"), pscal.Number(2), pscal.Number(3))
	v := pscal.MakeReal(1.5)
	if err := rt.AssignValueToLValue(chain, cell, &v); err != nil {
		fail(err)
	}
	fmt.Println("grid =", pscal.Format(chain.Lookup("grid").Value))

	// new(head); head^.val := 42; alias := head
	head := pscal.Ident("head")
	if err := rt.New(chain, head); err != nil {
		fail(err)
	}
	answer := pscal.MakeInt(42)
	if err := rt.AssignValueToLValue(chain, pscal.FieldAccess(pscal.Deref(head), "val"), &answer); err != nil {
		fail(err)
	}
	alias := pscal.MakeCopyOfValue(chain.Lookup("head").Value)
	if err := rt.AssignValueToLValue(chain, pscal.Ident("alias"), &alias); err != nil {
		fail(err)
	}
	fmt.Println("alias =", rt.Format(chain.Lookup("alias").Value))

	// dispose(head) also nils alias
	if err := rt.Dispose(chain, head); err != nil {
		fail(err)
	}
	fmt.Println("alias after dispose =", rt.Format(chain.Lookup("alias").Value))

	// grid[3, 1] is out of bounds and leaves grid unchanged
	bad := pscal.ArrayAccess(pscal.Ident("grid"), pscal.Number(3), pscal.Number(1))
	if err := rt.AssignValueToLValue(chain, bad, &v); errors.Is(err, pscal.ErrOutOfBounds) {
		fmt.Println("rejected:", err)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
