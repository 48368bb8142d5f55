package pscal

import "fmt"

// cellRef is a resolved assignment target
type cellRef struct {
	cell *Value
	sym  *Symbol // base symbol of the access path

	// type stores are coerced to. Simple variables use the symbol's declared
	// type; field and pointee cells use their current value type, so a field
	// keeps whatever type its last mismatched store left behind.
	declType VarType
	declDef  *Node

	isConst bool
	// charIndex > 0 addresses one byte of the string in cell (1-based)
	charIndex int
	desc      string
}

// resolveTarget walks an lvalue expression down to its storage cell. Every
// index is evaluated and bounds checked here, before anything is mutated.
func (rt *Runtime) resolveTarget(chain *ScopeChain, node *Node, depth int) (*cellRef, error) {
	if node == nil {
		return nil, runtimeErrorf(ErrNotLValue, "missing assignment target")
	}
	if depth > maxTypeDepth {
		return nil, runtimeErrorf(ErrNotLValue, "assignment target nested too deeply")
	}

	switch node.Kind {
	case NodeVariable:
		sym := chain.Lookup(node.Token)
		if sym == nil {
			if _, _, isMember := chain.Types.findEnumMember(node.Token); isMember {
				return nil, rt.errAt(node, ErrNotLValue, "enum member %s is not assignable", node.Token)
			}
			return nil, rt.errAt(node, ErrUndeclared, "undeclared identifier %s", node.Token)
		}
		if sym.Value == nil {
			v := MakeVoid()
			sym.Value = &v
		}
		return &cellRef{
			cell:     sym.Value,
			sym:      sym,
			declType: sym.Type,
			declDef:  sym.TypeDef,
			isConst:  sym.IsConst,
			desc:     sym.Name,
		}, nil

	case NodeFieldAccess:
		base, err := rt.resolveTarget(chain, node.Left, depth+1)
		if err != nil {
			return nil, err
		}
		if base.charIndex > 0 || base.cell.Type != TypeRecord {
			return nil, rt.errAt(node, ErrNotRecord, "%s is not a record (found %s)", base.desc, base.cell.Type)
		}
		field := findField(base.cell, node.Token)
		if field == nil {
			return nil, rt.errAt(node, ErrFieldNotFound, "record %s has no field %s", base.desc, node.Token)
		}
		return &cellRef{
			cell:     &field.Value,
			sym:      base.sym,
			declType: field.Value.Type,
			isConst:  base.isConst,
			desc:     base.desc + "." + field.Name,
		}, nil

	case NodeArrayAccess:
		base, err := rt.resolveTarget(chain, node.Left, depth+1)
		if err != nil {
			return nil, err
		}
		if base.charIndex > 0 {
			return nil, rt.errAt(node, ErrNotArray, "cannot index character %s[%d]", base.desc, base.charIndex)
		}
		indices, err := rt.evalIndices(chain, node.Children)
		if err != nil {
			return nil, withPosition(err, node.Position)
		}

		switch base.cell.Type {
		case TypeString:
			if len(indices) != 1 {
				return nil, rt.errAt(node, ErrIndexArity, "string %s takes exactly one index, got %d", base.desc, len(indices))
			}
			k := indices[0]
			if k < 1 || k > len(base.cell.Str) {
				return nil, rt.errAt(node, ErrOutOfBounds, "string index %d out of bounds [1..%d] for %s", k, len(base.cell.Str), base.desc)
			}
			ref := *base
			ref.charIndex = k
			ref.declType = TypeChar
			ref.desc = fmt.Sprintf("%s[%d]", base.desc, k)
			return &ref, nil

		case TypeArray:
			elem, err := ArrayElement(base.cell, indices)
			if err != nil {
				return nil, withPosition(err, node.Position)
			}
			return &cellRef{
				cell:     elem,
				sym:      base.sym,
				declType: base.cell.ElementType,
				declDef:  base.cell.ElementTypeDef,
				isConst:  base.isConst,
				desc:     fmt.Sprintf("%s%v", base.desc, indices),
			}, nil
		}
		return nil, rt.errAt(node, ErrNotArray, "%s is not an array or string (found %s)", base.desc, base.cell.Type)

	case NodeDereference:
		base, err := rt.resolveTarget(chain, node.Left, depth+1)
		if err != nil {
			return nil, err
		}
		if base.charIndex > 0 {
			return nil, rt.errAt(node, ErrNotPointer, "%s is not a pointer (found CHAR)", base.desc)
		}
		target, err := rt.Deref(base.cell)
		if err != nil {
			return nil, withPosition(fmt.Errorf("%s^: %w", base.desc, err), node.Position)
		}
		return &cellRef{
			cell:     target,
			declType: target.Type,
			declDef:  base.cell.BaseTypeNode,
			desc:     base.desc + "^",
		}, nil
	}

	return nil, rt.errAt(node, ErrNotLValue, "%s expression is not assignable", node.Kind)
}

// AssignValueToLValue stores a deep copy of newValue into the cell target
// denotes, then releases the old contents. A string character target is
// overwritten in place. newValue stays owned by the caller. On error no cell
// has been modified.
func (rt *Runtime) AssignValueToLValue(chain *ScopeChain, target *Node, newValue *Value) error {
	if newValue == nil {
		return runtimeErrorf(ErrTypeMismatch, "no value to assign")
	}
	ref, err := rt.resolveTarget(chain, target, 0)
	if err != nil {
		return err
	}
	if ref.isConst {
		return rt.errAt(target, ErrConstAssign, "cannot assign to constant %s", ref.desc)
	}
	if ref.charIndex > 0 {
		return rt.assignStringChar(ref, newValue, target)
	}
	return rt.store(ref, newValue, target)
}

// assignStringChar overwrites one byte of a string without reallocating it
func (rt *Runtime) assignStringChar(ref *cellRef, newValue *Value, target *Node) error {
	ch, ok := charOrdinal(newValue)
	if !ok {
		if newValue.Type.IsIntLike() && newValue.I >= 0 && newValue.I <= 255 {
			ch, ok = byte(newValue.I), true
		}
	}
	if !ok {
		return rt.errAt(target, ErrTypeMismatch, "cannot store %s into string character %s", newValue.Type, ref.desc)
	}
	ref.cell.Str[ref.charIndex-1] = ch
	rt.logger.TraceCat(CatString, "%s := %q in place", ref.desc, ch)
	return nil
}

// store is the copy-in then free-old protocol
func (rt *Runtime) store(ref *cellRef, newValue *Value, target *Node) error {
	coerced, err := rt.coerce(ref, newValue, target)
	if err != nil {
		return err
	}
	FreeValue(ref.cell)
	*ref.cell = coerced
	rt.logger.TraceCat(CatVariable, "%s := %s", ref.desc, coerced.Type)
	return nil
}

// coerce produces an owned copy of src converted to the cell's declared type
func (rt *Runtime) coerce(ref *cellRef, src *Value, target *Node) (Value, error) {
	want := ref.declType
	if want == TypeUnknown || want == TypeVoid {
		want = ref.cell.Type
	}
	cur := ref.cell

	switch {
	case want == TypeString && (src.Type == TypeString || src.Type == TypeChar):
		if cur.MaxLength > 0 {
			return MakeFixedString(src.StringValue(), cur.MaxLength), nil
		}
		if src.Type == TypeChar {
			rt.logger.DebugCat(CatType, "Promoting CHAR to STRING for %s", ref.desc)
			return MakeString(src.StringValue()), nil
		}
		return MakeCopyOfValue(src), nil

	case want == TypePointer && (src.Type == TypePointer || src.Type == TypeNil):
		ptr := MakePointer(src.Ptr, src.BaseTypeNode)
		if src.Type == TypeNil {
			ptr.Ptr = 0
		}
		if ptr.BaseTypeNode == nil {
			ptr.BaseTypeNode = cur.BaseTypeNode
		}
		return ptr, nil

	case src.Type == want:
		return MakeCopyOfValue(src), nil

	case want.IsRealLike() && (src.Type.IsIntLike() || src.Type.IsRealLike()):
		if src.Type.IsIntLike() {
			rt.logger.DebugCat(CatType, "Promoting %s to %s for %s", src.Type, want, ref.desc)
		}
		return makeRealOf(want, src.AsReal()), nil

	case want.IsIntLike() && (src.Type.IsIntLike() || src.Type == TypeChar || src.Type == TypeBoolean || src.Type.IsRealLike()):
		n := src.AsInt()
		if lo, hi, bounded := want.intRange(); bounded && (n < lo || n > hi) {
			return Value{}, rt.errAt(target, ErrOutOfBounds, "value %d out of range %d..%d for %s %s", n, lo, hi, want, ref.desc)
		}
		if want == TypeUInt64 && src.Type == TypeUInt64 {
			return makeUintOf(want, src.U), nil
		}
		return makeIntOf(want, n), nil

	case want == TypeChar && (src.Type == TypeString || src.Type.IsIntLike()):
		if ch, ok := charOrdinal(src); ok {
			return MakeChar(ch), nil
		}
		if src.Type.IsIntLike() && src.I >= 0 && src.I <= 255 {
			return MakeChar(byte(src.I)), nil
		}
		return Value{}, rt.errAt(target, ErrOutOfBounds, "cannot store %s of length %d in CHAR %s", src.Type, len(src.Str), ref.desc)
	}

	if rt.config.TypeWarnings {
		rt.logger.WarnAt(CatType, posOf(target), "Type mismatch assigning %s to %s %s; storing as %s", src.Type, want, ref.desc, src.Type)
	}
	return MakeCopyOfValue(src), nil
}

// evalIndices evaluates every index expression to an ordinal
func (rt *Runtime) evalIndices(chain *ScopeChain, exprs []*Node) ([]int, error) {
	out := make([]int, 0, len(exprs))
	for _, expr := range exprs {
		var (
			v   Value
			err error
		)
		if rt.IndexEvaluator != nil {
			v, err = rt.IndexEvaluator(chain, expr)
		} else {
			v, err = rt.Eval(chain, expr)
		}
		if err != nil {
			return nil, err
		}
		n, ok := ordinalOf(&v)
		FreeValue(&v)
		if !ok {
			return nil, rt.errAt(expr, ErrTypeMismatch, "index must be an ordinal value, got %s", v.Type)
		}
		out = append(out, int(n))
	}
	return out, nil
}

// ordinalOf returns the ordinal of an ordinal value or a one-character string
func ordinalOf(v *Value) (int64, bool) {
	if v.Type.IsOrdinal() {
		return v.AsInt(), true
	}
	if ch, ok := charOrdinal(v); ok {
		return int64(ch), true
	}
	return 0, false
}

// findField finds a record field by case-insensitive name
func findField(rec *Value, name string) *FieldValue {
	key := foldName(name)
	for f := rec.Record; f != nil; f = f.Next {
		if foldName(f.Name) == key {
			return f
		}
	}
	return nil
}

// errAt builds a RuntimeError positioned at node
func (rt *Runtime) errAt(node *Node, kind error, format string, args ...interface{}) error {
	err := runtimeErrorf(kind, format, args...)
	err.Position = posOf(node)
	return err
}
