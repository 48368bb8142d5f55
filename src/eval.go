package pscal

import (
	"math"
	"strconv"
	"strings"
)

// Eval reads the value of an expression. The result is always an
// independently owned copy; the caller frees it.
func (rt *Runtime) Eval(chain *ScopeChain, node *Node) (Value, error) {
	return rt.eval(chain, node, 0)
}

func (rt *Runtime) eval(chain *ScopeChain, node *Node, depth int) (Value, error) {
	if node == nil {
		return MakeVoid(), nil
	}
	if depth > maxTypeDepth {
		return Value{}, rt.errAt(node, ErrTypeMismatch, "expression nested too deeply")
	}

	switch node.Kind {
	case NodeNumber:
		if node.VarType.IsRealLike() || strings.ContainsAny(node.Token, ".eE") {
			f, err := strconv.ParseFloat(node.Token, 64)
			if err != nil {
				return Value{}, rt.errAt(node, ErrTypeMismatch, "invalid real literal %q", node.Token)
			}
			return MakeReal(f), nil
		}
		n, err := strconv.ParseInt(node.Token, 10, 64)
		if err != nil {
			return Value{}, rt.errAt(node, ErrOutOfBounds, "integer literal %s out of range", node.Token)
		}
		return MakeInt(n), nil

	case NodeString:
		return MakeString(node.Token), nil

	case NodeBoolean:
		return MakeBoolean(strings.EqualFold(node.Token, "true")), nil

	case NodeNil:
		return MakeNil(), nil

	case NodeVariable:
		if sym := chain.Lookup(node.Token); sym != nil {
			if sym.Value == nil {
				return MakeVoid(), nil
			}
			return MakeCopyOfValue(sym.Value), nil
		}
		if def, ord, ok := chain.Types.findEnumMember(node.Token); ok {
			v := MakeEnum(def.Token, ord)
			v.BaseTypeNode = def
			return v, nil
		}
		return Value{}, rt.errAt(node, ErrUndeclared, "undeclared identifier %s", node.Token)

	case NodeFieldAccess, NodeArrayAccess, NodeDereference:
		ref, err := rt.resolveTarget(chain, node, depth)
		if err != nil {
			return Value{}, err
		}
		if ref.charIndex > 0 {
			return MakeChar(ref.cell.Str[ref.charIndex-1]), nil
		}
		return MakeCopyOfValue(ref.cell), nil

	case NodeUnaryOp:
		operand, err := rt.eval(chain, node.Left, depth+1)
		if err != nil {
			return Value{}, err
		}
		defer FreeValue(&operand)
		return rt.unaryOp(node, &operand)

	case NodeBinaryOp:
		left, err := rt.eval(chain, node.Left, depth+1)
		if err != nil {
			return Value{}, err
		}
		defer FreeValue(&left)
		right, err := rt.eval(chain, node.Right, depth+1)
		if err != nil {
			return Value{}, err
		}
		defer FreeValue(&right)
		return rt.binaryOp(node, &left, &right)
	}

	return Value{}, rt.errAt(node, ErrTypeMismatch, "cannot evaluate %s", node.Kind)
}

func (rt *Runtime) unaryOp(node *Node, v *Value) (Value, error) {
	switch strings.ToLower(node.Token) {
	case "-":
		if v.Type.IsRealLike() {
			return makeRealOf(v.Type, -v.Real.F64), nil
		}
		if v.Type.IsIntLike() {
			return MakeInt(-v.AsInt()), nil
		}
	case "+":
		if v.Type.IsRealLike() || v.Type.IsIntLike() {
			return MakeCopyOfValue(v), nil
		}
	case "not":
		if v.Type == TypeBoolean {
			return MakeBoolean(v.I == 0), nil
		}
		if v.Type.IsIntLike() {
			return MakeInt(^v.I), nil
		}
	}
	return Value{}, rt.errAt(node, ErrTypeMismatch, "operator %s not defined for %s", node.Token, v.Type)
}

func isNumeric(t VarType) bool {
	return t.IsIntLike() || t.IsRealLike()
}

func isTextual(v *Value) bool {
	return v.Type == TypeString || v.Type == TypeChar
}

func (rt *Runtime) binaryOp(node *Node, l, r *Value) (Value, error) {
	op := strings.ToLower(node.Token)

	if op == "in" {
		if r.Type != TypeSet {
			return Value{}, rt.errAt(node, ErrTypeMismatch, "right operand of in must be a set, got %s", r.Type)
		}
		n, ok := ordinalOf(l)
		if !ok {
			return Value{}, rt.errAt(node, ErrTypeMismatch, "left operand of in must be ordinal, got %s", l.Type)
		}
		return MakeBoolean(SetContains(r, n)), nil
	}

	if l.Type == TypeSet && r.Type == TypeSet {
		switch op {
		case "+":
			return SetUnion(l, r), nil
		case "-":
			return SetDifference(l, r), nil
		case "*":
			return SetIntersection(l, r), nil
		case "=":
			return MakeBoolean(SetEqual(l, r)), nil
		case "<>":
			return MakeBoolean(!SetEqual(l, r)), nil
		}
	}

	if isTextual(l) && isTextual(r) {
		ls, rs := l.StringValue(), r.StringValue()
		switch op {
		case "+":
			return MakeString(ls + rs), nil
		default:
			if b, ok := compareOrdered(op, strings.Compare(ls, rs)); ok {
				return MakeBoolean(b), nil
			}
		}
	}

	if l.Type == TypeBoolean && r.Type == TypeBoolean {
		switch op {
		case "and":
			return MakeBoolean(l.I != 0 && r.I != 0), nil
		case "or":
			return MakeBoolean(l.I != 0 || r.I != 0), nil
		case "xor":
			return MakeBoolean((l.I != 0) != (r.I != 0)), nil
		}
		if b, ok := compareOrdered(op, compareInts(l.I, r.I)); ok {
			return MakeBoolean(b), nil
		}
	}

	if (l.Type == TypePointer || l.Type == TypeNil) && (r.Type == TypePointer || r.Type == TypeNil) {
		switch op {
		case "=":
			return MakeBoolean(l.Ptr == r.Ptr), nil
		case "<>":
			return MakeBoolean(l.Ptr != r.Ptr), nil
		}
	}

	if l.Type == TypeEnum && r.Type == TypeEnum {
		if b, ok := compareOrdered(op, compareInts(int64(l.Ordinal), int64(r.Ordinal))); ok {
			return MakeBoolean(b), nil
		}
	}

	if isNumeric(l.Type) && isNumeric(r.Type) {
		if l.Type.IsRealLike() || r.Type.IsRealLike() || op == "/" {
			return rt.realOp(node, op, l.AsReal(), r.AsReal())
		}
		return rt.intOp(node, op, l.AsInt(), r.AsInt())
	}

	return Value{}, rt.errAt(node, ErrTypeMismatch, "operator %s not defined for %s and %s", node.Token, l.Type, r.Type)
}

func (rt *Runtime) intOp(node *Node, op string, a, b int64) (Value, error) {
	switch op {
	case "+":
		return MakeInt(a + b), nil
	case "-":
		return MakeInt(a - b), nil
	case "*":
		return MakeInt(a * b), nil
	case "div", "mod":
		if b == 0 {
			return Value{}, rt.errAt(node, ErrOutOfBounds, "division by zero")
		}
		if op == "div" {
			return MakeInt(a / b), nil
		}
		return MakeInt(a % b), nil
	case "and":
		return MakeInt(a & b), nil
	case "or":
		return MakeInt(a | b), nil
	case "xor":
		return MakeInt(a ^ b), nil
	}
	if res, ok := compareOrdered(op, compareInts(a, b)); ok {
		return MakeBoolean(res), nil
	}
	return Value{}, rt.errAt(node, ErrTypeMismatch, "operator %s not defined for integers", op)
}

func (rt *Runtime) realOp(node *Node, op string, a, b float64) (Value, error) {
	switch op {
	case "+":
		return MakeReal(a + b), nil
	case "-":
		return MakeReal(a - b), nil
	case "*":
		return MakeReal(a * b), nil
	case "/":
		if b == 0 {
			return Value{}, rt.errAt(node, ErrOutOfBounds, "division by zero")
		}
		return MakeReal(a / b), nil
	}
	cmp := 0
	switch {
	case math.IsNaN(a) || math.IsNaN(b):
		return MakeBoolean(op == "<>"), nil
	case a < b:
		cmp = -1
	case a > b:
		cmp = 1
	}
	if res, ok := compareOrdered(op, cmp); ok {
		return MakeBoolean(res), nil
	}
	return Value{}, rt.errAt(node, ErrTypeMismatch, "operator %s not defined for reals", op)
}

func compareInts(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareOrdered(op string, cmp int) (bool, bool) {
	switch op {
	case "=":
		return cmp == 0, true
	case "<>":
		return cmp != 0, true
	case "<":
		return cmp < 0, true
	case "<=":
		return cmp <= 0, true
	case ">":
		return cmp > 0, true
	case ">=":
		return cmp >= 0, true
	}
	return false, false
}
