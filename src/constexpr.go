package pscal

import (
	"strconv"
	"strings"
)

// EvalConst evaluates a compile-time constant ordinal expression: integer
// literals, integer/char/enum constants, enum member names, single character
// literals, unary sign and + - * div mod. ok is false for anything else.
func (rt *Runtime) EvalConst(chain *ScopeChain, node *Node) (int64, bool) {
	return rt.evalConst(chain, node, 0)
}

func (rt *Runtime) evalConst(chain *ScopeChain, node *Node, depth int) (int64, bool) {
	if node == nil || depth > maxTypeDepth {
		return 0, false
	}
	switch node.Kind {
	case NodeNumber:
		if node.VarType.IsRealLike() {
			return 0, false
		}
		n, err := strconv.ParseInt(node.Token, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true

	case NodeString:
		if len(node.Token) == 1 {
			return int64(node.Token[0]), true
		}
		return 0, false

	case NodeBoolean:
		if strings.EqualFold(node.Token, "true") {
			return 1, true
		}
		return 0, true

	case NodeVariable, NodeTypeReference:
		if sym := chain.Lookup(node.Token); sym != nil {
			if !sym.IsConst || sym.Value == nil || !sym.Value.Type.IsOrdinal() {
				return 0, false
			}
			return sym.Value.AsInt(), true
		}
		if _, ord, ok := chain.Types.findEnumMember(node.Token); ok {
			return int64(ord), true
		}
		return 0, false

	case NodeUnaryOp:
		n, ok := rt.evalConst(chain, node.Left, depth+1)
		if !ok {
			return 0, false
		}
		switch node.Token {
		case "-":
			return -n, true
		case "+":
			return n, true
		}
		return 0, false

	case NodeBinaryOp:
		l, ok := rt.evalConst(chain, node.Left, depth+1)
		if !ok {
			return 0, false
		}
		r, ok := rt.evalConst(chain, node.Right, depth+1)
		if !ok {
			return 0, false
		}
		switch strings.ToLower(node.Token) {
		case "+":
			return l + r, true
		case "-":
			return l - r, true
		case "*":
			return l * r, true
		case "div":
			if r == 0 {
				return 0, false
			}
			return l / r, true
		case "mod":
			if r == 0 {
				return 0, false
			}
			return l % r, true
		}
	}
	return 0, false
}
