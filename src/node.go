package pscal

import "strconv"

// NodeKind identifies the shape of a type-definition or expression node
type NodeKind int

const (
	NodeNoop NodeKind = iota
	NodeVariable
	NodeNumber
	NodeString
	NodeBoolean
	NodeNil
	NodeTypeReference
	NodeRecordType
	NodeVarDecl
	NodeArrayType
	NodeSubrange
	NodeEnumType
	NodeEnumValue
	NodePointerType
	NodeSetType
	NodeFieldAccess
	NodeArrayAccess
	NodeDereference
	NodeBinaryOp
	NodeUnaryOp
)

// String returns the node kind name used in diagnostics
func (k NodeKind) String() string {
	switch k {
	case NodeNoop:
		return "NOOP"
	case NodeVariable:
		return "VARIABLE"
	case NodeNumber:
		return "NUMBER"
	case NodeString:
		return "STRING"
	case NodeBoolean:
		return "BOOLEAN"
	case NodeNil:
		return "NIL"
	case NodeTypeReference:
		return "TYPE_REFERENCE"
	case NodeRecordType:
		return "RECORD_TYPE"
	case NodeVarDecl:
		return "VAR_DECL"
	case NodeArrayType:
		return "ARRAY_TYPE"
	case NodeSubrange:
		return "SUBRANGE"
	case NodeEnumType:
		return "ENUM_TYPE"
	case NodeEnumValue:
		return "ENUM_VALUE"
	case NodePointerType:
		return "POINTER_TYPE"
	case NodeSetType:
		return "SET_TYPE"
	case NodeFieldAccess:
		return "FIELD_ACCESS"
	case NodeArrayAccess:
		return "ARRAY_ACCESS"
	case NodeDereference:
		return "DEREFERENCE"
	case NodeBinaryOp:
		return "BINARY_OP"
	case NodeUnaryOp:
		return "UNARY_OP"
	default:
		return "UNKNOWN_NODE"
	}
}

// Node is one vertex of the type-definition / expression tree built by the
// front end. The engine only reads it; nodes are never owned by a Value.
type Node struct {
	Kind     NodeKind
	Token    string  // identifier, literal text, field name or operator
	VarType  VarType // declared discriminant where the front end knows it
	Left     *Node
	Right    *Node
	Children []*Node
	Position *SourcePosition
}

// Ident builds a variable / named-type node
func Ident(name string) *Node {
	return &Node{Kind: NodeVariable, Token: name}
}

// Number builds an integer literal node
func Number(n int64) *Node {
	return &Node{Kind: NodeNumber, Token: strconv.FormatInt(n, 10), VarType: TypeInteger}
}

// RealLiteral builds a real literal node
func RealLiteral(text string) *Node {
	return &Node{Kind: NodeNumber, Token: text, VarType: TypeReal}
}

// StringLiteral builds a string literal node
func StringLiteral(s string) *Node {
	return &Node{Kind: NodeString, Token: s, VarType: TypeString}
}

// BooleanLiteral builds a boolean literal node
func BooleanLiteral(b bool) *Node {
	tok := "false"
	if b {
		tok = "true"
	}
	return &Node{Kind: NodeBoolean, Token: tok, VarType: TypeBoolean}
}

// NilLiteral builds the nil literal
func NilLiteral() *Node {
	return &Node{Kind: NodeNil, VarType: TypeNil}
}

// FixedStringType builds string[length]
func FixedStringType(length *Node) *Node {
	return &Node{Kind: NodeVariable, Token: "string", VarType: TypeString, Right: length}
}

// TypeRef builds a reference to a named type. def may be nil; it is then
// resolved through the type table when needed.
func TypeRef(name string, def *Node) *Node {
	vt := TypeVoid
	if def != nil {
		vt = def.VarType
	}
	return &Node{Kind: NodeTypeReference, Token: name, Right: def, VarType: vt}
}

// Field is one field group of a record type
type Field struct {
	Names   []string
	VarType VarType
	TypeDef *Node
}

// RecordType builds a record type node from its field groups in declaration order
func RecordType(fields ...Field) *Node {
	rec := &Node{Kind: NodeRecordType, VarType: TypeRecord}
	for _, f := range fields {
		decl := &Node{Kind: NodeVarDecl, VarType: f.VarType, Right: f.TypeDef}
		for _, name := range f.Names {
			decl.Children = append(decl.Children, Ident(name))
		}
		rec.Children = append(rec.Children, decl)
	}
	return rec
}

// Subrange builds lo..hi
func Subrange(lo, hi *Node) *Node {
	return &Node{Kind: NodeSubrange, Left: lo, Right: hi}
}

// ArrayType builds array[dims] of elem
func ArrayType(elem *Node, dims ...*Node) *Node {
	return &Node{Kind: NodeArrayType, VarType: TypeArray, Right: elem, Children: dims}
}

// EnumType builds a named enumeration
func EnumType(name string, members ...string) *Node {
	n := &Node{Kind: NodeEnumType, Token: name, VarType: TypeEnum}
	for _, m := range members {
		n.Children = append(n.Children, &Node{Kind: NodeEnumValue, Token: m, VarType: TypeEnum})
	}
	return n
}

// PointerType builds ^base
func PointerType(base *Node) *Node {
	return &Node{Kind: NodePointerType, VarType: TypePointer, Right: base}
}

// SetType builds set of base
func SetType(base *Node) *Node {
	return &Node{Kind: NodeSetType, VarType: TypeSet, Right: base}
}

// FieldAccess builds left.name
func FieldAccess(left *Node, name string) *Node {
	return &Node{Kind: NodeFieldAccess, Token: name, Left: left}
}

// ArrayAccess builds left[indices]
func ArrayAccess(left *Node, indices ...*Node) *Node {
	return &Node{Kind: NodeArrayAccess, Left: left, Children: indices}
}

// Deref builds left^
func Deref(left *Node) *Node {
	return &Node{Kind: NodeDereference, Left: left}
}

// BinaryOp builds left op right
func BinaryOp(op string, left, right *Node) *Node {
	return &Node{Kind: NodeBinaryOp, Token: op, Left: left, Right: right}
}

// UnaryOp builds op operand
func UnaryOp(op string, operand *Node) *Node {
	return &Node{Kind: NodeUnaryOp, Token: op, Left: operand}
}

// enumOrdinalOf returns the ordinal of member in an enum definition
func enumOrdinalOf(def *Node, member string) (int, bool) {
	if def == nil || def.Kind != NodeEnumType {
		return 0, false
	}
	key := foldName(member)
	for i, child := range def.Children {
		if child != nil && foldName(child.Token) == key {
			return i, true
		}
	}
	return 0, false
}
