package pscal

import "strings"

// MakeValueForType builds the fully initialised default value of a type.
// When def is nil the declared type of contextSym supplies it.
//
// Structural problems never fail: an unresolvable record, a bad array bound
// or an invalid fixed length degrades to an empty or dynamic value and logs a
// warning. The only error is ErrAllocation for an array too large to allocate.
func (rt *Runtime) MakeValueForType(chain *ScopeChain, t VarType, def *Node, contextSym *Symbol) (Value, error) {
	if def == nil && contextSym != nil {
		def = contextSym.TypeDef
	}
	return rt.makeValueForType(chain, t, def, 0, make(map[*Node]bool))
}

// expanding holds the record and array definitions currently being built on
// this path; re-entering one yields an empty value.
func (rt *Runtime) makeValueForType(chain *ScopeChain, t VarType, def *Node, depth int, expanding map[*Node]bool) (Value, error) {
	if depth > maxTypeDepth {
		rt.logger.WarnAt(CatType, posOf(def), "Type nesting deeper than %d levels; using empty %s", maxTypeDepth, t)
		return zeroValueOf(t), nil
	}

	actual := rt.resolveTypeNode(chain, def)
	if actual != nil && actual.Kind == NodeEnumType {
		t = TypeEnum
	}

	switch t {
	case TypeInt8, TypeUInt8, TypeInt16, TypeUInt16, TypeInt32, TypeUInt32,
		TypeInt64, TypeUInt64, TypeByte, TypeWord, TypeBoolean:
		return Value{Type: t}, nil

	case TypeFloat, TypeDouble, TypeLongDouble:
		return makeRealOf(t, 0), nil

	case TypeChar:
		return MakeChar(0), nil

	case TypeString:
		return rt.makeStringForType(chain, actual), nil

	case TypeRecord:
		return rt.createEmptyRecord(chain, actual, depth, expanding)

	case TypeArray:
		return rt.makeArrayForType(chain, actual, depth, expanding)

	case TypeEnum:
		v := Value{Type: TypeEnum, EnumName: "<unknown_enum>"}
		if actual != nil && actual.Kind == NodeEnumType {
			if actual.Token != "" {
				v.EnumName = actual.Token
			}
			v.BaseTypeNode = actual
		} else {
			rt.logger.WarnAt(CatType, posOf(def), "Enum value created without an enum type definition")
		}
		return v, nil

	case TypePointer:
		return MakePointer(0, pointeeOf(actual)), nil

	case TypeSet:
		v := Value{Type: TypeSet}
		if actual != nil && actual.Kind == NodeSetType {
			v.BaseTypeNode = actual.Right
		}
		return v, nil

	case TypeFile:
		return Value{Type: TypeFile}, nil

	case TypeMemoryStream:
		return MakeMStream(), nil

	case TypeNil:
		return MakeNil(), nil

	case TypeVoid:
		return MakeVoid(), nil
	}

	rt.logger.WarnAt(CatType, posOf(def), "Cannot build a default value for type %s", t)
	return Value{Type: t}, nil
}

// pointeeOf captures the type a pointer variable points at. A ^Base node
// yields Base; any other non-pointer node is taken as the base itself.
func pointeeOf(def *Node) *Node {
	if def == nil {
		return nil
	}
	if def.Kind == NodePointerType {
		return def.Right
	}
	if def.Kind == NodeVariable && strings.EqualFold(def.Token, "pointer") {
		return nil
	}
	return def
}

// makeStringForType builds string or string[N]
func (rt *Runtime) makeStringForType(chain *ScopeChain, def *Node) Value {
	if def == nil || def.Right == nil {
		return MakeString("")
	}
	n, ok := rt.EvalConst(chain, def.Right)
	if !ok {
		rt.logger.WarnAt(CatString, posOf(def), "Fixed string length is not an integer constant; using a dynamic string")
		return MakeString("")
	}
	if n <= 0 || n > int64(rt.config.MaxFixedStringLength) {
		rt.logger.WarnAt(CatString, posOf(def), "Fixed string length %d outside 1..%d; using a dynamic string",
			n, rt.config.MaxFixedStringLength)
		return MakeString("")
	}
	return Value{Type: TypeString, Str: make([]byte, 0, n), MaxLength: int(n)}
}

// createEmptyRecord builds a record with every declared field default constructed
func (rt *Runtime) createEmptyRecord(chain *ScopeChain, def *Node, depth int, expanding map[*Node]bool) (Value, error) {
	v := Value{Type: TypeRecord}
	if def == nil || def.Kind != NodeRecordType {
		name := "<nil>"
		if def != nil {
			name = def.Kind.String()
		}
		rt.logger.WarnAt(CatRecord, posOf(def), "Record definition unresolved (%s); using an empty record", name)
		return v, nil
	}
	if expanding[def] {
		rt.logger.WarnAt(CatType, posOf(def), "Record type contains itself; using an empty record")
		return v, nil
	}
	expanding[def] = true
	defer delete(expanding, def)

	var tail *FieldValue
	seen := make(map[string]bool)
	for _, decl := range def.Children {
		if decl == nil || decl.Kind != NodeVarDecl {
			rt.logger.WarnAt(CatRecord, posOf(decl), "Skipping malformed field group in record definition")
			continue
		}
		fieldType := decl.VarType
		if fieldType == TypeUnknown || fieldType == TypeVoid {
			fieldType = rt.VarTypeOf(chain, decl.Right)
		}
		for _, nameNode := range decl.Children {
			if nameNode == nil || nameNode.Token == "" {
				continue
			}
			key := foldName(nameNode.Token)
			if seen[key] {
				rt.logger.WarnAt(CatRecord, posOf(nameNode), "Duplicate field %s ignored", nameNode.Token)
				continue
			}
			seen[key] = true

			fv, err := rt.makeValueForType(chain, fieldType, decl.Right, depth+1, expanding)
			if err != nil {
				FreeValue(&v)
				return Value{Type: TypeRecord}, err
			}
			cell := &FieldValue{Name: nameNode.Token, Value: fv}
			if tail == nil {
				v.Record = cell
			} else {
				tail.Next = cell
			}
			tail = cell
		}
	}
	return v, nil
}

// makeArrayForType evaluates the bounds of every dimension and fills each
// slot with the default of the element type
func (rt *Runtime) makeArrayForType(chain *ScopeChain, def *Node, depth int, expanding map[*Node]bool) (Value, error) {
	empty := Value{Type: TypeArray}
	if def == nil || def.Kind != NodeArrayType {
		rt.logger.WarnAt(CatArray, posOf(def), "Array definition unresolved; using an empty array")
		return empty, nil
	}
	if expanding[def] {
		rt.logger.WarnAt(CatType, posOf(def), "Array type contains itself; using an empty array")
		return empty, nil
	}
	expanding[def] = true
	defer delete(expanding, def)

	elemDef := def.Right
	elemType := rt.VarTypeOf(chain, elemDef)
	empty.ElementType = elemType
	empty.ElementTypeDef = elemDef

	lower := make([]int, 0, len(def.Children))
	upper := make([]int, 0, len(def.Children))
	for i, dim := range def.Children {
		lo, hi, ok := rt.dimensionBounds(chain, dim)
		if !ok {
			rt.logger.WarnAt(CatArray, posOf(dim), "Bounds of dimension %d are not integer constants; array left empty", i+1)
			return empty, nil
		}
		if lo > hi {
			rt.logger.WarnAt(CatArray, posOf(dim), "Dimension %d has lower bound %d above upper bound %d; array left empty", i+1, lo, hi)
			return empty, nil
		}
		lower = append(lower, lo)
		upper = append(upper, hi)
	}
	if len(lower) == 0 {
		rt.logger.WarnAt(CatArray, posOf(def), "Array type has no dimensions; array left empty")
		return empty, nil
	}

	total, err := TotalElements(lower, upper)
	if err != nil {
		return empty, withPosition(err, posOf(def))
	}

	v := empty
	v.Dimensions = len(lower)
	v.LowerBounds = lower
	v.UpperBounds = upper
	v.Elems = make([]Value, total)
	for i := range v.Elems {
		elem, err := rt.makeValueForType(chain, elemType, elemDef, depth+1, expanding)
		if err != nil {
			FreeValue(&v)
			return Value{Type: TypeArray}, err
		}
		v.Elems[i] = elem
	}
	rt.logger.DebugCat(CatArray, "Built %d-dimensional array of %d %s element(s)", v.Dimensions, total, elemType)
	return v, nil
}

// dimensionBounds returns the inclusive bounds of one index type: a subrange
// of constants, an enum type, char or boolean
func (rt *Runtime) dimensionBounds(chain *ScopeChain, dim *Node) (int, int, bool) {
	dim = rt.resolveTypeNode(chain, dim)
	if dim == nil {
		return 0, 0, false
	}
	switch dim.Kind {
	case NodeSubrange:
		lo, ok := rt.EvalConst(chain, dim.Left)
		if !ok {
			return 0, 0, false
		}
		hi, ok := rt.EvalConst(chain, dim.Right)
		if !ok {
			return 0, 0, false
		}
		return int(lo), int(hi), true
	case NodeEnumType:
		if len(dim.Children) == 0 {
			return 0, 0, false
		}
		return 0, len(dim.Children) - 1, true
	case NodeVariable:
		switch t, _ := BuiltinVarType(dim.Token); t {
		case TypeChar, TypeByte:
			return 0, 255, true
		case TypeBoolean:
			return 0, 1, true
		}
	}
	return 0, 0, false
}

func posOf(n *Node) *SourcePosition {
	if n == nil {
		return nil
	}
	return n.Position
}
