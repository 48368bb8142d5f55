package pscal

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Format renders a value for display. Pointers show only their address.
func Format(v *Value) string {
	var sb strings.Builder
	formatValue(&sb, v, nil)
	return sb.String()
}

// Format renders a value, following pointers one level into the heap
func (rt *Runtime) Format(v *Value) string {
	var sb strings.Builder
	formatValue(&sb, v, rt.heap)
	return sb.String()
}

func formatReal(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func formatValue(sb *strings.Builder, v *Value, heap *Heap) {
	if v == nil {
		sb.WriteString("<nil value>")
		return
	}
	switch v.Type {
	case TypeVoid:
		sb.WriteString("<void>")
	case TypeNil:
		sb.WriteString("NIL")
	case TypeBoolean:
		if v.I != 0 {
			sb.WriteString("TRUE")
		} else {
			sb.WriteString("FALSE")
		}
	case TypeChar:
		sb.WriteByte(byte(v.I))
	case TypeString:
		sb.Write(v.Str)
	case TypeUInt64:
		sb.WriteString(strconv.FormatUint(v.U, 10))
	case TypeFloat:
		sb.WriteString(formatReal(float64(v.Real.F32)))
	case TypeDouble, TypeLongDouble:
		sb.WriteString(formatReal(v.Real.F64))
	case TypeEnum:
		sb.WriteString(enumMemberName(v.BaseTypeNode, v.EnumName, v.Ordinal))
	case TypeRecord:
		sb.WriteString("RECORD{")
		for f := v.Record; f != nil; f = f.Next {
			if f != v.Record {
				sb.WriteString("; ")
			}
			sb.WriteString(f.Name)
			sb.WriteString(": ")
			formatValue(sb, &f.Value, heap)
		}
		sb.WriteString("}")
	case TypeArray:
		formatArray(sb, v, heap)
	case TypeSet:
		formatSet(sb, v)
	case TypePointer:
		if v.Ptr == 0 {
			sb.WriteString("NIL")
			return
		}
		fmt.Fprintf(sb, "POINTER(@%d", v.Ptr)
		if heap != nil {
			if target, ok := heap.Get(v.Ptr); ok {
				sb.WriteString(" -> ")
				// one level only; linked structures would otherwise recurse
				formatValue(sb, target, nil)
			} else {
				sb.WriteString(" dangling")
			}
		}
		sb.WriteString(")")
	case TypeFile:
		name := v.Filename
		if name == "" {
			name = "<unassigned>"
		}
		state := "closed"
		if v.File != nil {
			state = "open"
		}
		fmt.Fprintf(sb, "FILE(%s, %s)", name, state)
	case TypeMemoryStream:
		fmt.Fprintf(sb, "MSTREAM(%d bytes)", v.MStream.Size())
	default:
		if v.Type.IsIntLike() {
			sb.WriteString(strconv.FormatInt(v.I, 10))
			return
		}
		fmt.Fprintf(sb, "<%s>", v.Type)
	}
}

func formatArray(sb *strings.Builder, v *Value, heap *Heap) {
	sb.WriteString("ARRAY[")
	for i := 0; i < v.Dimensions; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(sb, "%d..%d", v.LowerBounds[i], v.UpperBounds[i])
	}
	fmt.Fprintf(sb, "] OF %s (", v.ElementType)
	for i := range v.Elems {
		if i > 0 {
			sb.WriteString(", ")
		}
		formatValue(sb, &v.Elems[i], heap)
	}
	sb.WriteString(")")
}

func formatSet(sb *strings.Builder, v *Value) {
	base := v.BaseTypeNode
	sb.WriteString("[")
	for i, o := range v.SetValues {
		if i > 0 {
			sb.WriteString(", ")
		}
		switch {
		case isCharSetBase(base):
			fmt.Fprintf(sb, "'%c'", byte(o))
		case base != nil && base.Kind == NodeEnumType:
			sb.WriteString(enumMemberName(base, base.Token, int(o)))
		default:
			sb.WriteString(strconv.FormatInt(o, 10))
		}
	}
	sb.WriteString("]")
}

func isCharSetBase(base *Node) bool {
	if base == nil {
		return false
	}
	if base.Kind == NodeVariable && strings.EqualFold(base.Token, "char") {
		return true
	}
	return base.Kind == NodeSubrange && base.Left != nil && base.Left.Kind == NodeString
}

func enumMemberName(def *Node, typeName string, ordinal int) string {
	if def != nil && def.Kind == NodeEnumType && ordinal >= 0 && ordinal < len(def.Children) {
		return def.Children[ordinal].Token
	}
	if typeName == "" {
		typeName = "<unknown_enum>"
	}
	return fmt.Sprintf("%s(%d)", typeName, ordinal)
}
