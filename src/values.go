package pscal

import "os"

// Leaf constructors. Each returns a fully zeroed Value with only the payload
// for its discriminant set; any owned buffer it sets belongs to that Value alone.

func makeIntOf(t VarType, n int64) Value {
	return Value{Type: t, I: n, U: uint64(n)}
}

func makeUintOf(t VarType, n uint64) Value {
	return Value{Type: t, I: int64(n), U: n}
}

// MakeInt creates an INTEGER value
func MakeInt(n int64) Value { return makeIntOf(TypeInt32, n) }

// MakeInt8 creates an INT8 value
func MakeInt8(n int8) Value { return makeIntOf(TypeInt8, int64(n)) }

// MakeUInt8 creates a UINT8 value
func MakeUInt8(n uint8) Value { return makeUintOf(TypeUInt8, uint64(n)) }

// MakeInt16 creates an INT16 value
func MakeInt16(n int16) Value { return makeIntOf(TypeInt16, int64(n)) }

// MakeUInt16 creates a UINT16 value
func MakeUInt16(n uint16) Value { return makeUintOf(TypeUInt16, uint64(n)) }

// MakeUInt32 creates a UINT32 value
func MakeUInt32(n uint32) Value { return makeUintOf(TypeUInt32, uint64(n)) }

// MakeInt64 creates an INT64 value
func MakeInt64(n int64) Value { return makeIntOf(TypeInt64, n) }

// MakeUInt64 creates a UINT64 value
func MakeUInt64(n uint64) Value { return makeUintOf(TypeUInt64, n) }

// MakeByte creates a BYTE value
func MakeByte(n uint8) Value { return makeUintOf(TypeByte, uint64(n)) }

// MakeWord creates a WORD value
func MakeWord(n uint16) Value { return makeUintOf(TypeWord, uint64(n)) }

func makeRealOf(t VarType, f float64) Value {
	return Value{Type: t, Real: RealValue{F32: float32(f), F64: f, Ext: f}}
}

// MakeReal creates a REAL (double) value
func MakeReal(f float64) Value { return makeRealOf(TypeDouble, f) }

// MakeFloat creates a single precision value
func MakeFloat(f float32) Value { return makeRealOf(TypeFloat, float64(f)) }

// MakeDouble is MakeReal under its C-family name
func MakeDouble(f float64) Value { return makeRealOf(TypeDouble, f) }

// MakeLongDouble creates an extended precision value
func MakeLongDouble(f float64) Value { return makeRealOf(TypeLongDouble, f) }

// MakeChar creates a CHAR value holding one code unit
func MakeChar(c byte) Value {
	return Value{Type: TypeChar, I: int64(c), U: uint64(c), MaxLength: 1}
}

// MakeBoolean creates a BOOLEAN value (0 or 1)
func MakeBoolean(b bool) Value {
	if b {
		return Value{Type: TypeBoolean, I: 1, U: 1}
	}
	return Value{Type: TypeBoolean}
}

// MakeString creates a dynamic STRING value from a private copy of s
func MakeString(s string) Value {
	buf := make([]byte, len(s))
	copy(buf, s)
	return Value{Type: TypeString, Str: buf}
}

// MakeStringBytes creates a dynamic STRING value from a private copy of b.
// A nil slice yields the empty string.
func MakeStringBytes(b []byte) Value {
	buf := make([]byte, len(b))
	copy(buf, b)
	return Value{Type: TypeString, Str: buf}
}

// MakeFixedString creates string[capacity] holding s truncated to capacity
func MakeFixedString(s string, capacity int) Value {
	buf := make([]byte, min(len(s), capacity), capacity)
	copy(buf, s)
	return Value{Type: TypeString, Str: buf, MaxLength: capacity}
}

// MakeVoid creates the VOID value
func MakeVoid() Value { return Value{Type: TypeVoid} }

// MakeNil creates the NIL pointer literal
func MakeNil() Value { return Value{Type: TypeNil} }

// MakePointer creates a POINTER value aliasing addr. baseType is the
// non-owning link to the pointee type definition.
func MakePointer(addr Address, baseType *Node) Value {
	return Value{Type: TypePointer, Ptr: addr, BaseTypeNode: baseType}
}

// MakeEnum creates an ENUM value of the named type
func MakeEnum(typeName string, ordinal int) Value {
	return Value{Type: TypeEnum, EnumName: typeName, Ordinal: ordinal, I: int64(ordinal), U: uint64(ordinal)}
}

// MakeSet creates a SET holding the given ordinals once each
func MakeSet(ordinals ...int64) Value {
	v := Value{Type: TypeSet}
	for _, o := range ordinals {
		v.SetValues = addOrdinal(v.SetValues, o)
	}
	return v
}

// MakeFile creates a FILE value around an already opened handle (which may be nil)
func MakeFile(f *os.File, filename string) Value {
	return Value{Type: TypeFile, File: f, Filename: filename}
}

// MakeMStream creates an empty MEMORY_STREAM
func MakeMStream() Value {
	return Value{Type: TypeMemoryStream, MStream: &MStream{}}
}

// MakeRecord creates a RECORD from fields in order; each value is deep copied.
// Later duplicates of a field name are ignored.
func MakeRecord(fields ...FieldValue) Value {
	v := Value{Type: TypeRecord}
	var tail *FieldValue
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		key := foldName(f.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		cell := &FieldValue{Name: f.Name, Value: MakeCopyOfValue(&f.Value)}
		if tail == nil {
			v.Record = cell
		} else {
			tail.Next = cell
		}
		tail = cell
	}
	return v
}

// charOrdinal returns the code unit of a CHAR or a one-byte STRING
func charOrdinal(v *Value) (byte, bool) {
	switch v.Type {
	case TypeChar:
		return byte(v.I), true
	case TypeString:
		if len(v.Str) == 1 {
			return v.Str[0], true
		}
	}
	return 0, false
}

// AsInt returns the ordinal or integer payload of v
func (v *Value) AsInt() int64 {
	switch {
	case v.Type == TypeEnum:
		return int64(v.Ordinal)
	case v.Type.IsRealLike():
		return int64(v.Real.F64)
	case v.Type == TypeUInt64:
		return int64(v.U)
	}
	return v.I
}

// AsReal returns v as a float64; integer-like values are widened
func (v *Value) AsReal() float64 {
	switch {
	case v.Type.IsRealLike():
		return v.Real.F64
	case v.Type == TypeUInt64:
		return float64(v.U)
	}
	return float64(v.I)
}

// IsNilPointer reports whether v is NIL or a pointer with no address
func (v *Value) IsNilPointer() bool {
	return v.Type == TypeNil || (v.Type == TypePointer && v.Ptr == 0)
}

// StringValue returns the string payload (CHAR yields one byte)
func (v *Value) StringValue() string {
	if v.Type == TypeChar {
		return string([]byte{byte(v.I)})
	}
	return string(v.Str)
}
