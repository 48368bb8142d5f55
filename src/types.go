package pscal

import (
	"os"
	"strings"
)

// VarType is the discriminant of a Value
type VarType int

const (
	TypeUnknown VarType = iota
	TypeVoid
	TypeInt32
	TypeDouble
	TypeString
	TypeChar
	TypeRecord
	TypeFile
	TypeByte
	TypeWord
	TypeEnum
	TypeArray
	TypeBoolean
	TypeMemoryStream
	TypeSet
	TypePointer
	TypeInt8
	TypeUInt8
	TypeInt16
	TypeUInt16
	TypeUInt32
	TypeInt64
	TypeUInt64
	TypeFloat
	TypeLongDouble
	TypeNil
)

// Pascal's traditional names for the default numeric types
const (
	TypeInteger = TypeInt32
	TypeReal    = TypeDouble
)

// String returns the upper-case name used in diagnostics
func (t VarType) String() string {
	switch t {
	case TypeVoid:
		return "VOID"
	case TypeInt32:
		return "INTEGER"
	case TypeDouble:
		return "REAL"
	case TypeString:
		return "STRING"
	case TypeChar:
		return "CHAR"
	case TypeRecord:
		return "RECORD"
	case TypeFile:
		return "FILE"
	case TypeByte:
		return "BYTE"
	case TypeWord:
		return "WORD"
	case TypeEnum:
		return "ENUM"
	case TypeArray:
		return "ARRAY"
	case TypeBoolean:
		return "BOOLEAN"
	case TypeMemoryStream:
		return "MEMORY_STREAM"
	case TypeSet:
		return "SET"
	case TypePointer:
		return "POINTER"
	case TypeInt8:
		return "INT8"
	case TypeUInt8:
		return "UINT8"
	case TypeInt16:
		return "INT16"
	case TypeUInt16:
		return "UINT16"
	case TypeUInt32:
		return "UINT32"
	case TypeInt64:
		return "INT64"
	case TypeUInt64:
		return "UINT64"
	case TypeFloat:
		return "FLOAT"
	case TypeLongDouble:
		return "LONG_DOUBLE"
	case TypeNil:
		return "NIL"
	default:
		return "UNKNOWN_VAR_TYPE"
	}
}

// BuiltinVarType maps a built-in type identifier to its discriminant.
// The second result is false for names that are not built in.
func BuiltinVarType(name string) (VarType, bool) {
	switch strings.ToLower(name) {
	case "integer", "int", "longint", "int32":
		return TypeInt32, true
	case "real", "double":
		return TypeDouble, true
	case "float", "single":
		return TypeFloat, true
	case "extended", "longdouble":
		return TypeLongDouble, true
	case "shortint", "int8":
		return TypeInt8, true
	case "uint8":
		return TypeUInt8, true
	case "smallint", "int16":
		return TypeInt16, true
	case "uint16":
		return TypeUInt16, true
	case "cardinal", "longword", "uint32":
		return TypeUInt32, true
	case "int64":
		return TypeInt64, true
	case "qword", "uint64":
		return TypeUInt64, true
	case "byte":
		return TypeByte, true
	case "word":
		return TypeWord, true
	case "char":
		return TypeChar, true
	case "string", "str":
		return TypeString, true
	case "boolean", "bool":
		return TypeBoolean, true
	case "text", "file":
		return TypeFile, true
	case "memorystream", "mstream":
		return TypeMemoryStream, true
	case "pointer":
		return TypePointer, true
	}
	return TypeVoid, false
}

// IsIntLike reports whether t is stored in the integer fields
func (t VarType) IsIntLike() bool {
	switch t {
	case TypeInt8, TypeUInt8, TypeInt16, TypeUInt16, TypeInt32, TypeUInt32,
		TypeInt64, TypeUInt64, TypeByte, TypeWord:
		return true
	}
	return false
}

// IsRealLike reports whether t is stored in the real fields
func (t VarType) IsRealLike() bool {
	return t == TypeFloat || t == TypeDouble || t == TypeLongDouble
}

// IsOrdinal reports whether values of t have an ordinal
func (t VarType) IsOrdinal() bool {
	return t.IsIntLike() || t == TypeChar || t == TypeBoolean || t == TypeEnum
}

// intRange returns the inclusive range of an integer-like type
func (t VarType) intRange() (lo, hi int64, bounded bool) {
	switch t {
	case TypeInt8:
		return -128, 127, true
	case TypeUInt8, TypeByte:
		return 0, 255, true
	case TypeInt16:
		return -32768, 32767, true
	case TypeUInt16, TypeWord:
		return 0, 65535, true
	case TypeInt32:
		return -2147483648, 2147483647, true
	case TypeUInt32:
		return 0, 4294967295, true
	case TypeChar:
		return 0, 255, true
	}
	return 0, 0, false
}

// RealValue keeps the three precisions of a real in sync
type RealValue struct {
	F32 float32
	F64 float64
	// Ext is the "extended" slot; Go has no long double so it carries float64 precision.
	Ext float64
}

// Address is a handle to a heap cell produced by New. Zero is nil.
type Address uint64

// FieldValue is one named cell of a record's field list
type FieldValue struct {
	Name  string
	Value Value
	Next  *FieldValue
}

// MStream is the byte buffer behind a memory stream value
type MStream struct {
	Buffer []byte
}

// Value is the runtime representation of every datum the interpreter handles.
// Only the fields belonging to Type are meaningful.
type Value struct {
	Type VarType

	// integer-like, boolean and char ordinals
	I int64
	U uint64

	Real RealValue

	// Str is the owned string buffer. len(Str) is the current length;
	// fixed-length strings (MaxLength > 0) never grow past MaxLength.
	Str       []byte
	MaxLength int

	Record *FieldValue

	// array payload
	Elems          []Value
	Dimensions     int
	LowerBounds    []int
	UpperBounds    []int
	ElementType    VarType
	ElementTypeDef *Node

	// enum payload
	EnumName string
	Ordinal  int

	SetValues []int64

	// Ptr is the pointee address; BaseTypeNode is the non-owning link to
	// the pointee type (pointers) or the enum definition (enums).
	Ptr          Address
	BaseTypeNode *Node

	File     *os.File
	Filename string

	MStream *MStream
}

// Symbol is one binding in a scope; the engine is the only writer of Value
type Symbol struct {
	Name     string
	Type     VarType
	TypeDef  *Node
	IsConst  bool
	Value    *Value
	Position *SourcePosition
}

// SourcePosition tracks the position of a declaration or expression
type SourcePosition struct {
	Line     int
	Column   int
	Length   int
	Filename string
}
