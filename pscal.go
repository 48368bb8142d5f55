// Package pscal provides the runtime value model of a Pascal-family
// interpreter: typed values, type-directed construction, deep copy and
// teardown, multi-dimensional arrays, lvalue assignment, and a heap of
// pointees managed with New and Dispose.
//
// This package re-exports the public API from the implementation in src/.
// For full documentation, see the implementation package.
//
// Basic usage:
//
//	rt := pscal.New(pscal.DefaultConfig())
//	chain := rt.Scopes
//	rt.DeclareVar(chain, "grid", pscal.ArrayType(pscal.Ident("real"),
//		pscal.Subrange(pscal.Number(1), pscal.Number(3))))
//	v := pscal.MakeReal(2.5)
//	rt.AssignValueToLValue(chain, pscal.ArrayAccess(pscal.Ident("grid"), pscal.Number(2)), &v)
package pscal

import (
	"io"
	"os"

	impl "github.com/emkey1/pscal-sub005/src"
)

// =============================================================================
// CORE TYPES
// =============================================================================

// Runtime owns the heap, configuration and logger.
type Runtime = impl.Runtime

// Config holds configuration options for the runtime.
type Config = impl.Config

// Value is a tagged runtime value.
type Value = impl.Value

// VarType is the discriminant of a Value.
type VarType = impl.VarType

// RealValue holds a real at three precisions.
type RealValue = impl.RealValue

// FieldValue is one named record field.
type FieldValue = impl.FieldValue

// Address identifies a heap cell.
type Address = impl.Address

// MStream is an in-memory byte stream.
type MStream = impl.MStream

// Symbol is a named storage cell.
type Symbol = impl.Symbol

// SourcePosition tracks location in source code for error reporting.
type SourcePosition = impl.SourcePosition

// Value type discriminants.
const (
	TypeUnknown      = impl.TypeUnknown
	TypeVoid         = impl.TypeVoid
	TypeInt32        = impl.TypeInt32
	TypeInteger      = impl.TypeInteger
	TypeDouble       = impl.TypeDouble
	TypeReal         = impl.TypeReal
	TypeString       = impl.TypeString
	TypeChar         = impl.TypeChar
	TypeRecord       = impl.TypeRecord
	TypeFile         = impl.TypeFile
	TypeByte         = impl.TypeByte
	TypeWord         = impl.TypeWord
	TypeEnum         = impl.TypeEnum
	TypeArray        = impl.TypeArray
	TypeBoolean      = impl.TypeBoolean
	TypeMemoryStream = impl.TypeMemoryStream
	TypeSet          = impl.TypeSet
	TypePointer      = impl.TypePointer
	TypeInt8         = impl.TypeInt8
	TypeUInt8        = impl.TypeUInt8
	TypeInt16        = impl.TypeInt16
	TypeUInt16       = impl.TypeUInt16
	TypeUInt32       = impl.TypeUInt32
	TypeInt64        = impl.TypeInt64
	TypeUInt64       = impl.TypeUInt64
	TypeFloat        = impl.TypeFloat
	TypeLongDouble   = impl.TypeLongDouble
	TypeNil          = impl.TypeNil
)

// =============================================================================
// TYPE DEFINITIONS AND SCOPES
// =============================================================================

// Node is a type-definition or expression tree node.
type Node = impl.Node

// NodeKind identifies the shape of a Node.
type NodeKind = impl.NodeKind

// Field is a group of record fields sharing a type.
type Field = impl.Field

// ScopeChain is the set of live scopes passed to name-resolving operations.
type ScopeChain = impl.ScopeChain

// Scope is an ordered, case-insensitive symbol table.
type Scope = impl.Scope

// TypeTable maps type names to definitions.
type TypeTable = impl.TypeTable

// Heap owns every value allocated by New.
type Heap = impl.Heap

// =============================================================================
// ERRORS
// =============================================================================

// RuntimeError is a fault returned by an engine operation.
type RuntimeError = impl.RuntimeError

// Sentinel errors; classify with errors.Is.
var (
	ErrOutOfBounds     = impl.ErrOutOfBounds
	ErrIndexArity      = impl.ErrIndexArity
	ErrNotLValue       = impl.ErrNotLValue
	ErrNotRecord       = impl.ErrNotRecord
	ErrNotArray        = impl.ErrNotArray
	ErrFieldNotFound   = impl.ErrFieldNotFound
	ErrNotPointer      = impl.ErrNotPointer
	ErrAllocation      = impl.ErrAllocation
	ErrUndeclared      = impl.ErrUndeclared
	ErrConstAssign     = impl.ErrConstAssign
	ErrTypeMismatch    = impl.ErrTypeMismatch
	ErrDanglingPointer = impl.ErrDanglingPointer
	ErrNilPointer      = impl.ErrNilPointer
)

// =============================================================================
// LOGGING
// =============================================================================

// Logger is the leveled, categorised diagnostic logger.
type Logger = impl.Logger

// LogLevel is a message severity.
type LogLevel = impl.LogLevel

// LogCategory is the subsystem a message belongs to.
type LogCategory = impl.LogCategory

// Log categories.
const (
	CatNone     = impl.CatNone
	CatMemory   = impl.CatMemory
	CatType     = impl.CatType
	CatArray    = impl.CatArray
	CatString   = impl.CatString
	CatRecord   = impl.CatRecord
	CatPointer  = impl.CatPointer
	CatVariable = impl.CatVariable
	CatConfig   = impl.CatConfig
	CatSystem   = impl.CatSystem
)

// NewLogger creates a logger writing to stdout and stderr.
func NewLogger(enabled bool) *Logger {
	return impl.NewLogger(enabled)
}

// NewLoggerWithWriters creates a logger with custom writers.
func NewLoggerWithWriters(enabled bool, out, errOut io.Writer) *Logger {
	return impl.NewLoggerWithWriters(enabled, out, errOut)
}

// =============================================================================
// CONSTRUCTORS
// =============================================================================

// New creates a runtime.
func New(config *Config) *Runtime {
	return impl.New(config)
}

// NewWithLogger creates a runtime reporting through logger.
func NewWithLogger(config *Config, logger *Logger) *Runtime {
	return impl.NewWithLogger(config, logger)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return impl.DefaultConfig()
}

// LoadConfig reads a TOML configuration file. The second result lists keys
// that were not recognised.
func LoadConfig(path string) (*Config, []string, error) {
	return impl.LoadConfig(path)
}

// NewScopeChain creates an empty scope chain.
func NewScopeChain() *ScopeChain {
	return impl.NewScopeChain()
}

// =============================================================================
// VALUES
// =============================================================================

// Leaf value constructors.
var (
	MakeInt         = impl.MakeInt
	MakeInt8        = impl.MakeInt8
	MakeUInt8       = impl.MakeUInt8
	MakeInt16       = impl.MakeInt16
	MakeUInt16      = impl.MakeUInt16
	MakeUInt32      = impl.MakeUInt32
	MakeInt64       = impl.MakeInt64
	MakeUInt64      = impl.MakeUInt64
	MakeByte        = impl.MakeByte
	MakeWord        = impl.MakeWord
	MakeReal        = impl.MakeReal
	MakeFloat       = impl.MakeFloat
	MakeDouble      = impl.MakeDouble
	MakeLongDouble  = impl.MakeLongDouble
	MakeChar        = impl.MakeChar
	MakeBoolean     = impl.MakeBoolean
	MakeString      = impl.MakeString
	MakeStringBytes = impl.MakeStringBytes
	MakeFixedString = impl.MakeFixedString
	MakeVoid        = impl.MakeVoid
	MakeNil         = impl.MakeNil
	MakePointer     = impl.MakePointer
	MakeEnum        = impl.MakeEnum
	MakeSet         = impl.MakeSet
	MakeMStream     = impl.MakeMStream
	MakeRecord      = impl.MakeRecord
)

// MakeFile wraps an open file.
func MakeFile(f *os.File, filename string) Value {
	return impl.MakeFile(f, filename)
}

// MakeArrayND builds an array with default elements.
func MakeArrayND(lower, upper []int, elemType VarType, elemDef *Node) (Value, error) {
	return impl.MakeArrayND(lower, upper, elemType, elemDef)
}

// MakeCopyOfValue returns an independent deep copy.
func MakeCopyOfValue(src *Value) Value {
	return impl.MakeCopyOfValue(src)
}

// FreeValue releases everything v owns.
func FreeValue(v *Value) {
	impl.FreeValue(v)
}

// ComputeFlatOffset maps indices to a row-major element offset.
func ComputeFlatOffset(arr *Value, indices []int) (int, error) {
	return impl.ComputeFlatOffset(arr, indices)
}

// Format renders a value for display.
func Format(v *Value) string {
	return impl.Format(v)
}

// Set operations.
var (
	SetContains     = impl.SetContains
	SetUnion        = impl.SetUnion
	SetDifference   = impl.SetDifference
	SetIntersection = impl.SetIntersection
	SetEqual        = impl.SetEqual
)

// =============================================================================
// TREE BUILDERS
// =============================================================================

var (
	Ident           = impl.Ident
	Number          = impl.Number
	RealLiteral     = impl.RealLiteral
	StringLiteral   = impl.StringLiteral
	BooleanLiteral  = impl.BooleanLiteral
	NilLiteral      = impl.NilLiteral
	FixedStringType = impl.FixedStringType
	TypeRef         = impl.TypeRef
	RecordType      = impl.RecordType
	Subrange        = impl.Subrange
	ArrayType       = impl.ArrayType
	EnumType        = impl.EnumType
	PointerType     = impl.PointerType
	SetType         = impl.SetType
	FieldAccess     = impl.FieldAccess
	ArrayAccess     = impl.ArrayAccess
	Deref           = impl.Deref
	BinaryOp        = impl.BinaryOp
	UnaryOp         = impl.UnaryOp
)
